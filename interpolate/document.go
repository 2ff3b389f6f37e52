// Copyright 2026 by the vaultci authors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy
// of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

package interpolate

import (
	"fmt"
	"strconv"
)

// Document expands all string scalars inside a decoded YAML (or JSON)
// document, returning a new document and leaving the passed one untouched.
// Keys are never expanded. Errors name the path of the offending scalar, such
// as “AppDir.app_info.version” or “script[2]”.
func Document(doc map[string]any, vars Vars) (map[string]any, error) {
	expanded, err := walk(doc, "", vars)
	if err != nil {
		return nil, err
	}
	return expanded.(map[string]any), nil
}

func walk(node any, path Path, vars Vars) (any, error) {
	switch node := node.(type) {
	case string:
		text, err := String(node, vars)
		if err != nil {
			return nil, fmt.Errorf("error in '%s': %w", path, err)
		}
		return text, nil
	case map[string]any:
		m := make(map[string]any, len(node))
		for key, value := range node {
			expanded, err := walk(value, path.Key(key), vars)
			if err != nil {
				return nil, err
			}
			m[key] = expanded
		}
		return m, nil
	case []any:
		seq := make([]any, 0, len(node))
		for idx, value := range node {
			expanded, err := walk(value, path.Index(idx), vars)
			if err != nil {
				return nil, err
			}
			seq = append(seq, expanded)
		}
		return seq, nil
	}
	return node, nil
}

// Path locates a scalar inside a document.
type Path string

// Key returns the path extended by a mapping key.
func (p Path) Key(key string) Path {
	if p == "" {
		return Path(key)
	}
	return p + "." + Path(key)
}

// Index returns the path extended by a sequence index.
func (p Path) Index(idx int) Path {
	return p + Path("["+strconv.Itoa(idx)+"]")
}
