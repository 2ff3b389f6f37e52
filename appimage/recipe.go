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

package appimage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iriswallet/vaultci/interpolate"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// RenderedRecipePath returns the path of the rendered form of the specified
// builder recipe, which sits next to the original recipe.
func RenderedRecipePath(recipe string) string {
	ext := filepath.Ext(recipe)
	if ext == "" {
		return recipe + ".rendered.yml"
	}
	return strings.TrimSuffix(recipe, ext) + ".rendered" + ext
}

// RenderRecipe loads the builder recipe at the specified path, expands all
// variable references in its string scalars, and writes the result next to
// the recipe. It returns the path of the rendered recipe.
func RenderRecipe(recipe string, vars interpolate.Vars) (string, error) {
	log.Info(fmt.Sprintf("📜  rendering builder recipe %q", recipe))
	b, err := os.ReadFile(recipe)
	if err != nil {
		return "", fmt.Errorf("cannot read builder recipe, reason: %w", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return "", fmt.Errorf("malformed builder recipe %q, reason: %w", recipe, err)
	}
	if doc == nil {
		return "", fmt.Errorf("empty builder recipe %q", recipe)
	}
	rendered, err := interpolate.Document(doc, vars)
	if err != nil {
		return "", fmt.Errorf("cannot render builder recipe %q, reason: %w", recipe, err)
	}
	var out bytes.Buffer
	enc := yaml.NewEncoder(&out)
	enc.SetIndent(2)
	if err := enc.Encode(rendered); err != nil {
		return "", fmt.Errorf("cannot encode rendered builder recipe, reason: %w", err)
	}
	_ = enc.Close()
	path := RenderedRecipePath(recipe)
	if err := os.WriteFile(path, out.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("cannot write rendered builder recipe, reason: %w", err)
	}
	log.Info(fmt.Sprintf("   📝  rendered recipe written to %q", path))
	return path, nil
}
