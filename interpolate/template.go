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
	"errors"
	"fmt"
	"os"
	"strings"
)

// Vars maps variable names to their values. A name missing from the map is
// considered to be unset, while a name mapping to "" is set but empty.
type Vars map[string]string

// Environ returns the process environment as Vars.
func Environ() Vars {
	vars := Vars{}
	for _, kv := range os.Environ() {
		name, value, _ := strings.Cut(kv, "=")
		vars[name] = value
	}
	return vars
}

// With returns a copy of vars with the additional variables set, overriding
// existing values of the same name.
func (vars Vars) With(more Vars) Vars {
	merged := make(Vars, len(vars)+len(more))
	for name, value := range vars {
		merged[name] = value
	}
	for name, value := range more {
		merged[name] = value
	}
	return merged
}

// Part is a piece of a Template that expands into text.
type Part interface {
	Expand(vars Vars) (string, error)
}

// Template is a parsed string consisting of literal text and variable
// references.
type Template []Part

// Expand returns the text of the template with all variable references
// expanded.
func (t Template) Expand(vars Vars) (string, error) {
	var sb strings.Builder
	for _, part := range t {
		text, err := part.Expand(vars)
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

// Literal is text that expands to itself.
type Literal string

// Expand returns the literal text.
func (l Literal) Expand(Vars) (string, error) { return string(l), nil }

// Reference refers to a variable, optionally with an operation deciding what
// to do when the variable is unset or empty.
type Reference struct {
	Name string
	Op   string   // "", "-", ":-", "?", ":?", "+", or ":+"
	Alt  Template // default, error message, or alternative value
}

// Expand returns the variable's value, or the outcome of the reference's
// operation.
func (r Reference) Expand(vars Vars) (string, error) {
	value, set := vars[r.Name]
	// With a colon, an empty value counts as unset.
	unset := !set
	if strings.HasPrefix(r.Op, ":") {
		unset = !set || value == ""
	}
	switch strings.TrimPrefix(r.Op, ":") {
	case "":
		if r.Op != "" {
			break
		}
		return value, nil
	case "-":
		if unset {
			return r.Alt.Expand(vars)
		}
		return value, nil
	case "?":
		if unset {
			msg, err := r.Alt.Expand(vars)
			if err != nil {
				return "", err
			}
			if msg == "" {
				msg = fmt.Sprintf("variable %s is required", r.Name)
			}
			return "", errors.New(msg)
		}
		return value, nil
	case "+":
		if unset {
			return "", nil
		}
		return r.Alt.Expand(vars)
	}
	return "", fmt.Errorf("unsupported operation %q on variable %s", r.Op, r.Name)
}

// String parses and expands s in one go.
func String(s string, vars Vars) (string, error) {
	t, err := Parse(s)
	if err != nil {
		return "", err
	}
	return t.Expand(vars)
}
