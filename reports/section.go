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

package reports

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iriswallet/vaultci/config"
	"gopkg.in/yaml.v3"
)

// Section is a report published in its own subdirectory of the output
// directory.
type Section struct {
	Name   string `yaml:"name" validate:"required"`   // subdirectory name
	Title  string `yaml:"title"`                      // shown on the landing page
	Source string `yaml:"source" validate:"required"` // report directory to publish
}

// DefaultSections lists the Allure and coverage reports of a CI run.
var DefaultSections = []Section{
	{Name: "embedded", Title: "Allure Report (embedded)", Source: "allure-report-embedded"},
	{Name: "remote", Title: "Allure Report (remote)", Source: "allure-report-remote"},
	{Name: "coverage", Title: "Coverage Report", Source: "htmlcov"},
}

// Manifest lists the sections to publish.
type Manifest struct {
	Sections []Section `yaml:"sections" validate:"required,min=1,unique=Name,dive"`
}

// LoadManifest loads a YAML section manifest from the specified file. Relative
// section sources are taken relative to the manifest's directory.
//
//	sections:
//	  - name: embedded
//	    title: Allure Report (embedded)
//	    source: allure-report-embedded
func LoadManifest(path string) ([]Section, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read report manifest, reason: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("malformed report manifest %q, reason: %w", path, err)
	}
	if err := config.Validate(&m); err != nil {
		return nil, fmt.Errorf("invalid report manifest %q, reason: %w", path, err)
	}
	base := filepath.Dir(path)
	for idx := range m.Sections {
		s := &m.Sections[idx]
		if err := checkSectionName(s.Name); err != nil {
			return nil, fmt.Errorf("invalid report manifest %q, reason: %w", path, err)
		}
		if s.Title == "" {
			s.Title = s.Name
		}
		if !filepath.IsAbs(s.Source) {
			s.Source = filepath.Join(base, s.Source)
		}
	}
	return m.Sections, nil
}

func checkSectionName(name string) error {
	if name == "." || name == ".." || filepath.Base(name) != name {
		return fmt.Errorf("section name %q is not a plain directory name", name)
	}
	return nil
}
