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
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/otiai10/copy"
	log "github.com/sirupsen/logrus"
)

// DefaultOutputDir is the directory published to GitHub Pages.
const DefaultOutputDir = "gh-pages"

// DefaultTitle is the title of the landing page.
const DefaultTitle = "Iris Wallet Vault Test Reports"

// Config describes the reports to assemble.
type Config struct {
	OutputDir string    // defaults to DefaultOutputDir
	Title     string    // landing page title; defaults to DefaultTitle
	Sections  []Section // defaults to DefaultSections
}

// Published tells how a section was published.
type Published struct {
	Section     Section
	Placeholder bool // true if the section only got a placeholder page
}

// Generate assembles the configured report sections into the output
// directory. A section whose source directory is missing or empty gets a
// placeholder page instead, and a copied report lacking an “index.html” gets
// a placeholder index. Generate finally writes a landing page linking all
// sections as well as a “.nojekyll” marker, so that GitHub Pages serves
// Allure's files with leading underscores.
func Generate(cfg Config) ([]Published, error) {
	out := cfg.OutputDir
	if out == "" {
		out = DefaultOutputDir
	}
	title := cfg.Title
	if title == "" {
		title = DefaultTitle
	}
	sections := cfg.Sections
	if len(sections) == 0 {
		sections = DefaultSections
	}
	log.Info(fmt.Sprintf("🗂  assembling %d reports into %q", len(sections), out))
	if err := os.MkdirAll(out, 0755); err != nil {
		return nil, fmt.Errorf("cannot create report directory, reason: %w", err)
	}
	for _, s := range sections {
		if err := checkSectionName(s.Name); err != nil {
			return nil, err
		}
		if err := checkSectionSource(out, s); err != nil {
			return nil, err
		}
	}
	published := make([]Published, 0, len(sections))
	for _, s := range sections {
		if s.Title == "" {
			s.Title = s.Name
		}
		placeholder, err := publishSection(out, s)
		if err != nil {
			return nil, err
		}
		published = append(published, Published{Section: s, Placeholder: placeholder})
	}
	err := writePage(filepath.Join(out, "index.html"), landingPage, struct {
		Title    string
		Sections []Published
	}{
		Title:    title,
		Sections: published,
	})
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(out, ".nojekyll"), nil, 0644); err != nil {
		return nil, fmt.Errorf("cannot write .nojekyll marker, reason: %w", err)
	}
	log.Info(fmt.Sprintf("✅  reports ready in %q", out))
	return published, nil
}

// publishSection copies the section's report into its subdirectory of the
// output directory, replacing any earlier contents. It returns true if only a
// placeholder could be published.
func publishSection(out string, s Section) (bool, error) {
	dst := filepath.Join(out, s.Name)
	if err := os.RemoveAll(dst); err != nil {
		return false, fmt.Errorf("cannot clear %s, reason: %w", dst, err)
	}
	empty, err := isEmptyDir(s.Source)
	if err != nil {
		return false, err
	}
	if empty {
		log.Warn(fmt.Sprintf("⚠️  no %s in %q, publishing placeholder", s.Title, s.Source))
		if err := os.MkdirAll(dst, 0755); err != nil {
			return false, fmt.Errorf("cannot create %s, reason: %w", dst, err)
		}
		return true, writePlaceholder(dst, s,
			fmt.Sprintf("No report available, as %s was missing or empty.", s.Source))
	}
	if err := copy.Copy(s.Source, dst); err != nil {
		return false, fmt.Errorf("cannot copy %s, reason: %w", s.Source, err)
	}
	if _, err := os.Stat(filepath.Join(dst, "index.html")); err != nil {
		log.Warn(fmt.Sprintf("⚠️  %s lacks an index.html, publishing placeholder index", s.Source))
		return true, writePlaceholder(dst, s,
			fmt.Sprintf("The report in %s has no index page.", s.Source))
	}
	log.Info(fmt.Sprintf("   📄  published %s from %q", s.Title, s.Source))
	return false, nil
}

// checkSectionSource returns an error if the section's source and its
// destination inside the output directory overlap, as publishing would then
// clear or recursively copy the report itself.
func checkSectionSource(out string, s Section) error {
	src, err := filepath.Abs(s.Source)
	if err != nil {
		return fmt.Errorf("cannot determine source of section %q, reason: %w", s.Name, err)
	}
	dst, err := filepath.Abs(filepath.Join(out, s.Name))
	if err != nil {
		return fmt.Errorf("cannot determine destination of section %q, reason: %w", s.Name, err)
	}
	if within(src, dst) || within(dst, src) {
		return fmt.Errorf("source %q of section %q overlaps its destination %q", s.Source, s.Name, dst)
	}
	return nil
}

// within returns true if path is dir or lies below dir; both must be absolute
// and clean.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// isEmptyDir returns true if the specified directory doesn't exist or has no
// entries. A source that isn't a directory is an error.
func isEmptyDir(dir string) (bool, error) {
	d, err := os.Open(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true, nil
		}
		return false, fmt.Errorf("cannot read report source, reason: %w", err)
	}
	defer d.Close()
	if _, err := d.Readdirnames(1); err != nil {
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		return false, fmt.Errorf("cannot read report source %s, reason: %w", dir, err)
	}
	return false, nil
}
