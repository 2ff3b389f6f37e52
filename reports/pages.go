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
	"html/template"
	"os"
	"path/filepath"
)

var placeholderPage = template.Must(template.New("placeholder").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Reason}}</p>
<p><a href="../index.html">Back to all reports</a></p>
</body>
</html>
`))

var landingPage = template.Must(template.New("landing").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
<ul>
{{- range .Sections}}
<li><a href="{{.Section.Name}}/index.html">{{.Section.Title}}</a>{{if .Placeholder}} (not available){{end}}</li>
{{- end}}
</ul>
</body>
</html>
`))

func writePlaceholder(dir string, s Section, reason string) error {
	return writePage(filepath.Join(dir, "index.html"), placeholderPage, struct {
		Title  string
		Reason string
	}{
		Title:  s.Title,
		Reason: reason,
	})
}

func writePage(path string, tmpl *template.Template, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s, reason: %w", path, err)
	}
	if err := tmpl.Execute(f, data); err != nil {
		f.Close()
		return fmt.Errorf("cannot render %s, reason: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("cannot write %s, reason: %w", path, err)
	}
	return nil
}
