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

package command

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// osExit can be replaced in tests.
var osExit = os.Exit

// successfully returns the specified value if err is nil, and otherwise
// panics. It is meant for errors that can only be caused by structural
// problems, such as looking up undefined flags.
func successfully[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// unerringly returns the specified value if err is nil, and otherwise logs
// err and exits with a non-zero status code.
func unerringly[T any](v T, err error) T {
	if err != nil {
		log.Debug(fmt.Sprintf("💥  fatal: %s", err))
		osExit(1)
	}
	return v
}

func buildInfo(info *debug.BuildInfo, key string) string {
	idx := slices.IndexFunc(info.Settings,
		func(setting debug.BuildSetting) bool {
			return setting.Key == key
		})
	if idx < 0 {
		return ""
	}
	return info.Settings[idx].Value
}

// version returns the version of this binary, as derived from its build
// information.
func version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "(unknown)"
	}
	if commit := buildInfo(info, "vcs.revision"); commit != "" {
		modified := ""
		if buildInfo(info, "vcs.modified") == "true" {
			modified = " (modified)"
		}
		return fmt.Sprintf("commit %s%s", commit[:min(8, len(commit))], modified)
	}
	if modver := info.Main.Version; modver != "" {
		return modver
	}
	return "(unknown)"
}
