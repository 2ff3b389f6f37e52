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

// Package grab redirects logrus output of code under test.
package grab

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Log grabs the standard logrus logger's output at the specified level and
// feeds it into w, which preferably is a GinkgoWriter so that log output only
// shows up for failing tests. Log returns a function that must be deferred (or
// passed to DeferCleanup) in order to restore the original output and level.
func Log(w io.Writer, level logrus.Level) func() {
	origLevel := logrus.GetLevel()
	origFormatter := logrus.StandardLogger().Formatter
	logrus.SetOutput(w)
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{DisableColors: true})
	return func() {
		logrus.SetLevel(origLevel)
		logrus.SetFormatter(origFormatter)
		logrus.SetOutput(os.Stderr)
	}
}
