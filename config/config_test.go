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

package config

import (
	"os"

	"github.com/spf13/pflag"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type testSettings struct {
	Interval int    `mapstructure:"interval" validate:"gt=0"`
	Output   string `mapstructure:"output" validate:"required"`
	DiskPath string `mapstructure:"disk_path"`
}

var defaults = map[string]any{
	"interval":  5,
	"output":    "resource_usage.log",
	"disk_path": "/",
}

var _ = Describe("configuration", func() {

	It("uses defaults", func() {
		var s testSettings
		Expect(Load(New("VAULTCI_TEST", defaults), &s)).To(Succeed())
		Expect(s).To(Equal(testSettings{Interval: 5, Output: "resource_usage.log", DiskPath: "/"}))
	})

	It("reads prefixed environment variables", func() {
		setenv("VAULTCI_TEST_INTERVAL", "2")
		setenv("VAULTCI_TEST_DISK_PATH", "/tmp")
		var s testSettings
		Expect(Load(New("VAULTCI_TEST", defaults), &s)).To(Succeed())
		Expect(s.Interval).To(Equal(2))
		Expect(s.DiskPath).To(Equal("/tmp"))
	})

	It("lets explicitly set flags override environment variables", func() {
		setenv("VAULTCI_TEST_INTERVAL", "2")
		setenv("VAULTCI_TEST_OUTPUT", "env.log")
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.Int("interval", 5, "")
		flags.String("output", "flag.log", "")
		Expect(flags.Parse([]string{"--interval", "10"})).To(Succeed())

		v := New("VAULTCI_TEST", defaults)
		Expect(BindFlags(v, flags, "interval", "output")).To(Succeed())
		var s testSettings
		Expect(Load(v, &s)).To(Succeed())
		Expect(s.Interval).To(Equal(10))
		Expect(s.Output).To(Equal("env.log"))
	})

	It("rejects unknown flags", func() {
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		Expect(BindFlags(New("", nil), flags, "nada")).To(
			MatchError(ContainSubstring(`unknown flag "nada"`)))
	})

	It("reports invalid settings", func() {
		setenv("VAULTCI_TEST_INTERVAL", "0")
		var s testSettings
		Expect(Load(New("VAULTCI_TEST", defaults), &s)).To(
			MatchError(ContainSubstring("invalid configuration")))
	})

	It("reports undecodable settings", func() {
		setenv("VAULTCI_TEST_INTERVAL", "often")
		var s testSettings
		Expect(Load(New("VAULTCI_TEST", defaults), &s)).To(
			MatchError(ContainSubstring("cannot decode configuration")))
	})

})

// setenv sets an environment variable for the duration of the current spec.
func setenv(name, value string) {
	Expect(os.Setenv(name, value)).To(Succeed())
	DeferCleanup(os.Unsetenv, name)
}
