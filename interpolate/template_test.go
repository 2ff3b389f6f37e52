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
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("expanding templates", func() {

	vars := Vars{
		"NETWORK":    "regtest",
		"APP_SUFFIX": "",
	}

	It("expands literals and plain references", func() {
		Expect(String("net=$NETWORK", vars)).To(Equal("net=regtest"))
		Expect(String("net=${UNSET}", vars)).To(Equal("net="))
	})

	DescribeTable("operations",
		func(tmpl string, expected string) {
			Expect(String(tmpl, vars)).To(Equal(expected))
		},
		Entry("default when unset", "${UNSET-dflt}", "dflt"),
		Entry("no default when empty", "${APP_SUFFIX-dflt}", ""),
		Entry("default when empty", "${APP_SUFFIX:-dflt}", "dflt"),
		Entry("value instead of default", "${NETWORK:-dflt}", "regtest"),
		Entry("alternative when set", "${APP_SUFFIX+alt}", "alt"),
		Entry("no alternative when empty", "${APP_SUFFIX:+alt}", ""),
		Entry("no alternative when unset", "${UNSET+alt}", ""),
		Entry("alternative when non-empty", "${NETWORK:+alt}", "alt"),
		Entry("value when required", "${NETWORK:?missing}", "regtest"),
	)

	DescribeTable("required variables",
		func(tmpl string, msg string) {
			Expect(String(tmpl, vars)).Error().To(MatchError(msg))
		},
		Entry("unset", "${UNSET?no luck}", "no luck"),
		Entry("empty", "${APP_SUFFIX:?no luck}", "no luck"),
		Entry("without message", "${UNSET?}", "variable UNSET is required"),
	)

	It("expands the artifact name template", func() {
		const tmpl = "iris-wallet-vault${APP_SUFFIX:+-${APP_SUFFIX}}-${NETWORK}.AppImage"
		Expect(String(tmpl, vars)).To(Equal("iris-wallet-vault-regtest.AppImage"))
		Expect(String(tmpl, vars.With(Vars{"APP_SUFFIX": "nightly"}))).To(
			Equal("iris-wallet-vault-nightly-regtest.AppImage"))
	})

	It("reports errors from nested alternatives", func() {
		Expect(String("${NETWORK:+${UNSET:?deep}}", vars)).Error().To(MatchError("deep"))
	})

	It("rejects unsupported operations", func() {
		Expect(Reference{Name: "NETWORK", Op: ":"}.Expand(vars)).Error().To(
			MatchError(ContainSubstring("unsupported operation")))
	})

	It("merges variables without touching the original", func() {
		merged := vars.With(Vars{"NETWORK": "testnet"})
		Expect(merged).To(HaveKeyWithValue("NETWORK", "testnet"))
		Expect(vars).To(HaveKeyWithValue("NETWORK", "regtest"))
	})

	It("picks up the process environment", func() {
		Expect(os.Setenv("VAULTCI_INTERPOLATE_TEST", "a=b")).To(Succeed())
		defer os.Unsetenv("VAULTCI_INTERPOLATE_TEST")
		Expect(Environ()).To(HaveKeyWithValue("VAULTCI_INTERPOLATE_TEST", "a=b"))
	})

})
