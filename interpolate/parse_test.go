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
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

var _ = Describe("parsing templates", func() {

	Context("names", func() {

		It("consumes the longest name", func() {
			p := &parser{src: "_abc123DEF-foo"}
			Expect(p.name()).To(Equal("_abc123DEF"))
			Expect(p.pos).To(Equal(10))
		})

		It("doesn't accept a leading digit", func() {
			p := &parser{src: "123"}
			Expect(p.name()).To(BeEmpty())
			Expect(p.pos).To(BeZero())
		})

	})

	It("parses empty and plain text", func() {
		Expect(Parse("")).To(BeEmpty())
		Expect(Parse("foo {-} bar")).To(HaveExactElements(Literal("foo {-} bar")))
	})

	It("unescapes $$", func() {
		Expect(Parse("foo$$bar")).To(HaveExactElements(Literal("foo$bar")))
	})

	It("keeps a dollar that doesn't start a reference", func() {
		Expect(Parse("5$-ish")).To(HaveExactElements(Literal("5$-ish")))
	})

	It("parses unbraced references", func() {
		Expect(Parse("foo$bar.baz")).To(HaveExactElements(
			Literal("foo"),
			Reference{Name: "bar"},
			Literal(".baz"),
		))
		Expect(Parse("foo$bar")).To(HaveExactElements(
			Literal("foo"),
			Reference{Name: "bar"},
		))
	})

	It("parses braced references", func() {
		Expect(Parse("foo${bar}baz")).To(HaveExactElements(
			Literal("foo"),
			Reference{Name: "bar"},
			Literal("baz"),
		))
	})

	DescribeTable("operations",
		func(op string) {
			Expect(Parse("foo${bar" + op + "xxx}baz")).To(HaveExactElements(
				Literal("foo"),
				Reference{Name: "bar", Op: op, Alt: Template{Literal("xxx")}},
				Literal("baz"),
			))
		},
		Entry(nil, "-"),
		Entry(nil, ":-"),
		Entry(nil, "?"),
		Entry(nil, ":?"),
		Entry(nil, "+"),
		Entry(nil, ":+"),
	)

	It("parses nested references", func() {
		t := Successful(Parse("a${X:+-${Y}}b"))
		Expect(t).To(HaveExactElements(
			Literal("a"),
			Reference{Name: "X", Op: ":+", Alt: Template{
				Literal("-"),
				Reference{Name: "Y"},
			}},
			Literal("b"),
		))
	})

	DescribeTable("rejects malformed references",
		func(s string, msg string) {
			t, err := Parse(s)
			Expect(err).To(MatchError(ContainSubstring(msg)))
			Expect(t).To(BeNil())
		},
		Entry("trailing dollar", "foo$", "stand-alone $"),
		Entry("open brace only", "foo${", "missing variable name"),
		Entry("unclosed name", "foo${bar", "unterminated ${"),
		Entry("unknown operation", "foo${bar*abc}", "invalid variable substitution operation"),
		Entry("unclosed operation", "foo${bar?", "unterminated ${"),
		Entry("dangling colon", "foo${bar:", "incomplete variable substitution operation"),
		Entry("unknown colon operation", "foo${bar:*", "invalid variable substitution operation"),
	)

})
