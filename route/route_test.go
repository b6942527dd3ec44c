// Copyright 2026 Harald Albrecht.
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

package route

import (
	"regexp"

	"github.com/thediveo/sparoute/page"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

var _ = Describe("route table", func() {

	DescribeTable("resolves the standard routes",
		func(path string, expectedResource string, expectedKey page.Key) {
			m := Successful(DefaultTable().Resolve(path))
			Expect(m.Route.Resource).To(Equal(expectedResource))
			Expect(m.Route.Page).To(Equal(expectedKey))
			Expect(m.Groups).NotTo(BeEmpty())
		},
		Entry("empty path", "", "root.js", page.Key("root")),
		Entry("/", "/", "root.js", page.Key("root")),
		Entry("/builders", "/builders", "builders.js", page.Key("builders")),
		Entry("/builders/", "/builders/", "builders.js", page.Key("builders")),
		Entry("/unknown/xyz", "/unknown/xyz", "notfound.js", page.Key("notfound")),
		Entry("/builders/foo", "/builders/foo", "notfound.js", page.Key("notfound")),
	)

	It("picks the first and not the best match", func() {
		t := MustNewTable(
			New(`^/b`, "b.js", "b"),
			New(`^/builders$`, "builders.js", "builders"),
			New(`.*`, "notfound.js", "notfound"),
		)
		Expect(Successful(t.Resolve("/builders")).Route.Page).To(Equal(page.Key("b")))

		t = MustNewTable(
			New(`^/builders$`, "builders.js", "builders"),
			New(`.*`, "notfound.js", "notfound"),
		)
		Expect(Successful(t.Resolve("/builders")).Route.Page).To(Equal(page.Key("builders")))
	})

	It("returns the pattern submatches", func() {
		t := MustNewTable(
			New(`^/builders/([^/]+)/builds/(\d+)$`, "build.js", "build"),
			New(`.*`, "notfound.js", "notfound"),
		)
		m := Successful(t.Resolve("/builders/linux/builds/42"))
		Expect(m.Groups).To(Equal([]string{"/builders/linux/builds/42", "linux", "42"}))
	})

	It("always resolves to exactly one route", func() {
		t := DefaultTable()
		for _, path := range []string{"", "/", "x", "/a/b/c", "/builders?x=1", "/ä/ö/ü", "//builders"} {
			m, err := t.Resolve(path)
			Expect(err).NotTo(HaveOccurred(), "path %q", path)
			Expect(m.Route.Resource).NotTo(BeEmpty())
		}
	})

	DescribeTable("rejects tables without a catch-all final route",
		func(routes ...Route) {
			Expect(NewTable(routes...)).Error().To(MatchError(ErrNoRouteMatched))
		},
		Entry("empty table"),
		Entry("no catch-all", New(`^/$`, "root.js", "root")),
		Entry("catch-all not last",
			New(`.*`, "notfound.js", "notfound"),
			New(`^/$`, "root.js", "root")),
		Entry("anchored non-empty final route", New(`^/.+$`, "any.js", "any")),
	)

	It("rejects routes without patterns", func() {
		Expect(NewTable(Route{Resource: "x.js"})).Error().To(HaveOccurred())
	})

	It("panics on invalid tables when told to", func() {
		Expect(func() { MustNewTable() }).To(Panic())
	})

	It("fails closed for a table not set up properly", func() {
		t := &Table{routes: []Route{New(`^/$`, "root.js", "root")}}
		Expect(t.Resolve("/foo")).Error().To(MatchError(ErrNoRouteMatched))
		var nilt *Table
		Expect(nilt.Resolve("/")).Error().To(MatchError(ErrNoRouteMatched))
	})

	It("compiles patterns", func() {
		Expect(Compile(`(`, "x.js", "x")).Error().To(HaveOccurred())
		r := Successful(Compile(`^/x$`, "x.js", "x"))
		Expect(r.String()).To(Equal("^/x$ -> x.js (x)"))
	})

	DescribeTable("detects catch-all patterns",
		func(expr string, expected bool) {
			Expect(IsCatchAll(regexp.MustCompile(expr))).To(Equal(expected))
		},
		Entry(nil, `.*`, true),
		Entry(nil, ``, true),
		Entry(nil, `^.*$`, true),
		Entry(nil, `^/`, false),
		Entry(nil, `.+`, false),
	)

	It("returns a copy of its routes", func() {
		t := DefaultTable()
		routes := t.Routes()
		routes[0].Resource = "bonkers.js"
		Expect(t.Routes()[0].Resource).To(Equal("root.js"))
	})

})
