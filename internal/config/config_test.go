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

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/thediveo/sparoute/page"
	"github.com/thediveo/sparoute/route"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

const sample = `
app:
  log_level: debug
  http:
    port: ${SPAROUTE_TEST_PORT}
ui:
  load_timeout: 3s
  builders: [linux, windows]
  routes:
    - pattern: '^/?$'
      script: root.js
      page: root
    - pattern: '^/waterfall/?$'
      script: waterfall.js
      page: waterfall
    - pattern: '.*'
      script: notfound.js
      page: notfound
`

var _ = Describe("configuration", func() {

	It("has valid defaults", func() {
		cfg := NewDefaultConfig()
		Expect(cfg.Validate()).To(Succeed())
		Expect(cfg.App.HTTP.Address()).To(Equal(":8010"))
		t := Successful(cfg.UI.RouteTable())
		Expect(Successful(t.Resolve("/builders")).Route.Page).To(Equal(page.Key("builders")))
	})

	It("loads YAML with environment variables", func() {
		GinkgoT().Setenv("SPAROUTE_TEST_PORT", "8888")
		name := filepath.Join(GinkgoT().TempDir(), "config.yaml")
		Expect(os.WriteFile(name, []byte(sample), 0o600)).To(Succeed())

		cfg := NewDefaultConfig()
		Expect(Load(name, cfg)).To(Succeed())
		Expect(cfg.App.LogLevel).To(Equal(slog.LevelDebug))
		Expect(cfg.App.HTTP.Port).To(Equal(8888))
		Expect(cfg.UI.LoadTimeout).To(Equal(3 * time.Second))
		Expect(cfg.UI.Builders).To(Equal([]string{"linux", "windows"}))
		Expect(cfg.UI.Routes).To(HaveLen(3))

		t := Successful(cfg.UI.RouteTable())
		Expect(Successful(t.Resolve("/waterfall")).Route.Resource).To(Equal("waterfall.js"))
		Expect(Successful(t.Resolve("/builders")).Route.Resource).To(Equal("notfound.js"))
	})

	It("keeps defaults when there is no config file", func() {
		cfg := NewDefaultConfig()
		Expect(LoadOptional(filepath.Join(GinkgoT().TempDir(), "missing.yaml"), cfg)).To(Succeed())
		Expect(cfg.App.HTTP.Port).To(Equal(8010))
		Expect(Load(filepath.Join(GinkgoT().TempDir(), "missing.yaml"), cfg)).To(
			MatchError(ContainSubstring("failed to read config file")))
	})

	DescribeTable("rejects invalid configurations",
		func(yaml string, expected string) {
			cfg := NewDefaultConfig()
			Expect(Parse([]byte(yaml), cfg)).To(MatchError(ContainSubstring(expected)))
		},
		Entry("broken YAML", "app: [", "failed to parse config"),
		Entry("port out of range", "app: {http: {port: 70000}}", "port"),
		Entry("no routes", "ui: {routes: []}", "routes"),
		Entry("invalid pattern", `ui: {routes: [{pattern: "(", script: a.js, page: a}]}`, "valid regular expression"),
		Entry("missing script", `ui: {routes: [{pattern: ".*", page: a}]}`, "script"),
		Entry("no catch-all", `ui: {routes: [{pattern: "^/$", script: a.js, page: a}]}`,
			route.ErrNoRouteMatched.Error()),
		Entry("negative timeout", "ui: {load_timeout: -1s}", "load_timeout"),
	)

})
