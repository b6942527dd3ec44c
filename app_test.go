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

package sparoute

import (
	"context"
	"net/http"
	stdhttptest "net/http/httptest"
	"strings"
	"time"

	"github.com/thediveo/sparoute/nav"
	"github.com/thediveo/sparoute/page"
	"github.com/thediveo/sparoute/pages"
	"github.com/thediveo/sparoute/render"
	"github.com/thediveo/sparoute/resource"
	"github.com/thediveo/sparoute/route"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

// openShell opens the shell page at the URL, failing the spec on errors.
func openShell(ctx context.Context, fetcher resource.Fetcher, url string) (*render.Document, string) {
	GinkgoHelper()
	doc, baseURL, err := OpenShell(ctx, fetcher, url)
	Expect(err).NotTo(HaveOccurred())
	return doc, baseURL
}

// runApp runs the App in the background until the spec ends.
func runApp(app *App) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = app.Run(ctx)
	}()
	DeferCleanup(func() {
		cancel()
		Eventually(done).Should(BeClosed())
		app.Close()
	})
}

var _ = Describe("SPA app", func() {

	var (
		srv     *stdhttptest.Server
		fetcher resource.HTTPFetcher
	)

	BeforeEach(func() {
		mux := http.NewServeMux()
		mux.Handle("/spa/", http.StripPrefix("/spa", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Header.Set(ForwardedPrefixHeader, "/spa")
			NewShellHandler(Assets, ShellPage).ServeHTTP(w, r)
		})))
		srv = stdhttptest.NewServer(mux)
		DeferCleanup(srv.Close)
	})

	It("opens the shell page from a server", func(ctx context.Context) {
		doc, baseURL, err := OpenShell(ctx, fetcher, srv.URL+"/spa/ui/builders")
		Expect(err).NotTo(HaveOccurred())
		Expect(baseURL).To(Equal(srv.URL + "/spa/"))
		Expect(doc.Find("div#content").Length()).To(Equal(1))

		Expect(OpenShell(ctx, fetcher, srv.URL+"/elsewhere")).Error().To(
			MatchError(ContainSubstring("cannot fetch shell page")))
	})

	It("navigates the standard pages", func(ctx context.Context) {
		doc, baseURL := openShell(ctx, fetcher, srv.URL+"/spa/ui/")
		app := Successful(New(doc, fetcher,
			WithBaseURL(baseURL),
			WithModules(pages.Modules("linux")),
			WithLoadTimeout(5*time.Second)))
		runApp(app)

		t := Successful(app.Settle(ctx))
		Expect(t.Phase).To(Equal(nav.Completed))
		Expect(t.Path).To(Equal("/"))
		Expect(doc.Find("#content").Is(".root")).To(BeTrue())
		Expect(doc.Find("#header a").Length()).To(Equal(2))

		t = Successful(app.Visit(ctx, "builders"))
		Expect(t.Phase).To(Equal(nav.Completed))
		Expect(doc.Find("#content li.builder").Text()).To(Equal("linux"))
		Expect(app.History.URL()).To(Equal(baseURL + "ui/builders"))

		t = Successful(app.Visit(ctx, "unknown/xyz"))
		Expect(t.Phase).To(Equal(nav.Completed))
		Expect(doc.Find("#content p").Text()).To(ContainSubstring(`"/unknown/xyz"`))

		Expect(app.Resources.Resources()).To(HaveLen(3))
		Expect(app.Pages.Keys()).To(ConsistOf(pages.RootKey, pages.BuildersKey, pages.NotFoundKey))
	}, SpecTimeout(10*time.Second))

	It("follows header links", func(ctx context.Context) {
		doc, baseURL := openShell(ctx, fetcher, srv.URL+"/spa/ui")
		app := Successful(New(doc, fetcher, WithBaseURL(baseURL)))
		runApp(app)
		Expect(Successful(app.Settle(ctx)).Path).To(Equal("/"))

		links := doc.Find("#header a")
		Expect(links.Eq(1).AttrOr("href", "")).To(Equal(baseURL + "ui/builders"))
		Expect(doc.Activate(links.Eq(1))).To(Succeed())
		t := Successful(app.Settle(ctx))
		Expect(t.Path).To(Equal("/builders"))
		Expect(doc.Find("#content").Is(".builders")).To(BeTrue())
	}, SpecTimeout(10*time.Second))

	It("displays an error page for scripts that fail to load", func(ctx context.Context) {
		doc, baseURL := openShell(ctx, fetcher, srv.URL+"/spa/ui/")
		modules := pages.Modules()
		modules["waterfall.js"] = func(reg *page.Registry) error { return nil }
		app := Successful(New(doc, fetcher,
			WithBaseURL(baseURL),
			WithModules(modules),
			WithRoutes(route.MustNewTable(
				route.New(`^/waterfall$`, "waterfall.js", "waterfall"),
				route.New(`.*`, "root.js", "root"),
			))))
		runApp(app)
		Expect(Successful(app.Settle(ctx)).Phase).To(Equal(nav.Completed))

		t := Successful(app.Visit(ctx, "waterfall"))
		Expect(t.Phase).To(Equal(nav.Failed))
		Expect(t.Err).To(MatchError(resource.ErrLoad))
		Expect(doc.Find("#content.error").Length()).To(Equal(1))

		t = Successful(app.Visit(ctx, ""))
		Expect(t.Phase).To(Equal(nav.Completed))
		Expect(doc.Find("#content.error").Length()).To(BeZero())
	}, SpecTimeout(10*time.Second))

	It("works from embedded assets without a server", func(ctx context.Context) {
		doc := Successful(OpenShellFS(Assets, ShellPage))
		var phases []nav.Phase
		app := Successful(New(doc, resource.FSFetcher{FS: Assets},
			WithStartPath("builders"),
			WithModules(pages.Modules("windows")),
			WithHeaderLinks(render.HeaderLink{Label: "Builders", Path: "builders"}),
			WithObserver(func(t nav.Transition) { phases = append(phases, t.Phase) })))
		Expect(app.BaseURL).To(Equal("/"))
		runApp(app)
		Expect(Successful(app.Settle(ctx)).Phase).To(Equal(nav.Completed))
		Expect(phases).To(Equal([]nav.Phase{nav.Idle, nav.Loading, nav.Dispatching, nav.Rendering, nav.Completed}))
		Expect(doc.Find("#content li").Text()).To(Equal("windows"))
		Expect(doc.Find("#header").Text()).To(Equal("Builders"))

		html := Successful(doc.HTML())
		Expect(strings.Count(html, `id="content"`)).To(Equal(1))
	}, SpecTimeout(10*time.Second))

	It("requires a base URL", func() {
		doc := Successful(render.Parse(strings.NewReader(`<html><body></body></html>`)))
		Expect(New(doc, fetcher)).Error().To(MatchError(ContainSubstring("base URL")))
		app := Successful(New(doc, fetcher, WithBaseURL("/spa")))
		defer app.Close()
		Expect(app.BaseURL).To(Equal("/spa/"))
	})

	It("fails for unparsable shell bases", func(ctx context.Context) {
		fsys := resource.FSFetcher{FS: Assets}
		Expect(OpenShell(ctx, fsys, "%")).Error().To(HaveOccurred())
		Expect(OpenShellFS(Assets, "bonkers.html")).Error().To(
			MatchError(ContainSubstring("cannot read shell page")))
	})

})
