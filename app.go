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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/thediveo/sparoute/nav"
	"github.com/thediveo/sparoute/page"
	"github.com/thediveo/sparoute/pages"
	"github.com/thediveo/sparoute/render"
	"github.com/thediveo/sparoute/resource"
	"github.com/thediveo/sparoute/route"
)

// settledBacklog is the number of settled navigations an App buffers.
const settledBacklog = 64

// App is a client-side SPA: a shell document with the page router driving
// it. The registries are owned by the App, so independent Apps never share
// loaded resources or page handlers.
type App struct {
	BaseURL    string
	Document   *render.Document
	Resources  *resource.Registry
	Loader     *resource.Loader
	Pages      *page.Registry
	Routes     *route.Table
	History    *nav.MemoryHistory
	Controller *nav.Controller

	settled chan nav.Transition
}

type appOptions struct {
	baseURL     string
	startPath   string
	routes      *route.Table
	modules     resource.Modules
	logger      *slog.Logger
	timeout     time.Duration
	observer    nav.Observer
	headerLinks []render.HeaderLink
}

// Option sets optional properties at the time of creating an App.
type Option func(*appOptions)

// WithBaseURL sets the base URL of the SPA, overriding the base element of
// the shell document.
func WithBaseURL(baseURL string) Option {
	return func(o *appOptions) {
		o.baseURL = baseURL
	}
}

// WithStartPath sets the route-relative path of the page to start with.
func WithStartPath(path string) Option {
	return func(o *appOptions) {
		o.startPath = path
	}
}

// WithRoutes sets the route table, instead of route.DefaultTable.
func WithRoutes(routes *route.Table) Option {
	return func(o *appOptions) {
		o.routes = routes
	}
}

// WithModules sets the page modules, instead of the standard pages.
func WithModules(modules resource.Modules) Option {
	return func(o *appOptions) {
		o.modules = modules
	}
}

// WithLogger sets the logger for loading and navigation.
func WithLogger(logger *slog.Logger) Option {
	return func(o *appOptions) {
		o.logger = logger
	}
}

// WithLoadTimeout limits the time loading a single script may take.
func WithLoadTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.timeout = d
	}
}

// WithObserver sets an observer of navigation phase transitions.
func WithObserver(obs nav.Observer) Option {
	return func(o *appOptions) {
		o.observer = obs
	}
}

// WithHeaderLinks sets the links of the navigation header.
func WithHeaderLinks(links ...render.HeaderLink) Option {
	return func(o *appOptions) {
		o.headerLinks = links
	}
}

// New returns a new App for the shell document, fetching page scripts
// using the specified fetcher. Unless set otherwise, the base URL is taken
// from the document's base element, and the standard routes and pages are
// used.
func New(doc *render.Document, fetcher resource.Fetcher, opts ...Option) (*App, error) {
	o := appOptions{
		routes:  route.DefaultTable(),
		modules: pages.Modules(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.baseURL == "" {
		o.baseURL = doc.Base()
	}
	if o.baseURL == "" {
		return nil, errors.New("missing SPA base URL")
	}
	if !strings.HasSuffix(o.baseURL, "/") {
		o.baseURL += "/"
	}
	if o.headerLinks != nil {
		doc.SetHeaderLinks(o.headerLinks...)
	}

	a := &App{
		BaseURL:   o.baseURL,
		Document:  doc,
		Resources: resource.NewRegistry(),
		Pages:     page.NewRegistry(),
		Routes:    o.routes,
		settled:   make(chan nav.Transition, settledBacklog),
	}
	a.Loader = resource.NewLoader(a.Resources, fetcher,
		resource.NewCatalog(a.Pages, o.modules),
		resource.WithBaseURL(o.baseURL),
		resource.WithTimeout(o.timeout),
		resource.WithLogger(o.logger))
	a.History = nav.NewMemoryHistory(o.baseURL + nav.UIPath + "/" + strings.TrimPrefix(o.startPath, "/"))
	a.Controller = nav.New(a.History, a.Routes, a.Loader, a.Pages, doc,
		nav.WithBaseURL(o.baseURL),
		nav.WithLogger(o.logger),
		nav.WithObserver(func(t nav.Transition) {
			if o.observer != nil {
				o.observer(t)
			}
			a.settle(t)
		}))
	doc.Bind(a.Controller)
	return a, nil
}

// settle queues navigations that have come to an end, dropping them when
// nobody is waiting.
func (a *App) settle(t nav.Transition) {
	if t.Phase != nav.Completed && t.Phase != nav.Failed {
		return
	}
	select {
	case a.settled <- t:
	default:
	}
}

// Run the App's navigation until the context is done or the App is closed.
func (a *App) Run(ctx context.Context) error {
	return a.Controller.Run(ctx)
}

// Close the App's history, which ends Run.
func (a *App) Close() {
	a.History.Close()
}

// Settle waits for the next navigation to come to an end, returning its final
// transition.
func (a *App) Settle(ctx context.Context) (nav.Transition, error) {
	select {
	case <-ctx.Done():
		return nav.Transition{}, ctx.Err()
	case t := <-a.settled:
		return t, nil
	}
}

// Visit navigates to the specified route-relative path and waits for this
// navigation to come to an end. The App must be running.
func (a *App) Visit(ctx context.Context, path string) (nav.Transition, error) {
	want := "/" + strings.TrimPrefix(path, "/")
	a.Controller.GotoPage(path)
	for {
		t, err := a.Settle(ctx)
		if err != nil {
			return t, err
		}
		if t.Path == want {
			return t, nil
		}
	}
}

// OpenShell fetches the shell page at shellURL and parses it. It returns the
// document together with the absolute base URL of the SPA, derived from the
// shell's base element.
func OpenShell(ctx context.Context, fetcher resource.Fetcher, shellURL string) (*render.Document, string, error) {
	contents, err := fetcher.Fetch(ctx, shellURL)
	if err != nil {
		return nil, "", fmt.Errorf("cannot fetch shell page: %w", err)
	}
	doc, err := render.Parse(bytes.NewReader(contents))
	if err != nil {
		return nil, "", fmt.Errorf("cannot parse shell page: %w", err)
	}
	shell, err := url.Parse(shellURL)
	if err != nil {
		return nil, "", err
	}
	base, err := url.Parse(doc.Base())
	if err != nil {
		return nil, "", fmt.Errorf("invalid shell base: %w", err)
	}
	baseURL := shell.ResolveReference(base).String()
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return doc, baseURL, nil
}

// OpenShellFS reads and parses the named shell page from fsys.
func OpenShellFS(fsys fs.FS, name string) (*render.Document, error) {
	contents, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("cannot read shell page: %w", err)
	}
	return render.Parse(bytes.NewReader(contents))
}
