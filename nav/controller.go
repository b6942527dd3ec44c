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

/*
Package nav drives the navigation of an SPA: it maps the current URL of a
History to a route, loads the script resource of that route on demand,
dispatches to the page handler, and finally displays the rendered content.

Each navigation runs through the phases Loading, Dispatching and Rendering,
strictly in this order, ending in either Completed (done) or Failed. A
navigation that gets superseded by a newer navigation is cancelled and never displays
anything.
*/
package nav

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/thediveo/sparoute/page"
	"github.com/thediveo/sparoute/resource"
	"github.com/thediveo/sparoute/route"
)

// UIPath is the path below the base URL where the SPA's pages live.
const UIPath = "ui"

// ErrStaleNavigation is returned for navigations that have been superseded by
// a newer navigation before they could complete.
var ErrStaleNavigation = errors.New("stale navigation")

// Loader ensures that script resources are loaded.
type Loader interface {
	EnsureLoaded(ctx context.Context, kind resource.Kind, name string) (bool, error)
}

// Pages looks up page handlers.
type Pages interface {
	Lookup(key page.Key) (page.Handler, error)
}

// Renderer displays page contents and the navigation header.
type Renderer interface {
	DisplayContent(content *goquery.Selection)
	DisplayHeader()
	DisplayError(err error)
}

// Phase of a navigation.
type Phase int

const (
	Idle Phase = iota
	Loading
	Dispatching
	Rendering
	Completed
	Failed
)

var phaseNames = [...]string{"idle", "loading", "dispatching", "rendering", "completed", "failed"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Transition is reported to observers whenever a navigation enters a new
// phase. Err is only set for the Failed phase.
type Transition struct {
	Seq   uint64
	Path  string
	Phase Phase
	Err   error
}

// Observer gets called synchronously for each phase transition.
type Observer func(Transition)

// Controller opens the page for the current URL of a History.
type Controller struct {
	history  History
	routes   *route.Table
	loader   Loader
	pages    Pages
	renderer Renderer
	baseURL  string
	log      *slog.Logger
	observer Observer

	seq      atomic.Uint64
	mu       sync.Mutex // protects cancel
	cancel   context.CancelFunc
	renderMu sync.Mutex // serializes displaying content with the staleness check
}

// Option sets optional properties at the time of creating a Controller.
type Option func(*Controller)

// WithBaseURL sets the base URL of the SPA; it should end in a "/".
func WithBaseURL(baseURL string) Option {
	return func(c *Controller) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger to use instead of the default slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.log = logger
		}
	}
}

// WithObserver sets the observer of phase transitions.
func WithObserver(obs Observer) Option {
	return func(c *Controller) {
		c.observer = obs
	}
}

// New returns a new navigation controller.
func New(history History, routes *route.Table, loader Loader, pages Pages, renderer Renderer, opts ...Option) *Controller {
	c := &Controller{
		history:  history,
		routes:   routes,
		loader:   loader,
		pages:    pages,
		renderer: renderer,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PageURL returns the URL of the page at the specified route-relative path.
func (c *Controller) PageURL(path string) string {
	return c.baseURL + UIPath + "/" + strings.TrimPrefix(path, "/")
}

// GotoPage navigates to the page at the specified route-relative path by
// pushing a new history entry. The page then gets opened in response to the
// history's state change notification.
func (c *Controller) GotoPage(path string) {
	c.history.Push(c.PageURL(path))
}

// CurrentPath returns the route-relative path of the current URL, that is,
// without the base URL, UI path, query and fragment. URLs outside the base
// URL are returned as is, except for their query and fragment.
func (c *Controller) CurrentPath() string {
	return relativePath(c.history.URL(), c.baseURL+UIPath)
}

func relativePath(rawurl, prefix string) string {
	if idx := strings.IndexAny(rawurl, "?#"); idx >= 0 {
		rawurl = rawurl[:idx]
	}
	path := strings.TrimPrefix(rawurl, prefix)
	if unescaped, err := url.PathUnescape(path); err == nil {
		return unescaped
	}
	return path
}

// Seq returns the sequence number of the latest navigation.
func (c *Controller) Seq() uint64 { return c.seq.Load() }

// OpenCurrentPage opens the page for the current URL, superseding any
// navigation still in progress. It returns ErrStaleNavigation if it got
// superseded itself. Load errors and missing page handlers are displayed as
// an error page and then returned.
func (c *Controller) OpenCurrentPage(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	// the sequence number and the cancel func of the latest navigation change
	// together, so an older navigation never cancels a newer one.
	c.mu.Lock()
	seq := c.seq.Inc()
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = cancel
	c.mu.Unlock()

	path := c.CurrentPath()
	log := c.log.With(slog.Uint64("seq", seq), slog.String("path", path))
	c.transition(seq, path, Idle, nil)

	match, err := c.routes.Resolve(path)
	if err != nil {
		return c.fail(ctx, seq, path, log, err)
	}
	log.Debug("opening page",
		slog.String("resource", match.Route.Resource),
		slog.String("page", string(match.Route.Page)))

	c.transition(seq, path, Loading, nil)
	if _, err := c.loader.EnsureLoaded(ctx, resource.Script, match.Route.Resource); err != nil {
		return c.fail(ctx, seq, path, log, err)
	}
	if !c.isCurrent(seq) {
		return c.stale(log)
	}

	c.transition(seq, path, Dispatching, nil)
	handler, err := c.pages.Lookup(match.Route.Page)
	if err != nil {
		return c.fail(ctx, seq, path, log, err)
	}
	content, err := handler.Render(ctx, match.Groups)
	if err != nil {
		return c.fail(ctx, seq, path, log, err)
	}

	c.renderMu.Lock()
	defer c.renderMu.Unlock()
	if !c.isCurrent(seq) {
		return c.stale(log)
	}
	c.transition(seq, path, Rendering, nil)
	c.renderer.DisplayContent(content)
	c.transition(seq, path, Completed, nil)
	log.Debug("page opened")
	return nil
}

func (c *Controller) isCurrent(seq uint64) bool {
	return c.seq.Load() == seq
}

func (c *Controller) stale(log *slog.Logger) error {
	log.Debug("navigation superseded")
	return ErrStaleNavigation
}

// fail ends a navigation that hasn't been superseded by displaying the error.
// Navigations cancelled from the outside end without displaying anything.
func (c *Controller) fail(ctx context.Context, seq uint64, path string, log *slog.Logger, err error) error {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()
	if !c.isCurrent(seq) {
		return c.stale(log)
	}
	if ctxerr := ctx.Err(); ctxerr != nil {
		log.Debug("navigation cancelled")
		c.transition(seq, path, Failed, ctxerr)
		return ctxerr
	}
	log.Error("navigation failed", slog.String("error", err.Error()))
	c.renderer.DisplayError(err)
	c.transition(seq, path, Failed, err)
	return err
}

func (c *Controller) transition(seq uint64, path string, phase Phase, err error) {
	if c.observer != nil {
		c.observer(Transition{Seq: seq, Path: path, Phase: phase, Err: err})
	}
}

// Run displays the header and the current page, and afterwards opens the
// current page after each state change of the history, until the context is
// done or the history subscription ends. Navigations run concurrently, so
// that newer navigations supersede older ones still in progress.
func (c *Controller) Run(ctx context.Context) error {
	changes, unsubscribe := c.history.Subscribe()
	defer unsubscribe()

	var g errgroup.Group
	open := func() {
		g.Go(func() error {
			_ = c.OpenCurrentPage(ctx)
			return nil
		})
	}

	c.renderer.DisplayHeader()
	open()
	for {
		select {
		case <-ctx.Done():
			return g.Wait()
		case url, ok := <-changes:
			if !ok {
				return g.Wait()
			}
			c.log.Debug("history state changed", slog.String("url", url))
			open()
		}
	}
}
