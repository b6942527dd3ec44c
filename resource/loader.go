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

package resource

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultScriptPath is the path of script resources relative to the base URL.
const DefaultScriptPath = "static/js/"

// Fetcher retrieves the contents of a resource given its URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Executor runs a fetched script resource.
type Executor interface {
	Execute(ctx context.Context, name string, source []byte) error
}

// Loader loads resources on demand, at most once per resource.
type Loader struct {
	registry   *Registry
	fetcher    Fetcher
	executor   Executor
	baseURL    string
	scriptPath string
	timeout    time.Duration
	log        *slog.Logger
	flights    singleflight.Group
}

// LoaderOption sets optional properties at the time of creating a Loader.
type LoaderOption func(*Loader)

// WithBaseURL sets the base URL the script path and names are resolved
// against; it should end in a "/".
func WithBaseURL(baseURL string) LoaderOption {
	return func(l *Loader) {
		l.baseURL = baseURL
	}
}

// WithScriptPath overrides DefaultScriptPath.
func WithScriptPath(path string) LoaderOption {
	return func(l *Loader) {
		l.scriptPath = path
	}
}

// WithTimeout limits the time fetching and executing a single resource may
// take. Zero means no limit.
func WithTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		l.timeout = d
	}
}

// WithLogger sets the logger to use instead of the default slog logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.log = logger
		}
	}
}

// NewLoader returns a new Loader registering its resources in the specified
// registry, fetching them using the fetcher and finally running them using
// the executor.
func NewLoader(registry *Registry, fetcher Fetcher, executor Executor, opts ...LoaderOption) *Loader {
	l := &Loader{
		registry:   registry,
		fetcher:    fetcher,
		executor:   executor,
		scriptPath: DefaultScriptPath,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Registry returns the registry of this loader.
func (l *Loader) Registry() *Registry { return l.registry }

// URL returns the URL to fetch the named script from.
func (l *Loader) URL(name string) string {
	return l.baseURL + l.scriptPath + name
}

// EnsureLoaded makes sure that the specified resource has been loaded,
// returning true if it had already been loaded before. Otherwise, it registers
// the resource, loads it, and returns false after the load has completed. In
// case concurrent calls request the same resource, only a single load takes
// place and all callers wait for it to complete.
//
// A failed load is reported as a *LoadError; the next call for the same
// resource then attempts a new load. When ctx gets cancelled, EnsureLoaded
// returns ctx.Err() without waiting for an ongoing load, which then completes
// in the background.
func (l *Loader) EnsureLoaded(ctx context.Context, kind Kind, name string) (bool, error) {
	if l.registry.IsLoaded(kind, name) {
		return true, nil
	}
	// The load must not be cut short by any single caller giving up: other
	// callers might have joined the same flight in the meantime.
	loadctx := context.WithoutCancel(ctx)
	ch := l.flights.DoChan(string(kind)+":"+name, func() (any, error) {
		if !l.registry.begin(kind, name) {
			return nil, nil
		}
		err := l.load(loadctx, kind, name)
		l.registry.finish(kind, name, err)
		return nil, err
	})
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case res := <-ch:
		return false, res.Err
	}
}

func (l *Loader) load(ctx context.Context, kind Kind, name string) error {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	url := l.URL(name)
	log := l.log.With(slog.String("kind", string(kind)), slog.String("name", name))
	log.Debug("loading resource", slog.String("url", url))
	source, err := l.fetcher.Fetch(ctx, url)
	if err != nil {
		log.Warn("fetching resource failed", slog.String("error", err.Error()))
		return &LoadError{Name: name, Cause: err}
	}
	if err := l.executor.Execute(ctx, name, source); err != nil {
		log.Warn("executing resource failed", slog.String("error", err.Error()))
		return &LoadError{Name: name, Cause: err}
	}
	log.Debug("resource loaded", slog.Int("size", len(source)))
	return nil
}
