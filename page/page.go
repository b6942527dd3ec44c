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
Package page keeps the page handlers of an SPA, keyed by their page keys.

Page handlers become available only after the script resource owning them has
been loaded: loading a script runs its page module, which then registers its
handlers into a Registry.
*/
package page

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Key identifies a page handler, such as "root" or "builders".
type Key string

// Handler renders the content of a page. The groups are the (sub)matches of
// the route pattern that led to this page, with groups[0] being the complete
// match.
type Handler interface {
	Render(ctx context.Context, groups []string) (*goquery.Selection, error)
}

// HandlerFunc adapts an ordinary function into a Handler.
type HandlerFunc func(ctx context.Context, groups []string) (*goquery.Selection, error)

// Render calls f(ctx, groups).
func (f HandlerFunc) Render(ctx context.Context, groups []string) (*goquery.Selection, error) {
	return f(ctx, groups)
}

// ErrHandlerMissing is matched by errors.Is for all MissingErrors.
var ErrHandlerMissing = errors.New("page handler missing")

// MissingError reports that no handler has been registered under a page key,
// usually because the script that was loaded for a route didn't register the
// page key the route expects.
type MissingError struct {
	Key Key
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("no page handler registered for key %q", string(e.Key))
}

// Is reports ErrHandlerMissing as the sentinel for this error type.
func (e *MissingError) Is(target error) bool {
	return target == ErrHandlerMissing
}

// Registry maps page keys to their handlers. Handlers are only ever added,
// never removed.
type Registry struct {
	mu       sync.RWMutex
	handlers map[Key]Handler
}

// NewRegistry returns a new and empty page registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: map[Key]Handler{},
	}
}

// Register adds the handler under the specified key. It panics when the key
// is already taken or the handler is nil, as both are programming errors in a
// page module.
func (r *Registry) Register(key Key, h Handler) {
	if h == nil {
		panic(fmt.Sprintf("page: nil handler for key %q", string(key)))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[key]; ok {
		panic(fmt.Sprintf("page: duplicate handler for key %q", string(key)))
	}
	r.handlers[key] = h
}

// Adopt moves all handlers of staged into this registry, either all of them
// or none. It panics when any of the staged keys is already taken.
func (r *Registry) Adopt(staged *Registry) {
	staged.mu.RLock()
	defer staged.mu.RUnlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range staged.handlers {
		if _, ok := r.handlers[key]; ok {
			panic(fmt.Sprintf("page: duplicate handler for key %q", string(key)))
		}
	}
	for key, h := range staged.handlers {
		r.handlers[key] = h
	}
}

// RegisterFunc is a convenience for registering a plain function.
func (r *Registry) RegisterFunc(key Key, fn func(ctx context.Context, groups []string) (*goquery.Selection, error)) {
	r.Register(key, HandlerFunc(fn))
}

// Lookup returns the handler registered under key, or a *MissingError.
func (r *Registry) Lookup(key Key) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[key]
	if !ok {
		return nil, &MissingError{Key: key}
	}
	return h, nil
}

// Keys returns the registered page keys in lexical order.
func (r *Registry) Keys() []Key {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]Key, 0, len(r.handlers))
	for key := range r.handlers {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
