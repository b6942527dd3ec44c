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
Package resource loads the script resources of an SPA on demand, making sure
that each resource gets loaded only once.

The Registry records every resource ever requested, before its load is
started. The Loader consults the Registry for each load request: resources
that have already been loaded are never fetched again, and concurrent requests
for a resource still in flight share that single load.
*/
package resource

import (
	"errors"
	"fmt"
	"sync"
)

// Kind of a resource. Scripts are the only kind of resources.
type Kind string

// Script resources contain page modules.
const Script Kind = "js"

// State of a resource's load.
type State int

const (
	Loading State = iota
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Resource describes a requested resource, identified by its kind and name.
type Resource struct {
	Kind      Kind
	Name      string
	Permanent bool // scripts cannot be unloaded, so they are always permanent.
	State     State
}

// ErrLoad is matched by errors.Is for all LoadErrors.
var ErrLoad = errors.New("resource load failed")

// LoadError reports that the named resource could not be fetched or executed.
type LoadError struct {
	Name  string
	Cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading resource %q failed: %s", e.Name, e.Cause)
}

// Unwrap returns the cause of the load error.
func (e *LoadError) Unwrap() error { return e.Cause }

// Is reports ErrLoad as the sentinel for this error type.
func (e *LoadError) Is(target error) bool { return target == ErrLoad }

// Registry keeps track of the resources requested so far. There is at most
// one entry per kind and name, and entries are never removed.
type Registry struct {
	mu        sync.Mutex
	resources []*Resource
}

// NewRegistry returns a new, empty resource registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// find returns the entry for the specified resource, or nil. The caller must
// hold the lock.
func (r *Registry) find(kind Kind, name string) *Resource {
	for _, res := range r.resources {
		if res.Kind == kind && res.Name == name {
			return res
		}
	}
	return nil
}

// Lookup returns a copy of the entry for the specified resource, if any.
func (r *Registry) Lookup(kind Kind, name string) (Resource, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.find(kind, name); res != nil {
		return *res, true
	}
	return Resource{}, false
}

// IsLoaded returns true if the specified resource has been loaded.
func (r *Registry) IsLoaded(kind Kind, name string) bool {
	res, ok := r.Lookup(kind, name)
	return ok && res.State == Loaded
}

// Resources returns copies of all entries, in the order of their first
// request.
func (r *Registry) Resources() []Resource {
	r.mu.Lock()
	defer r.mu.Unlock()
	resources := make([]Resource, 0, len(r.resources))
	for _, res := range r.resources {
		resources = append(resources, *res)
	}
	return resources
}

// begin registers the specified resource in the Loading state, unless it is
// already loading or loaded. A failed entry is reused for another attempt. It
// returns true if the caller is now responsible for loading the resource.
func (r *Registry) begin(kind Kind, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := r.find(kind, name)
	if res == nil {
		r.resources = append(r.resources, &Resource{
			Kind:      kind,
			Name:      name,
			Permanent: true,
			State:     Loading,
		})
		return true
	}
	if res.State != Failed {
		return false
	}
	res.State = Loading
	return true
}

// finish records the outcome of loading the specified resource.
func (r *Registry) finish(kind Kind, name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := r.find(kind, name)
	if res == nil {
		return
	}
	if err != nil {
		res.State = Failed
		return
	}
	res.State = Loaded
}
