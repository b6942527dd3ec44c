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
	"fmt"

	"github.com/thediveo/sparoute/page"
)

// Module is the Go side of a script resource: executing a script runs its
// module, which registers the module's page handlers.
type Module func(pages *page.Registry) error

// Modules maps script names to their modules.
type Modules map[string]Module

// Catalog executes scripts by running the modules registered for them,
// passing the page registry to register page handlers into.
type Catalog struct {
	pages   *page.Registry
	modules Modules
}

// NewCatalog returns an Executor running the given modules.
func NewCatalog(pages *page.Registry, modules Modules) *Catalog {
	m := make(Modules, len(modules))
	for name, mod := range modules {
		m[name] = mod
	}
	return &Catalog{pages: pages, modules: m}
}

// Pages returns the page registry modules register their handlers into.
func (c *Catalog) Pages() *page.Registry { return c.pages }

// Execute runs the module belonging to the named script. The script source
// itself only needs to have been fetched successfully. The module's handlers
// only become visible when the module succeeds, so a failed module can be
// executed again later.
func (c *Catalog) Execute(ctx context.Context, name string, source []byte) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	mod, ok := c.modules[name]
	if !ok || mod == nil {
		return fmt.Errorf("no module for script %q", name)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("module for script %q panicked: %v", name, r)
		}
	}()
	staged := page.NewRegistry()
	if err := mod(staged); err != nil {
		return err
	}
	c.pages.Adopt(staged)
	return nil
}
