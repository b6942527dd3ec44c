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
Package route resolves route-relative URL paths to the script resource and
page key responsible for rendering them.

A Table is an ordered list of routes that is evaluated first-match-wins: the
first route in declaration order whose pattern matches a path is the route for
that path, even if a later route would match "better". The final route of
every Table must match all paths, so that resolving a path always succeeds.
*/
package route

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/thediveo/sparoute/page"
)

// ErrNoRouteMatched signals a misconfigured route table lacking a catch-all
// final route.
var ErrNoRouteMatched = errors.New("no route matched")

// Route binds a path pattern to the script resource to load and the page key
// to dispatch to, once the script has been loaded.
type Route struct {
	Pattern  *regexp.Regexp
	Resource string
	Page     page.Key
}

// New returns a Route for the given pattern expression, panicking if the
// expression doesn't compile. It is meant for statically defined routes.
func New(pattern string, resource string, key page.Key) Route {
	return Route{
		Pattern:  regexp.MustCompile(pattern),
		Resource: resource,
		Page:     key,
	}
}

// Compile returns a Route for the given pattern expression, or an error if
// the expression is invalid.
func Compile(pattern string, resource string, key page.Key) (Route, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Route{}, fmt.Errorf("invalid route pattern %q: %w", pattern, err)
	}
	return Route{Pattern: re, Resource: resource, Page: key}, nil
}

func (r Route) String() string {
	return fmt.Sprintf("%s -> %s (%s)", r.Pattern, r.Resource, string(r.Page))
}

// Match is the result of resolving a path: the route that matched together
// with the submatches of its pattern; Groups[0] is the complete match.
type Match struct {
	Route  Route
	Groups []string
}

// Table is an immutable, ordered list of routes.
type Table struct {
	routes []Route
}

// probes are paths a catch-all pattern must match; they cover the empty path,
// the root, known and unknown paths, as well as paths with query and fragment
// remains.
var probes = []string{
	"",
	"/",
	"//",
	"builders",
	"/builders",
	"/builders/",
	"/unknown/xyz",
	"/a/b/c/d/e/f/g/h",
	"/?q=1",
	"/#frag",
	"/%20/..",
	"ö",
}

// IsCatchAll reports whether the pattern matches every path.
func IsCatchAll(re *regexp.Regexp) bool {
	if re == nil {
		return false
	}
	for _, probe := range probes {
		if !re.MatchString(probe) {
			return false
		}
	}
	return true
}

// NewTable returns a new Table with the routes in the given order. It fails
// with ErrNoRouteMatched if there are no routes at all, or if the last route
// doesn't match all paths.
func NewTable(routes ...Route) (*Table, error) {
	if len(routes) == 0 {
		return nil, fmt.Errorf("empty route table: %w", ErrNoRouteMatched)
	}
	for idx, r := range routes {
		if r.Pattern == nil {
			return nil, fmt.Errorf("route #%d without pattern", idx)
		}
	}
	if last := routes[len(routes)-1]; !IsCatchAll(last.Pattern) {
		return nil, fmt.Errorf("final route %q is not a catch-all: %w",
			last.Pattern.String(), ErrNoRouteMatched)
	}
	return &Table{routes: append([]Route(nil), routes...)}, nil
}

// MustNewTable is like NewTable, but panics instead of returning an error.
func MustNewTable(routes ...Route) *Table {
	t, err := NewTable(routes...)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultTable returns the route table for the standard pages: the root page, the
// builders overview and the "not found" fallback.
func DefaultTable() *Table {
	return MustNewTable(
		New(`^/?$`, "root.js", "root"),
		New(`^/builders/?$`, "builders.js", "builders"),
		// must be the final route.
		New(`.*`, "notfound.js", "notfound"),
	)
}

// Routes returns a copy of the routes in declaration order.
func (t *Table) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

// Resolve returns the first route in declaration order matching path, with
// its pattern submatches. It fails with ErrNoRouteMatched only for tables that
// haven't been set up using NewTable.
func (t *Table) Resolve(path string) (Match, error) {
	if t != nil {
		for _, r := range t.routes {
			if groups := r.Pattern.FindStringSubmatch(path); groups != nil {
				return Match{Route: r, Groups: groups}, nil
			}
		}
	}
	return Match{}, fmt.Errorf("path %q: %w", path, ErrNoRouteMatched)
}
