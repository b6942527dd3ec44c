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
Package pages contains the page modules of the standard SPA pages: the root
page, the builders overview, and the "not found" fallback page.
*/
package pages

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/thediveo/sparoute/page"
	"github.com/thediveo/sparoute/render"
	"github.com/thediveo/sparoute/resource"
)

// Page keys of the standard pages.
const (
	RootKey     page.Key = "root"
	BuildersKey page.Key = "builders"
	NotFoundKey page.Key = "notfound"
)

// Modules returns the modules for the standard page scripts, with the
// builders page listing the specified builder names.
func Modules(builders ...string) resource.Modules {
	return resource.Modules{
		"root.js":     Root,
		"builders.js": Builders(builders...),
		"notfound.js": NotFound,
	}
}

// Root registers the root page.
func Root(pages *page.Registry) error {
	pages.RegisterFunc(RootKey, func(ctx context.Context, _ []string) (*goquery.Selection, error) {
		content := render.Element("div", render.Attr("class", "root"))
		content.AppendSelection(render.Element("h1").SetText("Welcome"))
		content.AppendSelection(render.Element("p").SetText("Pick a page from the header above."))
		return content, nil
	})
	return nil
}

// Builders returns a module registering the builders overview page listing
// the specified builder names.
func Builders(names ...string) resource.Module {
	names = append([]string(nil), names...)
	return func(pages *page.Registry) error {
		pages.RegisterFunc(BuildersKey, func(ctx context.Context, _ []string) (*goquery.Selection, error) {
			content := render.Element("div", render.Attr("class", "builders"))
			content.AppendSelection(render.Element("h1").SetText("Builders"))
			if len(names) == 0 {
				content.AppendSelection(render.Element("p").SetText("No builders configured."))
				return content, nil
			}
			list := render.Element("ul")
			for _, name := range names {
				list.AppendSelection(render.Element("li", render.Attr("class", "builder")).SetText(name))
			}
			content.AppendSelection(list)
			return content, nil
		})
		return nil
	}
}

// NotFound registers the fallback page for paths without a page of their
// own.
func NotFound(pages *page.Registry) error {
	pages.RegisterFunc(NotFoundKey, func(ctx context.Context, groups []string) (*goquery.Selection, error) {
		path := ""
		if len(groups) > 0 {
			path = groups[0]
		}
		content := render.Element("div", render.Attr("class", "notfound"))
		content.AppendSelection(render.Element("h1").SetText("Not Found"))
		content.AppendSelection(render.Element("p").SetText(fmt.Sprintf("There is no page at %q.", path)))
		return content, nil
	})
	return nil
}
