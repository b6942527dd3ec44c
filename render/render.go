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
Package render manipulates the DOM of an SPA shell document: it swaps page
content into the content region and renders the navigation header.

The shell document has two regions, identified by their ids: "header" and
"content". Displaying new content replaces the current content node and then
marks the new content as the content region for the next replacement.
*/
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// IDs of the shell regions.
const (
	ContentID = "content"
	HeaderID  = "header"
)

// GotoAttr is the attribute of links carrying the route-relative path to
// navigate to when the link gets activated.
const GotoAttr = "data-goto"

// Navigator moves the SPA to another page.
type Navigator interface {
	GotoPage(path string)
	PageURL(path string) string
}

// HeaderLink is a labelled link to a route-relative path in the header.
type HeaderLink struct {
	Label string
	Path  string
}

// DefaultHeaderLinks are the links shown in the header.
var DefaultHeaderLinks = []HeaderLink{
	{Label: "Home", Path: ""},
	{Label: "Builders", Path: "builders"},
}

// Document is an SPA shell document, safe for concurrent use.
type Document struct {
	mu    sync.Mutex
	doc   *goquery.Document
	nav   Navigator
	links []HeaderLink
}

// NewDocument wraps the specified goquery document.
func NewDocument(doc *goquery.Document) *Document {
	return &Document{
		doc:   doc,
		links: DefaultHeaderLinks,
	}
}

// Parse reads an HTML shell document.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return NewDocument(doc), nil
}

// Bind the navigator to use for links.
func (d *Document) Bind(nav Navigator) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nav = nav
}

// SetHeaderLinks replaces the links DisplayHeader renders.
func (d *Document) SetHeaderLinks(links ...HeaderLink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.links = append([]HeaderLink(nil), links...)
}

// Base returns the href of the document's base element, if any.
func (d *Document) Base() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	href, _ := d.doc.Find("base").First().Attr("href")
	return href
}

// DisplayContent replaces the content region with content, which then becomes
// the content region. Content consisting of multiple nodes gets wrapped into
// a div element first; missing content is displayed as an empty div.
func (d *Document) DisplayContent(content *goquery.Selection) {
	content = single(content)
	d.mu.Lock()
	defer d.mu.Unlock()
	current := d.doc.Find("#" + ContentID)
	if current.Length() == 0 {
		d.body().AppendSelection(content)
	} else {
		current.First().ReplaceWithSelection(content)
		current.Slice(1, current.Length()).Remove()
	}
	content.SetAttr("id", ContentID)
}

// DisplayHeader replaces the header region with a new header containing the
// navigation links.
func (d *Document) DisplayHeader() {
	d.mu.Lock()
	defer d.mu.Unlock()
	hdr := Element("div", Attr("class", "header"), Attr("id", HeaderID))
	for idx, link := range d.links {
		if idx > 0 {
			hdr.AppendNodes(TextNode(" - "))
		}
		hdr.AppendSelection(d.link(link.Path, link.Label))
	}
	current := d.doc.Find("div#" + HeaderID)
	if current.Length() == 0 {
		d.body().PrependSelection(hdr)
		return
	}
	current.ReplaceWithSelection(hdr)
}

// DisplayError displays an error notice in place of the page content.
func (d *Document) DisplayError(err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	notice := Element("div", Attr("class", "error"))
	notice.AppendSelection(Element("h1").SetText("Something went wrong"))
	notice.AppendSelection(Element("p").SetText(msg))
	d.DisplayContent(notice)
}

// Link returns a new anchor element with the specified label that navigates
// to the route-relative path when activated.
func (d *Document) Link(path, label string) *goquery.Selection {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.link(path, label)
}

func (d *Document) link(path, label string) *goquery.Selection {
	href := path
	if d.nav != nil {
		href = d.nav.PageURL(path)
	}
	return Element("a", Attr("href", href), Attr(GotoAttr, path)).SetText(label)
}

// ErrNotALink is returned when activating something that isn't a navigation
// link.
var ErrNotALink = errors.New("not a navigation link")

// Activate follows the first link in the selection, as if a user had clicked
// on it.
func (d *Document) Activate(link *goquery.Selection) error {
	path, ok := link.First().Attr(GotoAttr)
	if !ok {
		return ErrNotALink
	}
	d.mu.Lock()
	nav := d.nav
	d.mu.Unlock()
	if nav == nil {
		return fmt.Errorf("no navigator for link to %q", path)
	}
	nav.GotoPage(path)
	return nil
}

// Find returns the elements matching the selector, for inspection only.
func (d *Document) Find(selector string) *goquery.Selection {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Find(selector)
}

// ContentHTML returns the outer HTML of the content region.
func (d *Document) ContentHTML() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return goquery.OuterHtml(d.doc.Find("#" + ContentID).First())
}

// HTML returns the complete document markup.
func (d *Document) HTML() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var sb strings.Builder
	for _, n := range d.doc.Nodes {
		if err := html.Render(&sb, n); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// body returns the body element, or the document itself if there is none.
// The caller must hold the lock.
func (d *Document) body() *goquery.Selection {
	if body := d.doc.Find("body"); body.Length() > 0 {
		return body.First()
	}
	return d.doc.Selection
}

// single returns content as a selection of exactly one element node.
func single(content *goquery.Selection) *goquery.Selection {
	if content == nil || content.Length() == 0 {
		return Element("div")
	}
	if content.Length() == 1 && content.Nodes[0].Type == html.ElementNode {
		return content
	}
	wrapper := Element("div")
	for _, n := range content.Nodes {
		if n.Type == html.DocumentNode {
			for n.FirstChild != nil {
				adopt(wrapper.Nodes[0], n.FirstChild)
			}
			continue
		}
		adopt(wrapper.Nodes[0], n)
	}
	return wrapper
}

// adopt moves the node n to the end of parent's children.
func adopt(parent, n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
	parent.AppendChild(n)
}

// Attr returns an HTML attribute for use with Element.
func Attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// Element returns a selection of a newly created, detached element.
func Element(tag string, attrs ...html.Attribute) *goquery.Selection {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
	return goquery.NewDocumentFromNode(n).Selection
}

// TextNode returns a new, detached text node.
func TextNode(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}
