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
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"regexp"
	"strings"
)

// ForwardedPrefixHeader, if present, specifies the prefix a path rewriting
// proxy has stripped off the request's URI path.
const ForwardedPrefixHeader = "X-Forwarded-Prefix"

// ForwardedUriHeader, if present, specifies the original URI, or only the
// original URI path, of a request as seen by the first proxy.
const ForwardedUriHeader = "X-Forwarded-Uri"

// Paths served by a ShellHandler, relative to the SPA's base path.
const (
	StaticPath = "static"
	UIPath     = "ui"
)

// baseRe matches the href of the shell's base element. The non-greedy "*?"
// keeps the match inside the first base element.
var baseRe = regexp.MustCompile(`(<base href=").*?("\s*/>)`)

// ShellHandler implements an http.Handler serving an SPA: the shell page for
// all paths below "ui/", static assets below "static/", and a redirect to
// "ui/" for the base path itself. The shell page gets its base element
// rewritten to the base path as seen by the client, based on forwarding proxy
// headers.
type ShellHandler struct {
	fs                fs.FS
	shell             string        // unrooted path and name of the shell page inside fs.
	staticfileHandler http.Handler  // fs adapted to http's file serving.
	shellRewriter     ShellRewriter // optional post-processing of the shell page.
}

// NewShellHandler returns a new HTTP handler serving the shell page and static
// assets from the specified fs. The shell should be an unrooted,
// slash-separated path+name inside fs, such as "index.html"; it gets sanitized
// anyway.
func NewShellHandler(fsys fs.FS, shell string, opts ...ShellHandlerOption) *ShellHandler {
	h := &ShellHandler{
		fs:                fsys,
		staticfileHandler: http.FileServer(http.FS(fsys)),
		shell:             path.Clean("/" + shell)[1:],
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ShellHandlerOption sets optional properties at the time of creating a
// ShellHandler.
type ShellHandlerOption func(*ShellHandler)

// ShellRewriter rewrites the shell page contents after its base element has
// been updated, but before delivering it to a client.
type ShellRewriter func(r *http.Request, shell string) string

// WithShellRewriter sets the ShellRewriter for application-specific changes to
// the shell page.
func WithShellRewriter(rewriter ShellRewriter) ShellHandlerOption {
	return func(h *ShellHandler) {
		h.shellRewriter = rewriter
	}
}

// ServeHTTP serves static assets, the shell page, or the redirect from the
// base path to the UI, depending on the request path. Everything else is not
// found.
func (h *ShellHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// "/" first, so that path.Clean never falls back to the working directory
	// and parent directory traversal stays inside fs.
	r.URL.Path = path.Clean("/" + r.URL.Path)
	switch p := r.URL.Path; {
	case p == "/":
		http.Redirect(w, r, h.basename(r)+UIPath+"/", http.StatusFound)
	case p == "/"+UIPath || strings.HasPrefix(p, "/"+UIPath+"/"):
		h.serveShell(w, r)
	case strings.HasPrefix(p, "/"+StaticPath+"/"):
		if !h.serveStaticAsset(w, r) {
			NormalizedHttpError(w, fs.ErrNotExist)
		}
	default:
		NormalizedHttpError(w, fs.ErrNotExist)
	}
}

// serveShell serves the shell page with its base element referring to the
// client-side base path.
func (h *ShellHandler) serveShell(w http.ResponseWriter, r *http.Request) {
	var err error
	defer func() {
		if err != nil {
			NormalizedHttpError(w, err)
		}
	}()
	// "$" would interfere with the "${1}" and "${2}" back references below.
	base := strings.ReplaceAll(h.basename(r), "$", "")
	f, err := h.fs.Open(h.shell)
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()
	fileInfo, err := f.Stat()
	if err != nil {
		return
	}
	contents, err := io.ReadAll(f)
	if err != nil {
		return
	}
	shell := baseRe.ReplaceAllString(string(contents), "${1}"+base+"${2}")
	if h.shellRewriter != nil {
		shell = h.shellRewriter(r, shell)
	}
	http.ServeContent(w, r, path.Base(h.shell), fileInfo.ModTime(), strings.NewReader(shell))
}

// serveStaticAsset serves the regular file at the (already sanitized) request
// path from fs, returning true if successful. If there is no such file,
// nothing is served and false is returned.
func (h *ShellHandler) serveStaticAsset(w http.ResponseWriter, r *http.Request) bool {
	info, err := fs.Stat(h.fs, r.URL.Path[1:]) // fs.FS uses unrooted paths.
	if err == nil && info.Mode()&os.ModeType == 0 {
		h.staticfileHandler.ServeHTTP(w, r)
		return true
	}
	if err != nil && !os.IsNotExist(err) {
		NormalizedHttpError(w, err)
		return true
	}
	return false
}

// originalReqPath returns the request path as the first proxy in a chain saw
// it, based on forwarding headers; without them, it is the (sanitized)
// request path.
func (h *ShellHandler) originalReqPath(r *http.Request) string {
	if fwprefix := r.Header.Get(ForwardedPrefixHeader); fwprefix != "" {
		return path.Join(path.Clean("/"+fwprefix), r.URL.Path)
	}
	// Some proxies pass the full URI, others only its path.
	if fwuri := r.Header.Get(ForwardedUriHeader); fwuri != "" {
		if u, err := url.Parse(fwuri); err == nil {
			return path.Clean("/" + u.Path)
		}
	}
	return r.URL.Path
}

// basename returns the base path of the SPA as seen by the client, always
// ending in "/". It is the original request path minus the path this handler
// sees; if they don't line up, the base is "/".
func (h *ShellHandler) basename(r *http.Request) string {
	seen := r.URL.Path
	original := h.originalReqPath(r)
	base := "/"
	switch {
	case seen == "/":
		base = original
	case strings.HasSuffix(original, seen):
		base = original[:len(original)-len(seen)]
	}
	if strings.HasSuffix(base, "/") {
		return base
	}
	return base + "/"
}
