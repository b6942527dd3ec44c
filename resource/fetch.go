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
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// maxResourceSize limits the size of fetched resources.
const maxResourceSize = 16 << 20

// HTTPFetcher fetches resources via HTTP(S) GET requests.
type HTTPFetcher struct {
	Client *http.Client // defaults to http.DefaultClient.
}

// Fetch GETs the resource at the specified URL, failing for any non-2xx
// response status.
func (f HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxResourceSize))
}

// FSFetcher fetches resources from a file system instead of a server, using
// the URL path with Prefix removed as the (unrooted) file path. It serves
// embedded SPA assets without a round trip through HTTP.
type FSFetcher struct {
	FS     fs.FS
	Prefix string // URL path prefix to strip, such as "/" or "/spa/".
}

// Fetch reads the file corresponding to the URL's path.
func (f FSFetcher) Fetch(ctx context.Context, rawurl string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, err
	}
	name := path.Clean("/" + u.Path)
	prefix := path.Clean("/" + f.Prefix)
	if prefix != "/" {
		if !strings.HasPrefix(name, prefix+"/") {
			return nil, fmt.Errorf("%s outside %s: %w", name, prefix, fs.ErrNotExist)
		}
		name = name[len(prefix):]
	}
	return fs.ReadFile(f.FS, name[1:])
}
