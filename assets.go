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
	"embed"
	"io/fs"
)

//go:embed assets
var embeddedAssets embed.FS

// Assets contains the default shell page "index.html" as well as the static
// assets below "static/", including the page scripts in "static/js/".
var Assets fs.FS

// ShellPage is the name of the shell page inside Assets.
const ShellPage = "index.html"

func init() {
	var err error
	Assets, err = fs.Sub(embeddedAssets, "assets")
	if err != nil {
		panic(err)
	}
}
