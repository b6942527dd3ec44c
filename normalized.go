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
	"context"
	"errors"
	"io/fs"
	"net/http"
)

// NormalizedHttpError writes an HTTP status code and message for the
// specified error, without leaking any internal details of the error itself.
func NormalizedHttpError(w http.ResponseWriter, err error) {
	status := NormalizedStatus(err)
	http.Error(w, http.StatusText(status), status)
}

// NormalizedStatus returns the HTTP status code corresponding to err.
func NormalizedStatus(err error) int {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, fs.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
