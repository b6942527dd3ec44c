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

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/thediveo/sparoute/page"
	"github.com/thediveo/sparoute/route"
)

func init() {
	// Report fields by their YAML names.
	validation.ErrorTag = "yaml"
}

// Config of the sparoute command.
type Config struct {
	App ApplicationConfig `yaml:"app"`
	UI  UIConfig          `yaml:"ui"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.UI.Validate(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds the configuration of the shell server.
type HTTPConfig struct {
	Port      int    `yaml:"port"`
	AssetsDir string `yaml:"assets_dir"` // empty: serve the embedded assets.
}

// Address returns the HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// UIConfig configures the client-side page router.
type UIConfig struct {
	LoadTimeout time.Duration `yaml:"load_timeout"`
	Routes      []RouteConfig `yaml:"routes"`
	Builders    []string      `yaml:"builders"`
}

// Validate validates the UI configuration, including that the routes form a
// valid route table.
func (c *UIConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LoadTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.Routes, validation.Required),
	); err != nil {
		return err
	}
	for idx := range c.Routes {
		if err := c.Routes[idx].Validate(); err != nil {
			return fmt.Errorf("route #%d: %w", idx, err)
		}
	}
	_, err := c.RouteTable()
	return err
}

// RouteTable returns the route table for the configured routes, in their
// configured order.
func (c *UIConfig) RouteTable() (*route.Table, error) {
	routes := make([]route.Route, 0, len(c.Routes))
	for _, rc := range c.Routes {
		r, err := route.Compile(rc.Pattern, rc.Script, page.Key(rc.Page))
		if err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	return route.NewTable(routes...)
}

// RouteConfig configures a single route.
type RouteConfig struct {
	Pattern string `yaml:"pattern"`
	Script  string `yaml:"script"`
	Page    string `yaml:"page"`
}

// Validate validates the route configuration.
func (c *RouteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Pattern, validation.Required, validation.By(compiles)),
		validation.Field(&c.Script, validation.Required),
		validation.Field(&c.Page, validation.Required),
	)
}

func compiles(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return errors.New("must be a string")
	}
	if _, err := regexp.Compile(s); err != nil {
		return errors.New("must be a valid regular expression")
	}
	return nil
}

// NewDefaultConfig returns a new Config with the standard routes.
func NewDefaultConfig() *Config {
	routes := route.DefaultTable().Routes()
	rcs := make([]RouteConfig, 0, len(routes))
	for _, r := range routes {
		rcs = append(rcs, RouteConfig{
			Pattern: r.Pattern.String(),
			Script:  r.Resource,
			Page:    string(r.Page),
		})
	}
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8010,
			},
		},
		UI: UIConfig{
			LoadTimeout: 10 * time.Second,
			Routes:      rcs,
		},
	}
}
