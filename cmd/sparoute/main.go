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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/thediveo/sparoute"
	"github.com/thediveo/sparoute/internal/config"
	"github.com/thediveo/sparoute/nav"
	"github.com/thediveo/sparoute/pages"
	"github.com/thediveo/sparoute/resource"
)

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg := config.NewDefaultConfig()
	if err := config.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	var assets fs.FS = sparoute.Assets
	if dir := cfg.App.HTTP.AssetsDir; dir != "" {
		assets = os.DirFS(dir)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/*", sparoute.NewShellHandler(assets, sparoute.ShellPage))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped successfully")
	return nil
}

func open(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return errors.New("missing shell page URL")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	routes, err := cfg.UI.RouteTable()
	if err != nil {
		return err
	}

	fetcher := resource.HTTPFetcher{Client: &http.Client{Timeout: cfg.UI.LoadTimeout}}
	doc, baseURL, err := sparoute.OpenShell(ctx, fetcher, args[0])
	if err != nil {
		return err
	}
	start := ""
	if uiURL := baseURL + nav.UIPath; strings.HasPrefix(args[0], uiURL) {
		start = strings.TrimPrefix(args[0], uiURL)
	}
	app, err := sparoute.New(doc, fetcher,
		sparoute.WithBaseURL(baseURL),
		sparoute.WithStartPath(start),
		sparoute.WithRoutes(routes),
		sparoute.WithModules(pages.Modules(cfg.UI.Builders...)),
		sparoute.WithLoadTimeout(cfg.UI.LoadTimeout),
		sparoute.WithLogger(logger))
	if err != nil {
		return err
	}
	defer app.Close()

	runCtx, cancel := context.WithCancel(ctx)
	g, gCtx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return app.Run(gCtx)
	})
	g.Go(func() error {
		defer cancel()
		t, err := app.Settle(gCtx)
		if err != nil {
			return err
		}
		if err := show(os.Stdout, app, t); err != nil {
			return err
		}
		for _, path := range args[1:] {
			t, err := app.Visit(gCtx, path)
			if err != nil {
				return err
			}
			if err := show(os.Stdout, app, t); err != nil {
				return err
			}
		}
		return nil
	})
	return g.Wait()
}

// show prints the outcome of a navigation followed by the content region.
func show(w io.Writer, app *sparoute.App, t nav.Transition) error {
	content, err := app.Document.ContentHTML()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "# %s: %s\n%s\n", t.Path, t.Phase, content)
	return err
}

func listRoutes(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	routes, err := cfg.UI.RouteTable()
	if err != nil {
		return err
	}
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		for _, r := range routes.Routes() {
			fmt.Println(r)
		}
		return nil
	}
	for _, path := range paths {
		m, err := routes.Resolve(path)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", path, m.Route)
	}
	return nil
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("SPAROUTE_CONFIG_FILE"),
	}
	cmd := &cli.Command{
		Name:  "sparoute",
		Usage: "Serve and navigate single page applications with on-demand page loading",
		Flags: []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the SPA shell page and its static assets",
				Action: serve,
			},
			{
				Name:      "open",
				Usage:     "Open the SPA shell at URL headless and navigate to the pages at PATHs",
				ArgsUsage: "URL [PATH...]",
				Action:    open,
			},
			{
				Name:      "routes",
				Usage:     "List the route table, or resolve PATHs",
				ArgsUsage: "[PATH...]",
				Action:    listRoutes,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
