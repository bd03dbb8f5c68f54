package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/ajkula/GoArrival/adapter/inbound/rest"
	"github.com/ajkula/GoArrival/adapter/inbound/websocket"
	"github.com/ajkula/GoArrival/adapter/outbound/filewatcher"
	"github.com/ajkula/GoArrival/config"
	"github.com/ajkula/GoArrival/domain/port/outbound"
	"github.com/ajkula/GoArrival/domain/service"
)

func newServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the arrival API over HTTP",
		Long: `serve exposes detection over HTTP:

  POST /api/arrivals/wait     wait for a file, long-polling until found or timed out
  GET  /api/arrivals/latest   newest matching file already present
  GET  /api/arrivals          recent detection results
  GET  /api/arrivals/{id}     one detection result
  GET  /api/ws/arrivals       websocket feed of detection results
  GET  /health`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cfg.HTTP.Enabled {
				return &exitError{code: exitFailure, err: errors.New("HTTP server is disabled in the configuration")}
			}

			app, err := newApplication(cfg)
			if err != nil {
				return &exitError{code: exitFailure, err: err}
			}
			defer app.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if c.configPath != "" {
				stopWatching, err := c.watchConfig(ctx, app)
				if err != nil {
					app.logger.Warn("Config file changes will not be picked up", "path", c.configPath, "error", err)
				} else {
					defer stopWatching()
				}
			}

			if err := serve(ctx, app); err != nil {
				return &exitError{code: exitFailure, err: err}
			}
			return nil
		},
	}

	addDetectionFlags(cmd)
	cmd.Flags().String("address", "", "address to bind (default from config)")
	cmd.Flags().Int("port", 0, "port to bind (default from config)")

	return cmd
}

// watchConfig applies log level changes made to the config file while serving
func (c *cli) watchConfig(ctx context.Context, app *application) (func(), error) {
	watcher, err := filewatcher.NewFSWatcher()
	if err != nil {
		return nil, err
	}

	reload := func(ctx context.Context, path string) error {
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		if err := cfg.ApplyOverrides(c.overrides); err != nil {
			return err
		}
		app.logger.UpdateLevel(cfg.General.LogLevel)
		return nil
	}

	reloader := service.NewFileWatcherService(watcher, reload, app.logger)
	if err := reloader.WatchFile(ctx, c.configPath); err != nil {
		watcher.Stop()
		return nil, err
	}
	reloader.Start()

	app.logger.Info("Watching config file for changes",
		"path", c.configPath,
		"dirs", watcher.GetWatchedPaths(),
		"active", watcher.IsWatching())
	return reloader.Cleanup, nil
}

func newRouter(app *application) (*mux.Router, *websocket.Handler) {
	router := mux.NewRouter()

	restHandler := rest.NewHandler(app.arrivals, app.stats, app.logger, app.cfg)
	restHandler.SetupRoutes(router)

	wsHandler := websocket.NewHandler(app.arrivals, app.logger)
	router.HandleFunc("/api/ws/arrivals", wsHandler.HandleArrivals)

	router.Use(requestLogger(app.logger))

	router.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"ANY"}
		}
		app.logger.Debug("Route registered", "path", pathTemplate, "methods", methods)
		return nil
	})

	return router, wsHandler
}

// serve runs the HTTP server until ctx is canceled
func serve(ctx context.Context, app *application) error {
	router, wsHandler := newRouter(app)

	addr := fmt.Sprintf("%s:%d", app.cfg.HTTP.Address, app.cfg.HTTP.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		// no WriteTimeout: a wait request is held open for up to the detection timeout
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("HTTP server listening", "addr", addr, "tls", app.cfg.HTTP.TLS)
		var err error
		if app.cfg.HTTP.TLS {
			err = server.ListenAndServeTLS(app.cfg.HTTP.CertFile, app.cfg.HTTP.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	app.logger.Info("Shutting down HTTP server")
	wsHandler.Cleanup()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}
	return nil
}

func requestLogger(logger outbound.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("Request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		})
	}
}
