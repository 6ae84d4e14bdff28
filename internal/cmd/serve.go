package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/routeblend/routeblend/internal/engine"
	"github.com/routeblend/routeblend/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the overlap visualization API and rendered frames",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address (host:port)")
	serveCmd.Flags().Bool("load-on-start", true, "Load the dataset before serving")
	serveCmd.Flags().String("refresh", "", "Cron spec for periodic dataset reloads (e.g. \"@hourly\")")
	serveCmd.Flags().Duration("load-timeout", 5*time.Minute, "Timeout per dataset load")

	mustBind := func(key string, name string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}

	mustBind("serve.addr", "addr")
	mustBind("serve.load_on_start", "load-on-start")
	mustBind("serve.refresh", "refresh")
	mustBind("serve.load_timeout", "load-timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	addr := viper.GetString("serve.addr")
	loadOnStart := viper.GetBool("serve.load_on_start")
	refreshSpec := viper.GetString("serve.refresh")
	loadTimeout := viper.GetDuration("serve.load_timeout")

	cfg, err := engineConfig()
	if err != nil {
		return err
	}

	activities, streams, cleanup, err := buildSources()
	if err != nil {
		return err
	}
	defer cleanup()

	eng, err := engine.New(cfg, activities, streams)
	if err != nil {
		return err
	}

	loadOnce := func() {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		summary, err := eng.LoadDataset(ctx)
		if err != nil {
			logger.Error("dataset load failed", "error", err)
			return
		}
		logger.Info("dataset loaded", "tracks", summary.Tracks, "dropped", summary.Dropped, "segments", summary.Segments)
	}

	if loadOnStart {
		loadOnce()
	}

	var scheduler *cron.Cron
	if refreshSpec != "" {
		scheduler = cron.New()
		if _, err := scheduler.AddFunc(refreshSpec, loadOnce); err != nil {
			return fmt.Errorf("invalid refresh spec %q: %w", refreshSpec, err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		logger.Info("scheduled dataset refresh", "spec", refreshSpec)
	}

	api := server.New(eng, server.Config{Logger: logger})

	logger.Info("server listening",
		"addr", addr,
		"source", viper.GetString("source"),
		"canvas", fmt.Sprintf("%dx%d", cfg.CanvasWidth, cfg.CanvasHeight),
	)

	srv := &http.Server{Addr: addr, Handler: api.Handler(), ReadHeaderTimeout: 5 * time.Second}
	return srv.ListenAndServe()
}
