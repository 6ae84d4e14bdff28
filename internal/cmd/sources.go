package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/routeblend/routeblend/internal/engine"
	"github.com/routeblend/routeblend/internal/source"
	"github.com/routeblend/routeblend/internal/streamcache"
)

// buildSources assembles the configured activity and stream sources.
// The returned cleanup closes the stream cache, if one is open.
func buildSources() (source.ActivitySource, source.StreamSource, func(), error) {
	var (
		activities source.ActivitySource
		streams    source.StreamSource
	)

	switch name := viper.GetString("source"); name {
	case "strava":
		token := viper.GetString("strava.access_token")
		if token == "" {
			token = os.Getenv("STRAVA_ACCESS_TOKEN")
		}
		client := source.NewClient(source.ClientConfig{
			BaseURL: viper.GetString("strava.base_url"),
			Tokens:  source.StaticToken(token),
			Logger:  logger,
		})
		activities, streams = client, client
	case "fitdir":
		fd := source.NewFITDir(viper.GetString("fit_dir"), logger)
		activities, streams = fd, fd
	default:
		return nil, nil, nil, fmt.Errorf("unsupported source: %s", name)
	}

	cleanup := func() {}
	if path := viper.GetString("cache_db"); path != "" {
		store, err := streamcache.Open(path, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open stream cache: %w", err)
		}
		streams = streamcache.NewCachingSource(store, streams)
		cleanup = func() { _ = store.Close() }
	}

	return activities, streams, cleanup, nil
}

// engineConfig builds the engine configuration from defaults overlaid with
// the viper "engine" section (config file keys or ROUTEBLEND_ env vars).
func engineConfig() (engine.Config, error) {
	cfg := engine.DefaultConfig()
	if sub := viper.Sub("engine"); sub != nil {
		if err := sub.Unmarshal(&cfg); err != nil {
			return engine.Config{}, fmt.Errorf("parse engine config: %w", err)
		}
	}
	cfg.Logger = logger
	if err := cfg.Validate(); err != nil {
		return engine.Config{}, err
	}
	return cfg, nil
}
