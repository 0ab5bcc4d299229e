/*
oxy-showcase opens a window and mounts the animated model showcase on it.

	oxy-showcase -config showcase.toml
	oxy-showcase -asset https://example.com/model.glb
	oxy-showcase -headless 120

Press R to remount the showcase and Escape to quit. With [watch] enabled, saving the
asset or the config file remounts it as well.
*/
package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/oxy-showcase/common"
	"github.com/Carmen-Shannon/oxy-showcase/engine"
	"github.com/Carmen-Shannon/oxy-showcase/engine/config"
	"github.com/Carmen-Shannon/oxy-showcase/engine/logger"
	"github.com/Carmen-Shannon/oxy-showcase/engine/renderer"
	"github.com/Carmen-Shannon/oxy-showcase/engine/showcase"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	assetURL := flag.String("asset", "", "asset URL or path, overrides [asset] url")
	headless := flag.Int("headless", 0, "run this many frames without a window and print the final state")
	profile := flag.Bool("profile", false, "log frame statistics at debug level")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Fatal("%v", err)
		}
		cfg = loaded
	}
	cfg.Asset.URL = common.Coalesce(*assetURL, cfg.Asset.URL)
	if err := cfg.Validate(); err != nil {
		logger.Fatal("%v", err)
	}
	logger.SetLevel(cfg.Log.Level)

	opts := []engine.EngineBuilderOption{
		engine.WithConfig(cfg),
		engine.WithProfiling(*profile),
	}
	if *configPath != "" {
		opts = append(opts, engine.WithConfigPath(*configPath))
	}
	if *headless > 0 {
		opts = append(opts,
			engine.WithRendererBackend(renderer.BackendTypeHeadless),
			engine.WithMaxFrames(*headless),
			engine.WithRenderFrameLimit(60),
		)
	}

	eng, err := engine.NewEngine(opts...)
	if err != nil {
		logger.Fatal("%v", err)
	}

	if cfg.Watch.Enabled && *headless == 0 {
		paths := watchPaths(cfg.Asset.URL, *configPath)
		if err := eng.Watch(paths...); err != nil {
			logger.Warn("file watching disabled: %v", err)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigCh
		eng.Quit()
	}()

	if err := eng.Run(); err != nil {
		logger.Fatal("%v", err)
	}

	if *headless > 0 {
		st := eng.Status()
		fmt.Printf("frames=%d state=%s progress=%.0f%% draws=%d triangles=%d",
			st.Frames, st.State, st.Progress*100, st.DrawCalls, st.Triangles)
		if st.Message != "" {
			fmt.Printf(" error=%q", st.Message)
		}
		fmt.Println()
		if st.State != showcase.StateReady {
			os.Exit(1)
		}
	}
}

// watchPaths returns the local files worth watching: the asset when it is a file and the config.
func watchPaths(assetURL, configPath string) []string {
	var paths []string
	if u, err := url.Parse(assetURL); err == nil {
		switch {
		case u.Scheme == "file":
			paths = append(paths, u.Path)
		case u.Scheme == "" || len(u.Scheme) == 1:
			paths = append(paths, assetURL)
		}
	}
	if configPath != "" {
		paths = append(paths, configPath)
	}
	return paths
}
