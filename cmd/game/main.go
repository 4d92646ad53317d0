package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Garsondee/mapview/internal/config"
	"github.com/Garsondee/mapview/internal/game"
	"github.com/Garsondee/mapview/internal/telemetry"
)

func main() {
	cfgPath := flag.String("config", "", "YAML config file (defaults to $"+config.EnvConfigPath+")")
	flag.Parse()
	if err := run(*cfgPath); err != nil {
		log.Fatal(err)
	}
}

func run(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := []game.Option{game.WithLogger(logger)}
	if cfg.Metrics.Enabled {
		opts = append(opts, game.WithObserver(telemetry.NewObserver(prometheus.DefaultRegisterer)))
		go func() {
			if err := telemetry.Serve(ctx, cfg.Metrics.GetListen(), prometheus.DefaultGatherer, logger); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	g, err := game.New(cfg, opts...)
	if err != nil {
		return err
	}
	ebiten.SetWindowTitle(g.Title())
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	return ebiten.RunGame(g)
}
