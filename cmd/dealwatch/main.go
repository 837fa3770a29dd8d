package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"dealwatch/internal/classify"
	"dealwatch/internal/config"
	"dealwatch/internal/monitor"
	"dealwatch/internal/notify"
	"dealwatch/internal/rules"
	"dealwatch/internal/source"
	"dealwatch/internal/storage"
)

func main() {
	once := flag.Bool("once", false, "run a single check and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath, cfg.ProcessedRetention)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	rs, err := rules.New(rules.Config{
		Destinations:    cfg.Destinations,
		DepartureCities: cfg.DepartureCities,
		Exclusions:      cfg.Exclusions,
	})
	if err != nil {
		log.Error("compile rules", "error", err)
		os.Exit(1)
	}

	engine := classify.New(rs, classify.Config{
		TargetMonth:               cfg.TargetMonth,
		TargetYear:                cfg.TargetYear,
		MinTextLength:             cfg.MinTextLength,
		AcceptNoDate:              cfg.SendIfNoDate,
		RejectUnresolvedDeparture: cfg.RejectUnresolvedDeparture,
	})

	bot, err := notify.New(cfg.BotToken, cfg.ChatID, cfg.TargetMonth, cfg.TargetYear)
	if err != nil {
		log.Error("create bot", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logCursors(ctx, store, log)

	var sources []source.Named
	for _, bf := range cfg.BridgeFeeds {
		sources = append(sources, source.Named{ID: bf.Name, Source: source.NewRSS(http.DefaultClient, bf.Name, bf.URL)})
	}

	log.Info("starting monitor",
		"channels", len(cfg.Channels),
		"bridge_feeds", len(cfg.BridgeFeeds),
		"target_month", cfg.TargetMonth,
		"target_year", cfg.TargetYear,
	)

	run := func(ctx context.Context) error {
		mon := monitor.New(store, engine, bot, sources, log)
		mon.SetInterval(cfg.CheckInterval)
		if *once {
			mon.RunOnce(ctx)
			return nil
		}
		mon.Run(ctx)
		return nil
	}

	if len(cfg.Channels) > 0 {
		tgc := source.NewTelegram(cfg.APIID, cfg.APIHash, cfg.Phone, cfg.SessionPath)
		for _, ch := range cfg.Channels {
			sources = append(sources, source.Named{ID: ch, Source: tgc.Channel(ch)})
		}
		err = tgc.Connect(ctx, run)
	} else {
		err = run(ctx)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("monitor failed", "error", err)
		if nerr := bot.NotifyError(context.Background(), err); nerr != nil {
			log.Error("report failure", "error", nerr)
		}
		os.Exit(1)
	}

	log.Info("monitor stopped")
}

func logCursors(ctx context.Context, store storage.Storage, log *slog.Logger) {
	cursors, err := store.Cursors(ctx)
	if err != nil {
		log.Error("read cursors", "error", err)
		return
	}
	for _, c := range cursors {
		log.Debug("resuming source", "source", c.SourceID, "last_seen_id", c.LastSeenID, "last_check", c.LastCheckAt)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
