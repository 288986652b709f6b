// Command critterworld runs the sandbox life simulation and serves the
// renderer feed.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/critterworld/internal/feed"
	"github.com/talgya/critterworld/internal/llm"
	"github.com/talgya/critterworld/internal/persistence"
	"github.com/talgya/critterworld/internal/store"
	"github.com/talgya/critterworld/internal/weather"
	"github.com/talgya/critterworld/internal/world"
)

const (
	frameRate    = 20 // sim updates per second
	statusEvery  = 30 * time.Second
	saveInterval = 2 * time.Minute
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("critterworld — behavioral sandbox simulation")

	cfg := world.DefaultConfig()
	if s := os.Getenv("CRITTERWORLD_SEED"); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			cfg.Seed = v
		}
	}

	// ── Database ──────────────────────────────────────────────────────
	dbPath := os.Getenv("CRITTERWORLD_DB")
	if dbPath == "" {
		os.MkdirAll("data", 0755)
		dbPath = "data/critterworld.db"
	}
	db, err := persistence.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", dbPath)

	// ── LLM worker ────────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var worker *llm.Worker
	llmClient := llm.NewClient(os.Getenv("ANTHROPIC_API_KEY"))
	if llmClient.Enabled() {
		worker = llm.NewWorker(llmClient)
		worker.Start(ctx, 2)
		cfg.AIEnabled = true
		slog.Info("LLM thoughts and dialogue enabled")
	} else {
		slog.Warn("ANTHROPIC_API_KEY not set — critters run silent")
	}

	// ── Weather source ────────────────────────────────────────────────
	var sky weather.Source
	if wc := weather.NewClient(os.Getenv("OPENWEATHER_API_KEY"), os.Getenv("WEATHER_LOCATION")); wc != nil {
		sky = weather.NewLiveSource(wc)
		slog.Info("live weather bridge enabled")
	}

	// ── World ─────────────────────────────────────────────────────────
	st := store.New()
	w := world.New(cfg, st, worker, sky)
	w.OnDialogue = func(d store.Dialogue) {
		if err := db.SaveDialogue(d); err != nil {
			slog.Warn("dialogue save failed", "error", err)
		}
	}

	// ── Feed server ───────────────────────────────────────────────────
	hub := feed.NewHub(st, func() any { return w.Snapshot() })
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.Handle("/", http.FileServer(http.Dir("static")))

	port := 8080
	if p := os.Getenv("PORT"); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		slog.Info("feed server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("feed server failed", "error", err)
			os.Exit(1)
		}
	}()

	// ── Simulation loop ───────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	frame := time.NewTicker(time.Second / frameRate)
	defer frame.Stop()
	status := time.NewTicker(statusEvery)
	defer status.Stop()
	save := time.NewTicker(saveInterval)
	defer save.Stop()

	started := time.Now()
	last := started

	for {
		select {
		case <-sigCh:
			slog.Info("shutting down")
			cancel()
			shutdownCtx, done := context.WithTimeout(context.Background(), 3*time.Second)
			srv.Shutdown(shutdownCtx)
			done()
			if err := db.SaveWorldState(w.Entities(), st, st.Environment().Day); err != nil {
				slog.Error("final save failed", "error", err)
			}
			return

		case now := <-frame.C:
			dt := now.Sub(last).Seconds()
			last = now
			// Clamp pathological stalls so physics cannot jump.
			if dt > 0.25 {
				dt = 0.25
			}
			w.Tick(dt)

		case <-status.C:
			env := st.Environment()
			slog.Info("status",
				"uptime", humanize.Time(started),
				"day", env.Day,
				"time_of_day", fmt.Sprintf("%.1fh", env.TimeOfDay),
				"season", env.Season,
				"weather", env.Weather,
				"critters", w.AliveCritters(),
				"viewers", hub.ClientCount(),
			)

		case <-save.C:
			if err := db.SaveWorldState(w.Entities(), st, st.Environment().Day); err != nil {
				slog.Error("periodic save failed", "error", err)
			}
		}
	}
}
