package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/danielhkuo/codevote/cliparse"
	"github.com/danielhkuo/codevote/db"
	"github.com/danielhkuo/codevote/middleware"
	"github.com/danielhkuo/codevote/notify"
	"github.com/danielhkuo/codevote/results"
	"github.com/danielhkuo/codevote/router"
	"github.com/danielhkuo/codevote/store"
)

func main() {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn, cfg.DatabaseType); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// Change events: with PostgreSQL they travel through NOTIFY so every
	// instance sees them; with SQLite the hub is fed directly.
	hub := notify.NewHub()
	var pub notify.Publisher = hub
	if cfg.DatabaseType == db.TypePostgres {
		pub = notify.NewPGPublisher(dbConn)
		go func() {
			if err := notify.Listen(ctx, cfg.DatabaseURL, hub); err != nil {
				slog.Error("change listener stopped", "error", err)
			}
		}()
	}

	st := store.New(dbConn, pub)
	watcher := results.NewWatcher(st, hub)

	if cfg.SessionSweep > 0 {
		go sweepSessions(ctx, st, cfg.SessionSweep)
	}

	mux := router.NewRouter(st, watcher, cfg)

	server := http.Server{
		Handler:           middleware.CORS(cfg.CORSOrigin)(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
		// Streams end when the request context is cancelled
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed")
	}
}

func newLogger(cfg cliparse.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// sweepSessions deletes expired sessions every interval until ctx is done.
func sweepSessions(ctx context.Context, st *store.Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := st.DeleteExpiredSessions(ctx)
			if err != nil {
				slog.Warn("session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Debug("expired sessions removed", "count", n)
			}
		}
	}
}
