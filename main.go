package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/courtside.report/internal/config"
	"github.com/banshee-data/courtside.report/internal/game"
	"github.com/banshee-data/courtside.report/internal/monitoring"
	"github.com/banshee-data/courtside.report/internal/playdb"
)

var (
	listen        = flag.String("listen", ":8080", "Listen address")
	dbPath        = flag.String("db", "plays.db", "Path to the SQLite play database")
	configPath    = flag.String("config", "", "Path to a tuning config JSON file (defaults to config/tuning.defaults.json)")
	migrationsDir = flag.String("migrations", "db/migrations", "Path to the migrations directory")
	replayPath    = flag.String("replay", "", "Replay an NDJSON detection capture before serving")
	debugLogs     = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}
	monitoring.Debug = *debugLogs

	var tuning *config.TuningConfig
	if *configPath != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load tuning config: %v", err)
		}
	} else {
		tuning = config.MustLoadDefaultConfig()
	}

	db, err := playdb.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.MigrateUp(*migrationsDir); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	session := game.NewSession(game.ConfigFromTuning(tuning))
	monitoring.Logf("session %s started", session.ID)

	srv := NewServer(session, db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *replayPath != "" {
		if err := replayFile(ctx, *replayPath, session, db); err != nil {
			log.Fatalf("Replay failed: %v", err)
		}
		if err := srv.persistSummaries(); err != nil {
			log.Fatalf("Failed to persist player summaries: %v", err)
		}
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()

		// admin debugging routes (tailsql console, backup download)
		if err := db.AttachAdminRoutes(mux); err != nil {
			log.Fatalf("Failed to attach admin routes: %v", err)
		}
		mux.HandleFunc("/debug/plays/chart", srv.handlePlaysChart)

		mux.Handle("/api/", http.StripPrefix("/api", srv.ServeMux()))

		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			monitoring.Debugf("got request %q", r.URL.Path)
			mux.ServeHTTP(w, r)
		})

		server := &http.Server{
			Addr:    *listen,
			Handler: h,
		}

		go func() {
			monitoring.Logf("listening on %s", *listen)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		monitoring.Logf("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			monitoring.Logf("HTTP server shutdown error: %v", err)
		}
	}()

	wg.Wait()

	// Flush final aggregates so a restart can pick up reporting where the
	// session left off.
	if err := srv.persistSummaries(); err != nil {
		monitoring.Logf("failed to persist player summaries: %v", err)
	}
	monitoring.Logf("graceful shutdown complete")
}
