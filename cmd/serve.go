package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/seo-optimizer/contentscore/analyzer"
	"github.com/seo-optimizer/contentscore/config"
	"github.com/seo-optimizer/contentscore/logging"
	"github.com/seo-optimizer/contentscore/metrics"
	"github.com/seo-optimizer/contentscore/middleware"
	"github.com/seo-optimizer/contentscore/scoring"
	"github.com/seo-optimizer/contentscore/server"
	"github.com/seo-optimizer/contentscore/stats"
)

// statsRetainMonths is how many months of usage counters are kept
const statsRetainMonths = 12

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scoring HTTP API",
	Long: `Serves the scoring API. Settings come from the environment, .env.development
or .env: PORT, GIN_MODE, DEV_MODE, DATA_DIR, LOG_LEVEL, LOG_FORMAT, RATE_LIMIT,
RATE_BURST, THRESHOLDS_FILE, CACHE_TTL and FETCH_TIMEOUT.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Listen port (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}
	if thresholdsFile == "" {
		thresholdsFile = cfg.ThresholdsFile
	}

	log, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(log)
	gin.SetMode(cfg.GinMode)

	storage, err := stats.NewStorage(cfg.DataDir, stats.WithLogger(log))
	if err != nil {
		return fmt.Errorf("failed to open statistics: %w", err)
	}
	storage.Cleanup(statsRetainMonths)

	rec := metrics.NewRecorder(true)
	engine, err := newEngine(scoring.WithObserver(scoring.Observers(
		logging.NewObserver(log),
		rec,
		storage,
	)))
	if err != nil {
		_ = storage.Shutdown()
		return err
	}

	pages := analyzer.New(engine, cfg.FetchTimeout,
		analyzer.WithCacheTTL(cfg.CacheTTL),
		analyzer.WithStats(storage),
		analyzer.WithLogger(log),
	)

	router := server.NewRouter(server.Deps{
		Engine:   engine,
		Analyzer: pages,
		Storage:  storage,
		Traffic:  stats.NewTraffic(),
		Metrics:  rec,
		Limiter:  middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst),
		Logger:   log,
		DevMode:  cfg.DevMode,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.FetchTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", "http://localhost:"+cfg.Port,
			"gin_mode", cfg.GinMode, "dev_mode", cfg.DevMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			pages.Shutdown()
			_ = storage.Shutdown()
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
	}
	pages.Shutdown()
	if err := storage.Shutdown(); err != nil {
		log.Error("failed to save statistics", "error", err)
	}
	log.Info("server stopped")
	return nil
}
