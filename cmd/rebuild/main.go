// Command rebuild recomputes every document's denormalized fields (current
// revision, latest localizable revision, cached HTML, contributors, link
// graph) from revision history. Run it after restoring a backup or fixing
// data by hand.
package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/Haizul/kitsune/internal/config"
	"github.com/Haizul/kitsune/internal/metrics"
	"github.com/Haizul/kitsune/internal/renderer"
	"github.com/Haizul/kitsune/internal/repository/postgres"
	postgresWiki "github.com/Haizul/kitsune/internal/repository/postgres/wiki"
	serviceWiki "github.com/Haizul/kitsune/internal/service/wiki"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	logOut := io.Writer(os.Stdout)
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, "rebuild", 10)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOut = logFile
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	locales, err := config.LoadLocales(cfg.LocalesPath)
	if err != nil {
		log.Fatalf("Failed to load locale manifest: %v", err)
	}

	logger.Info("rebuild starting",
		"environment", cfg.Environment,
		"table_prefix", cfg.TablePrefix,
		"default_locale", locales.Default,
	)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgresWiki.NewDocumentRepository(repoConfig)
	revRepo := postgresWiki.NewRevisionRepository(repoConfig)
	voteRepo := postgresWiki.NewVoteRepository(repoConfig)
	linkRepo := postgresWiki.NewLinkRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	recorder := metrics.NewPrometheusRecorder(prom.NewRegistry())
	rend := renderer.New()
	linkIndexer := serviceWiki.NewLinkIndexer(docRepo, revRepo, linkRepo, rend, logger)
	revisionService := serviceWiki.NewRevisionService(
		docRepo, revRepo, txManager, rend, linkIndexer, locales.Default, logger)
	redirects := serviceWiki.NewRedirectAttrGenerator(docRepo)
	documentService := serviceWiki.NewDocumentService(
		docRepo, revRepo, voteRepo, txManager, revisionService, linkIndexer,
		redirects, recorder, locales.Default, logger)

	ids, err := docRepo.ListIDs(ctx)
	if err != nil {
		log.Fatalf("Failed to list documents: %v", err)
	}
	logger.Info("documents listed", "count", len(ids))

	failed := 0
	for i, id := range ids {
		start := time.Now()
		if err := documentService.Rebuild(ctx, id); err != nil {
			failed++
			logger.Error("rebuild failed", "document_id", id, "error", err)
			continue
		}
		recorder.ObserveRebuildDuration(time.Since(start))
		if (i+1)%100 == 0 {
			logger.Info("rebuild progress", "done", i+1, "total", len(ids))
		}
	}

	logger.Info("rebuild finished", "total", len(ids), "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}
