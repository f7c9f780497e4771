package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"themegen/internal/admission"
	"themegen/internal/catalog"
	"themegen/internal/history"
	"themegen/internal/http/handlers"
	httpapi "themegen/internal/http/httpapi"
	"themegen/internal/infra"
	"themegen/internal/middleware"
	"themegen/internal/pipeline"
	"themegen/internal/staging"
	"themegen/internal/storage"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.CatalogPath).Msg("failed to load catalog")
	}
	output, err := storage.NewFileStore(cfg.OutputDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare output directory")
	}

	ctx := context.Background()
	var store history.Store = history.NewMemoryStore(0)
	dbpool, err := infra.NewDBPool(ctx, cfg)
	switch {
	case errors.Is(err, infra.ErrNoDatabase):
		logger.Info().Msg("DATABASE_URL not set, keeping build history in memory")
	case err != nil:
		logger.Fatal().Err(err).Msg("failed to connect database")
	default:
		defer dbpool.Close()
		pg := history.NewPGStore(infra.NewSQLRunner(dbpool, logger))
		if err := pg.Migrate(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare history table")
		}
		store = pg
	}

	engine := pipeline.NewEngine(pipeline.Options{
		Stager:  staging.NewManager(cfg.StagingDir, nil, logger),
		Logger:  logger,
		Workers: cfg.PipelineWorkers,
	})
	app := &handlers.App{
		Gate:           admission.New(),
		Engine:         engine,
		Catalog:        cat,
		Output:         output,
		History:        store,
		Logger:         logger,
		DefaultLogo:    cfg.LogoPath,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		CORS:            middleware.CORSOptions{AllowedOrigins: cfg.CORSAllowedOrigins, MaxAge: cfg.CORSMaxAge},
		RateLimitPerMin: cfg.RateLimitPerMin,
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("addr", server.Addr()).
			Str("output", output.BasePath()).
			Int("recipes", len(cat.Recipes)).
			Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPWriteTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
