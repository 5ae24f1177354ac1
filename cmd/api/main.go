package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"workforce_crm/internal/audit"
	"workforce_crm/internal/config"
	"workforce_crm/internal/crm"
	"workforce_crm/internal/db"
	httpserver "workforce_crm/internal/http"
	"workforce_crm/internal/seed"
	"workforce_crm/internal/telemetry"
)

const serviceName = "workforce-crm"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	zerolog.SetGlobalLevel(cfg.Level())
	if cfg.Level() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	cleanup, err := telemetry.Init(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("init otel")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cleanup(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown otel")
		}
	}()

	gdb, err := db.Connect(ctx, cfg.DBDriver, cfg.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}()

	if err := db.Migrate(ctx, gdb); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}
	if cfg.SeedOnStart {
		if err := seed.FirstSetup(ctx, gdb); err != nil {
			log.Fatal().Err(err).Msg("seed database")
		}
	}

	r := httpserver.NewRouter(httpserver.RouterOptions{
		DB:             gdb,
		Service:        crm.New(gdb),
		Audit:          audit.NewRecorder(gdb),
		JWTSecret:      cfg.JWTSecret,
		TokenTTL:       cfg.TokenTTL,
		AllowedOrigins: cfg.CORSOrigins,
		LoginRateLimit: cfg.LoginRateLimit,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           otelhttp.NewHandler(r, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown server")
	}
}
