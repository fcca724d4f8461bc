package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/priceview/backend/config"
	httpDelivery "github.com/priceview/backend/internal/delivery/http"
	"github.com/priceview/backend/internal/domain"
	"github.com/priceview/backend/internal/infrastructure/googleauth"
	"github.com/priceview/backend/internal/infrastructure/mailer"
	"github.com/priceview/backend/internal/infrastructure/mongodb"
	"github.com/priceview/backend/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.Server.Environment == "production" {
		log = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	log.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Msg("starting priceview backend")

	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongodb.Connect(connectCtx, cfg.Mongo.URI)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	retailCatalog := domain.RetailCatalog(cfg.Mongo.RetailDB)
	paraCatalog := domain.ParaCatalog(cfg.Mongo.ParaDB)

	productStore := mongodb.NewProductStore(client)
	analyticsStore := mongodb.NewAnalyticsStore(client)
	userStore := mongodb.NewUserStore(client, cfg.Mongo.AuthDB)

	retailService := usecase.NewCatalogService(productStore, retailCatalog, log)
	paraService := usecase.NewCatalogService(productStore, paraCatalog, log)
	analyticsService := usecase.NewAnalyticsService(analyticsStore, retailCatalog, paraCatalog, log)

	mail := mailer.New(mailer.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
		FromName: cfg.Mail.FromName,
	})
	google := googleauth.New(cfg.Auth.GoogleClientID)

	authService := usecase.NewAuthService(userStore, mail, google, usecase.AuthConfig{
		JWTSecret:  cfg.Auth.JWTSecret,
		TokenTTL:   cfg.Auth.TokenTTL,
		AdminEmail: cfg.Auth.AdminEmail,
	}, log)

	handler := httpDelivery.NewHandler(retailService, paraService, analyticsService, authService)
	router := httpDelivery.SetupRouter(cfg, handler, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}
