package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cryptrac/cryptrac-engine/internal/config"
	"github.com/cryptrac/cryptrac-engine/internal/currency"
	"github.com/cryptrac/cryptrac-engine/internal/database"
	"github.com/cryptrac/cryptrac-engine/internal/handler"
	"github.com/cryptrac/cryptrac-engine/internal/middleware"
	"github.com/cryptrac/cryptrac-engine/internal/nowpayments"
	"github.com/cryptrac/cryptrac-engine/internal/paymentlink"
	"github.com/cryptrac/cryptrac-engine/internal/paymenturi"
	"github.com/cryptrac/cryptrac-engine/internal/pricing"
	"github.com/cryptrac/cryptrac-engine/internal/rates"
	"github.com/cryptrac/cryptrac-engine/internal/repository"
	"github.com/cryptrac/cryptrac-engine/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := database.RunMigrations(cfg.DatabaseURL()); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		if err := database.SeedData(context.Background(), pool); err != nil {
			log.Fatal().Err(err).Msg("failed to seed data")
		}
	}

	// the rate cache is optional; without Redis every quote goes upstream
	var cache goredis.UniversalClient
	if cfg.RedisAddr != "" {
		client, err := database.NewRedis(ctx, database.RedisInfo{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, rate cache disabled")
		} else {
			defer client.Close()
			cache = client
		}
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(gin.Recovery())

	handler.SetupSwagger(router)
	handler.RegisterRoutes(router, buildHandlers(cfg, pool, cache))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

func buildHandlers(cfg *config.Config, pool *pgxpool.Pool, cache goredis.UniversalClient) handler.Handlers {
	if cfg.NowPaymentsAPIKey == "" {
		log.Warn().Msg("NOWPAYMENTS_API_KEY not set, rate quotes will use the fallback table")
	}
	gateway := nowpayments.NewClient(cfg.NowPaymentsAPIURL, cfg.NowPaymentsAPIKey)

	var provider rates.Provider = gateway
	if cache != nil {
		provider = rates.NewCache(cache, provider, cfg.RateCacheTTL)
	}
	provider = rates.NewFallback(provider, rates.DefaultFallbackUSD(), cfg.RateTimeout)

	policy := currency.NewExtraIDPolicy(currency.DefaultExtraIDRules())
	resolver := currency.NewResolver(currency.DefaultTables(), policy)
	uris := paymenturi.NewBuilder(paymenturi.DefaultSchemes(), policy)
	calc := pricing.NewCalculator(cfg.StrictTaxRates)
	assembler := paymentlink.NewAssembler(calc, resolver, cfg.PublicAppOrigin)
	catalog := service.NewCatalogService(gateway, 0)

	merchantRepo := repository.NewMerchantRepository(pool)
	linkRepo := repository.NewPaymentLinkRepository(pool)

	linkService := service.NewPaymentLinkService(merchantRepo, linkRepo, catalog, assembler)
	previewService := service.NewPreviewService(merchantRepo, catalog, resolver, calc, provider, uris)
	currencyService := service.NewCurrencyService(merchantRepo, catalog, resolver, policy)
	uriCheckService := service.NewURICheckService(merchantRepo, uris, policy)

	return handler.Handlers{
		Health:       handler.NewHealthHandler(pool, cache),
		PaymentLinks: handler.NewPaymentLinkHandler(linkService),
		Preview:      handler.NewPreviewHandler(previewService),
		Currencies:   handler.NewCurrencyHandler(currencyService, uriCheckService),
	}
}
