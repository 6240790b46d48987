package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wandertrip/tour_booking/internal/app"
	"github.com/wandertrip/tour_booking/internal/cache"
	"github.com/wandertrip/tour_booking/internal/config"
	"github.com/wandertrip/tour_booking/internal/handler"
	"github.com/wandertrip/tour_booking/internal/loyalty"
	"github.com/wandertrip/tour_booking/internal/notifier"
	"github.com/wandertrip/tour_booking/internal/repository"
	"github.com/wandertrip/tour_booking/internal/service"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Sugar().Infow("Starting tour booking API",
		"environment", cfg.Environment,
		"http_port", cfg.HTTPPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	// Redis опционален: без него кэш выездов просто выключен
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unavailable, departure cache disabled", zap.Error(err))
			redisClient = nil
		}
	}
	depCache := cache.NewDepartureCache(redisClient)

	opsNotifier, err := notifier.NewTelegram(cfg.TelegramToken, cfg.TelegramOpsChatID, logger)
	if err != nil {
		logger.Fatal("Failed to create telegram notifier", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(pool)
	tourRepo := repository.NewTourRepository(pool)
	departureRepo := repository.NewDepartureRepository(pool)
	guideRepo := repository.NewGuideRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	pointsRepo := repository.NewPointsRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)

	policy := loyalty.DefaultPolicy()
	if cfg.LoyaltySilverThreshold > 0 {
		policy.SilverThreshold = cfg.LoyaltySilverThreshold
	}
	if cfg.LoyaltyGoldThreshold > 0 {
		policy.GoldThreshold = cfg.LoyaltyGoldThreshold
	}

	db := service.NewDB(pool)
	capacityService := service.NewCapacityService(departureRepo, depCache, logger)
	loyaltyService := service.NewLoyaltyService(db, userRepo, pointsRepo, policy, logger)
	guideResolver := service.NewGuideResolver(guideRepo, logger)
	codeGenerator := service.NewCodeGenerator(cfg.BookingCodePrefix, bookingRepo)
	bookingService := service.NewBookingService(
		db, userRepo, tourRepo, departureRepo, guideRepo, bookingRepo,
		capacityService, loyaltyService, guideResolver, codeGenerator,
		auditRepo, opsNotifier, logger,
	)

	scheduler := app.NewScheduler(capacityService, logger)
	scheduler.Start(ctx)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	h := handler.NewHandler(bookingService, loyaltyService, capacityService, guideResolver, logger)
	h.Routes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	scheduler.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down HTTP server", zap.Error(err))
	}

	if redisClient != nil {
		redisClient.Close()
	}

	logger.Info("Stopped")
}
