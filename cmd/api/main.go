package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-slot-booking/internal/api"
	"github.com/sanosuguru/go-slot-booking/internal/api/handler"
	appmiddleware "github.com/sanosuguru/go-slot-booking/internal/api/middleware"
	"github.com/sanosuguru/go-slot-booking/internal/application"
	"github.com/sanosuguru/go-slot-booking/internal/config"
	"github.com/sanosuguru/go-slot-booking/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-slot-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-slot-booking/internal/notification"
	"github.com/sanosuguru/go-slot-booking/internal/pkg/clock"
	"github.com/sanosuguru/go-slot-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-slot-booking/internal/pkg/metrics"
	"github.com/sanosuguru/go-slot-booking/internal/worker"
)

func main() {
	cfg := config.Load()

	logger.Set(logger.NewLogger(os.Getenv("APP_ENV")))
	defer logger.Sync()

	m := metrics.Init()

	// データベース接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続に失敗", zap.Error(err))
	}
	defer db.Close()

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		logger.Fatal("マイグレーションに失敗", zap.Error(err))
	}

	// Redis接続（空き枠数キャッシュ）
	redisClient := redisinfra.NewClient(&cfg.Redis)
	defer redisClient.Close()
	slotCache := redisinfra.NewSlotCache(redisClient)

	// 通知キュー
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()
	publisher := notification.NewAsynqPublisher(asynqClient, cfg.Notification.Queue, cfg.Notification.MaxRetry)

	// リポジトリとサービス
	txManager := postgres.NewTxManager(db)
	eventRepo := postgres.NewEventRepository(db)
	slotRepo := postgres.NewSlotRepository(db)
	clk := clock.NewSystem()

	eventService := application.NewEventService(txManager, eventRepo, slotRepo, publisher, clk)
	slotService := application.NewSlotService(slotRepo, eventRepo, slotCache)
	bookingService := application.NewBookingService(txManager, slotRepo, eventRepo, publisher, slotCache, clk)
	cancellationService := application.NewCancellationService(txManager, slotRepo, eventRepo, publisher, slotCache, clk)

	// 通知ワーカー
	notificationWorker := worker.NewNotificationWorker(&cfg.Redis, &cfg.Notification)
	if err := notificationWorker.Start(); err != nil {
		logger.Fatal("通知ワーカーの起動に失敗", zap.Error(err))
	}
	defer notificationWorker.Shutdown()

	// Echoセットアップ
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	appmiddleware.SetupMiddleware(e)
	e.Use(appmiddleware.PrometheusMiddleware(m))

	// ハンドラー
	healthHandler := handler.NewHealthHandler()
	eventHandler := handler.NewEventHandler(eventService)
	slotHandler := handler.NewSlotHandler(slotService)
	bookingHandler := handler.NewBookingHandler(bookingService, cancellationService)

	// ルーティング
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), appmiddleware.MetricsBasicAuth())

	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)

	v1.POST("/events", eventHandler.Create)
	v1.GET("/events", eventHandler.List)
	v1.GET("/events/:id", eventHandler.GetByID)
	v1.DELETE("/events/:id", eventHandler.Delete)
	v1.GET("/events/:id/slots", slotHandler.ListByEvent)
	v1.GET("/events/:id/slots/available", slotHandler.ListAvailableByEvent)
	v1.GET("/events/:id/slots/available/count", slotHandler.CountAvailable)

	v1.GET("/public/events/:shareable_id", eventHandler.GetByShareableID)
	v1.GET("/public/events/:shareable_id/slots", slotHandler.ListAvailableByShareableID)

	v1.GET("/slots/:id", slotHandler.GetByID)

	v1.POST("/bookings", bookingHandler.Book)
	v1.GET("/bookings", slotHandler.ListMyBookings)
	v1.POST("/bookings/cancel", bookingHandler.Cancel)

	// サーバー起動
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()
	logger.Info("サーバー起動", zap.String("port", cfg.Server.Port))

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
