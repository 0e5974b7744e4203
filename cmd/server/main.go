package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"heladeria-backend/config"
	"heladeria-backend/internal/afip"
	"heladeria-backend/internal/api"
	"heladeria-backend/internal/audit"
	"heladeria-backend/internal/broker"
	"heladeria-backend/internal/drive"
	"heladeria-backend/internal/pdf"
	"heladeria-backend/internal/redisclient"
	"heladeria-backend/internal/service"
	"heladeria-backend/internal/store"
	"heladeria-backend/internal/util"
	"heladeria-backend/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		panic(err)
	}
	defer util.SyncLogger()
	logger := util.GetLogger()

	tp, err := util.InitTracer("heladeria-backend", cfg.Observ.JaegerEndpoint)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(ctx)
		}()
	}

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redis, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redis.Close()

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicSales)
	defer producer.Close()
	publisher := broker.NewEventPublisher(producer)

	fiscal := afip.NewClient(cfg.Afip.ProviderURL, cfg.Afip.APIKey, cfg.Afip.CUIT)
	renderer := pdf.NewRenderer("Heladería El Polo", cfg.Business.PDFMaxBytes)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	uploader, err := drive.NewUploader(ctx, cfg.Drive.CredentialsFile, cfg.Drive.FolderID)
	if err != nil {
		logger.Fatal("Failed to initialize file hosting", zap.Error(err))
	}

	stockLog := audit.NewStockLog(db)
	sales := service.NewSaleService(db, redis, publisher, cfg.Business.CommissionRate)
	orders := service.NewOrderService(db, publisher)
	commissions := service.NewCommissionService(db, publisher)
	invoices := service.NewInvoiceService(db, fiscal, renderer, uploader, publisher, cfg.Business.TaxRate, cfg.Afip.PointOfSale)
	catalog := service.NewCatalogService(db, redis, stockLog)

	if err := catalog.SyncCatalogToCache(ctx); err != nil {
		logger.Warn("Initial catalog sync failed, cache stays cold", zap.Error(err))
	}

	consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicSales, cfg.Kafka.ConsumerGroup)
	defer consumer.Close()
	catalogWorker := worker.NewCatalogWorker(consumer, redis)
	go func() {
		if err := catalogWorker.Start(ctx); err != nil && err != context.Canceled {
			logger.Error("Catalog worker stopped", zap.Error(err))
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := api.NewHandler(sales, orders, commissions, invoices, catalog, db, db, uploader)
	router := api.SetupRoutes(handler, cfg.Auth.JWTSecret)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
