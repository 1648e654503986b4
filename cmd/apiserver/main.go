package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/macho715/HVDC-PJT-sub001/internal/business"
	"github.com/macho715/HVDC-PJT-sub001/internal/server/handlers/batch"
	"github.com/macho715/HVDC-PJT-sub001/internal/server/handlers/reconciliation"
	"github.com/macho715/HVDC-PJT-sub001/internal/server/handlers/validation"
	"github.com/macho715/HVDC-PJT-sub001/internal/server/routers"
	"github.com/macho715/HVDC-PJT-sub001/pkg/config"
	"github.com/macho715/HVDC-PJT-sub001/pkg/infra/mysql"
	"github.com/macho715/HVDC-PJT-sub001/pkg/infra/redis"
	"github.com/macho715/HVDC-PJT-sub001/pkg/lmstfy"
	"github.com/macho715/HVDC-PJT-sub001/pkg/logger"
)

var (
	configPath = flag.String("config", "./config/apiserver.yaml", "配置文件路径")
)

func main() {
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ClassifyQueue == "" {
		log.Fatalf("server.classify_queue is required")
	}

	// 2. 初始化 Logger
	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	// 3. 初始化基础设施
	batchDAO, err := mysql.NewBatchDAO(cfg.MySQL.DSN)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}

	pubsub, err := redis.NewPubSub(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to init redis: %v", err)
	}
	defer pubsub.Close()

	lmstfyClient, err := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
	if err != nil {
		log.Fatalf("Failed to init lmstfy client: %v", err)
	}

	// 4. 初始化 Service 与 Handler
	submissionService := business.NewSubmissionService(
		batchDAO,
		lmstfyClient,
		cfg.Server.ClassifyQueue,
		pubsub,
		cfg.Server.NotifyChannel,
		zapLogger,
	)

	engine := routers.SetupRoutes(
		batch.NewBatchHandler(submissionService),
		validation.NewValidationHandler(submissionService),
		reconciliation.NewReconciliationHandler(submissionService),
		zapLogger,
	)

	// 5. 启动 HTTP Server（后台 goroutine）
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: engine,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	// 6. 优雅停机处理
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Println("Received shutdown signal, gracefully shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		} else {
			log.Println("HTTP server stopped gracefully")
		}
	case err := <-serverErrChan:
		log.Fatalf("HTTP server error: %v", err)
	}

	log.Println("Application stopped")
}
