package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/macho715/HVDC-PJT-sub001/internal/business"
	"github.com/macho715/HVDC-PJT-sub001/internal/consumer"
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
	if cfg.Server.CallbackQueue == "" {
		log.Fatalf("server.callback_queue is required")
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

	// 4. 初始化 Service 与 Consumer
	callbackService := business.NewCallbackService(
		batchDAO,
		pubsub,
		cfg.Server.NotifyChannel,
		zapLogger,
	)

	callbackConsumer := consumer.NewCallbackConsumer(
		lmstfyClient,
		callbackService,
		&consumer.Config{
			QueueName:    cfg.Server.CallbackQueue,
			Timeout:      3,  // 拉取消息超时 3 秒
			TTR:          30, // 消息处理超时 30 秒
			PollInterval: 100 * time.Millisecond,
		},
		zapLogger,
	)

	// 5. 启动消费循环（优雅退出）
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- callbackConsumer.Start(ctx)
	}()

	select {
	case <-sigChan:
		log.Println("Received shutdown signal, stopping consumer...")
		cancel()
		time.Sleep(1 * time.Second) // 等待消费者处理完当前消息
		log.Println("Consumer stopped gracefully")
	case err := <-errChan:
		if err != nil && err != context.Canceled {
			log.Fatalf("Consumer stopped with error: %v", err)
		}
	}
}
