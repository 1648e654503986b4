package framework

import (
	"context"
	"sync"
	"time"
)

// Subscriber 订阅者：从分类任务队列拉取消息，转发给 Processor
type Subscriber struct {
	cfg        *SubscriberConfig
	source     MessageSource
	logger     Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewSubscriber 创建订阅者
func NewSubscriber(cfg *SubscriberConfig, source MessageSource, logger Logger) *Subscriber {
	return &Subscriber{
		cfg:    cfg,
		source: source,
		logger: logger,
	}
}

// Start 启动订阅循环
func (s *Subscriber) Start(parentCtx context.Context, inputChan chan<- *Message) error {
	ctx, cancel := context.WithCancel(parentCtx)
	s.cancelFunc = cancel

	s.logger.Infof(ctx, "[Subscriber] Starting %d pullers for queue: %s",
		s.cfg.Concurrency, s.cfg.QueueName)

	for i := 0; i < s.cfg.Concurrency; i++ {
		pullerID := i
		s.wg.Add(1)
		go s.loop(ctx, pullerID, inputChan)
	}

	return nil
}

// Stop 停止订阅（不再拉取新消息）
func (s *Subscriber) Stop() {
	s.logger.Infof(context.Background(), "[Subscriber] Stopping...")
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
}

// Wait 等待所有拉取协程退出
func (s *Subscriber) Wait() {
	s.wg.Wait()
	s.logger.Infof(context.Background(), "[Subscriber] All pullers exited")
}

// loop 单个拉取协程
func (s *Subscriber) loop(ctx context.Context, pullerID int, inputChan chan<- *Message) {
	defer s.wg.Done()
	s.logger.Infof(ctx, "[Subscriber-%d] Started", pullerID)

	for {
		// 1. 拉取消息（带超时）
		msg, err := s.source.Consume(s.cfg.QueueName, s.cfg.Timeout, s.cfg.TTR)
		if err != nil {
			// 网络抖动不退出，退避后重试
			s.logger.Warnf(ctx, "[Subscriber-%d] Consume error: %v, backing off", pullerID, err)
			if s.exiting(ctx, pullerID) {
				return
			}
			time.Sleep(s.cfg.ErrorBackoff)
			continue
		}

		// 超时未拉到消息
		if msg == nil {
			if s.exiting(ctx, pullerID) {
				return
			}
			continue
		}

		// 2. 转发给 Processor（同时监听退出，避免停机时卡在满 channel 上）
		select {
		case inputChan <- msg:
			s.logger.Debugf(ctx, "[Subscriber-%d] Message forwarded: %s", pullerID, msg.ID)
		case <-ctx.Done():
			// 未 ACK 的消息会在 TTR 到期后重新投递
			s.logger.Warnf(ctx, "[Subscriber-%d] Dropping message on shutdown: %s", pullerID, msg.ID)
			return
		}

		// 3. 速率控制 + 退出检查
		select {
		case <-ctx.Done():
			s.logger.Infof(ctx, "[Subscriber-%d] Context cancelled, exiting", pullerID)
			return
		case <-time.After(s.cfg.Rate):
		}
	}
}

// exiting 非阻塞退出检查
func (s *Subscriber) exiting(ctx context.Context, pullerID int) bool {
	select {
	case <-ctx.Done():
		s.logger.Infof(ctx, "[Subscriber-%d] Context cancelled, exiting", pullerID)
		return true
	default:
		return false
	}
}
