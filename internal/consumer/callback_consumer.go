package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/macho715/HVDC-PJT-sub001/common/model"
	"github.com/macho715/HVDC-PJT-sub001/internal/business"
	"github.com/macho715/HVDC-PJT-sub001/pkg/lmstfy"
	"github.com/macho715/HVDC-PJT-sub001/pkg/logger"
)

// CallbackConsumer 回调消费者
// 职责：
// 1. 从 lmstfy 队列消费分类/校验/对账回调
// 2. 解析消息并交给 CallbackService 处理（落库 + 通知）
// 3. 确认消息（ACK）
type CallbackConsumer struct {
	lmstfyClient    *lmstfy.Client
	callbackService *business.CallbackService
	queueName       string
	logger          logger.Logger

	// 消费配置
	timeout      time.Duration // 拉取消息超时
	ttr          time.Duration // Time-To-Run
	pollInterval time.Duration
}

// Config 消费者配置
type Config struct {
	QueueName    string        // 回调队列名称
	Timeout      int           // 拉取消息超时（秒）
	TTR          int           // Time-To-Run（秒）
	PollInterval time.Duration // 出错后的退避间隔
}

// NewCallbackConsumer 创建回调消费者实例
func NewCallbackConsumer(
	lmstfyClient *lmstfy.Client,
	callbackService *business.CallbackService,
	config *Config,
	log logger.Logger,
) *CallbackConsumer {
	return &CallbackConsumer{
		lmstfyClient:    lmstfyClient,
		callbackService: callbackService,
		queueName:       config.QueueName,
		timeout:         time.Duration(config.Timeout) * time.Second,
		ttr:             time.Duration(config.TTR) * time.Second,
		pollInterval:    config.PollInterval,
		logger:          log,
	}
}

// Start 启动消费循环，阻塞直到 ctx 取消
func (c *CallbackConsumer) Start(ctx context.Context) error {
	c.logger.Infof(ctx, "[CallbackConsumer] Started: queue=%s, timeout=%s, ttr=%s",
		c.queueName, c.timeout, c.ttr)

	for {
		select {
		case <-ctx.Done():
			c.logger.Infof(ctx, "[CallbackConsumer] Stopped")
			return ctx.Err()
		default:
			if err := c.consumeOne(ctx); err != nil {
				c.logger.Errorf(ctx, "[CallbackConsumer] Consume failed: %v", err)
				time.Sleep(c.pollInterval)
			}
		}
	}
}

// consumeOne 消费一条消息
func (c *CallbackConsumer) consumeOne(ctx context.Context) error {
	// 1. 从队列拉取消息
	msg, err := c.lmstfyClient.Consume(c.queueName, c.timeout, c.ttr)
	if err != nil {
		return fmt.Errorf("consume message failed: %w", err)
	}

	if msg == nil {
		// 没有消息，继续等待
		return nil
	}

	c.logger.Infof(ctx, "[CallbackConsumer] Received callback: job_id=%s", msg.ID)

	// 2. 解析回调消息
	callback, err := c.parseMessage(msg.Data)
	if err != nil {
		c.logger.Errorf(ctx, "[CallbackConsumer] Parse failed: job_id=%s, err=%v", msg.ID, err)
		// 解析失败，直接 ACK（避免死循环）
		_ = c.lmstfyClient.Ack(c.queueName, msg.ID)
		return err
	}

	// 3. 处理回调
	if err := c.callbackService.HandleCallback(ctx, callback); err != nil {
		c.logger.Errorf(ctx, "[CallbackConsumer] Handle failed: job_id=%s, batch_id=%s, err=%v",
			msg.ID, callback.BatchID, err)
		// 处理失败，不 ACK（让 lmstfy TTR 机制重试）
		return err
	}

	// 4. 确认消息
	if err := c.lmstfyClient.Ack(c.queueName, msg.ID); err != nil {
		c.logger.Errorf(ctx, "[CallbackConsumer] Ack failed: job_id=%s, err=%v", msg.ID, err)
		return err
	}

	c.logger.Infof(ctx, "[CallbackConsumer] Callback processed: job_id=%s, batch_id=%s",
		msg.ID, callback.BatchID)

	return nil
}

// parseMessage 解析消息数据
func (c *CallbackConsumer) parseMessage(data []byte) (*model.FlowBatchCallback, error) {
	var callback model.FlowBatchCallback
	if err := json.Unmarshal(data, &callback); err != nil {
		return nil, fmt.Errorf("unmarshal callback failed: %w", err)
	}

	if callback.Status == "" {
		return nil, fmt.Errorf("status is required")
	}

	return &callback, nil
}
