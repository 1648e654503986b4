package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// PubSub Redis 发布/订阅客户端
type PubSub struct {
	client *redis.Client
}

// NewPubSub 创建 PubSub 实例
func NewPubSub(addr, password string, db int) (*PubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &PubSub{
		client: client,
	}, nil
}

// BatchNotification 批次分类完成通知消息
type BatchNotification struct {
	BatchID   string `json:"batch_id"`
	Vendor    string `json:"vendor"`
	Status    string `json:"status"` // CLASSIFIED/FAILED
	Timestamp int64  `json:"timestamp"`
}

// PublishBatchComplete 发布批次完成通知
// channel 建议：flow_batch_complete；apiserver 的 Smart Wait 订阅此频道
func (p *PubSub) PublishBatchComplete(
	ctx context.Context,
	channel string,
	notification *BatchNotification,
) error {
	msgJSON, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err := p.client.Publish(ctx, channel, msgJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	return nil
}

// Subscribe 订阅频道（Smart Wait 与测试用）
func (p *PubSub) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	return p.client.Subscribe(ctx, channel)
}

// Close 关闭 Redis 连接
func (p *PubSub) Close() error {
	return p.client.Close()
}
