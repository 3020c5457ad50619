package domain

import "context"

// EventPublisher 领域事件发布接口
// PublishInTx 与仓储事务共用同一个事务句柄（Outbox 模式）
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
	PublishInTx(ctx context.Context, tx any, eventType, key string, payload any) error
}
