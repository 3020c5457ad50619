package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Outbox 消息状态
const (
	StatusPending   = "pending"
	StatusPublished = "published"
	StatusFailed    = "failed"
)

// OutboxMessage Outbox 消息表
type OutboxMessage struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey"`
	EventType string    `gorm:"column:event_type;type:varchar(100);index"`
	EventKey  string    `gorm:"column:event_key;type:varchar(64);index"`
	Payload   string    `gorm:"column:payload;type:text"`
	Status    string    `gorm:"column:status;type:varchar(20);index;default:'pending'"`
	Attempts  int       `gorm:"column:attempts;type:int;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName 指定表名
func (OutboxMessage) TableName() string {
	return "pricing_outbox_messages"
}

// OutboxEventPublisher 实现 domain.EventPublisher，使用 Outbox 模式
// 事件先与业务数据同事务落库，由投递协程异步发往 Kafka
type OutboxEventPublisher struct {
	db *gorm.DB
}

// NewOutboxEventPublisher 创建新的 OutboxEventPublisher 实例
func NewOutboxEventPublisher(db *gorm.DB) *OutboxEventPublisher {
	return &OutboxEventPublisher{db: db}
}

// Publish 在独立事务中写入 Outbox 消息
func (p *OutboxEventPublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	msg, err := newOutboxMessage(eventType, key, payload)
	if err != nil {
		return err
	}
	return p.db.WithContext(ctx).Create(msg).Error
}

// PublishInTx 在调用方事务中写入 Outbox 消息
func (p *OutboxEventPublisher) PublishInTx(ctx context.Context, tx any, eventType, key string, payload any) error {
	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return errors.New("outbox: invalid transaction handle")
	}
	msg, err := newOutboxMessage(eventType, key, payload)
	if err != nil {
		return err
	}
	return gormTx.WithContext(ctx).Create(msg).Error
}

func newOutboxMessage(eventType, key string, payload any) (*OutboxMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &OutboxMessage{
		ID:        uuid.New().String(),
		EventType: eventType,
		EventKey:  key,
		Payload:   string(data),
		Status:    StatusPending,
	}, nil
}
