package messaging

import (
	"context"
	"time"

	"github.com/wyfcoding/optionpricing/pkg/logger"
	"github.com/wyfcoding/optionpricing/pkg/metrics"
	"github.com/wyfcoding/optionpricing/pkg/mq"
	"github.com/wyfcoding/optionpricing/pkg/utils"
	"gorm.io/gorm"
)

// 放弃投递前的最大尝试次数
const maxDeliveryAttempts = 10

// OutboxRelay 周期性地把待投递的 Outbox 消息发往 Kafka
type OutboxRelay struct {
	db        *gorm.DB
	producer  *mq.KafkaProducer
	topic     string
	interval  time.Duration
	batchSize int
	metrics   *metrics.Metrics
}

// NewOutboxRelay 创建投递器
func NewOutboxRelay(db *gorm.DB, producer *mq.KafkaProducer, topic string, interval time.Duration, batchSize int, m *metrics.Metrics) *OutboxRelay {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxRelay{
		db:        db,
		producer:  producer,
		topic:     topic,
		interval:  interval,
		batchSize: batchSize,
		metrics:   m,
	}
}

// Run 阻塞运行投递循环，直到 ctx 取消
func (r *OutboxRelay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	logger.Info(ctx, "outbox relay started", "topic", r.topic, "interval", r.interval)
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "outbox relay stopped")
			return
		case <-ticker.C:
			if err := r.drainOnce(ctx); err != nil {
				logger.Error(ctx, "outbox drain failed", "error", err)
			}
		}
	}
}

// drainOnce 取出一批待投递消息并逐条发送
func (r *OutboxRelay) drainOnce(ctx context.Context) error {
	var pending []OutboxMessage
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusPending).
		Order("created_at asc").
		Limit(r.batchSize).
		Find(&pending).Error
	if err != nil {
		return err
	}
	if r.metrics != nil {
		r.metrics.OutboxPending.Set(float64(len(pending)))
	}
	if len(pending) == 0 {
		return nil
	}

	for i := range pending {
		msg := &pending[i]
		sendErr := utils.RetryWithBackoff(3, 50*time.Millisecond, time.Second, func() error {
			return r.producer.SendRaw(ctx, r.topic, msg.EventKey, []byte(msg.Payload))
		})
		if sendErr != nil {
			r.markFailure(ctx, msg, sendErr)
			continue
		}
		if err := r.db.WithContext(ctx).Model(msg).Updates(map[string]any{
			"status":     StatusPublished,
			"attempts":   msg.Attempts + 1,
			"updated_at": time.Now(),
		}).Error; err != nil {
			return err
		}
		if r.metrics != nil {
			r.metrics.OutboxPublishedTotal.Inc()
		}
	}
	return nil
}

// markFailure 记录失败，超过最大尝试次数后不再重投
func (r *OutboxRelay) markFailure(ctx context.Context, msg *OutboxMessage, sendErr error) {
	if r.metrics != nil {
		r.metrics.OutboxFailuresTotal.Inc()
	}

	attempts := msg.Attempts + 1
	status := StatusPending
	if attempts >= maxDeliveryAttempts {
		status = StatusFailed
		logger.Error(ctx, "outbox message dropped after max attempts",
			"message_id", msg.ID,
			"event_type", msg.EventType,
			"attempts", attempts,
			"error", sendErr,
		)
	} else {
		logger.Warn(ctx, "outbox delivery failed, will retry",
			"message_id", msg.ID,
			"event_type", msg.EventType,
			"attempts", attempts,
			"error", sendErr,
		)
	}

	if err := r.db.WithContext(ctx).Model(msg).Updates(map[string]any{
		"status":     status,
		"attempts":   attempts,
		"updated_at": time.Now(),
	}).Error; err != nil {
		logger.Error(ctx, "failed to update outbox message", "message_id", msg.ID, "error", err)
	}
}
