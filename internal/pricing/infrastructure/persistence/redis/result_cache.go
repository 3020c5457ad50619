package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

// PricingResultCache 按合约符号缓存最近一次定价结果
type PricingResultCache struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// NewPricingResultCache 创建缓存实例
func NewPricingResultCache(client redis.UniversalClient) *PricingResultCache {
	return &PricingResultCache{
		client:    client,
		keyPrefix: "pricing_result:",
		ttl:       15 * time.Minute,
	}
}

// SavePricingResult 写入最新定价结果
func (c *PricingResultCache) SavePricingResult(ctx context.Context, result *domain.PricingResult) error {
	if result == nil {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(result.Symbol), data, c.ttl).Err()
}

// GetLatestPricingResult 读取最新定价结果，未命中时返回 nil
func (c *PricingResultCache) GetLatestPricingResult(ctx context.Context, symbol string) (*domain.PricingResult, error) {
	if symbol == "" {
		return nil, nil
	}
	data, err := c.client.Get(ctx, c.key(symbol)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var result domain.PricingResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *PricingResultCache) key(symbol string) string {
	return fmt.Sprintf("%s%s", c.keyPrefix, symbol)
}
