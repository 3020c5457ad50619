package domain

import "context"

// PricingRepository 定价结果仓储接口
type PricingRepository interface {
	// WithTx 在单个事务中执行 fn，事务句柄通过 context 传递
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// SavePricingResult 保存定价结果
	SavePricingResult(ctx context.Context, result *PricingResult) error

	// GetLatestPricingResult 获取某合约符号最近一次的定价结果
	GetLatestPricingResult(ctx context.Context, symbol string) (*PricingResult, error)

	// GetPricingResultHistory 按计算时间倒序获取历史定价结果
	GetPricingResultHistory(ctx context.Context, symbol string, limit int) ([]*PricingResult, error)
}
