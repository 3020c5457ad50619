package application

import (
	"context"
	"fmt"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/pkg/logger"
)

// ResultCache 定价结果缓存接口
type ResultCache interface {
	SavePricingResult(ctx context.Context, result *domain.PricingResult) error
	GetLatestPricingResult(ctx context.Context, symbol string) (*domain.PricingResult, error)
}

// PricingQueryService 处理所有定价相关的查询操作
type PricingQueryService struct {
	repo  domain.PricingRepository
	cache ResultCache
}

// NewPricingQueryService 构造函数，cache 可以为 nil
func NewPricingQueryService(repo domain.PricingRepository, cache ResultCache) *PricingQueryService {
	return &PricingQueryService{repo: repo, cache: cache}
}

// GetLatestResult 获取最新定价结果，优先读缓存，未命中时回源并回填
func (q *PricingQueryService) GetLatestResult(ctx context.Context, symbol string) (*PricingResultDTO, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", domain.ErrInvalidParameter)
	}

	if q.cache != nil {
		cached, err := q.cache.GetLatestPricingResult(ctx, symbol)
		if err != nil {
			logger.Warn(ctx, "pricing result cache read failed", "symbol", symbol, "error", err)
		} else if cached != nil {
			return toResultDTO(cached), nil
		}
	}

	result, err := q.repo.GetLatestPricingResult(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	if q.cache != nil {
		if err := q.cache.SavePricingResult(ctx, result); err != nil {
			logger.Warn(ctx, "pricing result cache write failed", "symbol", symbol, "error", err)
		}
	}
	return toResultDTO(result), nil
}

// GetResultHistory 按时间倒序获取历史定价结果
func (q *PricingQueryService) GetResultHistory(ctx context.Context, symbol string, limit int) ([]*PricingResultDTO, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", domain.ErrInvalidParameter)
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	results, err := q.repo.GetPricingResultHistory(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]*PricingResultDTO, 0, len(results))
	for _, r := range results {
		dtos = append(dtos, toResultDTO(r))
	}
	return dtos, nil
}

// DescribeContract 校验合约并返回文本摘要
func (q *PricingQueryService) DescribeContract(ctx context.Context, cmd PriceOptionCommand) (string, error) {
	contract := cmd.toContract()
	if err := contract.Validate(); err != nil {
		return "", err
	}
	return contract.Summary(), nil
}
