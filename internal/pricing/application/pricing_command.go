package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/pkg/contextx"
	"github.com/wyfcoding/optionpricing/pkg/logger"
)

// PricingCommandService 处理定价相关的命令操作
// 定价结果与领域事件通过 Outbox 在同一事务内落库
type PricingCommandService struct {
	repo         domain.PricingRepository
	publisher    domain.EventPublisher
	defaultSteps int
	maxSteps     int
}

// NewPricingCommandService 创建新的 PricingCommandService 实例
func NewPricingCommandService(repo domain.PricingRepository, publisher domain.EventPublisher, defaultSteps, maxSteps int) *PricingCommandService {
	if defaultSteps < 1 {
		defaultSteps = 1000
	}
	if maxSteps < defaultSteps {
		maxSteps = 100000
	}
	return &PricingCommandService{
		repo:         repo,
		publisher:    publisher,
		defaultSteps: defaultSteps,
		maxSteps:     maxSteps,
	}
}

// PriceOption 期权定价
func (c *PricingCommandService) PriceOption(ctx context.Context, cmd PriceOptionCommand) (*domain.PricingResult, error) {
	if cmd.Symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", domain.ErrInvalidParameter)
	}
	if cmd.PricingModel == "" {
		cmd.PricingModel = ModelBinomialTree
	}
	steps := cmd.StepCount
	if steps == 0 {
		steps = c.defaultSteps
	}
	if steps > c.maxSteps {
		return nil, fmt.Errorf("%w: step count %d exceeds limit %d", domain.ErrInvalidParameter, steps, c.maxSteps)
	}

	contract := cmd.toContract()
	logger.Debug(ctx, "pricing option contract", "symbol", cmd.Symbol, "summary", contract.Summary())

	var latticeResult *domain.LatticeResult
	var err error
	switch cmd.PricingModel {
	case ModelBinomialTree:
		latticeResult, err = domain.PriceAmericanOption(contract, steps)
	case ModelEuropeanBinomial:
		latticeResult, err = domain.PriceEuropeanOption(contract, steps)
	default:
		err = fmt.Errorf("%w: unknown pricing model %q", domain.ErrInvalidParameter, cmd.PricingModel)
	}
	if err != nil {
		c.publishError(ctx, cmd, steps, err)
		return nil, err
	}

	result := &domain.PricingResult{
		Symbol:       cmd.Symbol,
		OptionType:   contract.Type,
		OptionPrice:  latticeResult.Price,
		Spot:         decimal.NewFromFloat(contract.Spot),
		Strike:       decimal.NewFromFloat(contract.Strike),
		Maturity:     contract.Maturity,
		Volatility:   contract.Volatility,
		RiskFreeRate: contract.RiskFreeRate,
		DividendPV:   decimal.NewFromFloat(contract.DividendPresentValue()),
		StepCount:    steps,
		PricingModel: cmd.PricingModel,
		CalculatedAt: time.Now().Unix(),
	}

	err = c.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := c.repo.SavePricingResult(txCtx, result); err != nil {
			return err
		}
		if c.publisher == nil {
			return nil
		}
		event := domain.OptionPricedEvent{
			Symbol:       cmd.Symbol,
			OptionType:   contract.Type,
			Spot:         contract.Spot,
			Strike:       contract.Strike,
			Maturity:     contract.Maturity,
			Volatility:   contract.Volatility,
			RiskFreeRate: contract.RiskFreeRate,
			Dividends:    contract.Dividends,
			StepCount:    steps,
			OptionPrice:  latticeResult.Price.InexactFloat64(),
			PricingModel: cmd.PricingModel,
			CalculatedAt: result.CalculatedAt,
			OccurredOn:   time.Now(),
		}
		return c.publisher.PublishInTx(txCtx, contextx.GetTx(txCtx), domain.OptionPricedEventType, cmd.Symbol, event)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// BatchPriceOptions 批量定价
func (c *PricingCommandService) BatchPriceOptions(ctx context.Context, cmd BatchPriceOptionsCommand) (*BatchPricingResult, error) {
	results := make([]*domain.PricingResult, 0, len(cmd.Contracts))
	successCount := 0
	failureCount := 0
	totalTime := 0.0

	for _, contract := range cmd.Contracts {
		start := time.Now()
		result, err := c.PriceOption(ctx, contract)
		totalTime += time.Since(start).Seconds()

		if err != nil {
			failureCount++
			continue
		}
		results = append(results, result)
		successCount++
	}

	avg := 0.0
	if len(cmd.Contracts) > 0 {
		avg = totalTime / float64(len(cmd.Contracts))
	}

	if c.publisher != nil {
		_ = c.publisher.Publish(ctx, domain.BatchPricingCompletedEventType, cmd.BatchID, domain.BatchPricingCompletedEvent{
			BatchID:        cmd.BatchID,
			Symbols:        extractSymbols(cmd.Contracts),
			TotalContracts: len(cmd.Contracts),
			SuccessCount:   successCount,
			FailureCount:   failureCount,
			AverageTime:    avg,
			CompletedAt:    time.Now().Unix(),
			OccurredOn:     time.Now(),
		})
	}

	return &BatchPricingResult{
		BatchID:      cmd.BatchID,
		Results:      results,
		SuccessCount: successCount,
		FailureCount: failureCount,
		AverageTime:  avg,
	}, nil
}

// publishError 发布定价失败事件，尽力而为
func (c *PricingCommandService) publishError(ctx context.Context, cmd PriceOptionCommand, steps int, pricingErr error) {
	if c.publisher == nil {
		return
	}
	event := domain.PricingErrorEvent{
		Symbol:     cmd.Symbol,
		OptionType: domain.OptionType(cmd.OptionType),
		Strike:     cmd.Strike,
		Maturity:   cmd.Maturity,
		StepCount:  steps,
		Error:      pricingErr.Error(),
		ErrorCode:  errorCode(pricingErr),
		OccurredOn: time.Now(),
	}
	if err := c.publisher.Publish(ctx, domain.PricingErrorEventType, cmd.Symbol, event); err != nil {
		logger.Warn(ctx, "failed to publish pricing error event", "symbol", cmd.Symbol, "error", err)
	}
}

// errorCode 将领域错误映射为事件错误码
func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidParameter):
		return "INVALID_PARAMETER"
	case errors.Is(err, domain.ErrDegenerateModel):
		return "DEGENERATE_MODEL"
	case errors.Is(err, domain.ErrNumericOverflow):
		return "NUMERIC_OVERFLOW"
	default:
		return "INTERNAL"
	}
}

// 辅助函数：提取去重后的合约符号
func extractSymbols(contracts []PriceOptionCommand) []string {
	symbols := make([]string, 0, len(contracts))
	seen := make(map[string]bool)
	for _, contract := range contracts {
		if !seen[contract.Symbol] {
			symbols = append(symbols, contract.Symbol)
			seen[contract.Symbol] = true
		}
	}
	return symbols
}
