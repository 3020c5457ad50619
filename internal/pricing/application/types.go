package application

import (
	"time"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

// 定价模型标识
const (
	ModelBinomialTree     = "BinomialTree"
	ModelEuropeanBinomial = "EuropeanBinomial"
)

// DividendInput 股息输入
type DividendInput struct {
	Amount  float64 `json:"amount"`
	PayTime float64 `json:"pay_time"`
}

// PriceOptionCommand 期权定价命令
type PriceOptionCommand struct {
	Symbol       string
	OptionType   string
	Spot         float64
	Strike       float64
	Maturity     float64
	Volatility   float64
	RiskFreeRate float64
	Dividends    []DividendInput
	StepCount    int
	PricingModel string
}

// BatchPriceOptionsCommand 批量定价命令
type BatchPriceOptionsCommand struct {
	BatchID   string
	Contracts []PriceOptionCommand
}

// BatchPricingResult 批量定价结果
type BatchPricingResult struct {
	BatchID      string
	Results      []*domain.PricingResult
	SuccessCount int
	FailureCount int
	AverageTime  float64
}

// PricingResultDTO 定价结果 DTO
type PricingResultDTO struct {
	Symbol       string    `json:"symbol"`
	OptionType   string    `json:"option_type"`
	OptionPrice  string    `json:"option_price"`
	Spot         string    `json:"spot"`
	Strike       string    `json:"strike"`
	Maturity     float64   `json:"maturity"`
	Volatility   float64   `json:"volatility"`
	RiskFreeRate float64   `json:"risk_free_rate"`
	DividendPV   string    `json:"dividend_pv"`
	StepCount    int       `json:"step_count"`
	PricingModel string    `json:"pricing_model"`
	CalculatedAt int64     `json:"calculated_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func toResultDTO(r *domain.PricingResult) *PricingResultDTO {
	if r == nil {
		return nil
	}
	return &PricingResultDTO{
		Symbol:       r.Symbol,
		OptionType:   string(r.OptionType),
		OptionPrice:  r.OptionPrice.String(),
		Spot:         r.Spot.String(),
		Strike:       r.Strike.String(),
		Maturity:     r.Maturity,
		Volatility:   r.Volatility,
		RiskFreeRate: r.RiskFreeRate,
		DividendPV:   r.DividendPV.String(),
		StepCount:    r.StepCount,
		PricingModel: r.PricingModel,
		CalculatedAt: r.CalculatedAt,
		CreatedAt:    r.CreatedAt,
	}
}

// toContract 将命令转换为领域合约
func (cmd PriceOptionCommand) toContract() domain.OptionContract {
	dividends := make([]domain.Dividend, 0, len(cmd.Dividends))
	for _, d := range cmd.Dividends {
		dividends = append(dividends, domain.Dividend{Amount: d.Amount, PayTime: d.PayTime})
	}
	return domain.OptionContract{
		Type:         domain.OptionType(cmd.OptionType),
		Spot:         cmd.Spot,
		Strike:       cmd.Strike,
		Maturity:     cmd.Maturity,
		Volatility:   cmd.Volatility,
		RiskFreeRate: cmd.RiskFreeRate,
		Dividends:    dividends,
	}
}
