package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

// PricingResultModel 定价结果数据库模型
type PricingResultModel struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
	Symbol       string    `gorm:"column:symbol;type:varchar(32);index;not null"`
	OptionType   string    `gorm:"column:option_type;type:varchar(8);not null"`
	OptionPrice  string    `gorm:"column:option_price;type:decimal(32,18);not null"`
	Spot         string    `gorm:"column:spot;type:decimal(32,18);not null"`
	Strike       string    `gorm:"column:strike;type:decimal(32,18);not null"`
	Maturity     float64   `gorm:"column:maturity;type:double;not null"`
	Volatility   float64   `gorm:"column:volatility;type:double;not null"`
	RiskFreeRate float64   `gorm:"column:risk_free_rate;type:double;not null"`
	DividendPV   string    `gorm:"column:dividend_pv;type:decimal(32,18)"`
	StepCount    int       `gorm:"column:step_count;type:int;not null"`
	PricingModel string    `gorm:"column:pricing_model;type:varchar(32)"`
	CalculatedAt int64     `gorm:"column:calculated_at;type:bigint;index;not null"`
}

func (PricingResultModel) TableName() string { return "pricing_results" }

// mapping helpers

func toPricingResultModel(res *domain.PricingResult) *PricingResultModel {
	if res == nil {
		return nil
	}
	return &PricingResultModel{
		ID:           res.ID,
		CreatedAt:    res.CreatedAt,
		UpdatedAt:    res.UpdatedAt,
		Symbol:       res.Symbol,
		OptionType:   string(res.OptionType),
		OptionPrice:  res.OptionPrice.String(),
		Spot:         res.Spot.String(),
		Strike:       res.Strike.String(),
		Maturity:     res.Maturity,
		Volatility:   res.Volatility,
		RiskFreeRate: res.RiskFreeRate,
		DividendPV:   res.DividendPV.String(),
		StepCount:    res.StepCount,
		PricingModel: res.PricingModel,
		CalculatedAt: res.CalculatedAt,
	}
}

func toPricingResult(m *PricingResultModel) *domain.PricingResult {
	if m == nil {
		return nil
	}
	price, _ := decimal.NewFromString(m.OptionPrice)
	spot, _ := decimal.NewFromString(m.Spot)
	strike, _ := decimal.NewFromString(m.Strike)
	dividendPV, _ := decimal.NewFromString(m.DividendPV)

	return &domain.PricingResult{
		ID:           m.ID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		Symbol:       m.Symbol,
		OptionType:   domain.OptionType(m.OptionType),
		OptionPrice:  price,
		Spot:         spot,
		Strike:       strike,
		Maturity:     m.Maturity,
		Volatility:   m.Volatility,
		RiskFreeRate: m.RiskFreeRate,
		DividendPV:   dividendPV,
		StepCount:    m.StepCount,
		PricingModel: m.PricingModel,
		CalculatedAt: m.CalculatedAt,
	}
}
