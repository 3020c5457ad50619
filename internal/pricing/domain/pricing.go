package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OptionType 期权类型
type OptionType string

const (
	OptionTypeCall OptionType = "CALL" // 看涨期权
	OptionTypePut  OptionType = "PUT"  // 看跌期权
)

// Validate 校验期权类型
func (t OptionType) Validate() error {
	if t != OptionTypeCall && t != OptionTypePut {
		return fmt.Errorf("%w: unrecognized option type %q", ErrInvalidParameter, string(t))
	}
	return nil
}

// Dividend 离散股息
// Amount 是派发的现金金额，PayTime 是距今的派发时间（年）
type Dividend struct {
	Amount  float64 `json:"amount"`
	PayTime float64 `json:"pay_time"`
}

// OptionContract 美式期权合约
// 定价调用期间只读，不持有任何跨调用状态
type OptionContract struct {
	Type         OptionType `json:"type"`
	Spot         float64    `json:"spot"`
	Strike       float64    `json:"strike"`
	Maturity     float64    `json:"maturity"`
	Volatility   float64    `json:"volatility"`
	RiskFreeRate float64    `json:"risk_free_rate"`
	Dividends    []Dividend `json:"dividends,omitempty"`
}

// Validate 校验合约参数
// 股息的派发时间必须严格落在 (0, Maturity) 内
func (c OptionContract) Validate() error {
	if err := c.Type.Validate(); err != nil {
		return err
	}
	if c.Spot <= 0 {
		return fmt.Errorf("%w: spot must be positive, got %v", ErrInvalidParameter, c.Spot)
	}
	if c.Strike <= 0 {
		return fmt.Errorf("%w: strike must be positive, got %v", ErrInvalidParameter, c.Strike)
	}
	if c.Maturity <= 0 {
		return fmt.Errorf("%w: maturity must be positive, got %v", ErrInvalidParameter, c.Maturity)
	}
	if c.Volatility <= 0 || c.Volatility > 1 {
		return fmt.Errorf("%w: volatility must be in (0, 1], got %v", ErrInvalidParameter, c.Volatility)
	}
	if c.RiskFreeRate < 0 {
		return fmt.Errorf("%w: risk free rate must be non-negative, got %v", ErrInvalidParameter, c.RiskFreeRate)
	}
	for i, d := range c.Dividends {
		if d.Amount <= 0 {
			return fmt.Errorf("%w: dividend %d amount must be positive, got %v", ErrInvalidParameter, i, d.Amount)
		}
		if d.PayTime <= 0 || d.PayTime >= c.Maturity {
			return fmt.Errorf("%w: dividend %d pay time must be in (0, %v), got %v", ErrInvalidParameter, i, c.Maturity, d.PayTime)
		}
	}
	if c.AdjustedSpot() <= 0 {
		return fmt.Errorf("%w: dividend present value exceeds spot", ErrInvalidParameter)
	}
	return nil
}

// IntrinsicValue 给定标的价格时的内在价值
func (c OptionContract) IntrinsicValue(price float64) float64 {
	if c.Type == OptionTypeCall {
		return math.Max(price-c.Strike, 0)
	}
	return math.Max(c.Strike-price, 0)
}

// DividendPresentValue 所有股息按无风险利率折现到当前时刻的现值之和
func (c OptionContract) DividendPresentValue() float64 {
	pv := 0.0
	for _, d := range c.Dividends {
		pv += d.Amount * math.Exp(-c.RiskFreeRate*d.PayTime)
	}
	return pv
}

// AdjustedSpot 扣除股息现值后的标的价格
func (c OptionContract) AdjustedSpot() float64 {
	return c.Spot - c.DividendPresentValue()
}

// Summary 合约条款摘要，用于展示层输出
func (c OptionContract) Summary() string {
	var b strings.Builder
	b.WriteString("Contract Specifications\n")
	b.WriteString(strings.Repeat("-", 71) + "\n")
	fmt.Fprintf(&b, "Option type:                    %s\n", strings.ToLower(string(c.Type)))
	fmt.Fprintf(&b, "Initial price:                  %g\n", c.Spot)
	fmt.Fprintf(&b, "Strike price:                   %g\n", c.Strike)
	fmt.Fprintf(&b, "Time to maturity (in years):    %g\n", c.Maturity)
	fmt.Fprintf(&b, "Annual volatility:              %g\n", c.Volatility)
	fmt.Fprintf(&b, "Annual risk free rate:          %g\n", c.RiskFreeRate)
	if len(c.Dividends) == 0 {
		b.WriteString("Dividends:                      none")
	} else {
		parts := make([]string, 0, len(c.Dividends))
		for _, d := range c.Dividends {
			parts = append(parts, fmt.Sprintf("(%g, %g)", d.Amount, d.PayTime))
		}
		fmt.Fprintf(&b, "Dividends:                      [%s]", strings.Join(parts, ", "))
	}
	return b.String()
}

// PricingResult 定价结果实体
type PricingResult struct {
	ID           uint            `json:"id"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Symbol       string          `json:"symbol"`
	OptionType   OptionType      `json:"option_type"`
	OptionPrice  decimal.Decimal `json:"option_price"`
	Spot         decimal.Decimal `json:"spot"`
	Strike       decimal.Decimal `json:"strike"`
	Maturity     float64         `json:"maturity"`
	Volatility   float64         `json:"volatility"`
	RiskFreeRate float64         `json:"risk_free_rate"`
	DividendPV   decimal.Decimal `json:"dividend_pv"`
	StepCount    int             `json:"step_count"`
	PricingModel string          `json:"pricing_model"`
	CalculatedAt int64           `json:"calculated_at"`
}
