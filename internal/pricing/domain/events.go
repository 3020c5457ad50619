package domain

import "time"

const (
	OptionPricedEventType          = "OptionPriced"
	PricingErrorEventType          = "PricingError"
	BatchPricingCompletedEventType = "BatchPricingCompleted"
)

// OptionPricedEvent 期权定价完成事件
type OptionPricedEvent struct {
	Symbol       string     `json:"symbol"`
	OptionType   OptionType `json:"option_type"`
	Spot         float64    `json:"spot"`
	Strike       float64    `json:"strike"`
	Maturity     float64    `json:"maturity"`
	Volatility   float64    `json:"volatility"`
	RiskFreeRate float64    `json:"risk_free_rate"`
	Dividends    []Dividend `json:"dividends,omitempty"`
	StepCount    int        `json:"step_count"`
	OptionPrice  float64    `json:"option_price"`
	PricingModel string     `json:"pricing_model"`
	CalculatedAt int64      `json:"calculated_at"`
	OccurredOn   time.Time  `json:"occurred_on"`
}

// PricingErrorEvent 定价失败事件
type PricingErrorEvent struct {
	Symbol     string     `json:"symbol"`
	OptionType OptionType `json:"option_type"`
	Strike     float64    `json:"strike"`
	Maturity   float64    `json:"maturity"`
	StepCount  int        `json:"step_count"`
	Error      string     `json:"error"`
	ErrorCode  string     `json:"error_code"`
	OccurredOn time.Time  `json:"occurred_on"`
}

// BatchPricingCompletedEvent 批量定价完成事件
type BatchPricingCompletedEvent struct {
	BatchID        string    `json:"batch_id"`
	Symbols        []string  `json:"symbols"`
	TotalContracts int       `json:"total_contracts"`
	SuccessCount   int       `json:"success_count"`
	FailureCount   int       `json:"failure_count"`
	AverageTime    float64   `json:"average_time"`
	CompletedAt    int64     `json:"completed_at"`
	OccurredOn     time.Time `json:"occurred_on"`
}
