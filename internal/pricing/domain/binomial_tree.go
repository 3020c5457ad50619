package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// LatticeParams 二叉树网格参数
// Prob 必须落在开区间 (0,1)，否则模型退化
type LatticeParams struct {
	Steps int     // 时间步数
	Dt    float64 // 单步时长（年）
	Up    float64 // 上涨因子 exp(σ√Δt)
	Down  float64 // 下跌因子 1/Up
	Prob  float64 // 风险中性上涨概率
}

// NewLatticeParams 根据合约和步数推导网格参数
func NewLatticeParams(c OptionContract, steps int) (LatticeParams, error) {
	if steps < 1 {
		return LatticeParams{}, fmt.Errorf("%w: step count must be at least 1, got %d", ErrInvalidParameter, steps)
	}

	dt := c.Maturity / float64(steps)
	up := math.Exp(c.Volatility * math.Sqrt(dt))
	down := 1 / up
	prob := (math.Exp(c.RiskFreeRate*dt) - down) / (up - down)

	if math.IsNaN(prob) || prob <= 0 || prob >= 1 {
		return LatticeParams{}, fmt.Errorf("%w: risk-neutral probability %v outside (0,1) for r=%v sigma=%v dt=%v",
			ErrDegenerateModel, prob, c.RiskFreeRate, c.Volatility, dt)
	}

	return LatticeParams{Steps: steps, Dt: dt, Up: up, Down: down, Prob: prob}, nil
}

// LatticeResult 二叉树定价结果
type LatticeResult struct {
	Price        decimal.Decimal
	AdjustedSpot float64
	Params       LatticeParams
}

// PriceAmericanOption 用二叉树对美式期权定价
// 每个节点取继续持有价值与立即行权价值的较大者
func PriceAmericanOption(c OptionContract, steps int) (*LatticeResult, error) {
	return priceOnLattice(c, steps, true)
}

// PriceEuropeanOption 用同一网格定价对应的欧式期权（仅到期行权）
func PriceEuropeanOption(c OptionContract, steps int) (*LatticeResult, error) {
	return priceOnLattice(c, steps, false)
}

// priceOnLattice 构建价格网格并向后归纳折算
//
// 离散股息处理：先按步建立累计派息数组，派发时间 t 的股息影响所有满足
// i·Δt > t 的步 i；节点价格为乘法网格 Spot·u^j·d^(i−j) 减去该步的累计
// 派息额，使网格在股息落地后反映真实的除息价格水平。数组只建一次，
// 节点不做逐个股息判断。
func priceOnLattice(c OptionContract, steps int, american bool) (*LatticeResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	params, err := NewLatticeParams(c, steps)
	if err != nil {
		return nil, err
	}

	paid := dividendAdjustments(c, params)
	discount := math.Exp(-c.RiskFreeRate * params.Dt)

	// 到期层收益
	values := make([]float64, steps+1)
	for j := 0; j <= steps; j++ {
		values[j] = c.IntrinsicValue(nodePrice(c.Spot, params, steps, j) - paid[steps])
	}

	// 向后归纳，单行滚动复用：第 i 层只依赖第 i+1 层
	for i := steps - 1; i >= 0; i-- {
		for j := 0; j <= i; j++ {
			continuation := discount * (params.Prob*values[j+1] + (1-params.Prob)*values[j])
			if american {
				exercise := c.IntrinsicValue(nodePrice(c.Spot, params, i, j) - paid[i])
				values[j] = math.Max(continuation, exercise)
			} else {
				values[j] = continuation
			}
		}
	}

	value := values[0]
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, fmt.Errorf("%w: lattice produced non-finite value for spot=%v sigma=%v steps=%d",
			ErrNumericOverflow, c.Spot, c.Volatility, steps)
	}

	return &LatticeResult{
		Price:        decimal.NewFromFloat(value),
		AdjustedSpot: c.AdjustedSpot(),
		Params:       params,
	}, nil
}

// nodePrice 第 i 步第 j 个上涨节点的乘法网格价格
func nodePrice(spot float64, params LatticeParams, i, j int) float64 {
	return spot * math.Pow(params.Up, float64(j)) * math.Pow(params.Down, float64(i-j))
}

// dividendAdjustments 按步累计的已派股息数组
// 派发时间映射为其后第一个网格时点，股息从该步起生效
func dividendAdjustments(c OptionContract, params LatticeParams) []float64 {
	paid := make([]float64, params.Steps+1)
	for _, d := range c.Dividends {
		for i := 0; i <= params.Steps; i++ {
			if float64(i)*params.Dt > d.PayTime {
				paid[i] += d.Amount
			}
		}
	}
	return paid
}
