package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseCall() OptionContract {
	return OptionContract{
		Type:         OptionTypeCall,
		Spot:         100,
		Strike:       100,
		Maturity:     1,
		Volatility:   0.25,
		RiskFreeRate: 0.04,
	}
}

func mustPrice(t *testing.T, c OptionContract, steps int) float64 {
	t.Helper()
	result, err := PriceAmericanOption(c, steps)
	require.NoError(t, err)
	price, _ := result.Price.Float64()
	return price
}

func TestPriceAmericanOption_DividendScenario(t *testing.T) {
	c := baseCall()
	c.Dividends = []Dividend{{Amount: 2, PayTime: 0.75}}

	result, err := PriceAmericanOption(c, 1000)
	require.NoError(t, err)

	price, _ := result.Price.Float64()
	assert.InDelta(t, 11.0644, price, 0.01)
	assert.InDelta(t, c.Spot-2*math.Exp(-0.04*0.75), result.AdjustedSpot, 1e-12)
	assert.Equal(t, 1000, result.Params.Steps)
}

func TestPriceAmericanOption_SingleStepMatchesHandFormula(t *testing.T) {
	c := baseCall()
	result, err := PriceAmericanOption(c, 1)
	require.NoError(t, err)

	// 单步网格可以手工解出：折现后的风险中性期望收益
	up := math.Exp(c.Volatility)
	down := 1 / up
	p := (math.Exp(c.RiskFreeRate) - down) / (up - down)
	expected := math.Exp(-c.RiskFreeRate) * (p*math.Max(c.Spot*up-c.Strike, 0) + (1-p)*math.Max(c.Spot*down-c.Strike, 0))

	price, _ := result.Price.Float64()
	assert.InDelta(t, expected, price, 1e-12)
}

func TestPriceAmericanOption_Convergence(t *testing.T) {
	c := baseCall()
	c.Dividends = []Dividend{{Amount: 2, PayTime: 0.75}}

	diffAt := func(steps int) float64 {
		return math.Abs(mustPrice(t, c, steps) - mustPrice(t, c, 2*steps))
	}

	// 二叉树收敛带振荡，用相隔较远的步数比较
	coarse := diffAt(100)
	fine := diffAt(400)
	finest := diffAt(800)
	assert.Less(t, fine, coarse)
	assert.Less(t, finest, coarse)
	assert.Less(t, finest, 0.005)
}

func TestPriceAmericanOption_IntrinsicLowerBound(t *testing.T) {
	put := OptionContract{
		Type:         OptionTypePut,
		Spot:         80,
		Strike:       120,
		Maturity:     1,
		Volatility:   0.25,
		RiskFreeRate: 0.02,
		Dividends:    []Dividend{{Amount: 2, PayTime: 0.5}},
	}

	price := mustPrice(t, put, 300)
	assert.GreaterOrEqual(t, price, put.IntrinsicValue(put.Spot))
}

func TestPriceAmericanOption_Monotonicity(t *testing.T) {
	t.Run("increasing in volatility", func(t *testing.T) {
		low := baseCall()
		low.Volatility = 0.2
		high := baseCall()
		high.Volatility = 0.3
		assert.Less(t, mustPrice(t, low, 200), mustPrice(t, high, 200))
	})

	t.Run("call increasing in spot", func(t *testing.T) {
		low := baseCall()
		low.Spot = 90
		high := baseCall()
		high.Spot = 110
		assert.Less(t, mustPrice(t, low, 200), mustPrice(t, high, 200))
	})

	t.Run("call decreasing in strike", func(t *testing.T) {
		low := baseCall()
		low.Strike = 90
		high := baseCall()
		high.Strike = 110
		assert.Greater(t, mustPrice(t, low, 200), mustPrice(t, high, 200))
	})
}

func TestPriceAmericanOption_AgainstEuropean(t *testing.T) {
	t.Run("american never below european", func(t *testing.T) {
		put := baseCall()
		put.Type = OptionTypePut
		put.Strike = 110

		american, err := PriceAmericanOption(put, 500)
		require.NoError(t, err)
		european, err := PriceEuropeanOption(put, 500)
		require.NoError(t, err)

		ap, _ := american.Price.Float64()
		ep, _ := european.Price.Float64()
		assert.Greater(t, ap, ep)
		// 无股息实值美式看跌应有明显的提前行权溢价
		assert.Greater(t, ap-ep, 0.5)
	})

	t.Run("no-dividend call has no exercise premium", func(t *testing.T) {
		c := baseCall()
		american, err := PriceAmericanOption(c, 500)
		require.NoError(t, err)
		european, err := PriceEuropeanOption(c, 500)
		require.NoError(t, err)

		ap, _ := american.Price.Float64()
		ep, _ := european.Price.Float64()
		assert.InDelta(t, ep, ap, 1e-9)
	})
}

func TestNewLatticeParams_Errors(t *testing.T) {
	t.Run("zero steps", func(t *testing.T) {
		_, err := NewLatticeParams(baseCall(), 0)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})

	t.Run("degenerate probability", func(t *testing.T) {
		// 利率远大于波动率时上涨概率超过 1
		c := baseCall()
		c.Volatility = 0.01
		c.RiskFreeRate = 1
		_, err := NewLatticeParams(c, 1)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDegenerateModel)
	})
}

func TestPriceAmericanOption_InvalidContract(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*OptionContract)
	}{
		{"zero volatility", func(c *OptionContract) { c.Volatility = 0 }},
		{"negative spot", func(c *OptionContract) { c.Spot = -1 }},
		{"dividend at maturity", func(c *OptionContract) {
			c.Dividends = []Dividend{{Amount: 1, PayTime: c.Maturity}}
		}},
		{"dividend before start", func(c *OptionContract) {
			c.Dividends = []Dividend{{Amount: 1, PayTime: 0}}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := baseCall()
			tc.mutate(&c)
			_, err := PriceAmericanOption(c, 100)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestPriceAmericanOption_Overflow(t *testing.T) {
	c := OptionContract{
		Type:         OptionTypeCall,
		Spot:         1e308,
		Strike:       1,
		Maturity:     1,
		Volatility:   1,
		RiskFreeRate: 0,
	}

	_, err := PriceAmericanOption(c, 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNumericOverflow)
	assert.False(t, errors.Is(err, ErrInvalidParameter))
}

func TestPriceAmericanOption_DividendPut(t *testing.T) {
	c := baseCall()
	c.Type = OptionTypePut
	c.Dividends = []Dividend{{Amount: 2, PayTime: 0.75}}

	// 现金股息压低标的价格，看跌期权应比无股息时更贵
	withDiv := mustPrice(t, c, 1000)
	c.Dividends = nil
	withoutDiv := mustPrice(t, c, 1000)
	assert.Greater(t, withDiv, withoutDiv)
	assert.InDelta(t, 9.1587, withDiv, 0.01)
}
