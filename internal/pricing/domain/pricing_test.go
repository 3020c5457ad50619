package domain

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionType_Validate(t *testing.T) {
	assert.NoError(t, OptionTypeCall.Validate())
	assert.NoError(t, OptionTypePut.Validate())

	err := OptionType("STRADDLE").Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestOptionContract_Validate(t *testing.T) {
	valid := OptionContract{
		Type:         OptionTypeCall,
		Spot:         100,
		Strike:       95,
		Maturity:     0.5,
		Volatility:   0.3,
		RiskFreeRate: 0.02,
		Dividends:    []Dividend{{Amount: 1.5, PayTime: 0.25}},
	}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*OptionContract)
	}{
		{"bad type", func(c *OptionContract) { c.Type = "SWAP" }},
		{"zero spot", func(c *OptionContract) { c.Spot = 0 }},
		{"negative strike", func(c *OptionContract) { c.Strike = -5 }},
		{"zero maturity", func(c *OptionContract) { c.Maturity = 0 }},
		{"volatility above one", func(c *OptionContract) { c.Volatility = 1.2 }},
		{"negative rate", func(c *OptionContract) { c.RiskFreeRate = -0.01 }},
		{"zero dividend amount", func(c *OptionContract) { c.Dividends[0].Amount = 0 }},
		{"dividend past maturity", func(c *OptionContract) { c.Dividends[0].PayTime = 0.6 }},
		{"dividends exceed spot", func(c *OptionContract) { c.Dividends[0].Amount = 200 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid
			c.Dividends = []Dividend{valid.Dividends[0]}
			tc.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestOptionContract_IntrinsicValue(t *testing.T) {
	call := OptionContract{Type: OptionTypeCall, Strike: 100}
	assert.Equal(t, 10.0, call.IntrinsicValue(110))
	assert.Equal(t, 0.0, call.IntrinsicValue(90))

	put := OptionContract{Type: OptionTypePut, Strike: 100}
	assert.Equal(t, 10.0, put.IntrinsicValue(90))
	assert.Equal(t, 0.0, put.IntrinsicValue(110))
}

func TestOptionContract_DividendPresentValue(t *testing.T) {
	c := OptionContract{
		Spot:         100,
		RiskFreeRate: 0.04,
		Dividends: []Dividend{
			{Amount: 2, PayTime: 0.75},
			{Amount: 1, PayTime: 0.25},
		},
	}

	expected := 2*math.Exp(-0.04*0.75) + 1*math.Exp(-0.04*0.25)
	assert.InDelta(t, expected, c.DividendPresentValue(), 1e-12)
	assert.InDelta(t, 100-expected, c.AdjustedSpot(), 1e-12)
}

func TestOptionContract_Summary(t *testing.T) {
	c := OptionContract{
		Type:         OptionTypeCall,
		Spot:         100,
		Strike:       100,
		Maturity:     1,
		Volatility:   0.25,
		RiskFreeRate: 0.04,
		Dividends:    []Dividend{{Amount: 2, PayTime: 0.75}},
	}

	s := c.Summary()
	assert.True(t, strings.HasPrefix(s, "Contract Specifications"))
	assert.Contains(t, s, "Option type:                    call")
	assert.Contains(t, s, "Dividends:                      [(2, 0.75)]")

	c.Dividends = nil
	assert.Contains(t, c.Summary(), "Dividends:                      none")
}
