package application

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

type fakeCache struct {
	entries map[string]*domain.PricingResult
	getErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*domain.PricingResult)}
}

func (f *fakeCache) SavePricingResult(_ context.Context, result *domain.PricingResult) error {
	f.entries[result.Symbol] = result
	return nil
}

func (f *fakeCache) GetLatestPricingResult(_ context.Context, symbol string) (*domain.PricingResult, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.entries[symbol], nil
}

func storedResult(symbol string, price float64) *domain.PricingResult {
	return &domain.PricingResult{
		Symbol:       symbol,
		OptionType:   domain.OptionTypeCall,
		OptionPrice:  decimal.NewFromFloat(price),
		Spot:         decimal.NewFromInt(100),
		Strike:       decimal.NewFromInt(100),
		Maturity:     1,
		Volatility:   0.25,
		RiskFreeRate: 0.04,
		StepCount:    1000,
		PricingModel: ModelBinomialTree,
	}
}

func TestGetLatestResult(t *testing.T) {
	t.Run("cache hit skips repository", func(t *testing.T) {
		cache := newFakeCache()
		require.NoError(t, cache.SavePricingResult(context.Background(), storedResult("AAPL-C-100", 11.06)))
		svc := NewPricingQueryService(&fakeRepository{}, cache)

		dto, err := svc.GetLatestResult(context.Background(), "AAPL-C-100")
		require.NoError(t, err)
		require.NotNil(t, dto)
		assert.Equal(t, "11.06", dto.OptionPrice)
	})

	t.Run("cache miss backfills", func(t *testing.T) {
		repo := &fakeRepository{saved: []*domain.PricingResult{storedResult("AAPL-C-100", 11.06)}}
		cache := newFakeCache()
		svc := NewPricingQueryService(repo, cache)

		dto, err := svc.GetLatestResult(context.Background(), "AAPL-C-100")
		require.NoError(t, err)
		require.NotNil(t, dto)
		assert.Contains(t, cache.entries, "AAPL-C-100")
	})

	t.Run("cache failure falls through to repository", func(t *testing.T) {
		repo := &fakeRepository{saved: []*domain.PricingResult{storedResult("AAPL-C-100", 11.06)}}
		cache := newFakeCache()
		cache.getErr = errors.New("redis down")
		svc := NewPricingQueryService(repo, cache)

		dto, err := svc.GetLatestResult(context.Background(), "AAPL-C-100")
		require.NoError(t, err)
		require.NotNil(t, dto)
	})

	t.Run("unknown symbol returns nil", func(t *testing.T) {
		svc := NewPricingQueryService(&fakeRepository{}, nil)
		dto, err := svc.GetLatestResult(context.Background(), "UNKNOWN")
		require.NoError(t, err)
		assert.Nil(t, dto)
	})

	t.Run("empty symbol rejected", func(t *testing.T) {
		svc := NewPricingQueryService(&fakeRepository{}, nil)
		_, err := svc.GetLatestResult(context.Background(), "")
		assert.ErrorIs(t, err, domain.ErrInvalidParameter)
	})
}

func TestGetResultHistory(t *testing.T) {
	repo := &fakeRepository{}
	for i := 0; i < 5; i++ {
		repo.saved = append(repo.saved, storedResult("AAPL-C-100", 11+float64(i)))
	}
	svc := NewPricingQueryService(repo, nil)

	t.Run("limit respected", func(t *testing.T) {
		dtos, err := svc.GetResultHistory(context.Background(), "AAPL-C-100", 3)
		require.NoError(t, err)
		assert.Len(t, dtos, 3)
		// 最近一次排在最前
		assert.Equal(t, "15", dtos[0].OptionPrice)
	})

	t.Run("invalid limit uses default", func(t *testing.T) {
		dtos, err := svc.GetResultHistory(context.Background(), "AAPL-C-100", -1)
		require.NoError(t, err)
		assert.Len(t, dtos, 5)
	})
}

func TestDescribeContract(t *testing.T) {
	svc := NewPricingQueryService(&fakeRepository{}, nil)

	summary, err := svc.DescribeContract(context.Background(), validCommand())
	require.NoError(t, err)
	assert.Contains(t, summary, "Contract Specifications")
	assert.Contains(t, summary, "Strike price:                   100")

	bad := validCommand()
	bad.Maturity = -1
	_, err = svc.DescribeContract(context.Background(), bad)
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}
