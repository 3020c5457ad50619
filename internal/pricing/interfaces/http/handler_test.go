package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/optionpricing/internal/pricing/application"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

type memoryRepository struct {
	saved []*domain.PricingResult
}

func (m *memoryRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *memoryRepository) SavePricingResult(_ context.Context, result *domain.PricingResult) error {
	m.saved = append(m.saved, result)
	return nil
}

func (m *memoryRepository) GetLatestPricingResult(_ context.Context, symbol string) (*domain.PricingResult, error) {
	for i := len(m.saved) - 1; i >= 0; i-- {
		if m.saved[i].Symbol == symbol {
			return m.saved[i], nil
		}
	}
	return nil, nil
}

func (m *memoryRepository) GetPricingResultHistory(_ context.Context, symbol string, limit int) ([]*domain.PricingResult, error) {
	results := make([]*domain.PricingResult, 0)
	for i := len(m.saved) - 1; i >= 0 && len(results) < limit; i-- {
		if m.saved[i].Symbol == symbol {
			results = append(results, m.saved[i])
		}
	}
	return results, nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, string, any) error        { return nil }
func (noopPublisher) PublishInTx(context.Context, any, string, string, any) error { return nil }

func newTestRouter(repo *memoryRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cmd := application.NewPricingCommandService(repo, noopPublisher{}, 1000, 100000)
	query := application.NewPricingQueryService(repo, nil)
	handler := NewPricingHandler(cmd, query, nil)

	router := gin.New()
	handler.RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func pricingPayload() map[string]any {
	return map[string]any{
		"symbol": "AAPL-C-100",
		"contract": map[string]any{
			"type":           "CALL",
			"spot":           100,
			"strike":         100,
			"maturity":       1,
			"volatility":     0.25,
			"risk_free_rate": 0.04,
			"dividends":      []map[string]any{{"amount": 2, "pay_time": 0.75}},
		},
	}
}

func TestPriceOptionEndpoint(t *testing.T) {
	router := newTestRouter(&memoryRepository{})

	w := doJSON(t, router, http.MethodPost, "/api/v1/pricing/option/price", pricingPayload())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Code int `json:"code"`
		Data struct {
			Symbol    string `json:"symbol"`
			Price     string `json:"price"`
			StepCount int    `json:"step_count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Code)
	assert.Equal(t, "AAPL-C-100", body.Data.Symbol)
	assert.Equal(t, 1000, body.Data.StepCount)

	var price float64
	require.NoError(t, json.Unmarshal([]byte(body.Data.Price), &price))
	assert.InDelta(t, 11.0644, price, 0.01)
}

func TestPriceOptionEndpoint_BadRequest(t *testing.T) {
	router := newTestRouter(&memoryRepository{})

	t.Run("missing fields", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/pricing/option/price", map[string]any{"symbol": "X"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid contract", func(t *testing.T) {
		payload := pricingPayload()
		payload["contract"].(map[string]any)["volatility"] = 3.0
		w := doJSON(t, router, http.MethodPost, "/api/v1/pricing/option/price", payload)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPriceOptionEndpoint_DegenerateModel(t *testing.T) {
	router := newTestRouter(&memoryRepository{})

	payload := pricingPayload()
	contract := payload["contract"].(map[string]any)
	contract["volatility"] = 0.01
	contract["risk_free_rate"] = 1.0
	contract["dividends"] = nil
	payload["step_count"] = 1

	w := doJSON(t, router, http.MethodPost, "/api/v1/pricing/option/price", payload)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
}

func TestBatchPriceOptionsEndpoint(t *testing.T) {
	router := newTestRouter(&memoryRepository{})

	bad := pricingPayload()
	bad["symbol"] = "BAD"
	bad["contract"].(map[string]any)["volatility"] = 3.0

	w := doJSON(t, router, http.MethodPost, "/api/v1/pricing/option/price/batch", map[string]any{
		"batch_id":  "batch-http-1",
		"contracts": []map[string]any{pricingPayload(), bad},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Data struct {
			BatchID      string `json:"batch_id"`
			SuccessCount int    `json:"success_count"`
			FailureCount int    `json:"failure_count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "batch-http-1", body.Data.BatchID)
	assert.Equal(t, 1, body.Data.SuccessCount)
	assert.Equal(t, 1, body.Data.FailureCount)
}

func TestContractSummaryEndpoint(t *testing.T) {
	router := newTestRouter(&memoryRepository{})

	w := doJSON(t, router, http.MethodPost, "/api/v1/pricing/option/contract/summary", pricingPayload())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Data struct {
			Summary string `json:"summary"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Data.Summary, "Contract Specifications")
}

func TestResultEndpoints(t *testing.T) {
	repo := &memoryRepository{}
	router := newTestRouter(repo)

	// 先通过定价接口写入两条结果
	for i := 0; i < 2; i++ {
		payload := pricingPayload()
		payload["step_count"] = 500 + i
		w := doJSON(t, router, http.MethodPost, "/api/v1/pricing/option/price", payload)
		require.Equal(t, http.StatusOK, w.Code)
	}

	t.Run("latest result", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/pricing/option/result/AAPL-C-100", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body struct {
			Data struct {
				Symbol    string `json:"symbol"`
				StepCount int    `json:"step_count"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "AAPL-C-100", body.Data.Symbol)
		assert.Equal(t, 501, body.Data.StepCount)
	})

	t.Run("unknown symbol", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/pricing/option/result/UNKNOWN", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("history with limit", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/pricing/option/history/AAPL-C-100?limit=%d", 1), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Data struct {
				Results []json.RawMessage `json:"results"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Len(t, body.Data.Results, 1)
	})
}
