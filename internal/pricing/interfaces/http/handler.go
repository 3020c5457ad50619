// 包 http 定价服务 HTTP 处理器
package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wyfcoding/optionpricing/internal/pricing/application"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/pkg/logger"
	"github.com/wyfcoding/optionpricing/pkg/metrics"
	"github.com/wyfcoding/optionpricing/pkg/response"
)

// PricingHandler HTTP 处理器
// 负责处理与定价相关的 HTTP 请求
type PricingHandler struct {
	cmd     *application.PricingCommandService
	query   *application.PricingQueryService
	metrics *metrics.Metrics
}

// NewPricingHandler 创建 HTTP 处理器实例
func NewPricingHandler(cmd *application.PricingCommandService, query *application.PricingQueryService, m *metrics.Metrics) *PricingHandler {
	return &PricingHandler{cmd: cmd, query: query, metrics: m}
}

// RegisterRoutes 注册路由
func (h *PricingHandler) RegisterRoutes(router gin.IRouter) {
	api := router.Group("/api/v1/pricing")
	{
		api.POST("/option/price", h.PriceOption)
		api.POST("/option/price/batch", h.BatchPriceOptions)
		api.POST("/option/contract/summary", h.ContractSummary)
		api.GET("/option/result/:symbol", h.GetLatestResult)
		api.GET("/option/history/:symbol", h.GetResultHistory)
	}
}

// DividendRequest 股息请求体
type DividendRequest struct {
	Amount  float64 `json:"amount" binding:"required"`
	PayTime float64 `json:"pay_time" binding:"required"`
}

// OptionContractRequest 期权合约请求体
type OptionContractRequest struct {
	Type         string            `json:"type" binding:"required"`
	Spot         float64           `json:"spot" binding:"required"`
	Strike       float64           `json:"strike" binding:"required"`
	Maturity     float64           `json:"maturity" binding:"required"`
	Volatility   float64           `json:"volatility" binding:"required"`
	RiskFreeRate float64           `json:"risk_free_rate"`
	Dividends    []DividendRequest `json:"dividends"`
}

// PricingRequest 定价请求体
type PricingRequest struct {
	Symbol       string                `json:"symbol" binding:"required"`
	Contract     OptionContractRequest `json:"contract" binding:"required"`
	StepCount    int                   `json:"step_count"`
	PricingModel string                `json:"pricing_model"`
}

// BatchPricingRequest 批量定价请求体
type BatchPricingRequest struct {
	BatchID   string           `json:"batch_id"`
	Contracts []PricingRequest `json:"contracts" binding:"required"`
}

// PriceOption 期权定价
func (h *PricingHandler) PriceOption(c *gin.Context) {
	var req PricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	cmd := toCommand(req)
	start := time.Now()
	result, err := h.cmd.PriceOption(c.Request.Context(), cmd)
	h.observe(cmd, time.Since(start), err)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to price option", "symbol", req.Symbol, "error", err)
		response.ErrorWithStatus(c, statusFor(err), err.Error())
		return
	}

	response.Success(c, gin.H{
		"symbol":           result.Symbol,
		"price":            result.OptionPrice,
		"step_count":       result.StepCount,
		"pricing_model":    result.PricingModel,
		"calculation_time": time.Now(),
	})
}

// BatchPriceOptions 批量定价
func (h *PricingHandler) BatchPriceOptions(c *gin.Context) {
	var req BatchPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.BatchID == "" {
		req.BatchID = uuid.New().String()
	}

	contracts := make([]application.PriceOptionCommand, 0, len(req.Contracts))
	for _, r := range req.Contracts {
		contracts = append(contracts, toCommand(r))
	}

	result, err := h.cmd.BatchPriceOptions(c.Request.Context(), application.BatchPriceOptionsCommand{
		BatchID:   req.BatchID,
		Contracts: contracts,
	})
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to price option batch", "batch_id", req.BatchID, "error", err)
		response.ErrorWithStatus(c, statusFor(err), err.Error())
		return
	}

	response.Success(c, gin.H{
		"batch_id":      result.BatchID,
		"success_count": result.SuccessCount,
		"failure_count": result.FailureCount,
		"average_time":  result.AverageTime,
		"results":       result.Results,
	})
}

// ContractSummary 合约条款摘要
func (h *PricingHandler) ContractSummary(c *gin.Context) {
	var req PricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.query.DescribeContract(c.Request.Context(), toCommand(req))
	if err != nil {
		response.ErrorWithStatus(c, statusFor(err), err.Error())
		return
	}
	response.Success(c, gin.H{"summary": summary})
}

// GetLatestResult 获取最新定价结果
func (h *PricingHandler) GetLatestResult(c *gin.Context) {
	symbol := c.Param("symbol")
	result, err := h.query.GetLatestResult(c.Request.Context(), symbol)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to load pricing result", "symbol", symbol, "error", err)
		response.ErrorWithStatus(c, statusFor(err), err.Error())
		return
	}
	if result == nil {
		response.ErrorWithStatus(c, http.StatusNotFound, "no pricing result for symbol")
		return
	}
	response.Success(c, result)
}

// GetResultHistory 获取历史定价结果
func (h *PricingHandler) GetResultHistory(c *gin.Context) {
	symbol := c.Param("symbol")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	results, err := h.query.GetResultHistory(c.Request.Context(), symbol, limit)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to load pricing history", "symbol", symbol, "error", err)
		response.ErrorWithStatus(c, statusFor(err), err.Error())
		return
	}
	response.Success(c, gin.H{"symbol": symbol, "results": results})
}

// observe 记录定价业务指标
func (h *PricingHandler) observe(cmd application.PriceOptionCommand, elapsed time.Duration, err error) {
	if h.metrics == nil {
		return
	}
	model := cmd.PricingModel
	if model == "" {
		model = application.ModelBinomialTree
	}
	h.metrics.PricingRequestsTotal.WithLabelValues(model).Inc()
	h.metrics.PricingDuration.Observe(elapsed.Seconds())
	if cmd.StepCount > 0 {
		h.metrics.LatticeSteps.Observe(float64(cmd.StepCount))
	}
	if err != nil {
		h.metrics.PricingFailuresTotal.WithLabelValues(model, codeFor(err)).Inc()
	}
}

func toCommand(req PricingRequest) application.PriceOptionCommand {
	dividends := make([]application.DividendInput, 0, len(req.Contract.Dividends))
	for _, d := range req.Contract.Dividends {
		dividends = append(dividends, application.DividendInput{Amount: d.Amount, PayTime: d.PayTime})
	}
	return application.PriceOptionCommand{
		Symbol:       req.Symbol,
		OptionType:   req.Contract.Type,
		Spot:         req.Contract.Spot,
		Strike:       req.Contract.Strike,
		Maturity:     req.Contract.Maturity,
		Volatility:   req.Contract.Volatility,
		RiskFreeRate: req.Contract.RiskFreeRate,
		Dividends:    dividends,
		StepCount:    req.StepCount,
		PricingModel: req.PricingModel,
	}
}

// statusFor 将领域错误映射为 HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDegenerateModel), errors.Is(err, domain.ErrNumericOverflow):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func codeFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidParameter):
		return "invalid_parameter"
	case errors.Is(err, domain.ErrDegenerateModel):
		return "degenerate_model"
	case errors.Is(err, domain.ErrNumericOverflow):
		return "numeric_overflow"
	default:
		return "internal"
	}
}
