package handler

import (
	"lnledger/internal/core/ports"
	"lnledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// RateHandler serves the fiat reference rates.
type RateHandler struct {
	rateSvc ports.RateService
}

// NewRateHandler creates a new RateHandler.
func NewRateHandler(rateSvc ports.RateService) *RateHandler {
	return &RateHandler{rateSvc: rateSvc}
}

// GetRates handles GET /api/v1/rates. Rates are currency units per BTC.
func (h *RateHandler) GetRates(c *gin.Context) {
	rates, err := h.rateSvc.Rates(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rates)
}
