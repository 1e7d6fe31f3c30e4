package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"lnledger/config"
	"lnledger/internal/adapter/http/dto"
	"lnledger/internal/core/ports"
	"lnledger/pkg/apperror"
	"lnledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// LnurlHandler serves Lightning Address discovery and invoice issuance
// (LUD-06/LUD-16). Callback errors use the LNURL envelope with HTTP 200,
// as LNURL wallets do not inspect status codes.
type LnurlHandler struct {
	userRepo   ports.UserRepository
	paymentSvc ports.PaymentService
	server     config.ServerConfig
	limits     config.LimitsConfig
}

// NewLnurlHandler creates a new LnurlHandler.
func NewLnurlHandler(userRepo ports.UserRepository, paymentSvc ports.PaymentService, server config.ServerConfig, limits config.LimitsConfig) *LnurlHandler {
	return &LnurlHandler{userRepo: userRepo, paymentSvc: paymentSvc, server: server, limits: limits}
}

// PayInfo handles GET /.well-known/lnurlp/:username.
func (h *LnurlHandler) PayInfo(c *gin.Context) {
	username := c.Param("username")

	user, err := h.userRepo.GetByUsername(c.Request.Context(), username)
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}
	if user == nil {
		response.Error(c, apperror.ErrUserNotFound())
		return
	}

	callback, err := url.JoinPath(h.server.PublicBaseURL, "lnurlp", "callback", username)
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}

	c.JSON(http.StatusOK, dto.LnurlPayInfoResponse{
		Tag:         "payRequest",
		Callback:    callback,
		MinSendable: h.limits.MinAmountMsat(),
		MaxSendable: h.limits.MaxAmountMsat(),
		Metadata:    fmt.Sprintf(`[["text/plain", "Payment to %s"]]`, username),
	})
}

// PayCallback handles GET /lnurlp/callback/:username?amount=<msat>&comment=.
func (h *LnurlHandler) PayCallback(c *gin.Context) {
	username := c.Param("username")

	amountMsat, err := strconv.ParseInt(c.Query("amount"), 10, 64)
	if err != nil || amountMsat <= 0 {
		lnurlError(c, "Invalid amount")
		return
	}
	comment := c.Query("comment")

	user, repoErr := h.userRepo.GetByUsername(c.Request.Context(), username)
	if repoErr != nil {
		response.Error(c, apperror.InternalError(repoErr))
		return
	}
	if user == nil {
		lnurlError(c, "User not found")
		return
	}

	invoice, err := h.paymentSvc.CreateInvoice(c.Request.Context(), username, amountMsat, comment)
	if err != nil {
		lnurlError(c, lnurlReason(err))
		return
	}

	c.JSON(http.StatusOK, dto.LnurlCallbackSuccess{Pr: invoice.Bolt11})
}

func lnurlError(c *gin.Context, reason string) {
	c.JSON(http.StatusOK, dto.LnurlCallbackError{Status: "ERROR", Reason: reason})
}

// lnurlReason maps an issuance failure to a wallet-displayable reason
// without leaking internal error text.
func lnurlReason(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus < http.StatusInternalServerError {
		return appErr.Message
	}
	return "Unable to generate invoice"
}
