package handler

import (
	"io"
	"time"

	"lnledger/internal/adapter/http/dto"
	"lnledger/internal/adapter/http/middleware"
	"lnledger/internal/core/domain"
	"lnledger/internal/core/ports"
	"lnledger/pkg/apperror"
	"lnledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// heartbeatInterval keeps idle SSE connections from being reaped by
// intermediaries.
const heartbeatInterval = 25 * time.Second

// UserHandler handles the authenticated per-user endpoints.
type UserHandler struct {
	paymentSvc ports.PaymentService
	bus        ports.EventBus
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(paymentSvc ports.PaymentService, bus ports.EventBus) *UserHandler {
	return &UserHandler{paymentSvc: paymentSvc, bus: bus}
}

// contextUsername returns the account name stored by the auth middleware.
func contextUsername(c *gin.Context) (string, bool) {
	v, ok := c.Get(middleware.CtxUsername)
	if !ok {
		return "", false
	}
	username, ok := v.(string)
	return username, ok
}

// GetBalance handles GET /api/v1/user/balance.
func (h *UserHandler) GetBalance(c *gin.Context) {
	username, ok := contextUsername(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	balance, err := h.paymentSvc.Balance(c.Request.Context(), username)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{BalanceMsat: balance})
}

// ListPayments handles GET /api/v1/user/payments.
func (h *UserHandler) ListPayments(c *gin.Context) {
	username, ok := contextUsername(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	payments, err := h.paymentSvc.Payments(c.Request.Context(), username)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, dto.FromPayment(p))
	}
	response.OK(c, out)
}

// CreateInvoice handles POST /api/v1/user/invoices.
func (h *UserHandler) CreateInvoice(c *gin.Context) {
	username, ok := contextUsername(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	invoice, err := h.paymentSvc.CreateInvoice(c.Request.Context(), username, req.AmountMsat, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.InvoiceResponse{
		Bolt11:      invoice.Bolt11,
		PaymentHash: invoice.PaymentHash,
		AmountMsat:  invoice.AmountMsat,
		ExpiresAt:   invoice.ExpiresAt.Unix(),
	})
}

// Pay handles POST /api/v1/user/pay. Acceptance means the payment was
// admitted, not that it settled; the outcome arrives on the event stream.
func (h *UserHandler) Pay(c *gin.Context) {
	username, ok := contextUsername(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if err := h.paymentSvc.SubmitPayment(c.Request.Context(), username, req.Bolt11, req.LnAddress); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"accepted": true})
}

// Quote handles POST /api/v1/user/quote.
func (h *UserHandler) Quote(c *gin.Context) {
	if _, ok := contextUsername(c); !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	quote, err := h.paymentSvc.Quote(c.Request.Context(), req.Bolt11)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.QuoteResponse{
		PaymentHash: quote.PaymentHash,
		AmountMsat:  quote.AmountMsat,
		FeeMsat:     quote.FeeMsat,
		Description: quote.Description,
		ExpirySecs:  quote.ExpirySecs,
	})
}

// Events handles GET /api/v1/user/events: a server-sent event stream that
// opens with a balance snapshot and the full payment history, then relays
// live events until the client disconnects. The subscription is taken
// before the snapshot so nothing settles unseen in between; the client may
// observe an event both in the snapshot and live, which is harmless.
func (h *UserHandler) Events(c *gin.Context) {
	username, ok := contextUsername(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	events, cancel := h.bus.Subscribe(username)
	defer cancel()

	balance, err := h.paymentSvc.Balance(c.Request.Context(), username)
	if err != nil {
		response.Error(c, err)
		return
	}
	history, err := h.paymentSvc.Payments(c.Request.Context(), username)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent(string(domain.EventKindBalance), domain.Balance{Msat: balance})
	for _, p := range history {
		c.SSEvent(string(domain.EventKindPayment), dto.FromPayment(p))
	}
	c.Writer.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, open := <-events:
			if !open {
				return false
			}
			h.writeEvent(c, ev)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *UserHandler) writeEvent(c *gin.Context, ev domain.AppEvent) {
	switch ev.Kind {
	case domain.EventKindBalance:
		c.SSEvent(string(ev.Kind), ev.Balance)
	case domain.EventKindPayment:
		c.SSEvent(string(ev.Kind), dto.FromPayment(*ev.Payment))
	case domain.EventKindNotification:
		c.SSEvent(string(ev.Kind), ev.Notification)
	}
}
