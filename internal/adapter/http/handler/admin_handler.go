package handler

import (
	"time"

	"lnledger/internal/adapter/http/dto"
	"lnledger/internal/core/ports"
	"lnledger/pkg/apperror"
	"lnledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles operator endpoints: ledger administration plus the
// node pass-throughs. All routes sit behind the static admin token.
type AdminHandler struct {
	adminSvc ports.AdminService
	node     ports.LightningNode
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminSvc ports.AdminService, node ports.LightningNode) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc, node: node}
}

// CreditUser handles POST /api/v1/admin/users/credit.
func (h *AdminHandler) CreditUser(c *gin.Context) {
	var req dto.CreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if err := h.adminSvc.CreditUser(c.Request.Context(), req.Username, req.AmountMsat); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"credited": true})
}

// ListUsers handles GET /api/v1/admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.adminSvc.ListUsers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.UserInfoResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.UserInfoResponse{
			Username:    u.Username,
			BalanceMsat: u.BalanceMsat,
			CreatedAt:   u.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	response.OK(c, out)
}

// NodeID handles GET /api/v1/admin/node/id.
func (h *AdminHandler) NodeID(c *gin.Context) {
	nodeID, err := h.node.NodeID(c.Request.Context())
	if err != nil {
		response.Error(c, apperror.ErrNodeUnavailable(err))
		return
	}
	response.OK(c, gin.H{"node_id": nodeID})
}

// NodeBalances handles GET /api/v1/admin/node/balances.
func (h *AdminHandler) NodeBalances(c *gin.Context) {
	balances, err := h.node.Balances(c.Request.Context())
	if err != nil {
		response.Error(c, apperror.ErrNodeUnavailable(err))
		return
	}
	response.OK(c, balances)
}

// NewAddress handles POST /api/v1/admin/node/address.
func (h *AdminHandler) NewAddress(c *gin.Context) {
	address, err := h.node.NewAddress(c.Request.Context())
	if err != nil {
		response.Error(c, apperror.ErrNodeUnavailable(err))
		return
	}
	response.OK(c, gin.H{"address": address})
}

// SendOnchain handles POST /api/v1/admin/node/onchain/send.
func (h *AdminHandler) SendOnchain(c *gin.Context) {
	var req dto.SendOnchainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if err := h.node.SendOnchain(c.Request.Context(), req.Address, req.AmountSats, req.FeeRateSatVB); err != nil {
		response.Error(c, apperror.ErrNodeUnavailable(err))
		return
	}
	response.OK(c, gin.H{"sent": true})
}

// ListChannels handles GET /api/v1/admin/node/channels.
func (h *AdminHandler) ListChannels(c *gin.Context) {
	channels, err := h.node.ListChannels(c.Request.Context())
	if err != nil {
		response.Error(c, apperror.ErrNodeUnavailable(err))
		return
	}
	response.OK(c, channels)
}

// OpenChannel handles POST /api/v1/admin/node/channels/open.
func (h *AdminHandler) OpenChannel(c *gin.Context) {
	var req dto.OpenChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	channelID, err := h.node.OpenChannel(c.Request.Context(), ports.OpenChannelParams{
		NodeID:                 req.NodeID,
		Address:                req.Address,
		ChannelAmountSats:      req.ChannelAmountSats,
		PushToCounterpartyMsat: req.PushToCounterpartyMsat,
	})
	if err != nil {
		response.Error(c, apperror.ErrNodeUnavailable(err))
		return
	}
	response.Created(c, gin.H{"channel_id": channelID})
}

// CloseChannel handles POST /api/v1/admin/node/channels/close.
func (h *AdminHandler) CloseChannel(c *gin.Context) {
	var req dto.CloseChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if err := h.node.CloseChannel(c.Request.Context(), req.ChannelID, req.CounterpartyNodeID, req.Force); err != nil {
		response.Error(c, apperror.ErrNodeUnavailable(err))
		return
	}
	response.OK(c, gin.H{"closed": true})
}

// ListPeers handles GET /api/v1/admin/node/peers.
func (h *AdminHandler) ListPeers(c *gin.Context) {
	peers, err := h.node.ListPeers(c.Request.Context())
	if err != nil {
		response.Error(c, apperror.ErrNodeUnavailable(err))
		return
	}
	response.OK(c, peers)
}

// ConnectPeer handles POST /api/v1/admin/node/peers/connect.
func (h *AdminHandler) ConnectPeer(c *gin.Context) {
	var req dto.ConnectPeerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if err := h.node.ConnectPeer(c.Request.Context(), req.NodeID, req.Address, req.Persist); err != nil {
		response.Error(c, apperror.ErrNodeUnavailable(err))
		return
	}
	response.OK(c, gin.H{"connected": true})
}

// DisconnectPeer handles POST /api/v1/admin/node/peers/disconnect.
func (h *AdminHandler) DisconnectPeer(c *gin.Context) {
	var req dto.DisconnectPeerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if err := h.node.DisconnectPeer(c.Request.Context(), req.NodeID); err != nil {
		response.Error(c, apperror.ErrNodeUnavailable(err))
		return
	}
	response.OK(c, gin.H{"disconnected": true})
}
