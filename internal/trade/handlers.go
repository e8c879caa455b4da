package trade

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/ksred/fantaleague-api/internal/roster"
	"github.com/ksred/fantaleague-api/pkg/response"
)

// GinHandlers contains HTTP handlers for trade endpoints
type GinHandlers struct {
	service *Service
}

func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// handleError maps trade sentinel errors onto HTTP responses. Validation
// errors are 400, state races are 409, missing or foreign trades are 404.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrTradeNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, ErrTradingClosed),
		errors.Is(err, ErrSelfTrade),
		errors.Is(err, ErrInvalidPlayerCount),
		errors.Is(err, ErrDuplicatePlayer),
		errors.Is(err, ErrPlayersNotOwned),
		errors.Is(err, ErrRoleImbalance),
		errors.Is(err, ErrSamePlayerCrossDivision),
		errors.Is(err, ErrNegativeCredits):
		response.ValidationFailed(c, err.Error())
	case errors.Is(err, ErrPlayersUnavailable),
		errors.Is(err, ErrNotPending),
		errors.Is(err, ErrNotAccepted),
		errors.Is(err, ErrNotCancellable),
		errors.Is(err, ErrAlreadyProcessed):
		response.Conflict(c, err.Error())
	default:
		response.Handle(c, nil, err)
	}
}

// ProposeTradeHandler handles POST requests creating a new trade proposal
func (h *GinHandlers) ProposeTradeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID := c.GetString("teamID")
		if teamID == "" {
			response.Unauthorized(c, "Missing team identity")
			return
		}

		var request ProposeRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		trade, err := h.service.ProposeTrade(teamID, request)
		if errors.Is(err, roster.ErrInsufficientCredits) {
			response.ValidationFailed(c, err.Error())
			return
		}
		if err != nil {
			handleError(c, err)
			return
		}

		response.Success(c, trade)
	}
}

// GetTradeHandler handles GET requests for a single trade
func (h *GinHandlers) GetTradeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID := c.GetString("teamID")
		if teamID == "" {
			response.Unauthorized(c, "Missing team identity")
			return
		}

		trade, err := h.service.GetTradeForTeam(teamID, c.Param("trade_id"))
		if err != nil {
			handleError(c, err)
			return
		}
		response.Success(c, trade)
	}
}

// ListTradesHandler handles GET requests for the caller's trades.
// Query parameters: status, type=incoming|outgoing|all
func (h *GinHandlers) ListTradesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID := c.GetString("teamID")
		if teamID == "" {
			response.Unauthorized(c, "Missing team identity")
			return
		}

		trades, err := h.service.ListTrades(teamID, c.Query("status"), c.Query("type"))
		if err != nil {
			handleError(c, err)
			return
		}
		response.Success(c, gin.H{"trades": trades, "count": len(trades)})
	}
}

// RespondTradeHandler handles POST requests from the recipient accepting
// or rejecting a pending trade
func (h *GinHandlers) RespondTradeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID := c.GetString("teamID")
		if teamID == "" {
			response.Unauthorized(c, "Missing team identity")
			return
		}

		var request struct {
			Action string `json:"action" binding:"required,oneof=accept reject"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		trade, err := h.service.RespondToTrade(teamID, c.Param("trade_id"), request.Action == "accept")
		if errors.Is(err, roster.ErrInsufficientCredits) {
			response.Conflict(c, err.Error())
			return
		}
		if err != nil {
			handleError(c, err)
			return
		}

		response.Success(c, trade)
	}
}

// CancelTradeHandler handles DELETE requests from the proposer withdrawing
// a trade
func (h *GinHandlers) CancelTradeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID := c.GetString("teamID")
		if teamID == "" {
			response.Unauthorized(c, "Missing team identity")
			return
		}

		if err := h.service.CancelTrade(teamID, c.Param("trade_id")); err != nil {
			handleError(c, err)
			return
		}
		response.Success(c, gin.H{"message": "trade cancelled"})
	}
}

// AdminListTradesHandler handles GET requests for all trades (admin)
func (h *GinHandlers) AdminListTradesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		trades, counts, err := h.service.AdminListTrades(c.Query("status"))
		if err != nil {
			handleError(c, err)
			return
		}
		response.Success(c, gin.H{"trades": trades, "counts": counts})
	}
}

// AdminGetTradeHandler handles GET requests for any single trade (admin)
func (h *GinHandlers) AdminGetTradeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		trade, err := h.service.AdminGetTrade(c.Param("trade_id"))
		if err != nil {
			handleError(c, err)
			return
		}
		response.Success(c, trade)
	}
}

// AdminDecideHandler handles POST requests resolving an accepted trade
// (admin). Approval applies the exchange; rejection records the reason.
func (h *GinHandlers) AdminDecideHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Action string `json:"action" binding:"required,oneof=approve reject"`
			Reason string `json:"reason"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		trade, err := h.service.AdminDecide(c.Param("trade_id"), request.Action == "approve", request.Reason)
		if errors.Is(err, roster.ErrInsufficientCredits) {
			response.Conflict(c, err.Error())
			return
		}
		if err != nil {
			handleError(c, err)
			return
		}

		response.Success(c, trade)
	}
}
