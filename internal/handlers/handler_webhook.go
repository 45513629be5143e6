package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	portssvc "github.com/samuelmanoizy/intuipay-dashboard/internal/core/ports/services"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/dto"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/middleware"
)

// webhookHandler receives the gateway's out-of-band collection notifications.
// This replaces any client-side COMPLETE/FAILED listeners: the endpoint is
// durable, so an outcome lands in the ledger even if the paying client's
// session is long gone.
type webhookHandler struct {
	settlementService portssvc.SettlementSvcFacade
}

func newWebhookHandler(ss portssvc.SettlementSvcFacade) *webhookHandler {
	return &webhookHandler{settlementService: ss}
}

// RegisterWebhookRoutes registers the public gateway callback route.
func RegisterWebhookRoutes(rg *gin.RouterGroup, settlementService portssvc.SettlementSvcFacade) {
	h := newWebhookHandler(settlementService)
	rg.POST("/intasend", h.handleCollectionEvent)
}

// handleCollectionEvent godoc
// @Summary IntaSend collection webhook
// @Description Accepts checkout outcome notifications and settles the matching pending deposit
// @Tags webhooks
// @Accept  json
// @Produce  json
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "Undecodable payload"
// @Failure 500 {object} map[string]string "Intake failed, provider should retry"
// @Router /webhooks/intasend [post]
func (h *webhookHandler) handleCollectionEvent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var payload dto.CollectionWebhook
	if err := c.ShouldBindJSON(&payload); err != nil {
		logger.Warn("Failed to decode collection webhook", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	correlation := payload.Correlation()
	amount := payload.EffectiveAmount()
	state := strings.ToUpper(payload.EffectiveState())
	logger = logger.With(slog.String("correlation", correlation), slog.String("state", state))

	var err error
	switch state {
	case "COMPLETE", "COMPLETED", "SUCCESS", "SUCCESSFUL", "PAID":
		err = h.settlementService.HandleCollectionComplete(c.Request.Context(), correlation, amount)
	case "FAILED", "FAILURE", "CANCELLED", "CANCELED":
		err = h.settlementService.HandleCollectionFailed(c.Request.Context(), correlation, amount)
	default:
		// Intermediate or unknown states are acknowledged and ignored.
		logger.Debug("Ignoring collection event state")
	}
	if err != nil {
		logger.Error("Collection intake failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Intake failed"})
		return
	}

	resp := gin.H{"received": true}
	if payload.Challenge != "" {
		// The provider's webhook registration handshake expects its challenge
		// echoed back.
		resp["challenge"] = payload.Challenge
	}
	c.JSON(http.StatusOK, resp)
}
