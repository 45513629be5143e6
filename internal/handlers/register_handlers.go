package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/metrics"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/middleware"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/utils"
	"github.com/samuelmanoizy/intuipay-dashboard/pkg/config"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	portssvc "github.com/samuelmanoizy/intuipay-dashboard/internal/core/ports/services"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// through service interfaces.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	walletService portssvc.WalletSvcFacade,
	settlementService portssvc.SettlementSvcFacade,
	posthogClient *utils.PosthogClientWrapper,
) {
	r.Use(cors.Default())

	r.GET("/health", GetHome)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// The gateway pushes collection outcomes here; unauthenticated but
	// rate limited.
	webhookLimiter := limiter.New(memory.NewStore(), limiter.Rate{
		Period: time.Minute,
		Limit:  cfg.WebhookRateLimit,
	})
	webhooks := r.Group("/webhooks", middleware.RateLimit(webhookLimiter))
	RegisterWebhookRoutes(webhooks, settlementService)

	// Authenticated API: the JWT subject is the verified user identifier.
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret), middleware.PosthogMiddleware(posthogClient))
	RegisterWalletRoutes(v1, walletService, cfg.Currency)
}
