package main

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/saityagci/newBackendFrontend-sub001/internal/calllog"
	"github.com/saityagci/newBackendFrontend-sub001/internal/config"
	"github.com/saityagci/newBackendFrontend-sub001/internal/httpapi"
	"github.com/saityagci/newBackendFrontend-sub001/internal/rbac"
	"github.com/saityagci/newBackendFrontend-sub001/internal/webhook"
	"github.com/saityagci/newBackendFrontend-sub001/pkg/utils"

	"github.com/gin-gonic/gin"
)

type routeDeps struct {
	cfg       config.Config
	authMW    gin.HandlerFunc
	db        *sql.DB
	callStore calllog.Repository
	handlers  httpapi.Handlers
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, deps routeDeps) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), deps.db, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Provider webhooks (public paths; authenticity comes from the HMAC
	// signature, verified per delivery).
	{
		vapi := webhook.Handler{
			Provider:        calllog.ProviderVapi,
			Verifier:        webhook.NewVerifier(deps.cfg.Vapi.WebhookSecret),
			Store:           deps.callStore,
			SignatureHeader: "X-Vapi-Signature",
		}
		r.POST("/webhooks/vapi", vapi.HandleDelivery)

		el := webhook.Handler{
			Provider:        calllog.ProviderElevenLabs,
			Verifier:        webhook.NewVerifier(deps.cfg.ElevenLabs.WebhookSecret),
			Store:           deps.callStore,
			SignatureHeader: "Elevenlabs-Signature",
		}
		r.POST("/webhooks/elevenlabs", el.HandleDelivery)
	}

	// Token issuance stays outside the auth middleware.
	r.POST("/v1/auth/login", deps.handlers.Login)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(deps.authMW)
	{
		calls := v1.Group("/call-logs")
		calls.Use(rbac.RequireClient())
		{
			calls.GET("", deps.handlers.ListCallLogs)
			calls.GET("/:id", deps.handlers.GetCallLog)
		}

		// Manual sync triggers are admin-only; the scheduler covers the
		// steady state.
		syncGroup := v1.Group("/sync")
		syncGroup.Use(rbac.RequireClient())
		syncGroup.Use(rbac.RequireAnyRole(rbac.RoleAdmin))
		{
			syncGroup.POST("/elevenlabs", deps.handlers.TriggerSync)
			syncGroup.POST("/elevenlabs/agents", deps.handlers.TriggerAgentSync)
		}
	}
}
