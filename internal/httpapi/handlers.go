package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/saityagci/newBackendFrontend-sub001/internal/agents"
	"github.com/saityagci/newBackendFrontend-sub001/internal/auth"
	"github.com/saityagci/newBackendFrontend-sub001/internal/calllog"
	"github.com/saityagci/newBackendFrontend-sub001/internal/callsync"
	"github.com/saityagci/newBackendFrontend-sub001/internal/rbac"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth      *auth.Manager
	Calls     *calllog.Service
	RunSync   callsync.Runner
	AgentSync func(ctx context.Context) (agents.Result, error)
}

// --- Auth ---

type loginRequest struct {
	UserID   string `json:"user_id"`
	ClientID string `json:"client_id"`
	Role     string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.ClientID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, client_id, role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.ClientID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Call logs ---

func (h Handlers) ListCallLogs(c *gin.Context) {
	if h.Calls == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call store not configured"})
		return
	}
	filter := calllog.ListFilter{
		Provider:            calllog.Provider(c.Query("provider")),
		ExternalAssistantID: c.Query("agent_id"),
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		filter.Limit = n
	}
	recs, err := h.Calls.List(c.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, calllog.ErrInvalidArgument) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown provider"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	if recs == nil {
		recs = []calllog.CallRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"call_logs": recs, "count": len(recs)})
}

func (h Handlers) GetCallLog(c *gin.Context) {
	if h.Calls == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call store not configured"})
		return
	}
	rec, err := h.Calls.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, calllog.ErrInvalidArgument):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "id required"})
		case errors.Is(err, calllog.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call log not found"})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		}
		return
	}
	c.JSON(http.StatusOK, rec)
}

// --- Sync ---

// TriggerSync runs a provider sync pass inline and returns its summary.
// RBAC: admin only; wired in routes.
func (h Handlers) TriggerSync(c *gin.Context) {
	if h.RunSync == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "sync not configured"})
		return
	}
	summary, err := h.RunSync(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "sync failed: upstream fetch error"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// TriggerAgentSync refreshes the local assistant catalog from the provider.
func (h Handlers) TriggerAgentSync(c *gin.Context) {
	if h.AgentSync == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "agent sync not configured"})
		return
	}
	res, err := h.AgentSync(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "agent sync failed: upstream fetch error"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// Convenience middleware bundles.

func RequireClientAndAnyRole(roles ...string) []gin.HandlerFunc {
	return []gin.HandlerFunc{rbac.RequireClient(), rbac.RequireAnyRole(roles...)}
}
