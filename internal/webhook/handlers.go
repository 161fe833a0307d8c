package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saityagci/newBackendFrontend-sub001/internal/calllog"
	"github.com/saityagci/newBackendFrontend-sub001/internal/payload"
	"github.com/saityagci/newBackendFrontend-sub001/pkg/logger"
)

// maxBodyBytes caps webhook bodies; vendor payloads with full transcripts
// stay well under this.
const maxBodyBytes = 1 << 20

// Store is the narrow persistence surface the ingest path needs.
type Store interface {
	FindByProviderAndExternalCallID(ctx context.Context, provider calllog.Provider, externalCallID string) (calllog.CallRecord, bool, error)
	Upsert(ctx context.Context, rec calllog.CallRecord) (calllog.CallRecord, error)
}

// Handler ingests one provider's webhook deliveries: verify the signature,
// normalize the payload, upsert by natural key. Redelivered and duplicate
// deliveries are safe because the upsert converges on the same row.
type Handler struct {
	Provider calllog.Provider
	Verifier *Verifier
	Store    Store

	// SignatureHeader names the header carrying the HMAC, e.g.
	// "X-Vapi-Signature" or "Elevenlabs-Signature".
	SignatureHeader string
}

func (h Handler) HandleDelivery(c *gin.Context) {
	log := logger.FromGin(c)

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	if err := h.Verifier.Verify(body, c.GetHeader(h.SignatureHeader)); err != nil {
		log.Warn("webhook rejected", "provider", h.Provider, "err", err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	rec, err := payload.Normalize(h.Provider, body)
	if err != nil {
		if errors.Is(err, payload.ErrNoCallID) {
			log.Warn("webhook payload unusable", "provider", h.Provider, "err", err)
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "no resolvable call id"})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	ctx := c.Request.Context()
	if existing, found, err := h.Store.FindByProviderAndExternalCallID(ctx, h.Provider, rec.ExternalCallID); err == nil && found {
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
	}

	saved, err := h.Store.Upsert(ctx, rec)
	if err != nil {
		log.Error("webhook persist failed", "provider", h.Provider, "external_call_id", rec.ExternalCallID, "err", err)
		// 5xx so the vendor redelivers; the upsert makes redelivery safe.
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "persist failed"})
		return
	}

	log.Info("webhook ingested", "provider", h.Provider, "external_call_id", saved.ExternalCallID)
	c.JSON(http.StatusOK, gin.H{"id": saved.ID, "external_call_id": saved.ExternalCallID})
}
