package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lightspeedpay/gatewaycore/internal/app/service/webhook"
	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

const maxCallbackBody = 1 << 20

// @Summary      Provider Callback
// @Description  Receives a payment provider webhook, verifies its signature and queues it for processing.
// @Tags         Callback
// @Accept       json
// @Produce      json
// @Param        provider path string true "Provider name"
// @Success      200  {object}  map[string]string
// @Router       /api/v1/callback/{provider} [post]
func ApiProviderCallback(svc *webhook.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := types.Provider(c.Param("provider"))
		payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCallbackBody))
		if err != nil || len(payload) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "empty or unreadable payload"})
			return
		}

		traceID := c.GetString("traceID")
		err = svc.Ingest(c.Request.Context(), provider, payload, c.Request.Header, c.ClientIP(), traceID)
		if err != nil {
			switch {
			case errors.Is(err, webhook.ErrUnsupportedProvider):
				c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported provider"})
			case errors.Is(err, webhook.ErrVerificationFailed):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "signature verification failed"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "callback processing unavailable"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "queued"})
	}
}

func RegisterCallbackRoutes(r gin.IRouter, svc *webhook.Service) {
	r.POST("/:provider", ApiProviderCallback(svc))
}
