package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lightspeedpay/gatewaycore/internal/app/service/webhook"
	"github.com/lightspeedpay/gatewaycore/pkg/response"
)

// @Summary      Health check
// @Description  Returns service status and webhook queue depth
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /healthz [get]
func Healthz(wh *webhook.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		out := map[string]any{"status": "ok"}
		if depth, err := wh.QueueDepth(c.Request.Context()); err == nil {
			out["webhook_queue_depth"] = depth
		}
		c.JSON(http.StatusOK, response.OKT(out))
	}
}

func RegisterHealthRoutes(r gin.IRouter, wh *webhook.Service) {
	r.GET("/healthz", Healthz(wh))
}
