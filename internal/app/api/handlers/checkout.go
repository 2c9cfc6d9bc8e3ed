package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lightspeedpay/gatewaycore/internal/app/service/checkout"
	"github.com/lightspeedpay/gatewaycore/internal/app/service/payment"
	"github.com/lightspeedpay/gatewaycore/pkg/lightspeed"
)

type checkoutSessionRequest struct {
	TransactionID string `json:"transaction_id" binding:"required"`
}

// @Summary      Create Checkout Session
// @Description  Issues a short-lived session token for the hosted checkout page.
// @Tags         Checkout
// @Accept       json
// @Produce      json
// @Param        X-Client-Key header string true "Client key"
// @Param        X-Client-Salt header string true "Client salt"
// @Param        request body checkoutSessionRequest true "Transaction to open"
// @Success      200  {object}  map[string]string
// @Router       /api/v1/checkout/session [post]
func ApiCreateCheckoutSession(payments *payment.Service, sessions *checkout.Service, w *lightspeed.Wrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		client := authenticateClient(c, payments)
		if client == nil {
			return
		}
		var req checkoutSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, merchantError{Message: "Invalid payment request."})
			return
		}
		// The transaction must belong to the authenticated client.
		if _, err := payments.CheckStatus(c.Request.Context(), client, req.TransactionID); err != nil {
			writeMerchantError(c, w, err)
			return
		}
		token, err := sessions.IssueToken(req.TransactionID)
		if err != nil {
			c.JSON(http.StatusBadRequest, merchantError{Message: "Invalid payment request."})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token":        token,
			"checkout_url": w.GenerateCheckoutURL(req.TransactionID),
		})
	}
}

// @Summary      Checkout Session State
// @Description  Returns the transaction view for the hosted checkout page.
// @Tags         Checkout
// @Produce      json
// @Param        Authorization header string true "Bearer session token"
// @Success      200  {object}  payment.PublicTransactionView
// @Router       /api/v1/checkout/state [get]
func ApiCheckoutState(payments *payment.Service, sessions *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			token = c.Query("token")
		}
		txnID, err := sessions.VerifyToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, merchantError{Message: "Invalid checkout session"})
			return
		}
		view, err := payments.PublicView(c.Request.Context(), txnID)
		if err != nil {
			c.JSON(http.StatusNotFound, merchantError{Message: "Transaction not found"})
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func RegisterCheckoutRoutes(r gin.IRouter, payments *payment.Service, sessions *checkout.Service, w *lightspeed.Wrapper) {
	r.POST("/session", ApiCreateCheckoutSession(payments, sessions, w))
	r.GET("/state", ApiCheckoutState(payments, sessions))
}
