package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lightspeedpay/gatewaycore/internal/app/service/payment"
	"github.com/lightspeedpay/gatewaycore/internal/app/service/selector"
	"github.com/lightspeedpay/gatewaycore/internal/models"
	"github.com/lightspeedpay/gatewaycore/pkg/lightspeed"
	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

// merchantError is the flat error shape for the merchant API. Message is
// always from the sanitized generic set.
type merchantError struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// authenticateClient resolves the X-Client-Key/X-Client-Salt header pair.
// On failure it writes the 401 itself and returns nil.
func authenticateClient(c *gin.Context, svc *payment.Service) *models.ClientAccount {
	client, err := svc.Authenticate(
		c.Request.Context(),
		c.GetHeader("X-Client-Key"),
		c.GetHeader("X-Client-Salt"),
	)
	if err != nil {
		c.JSON(http.StatusUnauthorized, merchantError{Message: "Invalid client credentials"})
		return nil
	}
	return client
}

func writeMerchantError(c *gin.Context, w *lightspeed.Wrapper, err error) {
	switch {
	case errors.Is(err, payment.ErrAccountSuspended):
		c.JSON(http.StatusForbidden, merchantError{Message: w.SanitizeMessage("suspended")})
	case errors.Is(err, payment.ErrDuplicateOrder):
		c.JSON(http.StatusConflict, merchantError{Message: "Order id already used"})
	case errors.Is(err, payment.ErrValidation):
		c.JSON(http.StatusBadRequest, merchantError{Message: w.SanitizeMessage(err.Error())})
	case errors.Is(err, payment.ErrTransactionNotFound):
		c.JSON(http.StatusNotFound, merchantError{Message: "Transaction not found"})
	case errors.Is(err, selector.ErrNoGatewayAvailable):
		c.JSON(http.StatusServiceUnavailable, merchantError{Message: w.SanitizeMessage("unavailable")})
	default:
		c.JSON(http.StatusInternalServerError, merchantError{Message: w.SanitizeMessage("internal")})
	}
}

type initiatePaymentRequest struct {
	OrderID       string `json:"order_id" binding:"required"`
	Amount        int64  `json:"amount" binding:"required"`
	Currency      string `json:"currency"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	ReturnURL     string `json:"return_url"`
	Description   string `json:"description"`
}

// @Summary      Initiate Payment
// @Description  Creates a payment and returns a branded checkout URL.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        X-Client-Key header string true "Client key"
// @Param        X-Client-Salt header string true "Client salt"
// @Param        request body initiatePaymentRequest true "Payment initiation request"
// @Success      200  {object}  lightspeed.PaymentResponse
// @Router       /api/v1/payment/initiate [post]
func ApiInitiatePayment(svc *payment.Service, w *lightspeed.Wrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		client := authenticateClient(c, svc)
		if client == nil {
			return
		}
		var req initiatePaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, merchantError{Message: "Invalid payment request."})
			return
		}
		resp, err := svc.InitiatePayment(c.Request.Context(), client, &payment.InitiateParams{
			OrderID:  req.OrderID,
			Amount:   req.Amount,
			Currency: req.Currency,
			Customer: types.CustomerInfo{
				Name:  req.CustomerName,
				Email: req.CustomerEmail,
				Phone: req.CustomerPhone,
			},
			ReturnURL:   req.ReturnURL,
			Description: req.Description,
		})
		if err != nil {
			writeMerchantError(c, w, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// @Summary      Payment Status
// @Description  Returns the current status of a transaction.
// @Tags         Payment
// @Produce      json
// @Param        X-Client-Key header string true "Client key"
// @Param        X-Client-Salt header string true "Client salt"
// @Param        transaction_id path string true "Transaction id"
// @Success      200  {object}  lightspeed.PaymentResponse
// @Router       /api/v1/payment/status/{transaction_id} [get]
func ApiPaymentStatus(svc *payment.Service, w *lightspeed.Wrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		client := authenticateClient(c, svc)
		if client == nil {
			return
		}
		resp, err := svc.CheckStatus(c.Request.Context(), client, c.Param("transaction_id"))
		if err != nil {
			writeMerchantError(c, w, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func RegisterPaymentRoutes(r gin.IRouter, svc *payment.Service, w *lightspeed.Wrapper) {
	r.POST("/initiate", ApiInitiatePayment(svc, w))
	r.GET("/status/:transaction_id", ApiPaymentStatus(svc, w))
}
