package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lightspeedpay/gatewaycore/internal/app/service/admin"
	"github.com/lightspeedpay/gatewaycore/internal/app/service/webhooklog"
	"github.com/lightspeedpay/gatewaycore/internal/models"
	"github.com/lightspeedpay/gatewaycore/pkg/response"
)

type listTransactionsResponse struct {
	Items []*models.Transaction `json:"items"`
	Total int64                 `json:"total"`
}

// @Summary      List Transactions (Admin)
// @Description  Retrieves a paginated and filterable list of transactions.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body admin.TransactionListRequest true "Filters, pagination and sorting"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/transactions/list [post]
func ApiListTransactions(svc *admin.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req admin.TransactionListRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		items, total, err := svc.ListTransactions(c.Request.Context(), &req)
		if err != nil {
			writeAdminError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(listTransactionsResponse{Items: items, Total: total}))
	}
}

type transactionDetailResponse struct {
	Transaction *models.Transaction  `json:"transaction"`
	WebhookLogs []*models.WebhookLog `json:"webhook_logs"`
}

// @Summary      Transaction Detail (Admin)
// @Description  Returns a transaction with its webhook history.
// @Tags         Admin
// @Produce      json
// @Param        id path string true "Transaction id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/transactions/{id} [get]
func ApiTransactionDetail(svc *admin.Service, logs *webhooklog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		txn, err := svc.GetTransaction(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeAdminError(c, err)
			return
		}
		history, err := logs.ListByTransaction(c.Request.Context(), txn.ID)
		if err != nil {
			writeAdminError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(transactionDetailResponse{
			Transaction: txn,
			WebhookLogs: history,
		}))
	}
}

func RegisterAdminTransactionRoutes(r gin.IRouter, svc *admin.Service, logs *webhooklog.Service) {
	r.POST("/transactions/list", ApiListTransactions(svc))
	r.GET("/transactions/:id", ApiTransactionDetail(svc, logs))
}
