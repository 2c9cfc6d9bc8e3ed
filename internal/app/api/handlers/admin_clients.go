package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lightspeedpay/gatewaycore/internal/app/service/admin"
	"github.com/lightspeedpay/gatewaycore/internal/app/service/commission"
	"github.com/lightspeedpay/gatewaycore/internal/models"
	"github.com/lightspeedpay/gatewaycore/pkg/response"
)

// createClientResponse includes the salt exactly once, at creation.
type createClientResponse struct {
	Client     *models.ClientAccount `json:"client"`
	ClientSalt string                `json:"client_salt"`
}

// @Summary      Create Client (Admin)
// @Description  Creates a merchant account. The client salt is returned once and never again.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body admin.ClientParams true "Client parameters"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/clients [post]
func ApiCreateClient(svc *admin.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req admin.ClientParams
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		created, err := svc.CreateClient(c.Request.Context(), &req)
		if err != nil {
			writeAdminError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(createClientResponse{
			Client:     created.Client,
			ClientSalt: created.Salt,
		}))
	}
}

// @Summary      List Clients (Admin)
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/clients [get]
func ApiListClients(svc *admin.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		clients, err := svc.ListClients(c.Request.Context())
		if err != nil {
			writeAdminError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(clients))
	}
}

// @Summary      Update Client (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Client id"
// @Param        request body admin.ClientParams true "Fields to update"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/clients/{id} [put]
func ApiUpdateClient(svc *admin.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req admin.ClientParams
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		client, err := svc.UpdateClient(c.Request.Context(), c.Param("id"), &req)
		if err != nil {
			writeAdminError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(client))
	}
}

// @Summary      Upsert Gateway Assignment (Admin)
// @Description  Links a client to a gateway or updates the existing link.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Client id"
// @Param        request body admin.AssignmentParams true "Assignment parameters"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/clients/{id}/assignments [post]
func ApiUpsertAssignment(svc *admin.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req admin.AssignmentParams
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.GatewayID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing gateway_id"))
			return
		}
		a, err := svc.UpsertAssignment(c.Request.Context(), c.Param("id"), &req)
		if err != nil {
			writeAdminError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(a))
	}
}

// @Summary      List Gateway Assignments (Admin)
// @Tags         Admin
// @Produce      json
// @Param        id path string true "Client id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/clients/{id}/assignments [get]
func ApiListAssignments(svc *admin.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		assignments, err := svc.ListAssignments(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeAdminError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(assignments))
	}
}

type clientBalanceResponse struct {
	ClientID           string `json:"client_id"`
	OutstandingBalance int64  `json:"outstanding_balance"`
	SuspendThreshold   int64  `json:"suspend_threshold"`
	Suspended          bool   `json:"suspended"`
}

// @Summary      Client Commission Balance (Admin)
// @Description  Returns the client's unpaid commission balance and suspension state.
// @Tags         Admin
// @Produce      json
// @Param        id path string true "Client id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/clients/{id}/balance [get]
func ApiClientBalance(svc *admin.Service, com *commission.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, err := svc.GetClient(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeAdminError(c, err)
			return
		}
		balance, err := com.OutstandingBalance(c.Request.Context(), client.ID)
		if err != nil {
			writeAdminError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(clientBalanceResponse{
			ClientID:           client.ID,
			OutstandingBalance: balance,
			SuspendThreshold:   client.SuspendThreshold,
			Suspended: client.Status == models.ClientStatusSuspended ||
				(client.SuspendThreshold > 0 && balance >= client.SuspendThreshold),
		}))
	}
}

type listLedgerRequest struct {
	From int `json:"from"`
	Size int `json:"size"`
}

type listLedgerResponse struct {
	Items []*models.CommissionLedgerEntry `json:"items"`
	Total int64                           `json:"total"`
}

// @Summary      Client Commission Ledger (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Client id"
// @Param        request body listLedgerRequest true "Pagination"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/clients/{id}/ledger [post]
func ApiClientLedger(com *commission.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req listLedgerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		items, total, err := com.ListByClient(c.Request.Context(), c.Param("id"), req.From, req.Size)
		if err != nil {
			writeAdminError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(listLedgerResponse{Items: items, Total: total}))
	}
}

type payoutRequest struct {
	EntryIDs []string `json:"entry_ids"`
}

// @Summary      Mark Commission Paid Out (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body payoutRequest true "Ledger entry ids"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/commissions/payout [post]
func ApiCommissionPayout(com *commission.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payoutRequest
		if err := c.ShouldBindJSON(&req); err != nil || len(req.EntryIDs) == 0 {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing entry_ids"))
			return
		}
		if err := com.MarkPaidOut(c.Request.Context(), req.EntryIDs); err != nil {
			writeAdminError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterAdminClientRoutes(r gin.IRouter, svc *admin.Service, com *commission.Service) {
	r.POST("/clients", ApiCreateClient(svc))
	r.GET("/clients", ApiListClients(svc))
	r.PUT("/clients/:id", ApiUpdateClient(svc))
	r.POST("/clients/:id/assignments", ApiUpsertAssignment(svc))
	r.GET("/clients/:id/assignments", ApiListAssignments(svc))
	r.GET("/clients/:id/balance", ApiClientBalance(svc, com))
	r.POST("/clients/:id/ledger", ApiClientLedger(com))
	r.POST("/commissions/payout", ApiCommissionPayout(com))
}
