package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/lightspeedpay/gatewaycore/internal/app/service/admin"
	"github.com/lightspeedpay/gatewaycore/internal/gateway"
	"github.com/lightspeedpay/gatewaycore/pkg/response"
	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

type providerInfo struct {
	Provider       types.Provider `json:"provider"`
	RequiredFields []string       `json:"required_fields"`
	OptionalFields []string       `json:"optional_fields"`
}

// @Summary      List Providers (Admin)
// @Description  Lists supported payment providers and their credential fields.
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/providers [get]
func ApiListProviders() gin.HandlerFunc {
	return func(c *gin.Context) {
		out := lo.Map(types.SupportedProviders(), func(p types.Provider, _ int) providerInfo {
			return providerInfo{
				Provider:       p,
				RequiredFields: gateway.RequiredFields(p),
				OptionalFields: gateway.OptionalFields(p),
			}
		})
		c.JSON(http.StatusOK, response.OKT(out))
	}
}

func writeAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, admin.ErrNotFound):
		c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "not found"))
	case errors.Is(err, admin.ErrInvalidProvider), errors.Is(err, admin.ErrMissingCredentials):
		c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
	default:
		c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
	}
}

// @Summary      Create Gateway (Admin)
// @Description  Registers a provider account. Credentials are write-only and never returned.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body admin.GatewayParams true "Gateway configuration"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/gateways [post]
func ApiCreateGateway(svc *admin.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req admin.GatewayParams
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		gw, err := svc.CreateGateway(c.Request.Context(), &req)
		if err != nil {
			writeAdminError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(gw))
	}
}

// @Summary      List Gateways (Admin)
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/gateways [get]
func ApiListGateways(svc *admin.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		gws, err := svc.ListGateways(c.Request.Context())
		if err != nil {
			writeAdminError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(gws))
	}
}

// @Summary      Update Gateway (Admin)
// @Description  Partially updates a gateway. Credentials, when supplied, replace the stored set.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Gateway id"
// @Param        request body admin.GatewayParams true "Fields to update"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/gateways/{id} [put]
func ApiUpdateGateway(svc *admin.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req admin.GatewayParams
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		gw, err := svc.UpdateGateway(c.Request.Context(), c.Param("id"), &req)
		if err != nil {
			writeAdminError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(gw))
	}
}

// @Summary      Delete Gateway (Admin)
// @Description  Soft-deletes a gateway; historical transactions keep referencing it.
// @Tags         Admin
// @Produce      json
// @Param        id path string true "Gateway id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/gateways/{id} [delete]
func ApiDeleteGateway(svc *admin.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteGateway(c.Request.Context(), c.Param("id")); err != nil {
			writeAdminError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      Validate Gateway Credentials (Admin)
// @Description  Makes a live check against the provider with the stored credentials.
// @Tags         Admin
// @Produce      json
// @Param        id path string true "Gateway id"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/gateways/{id}/validate [post]
func ApiValidateGateway(svc *admin.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := svc.ValidateGateway(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeAdminError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]bool{"valid": ok}))
	}
}

func RegisterAdminGatewayRoutes(r gin.IRouter, svc *admin.Service) {
	r.GET("/providers", ApiListProviders())
	r.POST("/gateways", ApiCreateGateway(svc))
	r.GET("/gateways", ApiListGateways(svc))
	r.PUT("/gateways/:id", ApiUpdateGateway(svc))
	r.DELETE("/gateways/:id", ApiDeleteGateway(svc))
	r.POST("/gateways/:id/validate", ApiValidateGateway(svc))
}
