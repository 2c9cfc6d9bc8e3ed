package handlers

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func routeTable(r *gin.Engine) map[string]bool {
	out := map[string]bool{}
	for _, rt := range r.Routes() {
		out[rt.Method+" "+rt.Path] = true
	}
	return out
}

func TestRegisterPaymentRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterPaymentRoutes(r.Group("/api/v1/payment"), nil, nil)

	routes := routeTable(r)
	require.True(t, routes["POST /api/v1/payment/initiate"])
	require.True(t, routes["GET /api/v1/payment/status/:transaction_id"])
}

func TestRegisterCallbackRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterCallbackRoutes(r.Group("/api/v1/callback"), nil)

	require.True(t, routeTable(r)["POST /api/v1/callback/:provider"])
}

func TestRegisterCheckoutRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterCheckoutRoutes(r.Group("/api/v1/checkout"), nil, nil, nil)

	routes := routeTable(r)
	require.True(t, routes["POST /api/v1/checkout/session"])
	require.True(t, routes["GET /api/v1/checkout/state"])
}

func TestRegisterAdminRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api/v1/admin")
	RegisterAdminGatewayRoutes(g, nil)
	RegisterAdminClientRoutes(g, nil, nil)
	RegisterAdminTransactionRoutes(g, nil, nil)

	routes := routeTable(r)
	require.True(t, routes["GET /api/v1/admin/providers"])
	require.True(t, routes["POST /api/v1/admin/gateways"])
	require.True(t, routes["GET /api/v1/admin/gateways"])
	require.True(t, routes["PUT /api/v1/admin/gateways/:id"])
	require.True(t, routes["DELETE /api/v1/admin/gateways/:id"])
	require.True(t, routes["POST /api/v1/admin/gateways/:id/validate"])
	require.True(t, routes["POST /api/v1/admin/clients"])
	require.True(t, routes["GET /api/v1/admin/clients"])
	require.True(t, routes["PUT /api/v1/admin/clients/:id"])
	require.True(t, routes["POST /api/v1/admin/clients/:id/assignments"])
	require.True(t, routes["GET /api/v1/admin/clients/:id/assignments"])
	require.True(t, routes["GET /api/v1/admin/clients/:id/balance"])
	require.True(t, routes["POST /api/v1/admin/clients/:id/ledger"])
	require.True(t, routes["POST /api/v1/admin/commissions/payout"])
	require.True(t, routes["POST /api/v1/admin/transactions/list"])
	require.True(t, routes["GET /api/v1/admin/transactions/:id"])
}
