package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestApiListProviders_ReturnsCredentialRegistry(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/v1/admin/providers", ApiListProviders())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/providers", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	for _, p := range []string{"razorpay", "payu", "easebuzz", "onepayment", "custom"} {
		require.Contains(t, body, p)
	}
	require.Contains(t, body, "required_fields")
	require.Contains(t, body, "merchant_key")
	require.Contains(t, body, "partner_id")
}
