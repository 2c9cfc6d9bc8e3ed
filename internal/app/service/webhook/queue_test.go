package webhook

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJob_SurvivesEncoding(t *testing.T) {
	in := &Job{
		WebhookLogID: "log-1",
		Provider:     "payu",
		GatewayID:    "gw-1",
		Payload:      []byte("txnid=LSP_1_ABC123&status=success"),
		Header:       map[string][]string{"Content-Type": {"application/x-www-form-urlencoded"}},
		TraceID:      "trace-1",
	}
	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out Job
	require.NoError(t, json.Unmarshal(b, &out))
	require.Equal(t, in.WebhookLogID, out.WebhookLogID)
	require.Equal(t, in.Provider, out.Provider)
	require.Equal(t, in.Payload, out.Payload)
	require.Equal(t, "application/x-www-form-urlencoded", out.HTTPHeader().Get("Content-Type"))
}

func TestJob_HTTPHeaderLookupIsCanonical(t *testing.T) {
	job := &Job{Header: map[string][]string{"X-Razorpay-Signature": {"deadbeef"}}}
	require.Equal(t, "deadbeef", job.HTTPHeader().Get("X-Razorpay-Signature"))
}

func TestQueueKeys(t *testing.T) {
	q := NewQueue(nil, "webhook:jobs")
	require.Equal(t, "webhook:jobs:processing", q.processingKey())
}
