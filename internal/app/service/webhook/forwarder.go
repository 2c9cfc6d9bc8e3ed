package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/lightspeedpay/gatewaycore/internal/app/service/webhooklog"
	"github.com/lightspeedpay/gatewaycore/internal/models"
	"github.com/lightspeedpay/gatewaycore/pkg/config"
	"github.com/lightspeedpay/gatewaycore/pkg/lightspeed"
	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

// Forwarder delivers the branded webhook payload to the merchant's URL
// with exponential backoff. The payload is the sanitized shape only;
// nothing from the provider's raw callback ever reaches the merchant.
type Forwarder struct {
	client  *http.Client
	cfg     *config.Config
	wrapper *lightspeed.Wrapper
	logs    *webhooklog.Service
	log     *zap.SugaredLogger
}

func NewForwarder(cfg *config.Config, wrapper *lightspeed.Wrapper, logs *webhooklog.Service, log *zap.SugaredLogger) *Forwarder {
	return &Forwarder{
		client:  &http.Client{Timeout: cfg.Webhook.ForwardTimeout},
		cfg:     cfg,
		wrapper: wrapper,
		logs:    logs,
		log:     log,
	}
}

// Forward attempts delivery up to the configured maximum, doubling the
// delay between attempts. Exhausted deliveries are durably marked
// abandoned for manual replay.
func (f *Forwarder) Forward(ctx context.Context, webhookLogID string, client *models.ClientAccount, txn *models.Transaction, status types.PaymentStatus) {
	payload := f.wrapper.SanitizeWebhookResponse(txn.OrderID, txn.ID, txn.GatewayTxnID, txn.Amount, status)
	body, err := json.Marshal(payload)
	if err != nil {
		f.log.Errorw("failed to encode merchant webhook", "transaction_id", txn.ID, "err", err)
		return
	}

	maxAttempts := f.cfg.Webhook.ForwardMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	backoff := f.cfg.Webhook.ForwardBackoffBase
	if backoff <= 0 {
		backoff = time.Second
	}

	var lastErr string
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := f.deliver(ctx, client.WebhookURL, body)
		if err == nil {
			_ = f.logs.UpdateForward(ctx, webhookLogID, models.ForwardStatusSent, attempt, "")
			f.log.Infow("merchant webhook delivered",
				"transaction_id", txn.ID, "client_id", client.ID, "attempt", attempt)
			return
		}
		lastErr = err.Error()
		_ = f.logs.UpdateForward(ctx, webhookLogID, models.ForwardStatusFailed, attempt, lastErr)
		f.log.Warnw("merchant webhook delivery failed",
			"transaction_id", txn.ID, "client_id", client.ID, "attempt", attempt, "err", err)

		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	_ = f.logs.UpdateForward(ctx, webhookLogID, models.ForwardStatusAbandoned, maxAttempts, lastErr)
	f.log.Errorw("merchant webhook abandoned",
		"transaction_id", txn.ID, "client_id", client.ID, "attempts", maxAttempts)
}

func (f *Forwarder) deliver(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", f.wrapper.BrandName())
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("merchant responded with status %d", resp.StatusCode)
	}
	return nil
}
