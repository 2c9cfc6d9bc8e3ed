package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lightspeedpay/gatewaycore/internal/app/service/payment"
	"github.com/lightspeedpay/gatewaycore/internal/app/service/webhooklog"
	"github.com/lightspeedpay/gatewaycore/internal/models"
	"github.com/lightspeedpay/gatewaycore/pkg/config"
	"github.com/lightspeedpay/gatewaycore/pkg/metrics"
	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

// Worker drains the webhook queue. Each job is re-verified and applied
// under a row lock so duplicate deliveries and concurrent workers settle
// each transaction exactly once.
type Worker struct {
	db        *gorm.DB
	cfg       *config.Config
	payments  *payment.Service
	logs      *webhooklog.Service
	queue     *Queue
	forwarder *Forwarder
	metrics   *metrics.Domain
	log       *zap.SugaredLogger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWorker(
	db *gorm.DB,
	cfg *config.Config,
	payments *payment.Service,
	logs *webhooklog.Service,
	queue *Queue,
	forwarder *Forwarder,
	dom *metrics.Domain,
	log *zap.SugaredLogger,
) *Worker {
	return &Worker{
		db:        db,
		cfg:       cfg,
		payments:  payments,
		logs:      logs,
		queue:     queue,
		forwarder: forwarder,
		metrics:   dom,
		log:       log,
	}
}

func (w *Worker) countJob(provider string, result string) {
	if w.metrics == nil {
		return
	}
	w.metrics.WebhookJobTotal.WithLabelValues(provider, result).Inc()
}

// Start launches the worker pool. Each goroutine blocks on the queue and
// exits when Stop cancels the shared context.
func (w *Worker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	n := w.cfg.Webhook.WorkerCount
	if n <= 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		w.wg.Add(1)
		go w.run(ctx, i)
	}
	w.log.Infow("webhook workers started", "count", n)
}

// Stop cancels the pool and waits for in-flight jobs to finish.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context, id int) {
	defer w.wg.Done()
	for {
		if ctx.Err() != nil {
			return
		}
		job, raw, err := w.queue.Dequeue(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.log.Errorw("webhook dequeue failed", "worker", id, "err", err)
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}
		if err := w.process(ctx, job); err != nil {
			if errors.Is(err, errRetryable) {
				w.countJob(job.Provider, "retry")
				w.log.Warnw("webhook processing will retry",
					"worker", id, "webhook_log_id", job.WebhookLogID)
				if rqErr := w.queue.Requeue(ctx, raw); rqErr != nil {
					w.log.Errorw("webhook requeue failed", "err", rqErr)
				}
				time.Sleep(time.Second)
				continue
			}
			w.countJob(job.Provider, "failed")
			w.log.Errorw("webhook processing failed",
				"worker", id, "webhook_log_id", job.WebhookLogID, "err", err)
		} else {
			w.countJob(job.Provider, "processed")
		}
		w.queue.Ack(ctx, raw)
	}
}

// errRetryable marks infrastructure failures worth another pass. Payload
// problems (bad signature, unknown transaction) are final and never retried.
var errRetryable = errors.New("retryable webhook failure")

func (w *Worker) process(ctx context.Context, job *Job) error {
	provider := types.Provider(job.Provider)

	var gw models.GatewayConfig
	if err := w.db.WithContext(ctx).Unscoped().Where("id = ?", job.GatewayID).First(&gw).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return w.fail(ctx, job, fmt.Errorf("gateway config %s no longer exists", job.GatewayID))
		}
		return fmt.Errorf("%w: %v", errRetryable, err)
	}
	adapter, err := w.payments.AdapterFor(&gw)
	if err != nil {
		return w.fail(ctx, job, err)
	}

	// Re-verify: the queue payload is not trusted to still match what was
	// verified at ingest.
	res, err := adapter.VerifyWebhook(ctx, job.Payload, job.HTTPHeader())
	if err != nil || !res.Success {
		return w.fail(ctx, job, errors.New("signature verification failed at processing"))
	}
	if res.TransactionID == "" {
		return w.fail(ctx, job, errors.New("payload carries no transaction id"))
	}

	var (
		txn     models.Transaction
		client  models.ClientAccount
		changed bool
	)
	err = w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", res.TransactionID).
			First(&txn).Error
		if err != nil {
			return err
		}
		before := txn.Status
		if err := w.payments.ApplyStatus(ctx, tx, &txn, res.Status, res.GatewayTxnID, res.Raw); err != nil {
			return err
		}
		changed = txn.Status != before
		return tx.Where("id = ?", txn.ClientID).First(&client).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return w.fail(ctx, job, fmt.Errorf("transaction %s not found", res.TransactionID))
		}
		return fmt.Errorf("%w: %v", errRetryable, err)
	}

	result, _ := json.Marshal(map[string]any{
		"transaction_id": txn.ID,
		"status":         string(txn.Status),
		"status_changed": changed,
	})
	if err := w.logs.MarkProcessed(ctx, job.WebhookLogID, result); err != nil {
		w.log.Errorw("failed to mark webhook processed", "webhook_log_id", job.WebhookLogID, "err", err)
	}
	w.log.Infow("webhook processed",
		"provider", provider, "transaction_id", txn.ID,
		"status", txn.Status, "status_changed", changed)

	if changed && client.WebhookURL != "" {
		w.forwarder.Forward(ctx, job.WebhookLogID, &client, &txn, res.Status)
	} else {
		// Duplicate delivery or no merchant URL: nothing to forward, close
		// out the bookkeeping so the row does not look stuck.
		_ = w.logs.UpdateForward(ctx, job.WebhookLogID, models.ForwardStatusSent, 0, "")
	}
	return nil
}

// fail records a final, non-retryable processing failure.
func (w *Worker) fail(ctx context.Context, job *Job, cause error) error {
	if err := w.logs.MarkProcessFailed(ctx, job.WebhookLogID, cause); err != nil {
		w.log.Errorw("failed to mark webhook failed", "webhook_log_id", job.WebhookLogID, "err", err)
	}
	return cause
}
