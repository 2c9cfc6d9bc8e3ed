package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Job is one verified callback awaiting processing. Payload and Header
// are carried verbatim so the worker can re-verify before acting: the
// queue is at-least-once and the verification result is not trusted
// across the queue boundary.
type Job struct {
	WebhookLogID string              `json:"webhook_log_id"`
	Provider     string              `json:"provider"`
	GatewayID    string              `json:"gateway_id"`
	Payload      []byte              `json:"payload"`
	Header       map[string][]string `json:"header"`
	TraceID      string              `json:"trace_id"`
	EnqueuedAt   time.Time           `json:"enqueued_at"`
}

func (j *Job) HTTPHeader() http.Header {
	return http.Header(j.Header)
}

// Queue is a redis-list work queue. LPUSH feeds it; workers BLMove each
// job into a processing list and LREM it on completion, so a worker
// crash leaves the job recoverable rather than lost.
type Queue struct {
	rdb *goredis.Client
	key string
}

func NewQueue(rdb *goredis.Client, key string) *Queue {
	return &Queue{rdb: rdb, key: key}
}

func (q *Queue) processingKey() string { return q.key + ":processing" }

func (q *Queue) Enqueue(ctx context.Context, job *Job) error {
	job.EnqueuedAt = time.Now().UTC()
	b, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode webhook job: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.key, b).Err(); err != nil {
		return fmt.Errorf("failed to enqueue webhook job: %w", err)
	}
	return nil
}

// Dequeue blocks up to timeout for the next job. A nil job with nil
// error means the wait timed out.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, string, error) {
	raw, err := q.rdb.BLMove(ctx, q.key, q.processingKey(), "RIGHT", "LEFT", timeout).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("failed to dequeue webhook job: %w", err)
	}
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		// Poison entry: drop it from the processing list and move on.
		q.rdb.LRem(ctx, q.processingKey(), 1, raw)
		return nil, "", fmt.Errorf("failed to decode webhook job: %w", err)
	}
	return &job, raw, nil
}

// Ack removes a completed job from the processing list.
func (q *Queue) Ack(ctx context.Context, raw string) {
	q.rdb.LRem(ctx, q.processingKey(), 1, raw)
}

// Requeue pushes a failed job back onto the main list for another pass.
func (q *Queue) Requeue(ctx context.Context, raw string) error {
	pipe := q.rdb.TxPipeline()
	pipe.LRem(ctx, q.processingKey(), 1, raw)
	pipe.LPush(ctx, q.key, raw)
	_, err := pipe.Exec(ctx)
	return err
}

// Depth reports the number of jobs waiting, for health reporting.
func (q *Queue) Depth(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}
