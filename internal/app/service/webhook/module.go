package webhook

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/lightspeedpay/gatewaycore/pkg/config"
)

func newQueue(rdb *goredis.Client, cfg *config.Config) *Queue {
	return NewQueue(rdb, cfg.Webhook.QueueKey)
}

var Module = fx.Options(
	fx.Provide(newQueue),
	fx.Provide(NewForwarder),
	fx.Provide(NewService),
	fx.Provide(NewWorker),
	fx.Invoke(func(lc fx.Lifecycle, w *Worker) {
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				w.Start()
				return nil
			},
			OnStop: func(context.Context) error {
				w.Stop()
				return nil
			},
		})
	}),
)
