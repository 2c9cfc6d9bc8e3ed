package redis

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/lightspeedpay/gatewaycore/pkg/config"
)

// NewClient connects the shared redis client used by the webhook queue
// and the gateway rotation cursor.
func NewClient(l *zap.SugaredLogger, cfg *cfgpkg.Config) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		l.Errorf("failed to connect redis: %v", err)
		return nil, err
	}
	l.Infow("connected to redis", "addr", cfg.Redis.Addr)
	return client, nil
}

func registerClose(lc fx.Lifecycle, l *zap.SugaredLogger, client *goredis.Client) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			l.Infow("closing redis client")
			return client.Close()
		},
	})
}

var Module = fx.Options(
	fx.Provide(NewClient),
	fx.Invoke(registerClose),
)
