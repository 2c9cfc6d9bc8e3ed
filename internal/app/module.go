package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/lightspeedpay/gatewaycore/internal/app/api/server"
	adminsvc "github.com/lightspeedpay/gatewaycore/internal/app/service/admin"
	"github.com/lightspeedpay/gatewaycore/internal/app/service/checkout"
	"github.com/lightspeedpay/gatewaycore/internal/app/service/commission"
	"github.com/lightspeedpay/gatewaycore/internal/app/service/payment"
	"github.com/lightspeedpay/gatewaycore/internal/app/service/selector"
	"github.com/lightspeedpay/gatewaycore/internal/app/service/webhook"
	"github.com/lightspeedpay/gatewaycore/internal/app/service/webhooklog"
	"github.com/lightspeedpay/gatewaycore/internal/gateway"
	"github.com/lightspeedpay/gatewaycore/internal/platform/db"
	"github.com/lightspeedpay/gatewaycore/internal/platform/redis"
	"github.com/lightspeedpay/gatewaycore/pkg/config"
	"github.com/lightspeedpay/gatewaycore/pkg/lightspeed"
	"github.com/lightspeedpay/gatewaycore/pkg/logger"
	"github.com/lightspeedpay/gatewaycore/pkg/metrics"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

func newWrapper(cfg *config.Config) *lightspeed.Wrapper {
	return lightspeed.NewWrapper(cfg.Brand.Name, cfg.Brand.CheckoutBaseURL)
}

func newFactory(cfg *config.Config) *gateway.Factory {
	return gateway.NewFactory(cfg.Payment.ProviderTimeout)
}

func newDomainMetrics() *metrics.Domain {
	return metrics.NewDomain("gatewaycore")
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	redis.Module,
	fx.Provide(newWrapper),
	fx.Provide(newFactory),
	fx.Provide(newDomainMetrics),
	server.Module,
	commission.Module,
	selector.Module,
	payment.Module,
	webhooklog.Module,
	webhook.Module,
	checkout.Module,
	adminsvc.Module,
)
