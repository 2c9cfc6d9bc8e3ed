package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/lightspeedpay/gatewaycore/docs"
	"github.com/lightspeedpay/gatewaycore/internal/app/api/handlers"
	mw "github.com/lightspeedpay/gatewaycore/internal/app/api/middleware"
	adminsvc "github.com/lightspeedpay/gatewaycore/internal/app/service/admin"
	"github.com/lightspeedpay/gatewaycore/internal/app/service/checkout"
	"github.com/lightspeedpay/gatewaycore/internal/app/service/commission"
	"github.com/lightspeedpay/gatewaycore/internal/app/service/payment"
	"github.com/lightspeedpay/gatewaycore/internal/app/service/webhook"
	"github.com/lightspeedpay/gatewaycore/internal/app/service/webhooklog"
	cfgpkg "github.com/lightspeedpay/gatewaycore/pkg/config"
	"github.com/lightspeedpay/gatewaycore/pkg/lightspeed"
	metrics "github.com/lightspeedpay/gatewaycore/pkg/metrics"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Trace middleware is global; request logger & access log attach per group
	r.Use(mw.TraceMiddleware())
	return r
}

type routeDeps struct {
	fx.In

	Log        *zap.SugaredLogger
	Cfg        *cfgpkg.Config
	Wrapper    *lightspeed.Wrapper
	Payments   *payment.Service
	Webhooks   *webhook.Service
	Sessions   *checkout.Service
	Admin      *adminsvc.Service
	Commission *commission.Service
	Logs       *webhooklog.Service
}

func registerRoutes(r *gin.Engine, d routeDeps) {
	// Prometheus metrics
	if d.Cfg != nil && d.Cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: d.Log,
		})
		p.SetListenAddress(d.Cfg.MetricsAddr)
		p.Use(r)

		d.Log.Infow("metrics started", "addr", d.Cfg.MetricsAddr)
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub, d.Webhooks)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware())

	// Merchant payment APIs, authenticated per request by client headers
	handlers.RegisterPaymentRoutes(apiV1.Group("/payment"), d.Payments, d.Wrapper)
	handlers.RegisterCheckoutRoutes(apiV1.Group("/checkout"), d.Payments, d.Sessions, d.Wrapper)

	// Provider callbacks
	handlers.RegisterCallbackRoutes(apiV1.Group("/callback"), d.Webhooks)

	// Operator APIs behind the admin token
	adminGroup := apiV1.Group("/admin")
	adminGroup.Use(mw.AdminAuthMiddleware(d.Cfg.Admin.Token))
	handlers.RegisterAdminGatewayRoutes(adminGroup, d.Admin)
	handlers.RegisterAdminClientRoutes(adminGroup, d.Admin, d.Commission)
	handlers.RegisterAdminTransactionRoutes(adminGroup, d.Admin, d.Logs)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
