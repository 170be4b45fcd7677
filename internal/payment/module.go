// Package payment provides the payment bounded context: checkout orders and
// payment links at the gateway, and the signed callbacks that settle them
// into the service lifecycle.
package payment

import (
	apphttp "mixhouse_backend/internal/http"
	"mixhouse_backend/internal/payment/gateway"
	"mixhouse_backend/internal/payment/handler"
	"mixhouse_backend/internal/payment/repository"
	"mixhouse_backend/internal/payment/service"
	"mixhouse_backend/platform/config"
	"mixhouse_backend/platform/logger"
	"mixhouse_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the payment bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the payment module. The lifecycle and
// catalog dependencies come from their owning modules.
func NewModule(pool *pgxpool.Pool, gw gateway.Gateway, catalog service.Catalog, lifecycle service.Lifecycle, cfg config.GatewayConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, gw, catalog, lifecycle, cfg, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "payment"
}

// Service returns the payment service.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts payment routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/payments/purchase", m.handler.InitiatePurchase)
	ctx.Protected.POST("/payments/services/:id/addons/:addon", m.handler.InitiateAddon)

	// Gateway callbacks arrive unauthenticated; signature verification is
	// the auth, the rate limiter blunts probing.
	callbacks := ctx.V1.Group("/payment", ctx.CallbackRateLimiter.RateLimit())
	callbacks.POST("/callback", m.handler.OrderCallback)
	callbacks.GET("/link-callback", m.handler.LinkCallback)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
