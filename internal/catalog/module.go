// Package catalog provides the sellable-catalog bounded context: mixing and
// mastering services with their delivery terms, plus the purchasable add-ons.
// The payment module snapshots prices here at checkout time.
package catalog

import (
	"mixhouse_backend/internal/catalog/handler"
	"mixhouse_backend/internal/catalog/repository"
	"mixhouse_backend/internal/catalog/service"
	apphttp "mixhouse_backend/internal/http"
	"mixhouse_backend/platform/httpkit"
	"mixhouse_backend/platform/logger"
	"mixhouse_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the catalog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the catalog module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the catalog service. The payment module uses it to price
// purchases and add-ons.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public browsing, no authentication. Only active entries are visible.
	public := ctx.V1.Group("/catalog")
	public.GET("/services", m.handler.ListServices)
	public.GET("/addons", m.handler.ListAddons)
	public.GET("/:id", m.handler.Get)

	// Catalog management is a manager concern.
	admin := ctx.Admin.Group("/catalog", httpkit.RequireAnyRole(httpkit.RoleManager, httpkit.RoleMaster))
	admin.GET("", m.handler.ListAll)
	admin.POST("", m.handler.AddItems)
	admin.PUT("/:id", m.handler.Update)
	admin.POST("/:id/activate", m.handler.Activate)
	admin.POST("/:id/deactivate", m.handler.Deactivate)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
