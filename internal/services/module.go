// Package services provides the purchased-services bounded context: the
// delivery pipeline from payment through uploads, internal QA, delivery,
// revisions and completion.
package services

import (
	apphttp "mixhouse_backend/internal/http"
	"mixhouse_backend/internal/services/handler"
	"mixhouse_backend/internal/services/repository"
	"mixhouse_backend/internal/services/service"
	"mixhouse_backend/platform/httpkit"
	"mixhouse_backend/platform/logger"
	"mixhouse_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the services bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// Store is the slice of the object-storage adapter this module needs: bulk
// deletes for lifecycle transitions and presigned URLs for direct transfers.
type Store interface {
	service.ObjectStore
	service.Presigner
}

// NewModule creates and initializes the services module with all its
// dependencies. The store and queue are shared adapters owned by the
// composition root.
func NewModule(pool *pgxpool.Pool, store Store, queue service.Enqueuer, cfg service.Config, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, store, queue, cfg, log)
	files := service.NewFiles(store, cfg, log)
	h := handler.New(svc, files, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "services"
}

// Service returns the lifecycle engine for use by other modules. The payment
// module settles purchases through it so all stage movement stays here.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts service routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Customer-facing endpoints, scoped to the caller's own services.
	ctx.Protected.GET("/services", m.handler.ListMine)
	ctx.Protected.GET("/services/:id", m.handler.GetMine)
	ctx.Protected.POST("/services/:id/uploads", m.handler.UploadFiles)
	ctx.Protected.POST("/services/:id/revisions", m.handler.RequestRevision)
	ctx.Protected.POST("/services/:id/complete", m.handler.Complete)
	ctx.Protected.PATCH("/services/:id/project-name", m.handler.UpdateProjectName)
	ctx.Protected.DELETE("/services/:id", m.handler.RemoveUnpaid)

	// Files move between the client and object storage directly; the API
	// only signs the transfer.
	ctx.Protected.POST("/files/upload-url", m.handler.PresignUpload)
	ctx.Protected.GET("/files/download-url", m.handler.PresignDownload)

	// Staff endpoints. Review decisions need a manager; QA approval is the
	// master's alone; engineers work their assigned queue.
	staff := ctx.Admin.Group("/services")
	staff.GET("/assigned", m.handler.ListAssigned)
	staff.GET("/:id", m.handler.Get)
	staff.POST("/:id/submit", m.handler.SubmitForQA)
	staff.POST("/:id/revisions/deliver", m.handler.DeliverRevision)
	staff.POST("/:id/addons/:addon/deliver", m.handler.DeliverAddon)

	managers := staff.Group("", httpkit.RequireAnyRole(httpkit.RoleManager, httpkit.RoleMaster))
	managers.POST("/:id/request-reupload", m.handler.RequestReupload)
	managers.POST("/:id/confirm-upload", m.handler.ConfirmUpload)
	managers.POST("/:id/assign", m.handler.Assign)
	managers.POST("/:id/complete", m.handler.Complete)

	master := staff.Group("", httpkit.RequireRole(httpkit.RoleMaster))
	master.POST("/:id/approve", m.handler.ApproveQA)
	master.POST("/:id/reject", m.handler.RejectQA)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
