// Package contact provides the public enquiry form. Messages are stored and
// then queued; the notification worker delivers them to the studio mailbox.
package contact

import (
	"mixhouse_backend/internal/contact/handler"
	"mixhouse_backend/internal/contact/repository"
	"mixhouse_backend/internal/contact/service"
	apphttp "mixhouse_backend/internal/http"
	"mixhouse_backend/platform/logger"
	"mixhouse_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the contact bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the contact module.
func NewModule(pool *pgxpool.Pool, queue service.Enqueuer, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, queue, log)
	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "contact"
}

// RegisterRoutes mounts contact routes on the provided router context.
// The endpoint is unauthenticated, so it sits behind the public rate limiter.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/contact", ctx.PublicRateLimiter.RateLimit(), m.handler.SubmitEnquiry)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
