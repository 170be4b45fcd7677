package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mixhouse_backend/internal/services/service"
	"mixhouse_backend/internal/services/transport"
	"mixhouse_backend/platform/httpkit"
	"mixhouse_backend/platform/validator"
)

// Handler handles HTTP requests for purchased services.
type Handler struct {
	svc   *service.Service
	files *service.Files
	val   *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid service ID"
)

// New creates a new services handler.
func New(svc *service.Service, files *service.Files, val *validator.Validator) *Handler {
	return &Handler{svc: svc, files: files, val: val}
}

// ListMine returns the caller's own services.
// GET /api/v1/services
func (h *Handler) ListMine(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.ListForCustomer(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetMine returns one of the caller's own services.
// GET /api/v1/services/:id
func (h *Handler) GetMine(c *gin.Context) {
	id, identity, ok := h.serviceID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetForCustomer(c.Request.Context(), identity.UserID(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UploadFiles records the customer's uploaded project files.
// POST /api/v1/services/:id/uploads
func (h *Handler) UploadFiles(c *gin.Context) {
	id, identity, ok := h.serviceID(c)
	if !ok {
		return
	}
	var req transport.UploadFilesRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.UploadFiles(c.Request.Context(), identity.UserID(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RequestRevision records a numbered revision request.
// POST /api/v1/services/:id/revisions
func (h *Handler) RequestRevision(c *gin.Context) {
	id, identity, ok := h.serviceID(c)
	if !ok {
		return
	}
	var req transport.RequestRevisionRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.RequestRevision(c.Request.Context(), identity.UserID(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateProjectName renames the caller's project.
// PATCH /api/v1/services/:id/project-name
func (h *Handler) UpdateProjectName(c *gin.Context) {
	id, identity, ok := h.serviceID(c)
	if !ok {
		return
	}
	var req transport.UpdateProjectNameRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.UpdateProjectName(c.Request.Context(), identity.UserID(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RemoveUnpaid deletes an unpaid service from the caller's account.
// DELETE /api/v1/services/:id
func (h *Handler) RemoveUnpaid(c *gin.Context) {
	id, identity, ok := h.serviceID(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.RemoveUnpaidService(c.Request.Context(), identity.UserID(), id)) {
		return
	}
	httpkit.OK(c, gin.H{"deleted": true})
}

// Complete closes a service on the customer's behalf.
// POST /api/v1/services/:id/complete
func (h *Handler) Complete(c *gin.Context) {
	id, identity, ok := h.serviceID(c)
	if !ok {
		return
	}

	completedFor := "customer"
	if identity.HasRole(httpkit.RoleManager) || identity.HasRole(httpkit.RoleMaster) {
		completedFor = "admin"
	}

	result, err := h.svc.Complete(c.Request.Context(), id, completedFor)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Get returns any service (staff view).
// GET /api/v1/admin/services/:id
func (h *Handler) Get(c *gin.Context) {
	id, _, ok := h.serviceID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListAssigned returns the services assigned to the calling engineer.
// GET /api/v1/admin/services/assigned
func (h *Handler) ListAssigned(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.ListAssigned(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RequestReupload sends the upload back to the customer.
// POST /api/v1/admin/services/:id/request-reupload
func (h *Handler) RequestReupload(c *gin.Context) {
	id, _, ok := h.serviceID(c)
	if !ok {
		return
	}
	var req transport.RequestReuploadRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.RequestReupload(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ConfirmUpload accepts the customer's upload and starts the work.
// POST /api/v1/admin/services/:id/confirm-upload
func (h *Handler) ConfirmUpload(c *gin.Context) {
	id, _, ok := h.serviceID(c)
	if !ok {
		return
	}

	result, err := h.svc.ConfirmUpload(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Assign puts an engineer on the service.
// POST /api/v1/admin/services/:id/assign
func (h *Handler) Assign(c *gin.Context) {
	id, identity, ok := h.serviceID(c)
	if !ok {
		return
	}
	var req transport.AssignRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.Assign(c.Request.Context(), id, identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// SubmitForQA routes the engineer's finished files to internal review.
// POST /api/v1/admin/services/:id/submit
func (h *Handler) SubmitForQA(c *gin.Context) {
	id, _, ok := h.serviceID(c)
	if !ok {
		return
	}
	var req transport.SubmitForQARequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.SubmitForQA(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RejectQA bounces the submission back to the engineer.
// POST /api/v1/admin/services/:id/reject
func (h *Handler) RejectQA(c *gin.Context) {
	id, _, ok := h.serviceID(c)
	if !ok {
		return
	}
	var req transport.RejectQARequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.RejectQA(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ApproveQA releases the submission to the customer.
// POST /api/v1/admin/services/:id/approve
func (h *Handler) ApproveQA(c *gin.Context) {
	id, _, ok := h.serviceID(c)
	if !ok {
		return
	}

	result, err := h.svc.ApproveQA(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeliverRevision attaches the reworked file to the open revision.
// POST /api/v1/admin/services/:id/revisions/deliver
func (h *Handler) DeliverRevision(c *gin.Context) {
	id, _, ok := h.serviceID(c)
	if !ok {
		return
	}
	var req transport.DeliverRevisionRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.DeliverRevision(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeliverAddon stores a delivered add-on export file.
// POST /api/v1/admin/services/:id/addons/:addon/deliver
func (h *Handler) DeliverAddon(c *gin.Context) {
	id, _, ok := h.serviceID(c)
	if !ok {
		return
	}
	addon := service.Addon(c.Param("addon"))
	var req struct {
		File string `json:"file" validate:"required,min=1"`
	}
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.DeliverAddon(c.Request.Context(), id, addon, req.File)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// PresignUpload issues a signed PUT URL for a direct client upload.
// POST /api/v1/files/upload-url
func (h *Handler) PresignUpload(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	var req transport.PresignUploadRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.files.PresignUpload(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// PresignDownload issues a signed GET URL for a stored object.
// GET /api/v1/files/download-url?bucket=uploads&key=...
func (h *Handler) PresignDownload(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.files.PresignDownload(c.Request.Context(), c.Query("bucket"), c.Query("key"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) serviceID(c *gin.Context) (uuid.UUID, httpkit.Identity, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, nil, false
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return uuid.Nil, nil, false
	}
	return id, identity, true
}

func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, gin.H{"details": err.Error()})
		return false
	}
	return true
}
