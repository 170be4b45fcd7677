package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mixhouse_backend/internal/payment/service"
	"mixhouse_backend/internal/payment/transport"
	servicesvc "mixhouse_backend/internal/services/service"
	"mixhouse_backend/platform/httpkit"
	"mixhouse_backend/platform/validator"
)

// Handler handles HTTP requests for payments and gateway callbacks.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new payment handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// InitiatePurchase opens a checkout order for a catalog service.
// POST /api/v1/payments/purchase
func (h *Handler) InitiatePurchase(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	var req transport.InitiatePurchaseRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.InitiatePurchase(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// InitiateAddon opens a hosted payment page for an add-on.
// POST /api/v1/payments/services/:id/addons/:addon
func (h *Handler) InitiateAddon(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid service ID", nil)
		return
	}
	addon := servicesvc.Addon(c.Param("addon"))

	result, err := h.svc.InitiateAddon(c.Request.Context(), identity.UserID(), serviceID, addon)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// OrderCallback receives the gateway's signed checkout confirmation.
// POST /api/v1/payment/callback
func (h *Handler) OrderCallback(c *gin.Context) {
	var req transport.OrderCallbackRequest
	if !h.bind(c, &req) {
		return
	}

	if httpkit.HandleError(c, h.svc.HandleOrderCallback(c.Request.Context(), req)) {
		return
	}
	httpkit.OK(c, gin.H{"settled": true})
}

// LinkCallback receives the gateway's signed payment-link redirect and sends
// the payer back to the app.
// GET /api/v1/payment/link-callback
func (h *Handler) LinkCallback(c *gin.Context) {
	var req transport.LinkCallbackRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, nil)
		return
	}

	location, err := h.svc.HandleLinkCallback(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	c.Redirect(http.StatusFound, location)
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
