package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mixhouse_backend/internal/contact/service"
	"mixhouse_backend/internal/contact/transport"
	"mixhouse_backend/platform/apperr"
	"mixhouse_backend/platform/httpkit"
	"mixhouse_backend/platform/validator"
)

// Handler handles contact form HTTP requests.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new contact handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// SubmitEnquiry accepts a message from the public contact form.
func (h *Handler) SubmitEnquiry(c *gin.Context) {
	var req transport.EnquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	if err := h.svc.SubmitEnquiry(c.Request.Context(), req.Name, req.Email, req.Message); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"received": true})
}
