package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mixhouse_backend/internal/catalog/repository"
	"mixhouse_backend/internal/catalog/service"
	"mixhouse_backend/internal/catalog/transport"
	"mixhouse_backend/platform/apperr"
	"mixhouse_backend/platform/httpkit"
	"mixhouse_backend/platform/validator"
)

// Handler handles catalog HTTP requests.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new catalog handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ListServices returns the sellable services.
func (h *Handler) ListServices(c *gin.Context) {
	items, err := h.svc.ListServices(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, toListResponse(items))
}

// ListAddons returns the sellable add-ons.
func (h *Handler) ListAddons(c *gin.Context) {
	items, err := h.svc.ListAddons(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, toListResponse(items))
}

// Get returns a single catalog entry.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid catalog id", nil)
		return
	}
	item, err := h.svc.GetByID(c.Request.Context(), id, false)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, toResponse(item))
}

// ListAll returns the full catalog including inactive entries. Staff only.
func (h *Handler) ListAll(c *gin.Context) {
	items, err := h.svc.ListAll(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, toListResponse(items))
}

// AddItems inserts catalog entries in bulk. Staff only.
func (h *Handler) AddItems(c *gin.Context) {
	var req transport.CreateItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	params := make([]repository.CreateItemParams, 0, len(req.Items))
	for _, item := range req.Items {
		params = append(params, repository.CreateItemParams{
			Kind:                  repository.Kind(item.Kind),
			Name:                  item.Name,
			SubService:            item.SubService,
			Description:           item.Description,
			PricePaise:            item.PricePaise,
			DeliveryDays:          item.DeliveryDays,
			SetOfRevisions:        item.SetOfRevisions,
			RevisionsDeliveryDays: item.RevisionsDeliveryDays,
			AddonKey:              item.AddonKey,
		})
	}

	created, err := h.svc.AddItems(c.Request.Context(), params)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, toListResponse(created))
}

// Update updates a catalog entry. Staff only.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid catalog id", nil)
		return
	}
	var req transport.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	item, err := h.svc.Update(c.Request.Context(), repository.UpdateItemParams{
		ID:                    id,
		Name:                  req.Name,
		SubService:            req.SubService,
		Description:           req.Description,
		PricePaise:            req.PricePaise,
		DeliveryDays:          req.DeliveryDays,
		SetOfRevisions:        req.SetOfRevisions,
		RevisionsDeliveryDays: req.RevisionsDeliveryDays,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, toResponse(item))
}

// Activate marks a catalog entry sellable. Staff only.
func (h *Handler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate hides a catalog entry from sale. Staff only.
func (h *Handler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *Handler) setActive(c *gin.Context, active bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid catalog id", nil)
		return
	}
	if err := h.svc.SetActive(c.Request.Context(), id, active); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"isActive": active})
}

func toResponse(item repository.Item) transport.ItemResponse {
	return transport.ItemResponse{
		ID:                    item.ID,
		Kind:                  string(item.Kind),
		Name:                  item.Name,
		SubService:            item.SubService,
		Description:           item.Description,
		PricePaise:            item.PricePaise,
		DeliveryDays:          item.DeliveryDays,
		SetOfRevisions:        item.SetOfRevisions,
		RevisionsDeliveryDays: item.RevisionsDeliveryDays,
		AddonKey:              item.AddonKey,
		IsActive:              item.IsActive,
		CreatedAt:             item.CreatedAt,
		UpdatedAt:             item.UpdatedAt,
	}
}

func toListResponse(items []repository.Item) transport.ItemListResponse {
	out := make([]transport.ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toResponse(item))
	}
	return transport.ItemListResponse{Items: out, Total: len(out)}
}
