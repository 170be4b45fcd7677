package transport

import "github.com/google/uuid"

// CreateItemRequest is one entry of a bulk catalog insert.
type CreateItemRequest struct {
	Kind                  string  `json:"kind" validate:"required,oneof=service addon"`
	Name                  string  `json:"name" validate:"required,min=1,max=100"`
	SubService            *string `json:"subService,omitempty" validate:"omitempty,min=1,max=100"`
	Description           *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	PricePaise            int64   `json:"pricePaise" validate:"required,min=1"`
	DeliveryDays          int     `json:"deliveryDays" validate:"omitempty,min=1,max=365"`
	SetOfRevisions        int     `json:"setOfRevisions" validate:"omitempty,min=0,max=20"`
	RevisionsDeliveryDays int     `json:"revisionsDeliveryDays" validate:"omitempty,min=1,max=90"`
	AddonKey              *string `json:"addonKey,omitempty" validate:"omitempty,oneof=extra-revision bus-stems multitrack both"`
}

// CreateItemsRequest adds catalog entries in bulk.
type CreateItemsRequest struct {
	Items []CreateItemRequest `json:"items" validate:"required,min=1,max=50,dive"`
}

// UpdateItemRequest updates a catalog entry. Omitted fields keep their value.
type UpdateItemRequest struct {
	Name                  *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	SubService            *string `json:"subService,omitempty" validate:"omitempty,min=1,max=100"`
	Description           *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	PricePaise            *int64  `json:"pricePaise,omitempty" validate:"omitempty,min=1"`
	DeliveryDays          *int    `json:"deliveryDays,omitempty" validate:"omitempty,min=1,max=365"`
	SetOfRevisions        *int    `json:"setOfRevisions,omitempty" validate:"omitempty,min=0,max=20"`
	RevisionsDeliveryDays *int    `json:"revisionsDeliveryDays,omitempty" validate:"omitempty,min=1,max=90"`
}

// ItemResponse represents a catalog entry in API responses.
type ItemResponse struct {
	ID                    uuid.UUID `json:"id"`
	Kind                  string    `json:"kind"`
	Name                  string    `json:"name"`
	SubService            *string   `json:"subService,omitempty"`
	Description           *string   `json:"description,omitempty"`
	PricePaise            int64     `json:"pricePaise"`
	DeliveryDays          int       `json:"deliveryDays"`
	SetOfRevisions        int       `json:"setOfRevisions"`
	RevisionsDeliveryDays int       `json:"revisionsDeliveryDays"`
	AddonKey              *string   `json:"addonKey,omitempty"`
	IsActive              bool      `json:"isActive"`
	CreatedAt             string    `json:"createdAt"`
	UpdatedAt             string    `json:"updatedAt"`
}

// ItemListResponse wraps a list of catalog entries.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Total int            `json:"total"`
}
