package repository

import (
	"context"

	"github.com/google/uuid"
)

// Kind separates full services from purchasable add-ons.
type Kind string

const (
	KindService Kind = "service"
	KindAddon   Kind = "addon"
)

// Item is one sellable catalog entry. Services carry delivery terms;
// add-ons carry the addon key the payment module settles against.
type Item struct {
	ID                    uuid.UUID
	Kind                  Kind
	Name                  string
	SubService            *string
	Description           *string
	PricePaise            int64
	DeliveryDays          int
	SetOfRevisions        int
	RevisionsDeliveryDays int
	AddonKey              *string
	IsActive              bool
	CreatedAt             string
	UpdatedAt             string
}

// CreateItemParams contains data for creating a catalog entry.
type CreateItemParams struct {
	Kind                  Kind
	Name                  string
	SubService            *string
	Description           *string
	PricePaise            int64
	DeliveryDays          int
	SetOfRevisions        int
	RevisionsDeliveryDays int
	AddonKey              *string
}

// UpdateItemParams contains data for updating a catalog entry. Nil fields
// are left unchanged.
type UpdateItemParams struct {
	ID                    uuid.UUID
	Name                  *string
	SubService            *string
	Description           *string
	PricePaise            *int64
	DeliveryDays          *int
	SetOfRevisions        *int
	RevisionsDeliveryDays *int
}

// Repository provides catalog persistence.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Item, error)
	GetAddonByKey(ctx context.Context, key string) (Item, error)
	List(ctx context.Context) ([]Item, error)
	ListActive(ctx context.Context, kind Kind) ([]Item, error)
	CreateMany(ctx context.Context, params []CreateItemParams) ([]Item, error)
	Update(ctx context.Context, params UpdateItemParams) (Item, error)
	SetActive(ctx context.Context, id uuid.UUID, isActive bool) error
}
