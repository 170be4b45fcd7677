package service

import (
	"context"

	"github.com/google/uuid"

	"mixhouse_backend/internal/catalog/repository"
	paymentsvc "mixhouse_backend/internal/payment/service"
	"mixhouse_backend/platform/apperr"
	"mixhouse_backend/platform/logger"
)

// Service provides business logic for the sellable catalog.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new catalog service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// GetByID retrieves a catalog entry. Inactive entries are hidden from
// non-staff callers.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, includeInactive bool) (repository.Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.Item{}, err
	}
	if !item.IsActive && !includeInactive {
		return repository.Item{}, apperr.NotFound("catalog item not found")
	}
	return item, nil
}

// ListServices retrieves the sellable services.
func (s *Service) ListServices(ctx context.Context) ([]repository.Item, error) {
	return s.repo.ListActive(ctx, repository.KindService)
}

// ListAddons retrieves the sellable add-ons.
func (s *Service) ListAddons(ctx context.Context) ([]repository.Item, error) {
	return s.repo.ListActive(ctx, repository.KindAddon)
}

// ListAll retrieves the full catalog including inactive entries.
func (s *Service) ListAll(ctx context.Context) ([]repository.Item, error) {
	return s.repo.List(ctx)
}

// AddItems inserts a batch of catalog entries. Add-ons must carry their
// settlement key; services must carry delivery terms.
func (s *Service) AddItems(ctx context.Context, params []repository.CreateItemParams) ([]repository.Item, error) {
	for _, p := range params {
		switch p.Kind {
		case repository.KindAddon:
			if p.AddonKey == nil {
				return nil, apperr.BadRequest("add-on catalog entries need an addon key")
			}
		case repository.KindService:
			if p.DeliveryDays <= 0 {
				return nil, apperr.BadRequest("service catalog entries need delivery days")
			}
		default:
			return nil, apperr.BadRequest("unknown catalog kind")
		}
	}
	return s.repo.CreateMany(ctx, params)
}

// Update updates a catalog entry.
func (s *Service) Update(ctx context.Context, params repository.UpdateItemParams) (repository.Item, error) {
	return s.repo.Update(ctx, params)
}

// SetActive toggles whether an entry is sellable.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	return s.repo.SetActive(ctx, id, isActive)
}

// Snapshot freezes the catalog terms for a purchase. Part of the payment
// module's Catalog dependency.
func (s *Service) Snapshot(ctx context.Context, id uuid.UUID, subService *string) (paymentsvc.CatalogItem, error) {
	item, err := s.GetByID(ctx, id, false)
	if err != nil {
		return paymentsvc.CatalogItem{}, err
	}
	if item.Kind != repository.KindService {
		return paymentsvc.CatalogItem{}, apperr.BadRequest("only services can be purchased directly")
	}

	snapshot := paymentsvc.CatalogItem{
		Name:                  item.Name,
		SubService:            item.SubService,
		PricePaise:            item.PricePaise,
		DeliveryDays:          item.DeliveryDays,
		SetOfRevisions:        item.SetOfRevisions,
		RevisionsDeliveryDays: item.RevisionsDeliveryDays,
	}
	if subService != nil {
		snapshot.SubService = subService
	}
	return snapshot, nil
}

// AddonPrice resolves the current price of an add-on by its settlement key.
// Part of the payment module's Catalog dependency.
func (s *Service) AddonPrice(ctx context.Context, addon string) (int64, error) {
	item, err := s.repo.GetAddonByKey(ctx, addon)
	if err != nil {
		return 0, err
	}
	return item.PricePaise, nil
}

// Compile-time check that the catalog satisfies the payment dependency.
var _ paymentsvc.Catalog = (*Service)(nil)
