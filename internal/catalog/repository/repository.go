package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mixhouse_backend/platform/apperr"
)

const itemNotFoundMessage = "catalog item not found"

const itemColumns = `
	id, kind, name, sub_service, description, price_paise,
	delivery_days, set_of_revisions, revisions_delivery_days,
	addon_key, is_active, created_at, updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// GetByID retrieves a catalog item by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Item, error) {
	query := `SELECT ` + itemColumns + ` FROM service_catalog WHERE id = $1`

	item, err := scanItem(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, apperr.NotFound(itemNotFoundMessage)
		}
		return Item{}, fmt.Errorf("get catalog item: %w", err)
	}
	return item, nil
}

// GetAddonByKey retrieves an active add-on by its settlement key.
func (r *Repo) GetAddonByKey(ctx context.Context, key string) (Item, error) {
	query := `SELECT ` + itemColumns + ` FROM service_catalog
		WHERE kind = $1 AND addon_key = $2 AND is_active = true`

	item, err := scanItem(r.pool.QueryRow(ctx, query, string(KindAddon), key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, apperr.NotFound(itemNotFoundMessage)
		}
		return Item{}, fmt.Errorf("get addon by key: %w", err)
	}
	return item, nil
}

// List retrieves the full catalog, inactive entries included.
func (r *Repo) List(ctx context.Context) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM service_catalog ORDER BY kind, name, sub_service`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// ListActive retrieves the sellable entries of one kind.
func (r *Repo) ListActive(ctx context.Context, kind Kind) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM service_catalog
		WHERE kind = $1 AND is_active = true
		ORDER BY name, sub_service`

	rows, err := r.pool.Query(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list active catalog: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// CreateMany inserts a batch of catalog entries in one transaction.
func (r *Repo) CreateMany(ctx context.Context, params []CreateItemParams) ([]Item, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("create catalog items: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO service_catalog (kind, name, sub_service, description, price_paise,
			delivery_days, set_of_revisions, revisions_delivery_days, addon_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + itemColumns

	items := make([]Item, 0, len(params))
	for _, p := range params {
		item, err := scanItem(tx.QueryRow(ctx, query,
			string(p.Kind), p.Name, p.SubService, p.Description, p.PricePaise,
			p.DeliveryDays, p.SetOfRevisions, p.RevisionsDeliveryDays, p.AddonKey,
		))
		if err != nil {
			return nil, fmt.Errorf("create catalog item %q: %w", p.Name, err)
		}
		items = append(items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("create catalog items: commit: %w", err)
	}
	return items, nil
}

// Update updates a catalog entry.
func (r *Repo) Update(ctx context.Context, params UpdateItemParams) (Item, error) {
	query := `
		UPDATE service_catalog SET
			name = COALESCE($2, name),
			sub_service = COALESCE($3, sub_service),
			description = COALESCE($4, description),
			price_paise = COALESCE($5, price_paise),
			delivery_days = COALESCE($6, delivery_days),
			set_of_revisions = COALESCE($7, set_of_revisions),
			revisions_delivery_days = COALESCE($8, revisions_delivery_days),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + itemColumns

	item, err := scanItem(r.pool.QueryRow(ctx, query,
		params.ID, params.Name, params.SubService, params.Description, params.PricePaise,
		params.DeliveryDays, params.SetOfRevisions, params.RevisionsDeliveryDays,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, apperr.NotFound(itemNotFoundMessage)
		}
		return Item{}, fmt.Errorf("update catalog item: %w", err)
	}
	return item, nil
}

// SetActive toggles whether an entry is sellable.
func (r *Repo) SetActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	query := `UPDATE service_catalog SET is_active = $2, updated_at = now() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, isActive)
	if err != nil {
		return fmt.Errorf("set catalog item active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(itemNotFoundMessage)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (Item, error) {
	var item Item
	var kind string
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&item.ID, &kind, &item.Name, &item.SubService, &item.Description, &item.PricePaise,
		&item.DeliveryDays, &item.SetOfRevisions, &item.RevisionsDeliveryDays,
		&item.AddonKey, &item.IsActive, &createdAt, &updatedAt,
	)
	if err != nil {
		return Item{}, err
	}

	item.Kind = Kind(kind)
	item.CreatedAt = createdAt.Format(time.RFC3339)
	item.UpdatedAt = updatedAt.Format(time.RFC3339)
	return item, nil
}

func scanItems(rows pgx.Rows) ([]Item, error) {
	var results []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan catalog item: %w", err)
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog items: %w", err)
	}
	return results, nil
}
