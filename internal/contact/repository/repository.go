package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Enquiry is a stored contact-form message.
type Enquiry struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Message   string
	CreatedAt time.Time
}

// Repository persists contact enquiries.
type Repository interface {
	Create(ctx context.Context, name, email, message string) (Enquiry, error)
}

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new contact repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// Create stores an enquiry and returns it with its generated ID.
func (r *Repo) Create(ctx context.Context, name, email, message string) (Enquiry, error) {
	query := `
		INSERT INTO contact_enquiries (name, email, message)
		VALUES ($1, $2, $3)
		RETURNING id, name, email, message, created_at`

	var e Enquiry
	err := r.pool.QueryRow(ctx, query, name, email, message).
		Scan(&e.ID, &e.Name, &e.Email, &e.Message, &e.CreatedAt)
	if err != nil {
		return Enquiry{}, fmt.Errorf("create enquiry: %w", err)
	}
	return e, nil
}
