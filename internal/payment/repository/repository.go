package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mixhouse_backend/platform/apperr"
)

const paymentNotFoundMessage = "payment not found"

const paymentColumns = `
	id, service_id, customer_id, kind, addon,
	order_id, payment_link_id, reference_id, payment_id, signature,
	amount_paise, status, created_at, updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new payments repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// Create inserts a new pending payment.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Payment, error) {
	query := `
		INSERT INTO payments (service_id, customer_id, kind, addon, order_id, payment_link_id, reference_id, amount_paise, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + paymentColumns

	p, err := scanPayment(r.pool.QueryRow(ctx, query,
		params.ServiceID, params.CustomerID, string(params.Kind), params.Addon,
		params.OrderID, params.PaymentLinkID, params.ReferenceID,
		params.AmountPaise, string(StatusCreated),
	))
	if err != nil {
		return Payment{}, fmt.Errorf("create payment: %w", err)
	}
	return p, nil
}

// GetByOrderID retrieves a payment by its gateway order ID.
func (r *Repo) GetByOrderID(ctx context.Context, orderID string) (Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1`

	p, err := scanPayment(r.pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payment{}, apperr.NotFound(paymentNotFoundMessage)
		}
		return Payment{}, fmt.Errorf("get payment by order id: %w", err)
	}
	return p, nil
}

// GetByReferenceID retrieves a payment by its payment-link reference.
func (r *Repo) GetByReferenceID(ctx context.Context, referenceID string) (Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE reference_id = $1`

	p, err := scanPayment(r.pool.QueryRow(ctx, query, referenceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payment{}, apperr.NotFound(paymentNotFoundMessage)
		}
		return Payment{}, fmt.Errorf("get payment by reference id: %w", err)
	}
	return p, nil
}

// MarkPaid settles a payment, recording the verified gateway signature. The
// guarded update only fires while the row is still unpaid; the return value
// reports whether this call settled it.
func (r *Repo) MarkPaid(ctx context.Context, id uuid.UUID, paymentID, signature string) (bool, error) {
	query := `
		UPDATE payments SET status = $4, payment_id = $2, signature = $3, updated_at = now()
		WHERE id = $1 AND status <> $4`

	tag, err := r.pool.Exec(ctx, query, id, paymentID, signature, string(StatusPaid))
	if err != nil {
		return false, fmt.Errorf("mark payment paid: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM payments WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("mark payment paid: check exists: %w", err)
	}
	if !exists {
		return false, apperr.NotFound(paymentNotFoundMessage)
	}
	return false, nil
}

// MarkFailed records a failed or cancelled payment attempt.
func (r *Repo) MarkFailed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE payments SET status = $2, updated_at = now() WHERE id = $1 AND status = $3`

	if _, err := r.pool.Exec(ctx, query, id, string(StatusFailed), string(StatusCreated)); err != nil {
		return fmt.Errorf("mark payment failed: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (Payment, error) {
	var p Payment
	var kind, status string

	err := row.Scan(
		&p.ID, &p.ServiceID, &p.CustomerID, &kind, &p.Addon,
		&p.OrderID, &p.PaymentLinkID, &p.ReferenceID, &p.PaymentID, &p.Signature,
		&p.AmountPaise, &status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return Payment{}, err
	}
	p.Kind = Kind(kind)
	p.Status = Status(status)
	return p, nil
}
