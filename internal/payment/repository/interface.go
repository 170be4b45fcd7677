package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes what a payment buys.
type Kind string

const (
	KindPurchase Kind = "purchase"
	KindAddon    Kind = "addon"
)

// Status is the settlement state of a payment record.
type Status string

const (
	StatusCreated Status = "created"
	StatusPaid    Status = "paid"
	StatusFailed  Status = "failed"
)

// Payment is one gateway payment attempt against a service.
type Payment struct {
	ID            uuid.UUID
	ServiceID     uuid.UUID
	CustomerID    uuid.UUID
	Kind          Kind
	Addon         *string
	OrderID       *string
	PaymentLinkID *string
	ReferenceID   *string
	PaymentID     *string
	Signature     *string
	AmountPaise   int64
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateParams describes a new pending payment.
type CreateParams struct {
	ServiceID     uuid.UUID
	CustomerID    uuid.UUID
	Kind          Kind
	Addon         *string
	OrderID       *string
	PaymentLinkID *string
	ReferenceID   *string
	AmountPaise   int64
}

// Repository stores gateway payment attempts. Settlement is a one-way
// transition: MarkPaid reports whether this call actually flipped the row,
// so duplicate callbacks can be recognized without a second query.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Payment, error)
	GetByOrderID(ctx context.Context, orderID string) (Payment, error)
	GetByReferenceID(ctx context.Context, referenceID string) (Payment, error)
	MarkPaid(ctx context.Context, id uuid.UUID, paymentID, signature string) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID) error
}
