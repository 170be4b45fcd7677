package transport

import "github.com/google/uuid"

// InitiatePurchaseRequest starts a checkout for a catalog service. The price
// and delivery terms are snapshotted server-side from the catalog.
type InitiatePurchaseRequest struct {
	CatalogID   uuid.UUID `json:"catalogId" validate:"required"`
	SubService  *string   `json:"subService,omitempty" validate:"omitempty,min=1,max=100"`
	ProjectName *string   `json:"projectName,omitempty" validate:"omitempty,min=1,max=200"`
}

// PurchaseInitResponse carries everything the checkout widget needs.
type PurchaseInitResponse struct {
	ServiceID   uuid.UUID `json:"serviceId"`
	OrderID     string    `json:"orderId"`
	AmountPaise int64     `json:"amountPaise"`
	Currency    string    `json:"currency"`
	KeyID       string    `json:"keyId"`
}

// AddonInitResponse points the customer at the hosted payment page.
type AddonInitResponse struct {
	ServiceID      uuid.UUID `json:"serviceId"`
	Addon          string    `json:"addon"`
	AmountPaise    int64     `json:"amountPaise"`
	PaymentLinkURL string    `json:"paymentLinkUrl"`
}

// OrderCallbackRequest is the gateway's signed checkout confirmation. Field
// names follow the gateway's wire format.
type OrderCallbackRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

// LinkCallbackRequest is the signed payment-link redirect, bound from the
// query string.
type LinkCallbackRequest struct {
	LinkID      string `form:"razorpay_payment_link_id" validate:"required"`
	ReferenceID string `form:"razorpay_payment_link_reference_id" validate:"required"`
	Status      string `form:"razorpay_payment_link_status" validate:"required"`
	PaymentID   string `form:"razorpay_payment_id" validate:"required"`
	Signature   string `form:"razorpay_signature" validate:"required"`
}
