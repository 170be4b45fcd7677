package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"mixhouse_backend/internal/payment/gateway"
	"mixhouse_backend/internal/payment/repository"
	"mixhouse_backend/internal/payment/transport"
	servicesrepo "mixhouse_backend/internal/services/repository"
	servicesvc "mixhouse_backend/internal/services/service"
	servicestransport "mixhouse_backend/internal/services/transport"
	"mixhouse_backend/platform/apperr"
	"mixhouse_backend/platform/config"
	"mixhouse_backend/platform/logger"
)

// CatalogItem is the catalog snapshot taken at purchase time.
type CatalogItem struct {
	Name                  string
	SubService            *string
	PricePaise            int64
	DeliveryDays          int
	SetOfRevisions        int
	RevisionsDeliveryDays int
}

// Catalog resolves prices and delivery terms for sellable items.
type Catalog interface {
	Snapshot(ctx context.Context, id uuid.UUID, subService *string) (CatalogItem, error)
	AddonPrice(ctx context.Context, addon string) (int64, error)
}

// Lifecycle is the slice of the services engine the settlement path needs.
// All stage movement and notification fan-out stays in the engine; this
// module only decides when a payment counts as settled.
type Lifecycle interface {
	Purchase(ctx context.Context, params servicesrepo.CreateParams) (servicestransport.ServiceResponse, error)
	GetForCustomer(ctx context.Context, customerID, id uuid.UUID) (servicestransport.ServiceResponse, error)
	SettlePurchase(ctx context.Context, id uuid.UUID, paidAt time.Time) error
	SettleAddon(ctx context.Context, id uuid.UUID, addon servicesvc.Addon, amountPaise int64) error
}

// Service handles payment initiation and gateway callbacks.
type Service struct {
	repo      repository.Repository
	gw        gateway.Gateway
	catalog   Catalog
	lifecycle Lifecycle
	secret    string
	keyID     string
	appURL    string
	log       *logger.Logger
}

// New creates the payment service.
func New(repo repository.Repository, gw gateway.Gateway, catalog Catalog, lifecycle Lifecycle, cfg config.GatewayConfig, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		gw:        gw,
		catalog:   catalog,
		lifecycle: lifecycle,
		secret:    cfg.GetGatewayKeySecret(),
		keyID:     cfg.GetGatewayKeyID(),
		appURL:    cfg.GetAppBaseURL(),
		log:       log,
	}
}

// InitiatePurchase snapshots the catalog item, creates the unpaid service,
// and opens a checkout order for it.
func (s *Service) InitiatePurchase(ctx context.Context, customerID uuid.UUID, req transport.InitiatePurchaseRequest) (transport.PurchaseInitResponse, error) {
	item, err := s.catalog.Snapshot(ctx, req.CatalogID, req.SubService)
	if err != nil {
		return transport.PurchaseInitResponse{}, err
	}

	svc, err := s.lifecycle.Purchase(ctx, servicesrepo.CreateParams{
		CustomerID:            customerID,
		ServiceName:           item.Name,
		SubService:            item.SubService,
		ProjectName:           req.ProjectName,
		PricePaise:            item.PricePaise,
		DeliveryDays:          item.DeliveryDays,
		SetOfRevisions:        item.SetOfRevisions,
		RevisionsDeliveryDays: item.RevisionsDeliveryDays,
	})
	if err != nil {
		return transport.PurchaseInitResponse{}, err
	}

	order, err := s.gw.CreateOrder(ctx, item.PricePaise, svc.ID.String())
	if err != nil {
		return transport.PurchaseInitResponse{}, apperr.Wrap(apperr.KindInternal, "failed to open checkout order", err)
	}

	if _, err := s.repo.Create(ctx, repository.CreateParams{
		ServiceID:   svc.ID,
		CustomerID:  customerID,
		Kind:        repository.KindPurchase,
		OrderID:     &order.ID,
		AmountPaise: item.PricePaise,
	}); err != nil {
		return transport.PurchaseInitResponse{}, err
	}
	s.log.PaymentEvent("order_created", order.ID, "", true)

	return transport.PurchaseInitResponse{
		ServiceID:   svc.ID,
		OrderID:     order.ID,
		AmountPaise: order.AmountPaise,
		Currency:    order.Currency,
		KeyID:       s.keyID,
	}, nil
}

// InitiateAddon opens a hosted payment page for an add-on on one of the
// customer's services. The link reference encodes the service and add-on so
// the callback can settle without extra state.
func (s *Service) InitiateAddon(ctx context.Context, customerID, serviceID uuid.UUID, addon servicesvc.Addon) (transport.AddonInitResponse, error) {
	if !servicesvc.KnownAddon(addon) {
		return transport.AddonInitResponse{}, apperr.BadRequest(fmt.Sprintf("unknown add-on %q", addon))
	}
	svc, err := s.lifecycle.GetForCustomer(ctx, customerID, serviceID)
	if err != nil {
		return transport.AddonInitResponse{}, err
	}
	if !svc.Paid {
		return transport.AddonInitResponse{}, apperr.Precondition("add-ons can only be bought for a paid service")
	}

	price, err := s.catalog.AddonPrice(ctx, string(addon))
	if err != nil {
		return transport.AddonInitResponse{}, err
	}

	referenceID := linkReference(serviceID, addon)
	link, err := s.gw.CreatePaymentLink(ctx, price, referenceID,
		fmt.Sprintf("%s for %s", addon.DisplayName(), svc.ServiceName),
		s.appURL+"/api/v1/payment/link-callback")
	if err != nil {
		return transport.AddonInitResponse{}, apperr.Wrap(apperr.KindInternal, "failed to open payment link", err)
	}

	addonName := string(addon)
	if _, err := s.repo.Create(ctx, repository.CreateParams{
		ServiceID:     serviceID,
		CustomerID:    customerID,
		Kind:          repository.KindAddon,
		Addon:         &addonName,
		PaymentLinkID: &link.ID,
		ReferenceID:   &referenceID,
		AmountPaise:   price,
	}); err != nil {
		return transport.AddonInitResponse{}, err
	}
	s.log.PaymentEvent("payment_link_created", link.ID, "", true)

	return transport.AddonInitResponse{
		ServiceID:      serviceID,
		Addon:          string(addon),
		AmountPaise:    price,
		PaymentLinkURL: link.ShortURL,
	}, nil
}

// HandleOrderCallback settles a checkout payment. The signature is checked
// before anything is read; a replayed callback verifies, finds the payment
// already settled, and changes nothing.
func (s *Service) HandleOrderCallback(ctx context.Context, req transport.OrderCallbackRequest) error {
	if !gateway.VerifyOrderSignature(req.OrderID, req.PaymentID, req.Signature, s.secret) {
		s.log.PaymentEvent("callback_rejected", req.OrderID, req.PaymentID, false)
		return apperr.Unauthorized("invalid payment signature")
	}

	payment, err := s.repo.GetByOrderID(ctx, req.OrderID)
	if err != nil {
		return err
	}

	settled, err := s.repo.MarkPaid(ctx, payment.ID, req.PaymentID, req.Signature)
	if err != nil {
		return err
	}
	if !settled {
		s.log.PaymentEvent("callback_duplicate", req.OrderID, req.PaymentID, true)
		return nil
	}
	s.log.PaymentEvent("callback_settled", req.OrderID, req.PaymentID, true)

	return s.settle(ctx, payment)
}

// HandleLinkCallback settles a payment-link payment from the signed
// redirect. Returns the URL the payer should land on.
func (s *Service) HandleLinkCallback(ctx context.Context, req transport.LinkCallbackRequest) (string, error) {
	if !gateway.VerifyLinkSignature(req.LinkID, req.ReferenceID, req.Status, req.PaymentID, req.Signature, s.secret) {
		s.log.PaymentEvent("link_callback_rejected", req.LinkID, req.PaymentID, false)
		return "", apperr.Unauthorized("invalid payment signature")
	}

	payment, err := s.repo.GetByReferenceID(ctx, req.ReferenceID)
	if err != nil {
		return "", err
	}

	if req.Status != "paid" {
		if err := s.repo.MarkFailed(ctx, payment.ID); err != nil {
			return "", err
		}
		s.log.PaymentEvent("link_callback_failed", req.LinkID, req.PaymentID, false)
		return s.appURL + "/payments/failed", nil
	}

	settled, err := s.repo.MarkPaid(ctx, payment.ID, req.PaymentID, req.Signature)
	if err != nil {
		return "", err
	}
	if settled {
		s.log.PaymentEvent("link_callback_settled", req.LinkID, req.PaymentID, true)
		if err := s.settle(ctx, payment); err != nil {
			return "", err
		}
	} else {
		s.log.PaymentEvent("link_callback_duplicate", req.LinkID, req.PaymentID, true)
	}
	return s.appURL + "/payments/complete", nil
}

// settle routes a freshly paid payment into the lifecycle engine.
func (s *Service) settle(ctx context.Context, payment repository.Payment) error {
	switch payment.Kind {
	case repository.KindPurchase:
		return s.lifecycle.SettlePurchase(ctx, payment.ServiceID, time.Now().UTC())
	case repository.KindAddon:
		if payment.Addon == nil {
			return apperr.Internal("addon payment without an addon")
		}
		return s.lifecycle.SettleAddon(ctx, payment.ServiceID, servicesvc.Addon(*payment.Addon), payment.AmountPaise)
	}
	return apperr.Internal(fmt.Sprintf("unknown payment kind %q", payment.Kind))
}

func linkReference(serviceID uuid.UUID, addon servicesvc.Addon) string {
	return serviceID.String() + ":" + string(addon)
}

// ParseLinkReference splits a payment-link reference back into its parts.
func ParseLinkReference(reference string) (uuid.UUID, servicesvc.Addon, error) {
	parts := strings.SplitN(reference, ":", 2)
	if len(parts) != 2 {
		return uuid.Nil, "", fmt.Errorf("malformed link reference %q", reference)
	}
	id, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("malformed link reference %q: %w", reference, err)
	}
	return id, servicesvc.Addon(parts[1]), nil
}
