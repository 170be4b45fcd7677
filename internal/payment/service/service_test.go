package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"mixhouse_backend/internal/payment/gateway"
	"mixhouse_backend/internal/payment/repository"
	"mixhouse_backend/internal/payment/transport"
	servicesrepo "mixhouse_backend/internal/services/repository"
	servicesvc "mixhouse_backend/internal/services/service"
	servicestransport "mixhouse_backend/internal/services/transport"
	"mixhouse_backend/platform/apperr"
	"mixhouse_backend/platform/logger"
)

const testSecret = "test-secret"

type testGatewayConfig struct{}

func (testGatewayConfig) GetGatewayBaseURL() string   { return "https://gateway.test" }
func (testGatewayConfig) GetGatewayKeyID() string     { return "key_test" }
func (testGatewayConfig) GetGatewayKeySecret() string { return testSecret }
func (testGatewayConfig) GetAppBaseURL() string       { return "https://app.mixhouse.test" }

type fakePaymentRepo struct {
	payments map[uuid.UUID]repository.Payment
	created  []repository.CreateParams
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uuid.UUID]repository.Payment)}
}

func (f *fakePaymentRepo) Create(_ context.Context, params repository.CreateParams) (repository.Payment, error) {
	f.created = append(f.created, params)
	p := repository.Payment{
		ID:            uuid.New(),
		ServiceID:     params.ServiceID,
		CustomerID:    params.CustomerID,
		Kind:          params.Kind,
		Addon:         params.Addon,
		OrderID:       params.OrderID,
		PaymentLinkID: params.PaymentLinkID,
		ReferenceID:   params.ReferenceID,
		AmountPaise:   params.AmountPaise,
		Status:        repository.StatusCreated,
	}
	f.payments[p.ID] = p
	return p, nil
}

func (f *fakePaymentRepo) GetByOrderID(_ context.Context, orderID string) (repository.Payment, error) {
	for _, p := range f.payments {
		if p.OrderID != nil && *p.OrderID == orderID {
			return p, nil
		}
	}
	return repository.Payment{}, apperr.NotFound("payment not found")
}

func (f *fakePaymentRepo) GetByReferenceID(_ context.Context, referenceID string) (repository.Payment, error) {
	for _, p := range f.payments {
		if p.ReferenceID != nil && *p.ReferenceID == referenceID {
			return p, nil
		}
	}
	return repository.Payment{}, apperr.NotFound("payment not found")
}

func (f *fakePaymentRepo) MarkPaid(_ context.Context, id uuid.UUID, paymentID, signature string) (bool, error) {
	p, ok := f.payments[id]
	if !ok {
		return false, apperr.NotFound("payment not found")
	}
	if p.Status == repository.StatusPaid {
		return false, nil
	}
	p.Status = repository.StatusPaid
	p.PaymentID = &paymentID
	p.Signature = &signature
	f.payments[id] = p
	return true, nil
}

func (f *fakePaymentRepo) MarkFailed(_ context.Context, id uuid.UUID) error {
	p, ok := f.payments[id]
	if !ok {
		return apperr.NotFound("payment not found")
	}
	if p.Status == repository.StatusCreated {
		p.Status = repository.StatusFailed
		f.payments[id] = p
	}
	return nil
}

var _ repository.Repository = (*fakePaymentRepo)(nil)

type fakeGateway struct {
	orderErr error
	linkErr  error
}

func (f *fakeGateway) CreateOrder(_ context.Context, amountPaise int64, receipt string) (gateway.Order, error) {
	if f.orderErr != nil {
		return gateway.Order{}, f.orderErr
	}
	return gateway.Order{ID: "order_" + receipt[:8], AmountPaise: amountPaise, Currency: "INR"}, nil
}

func (f *fakeGateway) CreatePaymentLink(_ context.Context, amountPaise int64, referenceID, _, _ string) (gateway.PaymentLink, error) {
	if f.linkErr != nil {
		return gateway.PaymentLink{}, f.linkErr
	}
	return gateway.PaymentLink{ID: "plink_1", ShortURL: "https://gateway.test/pay/plink_1", ReferenceID: referenceID}, nil
}

type fakeCatalog struct {
	item  CatalogItem
	price int64
}

func (f *fakeCatalog) Snapshot(_ context.Context, _ uuid.UUID, subService *string) (CatalogItem, error) {
	item := f.item
	if subService != nil {
		item.SubService = subService
	}
	return item, nil
}

func (f *fakeCatalog) AddonPrice(_ context.Context, _ string) (int64, error) {
	return f.price, nil
}

type settlement struct {
	serviceID uuid.UUID
	addon     servicesvc.Addon
	amount    int64
}

type fakeLifecycle struct {
	purchased   []servicesrepo.CreateParams
	settlements []settlement
	addons      []settlement
	serviceID   uuid.UUID
	paid        bool
}

func (f *fakeLifecycle) Purchase(_ context.Context, params servicesrepo.CreateParams) (servicestransport.ServiceResponse, error) {
	f.purchased = append(f.purchased, params)
	return servicestransport.ServiceResponse{ID: f.serviceID, ServiceName: params.ServiceName, PricePaise: params.PricePaise}, nil
}

func (f *fakeLifecycle) GetForCustomer(_ context.Context, _, id uuid.UUID) (servicestransport.ServiceResponse, error) {
	if id != f.serviceID {
		return servicestransport.ServiceResponse{}, apperr.NotFound("service not found")
	}
	return servicestransport.ServiceResponse{ID: id, ServiceName: "Mixing", Paid: f.paid}, nil
}

func (f *fakeLifecycle) SettlePurchase(_ context.Context, id uuid.UUID, _ time.Time) error {
	f.settlements = append(f.settlements, settlement{serviceID: id})
	return nil
}

func (f *fakeLifecycle) SettleAddon(_ context.Context, id uuid.UUID, addon servicesvc.Addon, amountPaise int64) error {
	f.addons = append(f.addons, settlement{serviceID: id, addon: addon, amount: amountPaise})
	return nil
}

func sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func newService(repo *fakePaymentRepo, lifecycle *fakeLifecycle) *Service {
	return New(repo, &fakeGateway{}, &fakeCatalog{
		item: CatalogItem{
			Name:                  "Mixing",
			PricePaise:            499900,
			DeliveryDays:          7,
			SetOfRevisions:        2,
			RevisionsDeliveryDays: 3,
		},
		price: 149900,
	}, lifecycle, testGatewayConfig{}, logger.New("test"))
}

func TestInitiatePurchaseCreatesOrderAndPayment(t *testing.T) {
	repo := newFakePaymentRepo()
	lifecycle := &fakeLifecycle{serviceID: uuid.New()}
	svc := newService(repo, lifecycle)
	customerID := uuid.New()

	resp, err := svc.InitiatePurchase(context.Background(), customerID, transport.InitiatePurchaseRequest{
		CatalogID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("InitiatePurchase: %v", err)
	}
	if resp.ServiceID != lifecycle.serviceID {
		t.Error("response does not carry the created service")
	}
	if resp.AmountPaise != 499900 || resp.Currency != "INR" || resp.KeyID != "key_test" {
		t.Errorf("checkout fields = %+v", resp)
	}
	if len(lifecycle.purchased) != 1 || lifecycle.purchased[0].CustomerID != customerID {
		t.Fatal("service not created through the lifecycle engine")
	}
	if len(repo.created) != 1 || repo.created[0].Kind != repository.KindPurchase || repo.created[0].OrderID == nil {
		t.Fatalf("payment record = %+v, want a purchase with an order id", repo.created)
	}
}

func TestInitiateAddonRequiresPaidService(t *testing.T) {
	repo := newFakePaymentRepo()
	lifecycle := &fakeLifecycle{serviceID: uuid.New(), paid: false}
	svc := newService(repo, lifecycle)

	_, err := svc.InitiateAddon(context.Background(), uuid.New(), lifecycle.serviceID, servicesvc.AddonMultitrack)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindPrecondition {
		t.Fatalf("err = %v, want precondition failure", err)
	}
}

func TestInitiateAddonOpensPaymentLink(t *testing.T) {
	repo := newFakePaymentRepo()
	lifecycle := &fakeLifecycle{serviceID: uuid.New(), paid: true}
	svc := newService(repo, lifecycle)

	resp, err := svc.InitiateAddon(context.Background(), uuid.New(), lifecycle.serviceID, servicesvc.AddonBusStems)
	if err != nil {
		t.Fatalf("InitiateAddon: %v", err)
	}
	if resp.PaymentLinkURL == "" || resp.AmountPaise != 149900 {
		t.Errorf("response = %+v", resp)
	}
	if len(repo.created) != 1 || repo.created[0].Kind != repository.KindAddon {
		t.Fatalf("payment record = %+v, want an addon payment", repo.created)
	}
	wantRef := lifecycle.serviceID.String() + ":bus-stems"
	if repo.created[0].ReferenceID == nil || *repo.created[0].ReferenceID != wantRef {
		t.Errorf("reference = %v, want %q", repo.created[0].ReferenceID, wantRef)
	}
}

func TestOrderCallbackSettlesPurchase(t *testing.T) {
	repo := newFakePaymentRepo()
	serviceID := uuid.New()
	lifecycle := &fakeLifecycle{serviceID: serviceID}
	svc := newService(repo, lifecycle)

	orderID := "order_abc"
	repo.Create(context.Background(), repository.CreateParams{
		ServiceID: serviceID, CustomerID: uuid.New(),
		Kind: repository.KindPurchase, OrderID: &orderID, AmountPaise: 499900,
	})

	req := transport.OrderCallbackRequest{
		OrderID:   orderID,
		PaymentID: "pay_1",
		Signature: sign(orderID + "|pay_1"),
	}
	if err := svc.HandleOrderCallback(context.Background(), req); err != nil {
		t.Fatalf("HandleOrderCallback: %v", err)
	}
	if len(lifecycle.settlements) != 1 || lifecycle.settlements[0].serviceID != serviceID {
		t.Fatalf("settlements = %+v, want one for the service", lifecycle.settlements)
	}
	for _, p := range repo.payments {
		if p.Signature == nil || *p.Signature != req.Signature {
			t.Errorf("signature = %v, want the verified callback signature stored", p.Signature)
		}
	}
}

func TestOrderCallbackRejectsBadSignature(t *testing.T) {
	repo := newFakePaymentRepo()
	lifecycle := &fakeLifecycle{serviceID: uuid.New()}
	svc := newService(repo, lifecycle)

	orderID := "order_abc"
	repo.Create(context.Background(), repository.CreateParams{
		ServiceID: lifecycle.serviceID, CustomerID: uuid.New(),
		Kind: repository.KindPurchase, OrderID: &orderID, AmountPaise: 499900,
	})

	err := svc.HandleOrderCallback(context.Background(), transport.OrderCallbackRequest{
		OrderID:   orderID,
		PaymentID: "pay_1",
		Signature: "forged",
	})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindUnauthorized {
		t.Fatalf("err = %v, want unauthorized", err)
	}
	if len(lifecycle.settlements) != 0 {
		t.Error("forged callback settled a payment")
	}
}

func TestOrderCallbackDuplicateIsNoOp(t *testing.T) {
	repo := newFakePaymentRepo()
	serviceID := uuid.New()
	lifecycle := &fakeLifecycle{serviceID: serviceID}
	svc := newService(repo, lifecycle)

	orderID := "order_abc"
	repo.Create(context.Background(), repository.CreateParams{
		ServiceID: serviceID, CustomerID: uuid.New(),
		Kind: repository.KindPurchase, OrderID: &orderID, AmountPaise: 499900,
	})

	req := transport.OrderCallbackRequest{
		OrderID:   orderID,
		PaymentID: "pay_1",
		Signature: sign(orderID + "|pay_1"),
	}
	if err := svc.HandleOrderCallback(context.Background(), req); err != nil {
		t.Fatalf("first callback: %v", err)
	}
	if err := svc.HandleOrderCallback(context.Background(), req); err != nil {
		t.Fatalf("second callback: %v", err)
	}
	if len(lifecycle.settlements) != 1 {
		t.Errorf("settlements = %d, want 1 after a duplicate callback", len(lifecycle.settlements))
	}
}

func TestLinkCallbackSettlesAddon(t *testing.T) {
	repo := newFakePaymentRepo()
	serviceID := uuid.New()
	lifecycle := &fakeLifecycle{serviceID: serviceID, paid: true}
	svc := newService(repo, lifecycle)

	addonName := "multitrack"
	reference := serviceID.String() + ":multitrack"
	linkID := "plink_1"
	repo.Create(context.Background(), repository.CreateParams{
		ServiceID: serviceID, CustomerID: uuid.New(),
		Kind: repository.KindAddon, Addon: &addonName,
		PaymentLinkID: &linkID, ReferenceID: &reference, AmountPaise: 149900,
	})

	location, err := svc.HandleLinkCallback(context.Background(), transport.LinkCallbackRequest{
		LinkID:      linkID,
		ReferenceID: reference,
		Status:      "paid",
		PaymentID:   "pay_9",
		Signature:   sign(linkID + "|" + reference + "|paid|pay_9"),
	})
	if err != nil {
		t.Fatalf("HandleLinkCallback: %v", err)
	}
	if location != "https://app.mixhouse.test/payments/complete" {
		t.Errorf("redirect = %q", location)
	}
	if len(lifecycle.addons) != 1 {
		t.Fatalf("addon settlements = %+v, want one", lifecycle.addons)
	}
	got := lifecycle.addons[0]
	if got.serviceID != serviceID || got.addon != servicesvc.AddonMultitrack || got.amount != 149900 {
		t.Errorf("settlement = %+v", got)
	}
}

func TestLinkCallbackSettlesBothExportsAddon(t *testing.T) {
	repo := newFakePaymentRepo()
	serviceID := uuid.New()
	lifecycle := &fakeLifecycle{serviceID: serviceID, paid: true}
	svc := newService(repo, lifecycle)

	resp, err := svc.InitiateAddon(context.Background(), uuid.New(), serviceID, servicesvc.AddonBothExports)
	if err != nil {
		t.Fatalf("InitiateAddon: %v", err)
	}
	if resp.Addon != "both" {
		t.Errorf("addon = %q, want %q", resp.Addon, "both")
	}
	reference := serviceID.String() + ":both"
	if repo.created[0].ReferenceID == nil || *repo.created[0].ReferenceID != reference {
		t.Fatalf("reference = %v, want %q", repo.created[0].ReferenceID, reference)
	}

	_, err = svc.HandleLinkCallback(context.Background(), transport.LinkCallbackRequest{
		LinkID:      "plink_1",
		ReferenceID: reference,
		Status:      "paid",
		PaymentID:   "pay_9",
		Signature:   sign("plink_1|" + reference + "|paid|pay_9"),
	})
	if err != nil {
		t.Fatalf("HandleLinkCallback: %v", err)
	}
	if len(lifecycle.addons) != 1 || lifecycle.addons[0].addon != servicesvc.AddonBothExports {
		t.Fatalf("addon settlements = %+v, want one for the combined exports", lifecycle.addons)
	}
}

func TestLinkCallbackFailedStatus(t *testing.T) {
	repo := newFakePaymentRepo()
	serviceID := uuid.New()
	lifecycle := &fakeLifecycle{serviceID: serviceID}
	svc := newService(repo, lifecycle)

	addonName := "bus-stems"
	reference := serviceID.String() + ":bus-stems"
	linkID := "plink_2"
	created, _ := repo.Create(context.Background(), repository.CreateParams{
		ServiceID: serviceID, CustomerID: uuid.New(),
		Kind: repository.KindAddon, Addon: &addonName,
		PaymentLinkID: &linkID, ReferenceID: &reference, AmountPaise: 149900,
	})

	location, err := svc.HandleLinkCallback(context.Background(), transport.LinkCallbackRequest{
		LinkID:      linkID,
		ReferenceID: reference,
		Status:      "expired",
		PaymentID:   "pay_9",
		Signature:   sign(linkID + "|" + reference + "|expired|pay_9"),
	})
	if err != nil {
		t.Fatalf("HandleLinkCallback: %v", err)
	}
	if location != "https://app.mixhouse.test/payments/failed" {
		t.Errorf("redirect = %q", location)
	}
	if len(lifecycle.addons) != 0 {
		t.Error("failed payment settled an addon")
	}
	if repo.payments[created.ID].Status != repository.StatusFailed {
		t.Errorf("status = %q, want failed", repo.payments[created.ID].Status)
	}
}

func TestParseLinkReference(t *testing.T) {
	serviceID := uuid.New()
	id, addon, err := ParseLinkReference(serviceID.String() + ":extra-revision")
	if err != nil {
		t.Fatalf("ParseLinkReference: %v", err)
	}
	if id != serviceID || addon != servicesvc.AddonExtraRevision {
		t.Errorf("got %v %q", id, addon)
	}

	if _, _, err := ParseLinkReference("garbage"); err == nil {
		t.Error("malformed reference accepted")
	}
}
