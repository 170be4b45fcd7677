package notify

import (
	"context"
	"errors"
	"testing"

	"mixhouse_backend/platform/logger"
)

type fakeSender struct {
	calls    []string
	failWith map[string]error
}

func (f *fakeSender) record(method, to string) error {
	f.calls = append(f.calls, method+"->"+to)
	if err, ok := f.failWith[method]; ok {
		return err
	}
	return nil
}

func (f *fakeSender) SendServicePurchaseEmail(_ context.Context, to, _, _ string, _ int64) error {
	return f.record("purchase", to)
}

func (f *fakeSender) SendServicePurchaseAdminEmail(_ context.Context, to, _, _ string, _ int64) error {
	return f.record("purchase_admin", to)
}

func (f *fakeSender) SendServiceAssignEmail(_ context.Context, to, _, _, _ string) error {
	return f.record("assign", to)
}

func (f *fakeSender) SendServiceReviewEmail(_ context.Context, to, _, _, _ string) error {
	return f.record("review", to)
}

func (f *fakeSender) SendServiceReuploadRequestEmail(_ context.Context, to, _, _, _ string) error {
	return f.record("reupload_request", to)
}

func (f *fakeSender) SendServiceReuploadedEmail(_ context.Context, to, _, _, _ string) error {
	return f.record("reuploaded", to)
}

func (f *fakeSender) SendServiceSubmittedEmail(_ context.Context, to, _, _ string) error {
	return f.record("submitted", to)
}

func (f *fakeSender) SendServiceRejectedEmail(_ context.Context, to, _, _, _ string) error {
	return f.record("rejected", to)
}

func (f *fakeSender) SendServiceResubmissionEmail(_ context.Context, to, _, _ string) error {
	return f.record("resubmission", to)
}

func (f *fakeSender) SendServiceDeliveryEmail(_ context.Context, to, _, _, _ string) error {
	return f.record("delivery", to)
}

func (f *fakeSender) SendServiceRevisionRequestEmail(_ context.Context, to, _, _, _ string) error {
	return f.record("revision_request", to)
}

func (f *fakeSender) SendServiceRevisionRequestAdminEmail(_ context.Context, to, _, _, _ string) error {
	return f.record("revision_request_admin", to)
}

func (f *fakeSender) SendServiceRevisionDeliveryEmail(_ context.Context, to, _, _, _ string) error {
	return f.record("revision_delivery", to)
}

func (f *fakeSender) SendServiceCompleteEmail(_ context.Context, to, _, _, _ string) error {
	return f.record("complete", to)
}

func (f *fakeSender) SendServiceCompleteAdminEmail(_ context.Context, to, _, _ string) error {
	return f.record("complete_admin", to)
}

func (f *fakeSender) SendServiceAddonPurchaseEmail(_ context.Context, to, _, _ string, _ int64) error {
	return f.record("addon_purchase", to)
}

func (f *fakeSender) SendServiceAddonRequestEmail(_ context.Context, to, _, _, _ string) error {
	return f.record("addon_request", to)
}

func (f *fakeSender) SendServiceAddonDeliveryEmail(_ context.Context, to, _, _, _ string) error {
	return f.record("addon_delivery", to)
}

func (f *fakeSender) SendContactEnquiryEmail(_ context.Context, to, _, _, _ string) error {
	return f.record("enquiry", to)
}

type testNotifyConfig struct{}

func (testNotifyConfig) GetAppBaseURL() string        { return "http://localhost:4200" }
func (testNotifyConfig) GetMasterMailAddress() string { return "master@mixhouse.test" }

func newTestDispatcher(sender *fakeSender) *Dispatcher {
	return NewDispatcher(sender, testNotifyConfig{}, logger.New("development"))
}

func TestDispatcherRegistryCoversEveryTrigger(t *testing.T) {
	d := newTestDispatcher(&fakeSender{})
	for _, kind := range AllTriggers {
		if !d.Registered(kind) {
			t.Errorf("trigger %q has no registry entry", kind)
		}
	}
}

func TestDispatchUnknownTrigger(t *testing.T) {
	d := newTestDispatcher(&fakeSender{})
	err := d.Dispatch(context.Background(), Job{Type: TriggerKind("servicemystery")})
	if !errors.Is(err, ErrUnknownTrigger) {
		t.Fatalf("Dispatch returned %v, want ErrUnknownTrigger", err)
	}
}

func TestDispatchSendsBothCopiesForPurchase(t *testing.T) {
	sender := &fakeSender{}
	d := newTestDispatcher(sender)

	job := Job{
		Type:        TriggerServicePurchase,
		Email:       "customer@example.com",
		Customer:    "Asha",
		Service:     "Stereo Mix",
		AmountPaise: 499900,
	}
	if err := d.Dispatch(context.Background(), job); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	want := []string{
		"purchase->customer@example.com",
		"purchase_admin->master@mixhouse.test",
	}
	if len(sender.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", sender.calls, want)
	}
	for i := range want {
		if sender.calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, sender.calls[i], want[i])
		}
	}
}

func TestDispatchOneRecipientFailureDoesNotBlockTheOther(t *testing.T) {
	sender := &fakeSender{failWith: map[string]error{"purchase": errors.New("bounce")}}
	d := newTestDispatcher(sender)

	err := d.Dispatch(context.Background(), Job{
		Type:     TriggerServicePurchase,
		Email:    "customer@example.com",
		Customer: "Asha",
	})
	if err != nil {
		t.Fatalf("partial failure must not fail the dispatch: %v", err)
	}

	found := false
	for _, call := range sender.calls {
		if call == "purchase_admin->master@mixhouse.test" {
			found = true
		}
	}
	if !found {
		t.Error("admin copy was not attempted after customer send failed")
	}
}

func TestDispatchAllSendsFailedReturnsError(t *testing.T) {
	sender := &fakeSender{failWith: map[string]error{
		"purchase":       errors.New("bounce"),
		"purchase_admin": errors.New("bounce"),
	}}
	d := newTestDispatcher(sender)

	err := d.Dispatch(context.Background(), Job{Type: TriggerServicePurchase, Email: "c@example.com"})
	if err == nil {
		t.Fatal("total failure must error so the queue retries the job")
	}
}

func TestDispatchSingleRecipientTriggers(t *testing.T) {
	tests := []struct {
		kind     TriggerKind
		email    string
		wantCall string
	}{
		{TriggerServiceAssign, "eng@mixhouse.test", "assign->eng@mixhouse.test"},
		{TriggerServiceReview, "eng@mixhouse.test", "review->eng@mixhouse.test"},
		{TriggerServiceReuploadRequest, "c@example.com", "reupload_request->c@example.com"},
		{TriggerServiceReupload, "eng@mixhouse.test", "reuploaded->eng@mixhouse.test"},
		{TriggerServiceSubmitted, "master@mixhouse.test", "submitted->master@mixhouse.test"},
		{TriggerServiceRejected, "eng@mixhouse.test", "rejected->eng@mixhouse.test"},
		{TriggerServiceResubmission, "master@mixhouse.test", "resubmission->master@mixhouse.test"},
		{TriggerServiceDelivery, "c@example.com", "delivery->c@example.com"},
		{TriggerServiceRevisionDelivery, "c@example.com", "revision_delivery->c@example.com"},
		{TriggerServiceAddonPurchase, "c@example.com", "addon_purchase->c@example.com"},
		{TriggerServiceAddonRequest, "eng@mixhouse.test", "addon_request->eng@mixhouse.test"},
		{TriggerServiceAddonDelivery, "c@example.com", "addon_delivery->c@example.com"},
		{TriggerContactEnquiry, "visitor@example.com", "enquiry->master@mixhouse.test"},
	}

	for _, tc := range tests {
		sender := &fakeSender{}
		d := newTestDispatcher(sender)
		if err := d.Dispatch(context.Background(), Job{Type: tc.kind, Email: tc.email}); err != nil {
			t.Errorf("%s: Dispatch failed: %v", tc.kind, err)
			continue
		}
		if len(sender.calls) == 0 || sender.calls[0] != tc.wantCall {
			t.Errorf("%s: calls = %v, want first %q", tc.kind, sender.calls, tc.wantCall)
		}
	}
}
