package notify

import (
	"context"
	"errors"
	"fmt"

	"mixhouse_backend/internal/email"
	"mixhouse_backend/platform/config"
	"mixhouse_backend/platform/logger"
)

// ErrUnknownTrigger marks a job whose trigger kind has no registry entry.
// The worker treats it as fatal: the job is archived, never retried.
var ErrUnknownTrigger = errors.New("unknown notification trigger")

type sendFunc func(ctx context.Context, job Job) error

// TemplatePair binds a trigger kind to its outgoing emails: Direct goes to
// the job's addressed recipient (customer or engineer), AdminCopy to the
// master mailbox. Either may be nil.
type TemplatePair struct {
	Direct    sendFunc
	AdminCopy sendFunc
}

// Dispatcher resolves a queued job to one or two emails and hands them to
// the mail transport. Each send is attempted independently: one recipient's
// failure never blocks the other's copy. Failures are logged; the dispatch
// only errors (triggering a queue retry) when every attempted send failed.
type Dispatcher struct {
	registry   map[TriggerKind]TemplatePair
	masterMail string
	log        *logger.Logger
}

func NewDispatcher(sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Dispatcher {
	d := &Dispatcher{
		masterMail: cfg.GetMasterMailAddress(),
		log:        log,
	}

	d.registry = map[TriggerKind]TemplatePair{
		TriggerServicePurchase: {
			Direct: func(ctx context.Context, job Job) error {
				return sender.SendServicePurchaseEmail(ctx, job.Email, job.Customer, job.Service, job.AmountPaise)
			},
			AdminCopy: func(ctx context.Context, job Job) error {
				return sender.SendServicePurchaseAdminEmail(ctx, d.masterMail, job.Customer, job.Service, job.AmountPaise)
			},
		},
		TriggerServiceAssign: {
			Direct: func(ctx context.Context, job Job) error {
				return sender.SendServiceAssignEmail(ctx, job.Email, job.Engineer, job.Service, job.Project)
			},
		},
		TriggerServiceReview: {
			Direct: func(ctx context.Context, job Job) error {
				return sender.SendServiceReviewEmail(ctx, job.Email, job.Engineer, job.Service, job.Project)
			},
		},
		TriggerServiceReuploadRequest: {
			Direct: func(ctx context.Context, job Job) error {
				return sender.SendServiceReuploadRequestEmail(ctx, job.Email, job.Customer, job.Service, job.Notes)
			},
		},
		TriggerServiceReupload: {
			Direct: func(ctx context.Context, job Job) error {
				return sender.SendServiceReuploadedEmail(ctx, job.Email, job.Engineer, job.Service, job.Project)
			},
		},
		TriggerServiceSubmitted: {
			Direct: func(ctx context.Context, job Job) error {
				return sender.SendServiceSubmittedEmail(ctx, job.Email, job.Service, job.Project)
			},
		},
		TriggerServiceRejected: {
			Direct: func(ctx context.Context, job Job) error {
				return sender.SendServiceRejectedEmail(ctx, job.Email, job.Engineer, job.Service, job.Notes)
			},
		},
		TriggerServiceResubmission: {
			Direct: func(ctx context.Context, job Job) error {
				return sender.SendServiceResubmissionEmail(ctx, job.Email, job.Service, job.Project)
			},
		},
		TriggerServiceDelivery: {
			Direct: func(ctx context.Context, job Job) error {
				return sender.SendServiceDeliveryEmail(ctx, job.Email, job.Customer, job.Service, job.Project)
			},
		},
		TriggerServiceRevisionRequest: {
			Direct: func(ctx context.Context, job Job) error {
				return sender.SendServiceRevisionRequestEmail(ctx, job.Email, job.Engineer, job.Service, job.Notes)
			},
			AdminCopy: func(ctx context.Context, job Job) error {
				return sender.SendServiceRevisionRequestAdminEmail(ctx, d.masterMail, job.Service, job.Project, job.Notes)
			},
		},
		TriggerServiceRevisionDelivery: {
			Direct: func(ctx context.Context, job Job) error {
				return sender.SendServiceRevisionDeliveryEmail(ctx, job.Email, job.Customer, job.Service, job.Project)
			},
		},
		TriggerServiceComplete: {
			Direct: func(ctx context.Context, job Job) error {
				return sender.SendServiceCompleteEmail(ctx, job.Email, job.Customer, job.Service, job.Project)
			},
			AdminCopy: func(ctx context.Context, job Job) error {
				return sender.SendServiceCompleteAdminEmail(ctx, d.masterMail, job.Service, job.Project)
			},
		},
		TriggerServiceAddonPurchase: {
			Direct: func(ctx context.Context, job Job) error {
				return sender.SendServiceAddonPurchaseEmail(ctx, job.Email, job.Customer, job.Notes, job.AmountPaise)
			},
		},
		TriggerServiceAddonRequest: {
			Direct: func(ctx context.Context, job Job) error {
				return sender.SendServiceAddonRequestEmail(ctx, job.Email, job.Engineer, job.Notes, job.Project)
			},
		},
		TriggerServiceAddonDelivery: {
			Direct: func(ctx context.Context, job Job) error {
				return sender.SendServiceAddonDeliveryEmail(ctx, job.Email, job.Customer, job.Notes, job.Service)
			},
		},
		TriggerContactEnquiry: {
			Direct: func(ctx context.Context, job Job) error {
				return sender.SendContactEnquiryEmail(ctx, d.masterMail, job.Customer, job.Email, job.Notes)
			},
		},
	}

	return d
}

// Registered reports whether a trigger kind has a registry entry.
func (d *Dispatcher) Registered(kind TriggerKind) bool {
	_, ok := d.registry[kind]
	return ok
}

// Dispatch sends the emails for one job. Returns an error only when every
// attempted send failed, or when the trigger kind is unknown.
func (d *Dispatcher) Dispatch(ctx context.Context, job Job) error {
	pair, ok := d.registry[job.Type]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTrigger, job.Type)
	}

	attempts := 0
	var failures []error

	if pair.Direct != nil {
		attempts++
		if err := pair.Direct(ctx, job); err != nil {
			d.log.MailError(string(job.Type), job.Email, err)
			failures = append(failures, err)
		}
	}
	if pair.AdminCopy != nil {
		attempts++
		if err := pair.AdminCopy(ctx, job); err != nil {
			d.log.MailError(string(job.Type), d.masterMail, err)
			failures = append(failures, err)
		}
	}

	if attempts > 0 && len(failures) == attempts {
		return fmt.Errorf("all sends failed for trigger %q: %w", job.Type, failures[0])
	}
	return nil
}
