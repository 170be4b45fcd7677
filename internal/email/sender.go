// Package email renders and delivers the transactional emails triggered by
// service lifecycle transitions, payment settlements and contact enquiries.
package email

import (
	"context"

	"mixhouse_backend/platform/config"
)

// Sender is the mail transport consumed by the notification dispatcher.
// One method per outgoing email shape; the dispatcher decides which
// method(s) a trigger fans out to.
type Sender interface {
	SendServicePurchaseEmail(ctx context.Context, toEmail, customerName, serviceName string, amountPaise int64) error
	SendServicePurchaseAdminEmail(ctx context.Context, toEmail, customerName, serviceName string, amountPaise int64) error
	SendServiceAssignEmail(ctx context.Context, toEmail, engineerName, serviceName, projectName string) error
	SendServiceReviewEmail(ctx context.Context, toEmail, engineerName, serviceName, projectName string) error
	SendServiceReuploadRequestEmail(ctx context.Context, toEmail, customerName, serviceName, notes string) error
	SendServiceReuploadedEmail(ctx context.Context, toEmail, engineerName, serviceName, projectName string) error
	SendServiceSubmittedEmail(ctx context.Context, toEmail, serviceName, projectName string) error
	SendServiceRejectedEmail(ctx context.Context, toEmail, engineerName, serviceName, notes string) error
	SendServiceResubmissionEmail(ctx context.Context, toEmail, serviceName, projectName string) error
	SendServiceDeliveryEmail(ctx context.Context, toEmail, customerName, serviceName, projectName string) error
	SendServiceRevisionRequestEmail(ctx context.Context, toEmail, engineerName, serviceName, notes string) error
	SendServiceRevisionRequestAdminEmail(ctx context.Context, toEmail, serviceName, projectName, notes string) error
	SendServiceRevisionDeliveryEmail(ctx context.Context, toEmail, customerName, serviceName, projectName string) error
	SendServiceCompleteEmail(ctx context.Context, toEmail, customerName, serviceName, projectName string) error
	SendServiceCompleteAdminEmail(ctx context.Context, toEmail, serviceName, projectName string) error
	SendServiceAddonPurchaseEmail(ctx context.Context, toEmail, customerName, addonName string, amountPaise int64) error
	SendServiceAddonRequestEmail(ctx context.Context, toEmail, engineerName, addonName, projectName string) error
	SendServiceAddonDeliveryEmail(ctx context.Context, toEmail, customerName, addonName, serviceName string) error
	SendContactEnquiryEmail(ctx context.Context, toEmail, customerName, replyTo, notes string) error
}

// NewSender picks the mail transport from configuration. Without SMTP
// settings every email is silently discarded, which keeps local development
// running without a mail server.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}

// NoopSender discards every email. Used when email delivery is disabled.
type NoopSender struct{}

func (NoopSender) SendServicePurchaseEmail(ctx context.Context, toEmail, customerName, serviceName string, amountPaise int64) error {
	return nil
}

func (NoopSender) SendServicePurchaseAdminEmail(ctx context.Context, toEmail, customerName, serviceName string, amountPaise int64) error {
	return nil
}

func (NoopSender) SendServiceAssignEmail(ctx context.Context, toEmail, engineerName, serviceName, projectName string) error {
	return nil
}

func (NoopSender) SendServiceReviewEmail(ctx context.Context, toEmail, engineerName, serviceName, projectName string) error {
	return nil
}

func (NoopSender) SendServiceReuploadRequestEmail(ctx context.Context, toEmail, customerName, serviceName, notes string) error {
	return nil
}

func (NoopSender) SendServiceReuploadedEmail(ctx context.Context, toEmail, engineerName, serviceName, projectName string) error {
	return nil
}

func (NoopSender) SendServiceSubmittedEmail(ctx context.Context, toEmail, serviceName, projectName string) error {
	return nil
}

func (NoopSender) SendServiceRejectedEmail(ctx context.Context, toEmail, engineerName, serviceName, notes string) error {
	return nil
}

func (NoopSender) SendServiceResubmissionEmail(ctx context.Context, toEmail, serviceName, projectName string) error {
	return nil
}

func (NoopSender) SendServiceDeliveryEmail(ctx context.Context, toEmail, customerName, serviceName, projectName string) error {
	return nil
}

func (NoopSender) SendServiceRevisionRequestEmail(ctx context.Context, toEmail, engineerName, serviceName, notes string) error {
	return nil
}

func (NoopSender) SendServiceRevisionRequestAdminEmail(ctx context.Context, toEmail, serviceName, projectName, notes string) error {
	return nil
}

func (NoopSender) SendServiceRevisionDeliveryEmail(ctx context.Context, toEmail, customerName, serviceName, projectName string) error {
	return nil
}

func (NoopSender) SendServiceCompleteEmail(ctx context.Context, toEmail, customerName, serviceName, projectName string) error {
	return nil
}

func (NoopSender) SendServiceCompleteAdminEmail(ctx context.Context, toEmail, serviceName, projectName string) error {
	return nil
}

func (NoopSender) SendServiceAddonPurchaseEmail(ctx context.Context, toEmail, customerName, addonName string, amountPaise int64) error {
	return nil
}

func (NoopSender) SendServiceAddonRequestEmail(ctx context.Context, toEmail, engineerName, addonName, projectName string) error {
	return nil
}

func (NoopSender) SendServiceAddonDeliveryEmail(ctx context.Context, toEmail, customerName, addonName, serviceName string) error {
	return nil
}

func (NoopSender) SendContactEnquiryEmail(ctx context.Context, toEmail, customerName, replyTo, notes string) error {
	return nil
}
