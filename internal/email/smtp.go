package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements the Sender interface over a direct SMTP connection
// via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendServicePurchaseEmail(ctx context.Context, toEmail, customerName, serviceName string, amountPaise int64) error {
	content, err := renderEmailTemplate("service_purchase.html", purchaseEmailData{
		baseEmailData:   baseEmailData{Title: "Purchase confirmed", Heading: "Thank you for your purchase"},
		CustomerName:    customerName,
		ServiceName:     serviceName,
		AmountFormatted: formatCurrencyINR(amountPaise),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectServicePurchase, content)
}

func (s *SMTPSender) SendServicePurchaseAdminEmail(ctx context.Context, toEmail, customerName, serviceName string, amountPaise int64) error {
	content, err := renderEmailTemplate("service_purchase_admin.html", purchaseEmailData{
		baseEmailData:   baseEmailData{Title: "New purchase", Heading: "A new service was purchased"},
		CustomerName:    customerName,
		ServiceName:     serviceName,
		AmountFormatted: formatCurrencyINR(amountPaise),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectServicePurchaseAdminFmt, customerName), content)
}

func (s *SMTPSender) SendServiceAssignEmail(ctx context.Context, toEmail, engineerName, serviceName, projectName string) error {
	content, err := renderEmailTemplate("service_assign.html", assignEmailData{
		baseEmailData: baseEmailData{Title: "New assignment", Heading: "A project has been assigned to you"},
		EngineerName:  engineerName,
		ServiceName:   serviceName,
		ProjectName:   projectName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectServiceAssignFmt, serviceName), content)
}

func (s *SMTPSender) SendServiceReviewEmail(ctx context.Context, toEmail, engineerName, serviceName, projectName string) error {
	content, err := renderEmailTemplate("service_review.html", assignEmailData{
		baseEmailData: baseEmailData{Title: "Files approved", Heading: "Customer files passed review"},
		EngineerName:  engineerName,
		ServiceName:   serviceName,
		ProjectName:   projectName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectServiceReviewFmt, serviceName), content)
}

func (s *SMTPSender) SendServiceReuploadRequestEmail(ctx context.Context, toEmail, customerName, serviceName, notes string) error {
	content, err := renderEmailTemplate("service_reupload_request.html", reuploadRequestEmailData{
		baseEmailData: baseEmailData{Title: "Re-upload needed", Heading: "Please re-upload your files"},
		CustomerName:  customerName,
		ServiceName:   serviceName,
		Notes:         notes,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectServiceReuploadRequest, content)
}

func (s *SMTPSender) SendServiceReuploadedEmail(ctx context.Context, toEmail, engineerName, serviceName, projectName string) error {
	content, err := renderEmailTemplate("service_reuploaded.html", assignEmailData{
		baseEmailData: baseEmailData{Title: "Files re-uploaded", Heading: "The customer re-uploaded their files"},
		EngineerName:  engineerName,
		ServiceName:   serviceName,
		ProjectName:   projectName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectServiceReuploadedFmt, serviceName), content)
}

func (s *SMTPSender) SendServiceSubmittedEmail(ctx context.Context, toEmail, serviceName, projectName string) error {
	content, err := renderEmailTemplate("service_submitted.html", submissionEmailData{
		baseEmailData: baseEmailData{Title: "Submitted for review", Heading: "A delivery is awaiting internal review"},
		ServiceName:   serviceName,
		ProjectName:   projectName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectServiceSubmittedFmt, serviceName), content)
}

func (s *SMTPSender) SendServiceRejectedEmail(ctx context.Context, toEmail, engineerName, serviceName, notes string) error {
	content, err := renderEmailTemplate("service_rejected.html", rejectionEmailData{
		baseEmailData: baseEmailData{Title: "Review feedback", Heading: "The delivery needs more work"},
		EngineerName:  engineerName,
		ServiceName:   serviceName,
		Notes:         notes,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectServiceRejectedFmt, serviceName), content)
}

func (s *SMTPSender) SendServiceResubmissionEmail(ctx context.Context, toEmail, serviceName, projectName string) error {
	content, err := renderEmailTemplate("service_resubmission.html", submissionEmailData{
		baseEmailData: baseEmailData{Title: "Resubmitted", Heading: "A reworked delivery is awaiting internal review"},
		ServiceName:   serviceName,
		ProjectName:   projectName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectServiceResubmissionFmt, serviceName), content)
}

func (s *SMTPSender) SendServiceDeliveryEmail(ctx context.Context, toEmail, customerName, serviceName, projectName string) error {
	content, err := renderEmailTemplate("service_delivery.html", deliveryEmailData{
		baseEmailData: baseEmailData{Title: "Project delivered", Heading: "Your project is ready"},
		CustomerName:  customerName,
		ServiceName:   serviceName,
		ProjectName:   projectName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectServiceDeliveryFmt, projectName), content)
}

func (s *SMTPSender) SendServiceRevisionRequestEmail(ctx context.Context, toEmail, engineerName, serviceName, notes string) error {
	content, err := renderEmailTemplate("service_revision_request.html", revisionRequestEmailData{
		baseEmailData: baseEmailData{Title: "Revision requested", Heading: "The customer requested a revision"},
		EngineerName:  engineerName,
		ServiceName:   serviceName,
		Notes:         notes,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectServiceRevisionRequest, content)
}

func (s *SMTPSender) SendServiceRevisionRequestAdminEmail(ctx context.Context, toEmail, serviceName, projectName, notes string) error {
	content, err := renderEmailTemplate("service_revision_request_admin.html", revisionRequestEmailData{
		baseEmailData: baseEmailData{Title: "Revision requested", Heading: "A revision was requested"},
		ServiceName:   serviceName,
		ProjectName:   projectName,
		Notes:         notes,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectServiceRevisionRequest, content)
}

func (s *SMTPSender) SendServiceRevisionDeliveryEmail(ctx context.Context, toEmail, customerName, serviceName, projectName string) error {
	content, err := renderEmailTemplate("service_revision_delivery.html", deliveryEmailData{
		baseEmailData: baseEmailData{Title: "Revision delivered", Heading: "Your revision is ready"},
		CustomerName:  customerName,
		ServiceName:   serviceName,
		ProjectName:   projectName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectServiceRevisionDelivery, content)
}

func (s *SMTPSender) SendServiceCompleteEmail(ctx context.Context, toEmail, customerName, serviceName, projectName string) error {
	content, err := renderEmailTemplate("service_complete.html", deliveryEmailData{
		baseEmailData: baseEmailData{Title: "Project completed", Heading: "Thank you for working with us"},
		CustomerName:  customerName,
		ServiceName:   serviceName,
		ProjectName:   projectName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectServiceCompleteFmt, projectName), content)
}

func (s *SMTPSender) SendServiceCompleteAdminEmail(ctx context.Context, toEmail, serviceName, projectName string) error {
	content, err := renderEmailTemplate("service_complete_admin.html", submissionEmailData{
		baseEmailData: baseEmailData{Title: "Project completed", Heading: "A project was marked completed"},
		ServiceName:   serviceName,
		ProjectName:   projectName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectServiceCompleteFmt, projectName), content)
}

func (s *SMTPSender) SendServiceAddonPurchaseEmail(ctx context.Context, toEmail, customerName, addonName string, amountPaise int64) error {
	content, err := renderEmailTemplate("service_addon_purchase.html", addonEmailData{
		baseEmailData:   baseEmailData{Title: "Add-on confirmed", Heading: "Thank you for your add-on purchase"},
		CustomerName:    customerName,
		AddonName:       addonName,
		AmountFormatted: formatCurrencyINR(amountPaise),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectServiceAddonPurchase, content)
}

func (s *SMTPSender) SendServiceAddonRequestEmail(ctx context.Context, toEmail, engineerName, addonName, projectName string) error {
	content, err := renderEmailTemplate("service_addon_request.html", addonEmailData{
		baseEmailData: baseEmailData{Title: "Add-on purchased", Heading: "The customer purchased an add-on"},
		EngineerName:  engineerName,
		AddonName:     addonName,
		ProjectName:   projectName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectServiceAddonRequestFmt, projectName), content)
}

func (s *SMTPSender) SendServiceAddonDeliveryEmail(ctx context.Context, toEmail, customerName, addonName, serviceName string) error {
	content, err := renderEmailTemplate("service_addon_delivery.html", addonEmailData{
		baseEmailData: baseEmailData{Title: "Add-on delivered", Heading: "Your add-on files are ready"},
		CustomerName:  customerName,
		AddonName:     addonName,
		ServiceName:   serviceName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectServiceAddonDeliveryFmt, serviceName), content)
}

func (s *SMTPSender) SendContactEnquiryEmail(ctx context.Context, toEmail, customerName, replyTo, notes string) error {
	content, err := renderEmailTemplate("contact_enquiry.html", enquiryEmailData{
		baseEmailData: baseEmailData{Title: "Contact enquiry", Heading: "A visitor left a message"},
		CustomerName:  customerName,
		ReplyTo:       replyTo,
		Notes:         notes,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectContactEnquiry, content)
}
