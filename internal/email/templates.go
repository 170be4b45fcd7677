package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title   string
	Heading string
}

type purchaseEmailData struct {
	baseEmailData
	CustomerName    string
	ServiceName     string
	AmountFormatted string
}

type assignEmailData struct {
	baseEmailData
	EngineerName string
	ServiceName  string
	ProjectName  string
}

type reuploadRequestEmailData struct {
	baseEmailData
	CustomerName string
	ServiceName  string
	Notes        string
}

type submissionEmailData struct {
	baseEmailData
	ServiceName string
	ProjectName string
}

type rejectionEmailData struct {
	baseEmailData
	EngineerName string
	ServiceName  string
	Notes        string
}

type deliveryEmailData struct {
	baseEmailData
	CustomerName string
	ServiceName  string
	ProjectName  string
}

type revisionRequestEmailData struct {
	baseEmailData
	EngineerName string
	ServiceName  string
	ProjectName  string
	Notes        string
}

type addonEmailData struct {
	baseEmailData
	CustomerName    string
	EngineerName    string
	AddonName       string
	ServiceName     string
	ProjectName     string
	AmountFormatted string
}

type enquiryEmailData struct {
	baseEmailData
	CustomerName string
	ReplyTo      string
	Notes        string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

// formatCurrencyINR formats a paise amount as rupees.
func formatCurrencyINR(paise int64) string {
	return fmt.Sprintf("₹%.2f", float64(paise)/100)
}
