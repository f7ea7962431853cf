package export

import (
	"bytes"
	"net/mail"
	"time"

	"github.com/trezcool/fdpfeedback/core"
	"github.com/trezcool/fdpfeedback/core/feedback"
)

// Email templates
const (
	BundleTemplate    = "export_bundle"
	ResponsesTemplate = "export_responses"
)

// BundleFilename names the bundle after its generation time, e.g. feedback-20240101-093000.zip.
func BundleFilename(generatedAt time.Time) string {
	return "feedback-" + generatedAt.In(feedback.IST).Format("20060102-150405") + ".zip"
}

type exportMailData struct {
	Title       string
	Count       int
	GeneratedAt string
}

type attachment struct {
	content     []byte
	filename    string
	contentType string
}

func newExportMessage(to mail.Address, tmpl, subject string, at attachment, count int, catalog feedback.Catalog, generatedAt time.Time) (*core.EmailMessage, error) {
	msg := &core.EmailMessage{
		To:           []mail.Address{to},
		Subject:      subject,
		TemplateName: tmpl,
		TemplateData: exportMailData{
			Title:       catalog.Subtitle(),
			Count:       count,
			GeneratedAt: generatedAt.In(feedback.IST).Format(feedback.TimestampLayout),
		},
	}
	if err := msg.Attach(bytes.NewReader(at.content), at.filename, at.contentType); err != nil {
		return nil, err
	}
	return msg, nil
}

// NewBundleMessage returns the email carrying bundle as an attachment.
func NewBundleMessage(to mail.Address, bundle []byte, count int, catalog feedback.Catalog, generatedAt time.Time) (*core.EmailMessage, error) {
	at := attachment{content: bundle, filename: BundleFilename(generatedAt), contentType: "application/zip"}
	return newExportMessage(to, BundleTemplate, "Feedback export", at, count, catalog, generatedAt)
}

// NewResponsesMessage returns the email carrying the raw responses CSV as an attachment.
func NewResponsesMessage(to mail.Address, responsesCSV []byte, count int, catalog feedback.Catalog, generatedAt time.Time) (*core.EmailMessage, error) {
	at := attachment{content: responsesCSV, filename: ResponsesFile, contentType: "text/csv"}
	return newExportMessage(to, ResponsesTemplate, "Feedback responses", at, count, catalog, generatedAt)
}
