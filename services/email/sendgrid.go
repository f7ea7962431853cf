package emailsvc

import (
	"context"
	"fmt"
	"net/http"
	"net/mail"
	"sync"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/trezcool/fdpfeedback/core"
)

var (
	host     = "https://api.sendgrid.com"
	endpoint = "/v3/mail/send"
)

type sendgridService struct {
	conf       *core.Config
	from       *sgmail.Email
	subjPrefix string
	logger     core.Logger
	wg         *sync.WaitGroup
}

var _ core.EmailService = (*sendgridService)(nil)

func NewSendgridService(conf *core.Config, logger core.Logger) core.EmailService {
	from := conf.Mail.FromAddress()
	return &sendgridService{
		conf:       conf,
		from:       sgmail.NewEmail(from.Name, from.Address),
		subjPrefix: "[" + conf.AppName + "] ",
		logger:     logger,
		wg:         new(sync.WaitGroup),
	}
}

func (svc sendgridService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		msg := msg
		svc.wg.Add(1)
		go func() {
			defer svc.wg.Done()
			if err := msg.Render(svc.conf); err != nil {
				svc.logger.Error(fmt.Sprintf("rendering email: %v", err), err)
				return
			}
			if msg.Sendable() {
				svc.send(*msg)
			}
		}()
	}
}

// Wait blocks until every message handed to SendMessages was sent or failed.
func (svc sendgridService) Wait() { svc.wg.Wait() }

func sgEmails(addrs []mail.Address) []*sgmail.Email {
	emails := make([]*sgmail.Email, 0, len(addrs))
	for _, addr := range addrs {
		emails = append(emails, sgmail.NewEmail(addr.Name, addr.Address))
	}
	return emails
}

// prepare builds the v3 payload. Messages are tagged with the app name and their template
// so exports and acknowledgements can be told apart in SendGrid's activity feed.
func (svc sendgridService) prepare(msg core.EmailMessage) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = svc.subjPrefix + msg.Subject
	p.AddTos(sgEmails(msg.To)...)
	p.AddCCs(sgEmails(msg.Cc)...)
	p.AddBCCs(sgEmails(msg.Bcc)...)

	m := sgmail.NewV3Mail()
	m.SetFrom(svc.from)
	m.AddPersonalizations(p)
	m.AddCategories(svc.conf.AppName)
	if msg.TemplateName != "" {
		m.AddCategories(msg.TemplateName)
	}

	text := msg.TextContent
	if text == "" {
		text = msg.Subject
	}
	m.AddContent(sgmail.NewContent("text/plain", text))
	if msg.HTMLContent != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLContent))
	}

	for _, at := range msg.Attachments {
		a := sgmail.NewAttachment()
		a.SetContent(at.Content.String())
		a.SetType(at.ContentType)
		a.SetFilename(at.Filename)
		a.SetDisposition("attachment")
		m.AddAttachment(a)
	}
	return m
}

func (svc sendgridService) send(msg core.EmailMessage) {
	req := sendgrid.GetRequest(svc.conf.SendgridApiKey, endpoint, host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(svc.prepare(msg))

	res, err := sendgrid.API(req)
	switch {
	case err != nil:
		svc.logger.Error(fmt.Sprintf("sending %q email: %v", msg.TemplateName, err), err)
	case res.StatusCode >= http.StatusBadRequest:
		svc.logger.Error(
			fmt.Sprintf("sending %q email - status: %d", msg.TemplateName, res.StatusCode),
			map[string]interface{}{"body": res.Body, "recipients": len(msg.To)},
		)
	}
}

// Waiter is implemented by the services of this package; Wait returns once pending messages are handled.
type Waiter interface {
	Wait()
}

// WaitContext waits for the pending messages of svc until ctx is done.
// Services that do not send asynchronously return immediately.
func WaitContext(ctx context.Context, svc core.EmailService) error {
	w, ok := svc.(Waiter)
	if !ok {
		return nil
	}

	done := make(chan struct{})
	go func() {
		w.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for pending emails")
	}
}

// NewService picks the console service in debug mode and SendGrid otherwise.
func NewService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return NewConsoleService(conf, logger)
	}
	return NewSendgridService(conf, logger)
}
