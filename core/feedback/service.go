package feedback

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/fdpfeedback/core"
)

type (
	// Store is the append-only table of responses.
	//
	// Append makes one new row visible to subsequent reads, or fails with a
	// core.StoreError of kind core.Unwritable leaving no partial row behind.
	// ReadAll returns every row in append order, an empty slice when there is none,
	// or a core.StoreError of kind core.Unreadable.
	Store interface {
		Append(ctx context.Context, r Response) error
		ReadAll(ctx context.Context) ([]Response, error)
	}

	Service struct {
		store    Store
		catalog  Catalog
		validate *validator.Validate
		mailSvc  core.EmailService
		conf     *core.Config
		logger   core.Logger
	}
)

var nowFunc = time.Now // mockable

func NewService(
	store Store,
	catalog Catalog,
	validate *validator.Validate,
	mailSvc core.EmailService,
	conf *core.Config,
	logger core.Logger,
) *Service {
	return &Service{
		store:    store,
		catalog:  catalog,
		validate: validate,
		mailSvc:  mailSvc,
		conf:     conf,
		logger:   logger,
	}
}

func (svc *Service) Catalog() Catalog { return svc.catalog }

func (svc *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if svc.conf.Store.Timeout > 0 {
		return context.WithTimeout(ctx, svc.conf.Store.Timeout)
	}
	return context.WithCancel(ctx)
}

// Submit validates nr, stamps it with the current IST time and appends it to the store.
// Invalid input never reaches the store.
func (svc *Service) Submit(ctx context.Context, nr NewResponse) (Response, error) {
	if err := nr.Validate(svc.validate); err != nil {
		return Response{}, err
	}

	r := Response{
		Timestamp:  nowFunc().In(IST).Truncate(time.Second),
		Name:       nr.Name,
		Department: nr.Department,
		Mobile:     nr.Mobile,
		Email:      nr.Email,
		Ratings:    append([]int(nil), nr.Ratings...),
	}

	ctx, cancel := svc.withTimeout(ctx)
	defer cancel()
	if err := svc.store.Append(ctx, r); err != nil {
		return Response{}, errors.Wrap(err, "appending response")
	}

	if svc.conf.Mail.SendAcknowledgement {
		svc.acknowledge(r)
	}
	return r, nil
}

// Restore appends an already timestamped response, e.g. one imported from another store.
func (svc *Service) Restore(ctx context.Context, r Response) error {
	nr := NewResponse{
		Name:       r.Name,
		Department: r.Department,
		Mobile:     r.Mobile,
		Email:      r.Email,
		Ratings:    r.Ratings,
	}
	if err := nr.Validate(svc.validate); err != nil {
		return err
	}
	if r.Timestamp.IsZero() {
		return core.NewValidationError(nil, core.FieldError{Field: "timestamp", Error: "this field is required"})
	}
	r.Name, r.Department, r.Mobile, r.Email = nr.Name, nr.Department, nr.Mobile, nr.Email

	ctx, cancel := svc.withTimeout(ctx)
	defer cancel()
	return errors.Wrap(svc.store.Append(ctx, r), "appending response")
}

// Responses returns every stored response in submission order.
func (svc *Service) Responses(ctx context.Context) ([]Response, error) {
	ctx, cancel := svc.withTimeout(ctx)
	defer cancel()

	responses, err := svc.store.ReadAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "reading responses")
	}
	return responses, nil
}

// Summary recomputes the summary from the whole store. It returns ErrNoData when the store is empty.
func (svc *Service) Summary(ctx context.Context) (Summary, error) {
	responses, err := svc.Responses(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(responses)
}

type (
	ackItem struct {
		Number   int
		Question string
		Rating   string
	}

	ackData struct {
		Name       string
		Department string
		Title      string
		Timestamp  string
		Items      []ackItem
	}
)

func (svc *Service) acknowledge(r Response) {
	items := make([]ackItem, 0, len(r.Ratings))
	for i, rating := range r.Ratings {
		items = append(items, ackItem{
			Number:   i + 1,
			Question: svc.catalog.Question(i + 1),
			Rating:   fmt.Sprintf("%d (%s)", rating, svc.catalog.ScaleLabel(rating)),
		})
	}

	to, err := mail.ParseAddress(r.Email)
	if err != nil {
		// email is free text; nothing to send to
		svc.logger.Debug(fmt.Sprintf("skipping acknowledgement: %v", err))
		return
	}
	to.Name = r.Name

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{*to},
		Subject:      "Thank you for your feedback",
		TemplateName: "feedback_received",
		TemplateData: ackData{
			Name:       r.Name,
			Department: r.Department,
			Title:      svc.catalog.Subtitle(),
			Timestamp:  r.FormattedTimestamp(),
			Items:      items,
		},
	})
}
