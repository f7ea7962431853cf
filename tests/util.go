package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/fdpfeedback/assets"
	"github.com/trezcool/fdpfeedback/core"
	"github.com/trezcool/fdpfeedback/core/feedback"
	emailsvc "github.com/trezcool/fdpfeedback/services/email"
	logsvc "github.com/trezcool/fdpfeedback/services/logger"
)

// NewLogger returns a logger that neither prints nor reports.
func NewLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)
	return logger
}

// NewValidator returns a validator and its translator, ready for use.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	return validate, translator
}

// Deps holds a feedback.Service and the test doubles it was built with.
type Deps struct {
	Conf    *core.Config
	Logger  core.Logger
	MailSvc *emailsvc.ConsoleServiceMock
	Svc     *feedback.Service
}

// NewService returns a feedback.Service backed by store, using the test config.
func NewService(store feedback.Store) Deps {
	conf := core.NewTestConfig()
	logger := NewLogger(conf)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	validate, _ := NewValidator()
	if err := core.ParseEmailTemplates(assets.FS, assets.EmailTemplatesDir, conf); err != nil {
		panic(err)
	}
	return Deps{
		Conf:    conf,
		Logger:  logger,
		MailSvc: mailSvc,
		Svc:     feedback.NewService(store, feedback.DefaultCatalog(), validate, mailSvc, conf, logger),
	}
}

// Ratings returns NumQuestions ratings all set to rating.
func Ratings(rating int) []int {
	ratings := make([]int, feedback.NumQuestions)
	for i := range ratings {
		ratings[i] = rating
	}
	return ratings
}

// NewResponse builds a valid stored response. A single rating is repeated for every question.
func NewResponse(name string, ts time.Time, ratings ...int) feedback.Response {
	if len(ratings) == 1 {
		ratings = Ratings(ratings[0])
	} else if len(ratings) == 0 {
		ratings = feedback.DefaultRatings()
	}
	return feedback.Response{
		Timestamp:  ts.In(feedback.IST).Truncate(time.Second),
		Name:       name,
		Department: "Computer Science",
		Mobile:     "9876543210",
		Email:      "faculty@college.edu",
		Ratings:    ratings,
	}
}

// CreateResponse appends a response to store and returns it.
func CreateResponse(t *testing.T, store feedback.Store, name string, ts time.Time, ratings ...int) feedback.Response {
	r := NewResponse(name, ts, ratings...)
	if err := store.Append(context.Background(), r); err != nil {
		t.Fatalf("CreateResponse() failed: %v", err)
	}
	return r
}
