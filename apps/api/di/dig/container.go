package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/fdpfeedback/apps/api/echo"
	"github.com/trezcool/fdpfeedback/core"
	"github.com/trezcool/fdpfeedback/core/feedback"
	emailsvc "github.com/trezcool/fdpfeedback/services/email"
	logsvc "github.com/trezcool/fdpfeedback/services/logger"
	"github.com/trezcool/fdpfeedback/services/metrics"
	"github.com/trezcool/fdpfeedback/storage"
)

type StoreLoggerParam struct {
	dig.In
	Logger core.Logger `name:"storeLogger"`
}

// StoreResult is the opened store and the func releasing it.
type StoreResult struct {
	dig.Out
	Store feedback.Store
	Close storage.CloseFunc
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newStoreLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "STORE : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newStore(conf *core.Config, loggerParam StoreLoggerParam) StoreResult {
	// the sheets client keeps this context for its token source
	store, closeFn, err := storage.Open(context.Background(), conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up %s store: %v", conf.Store.Backend, err), err)
	}
	return StoreResult{Store: store, Close: closeFn}
}

func newCatalog(conf *core.Config, logger core.Logger) feedback.Catalog {
	catalog, err := feedback.LoadCatalog(conf.CatalogFile)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading catalog: %v", err), err)
	}
	return catalog
}

func newRegistry() (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := metrics.Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func newServer(
	conf *core.Config,
	logger core.Logger,
	feedbackSvc *feedback.Service,
	mailSvc core.EmailService,
	validate *validator.Validate,
	translator ut.Translator,
	registry *prometheus.Registry,
) (*echoapi.Server, error) {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:        conf,
		Logger:      logger,
		FeedbackSvc: feedbackSvc,
		MailSvc:     mailSvc,
		Validate:    validate,
		Translator:  translator,
		Registry:    registry,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newStoreLogger, dig.Name("storeLogger")))
	must(c.Provide(newStore))
	must(c.Provide(newCatalog))
	must(c.Provide(emailsvc.NewService))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newRegistry))
	must(c.Provide(feedback.NewService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
