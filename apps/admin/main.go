package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/fdpfeedback/assets"
	"github.com/trezcool/fdpfeedback/core"
	"github.com/trezcool/fdpfeedback/core/feedback"
	emailsvc "github.com/trezcool/fdpfeedback/services/email"
	logsvc "github.com/trezcool/fdpfeedback/services/logger"
	"github.com/trezcool/fdpfeedback/storage"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	catalog, err := feedback.LoadCatalog(conf.CatalogFile)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading catalog: %v", err), err)
	}

	// set up store
	store, closeStore, err := storage.Open(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up %s store: %v", conf.Store.Backend, err), err)
	}

	// set up services
	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())
	if err = core.ParseEmailTemplates(assets.FS, assets.EmailTemplatesDir, conf); err != nil {
		logger.Fatal(fmt.Sprintf("parsing email templates: %v", err), err)
	}

	mailSvc := emailsvc.NewService(conf, logger)

	// start CLI
	cli := commandLine{
		conf:    conf,
		svc:     feedback.NewService(store, catalog, validate, mailSvc, conf, logger),
		mailSvc: mailSvc,
		out:     os.Stdout,
	}
	err = cli.run(os.Args)
	if w, ok := mailSvc.(emailsvc.Waiter); ok {
		w.Wait()
	}
	if cErr := closeStore(); cErr != nil {
		logger.Error(fmt.Sprintf("closing store: %v", cErr), cErr)
	}
	if err != nil && err != errHelp {
		logger.Error(fmt.Sprintf("error: %v", err), err)
	}
	logger.Flush()
	if err != nil {
		os.Exit(1)
	}
}
