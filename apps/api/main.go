package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // /debug/pprof

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	dig_container "github.com/trezcool/fdpfeedback/apps/api/di/dig"
	echoapi "github.com/trezcool/fdpfeedback/apps/api/echo"
	"github.com/trezcool/fdpfeedback/assets"
	"github.com/trezcool/fdpfeedback/core"
	emailsvc "github.com/trezcool/fdpfeedback/services/email"
	"github.com/trezcool/fdpfeedback/storage"
)

func main() {
	c := dig_container.New()

	must(c.Invoke(func(
		conf *core.Config,
		apiLogger core.Logger,
		storeLoggerParam dig_container.StoreLoggerParam,
		closeStore storage.CloseFunc,
		validate *validator.Validate,
		translator ut.Translator,
		mailSvc core.EmailService,
		server *echoapi.Server,
	) {
		// =========================================================================
		// Initialize App

		apiLogger.Info(fmt.Sprintf("Application initializing : version %q : store %q", conf.Build, conf.Store.Backend))

		core.InitValidators(validate, translator)
		if err := core.ParseEmailTemplates(assets.FS, assets.EmailTemplatesDir, conf); err != nil {
			apiLogger.Fatal(fmt.Sprintf("parsing email templates: %v", err), err)
		}

		storeLogger := storeLoggerParam.Logger
		defer func() {
			if err := closeStore(); err != nil {
				storeLogger.Fatal("Failed to close", err)
			}
		}()
		if f, ok := apiLogger.(interface{ Flush() }); ok {
			defer f.Flush()
		}
		defer apiLogger.Info("Application stopped")

		// =========================================================================
		// Start Debug Service
		//
		// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
		// /debug/vars - Added to the default mux by importing the expvar package.

		// Expose important info under /debug/vars.
		expvar.NewString("build").Set(conf.Build)
		expvar.NewString("env").Set(conf.Env)
		expvar.NewString("store").Set(conf.Store.Backend)

		go func() {
			if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
				apiLogger.Error(fmt.Sprintf("debug server closed: %v", err), err)
			}
		}()

		// =========================================================================
		// Start API Service

		go func() {
			server.Start()
		}()

		// =========================================================================
		// Shutdown

		select {
		case err := <-server.Errors():
			apiLogger.Fatal(fmt.Sprintf("server error: %v", err), err)

		case sig := <-server.ShutdownSignal():
			apiLogger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

			// give outstanding requests a deadline for completion
			ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
			defer cancel()

			// asking listener to shut down and shed load
			if err := server.Shutdown(ctx); err != nil {
				apiLogger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

				if err = server.Close(); err != nil {
					apiLogger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
				}
			}

			// acknowledgements of the last submissions are still in flight
			if err := emailsvc.WaitContext(ctx, mailSvc); err != nil {
				apiLogger.Warn(fmt.Sprintf("pending emails dropped: %v", err), err)
			}
		}
	}))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
