package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trezcool/fdpfeedback/core"
	"github.com/trezcool/fdpfeedback/core/feedback"
)

type (
	ServerDeps struct {
		Conf        *core.Config
		Logger      core.Logger
		FeedbackSvc *feedback.Service
		MailSvc     core.EmailService
		Validate    *validator.Validate
		Translator  ut.Translator
		Registry    *prometheus.Registry
	}

	Server struct {
		app      *echo.Echo
		conf     *core.Config
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) (*Server, error) {
	s := &Server{
		app:      echo.New(),
		conf:     deps.Conf,
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)

	gate, err := newExportGate(deps.Conf)
	if err != nil {
		return nil, err
	}
	renderer, err := newTemplateRenderer(deps.Conf)
	if err != nil {
		return nil, err
	}

	debug := deps.Conf.Debug
	s.app.HideBanner = true
	s.app.Debug = debug
	s.app.Renderer = renderer
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(deps.Logger, deps.Translator, s.SignalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	if !deps.Conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(debug || deps.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	fb := feedbackHandlers{
		svc:        deps.FeedbackSvc,
		mailSvc:    deps.MailSvc,
		conf:       deps.Conf,
		logger:     deps.Logger,
		translator: deps.Translator,
		gate:       gate,
	}
	registerWebRoutes(s.app, fb)

	api := s.app.Group("/api")
	registerFeedbackAPI(api, fb, middleware.JWTWithConfig(gate.jwtConfig))

	if deps.Registry != nil {
		s.app.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	return s, nil
}

// Start listens on the configured host; listener failures are sent to Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// SignalShutdown asks the owner of the server to shut it down gracefully.
func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signaled
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}
