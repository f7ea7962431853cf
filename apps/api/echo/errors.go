package echoapi

import (
	"fmt"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/fdpfeedback/core"
	"github.com/trezcool/fdpfeedback/core/feedback"
)

var (
	errWrongPassword   = echo.NewHTTPError(http.StatusUnauthorized, "wrong password")
	errUnknownQuestion = echo.NewHTTPError(http.StatusNotFound, "unknown question")
	errUnauthorized    = echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	errForbidden       = echo.NewHTTPError(http.StatusForbidden, "permission denied")
)

// User-facing messages of store failures.
const (
	msgUnwritable = "Your feedback could not be saved. Please try again in a moment."
	msgUnreadable = "The feedback data is currently unavailable."
	msgNoData     = "No feedback has been submitted yet."
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			message = core.TranslateErrors(origErr, translator)
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *core.StoreError:
			code = http.StatusServiceUnavailable
			message = msgUnreadable
			if origErr.Kind == core.Unwritable {
				message = msgUnwritable
			}
			logger.Error(fmt.Sprintf("%s: %v", ctx.Path(), err), err)
		case *core.SchemaMismatchError:
			code = http.StatusInternalServerError
			message = origErr.Error()
			logger.Error(fmt.Sprintf("%s: %v", ctx.Path(), err), err)
		default:
			if errors.Is(err, feedback.ErrNoData) {
				code = http.StatusNotFound
				message = msgNoData
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg
			logger.Error(msg, errors.Wrap(err, msg))

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// failureMessage returns the banner shown on HTML pages for err, and whether err is a known failure.
func failureMessage(err error) (string, bool) {
	switch origErr := errors.Cause(err).(type) {
	case *core.StoreError:
		if origErr.Kind == core.Unwritable {
			return msgUnwritable, true
		}
		return msgUnreadable, true
	case *core.SchemaMismatchError:
		return "The stored feedback data is corrupted: " + origErr.Error(), true
	}
	return "", false
}
