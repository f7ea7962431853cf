package logsvc

import (
	"fmt"
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/fdpfeedback/core"
)

type level string

const (
	levelDebug level = "DEBUG"
	levelInfo  level = "INFO"
	levelWarn  level = "WARN"
	levelError level = "ERROR"
	levelFatal level = "FATAL"
)

// RollbarLogger prints to a standard logger and reports to Rollbar.
// Debug messages are only printed when the app runs in debug mode.
type RollbarLogger struct {
	std     *log.Logger
	verbose bool
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetCustom(map[string]interface{}{
		"app":   conf.AppName,
		"store": conf.Store.Backend,
	})
	return &RollbarLogger{std: std, verbose: conf.Debug}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// Flush blocks until queued reports are sent.
func (l RollbarLogger) Flush() {
	rollbar.Wait()
}

// entry is a log call split into what rollbar expects: an error, one map of extras and a person.
type entry struct {
	err    error
	extras map[string]interface{}
	person *core.Person
	rest   []interface{}
}

// parse sorts args. Maps are merged; only the first error and core.Person are kept.
func parse(args []interface{}) entry {
	var e entry
	for _, arg := range args {
		switch a := arg.(type) {
		case error:
			if e.err == nil {
				e.err = a
			}
		case map[string]interface{}:
			if e.extras == nil {
				e.extras = make(map[string]interface{}, len(a))
			}
			for k, v := range a {
				e.extras[k] = v
			}
		case core.Person:
			if e.person == nil {
				p := a
				e.person = &p
			}
		default:
			e.rest = append(e.rest, a)
		}
	}
	if len(e.rest) > 0 {
		if e.extras == nil {
			e.extras = make(map[string]interface{}, 1)
		}
		e.extras["args"] = fmt.Sprint(e.rest...)
	}
	return e
}

func (e entry) rollbarArgs(msg string) []interface{} {
	args := []interface{}{msg}
	if e.err != nil {
		args = append(args, e.err)
	}
	if e.extras != nil {
		args = append(args, e.extras)
	}
	return args
}

func (l RollbarLogger) log(lvl level, msg string, args []interface{}) entry {
	e := parse(args)
	if lvl == levelDebug && !l.verbose {
		return e
	}

	if e.person != nil {
		rollbar.SetPerson(e.person.ID, e.person.Name, e.person.Email)
	} else {
		rollbar.ClearPerson()
	}

	switch lvl {
	case levelDebug:
		rollbar.Debug(e.rollbarArgs(msg)...)
	case levelInfo:
		rollbar.Info(e.rollbarArgs(msg)...)
	case levelWarn:
		rollbar.Warning(e.rollbarArgs(msg)...)
	case levelError:
		rollbar.Error(e.rollbarArgs(msg)...)
	case levelFatal:
		rollbar.Critical(e.rollbarArgs(msg)...)
	}

	l.std.Printf("[%s] %s", lvl, msg)
	if e.err != nil {
		l.std.Printf("[%s] error: %v", lvl, e.err)
	}
	if e.extras != nil {
		l.std.Printf("[%s] extras: %v", lvl, e.extras)
	}
	if e.person != nil {
		l.std.Printf("[%s] respondent: %s <%s>", lvl, e.person.Name, e.person.Email)
	}
	return e
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) { l.log(levelDebug, msg, args) }
func (l RollbarLogger) Info(msg string, args ...interface{})  { l.log(levelInfo, msg, args) }
func (l RollbarLogger) Warn(msg string, args ...interface{})  { l.log(levelWarn, msg, args) }
func (l RollbarLogger) Error(msg string, args ...interface{}) { l.log(levelError, msg, args) }

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(levelFatal, msg, args)
	rollbar.Wait()
	l.std.Fatal(msg)
}
