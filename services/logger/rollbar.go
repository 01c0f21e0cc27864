package logsvc

import (
	"log"
	"os"
	"strconv"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/mathbombs/core"
	"github.com/trezcool/mathbombs/core/session"
)

// RollbarLogger writes every entry to a std logger and reports it to Rollbar.
// Debug entries are only written in debug mode or with API tracing on, and never reported.
type RollbarLogger struct {
	std   *log.Logger
	debug bool
}

var _ core.Logger = (*RollbarLogger)(nil)

// NewRollbarLogger configures the rollbar client from conf. Reporting is off without a token,
// in debug mode and in test mode.
func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	host, _ := os.Hostname()
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "" && !conf.Debug && !conf.TestMode)
	return &RollbarLogger{std: std, debug: conf.Debug || conf.API.Trace}
}

// report extracts the acting principal (reported as the Rollbar person) from args.
// expected args: error, map[string]interface{}, session.Principal
func report(msg string, args []interface{}) (fields []interface{}, rest []interface{}) {
	var who *session.Principal
	fields = append(make([]interface{}, 0, len(args)+1), msg)
	for _, arg := range args {
		if p, ok := arg.(session.Principal); ok {
			if who == nil && p.Kind != session.KindNone {
				who = &p
			}
			continue
		}
		fields = append(fields, arg)
		rest = append(rest, arg)
	}

	if who != nil {
		rollbar.SetPerson(who.Kind.String()+":"+strconv.Itoa(who.ID), who.Name, "")
	} else {
		rollbar.ClearPerson()
	}
	return fields, rest
}

func (l RollbarLogger) print(level, msg string, args []interface{}) {
	l.std.Printf("%-5s %s", level, msg)
	for _, arg := range args {
		l.std.Printf("      %+v", arg)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	if !l.debug {
		return
	}
	_, rest := report(msg, args)
	l.print("DEBUG", msg, rest)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	fields, rest := report(msg, args)
	rollbar.Info(fields...)
	l.print("INFO", msg, rest)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	fields, rest := report(msg, args)
	rollbar.Warning(fields...)
	l.print("WARN", msg, rest)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	fields, rest := report(msg, args)
	rollbar.Error(fields...)
	l.print("ERROR", msg, rest)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	fields, rest := report(msg, args)
	rollbar.Critical(fields...)
	rollbar.Wait()
	l.print("FATAL", msg, rest)
	os.Exit(1)
}
