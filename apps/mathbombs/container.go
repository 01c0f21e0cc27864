package main

import (
	"io"
	"log"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/dig"

	"github.com/trezcool/mathbombs/core"
	"github.com/trezcool/mathbombs/core/client"
	"github.com/trezcool/mathbombs/core/session"
	logsvc "github.com/trezcool/mathbombs/services/logger"
	"github.com/trezcool/mathbombs/storage/tokenstore"
)

type storageResult struct {
	dig.Out
	Storage session.TokenStorage
	Closer  io.Closer `name:"storageCloser"`
}

type transportParam struct {
	dig.In
	Conf   *core.Config
	Logger core.Logger
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stderr, "MATHBOMBS : ", log.LstdFlags)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newTokenStorage(conf *core.Config) (storageResult, error) {
	storage, closer, err := tokenstore.Open(conf)
	if err != nil {
		return storageResult{}, errors.Wrap(err, "opening token storage")
	}
	return storageResult{Storage: storage, Closer: closer}, nil
}

// newSession restores the token saved by a previous run, if any.
func newSession(storage session.TokenStorage, logger core.Logger) *session.Session {
	sess := session.New(storage)
	if err := sess.Restore(); err != nil && err != session.ErrNoToken {
		logger.Warn("restoring session", err)
	}
	return sess
}

func newTransport(p transportParam) client.Requester {
	opts := []client.TransportOption{client.WithTimeout(p.Conf.API.Timeout)}
	if p.Conf.API.Trace {
		opts = append(opts, client.WithTrace(p.Logger))
	}
	return client.NewTransport(p.Conf.API.BaseURL, opts...)
}

// newContainer returns the dependency injection dig.Container of the CLI.
func newContainer() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newTokenStorage))
	must(c.Provide(newSession))
	must(c.Provide(newTransport))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(core.NewValidator))
	must(c.Provide(client.New))
	must(c.Provide(newCommandLine))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
