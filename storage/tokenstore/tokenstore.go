// Package tokenstore picks where the auth token survives between runs.
package tokenstore

import (
	"io"

	"github.com/pkg/errors"

	"github.com/trezcool/mathbombs/core"
	"github.com/trezcool/mathbombs/core/session"
	"github.com/trezcool/mathbombs/storage/tokenstore/file"
	"github.com/trezcool/mathbombs/storage/tokenstore/inmem"
	"github.com/trezcool/mathbombs/storage/tokenstore/sqlite"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the TokenStorage named by conf.Session.Storage (memory, file or sqlite)
// and what must be closed when the program exits.
func Open(conf *core.Config) (session.TokenStorage, io.Closer, error) {
	switch conf.Session.Storage {
	case "memory":
		return inmem.NewTokenStore(), nopCloser{}, nil
	case "", "file":
		return file.NewTokenStore(conf.Session.TokenFile), nopCloser{}, nil
	case "sqlite":
		db, err := sqlite.Open(conf.Session.DBPath)
		if err != nil {
			return nil, nil, err
		}
		store, err := sqlite.NewTokenStore(db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return store, db, nil
	default:
		return nil, nil, errors.Errorf("unknown session storage %q", conf.Session.Storage)
	}
}
