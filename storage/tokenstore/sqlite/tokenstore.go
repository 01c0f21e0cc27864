package sqlite

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/trezcool/mathbombs/core/session"
)

const (
	schema = `
CREATE TABLE IF NOT EXISTS auth_tokens (
	name     TEXT PRIMARY KEY,
	token    TEXT NOT NULL,
	saved_at TIMESTAMP NOT NULL
)`

	// the client keeps a single credential
	tokenName = "default"
)

type authToken struct {
	Name    string    `db:"name"`
	Token   string    `db:"token"`
	SavedAt time.Time `db:"saved_at"`
}

type tokenStore struct {
	db *sqlx.DB
}

// Open opens (creating it if needed) the sqlite database at path.
func Open(path string) (*sqlx.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, errors.Wrap(err, "creating database directory")
		}
	}
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)
	return db, nil
}

// NewTokenStore persists the token in the auth_tokens table, creating it if needed.
func NewTokenStore(db *sqlx.DB) (session.TokenStorage, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Wrap(err, "creating auth_tokens table")
	}
	return &tokenStore{db: db}, nil
}

func (s *tokenStore) Get() (string, error) {
	var tok authToken
	err := s.db.Get(&tok, `SELECT name, token, saved_at FROM auth_tokens WHERE name = ?`, tokenName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", session.ErrNoToken
		}
		return "", errors.Wrap(err, "querying auth token")
	}
	if tok.Token == "" {
		return "", session.ErrNoToken
	}
	return tok.Token, nil
}

func (s *tokenStore) Set(token string) error {
	_, err := s.db.NamedExec(
		`INSERT OR REPLACE INTO auth_tokens (name, token, saved_at) VALUES (:name, :token, :saved_at)`,
		authToken{Name: tokenName, Token: token, SavedAt: time.Now().UTC()},
	)
	return errors.Wrap(err, "saving auth token")
}

func (s *tokenStore) Clear() error {
	_, err := s.db.Exec(`DELETE FROM auth_tokens WHERE name = ?`, tokenName)
	return errors.Wrap(err, "deleting auth token")
}
