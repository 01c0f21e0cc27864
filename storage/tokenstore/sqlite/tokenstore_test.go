package sqlite

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mathbombs/core/session"
)

func prepareDB(t *testing.T) *sqlx.DB {
	db, err := Open(filepath.Join(t.TempDir(), "data", "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	if err = db.Ping(); err != nil {
		if strings.Contains(err.Error(), "CGO_ENABLED") {
			t.Skip("go-sqlite3 requires cgo")
		}
		t.Fatalf("prepareDB() failed: %v", err)
	}
	return db
}

func TestTokenStore(t *testing.T) {
	db := prepareDB(t)
	s, err := NewTokenStore(db)
	require.NoError(t, err)

	_, err = s.Get()
	assert.Equal(t, session.ErrNoToken, err)

	require.NoError(t, s.Set("tok"))
	require.NoError(t, s.Set("tok2"), "a new token replaces the old one")
	tok, err := s.Get()
	require.NoError(t, err)
	assert.Equal(t, "tok2", tok)

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM auth_tokens`))
	assert.Equal(t, 1, n)

	t.Run("table is reused", func(t *testing.T) {
		again, err := NewTokenStore(db)
		require.NoError(t, err)
		tok, err := again.Get()
		require.NoError(t, err)
		assert.Equal(t, "tok2", tok)
	})

	require.NoError(t, s.Clear())
	_, err = s.Get()
	assert.Equal(t, session.ErrNoToken, err)
}
