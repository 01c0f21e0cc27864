package inmem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mathbombs/core/session"
)

func TestTokenStore(t *testing.T) {
	s := NewTokenStore()

	_, err := s.Get()
	assert.Equal(t, session.ErrNoToken, err)

	require.NoError(t, s.Set("tok"))
	tok, err := s.Get()
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)

	require.NoError(t, s.Clear())
	_, err = s.Get()
	assert.Equal(t, session.ErrNoToken, err)
}
