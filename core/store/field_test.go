package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestField(t *testing.T) {
	f := NewField("fox")
	assert.Equal(t, "fox", f.Value())
	assert.False(t, f.Dirty())

	f.Edit("owl")
	assert.Equal(t, "owl", f.Value())
	assert.Equal(t, "fox", f.Committed())
	assert.True(t, f.Dirty())

	assert.Equal(t, "fox", f.Revert())
	assert.Equal(t, "fox", f.Value())
	assert.False(t, f.Dirty())

	f.Edit("cat")
	assert.Equal(t, "cat", f.Commit())
	assert.Equal(t, "cat", f.Committed())
	assert.False(t, f.Dirty())

	f.Edit("dog")
	f.Reset("emu")
	assert.Equal(t, "emu", f.Value())
	assert.Equal(t, "emu", f.Committed())
}
