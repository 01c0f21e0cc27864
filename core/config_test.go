package core

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("ENV", "")
		conf := NewConfig()

		assert.Equal(t, "DEV", conf.Env)
		assert.True(t, conf.Debug)
		assert.False(t, conf.TestMode)
		assert.Equal(t, "MathBombs", conf.AppName)
		assert.Equal(t, "http://localhost:3000", conf.API.BaseURL)
		assert.Equal(t, 15*time.Second, conf.API.Timeout)
		assert.True(t, conf.API.Trace, "trace follows debug")
		assert.Equal(t, "file", conf.Session.Storage)
		assert.Equal(t, filepath.Join(".mathbombs", "auth-token.json"), lastTwo(conf.Session.TokenFile))
		assert.Equal(t, filepath.Join(".mathbombs", "session.db"), lastTwo(conf.Session.DBPath))
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("ENV", "test")
		t.Setenv("TEST_DEBUG", "false")
		t.Setenv("TEST_API_BASEURL", "https://mathbombs.test/")
		t.Setenv("TEST_API_TIMEOUT", "2s")
		t.Setenv("TEST_SESSION_STORAGE", " SQLite ")
		t.Setenv("TEST_SESSION_DBPATH", "/tmp/mb.db")
		conf := NewConfig()

		assert.Equal(t, "TEST", conf.Env)
		assert.True(t, conf.TestMode)
		assert.False(t, conf.Debug)
		assert.Equal(t, "https://mathbombs.test", conf.API.BaseURL)
		assert.Equal(t, 2*time.Second, conf.API.Timeout)
		assert.False(t, conf.API.Trace)
		assert.Equal(t, "sqlite", conf.Session.Storage)
		assert.Equal(t, "/tmp/mb.db", conf.Session.DBPath)
	})

	t.Run("explicit trace", func(t *testing.T) {
		t.Setenv("ENV", "test")
		t.Setenv("TEST_DEBUG", "false")
		t.Setenv("TEST_API_TRACE", "true")

		assert.True(t, NewConfig().API.Trace)
	})
}

func lastTwo(path string) string {
	return filepath.Join(filepath.Base(filepath.Dir(path)), filepath.Base(path))
}
