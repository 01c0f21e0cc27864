package file

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mathbombs/core/session"
)

type record struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

type tokenStore struct {
	mutex sync.Mutex
	path  string
}

// NewTokenStore persists the token as JSON in the file at path. The file is only readable by
// its owner.
func NewTokenStore(path string) session.TokenStorage {
	return &tokenStore{path: path}
}

func (s *tokenStore) Get() (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", session.ErrNoToken
		}
		return "", errors.Wrapf(err, "reading %s", s.path)
	}

	var rec record
	if err = json.Unmarshal(raw, &rec); err != nil {
		return "", errors.Wrapf(err, "decoding %s", s.path)
	}
	if rec.Token == "" {
		return "", session.ErrNoToken
	}
	return rec.Token, nil
}

func (s *tokenStore) Set(token string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return errors.Wrap(err, "creating token directory")
	}
	raw, err := json.Marshal(record{Token: token, SavedAt: time.Now().UTC()})
	if err != nil {
		return errors.Wrap(err, "encoding token")
	}

	// write then rename so a crash never leaves a half written file
	tmp := s.path + ".tmp"
	if err = os.WriteFile(tmp, raw, 0600); err != nil {
		return errors.Wrapf(err, "writing %s", tmp)
	}
	return errors.Wrapf(os.Rename(tmp, s.path), "replacing %s", s.path)
}

func (s *tokenStore) Clear() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "removing %s", s.path)
	}
	return nil
}
