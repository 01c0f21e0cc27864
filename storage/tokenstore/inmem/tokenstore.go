package inmem

import (
	"sync"

	"github.com/trezcool/mathbombs/core/session"
)

type tokenStore struct {
	mutex sync.RWMutex
	token string
}

// NewTokenStore keeps the token for the lifetime of the process.
func NewTokenStore() session.TokenStorage {
	return &tokenStore{}
}

func (s *tokenStore) Get() (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.token == "" {
		return "", session.ErrNoToken
	}
	return s.token, nil
}

func (s *tokenStore) Set(token string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.token = token
	return nil
}

func (s *tokenStore) Clear() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.token = ""
	return nil
}
