// Package session holds the credential and the identity of whoever is using the client.
package session

import (
	"sync"

	"github.com/pkg/errors"
)

// PrincipalKind identifies the type of the authenticated actor.
type PrincipalKind int

const (
	KindNone PrincipalKind = iota
	KindTeacher
	KindStudent
)

func (k PrincipalKind) String() string {
	switch k {
	case KindTeacher:
		return "teacher"
	case KindStudent:
		return "student"
	default:
		return "none"
	}
}

// Principal is the authenticated actor of a Session.
type Principal struct {
	Kind PrincipalKind
	ID   int
	Name string
}

var (
	// ErrNoToken is returned by a TokenStorage that holds no token.
	ErrNoToken = errors.New("no auth token stored")
)

// TokenStorage persists the auth token across process restarts.
type TokenStorage interface {
	Get() (string, error)
	Set(token string) error
	Clear() error
}

// Session is the current credential and principal. The zero value is not usable; use New.
// Readers may call Token and Principal concurrently; only the sign-in/out transitions write.
type Session struct {
	mu        sync.RWMutex
	token     string
	principal Principal
	storage   TokenStorage
}

// New returns an empty Session. A nil storage keeps the token in memory only.
func New(storage TokenStorage) *Session {
	return &Session{storage: storage}
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Principal() Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.principal
}

func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// SignIn stores the token (in memory, then in the storage) and binds the principal.
func (s *Session) SignIn(token string, p Principal) error {
	s.mu.Lock()
	s.token = token
	s.principal = p
	s.mu.Unlock()

	if s.storage == nil {
		return nil
	}
	return errors.Wrap(s.storage.Set(token), "persisting auth token")
}

// BindStudent makes a student the acting principal, keeping the current credential.
// It is used after a successful password check in the student portal.
func (s *Session) BindStudent(p Principal) {
	p.Kind = KindStudent
	s.mu.Lock()
	s.principal = p
	s.mu.Unlock()
}

// UnbindStudent hands the session back to prior if a student is bound, keeping the credential.
func (s *Session) UnbindStudent(prior Principal) {
	s.mu.Lock()
	if s.principal.Kind == KindStudent {
		s.principal = prior
	}
	s.mu.Unlock()
}

// Restore loads a previously persisted token. The principal stays unknown (KindNone)
// until the next sign-in; ErrNoToken is returned when nothing was persisted.
func (s *Session) Restore() error {
	if s.storage == nil {
		return ErrNoToken
	}
	token, err := s.storage.Get()
	if err != nil {
		if errors.Cause(err) == ErrNoToken {
			return ErrNoToken
		}
		return errors.Wrap(err, "restoring auth token")
	}
	if token == "" {
		return ErrNoToken
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// Clear signs out. The in-memory credential is always discarded, even when the storage fails.
func (s *Session) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.principal = Principal{}
	s.mu.Unlock()

	if s.storage == nil {
		return nil
	}
	return errors.Wrap(s.storage.Clear(), "clearing auth token")
}
