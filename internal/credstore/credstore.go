// Package credstore persists the access and refresh tokens of one
// browser profile. Presence of a non-empty value is all callers rely on.
package credstore

import (
	"sync"

	"github.com/ljosc/discuss/internal/domain"
)

type Store interface {
	Set(kind domain.CredentialKind, value string) error
	// Get reports ok=false when the credential is absent or empty.
	Get(kind domain.CredentialKind) (value string, ok bool, err error)
	ClearAll() error
}

// Save writes both tokens of a successful login.
func Save(s Store, creds domain.Credentials) error {
	if err := s.Set(domain.RefreshToken, creds.RefreshToken); err != nil {
		return err
	}
	return s.Set(domain.AccessToken, creds.AccessToken)
}

// HasRefreshToken is the sole authentication signal.
func HasRefreshToken(s Store) (bool, error) {
	_, ok, err := s.Get(domain.RefreshToken)
	return ok, err
}

// Memory is a non-durable Store used by tests and `--ephemeral` runs.
type Memory struct {
	mu     sync.RWMutex
	values map[domain.CredentialKind]string
}

func NewMemory() *Memory {
	return &Memory{values: make(map[domain.CredentialKind]string)}
}

func (m *Memory) Set(kind domain.CredentialKind, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value == "" {
		delete(m.values, kind)
		return nil
	}
	m.values[kind] = value
	return nil
}

func (m *Memory) Get(kind domain.CredentialKind) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[kind]
	return v, ok && v != "", nil
}

func (m *Memory) ClearAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[domain.CredentialKind]string)
	return nil
}
