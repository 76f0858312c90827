package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tu-usuario/stockmaster-api/internal/application/auth"
)

var _ auth.OTPStore = (*OTPStore)(nil)

type otpEntry struct {
	session   auth.OTPSession
	expiresAt time.Time
}

// OTPStore almacén de sesiones OTP en memoria con expiración perezosa.
// Para desarrollo local sin Redis; la semántica de TTL es la misma.
type OTPStore struct {
	mu    sync.Mutex
	items map[string]otpEntry
}

// NewOTPStore construye el almacén vacío.
func NewOTPStore() *OTPStore {
	return &OTPStore{items: make(map[string]otpEntry)}
}

func (s *OTPStore) Put(_ context.Context, session auth.OTPSession, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked()
	s.items[session.Email] = otpEntry{session: session, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *OTPStore) Get(_ context.Context, email string) (*auth.OTPSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[email]
	if !ok || time.Now().After(e.expiresAt) {
		delete(s.items, email)
		return nil, nil
	}
	cp := e.session
	return &cp, nil
}

func (s *OTPStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, email)
	return nil
}

// purgeLocked elimina sesiones vencidas; se llama con el mutex tomado.
func (s *OTPStore) purgeLocked() {
	now := time.Now()
	for k, e := range s.items {
		if now.After(e.expiresAt) {
			delete(s.items, k)
		}
	}
}
