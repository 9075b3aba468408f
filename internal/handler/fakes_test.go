package handler_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/queue"
	"github.com/iliyamo/user-account-service/internal/repository"
	"github.com/iliyamo/user-account-service/internal/token"
)

func newTestCodec(t *testing.T) *token.Codec {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	c, err := token.NewCodec(privPEM, pubPEM)
	require.NoError(t, err)
	return c
}

// stubUserStore is a minimal in-memory user store for wiring real
// services behind the handlers under test.
type stubUserStore struct {
	users map[string]model.User
}

func newStubUserStore(users ...model.User) *stubUserStore {
	s := &stubUserStore{users: make(map[string]model.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *stubUserStore) Create(_ context.Context, u *model.User) error {
	for _, existing := range s.users {
		if (u.Username != "" && existing.Username == u.Username) ||
			(u.Email != "" && existing.Email == u.Email) {
			return repository.ErrDuplicate
		}
	}
	u.CreatedAt = time.Now().UTC()
	u.ModifiedAt = u.CreatedAt
	s.users[u.ID] = *u
	return nil
}

func (s *stubUserStore) GetByID(_ context.Context, id string) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *stubUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range s.users {
		if u.Email == strings.ToLower(strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *stubUserStore) GetByLogin(_ context.Context, identifier string) (model.User, error) {
	identifier = strings.TrimSpace(identifier)
	for _, u := range s.users {
		if u.Username == identifier || u.Email == strings.ToLower(identifier) || u.PhoneNumber == identifier {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *stubUserStore) Update(_ context.Context, u *model.User) error {
	if _, ok := s.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	u.ModifiedAt = time.Now().UTC()
	s.users[u.ID] = *u
	return nil
}

func (s *stubUserStore) UpdatePassword(_ context.Context, id, passwordHash string) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.ModifiedAt = time.Now().UTC()
	s.users[id] = u
	return u, nil
}

func (s *stubUserStore) Delete(_ context.Context, id string) error {
	if _, ok := s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *stubUserStore) ListByGroups(_ context.Context, p repository.ListParams) ([]model.User, error) {
	allowed := make(map[string]bool, len(p.Groups))
	for _, g := range p.Groups {
		allowed[g] = true
	}
	var out []model.User
	for _, u := range s.users {
		if allowed[u.Group] {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *stubUserStore) ListAllGroups(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var groups []string
	for _, u := range s.users {
		if !seen[u.Group] {
			seen[u.Group] = true
			groups = append(groups, u.Group)
		}
	}
	return groups, nil
}

// stubRevocations is an always-empty revocation store.
type stubRevocations struct {
	entries map[string]bool
}

func newStubRevocations() *stubRevocations {
	return &stubRevocations{entries: make(map[string]bool)}
}

func (s *stubRevocations) Revoke(_ context.Context, rawToken string, _ time.Duration) error {
	s.entries[rawToken] = true
	return nil
}

func (s *stubRevocations) IsRevoked(_ context.Context, rawToken string) (bool, error) {
	return s.entries[rawToken], nil
}

// stubPublisher records reset events instead of dialing a broker.
type stubPublisher struct {
	events []queue.ResetPasswordEvent
}

func (p *stubPublisher) PublishResetPassword(_ context.Context, ev queue.ResetPasswordEvent) error {
	p.events = append(p.events, ev)
	return nil
}

// stubNotes swallows audit rows.
type stubNotes struct{}

func (stubNotes) Create(context.Context, model.ResetNotification) error { return nil }
