package service_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"sort"
	"strings"
	"sync"
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

// memUserStore is an in-memory UserStore for tests.
type memUserStore struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newMemUserStore(users ...model.User) *memUserStore {
	s := &memUserStore{users: make(map[string]model.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memUserStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
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

func (s *memUserStore) GetByID(_ context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == strings.ToLower(strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *memUserStore) GetByLogin(_ context.Context, identifier string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	identifier = strings.TrimSpace(identifier)
	for _, u := range s.users {
		if u.Username == identifier || u.Email == strings.ToLower(identifier) || u.PhoneNumber == identifier {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *memUserStore) Update(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	u.ModifiedAt = time.Now().UTC()
	s.users[u.ID] = *u
	return nil
}

func (s *memUserStore) UpdatePassword(_ context.Context, id, passwordHash string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.ModifiedAt = time.Now().UTC()
	s.users[id] = u
	return u, nil
}

func (s *memUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *memUserStore) ListByGroups(_ context.Context, p repository.ListParams) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	allowed := make(map[string]bool, len(p.Groups))
	for _, g := range p.Groups {
		allowed[g] = true
	}
	var out []model.User
	for _, u := range s.users {
		if !allowed[u.Group] {
			continue
		}
		if p.NameFilter != "" && !strings.Contains(u.Name, p.NameFilter) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memUserStore) ListAllGroups(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
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

// memRevocationStore is an in-memory RevocationStore. Setting failWith
// simulates a store outage.
type memRevocationStore struct {
	mu       sync.Mutex
	entries  map[string]time.Time
	failWith error
}

func newMemRevocationStore() *memRevocationStore {
	return &memRevocationStore{entries: make(map[string]time.Time)}
}

func (s *memRevocationStore) Revoke(_ context.Context, rawToken string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if ttl <= 0 {
		return nil
	}
	s.entries[rawToken] = time.Now().Add(ttl)
	return nil
}

func (s *memRevocationStore) IsRevoked(_ context.Context, rawToken string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return false, s.failWith
	}
	exp, ok := s.entries[rawToken]
	return ok && time.Now().Before(exp), nil
}

// capturePublisher records published events; failWith simulates a
// broker outage.
type capturePublisher struct {
	events   []queue.ResetPasswordEvent
	failWith error
}

func (p *capturePublisher) PublishResetPassword(_ context.Context, ev queue.ResetPasswordEvent) error {
	if p.failWith != nil {
		return p.failWith
	}
	p.events = append(p.events, ev)
	return nil
}

// captureNotes records audit rows.
type captureNotes struct {
	notes []model.ResetNotification
}

func (n *captureNotes) Create(_ context.Context, note model.ResetNotification) error {
	n.notes = append(n.notes, note)
	return nil
}
