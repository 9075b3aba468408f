package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/repository"
	"github.com/iliyamo/user-account-service/internal/token"
)

// RefreshService rotates refresh tokens. A presented token moves
// through exactly one of: rotated (success, token revoked and a new
// pair issued), expired, malformed or revoked — and the three failure
// states all surface as the same ErrInvalidToken.
type RefreshService struct {
	users      UserStore
	revoked    RevocationStore
	codec      *token.Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewRefreshService(users UserStore, revoked RevocationStore, codec *token.Codec, accessTTL, refreshTTL time.Duration) *RefreshService {
	return &RefreshService{
		users:      users,
		revoked:    revoked,
		codec:      codec,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Rotate validates the presented refresh token, revokes it and issues a
// brand-new pair. The order is strict: reject, then revoke, then issue.
// Revoking before issuing means a crash mid-way never leaves the old
// token replayable alongside a fresh pair. Two concurrent rotations of
// the same token race on the revocation entry; the loser either sees
// the winner's entry or is rejected by its own failed revoke.
func (s *RefreshService) Rotate(ctx context.Context, raw string) (TokenPair, model.User, error) {
	claims, err := s.codec.Decode(raw, token.KindRefresh)
	if err != nil {
		return TokenPair{}, model.User{}, ErrInvalidToken
	}

	revoked, err := s.revoked.IsRevoked(ctx, raw)
	if err != nil {
		// Store outage: fail closed. A revoked token must never slip
		// through because the blacklist could not be consulted.
		log.Printf("refresh: revocation store unavailable: %v", err)
		return TokenPair{}, model.User{}, ErrInvalidToken
	}
	if revoked {
		return TokenPair{}, model.User{}, ErrInvalidToken
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, model.User{}, ErrUserNotFound
		}
		return TokenPair{}, model.User{}, err
	}

	// Blacklist the presented token for its remaining validity window;
	// once it would have expired anyway the entry lapses with it.
	if err := s.revoked.Revoke(ctx, raw, time.Until(claims.ExpiresAt)); err != nil {
		log.Printf("refresh: revoke failed: %v", err)
		return TokenPair{}, model.User{}, ErrInvalidToken
	}

	access, err := s.codec.Encode(u.ID, token.KindAccess, s.accessTTL)
	if err != nil {
		return TokenPair{}, model.User{}, err
	}
	refresh, err := s.codec.Encode(u.ID, token.KindRefresh, s.refreshTTL)
	if err != nil {
		return TokenPair{}, model.User{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "Bearer"}, u, nil
}
