package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/repository"
	"github.com/iliyamo/user-account-service/internal/token"
	"github.com/iliyamo/user-account-service/internal/utils"
)

// AuthService validates credentials and issues token pairs.
type AuthService struct {
	users      UserStore
	codec      *token.Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
	bcryptCost int
}

func NewAuthService(users UserStore, codec *token.Codec, accessTTL, refreshTTL time.Duration, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		codec:      codec,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		bcryptCost: bcryptCost,
	}
}

// SignupInput carries the full signup payload. AvatarURL is filled by
// the handler after an optional image upload; everything else comes
// straight from the client.
type SignupInput struct {
	Name        string
	Surname     string
	Username    string
	Password    string
	PhoneNumber string
	Email       string
	Role        string
	Group       string
	AvatarURL   string
}

// Signup validates the payload, hashes the credential and creates the
// account. Unknown roles and schema violations are rejected before any
// row is written.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (model.User, error) {
	if err := validateSignup(in); err != nil {
		return model.User{}, err
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.User{}, err
	}

	u := model.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(in.Name),
		Surname:      strings.TrimSpace(in.Surname),
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: hash,
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Role:         model.Role(in.Role),
		Group:        in.Group,
		AvatarURL:    in.AvatarURL,
	}
	if err := s.users.Create(ctx, &u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Authenticate matches the identifier against username, email or phone
// number and verifies the password. Every failure mode returns the same
// ErrInvalidCredentials: the caller learns nothing about whether the
// account exists or is blocked.
func (s *AuthService) Authenticate(ctx context.Context, identifier, password string) (model.User, error) {
	u, err := s.users.GetByLogin(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, err
	}
	if u.IsBlocked {
		return model.User{}, ErrInvalidCredentials
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// IssueTokenPair signs a fresh access+refresh pair for the user. Both
// tokens carry only the user id; role and group are looked up fresh on
// every privileged action.
func (s *AuthService) IssueTokenPair(u model.User) (TokenPair, error) {
	access, err := s.codec.Encode(u.ID, token.KindAccess, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.codec.Encode(u.ID, token.KindRefresh, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "Bearer"}, nil
}

func validateSignup(in SignupInput) error {
	if !model.Role(in.Role).Valid() {
		return fmt.Errorf("%w: role must be one of user, admin, moderator", ErrValidation)
	}
	if in.Password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	username := strings.TrimSpace(in.Username)
	if username != "" && (len(username) < 3 || len(username) > 20) {
		return fmt.Errorf("%w: username must be 3-20 characters", ErrValidation)
	}
	email := strings.TrimSpace(in.Email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return fmt.Errorf("%w: email is not a valid address", ErrValidation)
		}
	}
	if username == "" && email == "" && strings.TrimSpace(in.PhoneNumber) == "" {
		return fmt.Errorf("%w: one of username, email or phone_number is required", ErrValidation)
	}
	return nil
}
