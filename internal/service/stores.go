package service

import (
	"context"
	"time"

	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/queue"
	"github.com/iliyamo/user-account-service/internal/repository"
)

// UserStore is the abstract user-record store the services run against.
// *repository.UserRepo is the production implementation.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByLogin(ctx context.Context, identifier string) (model.User, error)
	Update(ctx context.Context, u *model.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) (model.User, error)
	Delete(ctx context.Context, id string) error
	ListByGroups(ctx context.Context, p repository.ListParams) ([]model.User, error)
	ListAllGroups(ctx context.Context) ([]string, error)
}

// RevocationStore tracks spent refresh tokens with a TTL.
// *repository.RevocationStore is the production implementation.
type RevocationStore interface {
	Revoke(ctx context.Context, rawToken string, ttl time.Duration) error
	IsRevoked(ctx context.Context, rawToken string) (bool, error)
}

// NotificationStore records reset-completion audit rows.
type NotificationStore interface {
	Create(ctx context.Context, n model.ResetNotification) error
}

// ResetPublisher dispatches reset notifications to the message channel.
type ResetPublisher interface {
	PublishResetPassword(ctx context.Context, ev queue.ResetPasswordEvent) error
}

// TokenPair is the result of a successful login or rotation. Both
// tokens decode to the same user id; neither embeds a role.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}
