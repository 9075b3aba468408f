package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/iliyamo/user-account-service/internal/authz"
	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/repository"
	"github.com/iliyamo/user-account-service/internal/utils"
)

// UserService binds the authorization rules to the user store. Roles
// are re-read from the store on every call; the access token supplies
// identity only.
type UserService struct {
	users      UserStore
	bcryptCost int
}

func NewUserService(users UserStore, bcryptCost int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost}
}

// UpdateInput is the full mutable projection of a user record. All
// fields are applied; a non-empty Password is re-hashed.
type UpdateInput struct {
	Name        string
	Surname     string
	Username    string
	Password    string
	PhoneNumber string
	Email       string
	Role        string
	Group       string
	IsBlocked   bool
}

// ListQuery carries the raw listing parameters from the boundary.
type ListQuery struct {
	Page         int
	Limit        int
	FilterByName string
	SortBy       string
	OrderBy      string
}

// Me returns the acting user's own record.
func (s *UserService) Me(ctx context.Context, actorID string) (model.User, error) {
	u, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	return u, nil
}

// UpdateMe applies a self-service update. Identity alone authorizes it.
func (s *UserService) UpdateMe(ctx context.Context, actorID string, in UpdateInput) (model.User, error) {
	return s.applyUpdate(ctx, actorID, in)
}

// DeleteMe removes the acting user's own record.
func (s *UserService) DeleteMe(ctx context.Context, actorID string) error {
	if err := s.users.Delete(ctx, actorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// View returns the target record if the actor's role and group allow
// it. For non-admin actors a missing target is reported as
// ErrInsufficientRights rather than ErrUserNotFound, so the response
// never confirms existence across group boundaries.
func (s *UserService) View(ctx context.Context, actorID, targetID string) (model.User, error) {
	actor, err := s.Me(ctx, actorID)
	if err != nil {
		return model.User{}, err
	}
	if actor.ID == targetID {
		return actor, nil
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if actor.Role == model.RoleAdmin {
				return model.User{}, ErrUserNotFound
			}
			return model.User{}, ErrInsufficientRights
		}
		return model.User{}, err
	}
	if !authz.CanView(actor, target) {
		return model.User{}, ErrInsufficientRights
	}
	return target, nil
}

// List returns one page of users within the actor's group scope.
// Admins see all groups, moderators their own; plain users are denied
// with ErrInsufficientRights rather than an empty page.
func (s *UserService) List(ctx context.Context, actorID string, q ListQuery) ([]model.User, error) {
	if err := validateListQuery(q); err != nil {
		return nil, err
	}

	actor, err := s.Me(ctx, actorID)
	if err != nil {
		return nil, err
	}
	scope, ok := authz.ListScope(actor)
	if !ok {
		return nil, ErrInsufficientRights
	}

	groups := scope.Groups
	if scope.All {
		groups, err = s.users.ListAllGroups(ctx)
		if err != nil {
			return nil, err
		}
	}

	return s.users.ListByGroups(ctx, repository.ListParams{
		Groups:     groups,
		Page:       q.Page,
		Limit:      q.Limit,
		SortBy:     q.SortBy,
		Order:      q.OrderBy,
		NameFilter: q.FilterByName,
	})
}

// UpdateOther applies an update to someone else's record. Only admins
// may do this; moderators keep read-only visibility into their group.
func (s *UserService) UpdateOther(ctx context.Context, actorID, targetID string, in UpdateInput) (model.User, error) {
	actor, err := s.Me(ctx, actorID)
	if err != nil {
		return model.User{}, err
	}
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, err
	}
	if !authz.CanEditOther(actor, target) {
		return model.User{}, ErrInsufficientRights
	}
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, ErrUserNotFound
	}
	return s.applyUpdate(ctx, targetID, in)
}

func (s *UserService) applyUpdate(ctx context.Context, id string, in UpdateInput) (model.User, error) {
	if err := validateUpdate(in); err != nil {
		return model.User{}, err
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}

	u.Name = strings.TrimSpace(in.Name)
	u.Surname = strings.TrimSpace(in.Surname)
	u.Username = strings.TrimSpace(in.Username)
	u.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	u.Email = strings.ToLower(strings.TrimSpace(in.Email))
	u.Role = model.Role(in.Role)
	u.Group = in.Group
	u.IsBlocked = in.IsBlocked
	if in.Password != "" {
		hash, err := utils.HashPassword(in.Password, s.bcryptCost)
		if err != nil {
			return model.User{}, err
		}
		u.PasswordHash = hash
	}

	if err := s.users.Update(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	return u, nil
}

func validateUpdate(in UpdateInput) error {
	if !model.Role(in.Role).Valid() {
		return fmt.Errorf("%w: role must be one of user, admin, moderator", ErrValidation)
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
	return nil
}

func validateListQuery(q ListQuery) error {
	switch strings.ToLower(q.OrderBy) {
	case "", "asc", "desc":
	default:
		return fmt.Errorf("%w: order_by must be asc or desc", ErrValidation)
	}
	switch q.SortBy {
	case "", "name", "surname", "username", "email", "created_at":
	default:
		return fmt.Errorf("%w: unsupported sort_by value", ErrValidation)
	}
	if q.Page < 0 || q.Limit < 0 {
		return fmt.Errorf("%w: page and limit must be positive", ErrValidation)
	}
	return nil
}
