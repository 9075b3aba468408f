package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/queue"
	"github.com/iliyamo/user-account-service/internal/repository"
	"github.com/iliyamo/user-account-service/internal/token"
	"github.com/iliyamo/user-account-service/internal/utils"
)

// ResetService issues short-lived reset tokens, dispatches the
// notification through the message channel and redeems tokens into a
// new stored credential.
type ResetService struct {
	users      UserStore
	notes      NotificationStore
	publisher  ResetPublisher
	codec      *token.Codec
	resetTTL   time.Duration
	bcryptCost int
	linkBase   string
}

func NewResetService(users UserStore, notes NotificationStore, publisher ResetPublisher, codec *token.Codec, resetTTL time.Duration, bcryptCost int, linkBase string) *ResetService {
	return &ResetService{
		users:      users,
		notes:      notes,
		publisher:  publisher,
		codec:      codec,
		resetTTL:   resetTTL,
		bcryptCost: bcryptCost,
		linkBase:   linkBase,
	}
}

// RequestReset issues a reset-kind token for the account behind the
// email and publishes the notification. If the publish fails the token
// is simply discarded: it was never persisted, so returning the error
// leaves no dangling state behind (the signed token itself stays valid
// until its natural expiry, an accepted residual risk).
func (s *ResetService) RequestReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmailFormat
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	resetToken, err := s.codec.Encode(u.ID, token.KindReset, s.resetTTL)
	if err != nil {
		return err
	}

	minutes := int(s.resetTTL / time.Minute)
	ev := queue.ResetPasswordEvent{
		Email:      email,
		ResetToken: resetToken,
		Message: fmt.Sprintf("Reset your password by clicking the following link: "+
			"%s/v1/auth/set-new-password?token=%s\nThe link will deactivate in %d minutes",
			s.linkBase, resetToken, minutes),
	}
	if err := s.publisher.PublishResetPassword(ctx, ev); err != nil {
		return ErrDispatchFailed
	}
	return nil
}

// RedeemReset exchanges a valid reset token for a credential change.
// Token verification, the user lookup and the password mutation happen
// as one unit inside the store transaction, so a concurrently deleted
// account fails the whole operation with ErrUserNotFound. Reset tokens
// are not single-use: a redeemed token stays valid until expiry.
func (s *ResetService) RedeemReset(ctx context.Context, rawToken, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", ErrValidation)
	}

	claims, err := s.codec.Decode(rawToken, token.KindReset)
	if err != nil {
		return ErrInvalidToken
	}

	hash, err := utils.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	u, err := s.users.UpdatePassword(ctx, claims.UserID, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	// Audit only; a failed insert must not undo the password change.
	now := time.Now().UTC()
	note := model.ResetNotification{
		ID:           uuid.New().String(),
		UserID:       u.ID,
		EmailAddress: u.Email,
		Subject:      "Your password was changed",
		Body:         "The password for your account was changed via the reset link.",
		PublishedAt:  now,
		SentAt:       now,
	}
	if err := s.notes.Create(ctx, note); err != nil {
		log.Printf("reset: audit record failed: %v", err)
	}
	return nil
}
