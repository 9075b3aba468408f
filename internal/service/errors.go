// Package service implements the authentication token lifecycle and
// the role-scoped user operations on top of the persistence
// collaborators. Errors declared here form the complete caller-visible
// taxonomy; handlers translate them into HTTP statuses and never see
// driver or broker errors directly.
package service

import "errors"

var (
	// ErrInvalidCredentials is the uniform login failure. It covers
	// unknown identifier, wrong password and blocked accounts alike so
	// the response never confirms whether an account exists.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is the uniform token rejection covering expired,
	// malformed and revoked tokens. Collapsing the three keeps the
	// endpoint from acting as a token-state oracle.
	ErrInvalidToken = errors.New("invalid token")

	// ErrUserNotFound is returned when an operation references a user
	// record that does not exist (anymore).
	ErrUserNotFound = errors.New("user not found")

	// ErrInsufficientRights is returned when the acting user's role or
	// group does not permit the requested operation.
	ErrInsufficientRights = errors.New("insufficient access rights")

	// ErrDispatchFailed is returned when the reset notification could
	// not be handed to the message broker.
	ErrDispatchFailed = errors.New("failed to send reset email")

	// ErrInvalidEmailFormat is returned before any token is issued or
	// message published when the supplied address is not a well-formed
	// email.
	ErrInvalidEmailFormat = errors.New("invalid email format")

	// ErrValidation is the schema-level rejection for malformed input,
	// e.g. an unknown role at signup or an unsupported order_by value.
	// Wrap it with context: fmt.Errorf("%w: role must be one of ...", ErrValidation).
	ErrValidation = errors.New("validation error")
)
