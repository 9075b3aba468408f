// Package queue defines the message payloads exchanged over RabbitMQ
// and the background consumer of the reset-password stream.
package queue

// ResetPasswordQueue is the durable queue carrying reset notifications.
const ResetPasswordQueue = "reset-password-stream"

// ResetPasswordEvent is published when a user requests a password
// reset. It carries everything a mail worker needs to deliver the
// message without querying the primary database.
type ResetPasswordEvent struct {
	Email      string `json:"email"`
	ResetToken string `json:"reset_token"`
	Message    string `json:"message"`
}
