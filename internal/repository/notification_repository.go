package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/user-account-service/internal/model"
)

// ResetNotificationRepo appends audit rows to `reset_password_messages`.
// Rows are write-only from the service's point of view.
type ResetNotificationRepo struct{ DB *sql.DB }

func NewResetNotificationRepo(db *sql.DB) *ResetNotificationRepo {
	return &ResetNotificationRepo{DB: db}
}

// Create inserts one audit row.
func (r *ResetNotificationRepo) Create(ctx context.Context, n model.ResetNotification) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO reset_password_messages (id, user_id, email_address, subject, body, published_at, sent_at) VALUES (?,?,?,?,?,?,?)",
		n.ID, n.UserID, n.EmailAddress, n.Subject, n.Body, n.PublishedAt, n.SentAt)
	return err
}
