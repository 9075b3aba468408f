package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/user-account-service/internal/model"
)

const userColumns = "id, name, surname, username, password_hash, phone_number, email, role, `group`, s3_file_path, is_blocked, created_at, modified_at"

// UserRepo persists account records in the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// ListParams narrows and orders a user listing. Groups is the set of
// group names the caller is allowed to see; SortBy and Order must have
// been validated against the whitelist before reaching the repository.
type ListParams struct {
	Groups     []string
	Page       int
	Limit      int
	SortBy     string
	Order      string
	NameFilter string
}

// Create inserts a new user row. The id must already be assigned by the
// caller; it is immutable from here on.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id, name, surname, username, password_hash, phone_number, email, role, `group`, s3_file_path, is_blocked) VALUES (?,?,?,?,?,?,?,?,?,?,?)",
		u.ID, u.Name, u.Surname, u.Username, u.PasswordHash, u.PhoneNumber, u.Email, string(u.Role), u.Group, u.AvatarURL, u.IsBlocked)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetByID fetches a user by its UUID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.getWhere(ctx, "id=?", id)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getWhere(ctx, "email=?", strings.ToLower(strings.TrimSpace(email)))
}

// GetByLogin matches the identifier against username, email and phone
// number; the first match wins. The store enforces per-field uniqueness,
// so cross-field collisions are not a concern here.
func (r *UserRepo) GetByLogin(ctx context.Context, identifier string) (model.User, error) {
	identifier = strings.TrimSpace(identifier)
	return r.getWhere(ctx, "username=? OR email=? OR phone_number=?",
		identifier, strings.ToLower(identifier), identifier)
}

func (r *UserRepo) getWhere(ctx context.Context, where string, args ...any) (model.User, error) {
	var u model.User
	var role string
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+where+" LIMIT 1", args...).
		Scan(&u.ID, &u.Name, &u.Surname, &u.Username, &u.PasswordHash, &u.PhoneNumber,
			&u.Email, &role, &u.Group, &u.AvatarURL, &u.IsBlocked, &u.CreatedAt, &u.ModifiedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	u.Role = model.Role(role)
	return u, nil
}

// Update overwrites every mutable column of the user row. The id and
// created_at are never touched.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name=?, surname=?, username=?, password_hash=?, phone_number=?, email=?, role=?, `group`=?, s3_file_path=?, is_blocked=?, modified_at=NOW() WHERE id=?",
		u.Name, u.Surname, u.Username, u.PasswordHash, u.PhoneNumber, u.Email,
		string(u.Role), u.Group, u.AvatarURL, u.IsBlocked, u.ID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicate
		}
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

// UpdatePassword replaces the stored credential inside a single
// transaction: the row is locked, re-read and mutated as one unit, so a
// concurrent delete makes the whole operation fail with ErrNotFound
// instead of partially applying. The user as read under the lock is
// returned for audit purposes.
func (r *UserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) (model.User, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.User{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var u model.User
	var role string
	err = tx.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1 FOR UPDATE", id).
		Scan(&u.ID, &u.Name, &u.Surname, &u.Username, &u.PasswordHash, &u.PhoneNumber,
			&u.Email, &role, &u.Group, &u.AvatarURL, &u.IsBlocked, &u.CreatedAt, &u.ModifiedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	u.Role = model.Role(role)

	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET password_hash=?, modified_at=NOW() WHERE id=?",
		passwordHash, id); err != nil {
		return model.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.User{}, err
	}
	u.PasswordHash = passwordHash
	return u, nil
}

// Delete removes the user row permanently.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

// sortColumns whitelists the columns a listing may be ordered by.
var sortColumns = map[string]string{
	"name":       "name",
	"surname":    "surname",
	"username":   "username",
	"email":      "email",
	"created_at": "created_at",
}

// ListByGroups returns one page of users belonging to any of the given
// groups. An empty group set yields an empty page.
func (r *UserRepo) ListByGroups(ctx context.Context, p ListParams) ([]model.User, error) {
	if len(p.Groups) == 0 {
		return []model.User{}, nil
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 30
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + userColumns + " FROM users WHERE `group` IN (")
	args := make([]any, 0, len(p.Groups)+3)
	for i, g := range p.Groups {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("?")
		args = append(args, g)
	}
	sb.WriteString(")")

	if p.NameFilter != "" {
		sb.WriteString(" AND name LIKE ?")
		args = append(args, "%"+p.NameFilter+"%")
	}

	col, ok := sortColumns[p.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if strings.EqualFold(p.Order, "desc") {
		dir = "DESC"
	}
	fmt.Fprintf(&sb, " ORDER BY %s %s LIMIT ? OFFSET ?", col, dir)
	args = append(args, p.Limit, (p.Page-1)*p.Limit)

	rows, err := r.DB.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]model.User, 0, p.Limit)
	for rows.Next() {
		var u model.User
		var role string
		if err := rows.Scan(&u.ID, &u.Name, &u.Surname, &u.Username, &u.PasswordHash,
			&u.PhoneNumber, &u.Email, &role, &u.Group, &u.AvatarURL, &u.IsBlocked,
			&u.CreatedAt, &u.ModifiedAt); err != nil {
			return nil, err
		}
		u.Role = model.Role(role)
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListAllGroups returns the distinct group names present in the store.
func (r *UserRepo) ListAllGroups(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT DISTINCT `group` FROM users")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
