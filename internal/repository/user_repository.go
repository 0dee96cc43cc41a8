package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/blog-api/internal/model"
)

// UserRepo manages persistence for users.
type UserRepo struct{ db *sql.DB }

// NewUserRepo constructs a UserRepo with the given DB handle.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// Create registers a new user with the BLOGGER role and returns its ID.
// Uniqueness of name and email is checked twice: a fast-path SELECT picks the
// reason code up front (name takes priority when both collide), and the
// UNIQUE constraints on the table are the authoritative backstop for the
// race between that check and the INSERT.  A duplicate-key error from the
// INSERT is mapped onto the same sentinels.
func (r *UserRepo) Create(ctx context.Context, name, email, passwordHash string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var existingName, existingEmail string
	err := r.db.QueryRowContext(ctx,
		"SELECT name, email FROM users WHERE name=? OR email=? LIMIT 1",
		name, email).Scan(&existingName, &existingEmail)
	switch {
	case err == nil:
		if existingName == name {
			return 0, ErrNameExists
		}
		return 0, ErrEmailExists
	case err != sql.ErrNoRows:
		return 0, err
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (role, name, email, password_hash) VALUES (?,?,?,?)",
		model.RoleBlogger, name, email, passwordHash)
	if err != nil {
		// MySQL reports duplicate keys as error 1062 and names the violated
		// index, which tells us which field lost the race.
		if msg := strings.ToLower(err.Error()); strings.Contains(msg, "1062") {
			if strings.Contains(msg, "uq_users_name") {
				return 0, ErrNameExists
			}
			if strings.Contains(msg, "uq_users_email") {
				return 0, ErrEmailExists
			}
			return 0, ErrNameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.  Returns ErrUserNotFound
// when no row matches.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.db.QueryRowContext(ctx,
		"SELECT id,role,name,email,password_hash,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Role, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// GetByID fetches a user by id.  Returns ErrUserNotFound when no row matches.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx,
		"SELECT id,role,name,email,password_hash,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Role, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// List returns the user rows visible to a caller.  The projection and the
// row filter are both decided here so the query never fetches what the
// caller may not see: an elevated caller receives id, name and email for
// everyone including admins, while a regular caller receives only name and
// email and never sees admin accounts at all.
func (r *UserRepo) List(ctx context.Context, elevated bool) ([]model.User, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if elevated {
		rows, err = r.db.QueryContext(ctx,
			"SELECT id, name, email FROM users ORDER BY id")
	} else {
		rows, err = r.db.QueryContext(ctx,
			"SELECT name, email FROM users WHERE role <> ? ORDER BY id", model.RoleAdmin)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if elevated {
			err = rows.Scan(&u.ID, &u.Name, &u.Email)
		} else {
			err = rows.Scan(&u.Name, &u.Email)
		}
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
