package model

import "time"

// Roles stored in users.role.  Registration always assigns RoleBlogger; there
// is no endpoint that elevates a user to RoleAdmin, so admin accounts are
// created out of band.
const (
    RoleAdmin   = "ADMIN"
    RoleBlogger = "BLOGGER"
)

// User represents an application user record as stored in the `users` table.
// Each field corresponds to a column.  The json tags are omitted because
// these structs are used internally by the repository layer; handlers define
// separate response types with the projection appropriate for the caller's
// role.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Role         – role name (ADMIN or BLOGGER), fixed after registration.
//  Name         – unique display name (case-sensitive).
//  Email        – unique email address, stored lowercased.
//  PasswordHash – bcrypt hashed password.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Role         string    // users.role
    Name         string    // users.name
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// IsAdmin reports whether the user carries the elevated role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
