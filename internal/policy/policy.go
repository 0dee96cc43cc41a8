// Package policy holds the access rules for posts in one place.  Each rule
// exists in two forms that must stay in agreement: a pure predicate over
// (user, post) used by tests and in-memory checks, and a SQL WHERE fragment
// that repositories embed so a denied row is never even fetched.  Keeping the
// filter at the query boundary means a non-owner cannot learn that a hidden
// post exists through row counts or timing.
//
// The rules are deliberately asymmetric:
//
//	read:   author or not hidden            (the caller's role is irrelevant)
//	update: author, or admin when not hidden
//	delete: author or admin                 (hidden state is irrelevant)
//
// Admins therefore can delete another user's hidden post but cannot update
// it, and see no extra rows when reading.  Admin privilege on reads is a
// projection concern (extra fields in listings), handled in the handlers,
// not here.
package policy

import "github.com/iliyamo/blog-api/internal/model"

// CanRead reports whether u may read p.
func CanRead(u model.User, p model.Post) bool {
	return p.AuthorID == u.ID || !p.IsHidden
}

// CanUpdate reports whether u may update p.
func CanUpdate(u model.User, p model.Post) bool {
	if p.AuthorID == u.ID {
		return true
	}
	return u.IsAdmin() && !p.IsHidden
}

// CanDelete reports whether u may delete p.
func CanDelete(u model.User, p model.Post) bool {
	return p.AuthorID == u.ID || u.IsAdmin()
}

// ReadFilter returns a WHERE fragment restricting post rows to those u may
// read, with its bind arguments.  The fragment is parenthesized so callers
// can AND it with further conditions.
func ReadFilter(u model.User) (string, []any) {
	return "(author_id = ? OR is_hidden = FALSE)", []any{u.ID}
}

// UpdateFilter returns a WHERE fragment restricting post rows to those u may
// update.
func UpdateFilter(u model.User) (string, []any) {
	if u.IsAdmin() {
		return "(author_id = ? OR is_hidden = FALSE)", []any{u.ID}
	}
	return "author_id = ?", []any{u.ID}
}

// DeleteFilter returns a WHERE fragment restricting post rows to those u may
// delete.  For admins every row qualifies.
func DeleteFilter(u model.User) (string, []any) {
	if u.IsAdmin() {
		return "TRUE", nil
	}
	return "author_id = ?", []any{u.ID}
}
