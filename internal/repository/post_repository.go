// Post persistence.  Every read, update and delete in this file carries the
// caller's eligibility filter from the policy package inside the WHERE
// clause, so a row the caller may not act on behaves exactly like a row that
// does not exist.
package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/blog-api/internal/model"
	"github.com/iliyamo/blog-api/internal/policy"
)

// PostWithAuthor pairs a post row with its author's public identity for
// listings.  AuthorName is always populated; whether the author's id is
// exposed to the client is a projection decision made in the handler.
type PostWithAuthor struct {
	model.Post
	AuthorName string
}

// PostUpdate carries the mutable post fields.  Nil pointers mean "leave
// unchanged"; the handler guarantees at least one field is set.
type PostUpdate struct {
	Title    *string
	Content  *string
	IsHidden *bool
}

// PostRepo manages persistence for posts.
type PostRepo struct{ db *sql.DB }

// NewPostRepo constructs a PostRepo with the given DB handle.
func NewPostRepo(db *sql.DB) *PostRepo { return &PostRepo{db: db} }

const postColumns = "id, author_id, title, content, is_hidden, created_at, updated_at"

// Create inserts a new post owned by p.AuthorID and assigns the generated ID
// back to the struct.
func (r *PostRepo) Create(ctx context.Context, p *model.Post) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO posts (author_id, title, content) VALUES (?,?,?)",
		p.AuthorID, p.Title, p.Content)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// FindReadable fetches a single post the viewer is allowed to read.  A post
// that exists but is hidden from the viewer yields ErrPostNotFound, the same
// as a post that does not exist.
func (r *PostRepo) FindReadable(ctx context.Context, viewer model.User, id uint64) (model.Post, error) {
	frag, args := policy.ReadFilter(viewer)
	q := "SELECT " + postColumns + " FROM posts WHERE id = ? AND " + frag + " LIMIT 1"
	return r.scanOne(ctx, q, append([]any{id}, args...)...)
}

// FindUpdatable fetches a single post the viewer is allowed to update,
// with the same indistinguishable ErrPostNotFound on denial.
func (r *PostRepo) FindUpdatable(ctx context.Context, viewer model.User, id uint64) (model.Post, error) {
	frag, args := policy.UpdateFilter(viewer)
	q := "SELECT " + postColumns + " FROM posts WHERE id = ? AND " + frag + " LIMIT 1"
	return r.scanOne(ctx, q, append([]any{id}, args...)...)
}

func (r *PostRepo) scanOne(ctx context.Context, q string, args ...any) (model.Post, error) {
	var p model.Post
	err := r.db.QueryRowContext(ctx, q, args...).Scan(
		&p.ID, &p.AuthorID, &p.Title, &p.Content, &p.IsHidden, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Post{}, ErrPostNotFound
	}
	return p, err
}

// ListReadable returns every post passing the viewer's read filter, each
// joined with its author's name.
func (r *PostRepo) ListReadable(ctx context.Context, viewer model.User) ([]PostWithAuthor, error) {
	frag, args := policy.ReadFilter(viewer)
	q := `SELECT p.id, p.author_id, p.title, p.content, p.is_hidden, p.created_at, p.updated_at, u.name
	      FROM posts p JOIN users u ON u.id = p.author_id
	      WHERE ` + frag + ` ORDER BY p.id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]PostWithAuthor, 0)
	for rows.Next() {
		var pa PostWithAuthor
		if err := rows.Scan(&pa.ID, &pa.AuthorID, &pa.Title, &pa.Content,
			&pa.IsHidden, &pa.CreatedAt, &pa.UpdatedAt, &pa.AuthorName); err != nil {
			return nil, err
		}
		posts = append(posts, pa)
	}
	return posts, rows.Err()
}

// Update applies the non-nil fields of upd to the post with the given id.
// The caller must have located the row through FindUpdatable first; this
// statement itself filters only by id so an unchanged-value update is not
// mistaken for a denial.
func (r *PostRepo) Update(ctx context.Context, id uint64, upd PostUpdate) error {
	set := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if upd.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Content != nil {
		set = append(set, "content = ?")
		args = append(args, *upd.Content)
	}
	if upd.IsHidden != nil {
		set = append(set, "is_hidden = ?")
		args = append(args, *upd.IsHidden)
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := r.db.ExecContext(ctx,
		"UPDATE posts SET "+strings.Join(set, ", ")+" WHERE id = ?", args...)
	return err
}

// Delete removes the post if the viewer's delete filter admits it.  Zero
// rows affected means the post is absent or out of reach, reported as the
// one ErrPostNotFound.
func (r *PostRepo) Delete(ctx context.Context, viewer model.User, id uint64) error {
	frag, args := policy.DeleteFilter(viewer)
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM posts WHERE id = ? AND "+frag, append([]any{id}, args...)...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPostNotFound
	}
	return nil
}
