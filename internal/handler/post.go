package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/blog-api/internal/httperr"
	"github.com/iliyamo/blog-api/internal/middleware"
	"github.com/iliyamo/blog-api/internal/model"
	"github.com/iliyamo/blog-api/internal/queue"
	"github.com/iliyamo/blog-api/internal/repository"
	queue_publisher "github.com/iliyamo/blog-api/internal/service"
)

// PostStore is the slice of the post repository the post endpoints need.
// Every method that reads or mutates a row takes the viewer so the
// eligibility filter travels with the query.
type PostStore interface {
	Create(ctx context.Context, p *model.Post) error
	FindReadable(ctx context.Context, viewer model.User, id uint64) (model.Post, error)
	ListReadable(ctx context.Context, viewer model.User) ([]repository.PostWithAuthor, error)
	FindUpdatable(ctx context.Context, viewer model.User, id uint64) (model.Post, error)
	Update(ctx context.Context, id uint64, upd repository.PostUpdate) error
	Delete(ctx context.Context, viewer model.User, id uint64) error
}

// PostHandler bundles dependencies for the post endpoints.
type PostHandler struct {
	Posts       PostStore
	Invalidator CacheInvalidator
}

func NewPostHandler(posts PostStore, inv CacheInvalidator) *PostHandler {
	return &PostHandler{Posts: posts, Invalidator: inv}
}

// ----- DTOs -----

type createPostReq struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type updatePostReq struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	IsHidden *bool   `json:"isHidden"`
}

type authorResp struct {
	ID   uint64 `json:"id,omitempty"`
	Name string `json:"name"`
}

type postResp struct {
	ID        uint64      `json:"id"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	AuthorID  uint64      `json:"authorId"`
	IsHidden  bool        `json:"isHidden"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Author    *authorResp `json:"author,omitempty"`
}

func toPostResp(p model.Post) postResp {
	return postResp{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		AuthorID:  p.AuthorID,
		IsHidden:  p.IsHidden,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// notFound is the single signal for "absent", "hidden from you" and "not
// yours to touch".
func notFound(id uint64) *httperr.Error {
	return httperr.BadRequest(fmt.Sprintf("Post %d not found", id))
}

func postID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, httperr.Validation([]httperr.Issue{{Field: "id", Message: "must be a positive integer"}})
	}
	return id, nil
}

// afterWrite publishes the lifecycle event and drops cached listings.  Both
// are best effort; the write itself has already committed.
func (h *PostHandler) afterWrite(kind string, p model.Post) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = queue_publisher.PublishPostEvent(ctx, queue.PostEvent{
		Kind:       kind,
		PostID:     p.ID,
		AuthorID:   p.AuthorID,
		Title:      p.Title,
		IsHidden:   p.IsHidden,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	if h.Invalidator != nil {
		h.Invalidator.Invalidate(ctx)
	}
}

// List returns every post the caller may read, each with its author's name.
// Admin callers additionally see the author's id; that is the only thing
// their role buys them here, the row set is the same for everyone.
func (h *PostHandler) List(c echo.Context) error {
	me := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	posts, err := h.Posts.ListReadable(ctx, me)
	if err != nil {
		return httperr.Internal(err)
	}

	out := make([]postResp, 0, len(posts))
	for _, pa := range posts {
		resp := toPostResp(pa.Post)
		author := authorResp{Name: pa.AuthorName}
		if me.IsAdmin() {
			author.ID = pa.AuthorID
		}
		resp.Author = &author
		out = append(out, resp)
	}
	return c.JSON(http.StatusOK, out)
}

// Show returns a single readable post.
func (h *PostHandler) Show(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	me := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Posts.FindReadable(ctx, me, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return notFound(id)
		}
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, toPostResp(p))
}

// Create stores a new post owned by the caller.  Ownership is fixed here and
// never changes afterwards.
func (h *PostHandler) Create(c echo.Context) error {
	var req createPostReq
	if err := c.Bind(&req); err != nil {
		return httperr.Validation([]httperr.Issue{{Field: "body", Message: "must be a JSON object"}})
	}
	var issues []httperr.Issue
	issues = checkTitle(req.Title, issues)
	issues = checkContent(req.Content, issues)
	if len(issues) > 0 {
		return httperr.Validation(issues)
	}

	me := middleware.CurrentUser(c)
	p := model.Post{AuthorID: me.ID, Title: req.Title, Content: req.Content}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Posts.Create(ctx, &p); err != nil {
		return httperr.Internal(err)
	}
	h.afterWrite(queue.PostCreated, p)
	return c.NoContent(http.StatusNoContent)
}

// Update modifies title, content and/or the hidden flag of a post the caller
// may update.  At least one field must be present; a body with none is a
// validation failure, not an authorization one.
func (h *PostHandler) Update(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	var req updatePostReq
	if err := c.Bind(&req); err != nil {
		return httperr.Validation([]httperr.Issue{{Field: "body", Message: "must be a JSON object"}})
	}
	if req.Title == nil && req.Content == nil && req.IsHidden == nil {
		return httperr.Validation([]httperr.Issue{
			{Field: "body", Message: "at least one of title, content, isHidden is required"},
		})
	}
	var issues []httperr.Issue
	if req.Title != nil {
		issues = checkTitle(*req.Title, issues)
	}
	if req.Content != nil {
		issues = checkContent(*req.Content, issues)
	}
	if len(issues) > 0 {
		return httperr.Validation(issues)
	}

	me := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Posts.FindUpdatable(ctx, me, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return notFound(id)
		}
		return httperr.Internal(err)
	}

	upd := repository.PostUpdate{Title: req.Title, Content: req.Content, IsHidden: req.IsHidden}
	if err := h.Posts.Update(ctx, p.ID, upd); err != nil {
		return httperr.Internal(err)
	}

	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.IsHidden != nil {
		p.IsHidden = *req.IsHidden
	}
	h.afterWrite(queue.PostUpdated, p)
	return c.NoContent(http.StatusOK)
}

// Delete removes a post the caller may delete.  Note the deliberate
// asymmetry with Update: an admin can delete another user's hidden post even
// though updating it is off limits.
func (h *PostHandler) Delete(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	me := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Posts.Delete(ctx, me, id); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return notFound(id)
		}
		return httperr.Internal(err)
	}
	h.afterWrite(queue.PostDeleted, model.Post{ID: id})
	return c.NoContent(http.StatusOK)
}
