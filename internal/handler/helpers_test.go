package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/blog-api/internal/config"
	"github.com/iliyamo/blog-api/internal/handler"
	"github.com/iliyamo/blog-api/internal/httperr"
	"github.com/iliyamo/blog-api/internal/middleware"
	"github.com/iliyamo/blog-api/internal/model"
	"github.com/iliyamo/blog-api/internal/policy"
	"github.com/iliyamo/blog-api/internal/repository"
	"github.com/iliyamo/blog-api/internal/router"
	"github.com/iliyamo/blog-api/internal/utils"
)

const testSecret = "handler-test-secret"

// fakeUsers is an in-memory stand-in for the user repository.  It enforces
// the same uniqueness semantics, including name-before-email priority.
type fakeUsers struct {
	mu    sync.Mutex
	seq   uint64
	users map[uint64]model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[uint64]model.User)}
}

func (f *fakeUsers) Create(_ context.Context, name, email, passwordHash string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Name == name {
			return 0, repository.ErrNameExists
		}
	}
	for _, u := range f.users {
		if u.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	f.seq++
	f.users[f.seq] = model.User{
		ID: f.seq, Role: model.RoleBlogger, Name: name, Email: email,
		PasswordHash: passwordHash, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	return f.seq, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) List(_ context.Context, elevated bool) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		if !elevated && u.Role == model.RoleAdmin {
			continue
		}
		if elevated {
			out = append(out, model.User{ID: u.ID, Name: u.Name, Email: u.Email})
		} else {
			out = append(out, model.User{Name: u.Name, Email: u.Email})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// seed inserts a user directly, bypassing registration.
func (f *fakeUsers) seed(t *testing.T, name, email, password, role string) model.User {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	require.NoError(t, err)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	u := model.User{
		ID: f.seq, Role: role, Name: name, Email: email,
		PasswordHash: hash, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	f.users[f.seq] = u
	return u
}

// fakePosts is an in-memory stand-in for the post repository.  Eligibility
// goes through the policy package, the same rules the SQL filters implement.
type fakePosts struct {
	mu    sync.Mutex
	seq   uint64
	posts map[uint64]model.Post
	users *fakeUsers
}

func newFakePosts(users *fakeUsers) *fakePosts {
	return &fakePosts{posts: make(map[uint64]model.Post), users: users}
}

func (f *fakePosts) Create(_ context.Context, p *model.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	p.ID = f.seq
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	f.posts[p.ID] = *p
	return nil
}

func (f *fakePosts) FindReadable(_ context.Context, viewer model.User, id uint64) (model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok || !policy.CanRead(viewer, p) {
		return model.Post{}, repository.ErrPostNotFound
	}
	return p, nil
}

func (f *fakePosts) ListReadable(_ context.Context, viewer model.User) ([]repository.PostWithAuthor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.PostWithAuthor, 0)
	for _, p := range f.posts {
		if !policy.CanRead(viewer, p) {
			continue
		}
		name := ""
		if author, ok := f.users.users[p.AuthorID]; ok {
			name = author.Name
		}
		out = append(out, repository.PostWithAuthor{Post: p, AuthorName: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePosts) FindUpdatable(_ context.Context, viewer model.User, id uint64) (model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok || !policy.CanUpdate(viewer, p) {
		return model.Post{}, repository.ErrPostNotFound
	}
	return p, nil
}

func (f *fakePosts) Update(_ context.Context, id uint64, upd repository.PostUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.posts[id]
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Content != nil {
		p.Content = *upd.Content
	}
	if upd.IsHidden != nil {
		p.IsHidden = *upd.IsHidden
	}
	p.UpdatedAt = time.Now()
	f.posts[id] = p
	return nil
}

func (f *fakePosts) Delete(_ context.Context, viewer model.User, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok || !policy.CanDelete(viewer, p) {
		return repository.ErrPostNotFound
	}
	delete(f.posts, id)
	return nil
}

// fakeInvalidator counts cache invalidations so tests can assert that a
// write dropped cached listings.
type fakeInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeInvalidator) Invalidate(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
}

func (f *fakeInvalidator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// newApp wires the real handlers, routes, gate and error translator around
// the in-memory stores, so tests exercise the same paths as production
// requests minus MySQL.
func newApp(t *testing.T) (*echo.Echo, *fakeUsers, *fakePosts, *fakeInvalidator) {
	t.Helper()

	cfg := config.Config{JWTSecret: testSecret, AccessTTLMin: 15, BcryptCost: 4}
	users := newFakeUsers()
	posts := newFakePosts(users)
	inv := &fakeInvalidator{}

	e := echo.New()
	e.HTTPErrorHandler = httperr.Handler()
	gate := middleware.Auth(cfg.JWTSecret, users)
	cache := middleware.Cache(config.CacheConfig{}, nil) // disabled

	router.RegisterUsers(e, handler.NewUserHandler(cfg, users, inv), gate, cache)
	router.RegisterPosts(e, handler.NewPostHandler(posts, inv), gate, cache)
	return e, users, posts, inv
}

func request(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func loginToken(t *testing.T, e *echo.Echo, email, password string) string {
	t.Helper()
	rec := request(e, http.MethodPost, "/api/v1/users/login", "",
		`{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func wireMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	msg, _ := body["message"].(string)
	return msg
}
