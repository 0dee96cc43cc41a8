package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/blog-api/internal/model"
)

const alicePost = `{"title":"first post","content":"this is long enough content"}`

func listPosts(t *testing.T, e *echo.Echo, token string) []map[string]any {
	t.Helper()
	rec := request(e, http.MethodGet, "/api/v1/posts", token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestEmptyListAfterRegisterAndLogin(t *testing.T) {
	t.Parallel()

	e, _, _, _ := newApp(t)
	rec := request(e, http.MethodPost, "/api/v1/users/register", "",
		`{"name":"alice","email":"a@x.com","password":"Abcd123!"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	token := loginToken(t, e, "a@x.com", "Abcd123!")
	posts := listPosts(t, e, token)
	assert.Empty(t, posts)
	// The empty case must serialize as [] rather than null.
	rec = request(e, http.MethodGet, "/api/v1/posts", token, "")
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestCreateRequiresAuth(t *testing.T) {
	t.Parallel()

	e, _, _, _ := newApp(t)
	rec := request(e, http.MethodPost, "/api/v1/posts", "", alicePost)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "AUTH_MISSING", wireMessage(t, rec))
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	e, users, _, _ := newApp(t)
	users.seed(t, "alice", "a@x.com", "Abcd123!", model.RoleBlogger)
	token := loginToken(t, e, "a@x.com", "Abcd123!")

	tests := []struct {
		name string
		body string
	}{
		{"short title", `{"title":"short","content":"this is long enough content"}`},
		{"bad title characters", `{"title":"hello, world!","content":"this is long enough content"}`},
		{"short content", `{"title":"first post","content":"too short"}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := request(e, http.MethodPost, "/api/v1/posts", token, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Invalid request", wireMessage(t, rec))
		})
	}
}

// A visible post belongs to everyone's listing; only its owner may change or
// remove it.
func TestVisiblePostOtherUser(t *testing.T) {
	t.Parallel()

	e, users, _, _ := newApp(t)
	users.seed(t, "alice", "a@x.com", "Abcd123!", model.RoleBlogger)
	users.seed(t, "bob", "b@x.com", "Abcd123!", model.RoleBlogger)

	aliceToken := loginToken(t, e, "a@x.com", "Abcd123!")
	bobToken := loginToken(t, e, "b@x.com", "Abcd123!")

	rec := request(e, http.MethodPost, "/api/v1/posts", aliceToken, alicePost)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Bob can list and read it.
	posts := listPosts(t, e, bobToken)
	require.Len(t, posts, 1)
	author, ok := posts[0]["author"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", author["name"])
	assert.NotContains(t, author, "id") // id is an admin-only field

	rec = request(e, http.MethodGet, "/api/v1/posts/1", bobToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Bob cannot update or delete it.
	rec = request(e, http.MethodPut, "/api/v1/posts/1", bobToken, `{"title":"hijacked title"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Post 1 not found", wireMessage(t, rec))

	rec = request(e, http.MethodDelete, "/api/v1/posts/1", bobToken, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Post 1 not found", wireMessage(t, rec))
}

// Hiding a post removes it from everyone else's view; an admin can then
// delete it but not update it, and gains no read access.
func TestHiddenPostAdminAsymmetry(t *testing.T) {
	t.Parallel()

	e, users, _, _ := newApp(t)
	users.seed(t, "alice", "a@x.com", "Abcd123!", model.RoleBlogger)
	users.seed(t, "bob", "b@x.com", "Abcd123!", model.RoleBlogger)
	users.seed(t, "root", "root@x.com", "Abcd123!", model.RoleAdmin)

	aliceToken := loginToken(t, e, "a@x.com", "Abcd123!")
	bobToken := loginToken(t, e, "b@x.com", "Abcd123!")
	adminToken := loginToken(t, e, "root@x.com", "Abcd123!")

	rec := request(e, http.MethodPost, "/api/v1/posts", aliceToken, alicePost)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Alice hides her post.
	rec = request(e, http.MethodPut, "/api/v1/posts/1", aliceToken, `{"isHidden":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The owner still sees it.
	require.Len(t, listPosts(t, e, aliceToken), 1)
	rec = request(e, http.MethodGet, "/api/v1/posts/1", aliceToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Bob no longer lists or reads it.
	assert.Empty(t, listPosts(t, e, bobToken))
	rec = request(e, http.MethodGet, "/api/v1/posts/1", bobToken, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The read rule ignores role: the admin cannot see it either.
	assert.Empty(t, listPosts(t, e, adminToken))
	rec = request(e, http.MethodGet, "/api/v1/posts/1", adminToken, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Update of a hidden foreign post is denied even for the admin...
	rec = request(e, http.MethodPut, "/api/v1/posts/1", adminToken, `{"title":"admin edited it"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Post 1 not found", wireMessage(t, rec))

	// ...but delete goes through regardless of the hidden flag.
	rec = request(e, http.MethodDelete, "/api/v1/posts/1", adminToken, "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, listPosts(t, e, aliceToken))
}

func TestAdminUpdatesVisibleForeignPost(t *testing.T) {
	t.Parallel()

	e, users, _, _ := newApp(t)
	users.seed(t, "alice", "a@x.com", "Abcd123!", model.RoleBlogger)
	users.seed(t, "root", "root@x.com", "Abcd123!", model.RoleAdmin)

	aliceToken := loginToken(t, e, "a@x.com", "Abcd123!")
	adminToken := loginToken(t, e, "root@x.com", "Abcd123!")

	rec := request(e, http.MethodPost, "/api/v1/posts", aliceToken, alicePost)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// While the post is visible, the admin may update it.
	rec = request(e, http.MethodPut, "/api/v1/posts/1", adminToken, `{"isHidden":true}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Once hidden, a second admin update is denied.
	rec = request(e, http.MethodPut, "/api/v1/posts/1", adminToken, `{"isHidden":false}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminSeesAuthorIDInListing(t *testing.T) {
	t.Parallel()

	e, users, _, _ := newApp(t)
	alice := users.seed(t, "alice", "a@x.com", "Abcd123!", model.RoleBlogger)
	users.seed(t, "root", "root@x.com", "Abcd123!", model.RoleAdmin)

	aliceToken := loginToken(t, e, "a@x.com", "Abcd123!")
	adminToken := loginToken(t, e, "root@x.com", "Abcd123!")

	rec := request(e, http.MethodPost, "/api/v1/posts", aliceToken, alicePost)
	require.Equal(t, http.StatusNoContent, rec.Code)

	posts := listPosts(t, e, adminToken)
	require.Len(t, posts, 1)
	author, ok := posts[0]["author"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(alice.ID), author["id"])
	assert.Equal(t, "alice", author["name"])
}

func TestUpdateRequiresAtLeastOneField(t *testing.T) {
	t.Parallel()

	e, users, _, _ := newApp(t)
	users.seed(t, "alice", "a@x.com", "Abcd123!", model.RoleBlogger)
	token := loginToken(t, e, "a@x.com", "Abcd123!")

	rec := request(e, http.MethodPost, "/api/v1/posts", token, alicePost)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// An empty update is malformed input, not an authorization failure.
	rec = request(e, http.MethodPut, "/api/v1/posts/1", token, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request", wireMessage(t, rec))
}

func TestShowUnknownPost(t *testing.T) {
	t.Parallel()

	e, users, _, _ := newApp(t)
	users.seed(t, "alice", "a@x.com", "Abcd123!", model.RoleBlogger)
	token := loginToken(t, e, "a@x.com", "Abcd123!")

	rec := request(e, http.MethodGet, "/api/v1/posts/42", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Post 42 not found", wireMessage(t, rec))

	rec = request(e, http.MethodGet, "/api/v1/posts/abc", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request", wireMessage(t, rec))
}
