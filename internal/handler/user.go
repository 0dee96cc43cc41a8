package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/blog-api/internal/config"
	"github.com/iliyamo/blog-api/internal/httperr"
	"github.com/iliyamo/blog-api/internal/middleware"
	"github.com/iliyamo/blog-api/internal/model"
	"github.com/iliyamo/blog-api/internal/repository"
	"github.com/iliyamo/blog-api/internal/utils"
)

// UserStore is the slice of the user repository the user endpoints need.
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	List(ctx context.Context, elevated bool) ([]model.User, error)
}

// UserHandler bundles dependencies for the user endpoints.
type UserHandler struct {
	Cfg         config.Config
	Users       UserStore
	Invalidator CacheInvalidator
}

func NewUserHandler(cfg config.Config, users UserStore, inv CacheInvalidator) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: users, Invalidator: inv}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResp struct {
	Token string `json:"token"`
}

type userResp struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type adminUserResp struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Register creates a BLOGGER account.  Name and email must be globally
// unique; a collision answers 400 with NAME_ALREADY_USED or
// EMAIL_ALREADY_USED, name first when both collide.  Success is a bare 204.
func (h *UserHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return httperr.Validation([]httperr.Issue{{Field: "body", Message: "must be a JSON object"}})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var issues []httperr.Issue
	issues = checkName(req.Name, issues)
	issues = checkEmail(req.Email, issues)
	issues = checkPassword(req.Password, issues)
	if len(issues) > 0 {
		return httperr.Validation(issues)
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return httperr.Internal(err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.Create(ctx, req.Name, req.Email, hash); err != nil {
		switch {
		case errors.Is(err, repository.ErrNameExists):
			return httperr.BadRequest("NAME_ALREADY_USED")
		case errors.Is(err, repository.ErrEmailExists):
			return httperr.BadRequest("EMAIL_ALREADY_USED")
		default:
			return httperr.Internal(err)
		}
	}
	// The new account changes the user directory, so cached listings are
	// stale the moment the row lands.
	if h.Invalidator != nil {
		h.Invalidator.Invalidate(ctx)
	}
	return c.NoContent(http.StatusNoContent)
}

// Login verifies credentials and issues an access token.  An unknown email
// and a wrong password produce the identical 401 so the endpoint cannot be
// used to enumerate accounts.
func (h *UserHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return httperr.Validation([]httperr.Issue{{Field: "body", Message: "must be a JSON object"}})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var issues []httperr.Issue
	issues = checkEmail(req.Email, issues)
	issues = checkPassword(req.Password, issues)
	if len(issues) > 0 {
		return httperr.Validation(issues)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return httperr.Unauthorized("EMAIL_OR_PASSWORD_INCORRECT")
		}
		return httperr.Internal(err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return httperr.Unauthorized("EMAIL_OR_PASSWORD_INCORRECT")
	}

	at, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, tokenResp{Token: at.Token})
}

// List returns the user directory.  Admin callers receive id, name and email
// for every account; everyone else receives name and email only, with admin
// accounts left out entirely.  The row filter lives in the repository, the
// field projection here.
func (h *UserHandler) List(c echo.Context) error {
	me := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx, me.IsAdmin())
	if err != nil {
		return httperr.Internal(err)
	}

	if me.IsAdmin() {
		out := make([]adminUserResp, 0, len(users))
		for _, u := range users {
			out = append(out, adminUserResp{ID: u.ID, Name: u.Name, Email: u.Email})
		}
		return c.JSON(http.StatusOK, out)
	}
	out := make([]userResp, 0, len(users))
	for _, u := range users {
		out = append(out, userResp{Name: u.Name, Email: u.Email})
	}
	return c.JSON(http.StatusOK, out)
}
