package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"onlyfilms/internal/config"
	"onlyfilms/internal/httperr"
	"onlyfilms/internal/middleware"
	"onlyfilms/internal/model"
	"onlyfilms/internal/repository"
	"onlyfilms/internal/utils"
)

// UserHandler bundles the user CRUD surface with registration, login and
// the refresh-token session endpoints.
type UserHandler struct {
	Controller[model.User]
	Cfg    config.Config
	Tokens repository.TokenStore
}

func NewUserHandler(cfg config.Config, users repository.Repository[model.User], tokens repository.TokenStore) *UserHandler {
	return &UserHandler{
		Controller: Controller[model.User]{Repo: users},
		Cfg:        cfg,
		Tokens:     tokens,
	}
}

type registerReq struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type loginResp struct {
	User         model.User `json:"user"`
	Token        string     `json:"token"`
	RefreshToken string     `json:"refreshToken"`
}

// Register creates a user with a bcrypt-hashed credential.
func (h *UserHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.UserName = strings.TrimSpace(req.UserName)
	if req.UserName == "" || req.Email == "" || req.Password == "" {
		return httperr.BadRequest("userName, email and password are required")
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return err
	}
	user, err := h.Repo.Create(c.Request().Context(), model.User{
		UserName: req.UserName,
		Email:    req.Email,
		Password: hash,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// Login matches the credential against the user found by email or userName
// and issues an access token plus a stored, rotatable refresh token.
func (h *UserHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid body")
	}
	req.User = strings.TrimSpace(req.User)
	if req.User == "" || req.Password == "" {
		return httperr.BadRequest("user and password are required")
	}

	ctx := c.Request().Context()
	matches, err := h.Repo.Search(ctx, repository.Filter{Key: "email", Value: strings.ToLower(req.User)})
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		if matches, err = h.Repo.Search(ctx, repository.Filter{Key: "userName", Value: req.User}); err != nil {
			return err
		}
	}
	if len(matches) == 0 || !utils.VerifyPassword(matches[0].Password, req.Password) {
		return httperr.Unauthorized("wrong credentials")
	}
	user := matches[0]

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, user.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return err
	}
	if err := h.Tokens.StoreRefresh(ctx, user.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loginResp{User: user, Token: access.Token, RefreshToken: refresh.Raw})
}

// Refresh rotates a valid refresh token and returns a new access token.
func (h *UserHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return httperr.BadRequest("refreshToken is required")
	}

	ctx := c.Request().Context()
	oldHash := utils.HashRefreshRaw(req.RefreshToken)
	userID, err := h.Tokens.ValidateRefresh(ctx, oldHash)
	if err != nil {
		return httperr.Unauthorized("invalid refresh token")
	}

	user, err := h.Repo.QueryByID(ctx, userID)
	if err != nil {
		return err
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, user.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return err
	}
	if err := h.Tokens.RevokeByHash(ctx, oldHash); err != nil {
		return err
	}
	if err := h.Tokens.StoreRefresh(ctx, user.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loginResp{User: user, Token: access.Token, RefreshToken: refresh.Raw})
}

// Logout revokes the presented refresh token.
func (h *UserHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return httperr.BadRequest("refreshToken is required")
	}
	if err := h.Tokens.RevokeByHash(c.Request().Context(), utils.HashRefreshRaw(req.RefreshToken)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// SetAvatar persists the uploaded image as the authenticated user's avatar.
func (h *UserHandler) SetAvatar(c echo.Context) error {
	payload, ok := middleware.Payload(c)
	if !ok {
		return httperr.BadRequest("missing authentication context")
	}
	img, ok := middleware.UploadedImage(c, "avatar")
	if !ok {
		return httperr.NotAcceptable("no valid image file")
	}
	user, err := h.Repo.Update(c.Request().Context(), payload.UserID, map[string]any{"avatar": img})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, user)
}
