package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/nexshop/marketplace/internal/application"
	"github.com/nexshop/marketplace/pkg/helpers"
	"github.com/nexshop/marketplace/pkg/response"
	"github.com/nexshop/marketplace/pkg/validation"
)

type AuthHandler struct {
	Svc     *application.Service
	JWT     *helpers.JWTManager
	Redis   *redis.Client
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.Service, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		Svc:     svc,
		JWT:     jwt,
		Redis:   rdb,
		Logger:  logger,
		Cookies: helpers.NewCookie(cookieDomain, cookieSecure),
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Name     string `json:"name" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, application.ErrDuplicateEmail) {
			response.Error(c, http.StatusConflict, "email already registered", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "registration failed", nil)
		return
	}
	response.Success(c, http.StatusCreated, res, "account created")
}

type verifyRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *AuthHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.VerifyEmail(c.Request.Context(), req.Token)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid or expired token", nil)
		return
	}
	response.Success(c, http.StatusOK, u, "email verified")
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	access, aexp, err := h.JWT.GenerateAccessToken(u.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to issue token", nil)
		return
	}
	refresh, rexp, err := h.JWT.GenerateRefreshToken(u.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to issue token", nil)
		return
	}
	h.Cookies.SetPair(c, access, aexp, refresh, rexp)

	// Session hash backs the Auth middleware; its TTL tracks the
	// refresh token.
	if h.Redis != nil {
		key := "user:session:" + u.ID
		ctx := c.Request.Context()
		if err := h.Redis.HSet(ctx, key, map[string]any{
			"user_id": u.ID,
			"name":    u.Name,
			"email":   u.Email,
		}).Err(); err != nil {
			h.Logger.WithError(err).Warn("store session failed")
		} else {
			_ = h.Redis.ExpireAt(ctx, key, rexp).Err()
		}
	}

	response.Success(c, http.StatusOK, u, "login successful")
}

// Refresh rotates the cookie pair off the refresh token so an expired
// access token does not force a re-login. The session hash's TTL is
// pushed out to match the new refresh expiry.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, err := c.Cookie("refresh_token")
	if err != nil || token == "" {
		response.Error(c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	claims, err := h.JWT.ParseRefreshToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	u, err := h.Svc.GetUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "unknown account", nil)
		return
	}

	access, aexp, err := h.JWT.GenerateAccessToken(u.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to issue token", nil)
		return
	}
	refresh, rexp, err := h.JWT.GenerateRefreshToken(u.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to issue token", nil)
		return
	}
	h.Cookies.SetPair(c, access, aexp, refresh, rexp)

	if h.Redis != nil {
		_ = h.Redis.ExpireAt(c.Request.Context(), "user:session:"+u.ID, rexp).Err()
	}
	response.Success(c, http.StatusOK, gin.H{"refreshed": true}, "token refreshed")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if h.Redis != nil {
		if uid := c.GetString("userID"); uid != "" {
			_ = h.Redis.Del(c.Request.Context(), "user:session:"+uid).Err()
		}
	}
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true}, "logged out")
}

func (h *AuthHandler) GetUser(c *gin.Context) {
	u, err := h.Svc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, u, "user")
}

func (h *AuthHandler) UpdateUser(c *gin.Context) {
	var req application.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, u, "profile updated")
}

// Profile returns the authenticated user's account; the id comes from
// the Auth middleware, never the URL.
func (h *AuthHandler) Profile(c *gin.Context) {
	u, err := h.Svc.GetUser(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.Error(c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, u, "profile")
}
