package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nexshop/marketplace/internal/container"
	handlers "github.com/nexshop/marketplace/internal/interface/http"
	"github.com/nexshop/marketplace/internal/interface/middleware"
	"github.com/nexshop/marketplace/pkg/helpers"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Public endpoints with IP-based rate limits
	registerLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	verifyLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/register", registerLimiter, m.Handler.Register)
	rg.POST("/auth/verify", verifyLimiter, m.Handler.Verify)
	rg.POST("/auth/refresh", refreshLimiter, m.Handler.Refresh)
	rg.POST("/login", loginLimiter, m.Handler.Login)

	rg.GET("/users/:id", m.Handler.GetUser)
	rg.PUT("/users/:id", m.Handler.UpdateUser)

	// Protected
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/profile", m.Handler.Profile)
		auth.POST("/logout", m.Handler.Logout)
	}
}
