package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexshop/marketplace/internal/application"
	"github.com/nexshop/marketplace/internal/store"
	"github.com/nexshop/marketplace/pkg/helpers"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *helpers.JWTManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	require.NoError(t, store.Seed(context.Background(), st))
	svc := application.NewService(st, nil, nil)
	jwtm := helpers.NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	h := NewAuthHandler(svc, jwtm, nil, logrus.New(), "", false)

	r := gin.New()
	r.POST("/api/auth/refresh", h.Refresh)
	return r, jwtm
}

func cookieNames(res *http.Response) map[string]string {
	out := map[string]string{}
	for _, c := range res.Cookies() {
		out[c.Name] = c.Value
	}
	return out
}

func TestRefreshRotatesCookiePair(t *testing.T) {
	r, jwtm := newAuthRouter(t)

	refresh, _, err := jwtm.GenerateRefreshToken("user_dev_1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: refresh})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	cookies := cookieNames(w.Result())
	assert.NotEmpty(t, cookies["access_token"])
	assert.NotEmpty(t, cookies["refresh_token"])

	// the new access token is valid for the same account
	claims, err := jwtm.ParseAccessToken(cookies["access_token"])
	require.NoError(t, err)
	assert.Equal(t, "user_dev_1", claims.UserID)
}

func TestRefreshRejectsBadTokens(t *testing.T) {
	r, jwtm := newAuthRouter(t)

	// no cookie at all
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// garbage token
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "not-a-jwt"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// an access token must not pass as a refresh token
	access, _, err := jwtm.GenerateAccessToken("user_dev_1")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: access})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// a valid token for a deleted account is rejected too
	ghost, _, err := jwtm.GenerateRefreshToken("no-such-user")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: ghost})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
