package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openpress/blogcms/config"
	"github.com/openpress/blogcms/internal/constants"
	apperrors "github.com/openpress/blogcms/internal/errors"
	"github.com/openpress/blogcms/internal/model"
	"github.com/openpress/blogcms/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeLookup struct {
	users map[uint]*model.User
}

func (f *fakeLookup) GetByID(_ context.Context, id uint) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func sessionTestConfig() config.TokenConfig {
	return config.TokenConfig{
		AccessSecret:  "mw-access-secret",
		RefreshSecret: "mw-refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    720 * time.Hour,
	}
}

type sessionFixture struct {
	router *gin.Engine
	tokens *service.TokenService
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := service.NewTokenService(sessionTestConfig())
	lookup := &fakeLookup{users: map[uint]*model.User{
		1: {
			Model:  gorm.Model{ID: 1},
			Name:   "Session User",
			Email:  "session@example.com",
			Role:   constants.RoleReader,
			Status: constants.StatusActive,
		},
	}}
	cookies := NewSessionCookies(config.AppConfig{Environment: "test"}, tokens)

	router := gin.New()
	router.GET("/protected", Session(tokens, lookup, cookies, zap.NewNop()), func(c *gin.Context) {
		id, _ := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	return &sessionFixture{router: router, tokens: tokens}
}

func (f *sessionFixture) request(t *testing.T, access, refresh string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if refresh != "" {
		req.AddCookie(&http.Cookie{Name: constants.CookieRefreshToken, Value: refresh})
	}
	if access != "" {
		req.AddCookie(&http.Cookie{Name: constants.CookieAccessToken, Value: access})
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	code, _ := body["error"].(string)
	return code
}

func newAccessCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == constants.CookieAccessToken {
			return c
		}
	}
	return nil
}

func TestSessionMissingRefreshCookie(t *testing.T) {
	f := newSessionFixture(t)

	w := f.request(t, "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if code := errorCode(t, w); code != apperrors.CodeUnauthenticated {
		t.Errorf("code = %q, want %q", code, apperrors.CodeUnauthenticated)
	}
}

func TestSessionRefreshOnlyMintsAccessCookie(t *testing.T) {
	f := newSessionFixture(t)

	refresh, err := f.tokens.IssueRefreshToken(1, "session@example.com")
	if err != nil {
		t.Fatalf("IssueRefreshToken: %v", err)
	}

	w := f.request(t, "", refresh)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	cookie := newAccessCookie(w)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected a fresh access cookie")
	}
	if _, err := f.tokens.VerifyAccessToken(cookie.Value); err != nil {
		t.Errorf("minted access token does not verify: %v", err)
	}
}

func TestSessionValidAccessPassesThrough(t *testing.T) {
	f := newSessionFixture(t)

	refresh, _ := f.tokens.IssueRefreshToken(1, "session@example.com")
	access, _ := f.tokens.IssueAccessToken(1)

	w := f.request(t, access, refresh)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if newAccessCookie(w) != nil {
		t.Error("no cookie refresh expected when the access token is valid")
	}
}

func TestSessionExpiredAccessRenewsSilently(t *testing.T) {
	f := newSessionFixture(t)

	expiredCfg := sessionTestConfig()
	expiredCfg.AccessTTL = -time.Minute
	expired, err := service.NewTokenService(expiredCfg).IssueAccessToken(1)
	if err != nil {
		t.Fatalf("issue expired token: %v", err)
	}

	refresh, _ := f.tokens.IssueRefreshToken(1, "session@example.com")

	w := f.request(t, expired, refresh)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	if cookie := newAccessCookie(w); cookie == nil || cookie.Value == "" {
		t.Error("expected a renewed access cookie")
	}
}

func TestSessionTamperedAccessGetsNoRefreshFallback(t *testing.T) {
	f := newSessionFixture(t)

	// The refresh token is perfectly valid; a tampered access token must
	// still be rejected.
	refresh, _ := f.tokens.IssueRefreshToken(1, "session@example.com")
	access, _ := f.tokens.IssueAccessToken(1)
	tampered := access[:len(access)-3] + "abc"

	w := f.request(t, tampered, refresh)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if code := errorCode(t, w); code != apperrors.CodeAttack {
		t.Errorf("code = %q, want %q", code, apperrors.CodeAttack)
	}
	if newAccessCookie(w) != nil {
		t.Error("tampered token must not be silently renewed")
	}
}

func TestSessionInvalidRefreshToken(t *testing.T) {
	f := newSessionFixture(t)

	w := f.request(t, "", "garbage-refresh")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestSessionUnknownUserOnRenewal(t *testing.T) {
	f := newSessionFixture(t)

	// Token is valid but the account is gone.
	refresh, _ := f.tokens.IssueRefreshToken(99, "deleted@example.com")

	w := f.request(t, "", refresh)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
