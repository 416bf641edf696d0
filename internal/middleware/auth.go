package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openpress/blogcms/config"
	"github.com/openpress/blogcms/internal/constants"
	apperrors "github.com/openpress/blogcms/internal/errors"
	"github.com/openpress/blogcms/internal/model"
	"github.com/openpress/blogcms/internal/service"
	"go.uber.org/zap"
)

// UserLookup is the slice of the user store the session middleware needs to
// resolve a refresh token back to an account.
type UserLookup interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
}

// SessionCookies writes the token pair as httpOnly cookies. In production
// the cookies are Secure with SameSite=None so a separately hosted frontend
// can send them; elsewhere they stay SameSite=Strict.
type SessionCookies struct {
	cfg    config.AppConfig
	tokens *service.TokenService
}

func NewSessionCookies(cfg config.AppConfig, tokens *service.TokenService) *SessionCookies {
	return &SessionCookies{cfg: cfg, tokens: tokens}
}

func (sc *SessionCookies) sameSite() http.SameSite {
	if sc.cfg.IsProduction() {
		return http.SameSiteNoneMode
	}
	return http.SameSiteStrictMode
}

func (sc *SessionCookies) SetAccess(c *gin.Context, accessToken string) {
	c.SetSameSite(sc.sameSite())
	c.SetCookie(constants.CookieAccessToken, accessToken,
		int(sc.tokens.AccessTTL().Seconds()), "/", "", sc.cfg.IsProduction(), true)
}

func (sc *SessionCookies) SetPair(c *gin.Context, accessToken, refreshToken string) {
	sc.SetAccess(c, accessToken)
	c.SetSameSite(sc.sameSite())
	c.SetCookie(constants.CookieRefreshToken, refreshToken,
		int(sc.tokens.RefreshTTL().Seconds()), "/", "", sc.cfg.IsProduction(), true)
}

func (sc *SessionCookies) Clear(c *gin.Context) {
	c.SetSameSite(sc.sameSite())
	c.SetCookie(constants.CookieAccessToken, "", -1, "/", "", sc.cfg.IsProduction(), true)
	c.SetSameSite(sc.sameSite())
	c.SetCookie(constants.CookieRefreshToken, "", -1, "/", "", sc.cfg.IsProduction(), true)
}

// Session authenticates the request from the cookie pair.
//
// The refresh cookie is the session anchor: without it the request is
// rejected outright. A missing or merely expired access token is renewed
// silently from the refresh token. A present-but-malformed access token is
// treated as tampering and gets no refresh fallback.
func Session(tokens *service.TokenService, users UserLookup, cookies *SessionCookies, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		refreshToken, err := c.Cookie(constants.CookieRefreshToken)
		if err != nil || refreshToken == "" {
			abortWith(c, apperrors.ErrUnauthenticated)
			return
		}

		accessToken, err := c.Cookie(constants.CookieAccessToken)
		if err != nil || accessToken == "" {
			renewFromRefresh(c, tokens, users, cookies, refreshToken)
			return
		}

		claims, err := tokens.VerifyAccessToken(accessToken)
		switch {
		case err == nil:
			c.Set(constants.CtxUserID, claims.UserID)
			c.Next()

		case errors.Is(err, service.ErrTokenExpired):
			renewFromRefresh(c, tokens, users, cookies, refreshToken)

		default:
			logger.Warn("Tampered access token rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			abortWith(c, apperrors.ErrTamperedToken)
		}
	}
}

func renewFromRefresh(c *gin.Context, tokens *service.TokenService, users UserLookup, cookies *SessionCookies, refreshToken string) {
	claims, err := tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		abortWith(c, apperrors.ErrInvalidRefresh)
		return
	}

	user, err := users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWith(c, apperrors.ErrUserNotFound)
		return
	}

	accessToken, err := tokens.IssueAccessToken(user.ID)
	if err != nil {
		abortWith(c, apperrors.ErrInternal)
		return
	}
	cookies.SetAccess(c, accessToken)

	c.Set(constants.CtxUserID, user.ID)
	c.Set(constants.CtxUserEmail, user.Email)
	c.Next()
}

func abortWith(c *gin.Context, derr *apperrors.DomainError) {
	c.AbortWithStatusJSON(derr.Status,
		constants.BuildErrorResponse(derr.Message, derr.Code))
}

// CurrentUserID returns the authenticated user id placed by Session.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(constants.CtxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
