package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/openpress/blogcms/internal/constants"
	apperrors "github.com/openpress/blogcms/internal/errors"
	"go.uber.org/zap"
)

// Authorize gates a route group on the authenticated user's role. The role
// is read from the database on every request so a demotion takes effect
// immediately, not at the next login.
//
// With checkRole false the middleware only requires a resolvable account;
// with checkRole true the account's role must be in the allow list.
func Authorize(users UserLookup, logger *zap.Logger, checkRole bool, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := CurrentUserID(c)
		if !ok {
			abortWith(c, apperrors.ErrUnauthenticated)
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			abortWith(c, apperrors.ErrUserNotFound)
			return
		}

		if checkRole && !roleAllowed(user.Role, roles) {
			logger.Warn("Role check failed",
				zap.Uint("user_id", userID),
				zap.String("role", user.Role),
				zap.String("path", c.Request.URL.Path),
			)
			abortWith(c, apperrors.ErrForbidden)
			return
		}

		c.Set(constants.CtxUserEmail, user.Email)
		c.Next()
	}
}

func roleAllowed(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
