package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/openpress/blogcms/config"
)

// Token verification failures. Callers use ErrTokenExpired to decide whether
// silent renewal via the refresh token is allowed; any other failure is
// treated as tampering and is terminal.
var (
	ErrTokenExpired = errors.New("token is expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// SessionClaims is the payload of both token kinds. Access tokens carry only
// the user id; refresh tokens also carry the email.
type SessionClaims struct {
	UserID uint   `json:"id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies the signed access/refresh token pair.
// It is pure computation over the two secrets and has no side effects.
type TokenService struct {
	cfg config.TokenConfig
}

func NewTokenService(cfg config.TokenConfig) *TokenService {
	return &TokenService{cfg: cfg}
}

// AccessTTL reports the configured access token lifetime, used for the
// cookie max age.
func (s *TokenService) AccessTTL() time.Duration {
	return s.cfg.AccessTTL
}

// RefreshTTL reports the configured refresh token lifetime.
func (s *TokenService) RefreshTTL() time.Duration {
	return s.cfg.RefreshTTL
}

// IssueAccessToken signs a short-lived token embedding the user id.
func (s *TokenService) IssueAccessToken(userID uint) (string, error) {
	return s.sign(&SessionClaims{UserID: userID}, s.cfg.AccessSecret, s.cfg.AccessTTL)
}

// IssueRefreshToken signs a long-lived token embedding the user id and email.
func (s *TokenService) IssueRefreshToken(userID uint, email string) (string, error) {
	return s.sign(&SessionClaims{UserID: userID, Email: email}, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
}

// VerifyAccessToken validates an access token. Returns ErrTokenExpired for a
// well-formed but stale token, ErrTokenInvalid for anything else.
func (s *TokenService) VerifyAccessToken(tokenString string) (*SessionClaims, error) {
	return s.verify(tokenString, s.cfg.AccessSecret)
}

// VerifyRefreshToken validates a refresh token.
func (s *TokenService) VerifyRefreshToken(tokenString string) (*SessionClaims, error) {
	return s.verify(tokenString, s.cfg.RefreshSecret)
}

func (s *TokenService) sign(claims *SessionClaims, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (s *TokenService) verify(tokenString, secret string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
