package service

import (
	"errors"
	"testing"
	"time"

	"github.com/openpress/blogcms/config"
)

func testTokenConfig() config.TokenConfig {
	return config.TokenConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    30 * 24 * time.Hour,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService(testTokenConfig())

	access, err := svc.IssueAccessToken(42)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	claims, err := svc.VerifyAccessToken(access)
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}

	refresh, err := svc.IssueRefreshToken(42, "user@example.com")
	if err != nil {
		t.Fatalf("IssueRefreshToken: %v", err)
	}

	rClaims, err := svc.VerifyRefreshToken(refresh)
	if err != nil {
		t.Fatalf("VerifyRefreshToken: %v", err)
	}
	if rClaims.UserID != 42 || rClaims.Email != "user@example.com" {
		t.Errorf("claims = %d/%q, want 42/user@example.com", rClaims.UserID, rClaims.Email)
	}
}

func TestTokenSecretsAreNotInterchangeable(t *testing.T) {
	svc := NewTokenService(testTokenConfig())

	refresh, err := svc.IssueRefreshToken(1, "a@b.c")
	if err != nil {
		t.Fatalf("IssueRefreshToken: %v", err)
	}

	if _, err := svc.VerifyAccessToken(refresh); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("refresh token verified as access token, err = %v", err)
	}

	access, err := svc.IssueAccessToken(1)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	if _, err := svc.VerifyRefreshToken(access); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("access token verified as refresh token, err = %v", err)
	}
}

func TestExpiredTokenReportsExpiry(t *testing.T) {
	cfg := testTokenConfig()
	cfg.AccessTTL = -time.Minute
	svc := NewTokenService(cfg)

	access, err := svc.IssueAccessToken(7)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	if _, err := svc.VerifyAccessToken(access); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestTamperedTokenIsInvalidNotExpired(t *testing.T) {
	svc := NewTokenService(testTokenConfig())

	access, err := svc.IssueAccessToken(7)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	tampered := access[:len(access)-3] + "xyz"
	if _, err := svc.VerifyAccessToken(tampered); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}

	if _, err := svc.VerifyAccessToken("not-a-jwt"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}
