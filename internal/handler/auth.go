package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openpress/blogcms/internal/constants"
	"github.com/openpress/blogcms/internal/dto"
	apperrors "github.com/openpress/blogcms/internal/errors"
	"github.com/openpress/blogcms/internal/middleware"
	"github.com/openpress/blogcms/internal/service"
	"github.com/openpress/blogcms/pkg/mailer"
)

// AuthHandler exposes registration, login and the two OTP-driven password
// flows. Tokens travel exclusively in httpOnly cookies; response bodies
// never carry them.
type AuthHandler struct {
	auth    *service.AuthService
	cookies *middleware.SessionCookies
}

func NewAuthHandler(auth *service.AuthService, cookies *middleware.SessionCookies) *AuthHandler {
	return &AuthHandler{auth: auth, cookies: cookies}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidInput(c)
		return
	}

	userID, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.LoginResponse{
		Message: "Registered successfully",
		UserID:  userID,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidInput(c)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.cookies.SetPair(c, result.AccessToken, result.RefreshToken)
	c.JSON(http.StatusOK, dto.LoginResponse{
		Message: "Logged in successfully",
		UserID:  result.UserID,
	})
}

// Logout clears both cookies unconditionally; server-side invalidation is
// best effort on top.
func (h *AuthHandler) Logout(c *gin.Context) {
	if refreshToken, err := c.Cookie(constants.CookieRefreshToken); err == nil && refreshToken != "" {
		_ = h.auth.Logout(c.Request.Context(), refreshToken)
	}

	h.cookies.Clear(c)
	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Logged out successfully"))
}

// AuthCheck only runs behind the session middleware, so reaching it means
// the cookies are good.
func (h *AuthHandler) AuthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Authenticated"))
}

func (h *AuthHandler) ForgetPassword(c *gin.Context) {
	var req dto.ForgetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidInput(c)
		return
	}

	token, err := h.auth.RequestOtp(c.Request.Context(), req.Email, mailer.PurposeForgetPassword)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OtpStepResponse{
		Message: "OTP has been sent to your email",
		Email:   req.Email,
		Token:   token,
	})
}

func (h *AuthHandler) VerifyOtp(c *gin.Context) {
	var req dto.VerifyOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidInput(c)
		return
	}

	token, err := h.auth.VerifyOtp(c.Request.Context(), req.Email, req.Otp, req.Token)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OtpStepResponse{
		Message: "OTP is successfully verified",
		Email:   req.Email,
		Token:   token,
	})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidInput(c)
		return
	}

	result, err := h.auth.ResetPassword(c.Request.Context(), req.Email, req.Token, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.cookies.SetPair(c, result.AccessToken, result.RefreshToken)
	c.JSON(http.StatusOK, dto.LoginResponse{
		Message: "Password has been reset successfully",
		UserID:  result.UserID,
	})
}

// ChangePassword starts the authenticated change-password flow by mailing an
// OTP to the logged-in account. The target mailbox comes from the session,
// never from the request body.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, apperrors.ErrUnauthenticated)
		return
	}

	email, token, err := h.auth.RequestOtpForUser(c.Request.Context(), userID, mailer.PurposeChangePassword)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OtpStepResponse{
		Message: "OTP has been sent to your email",
		Email:   email,
		Token:   token,
	})
}

func (h *AuthHandler) SetNewPassword(c *gin.Context) {
	var req dto.SetNewPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidInput(c)
		return
	}

	result, err := h.auth.SetNewPassword(c.Request.Context(),
		req.Email, req.Token, req.OldPassword, req.NewPassword)
	if err != nil {
		respondError(c, err)
		return
	}

	h.cookies.SetPair(c, result.AccessToken, result.RefreshToken)
	c.JSON(http.StatusOK, dto.LoginResponse{
		Message: "Password has been changed successfully",
		UserID:  result.UserID,
	})
}
