package router

import (
	"github.com/gin-gonic/gin"
	"github.com/openpress/blogcms/internal/handler"
)

// registerAuthRoutes mounts the authentication surface. The OTP consume
// endpoints are deliberately open: reset-password serves users who cannot
// log in, and new-set-password is guarded by the verifyToken rather than a
// session.
func registerAuthRoutes(api *gin.RouterGroup, session gin.HandlerFunc, h *handler.AuthHandler) {
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	api.POST("/logout", h.Logout)

	api.POST("/forget-password", h.ForgetPassword)
	api.POST("/verify", h.VerifyOtp)
	api.POST("/reset-password", h.ResetPassword)
	api.POST("/new-set-password", h.SetNewPassword)

	api.GET("/auth-check", session, h.AuthCheck)
	api.POST("/change-password", session, h.ChangePassword)
	api.POST("/otp-verify", session, h.VerifyOtp)
}
