package dto

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=100,password"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Message string `json:"message"`
	UserID  uint   `json:"userId"`
}

type ForgetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyOtpRequest struct {
	Email string `json:"email" binding:"required,email"`
	Otp   string `json:"otp" binding:"required,numeric"`
	Token string `json:"token" binding:"required"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8,max=100,password"`
}

// SetNewPasswordRequest is the consume step of the authenticated
// change-password flow; the old password is re-verified.
type SetNewPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Token       string `json:"token" binding:"required"`
	OldPassword string `json:"OldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=100,password"`
}

// OtpStepResponse is returned by the request and verify phases; Token is the
// rememberToken after a request, the verifyToken after a successful verify.
type OtpStepResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
	Token   string `json:"token"`
}
