package model

// SignInRequest is the sign-in form.
type SignInRequest struct {
	Email    string `form:"email" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// SignUpRequest is the sign-up form.
type SignUpRequest struct {
	FullName string `form:"full_name" json:"full_name" binding:"required"`
	Email    string `form:"email" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required,min=6"`
}

// MinPasswordLength is enforced locally before sign-up reaches the remote service.
const MinPasswordLength = 6
