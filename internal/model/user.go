package model

// User is the identity the remote auth service returns for a visitor.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
}
