package account

import (
	"time"

	"github.com/careerlens/careerlens/pkg/auth"
	"github.com/careerlens/careerlens/pkg/kernel"
)

// RegisterRequest creates a new account
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// LoginRequest exchanges credentials for a session token
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse carries an issued session token and its account
type SessionResponse struct {
	Token   string          `json:"token"`
	Account AccountResponse `json:"account"`
}

// AccountResponse is the public view of an account
type AccountResponse struct {
	ID        kernel.UserID `json:"id"`
	Email     kernel.Email  `json:"email"`
	FullName  string        `json:"full_name"`
	Role      auth.Role     `json:"role"`
	CreatedAt time.Time     `json:"created_at"`
}

// ToAccountResponse shapes an account for API responses
func ToAccountResponse(a *Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Email:     a.Email,
		FullName:  a.FullName,
		Role:      a.Role,
		CreatedAt: a.CreatedAt,
	}
}
