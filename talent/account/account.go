package account

import (
	"time"

	"github.com/careerlens/careerlens/pkg/auth"
	"github.com/careerlens/careerlens/pkg/kernel"
)

// Account is a registered user of the platform. Candidates upload resumes
// and own a single profile; recruiters browse and search profiles.
type Account struct {
	ID           kernel.UserID `json:"id" db:"id"`
	Email        kernel.Email  `json:"email" db:"email"`
	FullName     string        `json:"full_name" db:"full_name"`
	PasswordHash string        `json:"-" db:"password_hash"`
	Role         auth.Role     `json:"role" db:"role"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// IsRecruiter reports whether the account can use the recruiter surfaces
func (a *Account) IsRecruiter() bool {
	return a.Role == auth.RoleRecruiter
}
