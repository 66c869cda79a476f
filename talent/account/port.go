package account

import (
	"context"

	"github.com/careerlens/careerlens/pkg/kernel"
)

// Repository persists accounts
type Repository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id kernel.UserID) (*Account, error)
	GetByEmail(ctx context.Context, email kernel.Email) (*Account, error)
	Update(ctx context.Context, a *Account) error
}
