package accountinfra

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/careerlens/careerlens/pkg/kernel"
	"github.com/careerlens/careerlens/pkg/logx"
	"github.com/careerlens/careerlens/talent/account"
)

type PostgresAccountRepository struct {
	db *sqlx.DB
}

func NewPostgresAccountRepository(db *sqlx.DB) account.Repository {
	return &PostgresAccountRepository{db: db}
}

const accountColumns = `
	id, email, full_name, password_hash, role, created_at, updated_at`

func (r *PostgresAccountRepository) Create(ctx context.Context, a *account.Account) error {
	query := `
		INSERT INTO accounts (
			id, email, full_name, password_hash, role, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.Email, a.FullName, a.PasswordHash, a.Role,
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return account.ErrEmailTaken().WithDetail("email", a.Email.String())
		}
		return account.ErrRegistry.NewWithCause(account.CodeAccountSaveFailed, err).
			WithDetail("operation", "insert")
	}

	logx.Infof("Created account: %s", a.ID)
	return nil
}

func (r *PostgresAccountRepository) GetByID(ctx context.Context, id kernel.UserID) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	var a account.Account
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, account.ErrAccountNotFound().WithDetail("account_id", id)
		}
		return nil, account.ErrRegistry.NewWithCause(account.CodeAccountSaveFailed, err).
			WithDetail("operation", "select")
	}
	return &a, nil
}

func (r *PostgresAccountRepository) GetByEmail(ctx context.Context, email kernel.Email) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`

	var a account.Account
	if err := r.db.GetContext(ctx, &a, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, account.ErrAccountNotFound().WithDetail("email", email.String())
		}
		return nil, account.ErrRegistry.NewWithCause(account.CodeAccountSaveFailed, err).
			WithDetail("operation", "select")
	}
	return &a, nil
}

func (r *PostgresAccountRepository) Update(ctx context.Context, a *account.Account) error {
	query := `
		UPDATE accounts SET
			full_name = $2,
			password_hash = $3,
			role = $4,
			updated_at = $5
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		a.ID, a.FullName, a.PasswordHash, a.Role, a.UpdatedAt,
	)
	if err != nil {
		return account.ErrRegistry.NewWithCause(account.CodeAccountSaveFailed, err).
			WithDetail("operation", "update")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return account.ErrAccountNotFound().WithDetail("account_id", a.ID)
	}
	return nil
}
