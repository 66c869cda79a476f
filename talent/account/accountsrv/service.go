package accountsrv

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careerlens/careerlens/pkg/auth"
	"github.com/careerlens/careerlens/pkg/kernel"
	"github.com/careerlens/careerlens/pkg/logx"
	"github.com/careerlens/careerlens/talent/account"
)

const minPasswordLen = 8

// Service handles registration and session issuance
type Service struct {
	repo      account.Repository
	passwords auth.PasswordService
	tokens    auth.TokenService
}

func NewService(repo account.Repository, passwords auth.PasswordService, tokens auth.TokenService) *Service {
	return &Service{
		repo:      repo,
		passwords: passwords,
		tokens:    tokens,
	}
}

// Register creates an account and issues its first session token
func (s *Service) Register(ctx context.Context, req account.RegisterRequest) (*account.SessionResponse, error) {
	email := kernel.NewEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if email.IsEmpty() || !strings.Contains(email.String(), "@") {
		return nil, account.ErrInvalidAccountData().WithDetail("field", "email")
	}
	if len(req.Password) < minPasswordLen {
		return nil, account.ErrInvalidAccountData().
			WithDetail("field", "password").
			WithMessage("Password must be at least 8 characters")
	}

	role, err := parseRole(req.Role)
	if err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, account.ErrEmailTaken().WithDetail("email", email.String())
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, account.ErrRegistry.NewWithCause(account.CodeAccountSaveFailed, err)
	}

	now := time.Now()
	acc := &account.Account{
		ID:           kernel.NewUserID(uuid.New().String()),
		Email:        email,
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, acc); err != nil {
		return nil, err
	}

	logx.Infof("Account registered: ID=%s, Role=%s", acc.ID, acc.Role)
	return s.issueSession(acc)
}

// Login verifies credentials and issues a session token
func (s *Service) Login(ctx context.Context, req account.LoginRequest) (*account.SessionResponse, error) {
	email := kernel.NewEmail(strings.ToLower(strings.TrimSpace(req.Email)))

	acc, err := s.repo.GetByEmail(ctx, email)
	if err != nil || acc == nil {
		// Same response for unknown email and wrong password
		return nil, account.ErrInvalidCredentials()
	}

	if !s.passwords.Verify(acc.PasswordHash, req.Password) {
		logx.Warnf("Failed login attempt: Email=%s", email)
		return nil, account.ErrInvalidCredentials()
	}

	return s.issueSession(acc)
}

// GetAccount returns the account behind a session
func (s *Service) GetAccount(ctx context.Context, id kernel.UserID) (*account.AccountResponse, error) {
	acc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := account.ToAccountResponse(acc)
	return &resp, nil
}

func (s *Service) issueSession(acc *account.Account) (*account.SessionResponse, error) {
	token, err := s.tokens.GenerateToken(acc.ID, acc.Email, acc.Role)
	if err != nil {
		return nil, err
	}
	return &account.SessionResponse{
		Token:   token,
		Account: account.ToAccountResponse(acc),
	}, nil
}

func parseRole(raw string) (auth.Role, error) {
	switch auth.Role(strings.ToLower(strings.TrimSpace(raw))) {
	case "", auth.RoleCandidate:
		return auth.RoleCandidate, nil
	case auth.RoleRecruiter:
		return auth.RoleRecruiter, nil
	default:
		return "", account.ErrInvalidAccountData().
			WithDetail("field", "role").
			WithDetail("allowed_roles", []string{string(auth.RoleCandidate), string(auth.RoleRecruiter)})
	}
}
