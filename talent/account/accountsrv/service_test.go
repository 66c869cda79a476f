package accountsrv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerlens/careerlens/pkg/auth"
	"github.com/careerlens/careerlens/pkg/errx"
	"github.com/careerlens/careerlens/pkg/kernel"
	"github.com/careerlens/careerlens/talent/account"
)

type fakeAccountRepo struct {
	byEmail map[kernel.Email]*account.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{byEmail: make(map[kernel.Email]*account.Account)}
}

func (r *fakeAccountRepo) Create(_ context.Context, a *account.Account) error {
	if _, ok := r.byEmail[a.Email]; ok {
		return account.ErrEmailTaken()
	}
	cp := *a
	r.byEmail[a.Email] = &cp
	return nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id kernel.UserID) (*account.Account, error) {
	for _, a := range r.byEmail {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, account.ErrAccountNotFound()
}

func (r *fakeAccountRepo) GetByEmail(_ context.Context, email kernel.Email) (*account.Account, error) {
	a, ok := r.byEmail[email]
	if !ok {
		return nil, account.ErrAccountNotFound()
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAccountRepo) Update(_ context.Context, a *account.Account) error {
	if _, ok := r.byEmail[a.Email]; !ok {
		return account.ErrAccountNotFound()
	}
	cp := *a
	r.byEmail[a.Email] = &cp
	return nil
}

func newTestService() (*Service, *fakeAccountRepo, auth.TokenService) {
	repo := newFakeAccountRepo()
	tokens := auth.NewJWTService("test-secret", time.Hour, "careerlens-test")
	svc := NewService(repo, auth.NewBcryptPasswordService(), tokens)
	return svc, repo, tokens
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	var xerr *errx.Error
	require.True(t, errors.As(err, &xerr), "expected errx error, got %v", err)
	return xerr.Code
}

func TestRegisterIssuesValidSession(t *testing.T) {
	svc, _, tokens := newTestService()

	session, err := svc.Register(context.Background(), account.RegisterRequest{
		Email:    "jane@example.com",
		Password: "correct-horse",
		FullName: "Jane Doe",
	})
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)

	claims, err := tokens.ValidateToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.Account.ID, claims.UserID)
	assert.Equal(t, auth.RoleCandidate, claims.Role)
	assert.Equal(t, kernel.NewEmail("jane@example.com"), claims.Email)
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc, repo, _ := newTestService()

	session, err := svc.Register(context.Background(), account.RegisterRequest{
		Email:    "  Jane@Example.COM ",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, kernel.NewEmail("jane@example.com"), session.Account.Email)

	_, ok := repo.byEmail[kernel.NewEmail("jane@example.com")]
	assert.True(t, ok)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), account.RegisterRequest{
		Email:    "jane@example.com",
		Password: "short",
	})
	require.Error(t, err)
	assert.Equal(t, "ACCOUNT_INVALID_ACCOUNT_DATA", errCode(t, err))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	req := account.RegisterRequest{Email: "jane@example.com", Password: "correct-horse"}

	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, "ACCOUNT_EMAIL_TAKEN", errCode(t, err))
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), account.RegisterRequest{
		Email:    "jane@example.com",
		Password: "correct-horse",
		Role:     "admin",
	})
	require.Error(t, err)
	assert.Equal(t, "ACCOUNT_INVALID_ACCOUNT_DATA", errCode(t, err))
}

func TestRegisterAllowsRecruiterRole(t *testing.T) {
	svc, _, tokens := newTestService()

	session, err := svc.Register(context.Background(), account.RegisterRequest{
		Email:    "rec@example.com",
		Password: "correct-horse",
		Role:     "recruiter",
	})
	require.NoError(t, err)

	claims, err := tokens.ValidateToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleRecruiter, claims.Role)
}

func TestLoginVerifiesPassword(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), account.RegisterRequest{
		Email:    "jane@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	session, err := svc.Login(context.Background(), account.LoginRequest{
		Email:    "jane@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)

	_, err = svc.Login(context.Background(), account.LoginRequest{
		Email:    "jane@example.com",
		Password: "wrong-horse",
	})
	require.Error(t, err)
	assert.Equal(t, "ACCOUNT_INVALID_CREDENTIALS", errCode(t, err))
}

func TestLoginDoesNotRevealUnknownEmail(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), account.RegisterRequest{
		Email:    "jane@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	_, wrongPass := svc.Login(context.Background(), account.LoginRequest{
		Email:    "jane@example.com",
		Password: "wrong-horse",
	})
	_, unknown := svc.Login(context.Background(), account.LoginRequest{
		Email:    "nobody@example.com",
		Password: "correct-horse",
	})

	require.Error(t, wrongPass)
	require.Error(t, unknown)
	assert.Equal(t, errCode(t, wrongPass), errCode(t, unknown))
}
