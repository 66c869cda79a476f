package account

import (
	"net/http"

	"github.com/careerlens/careerlens/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("ACCOUNT")

var (
	CodeAccountNotFound    = ErrRegistry.Register("ACCOUNT_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Account not found")
	CodeEmailTaken         = ErrRegistry.Register("EMAIL_TAKEN", errx.TypeConflict, http.StatusConflict, "Email is already registered")
	CodeInvalidCredentials = ErrRegistry.Register("INVALID_CREDENTIALS", errx.TypeAuthentication, http.StatusUnauthorized, "Invalid email or password")
	CodeInvalidAccountData = ErrRegistry.Register("INVALID_ACCOUNT_DATA", errx.TypeValidation, http.StatusBadRequest, "Account data is invalid")
	CodeAccountSaveFailed  = ErrRegistry.Register("ACCOUNT_SAVE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to save account")
)

func ErrAccountNotFound() *errx.Error {
	return ErrRegistry.New(CodeAccountNotFound)
}

func ErrEmailTaken() *errx.Error {
	return ErrRegistry.New(CodeEmailTaken)
}

func ErrInvalidCredentials() *errx.Error {
	return ErrRegistry.New(CodeInvalidCredentials)
}

func ErrInvalidAccountData() *errx.Error {
	return ErrRegistry.New(CodeInvalidAccountData)
}

func ErrAccountSaveFailed() *errx.Error {
	return ErrRegistry.New(CodeAccountSaveFailed)
}
