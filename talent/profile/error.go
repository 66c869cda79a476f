package profile

import (
	"net/http"

	"github.com/careerlens/careerlens/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("PROFILE")

var (
	CodeProfileNotFound    = ErrRegistry.Register("PROFILE_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Profile not found")
	CodeProfileSaveFailed  = ErrRegistry.Register("PROFILE_SAVE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to save profile")
	CodeInvalidProfileData = ErrRegistry.Register("INVALID_PROFILE_DATA", errx.TypeValidation, http.StatusBadRequest, "Profile data is invalid")
	CodeEmbeddingFailed    = ErrRegistry.Register("EMBEDDING_FAILED", errx.TypeInternal, http.StatusBadGateway, "Failed to generate profile embedding")
	CodeSearchFailed       = ErrRegistry.Register("SEARCH_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Profile search failed")
	CodeProfileNotScorable = ErrRegistry.Register("PROFILE_NOT_SCORABLE", errx.TypeBusiness, http.StatusConflict, "Profile has no embedding to score against")
)

func ErrProfileNotFound() *errx.Error {
	return ErrRegistry.New(CodeProfileNotFound)
}

func ErrProfileSaveFailed() *errx.Error {
	return ErrRegistry.New(CodeProfileSaveFailed)
}

func ErrInvalidProfileData() *errx.Error {
	return ErrRegistry.New(CodeInvalidProfileData)
}

func ErrEmbeddingFailed() *errx.Error {
	return ErrRegistry.New(CodeEmbeddingFailed)
}

func ErrSearchFailed() *errx.Error {
	return ErrRegistry.New(CodeSearchFailed)
}

func ErrProfileNotScorable() *errx.Error {
	return ErrRegistry.New(CodeProfileNotScorable)
}
