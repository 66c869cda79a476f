package profile

import (
	"time"

	"github.com/careerlens/careerlens/pkg/kernel"
	"github.com/careerlens/careerlens/talent/ingestion"
)

// ============================================================================
// Request DTOs
// ============================================================================

// UpdateDocumentRequest replaces the profile's document with a manually
// edited version
type UpdateDocumentRequest struct {
	Document ingestion.FlexibleResumeDocument `json:"document" validate:"required"`
}

// SearchRequest - Semantic search over candidate profiles
type SearchRequest struct {
	Query string `json:"query" validate:"required"`
	TopK  int    `json:"top_k"`
}

// RescoreRequest scores a profile against a recruiter's criteria, e.g.
// a job description or a skills wishlist
type RescoreRequest struct {
	Criteria string `json:"criteria" validate:"required"`
}

// ============================================================================
// Response DTOs
// ============================================================================

// ProfileResponse is the API shape of a profile. Contact fields are
// best-effort views over the flexible document.
type ProfileResponse struct {
	ID      kernel.ProfileID `json:"id"`
	OwnerID kernel.UserID    `json:"owner_id"`

	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`

	Document       ingestion.FlexibleResumeDocument `json:"document"`
	SourceFileName string                           `json:"source_file_name"`
	Searchable     bool                             `json:"searchable"`

	RecruiterScore *float64   `json:"recruiter_score,omitempty"`
	ScoreCriteria  string     `json:"score_criteria,omitempty"`
	ScoredAt       *time.Time `json:"scored_at,omitempty"`

	ImportedAt time.Time `json:"imported_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MatchResult is one semantic search hit
type MatchResult struct {
	Profile    ProfileResponse `json:"profile"`
	Similarity float64         `json:"similarity"`
}

// SearchResponse wraps search hits with the query that produced them
type SearchResponse struct {
	Query   string        `json:"query"`
	Results []MatchResult `json:"results"`
}

// ToProfileResponse maps a domain profile to its API shape
func ToProfileResponse(p *Profile) *ProfileResponse {
	resp := &ProfileResponse{
		ID:             p.ID,
		OwnerID:        p.OwnerID,
		Document:       p.Document,
		SourceFileName: p.SourceFileName,
		Searchable:     p.HasEmbedding(),
		RecruiterScore: p.RecruiterScore,
		ScoreCriteria:  p.ScoreCriteria,
		ScoredAt:       p.ScoredAt,
		ImportedAt:     p.ImportedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if name, ok := p.Document.Name(); ok {
		resp.Name = name
	}
	if email, ok := p.Document.Email(); ok {
		resp.Email = email
	}
	if phone, ok := p.Document.Phone(); ok {
		resp.Phone = phone
	}
	return resp
}
