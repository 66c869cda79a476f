package profile

import (
	"time"

	"github.com/careerlens/careerlens/pkg/kernel"
	"github.com/careerlens/careerlens/talent/ingestion"
)

// Profile is a candidate's saved resume document plus its search
// embedding. One profile per owner; a new import replaces the document.
type Profile struct {
	ID      kernel.ProfileID `json:"id"`
	OwnerID kernel.UserID    `json:"owner_id"`

	Document       ingestion.FlexibleResumeDocument `json:"document"`
	SourceFileName string                           `json:"source_file_name"`

	Embedding []float32 `json:"-"`

	// Recruiter scoring: cosine similarity of the profile against the
	// criteria it was last scored with. Unset until a recruiter rescores.
	RecruiterScore *float64   `json:"recruiter_score,omitempty"`
	ScoreCriteria  string     `json:"score_criteria,omitempty"`
	ScoredAt       *time.Time `json:"scored_at,omitempty"`

	ImportedAt time.Time `json:"imported_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HasEmbedding reports whether the profile is searchable
func (p *Profile) HasEmbedding() bool {
	return len(p.Embedding) > 0
}

// IsScored reports whether a recruiter has scored the profile
func (p *Profile) IsScored() bool {
	return p.RecruiterScore != nil
}

// DisplayName pulls the candidate's name out of the flexible document
func (p *Profile) DisplayName() string {
	if name, ok := p.Document.Name(); ok {
		return name
	}
	return p.SourceFileName
}
