package profile

import (
	"context"
	"time"

	"github.com/careerlens/careerlens/pkg/kernel"
)

// Match pairs a stored profile with its similarity to a query embedding
type Match struct {
	Profile    Profile
	Similarity float64
}

// Repository persists profiles and their embeddings
type Repository interface {
	Create(ctx context.Context, p *Profile) error
	Update(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id kernel.ProfileID) (*Profile, error)
	GetByOwner(ctx context.Context, owner kernel.UserID) (*Profile, error)
	Delete(ctx context.Context, id kernel.ProfileID) error
	List(ctx context.Context, pagination kernel.PaginationOptions) (*kernel.Paginated[Profile], error)

	UpdateEmbedding(ctx context.Context, id kernel.ProfileID, embedding []float32) error
	SemanticSearch(ctx context.Context, embedding []float32, topK int) ([]Match, error)

	// UpdateScore stores the profile's cosine similarity to the criteria
	// embedding and returns the scored profile. Fails for profiles
	// without an embedding.
	UpdateScore(ctx context.Context, id kernel.ProfileID, criteria string, embedding []float32, at time.Time) (*Profile, error)
}

// EmbeddingGenerator turns text into a search vector
type EmbeddingGenerator interface {
	Generate(ctx context.Context, text string) ([]float32, error)
}
