package profilesrv

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careerlens/careerlens/pkg/kernel"
	"github.com/careerlens/careerlens/pkg/logx"
	"github.com/careerlens/careerlens/talent/ingestion"
	"github.com/careerlens/careerlens/talent/profile"
)

const defaultSearchTopK = 10

// Service manages candidate profiles: it receives finished imports,
// keeps the search embedding in sync with the document, and serves
// semantic search for recruiters.
type Service struct {
	repo       profile.Repository
	embeddings profile.EmbeddingGenerator
}

func NewService(repo profile.Repository, embeddings profile.EmbeddingGenerator) *Service {
	return &Service{
		repo:       repo,
		embeddings: embeddings,
	}
}

// SaveImported upserts the owner's profile from a finished import. A new
// import replaces the previous document. Embedding failures don't lose
// the document; the profile is saved unsearchable and can be refreshed.
func (s *Service) SaveImported(ctx context.Context, owner kernel.UserID, fileName string, result *ingestion.PipelineResult) error {
	if result == nil || len(result.Document) == 0 {
		return profile.ErrInvalidProfileData().
			WithDetail("owner_id", owner).
			WithDetail("reason", "empty document")
	}

	embedding, err := s.embeddings.Generate(ctx, result.Document.FlattenText())
	if err != nil {
		logx.Warnf("Profile embedding generation failed, saving unsearchable: Owner=%s, Error=%v", owner, err)
		embedding = nil
	}

	now := time.Now()

	existing, err := s.repo.GetByOwner(ctx, owner)
	if err == nil {
		existing.Document = result.Document
		existing.SourceFileName = fileName
		existing.Embedding = embedding
		existing.ImportedAt = now
		existing.UpdatedAt = now

		if err := s.repo.Update(ctx, existing); err != nil {
			return profile.ErrRegistry.NewWithCause(profile.CodeProfileSaveFailed, err).
				WithDetail("owner_id", owner)
		}
		logx.Infof("Profile replaced from import: Owner=%s, Profile=%s", owner, existing.ID)
		return nil
	}

	p := &profile.Profile{
		ID:             kernel.NewProfileID(uuid.NewString()),
		OwnerID:        owner,
		Document:       result.Document,
		SourceFileName: fileName,
		Embedding:      embedding,
		ImportedAt:     now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return profile.ErrRegistry.NewWithCause(profile.CodeProfileSaveFailed, err).
			WithDetail("owner_id", owner)
	}

	logx.Infof("Profile created from import: Owner=%s, Profile=%s", owner, p.ID)
	return nil
}

// GetOwnProfile retrieves the authenticated candidate's profile
func (s *Service) GetOwnProfile(ctx context.Context, owner kernel.UserID) (*profile.ProfileResponse, error) {
	p, err := s.repo.GetByOwner(ctx, owner)
	if err != nil {
		return nil, profile.ErrProfileNotFound().
			WithDetail("owner_id", owner)
	}
	return profile.ToProfileResponse(p), nil
}

// GetProfile retrieves a profile by ID (recruiter view)
func (s *Service) GetProfile(ctx context.Context, id kernel.ProfileID) (*profile.ProfileResponse, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, profile.ErrProfileNotFound().
			WithDetail("profile_id", id)
	}
	return profile.ToProfileResponse(p), nil
}

// ListProfiles pages through every profile (recruiter view)
func (s *Service) ListProfiles(ctx context.Context, pagination kernel.PaginationOptions) (*kernel.Paginated[profile.ProfileResponse], error) {
	page, err := s.repo.List(ctx, pagination)
	if err != nil {
		return nil, profile.ErrRegistry.NewWithCause(profile.CodeProfileNotFound, err)
	}

	items := make([]profile.ProfileResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, *profile.ToProfileResponse(&page.Items[i]))
	}
	return &kernel.Paginated[profile.ProfileResponse]{
		Items: items,
		Page:  page.Page,
	}, nil
}

// UpdateDocument replaces the owner's document with a manual edit and
// regenerates the embedding
func (s *Service) UpdateDocument(ctx context.Context, owner kernel.UserID, req profile.UpdateDocumentRequest) (*profile.ProfileResponse, error) {
	if len(req.Document) == 0 {
		return nil, profile.ErrInvalidProfileData().
			WithDetail("reason", "empty document")
	}

	p, err := s.repo.GetByOwner(ctx, owner)
	if err != nil {
		return nil, profile.ErrProfileNotFound().
			WithDetail("owner_id", owner)
	}

	embedding, err := s.embeddings.Generate(ctx, req.Document.FlattenText())
	if err != nil {
		logx.Warnf("Embedding regeneration failed on manual edit: Owner=%s, Error=%v", owner, err)
		embedding = nil
	}

	p.Document = req.Document
	p.Embedding = embedding
	p.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, profile.ErrRegistry.NewWithCause(profile.CodeProfileSaveFailed, err).
			WithDetail("owner_id", owner)
	}
	return profile.ToProfileResponse(p), nil
}

// DeleteProfile removes the owner's profile
func (s *Service) DeleteProfile(ctx context.Context, owner kernel.UserID) error {
	p, err := s.repo.GetByOwner(ctx, owner)
	if err != nil {
		return profile.ErrProfileNotFound().
			WithDetail("owner_id", owner)
	}
	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return profile.ErrRegistry.NewWithCause(profile.CodeProfileSaveFailed, err).
			WithDetail("profile_id", p.ID)
	}
	return nil
}

// RefreshEmbedding regenerates the owner's embedding from the stored
// document. Recovers profiles saved unsearchable.
func (s *Service) RefreshEmbedding(ctx context.Context, owner kernel.UserID) error {
	p, err := s.repo.GetByOwner(ctx, owner)
	if err != nil {
		return profile.ErrProfileNotFound().
			WithDetail("owner_id", owner)
	}

	embedding, err := s.embeddings.Generate(ctx, p.Document.FlattenText())
	if err != nil {
		return profile.ErrRegistry.NewWithCause(profile.CodeEmbeddingFailed, err).
			WithDetail("profile_id", p.ID)
	}

	if err := s.repo.UpdateEmbedding(ctx, p.ID, embedding); err != nil {
		return profile.ErrRegistry.NewWithCause(profile.CodeProfileSaveFailed, err).
			WithDetail("profile_id", p.ID)
	}
	return nil
}

// Rescore stores how well a profile matches a recruiter's criteria. The
// score is the cosine similarity between the profile's embedding and
// the embedded criteria text; it persists until the next rescore.
func (s *Service) Rescore(ctx context.Context, id kernel.ProfileID, req profile.RescoreRequest) (*profile.ProfileResponse, error) {
	criteria := strings.TrimSpace(req.Criteria)
	if criteria == "" {
		return nil, profile.ErrInvalidProfileData().
			WithMessage("Scoring criteria is required")
	}

	criteriaEmbedding, err := s.embeddings.Generate(ctx, criteria)
	if err != nil {
		return nil, profile.ErrRegistry.NewWithCause(profile.CodeEmbeddingFailed, err).
			WithDetail("profile_id", id)
	}

	p, err := s.repo.UpdateScore(ctx, id, criteria, criteriaEmbedding, time.Now())
	if err != nil {
		return nil, err
	}

	logx.Infof("Profile rescored: Profile=%s, Score=%.4f", p.ID, *p.RecruiterScore)
	return profile.ToProfileResponse(p), nil
}

// Search performs semantic search over candidate profiles
func (s *Service) Search(ctx context.Context, req profile.SearchRequest) (*profile.SearchResponse, error) {
	if req.Query == "" {
		return nil, profile.ErrInvalidProfileData().
			WithMessage("Search query is required")
	}
	if req.TopK <= 0 {
		req.TopK = defaultSearchTopK
	}

	queryEmbedding, err := s.embeddings.Generate(ctx, req.Query)
	if err != nil {
		return nil, profile.ErrRegistry.NewWithCause(profile.CodeEmbeddingFailed, err).
			WithDetail("query", req.Query)
	}

	matches, err := s.repo.SemanticSearch(ctx, queryEmbedding, req.TopK)
	if err != nil {
		return nil, profile.ErrRegistry.NewWithCause(profile.CodeSearchFailed, err).
			WithDetail("query", req.Query)
	}

	results := make([]profile.MatchResult, 0, len(matches))
	for i := range matches {
		results = append(results, profile.MatchResult{
			Profile:    *profile.ToProfileResponse(&matches[i].Profile),
			Similarity: matches[i].Similarity,
		})
	}

	return &profile.SearchResponse{
		Query:   req.Query,
		Results: results,
	}, nil
}
