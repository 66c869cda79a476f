package profilesrv

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerlens/careerlens/pkg/kernel"
	"github.com/careerlens/careerlens/talent/ingestion"
	"github.com/careerlens/careerlens/talent/profile"
)

// fakeRepo is an in-memory Repository keyed by owner
type fakeRepo struct {
	byOwner map[kernel.UserID]*profile.Profile
	matches []profile.Match
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byOwner: make(map[kernel.UserID]*profile.Profile)}
}

func (f *fakeRepo) Create(ctx context.Context, p *profile.Profile) error {
	if _, exists := f.byOwner[p.OwnerID]; exists {
		return errors.New("duplicate owner")
	}
	cp := *p
	f.byOwner[p.OwnerID] = &cp
	return nil
}

func (f *fakeRepo) Update(ctx context.Context, p *profile.Profile) error {
	if _, exists := f.byOwner[p.OwnerID]; !exists {
		return errors.New("not found")
	}
	cp := *p
	f.byOwner[p.OwnerID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id kernel.ProfileID) (*profile.Profile, error) {
	for _, p := range f.byOwner {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeRepo) GetByOwner(ctx context.Context, owner kernel.UserID) (*profile.Profile, error) {
	p, ok := f.byOwner[owner]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id kernel.ProfileID) error {
	for owner, p := range f.byOwner {
		if p.ID == id {
			delete(f.byOwner, owner)
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeRepo) List(ctx context.Context, pagination kernel.PaginationOptions) (*kernel.Paginated[profile.Profile], error) {
	items := make([]profile.Profile, 0, len(f.byOwner))
	for _, p := range f.byOwner {
		items = append(items, *p)
	}
	return &kernel.Paginated[profile.Profile]{Items: items}, nil
}

func (f *fakeRepo) UpdateEmbedding(ctx context.Context, id kernel.ProfileID, embedding []float32) error {
	for _, p := range f.byOwner {
		if p.ID == id {
			p.Embedding = embedding
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeRepo) SemanticSearch(ctx context.Context, embedding []float32, topK int) ([]profile.Match, error) {
	if topK < len(f.matches) {
		return f.matches[:topK], nil
	}
	return f.matches, nil
}

func (f *fakeRepo) UpdateScore(ctx context.Context, id kernel.ProfileID, criteria string, embedding []float32, at time.Time) (*profile.Profile, error) {
	for _, p := range f.byOwner {
		if p.ID != id {
			continue
		}
		if !p.HasEmbedding() {
			return nil, profile.ErrProfileNotScorable()
		}
		score := cosineSimilarity(p.Embedding, embedding)
		p.RecruiterScore = &score
		p.ScoreCriteria = criteria
		p.ScoredAt = &at
		cp := *p
		return &cp, nil
	}
	return nil, profile.ErrProfileNotFound()
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := 0; i < len(a) && i < len(b); i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// fakeEmbedder returns a fixed vector, optionally failing
type fakeEmbedder struct {
	vector   []float32
	err      error
	lastText string
	calls    int
}

func (f *fakeEmbedder) Generate(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	f.lastText = text
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func importedResult(doc ingestion.FlexibleResumeDocument) *ingestion.PipelineResult {
	return &ingestion.PipelineResult{Document: doc}
}

func TestSaveImportedCreatesProfile(t *testing.T) {
	repo := newFakeRepo()
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2}}
	service := NewService(repo, embedder)
	owner := kernel.UserID("user-1")

	err := service.SaveImported(context.Background(), owner, "resume.pdf",
		importedResult(ingestion.FlexibleResumeDocument{"name": "Maria Santos"}))
	require.NoError(t, err)

	saved, err := repo.GetByOwner(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, "Maria Santos", saved.Document["name"])
	assert.Equal(t, "resume.pdf", saved.SourceFileName)
	assert.True(t, saved.HasEmbedding())
	assert.Contains(t, embedder.lastText, "Maria Santos")
}

func TestSaveImportedReplacesExistingDocument(t *testing.T) {
	repo := newFakeRepo()
	embedder := &fakeEmbedder{vector: []float32{0.1}}
	service := NewService(repo, embedder)
	owner := kernel.UserID("user-1")

	require.NoError(t, service.SaveImported(context.Background(), owner, "old.pdf",
		importedResult(ingestion.FlexibleResumeDocument{"name": "Old Name"})))
	firstID := repo.byOwner[owner].ID

	require.NoError(t, service.SaveImported(context.Background(), owner, "new.pdf",
		importedResult(ingestion.FlexibleResumeDocument{"name": "New Name"})))

	saved := repo.byOwner[owner]
	assert.Equal(t, firstID, saved.ID, "re-import keeps the profile identity")
	assert.Equal(t, "New Name", saved.Document["name"])
	assert.Equal(t, "new.pdf", saved.SourceFileName)
}

func TestSaveImportedSurvivesEmbeddingFailure(t *testing.T) {
	repo := newFakeRepo()
	embedder := &fakeEmbedder{err: errors.New("embeddings api down")}
	service := NewService(repo, embedder)
	owner := kernel.UserID("user-1")

	err := service.SaveImported(context.Background(), owner, "resume.pdf",
		importedResult(ingestion.FlexibleResumeDocument{"name": "A"}))
	require.NoError(t, err)

	saved := repo.byOwner[owner]
	assert.False(t, saved.HasEmbedding())
	assert.Equal(t, "A", saved.Document["name"])
}

func TestSaveImportedRejectsEmptyDocument(t *testing.T) {
	service := NewService(newFakeRepo(), &fakeEmbedder{})

	err := service.SaveImported(context.Background(), kernel.UserID("u"), "x.pdf",
		importedResult(ingestion.FlexibleResumeDocument{}))
	require.Error(t, err)
}

func TestRefreshEmbeddingRecoversUnsearchableProfile(t *testing.T) {
	repo := newFakeRepo()
	embedder := &fakeEmbedder{err: errors.New("down")}
	service := NewService(repo, embedder)
	owner := kernel.UserID("user-1")

	require.NoError(t, service.SaveImported(context.Background(), owner, "r.pdf",
		importedResult(ingestion.FlexibleResumeDocument{"name": "A"})))
	require.False(t, repo.byOwner[owner].HasEmbedding())

	embedder.err = nil
	embedder.vector = []float32{0.5}

	require.NoError(t, service.RefreshEmbedding(context.Background(), owner))
	assert.True(t, repo.byOwner[owner].HasEmbedding())
}

func TestSearchGeneratesQueryEmbedding(t *testing.T) {
	repo := newFakeRepo()
	repo.matches = []profile.Match{
		{Profile: profile.Profile{ID: "p-1", Document: ingestion.FlexibleResumeDocument{"name": "A"}}, Similarity: 0.91},
		{Profile: profile.Profile{ID: "p-2", Document: ingestion.FlexibleResumeDocument{"name": "B"}}, Similarity: 0.84},
	}
	embedder := &fakeEmbedder{vector: []float32{0.3}}
	service := NewService(repo, embedder)

	resp, err := service.Search(context.Background(), profile.SearchRequest{Query: "golang engineer"})
	require.NoError(t, err)

	assert.Equal(t, "golang engineer", embedder.lastText)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, 0.91, resp.Results[0].Similarity)
	assert.Equal(t, "A", resp.Results[0].Profile.Name)
}

func TestSearchRequiresQuery(t *testing.T) {
	service := NewService(newFakeRepo(), &fakeEmbedder{})

	_, err := service.Search(context.Background(), profile.SearchRequest{})
	require.Error(t, err)
}

func TestRescoreStoresSimilarityAndCriteria(t *testing.T) {
	repo := newFakeRepo()
	embedder := &fakeEmbedder{vector: []float32{1, 0}}
	service := NewService(repo, embedder)
	owner := kernel.UserID("user-1")

	require.NoError(t, service.SaveImported(context.Background(), owner, "r.pdf",
		importedResult(ingestion.FlexibleResumeDocument{"name": "A"})))
	profileID := repo.byOwner[owner].ID

	resp, err := service.Rescore(context.Background(), profileID, profile.RescoreRequest{
		Criteria: "senior Go engineer, Postgres",
	})
	require.NoError(t, err)

	assert.Equal(t, "senior Go engineer, Postgres", embedder.lastText)
	require.NotNil(t, resp.RecruiterScore)
	assert.InDelta(t, 1.0, *resp.RecruiterScore, 1e-9, "identical vectors score 1")
	assert.Equal(t, "senior Go engineer, Postgres", resp.ScoreCriteria)
	require.NotNil(t, resp.ScoredAt)

	saved := repo.byOwner[owner]
	assert.True(t, saved.IsScored())
}

func TestRescoreReplacesPreviousScore(t *testing.T) {
	repo := newFakeRepo()
	embedder := &fakeEmbedder{vector: []float32{1, 0}}
	service := NewService(repo, embedder)
	owner := kernel.UserID("user-1")

	require.NoError(t, service.SaveImported(context.Background(), owner, "r.pdf",
		importedResult(ingestion.FlexibleResumeDocument{"name": "A"})))
	profileID := repo.byOwner[owner].ID

	first, err := service.Rescore(context.Background(), profileID, profile.RescoreRequest{Criteria: "Go"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, *first.RecruiterScore, 1e-9)

	// Orthogonal criteria embedding scores zero
	embedder.vector = []float32{0, 1}
	second, err := service.Rescore(context.Background(), profileID, profile.RescoreRequest{Criteria: "Haskell"})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, *second.RecruiterScore, 1e-9)
	assert.Equal(t, "Haskell", second.ScoreCriteria)
}

func TestRescoreRequiresCriteria(t *testing.T) {
	service := NewService(newFakeRepo(), &fakeEmbedder{})

	_, err := service.Rescore(context.Background(), kernel.ProfileID("p-1"), profile.RescoreRequest{
		Criteria: "   ",
	})
	require.Error(t, err)
}

func TestRescoreRejectsUnsearchableProfile(t *testing.T) {
	repo := newFakeRepo()
	embedder := &fakeEmbedder{err: errors.New("down")}
	service := NewService(repo, embedder)
	owner := kernel.UserID("user-1")

	// Imported while embeddings were down: profile has no vector
	require.NoError(t, service.SaveImported(context.Background(), owner, "r.pdf",
		importedResult(ingestion.FlexibleResumeDocument{"name": "A"})))
	profileID := repo.byOwner[owner].ID

	embedder.err = nil
	embedder.vector = []float32{1}

	_, err := service.Rescore(context.Background(), profileID, profile.RescoreRequest{Criteria: "Go"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "PROFILE_NOT_SCORABLE")
}

func TestRescoreFailsWhenEmbeddingFails(t *testing.T) {
	repo := newFakeRepo()
	embedder := &fakeEmbedder{vector: []float32{1}}
	service := NewService(repo, embedder)
	owner := kernel.UserID("user-1")

	require.NoError(t, service.SaveImported(context.Background(), owner, "r.pdf",
		importedResult(ingestion.FlexibleResumeDocument{"name": "A"})))
	profileID := repo.byOwner[owner].ID

	embedder.err = errors.New("embeddings api down")
	_, err := service.Rescore(context.Background(), profileID, profile.RescoreRequest{Criteria: "Go"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "EMBEDDING_FAILED")
}

func TestUpdateDocumentRegeneratesEmbedding(t *testing.T) {
	repo := newFakeRepo()
	embedder := &fakeEmbedder{vector: []float32{0.1}}
	service := NewService(repo, embedder)
	owner := kernel.UserID("user-1")

	require.NoError(t, service.SaveImported(context.Background(), owner, "r.pdf",
		importedResult(ingestion.FlexibleResumeDocument{"name": "A"})))
	callsAfterImport := embedder.calls

	resp, err := service.UpdateDocument(context.Background(), owner, profile.UpdateDocumentRequest{
		Document: ingestion.FlexibleResumeDocument{"name": "A", "skills": []any{"Go"}},
	})
	require.NoError(t, err)

	assert.Equal(t, callsAfterImport+1, embedder.calls)
	assert.True(t, resp.Searchable)
	assert.Contains(t, embedder.lastText, "skills: Go")
}
