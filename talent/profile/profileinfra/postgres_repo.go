package profileinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/careerlens/careerlens/pkg/kernel"
	"github.com/careerlens/careerlens/pkg/logx"
	"github.com/careerlens/careerlens/talent/ingestion"
	"github.com/careerlens/careerlens/talent/profile"
)

type PostgresProfileRepository struct {
	db *sqlx.DB
}

func NewPostgresProfileRepository(db *sqlx.DB) profile.Repository {
	return &PostgresProfileRepository{db: db}
}

// profileRow is the database model. The flexible document lives in a
// JSONB column; the embedding in a nullable pgvector column.
type profileRow struct {
	ID             string          `db:"id"`
	OwnerID        string          `db:"owner_id"`
	Document       string          `db:"document"`
	SourceFileName string          `db:"source_file_name"`
	Embedding      sql.NullString  `db:"embedding"`
	RecruiterScore sql.NullFloat64 `db:"recruiter_score"`
	ScoreCriteria  sql.NullString  `db:"score_criteria"`
	ScoredAt       sql.NullTime    `db:"scored_at"`
	ImportedAt     time.Time       `db:"imported_at"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

const profileColumns = `
	id, owner_id, document, source_file_name, embedding::text,
	recruiter_score, score_criteria, scored_at,
	imported_at, created_at, updated_at`

func (r *PostgresProfileRepository) Create(ctx context.Context, p *profile.Profile) error {
	query := `
		INSERT INTO profiles (
			id, owner_id, document, source_file_name, embedding,
			imported_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	document, err := json.Marshal(p.Document)
	if err != nil {
		return profile.ErrInvalidProfileData().
			WithDetail("profile_id", p.ID).
			WithDetail("field", "document")
	}

	_, err = r.db.ExecContext(ctx, query,
		p.ID, p.OwnerID, document, p.SourceFileName, embeddingOrNil(p.Embedding),
		p.ImportedAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return profile.ErrRegistry.NewWithCause(profile.CodeProfileSaveFailed, err).
				WithMessage("Profile already exists for owner").
				WithDetail("owner_id", p.OwnerID)
		}
		return profile.ErrRegistry.NewWithCause(profile.CodeProfileSaveFailed, err).
			WithDetail("profile_id", p.ID).
			WithDetail("operation", "insert")
	}

	logx.Infof("Created profile: %s", p.ID)
	return nil
}

func (r *PostgresProfileRepository) Update(ctx context.Context, p *profile.Profile) error {
	query := `
		UPDATE profiles SET
			document = $2,
			source_file_name = $3,
			embedding = $4,
			imported_at = $5,
			updated_at = $6
		WHERE id = $1`

	document, err := json.Marshal(p.Document)
	if err != nil {
		return profile.ErrInvalidProfileData().
			WithDetail("profile_id", p.ID).
			WithDetail("field", "document")
	}

	result, err := r.db.ExecContext(ctx, query,
		p.ID, document, p.SourceFileName, embeddingOrNil(p.Embedding),
		p.ImportedAt, p.UpdatedAt,
	)
	if err != nil {
		return profile.ErrRegistry.NewWithCause(profile.CodeProfileSaveFailed, err).
			WithDetail("profile_id", p.ID).
			WithDetail("operation", "update")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return profile.ErrRegistry.NewWithCause(profile.CodeProfileSaveFailed, err).
			WithDetail("profile_id", p.ID)
	}
	if rows == 0 {
		return profile.ErrProfileNotFound().
			WithDetail("profile_id", p.ID)
	}
	return nil
}

func (r *PostgresProfileRepository) GetByID(ctx context.Context, id kernel.ProfileID) (*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	row := &profileRow{}
	if err := r.db.GetContext(ctx, row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, profile.ErrProfileNotFound().
				WithDetail("profile_id", id)
		}
		return nil, profile.ErrRegistry.NewWithCause(profile.CodeProfileNotFound, err).
			WithDetail("profile_id", id).
			WithDetail("operation", "get")
	}
	return row.toDomain()
}

func (r *PostgresProfileRepository) GetByOwner(ctx context.Context, owner kernel.UserID) (*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE owner_id = $1`

	row := &profileRow{}
	if err := r.db.GetContext(ctx, row, query, owner); err != nil {
		if err == sql.ErrNoRows {
			return nil, profile.ErrProfileNotFound().
				WithDetail("owner_id", owner)
		}
		return nil, profile.ErrRegistry.NewWithCause(profile.CodeProfileNotFound, err).
			WithDetail("owner_id", owner).
			WithDetail("operation", "get_by_owner")
	}
	return row.toDomain()
}

func (r *PostgresProfileRepository) Delete(ctx context.Context, id kernel.ProfileID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return profile.ErrRegistry.NewWithCause(profile.CodeProfileSaveFailed, err).
			WithDetail("profile_id", id).
			WithDetail("operation", "delete")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return profile.ErrRegistry.NewWithCause(profile.CodeProfileSaveFailed, err).
			WithDetail("profile_id", id)
	}
	if rows == 0 {
		return profile.ErrProfileNotFound().
			WithDetail("profile_id", id)
	}
	return nil
}

func (r *PostgresProfileRepository) List(ctx context.Context, pagination kernel.PaginationOptions) (*kernel.Paginated[profile.Profile], error) {
	pagination = pagination.Normalize()

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM profiles`); err != nil {
		return nil, profile.ErrRegistry.NewWithCause(profile.CodeProfileNotFound, err).
			WithDetail("operation", "count")
	}

	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		ORDER BY updated_at DESC
		LIMIT $1 OFFSET $2`

	rows := []profileRow{}
	if err := r.db.SelectContext(ctx, &rows, query, pagination.PageSize, pagination.Offset()); err != nil {
		return nil, profile.ErrRegistry.NewWithCause(profile.CodeProfileNotFound, err).
			WithDetail("operation", "list")
	}

	profiles := make([]profile.Profile, 0, len(rows))
	for i := range rows {
		p, err := rows[i].toDomain()
		if err != nil {
			logx.Errorf("Failed to convert profile %s: %v", rows[i].ID, err)
			continue
		}
		profiles = append(profiles, *p)
	}

	return &kernel.Paginated[profile.Profile]{
		Items: profiles,
		Page: kernel.PageInfo{
			Number: pagination.Page,
			Size:   pagination.PageSize,
			Total:  total,
		},
	}, nil
}

func (r *PostgresProfileRepository) UpdateEmbedding(ctx context.Context, id kernel.ProfileID, embedding []float32) error {
	query := `UPDATE profiles SET embedding = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, embeddingOrNil(embedding))
	if err != nil {
		return profile.ErrRegistry.NewWithCause(profile.CodeEmbeddingFailed, err).
			WithDetail("profile_id", id).
			WithDetail("operation", "update_embedding")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return profile.ErrRegistry.NewWithCause(profile.CodeEmbeddingFailed, err).
			WithDetail("profile_id", id)
	}
	if rows == 0 {
		return profile.ErrProfileNotFound().
			WithDetail("profile_id", id)
	}
	return nil
}

// UpdateScore computes and stores the profile's cosine similarity to
// the criteria embedding. Profiles without an embedding cannot be scored.
func (r *PostgresProfileRepository) UpdateScore(ctx context.Context, id kernel.ProfileID, criteria string, embedding []float32, at time.Time) (*profile.Profile, error) {
	query := `
		UPDATE profiles SET
			recruiter_score = 1 - (embedding <=> $2),
			score_criteria = $3,
			scored_at = $4,
			updated_at = $4
		WHERE id = $1 AND embedding IS NOT NULL
		RETURNING ` + profileColumns

	row := &profileRow{}
	err := r.db.GetContext(ctx, row, query, id, pgvector.NewVector(embedding), criteria, at)
	if err == sql.ErrNoRows {
		// Either the profile is missing or it has no embedding
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, profile.ErrProfileNotScorable().
			WithDetail("profile_id", id)
	}
	if err != nil {
		return nil, profile.ErrRegistry.NewWithCause(profile.CodeProfileSaveFailed, err).
			WithDetail("profile_id", id).
			WithDetail("operation", "update_score")
	}
	return row.toDomain()
}

// SemanticSearch ranks searchable profiles by cosine similarity to the
// query embedding
func (r *PostgresProfileRepository) SemanticSearch(ctx context.Context, embedding []float32, topK int) ([]profile.Match, error) {
	query := `
		SELECT ` + profileColumns + `,
			1 - (embedding <=> $1) AS similarity
		FROM profiles
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2`

	type matchRow struct {
		profileRow
		Similarity float64 `db:"similarity"`
	}

	rows := []matchRow{}
	if err := r.db.SelectContext(ctx, &rows, query, pgvector.NewVector(embedding), topK); err != nil {
		return nil, profile.ErrRegistry.NewWithCause(profile.CodeSearchFailed, err).
			WithDetail("operation", "semantic_search")
	}

	matches := make([]profile.Match, 0, len(rows))
	for i := range rows {
		p, err := rows[i].toDomain()
		if err != nil {
			logx.Errorf("Failed to convert profile %s: %v", rows[i].ID, err)
			continue
		}
		matches = append(matches, profile.Match{
			Profile:    *p,
			Similarity: rows[i].Similarity,
		})
	}
	return matches, nil
}

// ============================================================================
// Helpers
// ============================================================================

func embeddingOrNil(embedding []float32) any {
	if len(embedding) == 0 {
		return nil
	}
	return pgvector.NewVector(embedding)
}

func (row *profileRow) toDomain() (*profile.Profile, error) {
	var document ingestion.FlexibleResumeDocument
	if err := json.Unmarshal([]byte(row.Document), &document); err != nil {
		return nil, profile.ErrInvalidProfileData().
			WithDetail("profile_id", row.ID).
			WithDetail("field", "document")
	}

	var embedding []float32
	if row.Embedding.Valid && row.Embedding.String != "" {
		vec := pgvector.Vector{}
		if err := vec.Scan(row.Embedding.String); err == nil {
			embedding = vec.Slice()
		}
	}

	p := &profile.Profile{
		ID:             kernel.ProfileID(row.ID),
		OwnerID:        kernel.UserID(row.OwnerID),
		Document:       document,
		SourceFileName: row.SourceFileName,
		Embedding:      embedding,
		ScoreCriteria:  row.ScoreCriteria.String,
		ImportedAt:     row.ImportedAt,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	if row.RecruiterScore.Valid {
		score := row.RecruiterScore.Float64
		p.RecruiterScore = &score
	}
	if row.ScoredAt.Valid {
		scoredAt := row.ScoredAt.Time
		p.ScoredAt = &scoredAt
	}
	return p, nil
}
