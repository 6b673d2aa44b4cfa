package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/artem13815/freelance/pkg/embedding"
	"github.com/artem13815/freelance/pkg/freelancer"
	"github.com/artem13815/freelance/pkg/project"
)

// EmbeddingRepository keeps one vector per entity in the entity's own row.
type EmbeddingRepository struct {
	pool *pgxpool.Pool
}

func NewEmbeddingRepository(pool *pgxpool.Pool) *EmbeddingRepository {
	return &EmbeddingRepository{pool: pool}
}

func embeddingTable(kind embedding.Kind) (string, error) {
	switch kind {
	case embedding.KindProject:
		return "projects", nil
	case embedding.KindFreelancer:
		return "freelancer_profiles", nil
	default:
		return "", fmt.Errorf("unknown embedding kind %q", kind)
	}
}

func notFound(kind embedding.Kind) error {
	if kind == embedding.KindProject {
		return project.ErrNotFound
	}
	return freelancer.ErrNotFound
}

func (r *EmbeddingRepository) Get(ctx context.Context, kind embedding.Kind, id uuid.UUID) (embedding.Record, error) {
	table, err := embeddingTable(kind)
	if err != nil {
		return embedding.Record{}, err
	}
	rec := embedding.Record{EntityID: id, Kind: kind}

	var (
		vec       *pgvector.Vector
		hash      *string
		updatedAt *time.Time
	)
	row := r.pool.QueryRow(ctx, `SELECT embedding, embedding_hash, embedding_updated_at FROM `+table+` WHERE id = $1`, id)
	if err := row.Scan(&vec, &hash, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rec, nil
		}
		return embedding.Record{}, err
	}
	if vec != nil {
		rec.Vector = vec.Slice()
	}
	if hash != nil {
		rec.ContentHash = *hash
	}
	if updatedAt != nil {
		rec.UpdatedAt = *updatedAt
	}
	return rec, nil
}

func (r *EmbeddingRepository) Save(ctx context.Context, rec embedding.Record) error {
	table, err := embeddingTable(rec.Kind)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `
UPDATE `+table+`
SET embedding = $2, embedding_hash = $3, embedding_updated_at = $4
WHERE id = $1
`, rec.EntityID, pgvector.NewVector(rec.Vector), rec.ContentHash, rec.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notFound(rec.Kind)
	}
	return nil
}

// MissingIDs lists entities of kind that have no stored vector yet.
func (r *EmbeddingRepository) MissingIDs(ctx context.Context, kind embedding.Kind) ([]uuid.UUID, error) {
	table, err := embeddingTable(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `SELECT id FROM `+table+` WHERE embedding IS NULL ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}
