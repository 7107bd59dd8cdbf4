package repository

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"docchat/internal/model"
)

const chunkTable = "pdf_chunks"

// ChunkRepository owns the vector index: one pgvector-backed table holding
// every embedded chunk across all uploaded PDFs.
type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// HasCollection reports whether the chunk table exists.
func (r *ChunkRepository) HasCollection(ctx context.Context) bool {
	return r.db.WithContext(ctx).Migrator().HasTable(&model.Chunk{})
}

// collectionDimension returns the declared dimension of the embedding column,
// or 0 when the table does not exist. For pgvector the column typmod is the
// dimension itself.
func (r *ChunkRepository) collectionDimension(ctx context.Context) (int, error) {
	if !r.HasCollection(ctx) {
		return 0, nil
	}
	var dim int
	err := r.db.WithContext(ctx).Raw(
		`SELECT atttypmod FROM pg_attribute WHERE attrelid = ?::regclass AND attname = 'embedding'`,
		chunkTable,
	).Scan(&dim).Error
	if err != nil {
		return 0, fmt.Errorf("read collection dimension: %w", err)
	}
	return dim, nil
}

func (r *ChunkRepository) createCollection(ctx context.Context, dimensions int) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE %s (
			id uuid PRIMARY KEY,
			content text NOT NULL,
			page integer DEFAULT 0,
			source varchar(1000),
			filename varchar(500),
			embedding vector(%d),
			created_at timestamptz DEFAULT now()
		)`, chunkTable, dimensions),
		fmt.Sprintf(`CREATE INDEX idx_%s_filename ON %s (filename)`, chunkTable, chunkTable),
		fmt.Sprintf(`CREATE INDEX idx_%s_embedding ON %s USING hnsw (embedding vector_cosine_ops)`, chunkTable, chunkTable),
	}
	for _, stmt := range stmts {
		if err := r.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("create collection: %w", err)
		}
	}
	return nil
}

// EnsureCollection makes sure the chunk table exists with the expected vector
// dimension. A dimension mismatch (embedding model switch) drops and recreates
// the table, wiping every previously embedded PDF.
func (r *ChunkRepository) EnsureCollection(ctx context.Context, dimensions int) error {
	if err := r.db.WithContext(ctx).Exec(`CREATE EXTENSION IF NOT EXISTS vector`).Error; err != nil {
		return fmt.Errorf("enable pgvector: %w", err)
	}

	current, err := r.collectionDimension(ctx)
	if err != nil {
		return err
	}
	if current == 0 {
		log.Printf("[index] Creating collection %q with dimension %d", chunkTable, dimensions)
		return r.createCollection(ctx, dimensions)
	}
	if current != dimensions {
		log.Printf("[index] Collection dimension mismatch (%d vs %d), recreating. All embedded PDFs are lost", current, dimensions)
		if err := r.db.WithContext(ctx).Migrator().DropTable(&model.Chunk{}); err != nil {
			return fmt.Errorf("drop collection: %w", err)
		}
		return r.createCollection(ctx, dimensions)
	}
	return nil
}

// ResetCollection drops and recreates the chunk table unconditionally.
func (r *ChunkRepository) ResetCollection(ctx context.Context, dimensions int) error {
	if r.HasCollection(ctx) {
		if err := r.db.WithContext(ctx).Migrator().DropTable(&model.Chunk{}); err != nil {
			return fmt.Errorf("drop collection: %w", err)
		}
		log.Printf("[index] Collection %q deleted", chunkTable)
	}
	return r.createCollection(ctx, dimensions)
}

// UpsertBatch writes all points in one insert. The transaction commit is the
// write acknowledgment: once this returns nil the points are queryable.
func (r *ChunkRepository) UpsertBatch(ctx context.Context, chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&chunks).Error; err != nil {
		return fmt.Errorf("upsert chunks: %w", err)
	}
	return nil
}

// ChunkHit is one similarity-search result.
type ChunkHit struct {
	model.Chunk
	Distance float64 `gorm:"column:distance"`
}

// Similarity converts cosine distance to similarity.
func (h ChunkHit) Similarity() float64 {
	return 1 - h.Distance
}

// Search runs a global cosine top-k over the whole index.
func (r *ChunkRepository) Search(ctx context.Context, query pgvector.Vector, topK int) ([]ChunkHit, error) {
	return r.search(ctx, query, "", topK)
}

// SearchByFilename restricts the top-k search to chunks tagged with filename.
func (r *ChunkRepository) SearchByFilename(ctx context.Context, query pgvector.Vector, filename string, topK int) ([]ChunkHit, error) {
	return r.search(ctx, query, filename, topK)
}

func (r *ChunkRepository) search(ctx context.Context, query pgvector.Vector, filename string, topK int) ([]ChunkHit, error) {
	var hits []ChunkHit

	q := r.db.WithContext(ctx).
		Table(chunkTable).
		Select("*, embedding <=> ? AS distance", query).
		Where("embedding IS NOT NULL").
		Order("distance ASC").
		Limit(topK)

	if filename != "" {
		q = q.Where("filename = ?", filename)
	}

	if err := q.Find(&hits).Error; err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	return hits, nil
}

// ChunkRef is the payload slice returned while scrolling for deletion.
type ChunkRef struct {
	ID     uuid.UUID `gorm:"column:id"`
	Source string    `gorm:"column:source"`
}

// Scroll returns one keyset page of (id, source) ordered by id. Pass uuid.Nil
// for the first page; an empty result ends the scroll.
func (r *ChunkRepository) Scroll(ctx context.Context, after uuid.UUID, limit int) ([]ChunkRef, error) {
	var refs []ChunkRef

	q := r.db.WithContext(ctx).
		Table(chunkTable).
		Select("id, source").
		Order("id ASC").
		Limit(limit)
	if after != uuid.Nil {
		q = q.Where("id > ?", after)
	}

	if err := q.Find(&refs).Error; err != nil {
		return nil, fmt.Errorf("scroll chunks: %w", err)
	}
	return refs, nil
}

// DeleteByIDs removes the listed points in one statement.
func (r *ChunkRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Chunk{}).Error; err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}
