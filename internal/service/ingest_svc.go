package service

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"docchat/internal/model"
)

// Embedder produces one vector per input text, order-preserving, in a single
// batched call.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([]pgvector.Vector, error)
	Dimensions() int
}

// VectorIndex is the slice of the index client the ingestion pipeline needs.
type VectorIndex interface {
	EnsureCollection(ctx context.Context, dimensions int) error
	UpsertBatch(ctx context.Context, chunks []model.Chunk) error
}

// IngestService runs the load → chunk → embed → upsert pipeline for one PDF.
type IngestService struct {
	index    VectorIndex
	embedder Embedder
	registry *Registry
	splitter *Splitter

	// extract is swappable for tests.
	extract func(path string) ([]PageText, error)
}

func NewIngestService(index VectorIndex, embedder Embedder, registry *Registry) *IngestService {
	return &IngestService{
		index:    index,
		embedder: embedder,
		registry: registry,
		splitter: NewSplitter(2000, 100),
		extract:  ExtractPages,
	}
}

// Ingest processes one uploaded PDF. Callers run it in a goroutine; the error
// is also logged here so background failures are never silent.
func (s *IngestService) Ingest(ctx context.Context, path string) error {
	filename := filepath.Base(path)
	s.registry.SetStatus(filename, model.EmbedStatusProcessing)
	log.Printf("[ingest] Processing %s", path)

	if err := s.run(ctx, path, filename); err != nil {
		s.registry.SetStatus(filename, model.EmbedStatusError)
		log.Printf("[ingest] Embedding error for %s: %v", filename, err)
		return err
	}

	s.registry.SetStatus(filename, model.EmbedStatusDone)
	s.registry.MarkEmbedded(filename)
	return nil
}

func (s *IngestService) run(ctx context.Context, path, filename string) error {
	if err := s.index.EnsureCollection(ctx, s.embedder.Dimensions()); err != nil {
		return err
	}

	pages, err := s.extract(path)
	if err != nil {
		return err
	}

	chunks := s.splitter.SplitPages(pages)
	log.Printf("[ingest] Split %s into %d chunks", filename, len(chunks))
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedded %d vectors for %d chunks", len(vectors), len(chunks))
	}

	points := make([]model.Chunk, len(chunks))
	for i, c := range chunks {
		points[i] = model.Chunk{
			ID:        uuid.New(),
			Content:   c.Text,
			Page:      c.Page,
			Source:    path,
			Filename:  filename,
			Embedding: vectors[i],
		}
	}

	if err := s.index.UpsertBatch(ctx, points); err != nil {
		return err
	}

	log.Printf("[ingest] Done, %d points upserted for %s", len(points), filename)
	return nil
}
