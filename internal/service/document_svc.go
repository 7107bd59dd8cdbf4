package service

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"docchat/internal/repository"
)

// scrollPageSize bounds how many point refs one deletion scan page holds.
const scrollPageSize = 1000

// LifecycleIndex is the slice of the index client deletion needs.
type LifecycleIndex interface {
	HasCollection(ctx context.Context) bool
	Scroll(ctx context.Context, after uuid.UUID, limit int) ([]repository.ChunkRef, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
}

// DocumentService handles listing and deletion of embedded PDFs.
type DocumentService struct {
	index     LifecycleIndex
	registry  *Registry
	uploadDir string
}

func NewDocumentService(index LifecycleIndex, registry *Registry, uploadDir string) *DocumentService {
	return &DocumentService{
		index:     index,
		registry:  registry,
		uploadDir: uploadDir,
	}
}

// List returns the filenames of all successfully embedded PDFs.
func (s *DocumentService) List() []string {
	return s.registry.Embedded()
}

// Delete removes a PDF's vectors, its status/registry entries and the file on
// disk. It is idempotent: a missing collection, unknown filename or absent
// file is a no-op. Partial failure after the index deletion is not rolled
// back.
func (s *DocumentService) Delete(ctx context.Context, filename string) error {
	if s.index.HasCollection(ctx) {
		var ids []uuid.UUID
		after := uuid.Nil
		for {
			refs, err := s.index.Scroll(ctx, after, scrollPageSize)
			if err != nil {
				return err
			}
			if len(refs) == 0 {
				break
			}
			for _, ref := range refs {
				if ref.Source == filename || filepath.Base(ref.Source) == filename {
					ids = append(ids, ref.ID)
				}
			}
			after = refs[len(refs)-1].ID
			if len(refs) < scrollPageSize {
				break
			}
		}

		if err := s.index.DeleteByIDs(ctx, ids); err != nil {
			return err
		}
		log.Printf("[docs] Deleted %s (%d chunks removed)", filename, len(ids))
	}

	s.registry.Remove(filename)

	path := filepath.Join(s.uploadDir, filename)
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			log.Printf("[docs] Index cleaned but file removal failed for %s: %v", filename, err)
		}
	}
	return nil
}
