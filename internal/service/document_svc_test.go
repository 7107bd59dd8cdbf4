package service

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/uuid"

	"docchat/internal/model"
	"docchat/internal/repository"
)

type fakeLifecycleIndex struct {
	hasCollection bool
	refs          []repository.ChunkRef

	scrollCalls int
	deleted     []uuid.UUID
}

func (f *fakeLifecycleIndex) HasCollection(ctx context.Context) bool { return f.hasCollection }

func (f *fakeLifecycleIndex) Scroll(ctx context.Context, after uuid.UUID, limit int) ([]repository.ChunkRef, error) {
	f.scrollCalls++
	sorted := make([]repository.ChunkRef, len(f.refs))
	copy(sorted, f.refs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID.String() < sorted[j].ID.String()
	})

	var page []repository.ChunkRef
	for _, ref := range sorted {
		if after != uuid.Nil && ref.ID.String() <= after.String() {
			continue
		}
		page = append(page, ref)
		if len(page) == limit {
			break
		}
	}
	return page, nil
}

func (f *fakeLifecycleIndex) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	f.deleted = append(f.deleted, ids...)
	return nil
}

func TestDeleteRemovesMatchingChunksAndRegistryEntry(t *testing.T) {
	target := repository.ChunkRef{ID: uuid.New(), Source: "/data/uploads/report.pdf"}
	exact := repository.ChunkRef{ID: uuid.New(), Source: "report.pdf"}
	other := repository.ChunkRef{ID: uuid.New(), Source: "/data/uploads/other.pdf"}
	index := &fakeLifecycleIndex{
		hasCollection: true,
		refs:          []repository.ChunkRef{target, exact, other},
	}
	registry := NewRegistry()
	registry.MarkEmbedded("report.pdf")
	registry.MarkEmbedded("other.pdf")

	svc := NewDocumentService(index, registry, t.TempDir())
	if err := svc.Delete(context.Background(), "report.pdf"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// Both the basename match and the exact match are removed.
	if len(index.deleted) != 2 {
		t.Fatalf("deleted %d point IDs, want 2", len(index.deleted))
	}
	for _, id := range index.deleted {
		if id == other.ID {
			t.Error("chunk of an unrelated PDF was deleted")
		}
	}
	if got := registry.Embedded(); len(got) != 1 || got[0] != "other.pdf" {
		t.Errorf("embedded = %v, want [other.pdf]", got)
	}
}

func TestDeleteScrollsAllPages(t *testing.T) {
	index := &fakeLifecycleIndex{hasCollection: true}
	for i := 0; i < 2500; i++ {
		index.refs = append(index.refs, repository.ChunkRef{ID: uuid.New(), Source: "big.pdf"})
	}

	svc := NewDocumentService(index, NewRegistry(), t.TempDir())
	if err := svc.Delete(context.Background(), "big.pdf"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if len(index.deleted) != 2500 {
		t.Errorf("deleted %d point IDs, want 2500", len(index.deleted))
	}
	if index.scrollCalls < 3 {
		t.Errorf("expected at least 3 scroll pages, got %d", index.scrollCalls)
	}
}

func TestDeleteUnknownFilenameIsNoOp(t *testing.T) {
	index := &fakeLifecycleIndex{
		hasCollection: true,
		refs:          []repository.ChunkRef{{ID: uuid.New(), Source: "other.pdf"}},
	}
	registry := NewRegistry()
	registry.MarkEmbedded("other.pdf")

	svc := NewDocumentService(index, registry, t.TempDir())
	if err := svc.Delete(context.Background(), "missing.pdf"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if len(index.deleted) != 0 {
		t.Errorf("no chunks should be deleted, got %d", len(index.deleted))
	}
	if got := registry.Embedded(); len(got) != 1 {
		t.Errorf("registry changed by a no-op delete: %v", got)
	}
}

func TestDeleteWithoutCollectionSkipsIndex(t *testing.T) {
	index := &fakeLifecycleIndex{hasCollection: false}
	svc := NewDocumentService(index, NewRegistry(), t.TempDir())

	if err := svc.Delete(context.Background(), "report.pdf"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if index.scrollCalls != 0 {
		t.Errorf("index must not be scanned without a collection, got %d scrolls", index.scrollCalls)
	}
}

func TestDeleteRemovesFileOnDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatal(err)
	}

	svc := NewDocumentService(&fakeLifecycleIndex{}, NewRegistry(), dir)
	if err := svc.Delete(context.Background(), "report.pdf"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("uploaded file should be removed from disk")
	}
}

func TestListReturnsEmbeddedFiles(t *testing.T) {
	registry := NewRegistry()
	registry.MarkEmbedded("a.pdf")
	registry.SetStatus("pending.pdf", model.EmbedStatusProcessing)

	svc := NewDocumentService(&fakeLifecycleIndex{}, registry, t.TempDir())
	if got := svc.List(); len(got) != 1 || got[0] != "a.pdf" {
		t.Errorf("List = %v, want [a.pdf]", got)
	}
}
