package service

import (
	"sync"

	"docchat/internal/model"
)

// Registry holds the per-file embedding status and the list of successfully
// embedded PDFs. Both are shared across all requests and are not persisted.
type Registry struct {
	mu       sync.Mutex
	status   map[string]model.EmbedStatus
	embedded []string
}

func NewRegistry() *Registry {
	return &Registry{status: make(map[string]model.EmbedStatus)}
}

func (r *Registry) SetStatus(filename string, status model.EmbedStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status[filename] = status
}

// Status returns the current status, EmbedStatusUnknown for unseen files.
func (r *Registry) Status(filename string) model.EmbedStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	if status, ok := r.status[filename]; ok {
		return status
	}
	return model.EmbedStatusUnknown
}

// MarkEmbedded records a successful ingestion; duplicates are ignored.
func (r *Registry) MarkEmbedded(filename string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range r.embedded {
		if name == filename {
			return
		}
	}
	r.embedded = append(r.embedded, filename)
}

// Remove drops the status entry and the embedded-list entry for filename.
func (r *Registry) Remove(filename string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.status, filename)
	kept := r.embedded[:0]
	for _, name := range r.embedded {
		if name != filename {
			kept = append(kept, name)
		}
	}
	r.embedded = kept
}

// Embedded returns a snapshot of successfully embedded filenames.
func (r *Registry) Embedded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.embedded))
	copy(out, r.embedded)
	return out
}

// HasEmbedded reports whether any PDF has been embedded this process.
func (r *Registry) HasEmbedded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.embedded) > 0
}
