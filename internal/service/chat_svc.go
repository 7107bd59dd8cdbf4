package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"docchat/internal/config"
	"docchat/internal/model"
	"docchat/internal/repository"
)

const (
	// Per-PDF filtered search depth and the global fallback depth.
	kPerPDF = 4
	kGlobal = 6

	// Index queries fail fast instead of hanging the response.
	retrievalTimeout = 12 * time.Second

	snippetLimit      = 200
	translateMaxChars = 6000
	maxSuggestions    = 3
)

const truncationNotice = "\n\n*Document was truncated to 6,000 characters for translation.*"

// ChatIndex is the slice of the index client the retrieval engine needs.
type ChatIndex interface {
	Search(ctx context.Context, query pgvector.Vector, topK int) ([]repository.ChunkHit, error)
	SearchByFilename(ctx context.Context, query pgvector.Vector, filename string, topK int) ([]repository.ChunkHit, error)
}

// ChatService runs retrieval and streams model output. The chat model is a
// lazy process-wide singleton; a missing API key surfaces as its init error.
type ChatService struct {
	index    ChatIndex
	embedder Embedder
	registry *Registry
	cfg      *config.Config

	llmOnce sync.Once
	llm     einomodel.ToolCallingChatModel
	llmErr  error
}

func NewChatService(index ChatIndex, embedder Embedder, registry *Registry, cfg *config.Config) *ChatService {
	return &ChatService{
		index:    index,
		embedder: embedder,
		registry: registry,
		cfg:      cfg,
	}
}

func (s *ChatService) chatModel(ctx context.Context) (einomodel.ToolCallingChatModel, error) {
	s.llmOnce.Do(func() {
		// A pre-seeded model (tests inject fakes here) skips construction.
		if s.llm != nil {
			return
		}
		if s.cfg.ChatAPIKey == "" {
			s.llmErr = fmt.Errorf("GROQ_API_KEY is not set")
			return
		}
		temperature := float32(0.3)
		s.llm, s.llmErr = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:      s.cfg.ChatAPIKey,
			Model:       s.cfg.ChatModel,
			BaseURL:     s.cfg.ChatBaseURL,
			Temperature: &temperature,
		})
		if s.llmErr == nil {
			log.Printf("[chat] LLM initialised (%s)", s.cfg.ChatModel)
		}
	})
	return s.llm, s.llmErr
}

// Retrieve returns relevant chunks for the query plus the PDF count used for
// prompt framing. An empty corpus returns without touching the index; a
// deadline hit on the index degrades to zero hits instead of erroring.
func (s *ChatService) Retrieve(ctx context.Context, query string, activePDFs []string) ([]repository.ChunkHit, int, error) {
	numPDFs := 0
	switch {
	case len(activePDFs) > 0:
		numPDFs = len(activePDFs)
	case s.registry.HasEmbedded():
		numPDFs = 1
	default:
		return nil, 0, nil
	}

	rctx, cancel := context.WithTimeout(ctx, retrievalTimeout)
	defer cancel()

	var hits []repository.ChunkHit
	var err error
	if len(activePDFs) > 0 {
		hits, err = s.retrievePerPDF(rctx, query, activePDFs)
	} else {
		hits, err = s.retrieveGlobal(rctx, query)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Printf("[chat] Index query timed out, answering without PDF context")
			return nil, numPDFs, nil
		}
		return nil, 0, err
	}
	return hits, numPDFs, nil
}

// retrievePerPDF embeds the query once, then runs one filtered top-k search
// per active PDF so every selected file contributes context. An empty
// filtered result falls back to a single unfiltered search for that slot
// (points ingested before the filename tag existed carry no tag). Results are
// deduplicated by point ID.
func (s *ChatService) retrievePerPDF(ctx context.Context, query string, activePDFs []string) ([]repository.ChunkHit, error) {
	queryVec, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	var hits []repository.ChunkHit
	seen := make(map[uuid.UUID]struct{})

	for _, filename := range activePDFs {
		slot, err := s.index.SearchByFilename(ctx, queryVec, filename, kPerPDF)
		if err != nil {
			return nil, err
		}
		if len(slot) == 0 {
			slot, err = s.index.Search(ctx, queryVec, kPerPDF)
			if err != nil {
				return nil, err
			}
		}
		for _, hit := range slot {
			if _, ok := seen[hit.ID]; ok {
				continue
			}
			seen[hit.ID] = struct{}{}
			hits = append(hits, hit)
		}
	}
	return hits, nil
}

func (s *ChatService) retrieveGlobal(ctx context.Context, query string) ([]repository.ChunkHit, error) {
	queryVec, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.index.Search(ctx, queryVec, kGlobal)
}

func (s *ChatService) embedQuery(ctx context.Context, query string) (pgvector.Vector, error) {
	vectors, err := s.embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		return pgvector.Vector{}, err
	}
	if len(vectors) == 0 {
		return pgvector.Vector{}, fmt.Errorf("no query embedding returned")
	}
	return vectors[0], nil
}

// StreamChat yields token events as the model produces them, then exactly one
// terminal sources event. Any failure becomes a terminal error event; the
// channel is closed in every case. Abandoning the consumer cancels via ctx.
func (s *ChatService) StreamChat(ctx context.Context, query string, history []model.ChatMessage, activePDFs []string) <-chan Event {
	events := make(chan Event, 16)

	go func() {
		defer close(events)

		hits, numPDFs, err := s.Retrieve(ctx, query, activePDFs)
		if err != nil {
			s.emit(ctx, events, errorEvent(err))
			return
		}

		contextText, sources := buildContext(hits)
		messages := buildChatMessages(contextText, query, history, numPDFs)

		llm, err := s.chatModel(ctx)
		if err != nil {
			s.emit(ctx, events, errorEvent(err))
			return
		}

		reader, err := llm.Stream(ctx, messages)
		if err != nil {
			s.emit(ctx, events, errorEvent(err))
			return
		}
		defer reader.Close()

		for {
			msg, err := reader.Recv()
			if err == io.EOF {
				break
			}
			if err != nil {
				s.emit(ctx, events, errorEvent(err))
				return
			}
			if msg.Content != "" {
				if !s.emit(ctx, events, tokenEvent(msg.Content)) {
					return
				}
			}
		}

		s.emit(ctx, events, sourcesEvent(sources))
	}()

	return events
}

// StreamTranslate extracts the PDF's text, truncates beyond the limit at a
// word boundary, and streams the translation; the truncation notice is the
// final token when applied.
func (s *ChatService) StreamTranslate(ctx context.Context, filename, targetLanguage string) <-chan Event {
	events := make(chan Event, 16)

	go func() {
		defer close(events)

		path := filepath.Join(s.cfg.UploadDir, filename)
		if _, err := os.Stat(path); err != nil {
			s.emit(ctx, events, tokenEvent(fmt.Sprintf("Error: file %q not found.", filename)))
			return
		}

		fullText, err := ExtractText(path)
		if err != nil {
			s.emit(ctx, events, errorEvent(err))
			return
		}
		text, truncated := TruncateAtWord(fullText, translateMaxChars)

		header := fmt.Sprintf("## %s Translation\n*Source: %s*\n\n", targetLanguage, filename)
		if !s.emit(ctx, events, tokenEvent(header)) {
			return
		}

		llm, err := s.chatModel(ctx)
		if err != nil {
			s.emit(ctx, events, errorEvent(err))
			return
		}

		reader, err := llm.Stream(ctx, buildTranslateMessages(text, targetLanguage))
		if err != nil {
			s.emit(ctx, events, errorEvent(err))
			return
		}
		defer reader.Close()

		for {
			msg, err := reader.Recv()
			if err == io.EOF {
				break
			}
			if err != nil {
				s.emit(ctx, events, errorEvent(err))
				return
			}
			if msg.Content != "" {
				if !s.emit(ctx, events, tokenEvent(msg.Content)) {
					return
				}
			}
		}

		if truncated {
			s.emit(ctx, events, tokenEvent(truncationNotice))
		}
	}()

	return events
}

// Suggestions asks the model for up to 3 follow-up questions. Model or parse
// failures degrade to an empty list.
func (s *ChatService) Suggestions(ctx context.Context, message, answer string) []string {
	llm, err := s.chatModel(ctx)
	if err != nil {
		log.Printf("[chat] Suggestions unavailable: %v", err)
		return []string{}
	}

	resp, err := llm.Generate(ctx, buildSuggestionMessages(message, answer))
	if err != nil {
		log.Printf("[chat] Suggestion generation failed: %v", err)
		return []string{}
	}
	return parseSuggestions(resp.Content)
}

// parseSuggestions accepts only a JSON array, stringifies its items and caps
// the result at 3. Anything else yields an empty list.
func parseSuggestions(raw string) []string {
	var items []interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &items); err != nil {
		return []string{}
	}

	out := make([]string, 0, maxSuggestions)
	for _, item := range items {
		if len(out) == maxSuggestions {
			break
		}
		str, ok := item.(string)
		if !ok {
			str = fmt.Sprint(item)
		}
		out = append(out, str)
	}
	return out
}

func (s *ChatService) emit(ctx context.Context, ch chan<- Event, event Event) bool {
	select {
	case ch <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

// buildContext renders retrieved chunks into the prompt context block and the
// source descriptors for the terminal sources event, in retrieval order.
func buildContext(hits []repository.ChunkHit) (string, []Source) {
	parts := make([]string, 0, len(hits))
	sources := make([]Source, 0, len(hits))

	for _, hit := range hits {
		filename := hit.Filename
		if filename == "" && hit.Source != "" {
			filename = filepath.Base(hit.Source)
		}
		if filename == "" {
			filename = "unknown.pdf"
		}
		parts = append(parts, fmt.Sprintf("[%s]\n%s", filename, hit.Content))
		sources = append(sources, Source{
			Page:    hit.Page,
			Source:  filename,
			Snippet: snippet(hit.Content),
		})
	}
	return strings.Join(parts, "\n\n"), sources
}

// snippet truncates to 200 runes with an ellipsis marker.
func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetLimit {
		return text
	}
	return string(runes[:snippetLimit]) + "…"
}

// TruncateAtWord cuts text beyond maxChars runes at the last space before the
// limit, avoiding mid-word splits. The bool reports whether a cut happened.
func TruncateAtWord(text string, maxChars int) (string, bool) {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text, false
	}
	head := string(runes[:maxChars])
	if i := strings.LastIndex(head, " "); i > 0 {
		head = head[:i]
	}
	return head, true
}
