package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/asianpilots/volunteer-manager/internal/errdef"
	"github.com/asianpilots/volunteer-manager/pkg/model"
	"github.com/sashabaranov/go-openai"
	"gopkg.in/yaml.v3"
)

const (
	ChunkSize    = 600
	ChunkOverlap = 100
)

// Chunk collapses all whitespace in text and splits it into chunks of size characters, each
// overlapping the previous one by overlap characters.
func Chunk(text string, size, overlap int) []string {
	cleaned := []rune(strings.Join(strings.Fields(text), " "))
	if len(cleaned) == 0 || size <= 0 {
		return nil
	}
	step := size - overlap
	if step <= 0 {
		step = size
	}

	var chunks []string
	for start := 0; start < len(cleaned); start += step {
		end := min(start+size, len(cleaned))
		chunks = append(chunks, string(cleaned[start:end]))
		if end >= len(cleaned) {
			break
		}
	}
	return chunks
}

// FAQEntry is one question of a YAML FAQ document
type FAQEntry struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// ParseFAQ reads a YAML list of questions and answers into plain text.
func ParseFAQ(data []byte) (string, error) {
	var entries []FAQEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return "", fmt.Errorf("failed to parse FAQ: %v", err)
	}

	var b strings.Builder
	for _, entry := range entries {
		question := strings.TrimSpace(entry.Question)
		answer := strings.TrimSpace(entry.Answer)
		if question == "" && answer == "" {
			continue
		}
		fmt.Fprintf(&b, "Q: %s\nA: %s\n\n", question, answer)
	}
	return b.String(), nil
}

// Ingest embeds the chunks in a single request and replaces all stored FAQ chunks with them
func (s Service) Ingest(ctx context.Context, chunks []string) (int, error) {
	if s.client == nil {
		return 0, ErrNotConfigured
	}
	if len(chunks) == 0 {
		return 0, errdef.NewBadRequest("No FAQ text to ingest.")
	}

	response, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: chunks,
		Model: embeddingModel,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to embed faq chunks: %v", err)
	}

	embeddings := slices.Clone(response.Data)
	slices.SortFunc(embeddings, func(a, b openai.Embedding) int {
		return a.Index - b.Index
	})

	rows := make([]model.FaqChunk, 0, len(embeddings))
	for _, embedding := range embeddings {
		if embedding.Index < 0 || embedding.Index >= len(chunks) {
			continue
		}
		metadata, err := json.Marshal(map[string]int{"index": embedding.Index})
		if err != nil {
			return 0, err
		}
		rows = append(rows, model.FaqChunk{
			Content:   chunks[embedding.Index],
			Embedding: embedding.Embedding,
			Metadata:  metadata,
		})
	}

	err = s.repository.ReplaceChunks(ctx, rows)
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "FAQ ingested", "chunks", len(rows))
	return len(rows), nil
}
