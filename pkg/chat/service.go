package chat

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/asianpilots/volunteer-manager/internal/errdef"
	"github.com/asianpilots/volunteer-manager/internal/metrics"
	"github.com/asianpilots/volunteer-manager/pkg/model"
	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
)

const (
	embeddingModel = openai.SmallEmbedding3
	chatModel      = openai.GPT4oMini
	maxTokens      = 500

	similarityMatches = 10
	keywordMatches    = 5
	maxKeywords       = 5

	systemPrompt = `You answer questions using only the following context from the FAQ document. If the answer is not in the context, say "I don't have that information in the FAQ." Do not make up details. Keep answers concise.`
	noContext    = "No relevant FAQ content found."
	noAnswer     = "I couldn't generate an answer."
)

// ErrNotConfigured is returned when no OpenAI API key is configured
var ErrNotConfigured = errors.New("Chat is not configured.")

func NewService(logger *slog.Logger, repository Repository, client openAI) *Service {
	return &Service{
		logger:     logger,
		repository: repository,
		client:     client,
	}
}

type Service struct {
	logger     *slog.Logger
	repository Repository
	client     openAI
}

type Repository interface {
	FindChunks(ctx context.Context) ([]model.FaqChunk, error)
	FindChunksByKeywords(ctx context.Context, keywords []string, limit int) ([]model.FaqChunk, error)
	ReplaceChunks(ctx context.Context, chunks []model.FaqChunk) error
	CreateLogs(ctx context.Context, logs []model.ChatLog) error
	FindLogs(ctx context.Context, limit int) ([]model.ChatLog, error)
}

// openAI is the part of *openai.Client used for answering
type openAI interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Ask answers the message from the FAQ and logs both turns
func (s Service) Ask(ctx context.Context, userID uuid.UUID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		metrics.ChatRequestsTotal.WithLabelValues("invalid").Inc()
		return "", errdef.NewBadRequest("message is required")
	}
	if s.client == nil {
		metrics.ChatRequestsTotal.WithLabelValues("not_configured").Inc()
		return "", ErrNotConfigured
	}

	faqContext, err := s.context(ctx, message)
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("failure").Inc()
		return "", err
	}

	completion, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt + "\n\nContext:\n" + faqContext},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("failure").Inc()
		s.logger.ErrorContext(ctx, "Chat completion failed", "error", err)
		return "", errdef.NewUpstream("Something went wrong. Please try again.")
	}

	reply := noAnswer
	if len(completion.Choices) > 0 {
		if content := strings.TrimSpace(completion.Choices[0].Message.Content); content != "" {
			reply = content
		}
	}

	err = s.repository.CreateLogs(ctx, []model.ChatLog{
		{UserID: &userID, Role: model.ChatRoleUser, Content: message},
		{UserID: &userID, Role: model.ChatRoleAssistant, Content: reply},
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to write chat log", "error", err)
	}

	metrics.ChatRequestsTotal.WithLabelValues("answered").Inc()
	return reply, nil
}

// context collects the FAQ chunks most similar to the message, followed by chunks containing its
// keywords
func (s Service) context(ctx context.Context, message string) (string, error) {
	embedding, err := s.embed(ctx, message)
	if err != nil {
		return "", err
	}

	chunks, err := s.repository.FindChunks(ctx)
	if err != nil {
		return "", err
	}
	matches := mostSimilar(chunks, embedding, similarityMatches)

	keywordChunks, err := s.repository.FindChunksByKeywords(ctx, Keywords(message), keywordMatches)
	if err != nil {
		return "", err
	}
	seen := make(map[uuid.UUID]struct{}, len(matches))
	for _, chunk := range matches {
		seen[chunk.ID] = struct{}{}
	}
	for _, chunk := range keywordChunks {
		if _, ok := seen[chunk.ID]; ok {
			continue
		}
		seen[chunk.ID] = struct{}{}
		matches = append(matches, chunk)
	}

	if len(matches) == 0 {
		return noContext, nil
	}
	contents := make([]string, len(matches))
	for i, chunk := range matches {
		contents[i] = chunk.Content
	}
	return strings.Join(contents, "\n\n"), nil
}

func (s Service) embed(ctx context.Context, message string) ([]float32, error) {
	response, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{message},
		Model: embeddingModel,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Embedding failed", "error", err)
		return nil, errdef.NewUpstream("Failed to process question.")
	}
	if len(response.Data) == 0 || len(response.Data[0].Embedding) == 0 {
		return nil, errdef.NewUpstream("Failed to process question.")
	}
	return response.Data[0].Embedding, nil
}

// Keywords returns the first words of the message longer than two characters. Questions about
// clothing also look for "attire".
func Keywords(message string) []string {
	lower := strings.ToLower(message)

	var words []string
	for _, word := range strings.Fields(lower) {
		if utf8.RuneCountInString(word) > 2 {
			words = append(words, word)
		}
	}

	var keywords []string
	for _, word := range words[:min(maxKeywords, len(words))] {
		if !slices.Contains(keywords, word) {
			keywords = append(keywords, word)
		}
	}
	if strings.Contains(lower, "dress") || strings.Contains(lower, "wear") || strings.Contains(lower, "clothes") {
		if !slices.Contains(keywords, "attire") {
			keywords = append(keywords, "attire")
		}
	}
	return keywords
}

type scored struct {
	chunk model.FaqChunk
	score float64
}

// mostSimilar returns the n chunks with the highest cosine similarity to the embedding. Chunks with
// an embedding of a different dimension are ignored.
func mostSimilar(chunks []model.FaqChunk, embedding []float32, n int) []model.FaqChunk {
	var candidates []scored
	for _, chunk := range chunks {
		if len(chunk.Embedding) != len(embedding) {
			continue
		}
		candidates = append(candidates, scored{chunk: chunk, score: cosine(chunk.Embedding, embedding)})
	}
	slices.SortStableFunc(candidates, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	matches := make([]model.FaqChunk, 0, min(n, len(candidates)))
	for _, candidate := range candidates[:min(n, len(candidates))] {
		matches = append(matches, candidate.chunk)
	}
	return matches
}

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
