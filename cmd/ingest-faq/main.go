// Replaces the FAQ chunks used by the chat. Reads a text or markdown document, or a YAML list of
// question and answer entries, splits it into overlapping chunks and stores them with their
// embeddings.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/asianpilots/volunteer-manager/internal/util"
	"github.com/asianpilots/volunteer-manager/pkg/chat"
	"github.com/asianpilots/volunteer-manager/pkg/config"
	"github.com/asianpilots/volunteer-manager/pkg/storage"
)

func main() {
	path := flag.String("file", "content/faq.md", "Path to the FAQ document (.txt, .md, .yaml or .yml)")
	dryRun := flag.Bool("dry-run", false, "Print the chunks and do not store them")
	flag.Parse()

	logger := slog.Default()

	text, err := read(*path)
	if err != nil {
		logger.Error("failed to read FAQ", "path", *path, "error", err)
		os.Exit(1)
	}

	chunks := chat.Chunk(text, chat.ChunkSize, chat.ChunkOverlap)
	if len(chunks) == 0 {
		logger.Error("no text in FAQ", "path", *path)
		os.Exit(1)
	}
	logger.Info("extracted chunks", "path", *path, "chunks", len(chunks))

	if *dryRun {
		for i, chunk := range chunks {
			fmt.Printf("--- %d\n%s\n", i, chunk)
		}
		return
	}

	cfg, err := config.NewIngest()
	if err != nil {
		logger.Error("failed to read configuration", "error", err)
		os.Exit(1)
	}

	db, err := storage.NewDatabase(logger, cfg.Postgresql)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	client := chat.NewOpenAIClient(util.NewHTTPClient(2*time.Minute), "", cfg.OpenAI.APIKey)
	service := chat.NewService(logger, chat.NewRepository(db), client)

	count, err := service.Ingest(context.Background(), chunks)
	if err != nil {
		logger.Error("failed to ingest FAQ", "error", err)
		os.Exit(1)
	}
	logger.Info("inserted chunks into faq_chunks", "chunks", count)
}

func read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return chat.ParseFAQ(data)
	default:
		return string(data), nil
	}
}
