package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/asianpilots/volunteer-manager/pkg/model"
	"gorm.io/gorm"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(db *gorm.DB) *repository {
	return &repository{db: db}
}

type repository struct {
	db *gorm.DB
}

// FindChunks returns all FAQ chunks with their embeddings
func (r repository) FindChunks(ctx context.Context) ([]model.FaqChunk, error) {
	var chunks []model.FaqChunk
	err := r.db.
		WithContext(ctx).
		Select("id", "content", "embedding").
		Find(&chunks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find faq chunks: %v", err)
	}
	return chunks, nil
}

// FindChunksByKeywords returns up to limit chunks containing any of the keywords, ignoring case
func (r repository) FindChunksByKeywords(ctx context.Context, keywords []string, limit int) ([]model.FaqChunk, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	conditions := make([]string, len(keywords))
	args := make([]any, len(keywords))
	for i, keyword := range keywords {
		conditions[i] = "content ILIKE ?"
		args[i] = "%" + keyword + "%"
	}

	var chunks []model.FaqChunk
	err := r.db.
		WithContext(ctx).
		Select("id", "content").
		Where(strings.Join(conditions, " OR "), args...).
		Limit(limit).
		Find(&chunks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find faq chunks by keywords: %v", err)
	}
	return chunks, nil
}

// ReplaceChunks deletes all FAQ chunks and inserts the given ones
func (r repository) ReplaceChunks(ctx context.Context, chunks []model.FaqChunk) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.FaqChunk{}).Error
		if err != nil {
			return fmt.Errorf("failed to delete faq chunks: %v", err)
		}
		if len(chunks) == 0 {
			return nil
		}
		err = tx.CreateInBatches(chunks, 100).Error
		if err != nil {
			return fmt.Errorf("failed to create faq chunks: %v", err)
		}
		return nil
	})
}

func (r repository) CreateLogs(ctx context.Context, logs []model.ChatLog) error {
	// only use ctx for values (logging) and not cancellation signals on cud operations for now. ctx
	// cancellation can lead to rollbacks which we should decide individually.
	ctx = context.WithoutCancel(ctx)

	err := r.db.WithContext(ctx).Create(&logs).Error
	if err != nil {
		return fmt.Errorf("failed to create chat log: %v", err)
	}
	return nil
}

// FindLogs returns the latest chat log entries, newest first
func (r repository) FindLogs(ctx context.Context, limit int) ([]model.ChatLog, error) {
	var logs []model.ChatLog
	err := r.db.
		WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find chat log: %v", err)
	}
	return logs, nil
}
