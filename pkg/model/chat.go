package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatLog is one turn of a FAQ chat conversation
// swagger:model
type ChatLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time  `gorm:"index" json:"createdAt"`
	UserID    *uuid.UUID `gorm:"type:uuid" json:"userId"`
	SessionID *string    `json:"sessionId"`
	Role      ChatRole   `gorm:"not null" json:"role"`
	Content   string     `gorm:"type:text;not null" json:"content"`
}

func (ChatLog) TableName() string {
	return "chat_log"
}

func (l *ChatLog) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// FaqChunk is a slice of the FAQ document together with its embedding
type FaqChunk struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time       `json:"createdAt"`
	Content   string          `gorm:"type:text;not null" json:"content"`
	Embedding pq.Float32Array `gorm:"type:real[]" json:"-"`
	Metadata  RawJSON         `gorm:"type:jsonb" json:"metadata"`
}

func (c *FaqChunk) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
