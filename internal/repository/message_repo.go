package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pulsechat/pulse/internal/entity"
)

// MessageRepo persists Message rows and implements createdAt-cursor
// pagination (§4.3 listForConversation).
type MessageRepo struct {
	db *gorm.DB
}

// Create inserts one message row inside the caller's transaction.
func (r *MessageRepo) Create(tx *gorm.DB, msg *entity.Message) error {
	return tx.Create(msg).Error
}

// GetById returns nil, nil if absent.
func (r *MessageRepo) GetById(ctx context.Context, id string) (*entity.Message, error) {
	var m entity.Message
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// GetLastForConversation returns the single most recent message for a
// conversation list view, or nil if the conversation has none yet.
func (r *MessageRepo) GetLastForConversation(ctx context.Context, conversationId string) (*entity.Message, error) {
	var m entity.Message
	err := r.db.WithContext(ctx).Where("conversation_id = ?", conversationId).
		Order("created_at DESC").Limit(1).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// ListBefore returns up to limit messages with createdAt < cursor (or all
// if cursor is nil), newest first. The service derives hasMore from
// len(result) == limit, so no extra count query is needed.
func (r *MessageRepo) ListBefore(ctx context.Context, conversationId string, cursor *int64, limit int) ([]*entity.Message, error) {
	q := r.db.WithContext(ctx).Where("conversation_id = ?", conversationId)
	if cursor != nil {
		q = q.Where("created_at < ?", *cursor)
	}
	var messages []*entity.Message
	if err := q.Order("created_at DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}
