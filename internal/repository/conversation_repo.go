package repository

import (
	"errors"

	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pulsechat/pulse/internal/entity"
)

// ConversationRepo persists Conversation and ConversationMember rows.
type ConversationRepo struct {
	db *gorm.DB
}

// CreateWithMembers inserts a conversation and its member rows atomically.
// Grounded on the teacher's transactional multi-row insert pattern
// (EnsureSingleChatConversations / EnsureConversationsExist), generalized
// from "one conversation row per owner" to "one shared conversation row
// plus a member join table".
func (r *ConversationRepo) CreateWithMembers(tx *gorm.DB, conv *entity.Conversation, members []*entity.ConversationMember) error {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(conv).Error; err != nil {
		return err
	}
	if len(members) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&members).Error
}

// GetById returns nil, nil if absent.
func (r *ConversationRepo) GetById(ctx context.Context, id string) (*entity.Conversation, error) {
	var c entity.Conversation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// GetMembers returns every member row for a conversation.
func (r *ConversationRepo) GetMembers(ctx context.Context, conversationId string) ([]*entity.ConversationMember, error) {
	var members []*entity.ConversationMember
	if err := r.db.WithContext(ctx).Where("conversation_id = ?", conversationId).Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// GetMemberUserIds is the projection the Message Service uses to create one
// status row per member on send, avoiding loading full member rows.
func (r *ConversationRepo) GetMemberUserIds(ctx context.Context, conversationId string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&entity.ConversationMember{}).
		Where("conversation_id = ?", conversationId).Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// IsMember is the hot-path membership predicate (§4.2 isMember).
func (r *ConversationRepo) IsMember(ctx context.Context, conversationId, userId string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.ConversationMember{}).
		Where("conversation_id = ? AND user_id = ?", conversationId, userId).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListForUser returns every conversation the user belongs to, ordered by
// updatedAt descending.
func (r *ConversationRepo) ListForUser(ctx context.Context, userId string) ([]*entity.Conversation, error) {
	var convs []*entity.Conversation
	err := r.db.WithContext(ctx).
		Table("conversations c").
		Joins("JOIN conversation_members m ON m.conversation_id = c.id").
		Where("m.user_id = ?", userId).
		Order("c.updated_at DESC").
		Select("c.*").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}
	return convs, nil
}

// Touch advances updatedAt; called in the same transaction as a message
// insert so the conversation list view is consistent with the latest
// message (invariant I6).
func (r *ConversationRepo) Touch(tx *gorm.DB, conversationId string, at int64) error {
	return tx.Model(&entity.Conversation{}).
		Where("id = ? AND updated_at < ?", conversationId, at).
		Update("updated_at", at).Error
}
