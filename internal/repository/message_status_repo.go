package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/pulsechat/pulse/internal/entity"
)

// MessageStatusRepo persists per-recipient delivery/read receipts.
type MessageStatusRepo struct {
	db *gorm.DB
}

// CreateAll inserts one status row per member inside the caller's
// transaction (invariant I1). Grounded on the teacher's "N status rows in
// one transaction" treatment of seq_users rows at group-create time,
// generalized from seq cursors to per-message receipts.
func (r *MessageStatusRepo) CreateAll(tx *gorm.DB, rows []*entity.MessageStatus) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

// SetDelivered sets deliveredAt for (messageId, userId) only if it is
// currently null, via a conditional UPDATE (`delivered_at IS NULL` in the
// WHERE clause), so a once-set timestamp is never overwritten (I3). Returns
// true if this call actually set the timestamp (for idempotence tests:
// re-delivering is a no-op).
func (r *MessageStatusRepo) SetDelivered(ctx context.Context, messageId, userId string, at int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entity.MessageStatus{}).
		Where("message_id = ? AND user_id = ? AND delivered_at IS NULL", messageId, userId).
		Update("delivered_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SetReadBatch sets readAt (and deliveredAt where still null) for every
// (messageId in ids, userId) row, in one transaction, satisfying §4.4's
// "message_read accepts a batch; updates deliveredAt (where null) and
// readAt (where null) ... in one transaction" and invariant I2
// (readAt != null => deliveredAt != null && deliveredAt <= readAt) since
// both are stamped with the same `at` when deliveredAt was still unset.
// The messageId sub-select is constrained to conversationId so a batch
// naming another conversation's message ids touches nothing (§4.4).
func (r *MessageStatusRepo) SetReadBatch(tx *gorm.DB, conversationId string, messageIds []string, userId string, at int64) error {
	if len(messageIds) == 0 {
		return nil
	}
	inConversation := tx.Model(&entity.Message{}).
		Select("id").
		Where("id IN ? AND conversation_id = ?", messageIds, conversationId)

	if err := tx.Model(&entity.MessageStatus{}).
		Where("message_id IN (?) AND user_id = ? AND delivered_at IS NULL", inConversation, userId).
		Update("delivered_at", at).Error; err != nil {
		return err
	}
	return tx.Model(&entity.MessageStatus{}).
		Where("message_id IN (?) AND user_id = ? AND read_at IS NULL", inConversation, userId).
		Update("read_at", at).Error
}

// GetForMessage returns every status row for a message (used to answer
// "GET /messages/single/:messageId" which includes status rows).
func (r *MessageStatusRepo) GetForMessage(ctx context.Context, messageId string) ([]*entity.MessageStatus, error) {
	var rows []*entity.MessageStatus
	if err := r.db.WithContext(ctx).Where("message_id = ?", messageId).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetForMessageAndUser returns a single status row, or nil if absent.
func (r *MessageStatusRepo) GetForMessageAndUser(ctx context.Context, messageId, userId string) (*entity.MessageStatus, error) {
	var row entity.MessageStatus
	err := r.db.WithContext(ctx).Where("message_id = ? AND user_id = ?", messageId, userId).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}
