package entity

// MessageStatus is the per-recipient delivery/read receipt row. One row
// per (messageId, userId) is created atomically with the message (I1).
// deliveredAt/readAt are monotonic once set: never cleared, never
// overwritten (I2, I3) — enforced at the repository layer by conditional
// updates that only write a column while it is still NULL.
type MessageStatus struct {
	Id          int64  `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	MessageId   string `gorm:"column:message_id;size:64;uniqueIndex:idx_msg_user" json:"messageId"`
	UserId      string `gorm:"column:user_id;size:191;uniqueIndex:idx_msg_user" json:"userId"`
	DeliveredAt *int64 `gorm:"column:delivered_at" json:"deliveredAt,omitempty"`
	ReadAt      *int64 `gorm:"column:read_at" json:"readAt,omitempty"`
}

func (MessageStatus) TableName() string { return "message_statuses" }
