package entity

// MsgType enumerates the payload kinds a Message may carry.
type MsgType string

const (
	MsgTypeText  MsgType = "text"
	MsgTypeImage MsgType = "image"
	MsgTypeVideo MsgType = "video"
)

// Message. Invariants enforced by the Message Service, not the database:
// type=text => content non-empty, mediaPath null; type in {image,video} =>
// mediaPath non-empty. senderId must be a member of conversationId at
// creation time (checked by the service before insert).
type Message struct {
	Id             string  `gorm:"column:id;primaryKey;size:64" json:"id"`
	ConversationId string  `gorm:"column:conversation_id;size:64;index" json:"conversationId"`
	SenderId       string  `gorm:"column:sender_id;size:191;index" json:"senderId"`
	Content        *string `gorm:"column:content;type:text" json:"content,omitempty"`
	Type           MsgType `gorm:"column:type;size:16" json:"type"`
	MediaPath      *string `gorm:"column:media_path;size:512" json:"mediaPath,omitempty"`
	MediaMeta      *string `gorm:"column:media_meta;type:text" json:"mediaMeta,omitempty"`
	CreatedAt      int64   `gorm:"column:created_at;index" json:"createdAt"`
}

func (Message) TableName() string { return "messages" }

// MessageView is the message plus its sender's profile, the shape returned
// to clients after send() and in history pagination.
type MessageView struct {
	Id             string          `json:"id"`
	ConversationId string          `json:"conversationId"`
	SenderId       string          `json:"senderId"`
	Sender         *UserInfo       `json:"sender,omitempty"`
	Content        *string         `json:"content,omitempty"`
	Type           MsgType         `json:"type"`
	MediaPath      *string         `json:"mediaPath,omitempty"`
	MediaMeta      *string         `json:"mediaMeta,omitempty"`
	CreatedAt      int64           `json:"createdAt"`
	Statuses       []*MessageStatus `json:"statuses,omitempty"`
}

func (m *Message) ToMessageView(sender *UserInfo) *MessageView {
	return &MessageView{
		Id:             m.Id,
		ConversationId: m.ConversationId,
		SenderId:       m.SenderId,
		Sender:         sender,
		Content:        m.Content,
		Type:           m.Type,
		MediaPath:      m.MediaPath,
		MediaMeta:      m.MediaMeta,
		CreatedAt:      m.CreatedAt,
	}
}
