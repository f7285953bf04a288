package entity

// Conversation replaces the teacher's owner-centric "one row per member"
// model with a single shared row plus a ConversationMember join table,
// matching the spec's data model directly: for isGroup=false the member set
// is immutable after creation and has size exactly 2; for isGroup=true,
// size >= 3 at creation.
type Conversation struct {
	Id        string `gorm:"column:id;primaryKey;size:64" json:"id"`
	IsGroup   bool   `gorm:"column:is_group" json:"isGroup"`
	Name      string `gorm:"column:name;size:191" json:"name,omitempty"`
	CreatedAt int64  `gorm:"column:created_at;autoCreateTime:milli" json:"createdAt"`
	UpdatedAt int64  `gorm:"column:updated_at;autoUpdateTime:milli" json:"updatedAt"`
}

func (Conversation) TableName() string { return "conversations" }

// MemberRole distinguishes the creator of a group (admin) from everyone
// else (member). Direct-conversation members are both "member".
type MemberRole string

const (
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
)

// ConversationMember is the (conversationId, userId) membership row.
type ConversationMember struct {
	Id             int64      `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	ConversationId string     `gorm:"column:conversation_id;size:64;uniqueIndex:idx_conv_user" json:"conversationId"`
	UserId         string     `gorm:"column:user_id;size:191;uniqueIndex:idx_conv_user" json:"userId"`
	Role           MemberRole `gorm:"column:role;size:16" json:"role"`
	JoinedAt       int64      `gorm:"column:joined_at;autoCreateTime:milli" json:"joinedAt"`
}

func (ConversationMember) TableName() string { return "conversation_members" }

// ConversationView is the API-facing shape: the conversation plus its
// members and (optionally) the single most recent message.
type ConversationView struct {
	Id          string               `json:"id"`
	IsGroup     bool                 `json:"isGroup"`
	Name        string               `json:"name,omitempty"`
	CreatedAt   int64                `json:"createdAt"`
	UpdatedAt   int64                `json:"updatedAt"`
	Members     []*ConversationMember `json:"members,omitempty"`
	LastMessage *MessageView         `json:"lastMessage,omitempty"`
}
