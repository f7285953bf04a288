package repository

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pulsechat/pulse/internal/entity"
)

// newTestDB opens the MySQL instance configured via TEST_MYSQL_DSN and
// migrates the schema fresh, skipping the test when no DSN is reachable —
// the relational-store analogue of the Redis-gated presence/bus tests.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN not set")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Skipf("mysql not reachable: %v", err)
	}

	require.NoError(t, db.AutoMigrate(
		&entity.User{},
		&entity.Conversation{},
		&entity.ConversationMember{},
		&entity.Message{},
		&entity.MessageStatus{},
	))
	return db
}

func newTestRepos(t *testing.T) *Repositories {
	db := newTestDB(t)
	return &Repositories{
		DB:            db,
		User:          &UserRepo{db: db},
		Conversation:  &ConversationRepo{db: db},
		Message:       &MessageRepo{db: db},
		MessageStatus: &MessageStatusRepo{db: db},
	}
}

func TestConversationCreateWithMembersIsIdempotent(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	conv := &entity.Conversation{Id: "conv-idempotent", IsGroup: false}
	members := []*entity.ConversationMember{
		{ConversationId: conv.Id, UserId: "u1", Role: entity.RoleMember},
		{ConversationId: conv.Id, UserId: "u2", Role: entity.RoleMember},
	}

	require.NoError(t, repos.Transaction(ctx, func(tx *gorm.DB) error {
		return repos.Conversation.CreateWithMembers(tx, conv, members)
	}))
	// Re-running with the same ids must not error (OnConflict DoNothing).
	require.NoError(t, repos.Transaction(ctx, func(tx *gorm.DB) error {
		return repos.Conversation.CreateWithMembers(tx, conv, members)
	}))

	ids, err := repos.Conversation.GetMemberUserIds(ctx, conv.Id)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"u1", "u2"}, ids)

	isMember, err := repos.Conversation.IsMember(ctx, conv.Id, "u1")
	require.NoError(t, err)
	require.True(t, isMember)

	isMember, err = repos.Conversation.IsMember(ctx, conv.Id, "nobody")
	require.NoError(t, err)
	require.False(t, isMember)
}

func TestMessageStatusDeliveredAndReadAreMonotonic(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	conv := &entity.Conversation{Id: "conv-monotonic", IsGroup: false}
	require.NoError(t, repos.Transaction(ctx, func(tx *gorm.DB) error {
		return repos.Conversation.CreateWithMembers(tx, conv, []*entity.ConversationMember{
			{ConversationId: conv.Id, UserId: "sender", Role: entity.RoleMember},
			{ConversationId: conv.Id, UserId: "recipient", Role: entity.RoleMember},
		})
	}))

	content := "hi"
	msg := &entity.Message{
		Id:             "msg-monotonic",
		ConversationId: conv.Id,
		SenderId:       "sender",
		Content:        &content,
		Type:           entity.MsgTypeText,
		CreatedAt:      entity.NowUnixMilli(),
	}
	require.NoError(t, repos.DB.WithContext(ctx).Create(msg).Error)

	require.NoError(t, repos.DB.WithContext(ctx).Create(&entity.MessageStatus{
		MessageId: msg.Id, UserId: "recipient",
	}).Error)

	first := entity.NowUnixMilli()
	changed, err := repos.MessageStatus.SetDelivered(ctx, msg.Id, "recipient", first)
	require.NoError(t, err)
	require.True(t, changed)

	earlier := first - 1000
	changed, err = repos.MessageStatus.SetDelivered(ctx, msg.Id, "recipient", earlier)
	require.NoError(t, err)
	require.False(t, changed, "delivered_at is already set; a second call must be a no-op")

	var status entity.MessageStatus
	require.NoError(t, repos.DB.WithContext(ctx).
		Where("message_id = ? AND user_id = ?", msg.Id, "recipient").
		First(&status).Error)
	require.NotNil(t, status.DeliveredAt)
	require.Equal(t, first, *status.DeliveredAt, "an earlier timestamp must never roll deliveredAt backwards")
}

func TestSetReadBatchIgnoresMessageIdsFromAnotherConversation(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	convA := &entity.Conversation{Id: "conv-a", IsGroup: false}
	convB := &entity.Conversation{Id: "conv-b", IsGroup: false}
	require.NoError(t, repos.Transaction(ctx, func(tx *gorm.DB) error {
		if err := repos.Conversation.CreateWithMembers(tx, convA, []*entity.ConversationMember{
			{ConversationId: convA.Id, UserId: "sender", Role: entity.RoleMember},
			{ConversationId: convA.Id, UserId: "actor", Role: entity.RoleMember},
		}); err != nil {
			return err
		}
		return repos.Conversation.CreateWithMembers(tx, convB, []*entity.ConversationMember{
			{ConversationId: convB.Id, UserId: "sender", Role: entity.RoleMember},
			{ConversationId: convB.Id, UserId: "actor", Role: entity.RoleMember},
		})
	}))

	content := "hi from conv B"
	msgInB := &entity.Message{
		Id:             "msg-in-b",
		ConversationId: convB.Id,
		SenderId:       "sender",
		Content:        &content,
		Type:           entity.MsgTypeText,
		CreatedAt:      entity.NowUnixMilli(),
	}
	require.NoError(t, repos.DB.WithContext(ctx).Create(msgInB).Error)
	require.NoError(t, repos.DB.WithContext(ctx).Create(&entity.MessageStatus{
		MessageId: msgInB.Id, UserId: "actor",
	}).Error)

	// actor claims msgInB's id while naming convA; the row must stay untouched.
	require.NoError(t, repos.Transaction(ctx, func(tx *gorm.DB) error {
		return repos.MessageStatus.SetReadBatch(tx, convA.Id, []string{msgInB.Id}, "actor", entity.NowUnixMilli())
	}))

	var status entity.MessageStatus
	require.NoError(t, repos.DB.WithContext(ctx).
		Where("message_id = ? AND user_id = ?", msgInB.Id, "actor").
		First(&status).Error)
	require.Nil(t, status.DeliveredAt, "a messageId from another conversation must not be touched")
	require.Nil(t, status.ReadAt, "a messageId from another conversation must not be touched")
}
