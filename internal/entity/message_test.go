package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToMessageViewCopiesSenderProfile(t *testing.T) {
	content := "hi"
	msg := &Message{
		Id:             "m1",
		ConversationId: "c1",
		SenderId:       "u1",
		Content:        &content,
		Type:           MsgTypeText,
		CreatedAt:      1000,
	}
	sender := &UserInfo{Id: "u1", Name: "Alice"}

	view := msg.ToMessageView(sender)

	assert.Equal(t, msg.Id, view.Id)
	assert.Equal(t, msg.ConversationId, view.ConversationId)
	assert.Same(t, sender, view.Sender)
	assert.Equal(t, content, *view.Content)
	assert.Nil(t, view.Statuses)
}

func TestToMessageViewAllowsNilSender(t *testing.T) {
	msg := &Message{Id: "m1", Type: MsgTypeText}
	view := msg.ToMessageView(nil)
	assert.Nil(t, view.Sender)
}

func TestToUserInfoCopiesFields(t *testing.T) {
	lastSeen := int64(42)
	u := &User{
		Id:          "u1",
		Email:       "u1@example.com",
		DisplayName: "Alice",
		ImageUrl:    "https://img/1",
		CreatedAt:   100,
		LastSeenAt:  &lastSeen,
	}
	info := u.ToUserInfo()
	assert.Equal(t, u.Id, info.Id)
	assert.Equal(t, u.Email, info.Email)
	assert.Equal(t, u.DisplayName, info.Name)
	assert.Equal(t, u.ImageUrl, info.Image)
	assert.Same(t, &lastSeen, info.LastSeenAt)
}
