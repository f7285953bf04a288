package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pulsechat/pulse/internal/entity"
	"github.com/pulsechat/pulse/pkg/errcode"
)

func strPtr(s string) *string { return &s }

func TestValidatePayloadTextRequiresContent(t *testing.T) {
	err := validatePayload(SendRequest{Type: entity.MsgTypeText, Content: strPtr("hello")})
	assert.NoError(t, err)
}

func TestValidatePayloadTextRejectsEmptyContent(t *testing.T) {
	err := validatePayload(SendRequest{Type: entity.MsgTypeText, Content: strPtr("   ")})
	assert.Equal(t, errcode.ErrInvalidParam, err)
}

func TestValidatePayloadTextRejectsNilContent(t *testing.T) {
	err := validatePayload(SendRequest{Type: entity.MsgTypeText})
	assert.Equal(t, errcode.ErrInvalidParam, err)
}

func TestValidatePayloadTextRejectsMediaPath(t *testing.T) {
	err := validatePayload(SendRequest{Type: entity.MsgTypeText, Content: strPtr("hi"), MediaPath: strPtr("conversations/c1/f.png")})
	assert.Equal(t, errcode.ErrInvalidParam, err)
}

func TestValidatePayloadImageRequiresMediaPath(t *testing.T) {
	err := validatePayload(SendRequest{Type: entity.MsgTypeImage, MediaPath: strPtr("conversations/c1/f.png")})
	assert.NoError(t, err)
}

func TestValidatePayloadImageRejectsEmptyMediaPath(t *testing.T) {
	err := validatePayload(SendRequest{Type: entity.MsgTypeImage, MediaPath: strPtr("")})
	assert.Equal(t, errcode.ErrInvalidParam, err)
}

func TestValidatePayloadImageRejectsNilMediaPath(t *testing.T) {
	err := validatePayload(SendRequest{Type: entity.MsgTypeImage})
	assert.Equal(t, errcode.ErrInvalidParam, err)
}

func TestValidatePayloadVideoRequiresMediaPath(t *testing.T) {
	err := validatePayload(SendRequest{Type: entity.MsgTypeVideo, MediaPath: strPtr("conversations/c1/f.mp4")})
	assert.NoError(t, err)
}

func TestValidatePayloadRejectsUnknownType(t *testing.T) {
	err := validatePayload(SendRequest{Type: entity.MsgType("sticker")})
	assert.Equal(t, errcode.ErrInvalidParam, err)
}
