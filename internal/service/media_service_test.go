package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pulsechat/pulse/internal/entity"
	"github.com/pulsechat/pulse/pkg/errcode"
)

func TestClassifyMedia(t *testing.T) {
	cases := []struct {
		mime string
		want entity.MsgType
	}{
		{"image/jpeg", entity.MsgTypeImage},
		{"image/png", entity.MsgTypeImage},
		{"image/gif", entity.MsgTypeImage},
		{"image/webp", entity.MsgTypeImage},
		{"video/mp4", entity.MsgTypeVideo},
		{"video/quicktime", entity.MsgTypeVideo},
		{"video/webm", entity.MsgTypeVideo},
	}
	for _, c := range cases {
		got, err := classifyMedia(c.mime)
		assert.NoError(t, err)
		assert.Equal(t, c.want, got)
	}
}

func TestClassifyMediaRejectsUnknownMime(t *testing.T) {
	_, err := classifyMedia("application/pdf")
	assert.Equal(t, errcode.ErrUnsupportedMedia, err)
}

func TestCheckSizeLimitBoundaries(t *testing.T) {
	assert.NoError(t, checkSizeLimit(entity.MsgTypeImage, maxImageBytes))
	assert.Equal(t, errcode.ErrFileTooLarge, checkSizeLimit(entity.MsgTypeImage, maxImageBytes+1))

	assert.NoError(t, checkSizeLimit(entity.MsgTypeVideo, maxVideoBytes))
	assert.Equal(t, errcode.ErrFileTooLarge, checkSizeLimit(entity.MsgTypeVideo, maxVideoBytes+1))
}

func TestSanitizeFileNameStripsPathSeparators(t *testing.T) {
	assert.Equal(t, "....etcpasswd", sanitizeFileName("../../etc/passwd"))
}

func TestSanitizeFileNameReplacesUnsafeChars(t *testing.T) {
	assert.Equal(t, "my_photo_.png", sanitizeFileName("my photo!.png"))
}

func TestSanitizeFileNameLeavesSafeNamesUnchanged(t *testing.T) {
	assert.Equal(t, "photo-1_final.PNG", sanitizeFileName("photo-1_final.PNG"))
}

func TestBuildMediaPathShape(t *testing.T) {
	path := buildMediaPath("c1", "u1", 1700000000000, "my photo.png")
	assert.Equal(t, "conversations/c1/u1_1700000000000_my_photo.png", path)
}
