package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignUploadTokenIsDeterministic(t *testing.T) {
	a := SignUploadToken("conversations/1/u1_123_photo.png", 1700000000, "secret", 16)
	b := SignUploadToken("conversations/1/u1_123_photo.png", 1700000000, "secret", 16)
	assert.Equal(t, a, b)
}

func TestSignUploadTokenVariesWithInput(t *testing.T) {
	base := SignUploadToken("path/a", 1700000000, "secret", 16)

	assert.NotEqual(t, base, SignUploadToken("path/b", 1700000000, "secret", 16))
	assert.NotEqual(t, base, SignUploadToken("path/a", 1700000001, "secret", 16))
	assert.NotEqual(t, base, SignUploadToken("path/a", 1700000000, "other-secret", 16))
}

func TestSignUploadTokenClampsByteCount(t *testing.T) {
	tooMany := SignUploadToken("path/a", 1, "secret", 1000)
	zero := SignUploadToken("path/a", 1, "secret", 0)
	negative := SignUploadToken("path/a", 1, "secret", -5)

	assert.Equal(t, zero, tooMany)
	assert.Equal(t, zero, negative)
}
