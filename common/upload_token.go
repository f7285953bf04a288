package common

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// SignUploadToken derives a deterministic opaque token binding a blob path
// to its upload expiry, using HMAC-SHA256 truncated to nBytes. The media
// authorization response returns this token alongside the signed upload URL
// so a downstream blob-store proxy can verify the path/expiry pair without
// a second round trip to the conversation/media services.
//
//	token := SignUploadToken("conversations/42/u1_169..._photo.png", 1700000300, secret, 16)
func SignUploadToken(filePath string, expiresAtUnix int64, secret string, nBytes int) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = fmt.Fprintf(mac, "%s:%d", filePath, expiresAtUnix)
	sum := mac.Sum(nil)
	if nBytes <= 0 || nBytes > len(sum) {
		nBytes = 16
	}
	return base64.RawURLEncoding.EncodeToString(sum[:nBytes])
}
