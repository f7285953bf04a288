package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/pulsechat/pulse/internal/config"
	"github.com/pulsechat/pulse/internal/entity"
	"github.com/pulsechat/pulse/pkg/blobstore"
	"github.com/pulsechat/pulse/pkg/errcode"

	"github.com/pulsechat/pulse/common"
)

const (
	maxImageBytes = 5 * 1024 * 1024
	maxVideoBytes = 20 * 1024 * 1024
)

var (
	imageMimes  = map[string]bool{"image/jpeg": true, "image/png": true, "image/gif": true, "image/webp": true}
	videoMimes  = map[string]bool{"video/mp4": true, "video/quicktime": true, "video/webm": true}
	pathSepChar = regexp.MustCompile(`[/\\]`)
	unsafeChar  = regexp.MustCompile(`[^A-Za-z0-9._-]`)
)

// classifyMedia maps a mime type to {image,video} or bad-request (§4.5 step 2).
func classifyMedia(mimeType string) (entity.MsgType, error) {
	switch {
	case imageMimes[mimeType]:
		return entity.MsgTypeImage, nil
	case videoMimes[mimeType]:
		return entity.MsgTypeVideo, nil
	default:
		return "", errcode.ErrUnsupportedMedia
	}
}

// checkSizeLimit enforces §4.5 step 3: image <= 5 MiB, video <= 20 MiB.
func checkSizeLimit(mediaType entity.MsgType, fileSize int64) error {
	limit := int64(maxImageBytes)
	if mediaType == entity.MsgTypeVideo {
		limit = maxVideoBytes
	}
	if fileSize > limit {
		return errcode.ErrFileTooLarge
	}
	return nil
}

// sanitizeFileName strips any path separator and replaces every remaining
// character outside [A-Za-z0-9._-] with "_" (§4.5 step 4).
func sanitizeFileName(name string) string {
	stripped := pathSepChar.ReplaceAllString(name, "")
	return unsafeChar.ReplaceAllString(stripped, "_")
}

// buildMediaPath builds the conversations/{conversationId}/{userId}_{epochMillis}_{sanitizedFileName} path.
func buildMediaPath(conversationId, userId string, epochMillis int64, fileName string) string {
	return fmt.Sprintf("conversations/%s/%s_%d_%s", conversationId, userId, epochMillis, sanitizeFileName(fileName))
}

// MediaService implements §4.5. It never touches bytes: it validates the
// request and delegates URL signing to the blob store.
type MediaService struct {
	convSvc *ConversationService
	blob    *blobstore.Client
	cfg     *config.MediaConfig
	secret  string
}

func NewMediaService(convSvc *ConversationService, blob *blobstore.Client, cfg *config.MediaConfig, authSecret string) *MediaService {
	return &MediaService{convSvc: convSvc, blob: blob, cfg: cfg, secret: authSecret}
}

// UploadUrlResponse mirrors POST /media/upload-url's response shape.
type UploadUrlResponse struct {
	UploadUrl string `json:"uploadUrl"`
	FilePath  string `json:"filePath"`
	Token     string `json:"token"`
	MediaType string `json:"mediaType"`
	ExpiresIn int    `json:"expiresIn"`
}

// RequestUploadUrl implements the five steps of §4.5.
func (s *MediaService) RequestUploadUrl(ctx context.Context, actor, conversationId, fileName, mimeType string, fileSize int64) (*UploadUrlResponse, error) {
	isMember, err := s.convSvc.IsMember(ctx, conversationId, actor)
	if err != nil {
		return nil, errcode.ErrInternal.Wrap(err)
	}
	if !isMember {
		return nil, errcode.ErrNotMember
	}

	mediaType, err := classifyMedia(mimeType)
	if err != nil {
		return nil, err
	}
	if err := checkSizeLimit(mediaType, fileSize); err != nil {
		return nil, err
	}

	filePath := buildMediaPath(conversationId, actor, time.Now().UnixMilli(), fileName)

	ttl := time.Duration(s.cfg.UploadTTL) * time.Second
	uploadUrl, err := s.blob.CreateSignedUploadUrl(ctx, filePath, ttl)
	if err != nil {
		return nil, errcode.ErrBlobStoreFail.Wrap(err)
	}

	expiresAt := time.Now().Add(ttl).Unix()
	token := common.SignUploadToken(filePath, expiresAt, s.secret, 16)

	return &UploadUrlResponse{
		UploadUrl: uploadUrl,
		FilePath:  filePath,
		Token:     token,
		MediaType: string(mediaType),
		ExpiresIn: s.cfg.UploadTTL,
	}, nil
}

// GetMediaUrl returns a signed download URL; no membership re-check at read
// time (§4.5: possession of a filePath recovered from a visible message is
// sufficient).
func (s *MediaService) GetMediaUrl(ctx context.Context, filePath string) (string, error) {
	ttl := time.Duration(s.cfg.DownloadTTL) * time.Second
	url, err := s.blob.CreateSignedDownloadUrl(ctx, filePath, ttl)
	if err != nil {
		return "", errcode.ErrBlobStoreFail.Wrap(err)
	}
	return url, nil
}
