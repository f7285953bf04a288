package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/pulsechat/pulse/internal/middleware"
	"github.com/pulsechat/pulse/internal/service"
	"github.com/pulsechat/pulse/pkg/errcode"
	"github.com/pulsechat/pulse/pkg/response"
)

type MediaHandler struct {
	mediaService *service.MediaService
}

func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

type uploadUrlRequest struct {
	ConversationId string `json:"conversationId"`
	FileName       string `json:"fileName"`
	MimeType       string `json:"mimeType"`
	FileSize       int64  `json:"fileSize"`
}

// RequestUploadUrl implements POST /media/upload-url.
func (h *MediaHandler) RequestUploadUrl(ctx context.Context, c *app.RequestContext) {
	subject := middleware.GetSubject(c)

	var req uploadUrlRequest
	if err := c.BindAndValidate(&req); err != nil || req.ConversationId == "" || req.FileName == "" || req.MimeType == "" {
		response.Error(ctx, c, errcode.ErrInvalidParam)
		return
	}

	resp, err := h.mediaService.RequestUploadUrl(ctx, subject, req.ConversationId, req.FileName, req.MimeType, req.FileSize)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, resp)
}

// GetUrl implements GET /media/url?path=<filePath>, exposing
// getMediaUrl as a REST route for clients that resolved a filePath off a
// message view.
func (h *MediaHandler) GetUrl(ctx context.Context, c *app.RequestContext) {
	path := string(c.Query("path"))
	if path == "" {
		response.Error(ctx, c, errcode.ErrInvalidParam)
		return
	}

	url, err := h.mediaService.GetMediaUrl(ctx, path)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, map[string]interface{}{"url": url})
}
