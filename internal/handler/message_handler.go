package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/pulsechat/pulse/internal/entity"
	"github.com/pulsechat/pulse/internal/middleware"
	"github.com/pulsechat/pulse/internal/service"
	"github.com/pulsechat/pulse/pkg/errcode"
	"github.com/pulsechat/pulse/pkg/response"
)

type MessageHandler struct {
	msgService *service.MessageService
}

func NewMessageHandler(msgService *service.MessageService) *MessageHandler {
	return &MessageHandler{msgService: msgService}
}

type sendMessageRequest struct {
	ConversationId string  `json:"conversationId"`
	Type           string  `json:"type"`
	Content        *string `json:"content,omitempty"`
	MediaUrl       *string `json:"mediaUrl,omitempty"`
	MediaMeta      *string `json:"mediaMeta,omitempty"`
}

// Send implements POST /messages (the REST fallback for send_message).
func (h *MessageHandler) Send(ctx context.Context, c *app.RequestContext) {
	subject := middleware.GetSubject(c)

	var req sendMessageRequest
	if err := c.BindAndValidate(&req); err != nil || req.ConversationId == "" {
		response.Error(ctx, c, errcode.ErrInvalidParam)
		return
	}

	msg, err := h.msgService.Send(ctx, subject, service.SendRequest{
		ConversationId: req.ConversationId,
		Type:           entity.MsgType(req.Type),
		Content:        req.Content,
		MediaPath:      req.MediaUrl,
		MediaMeta:      req.MediaMeta,
	})
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, msg)
}

// List implements GET /messages/:conversationId?cursor=<iso8601>&limit=<1..100>.
func (h *MessageHandler) List(ctx context.Context, c *app.RequestContext) {
	subject := middleware.GetSubject(c)
	conversationId := c.Param("conversationId")
	if conversationId == "" {
		response.Error(ctx, c, errcode.ErrInvalidParam)
		return
	}

	var cursor *int64
	if cursorStr := string(c.Query("cursor")); cursorStr != "" {
		millis, err := entity.ParseCursorTime(cursorStr)
		if err != nil {
			response.Error(ctx, c, errcode.ErrInvalidCursor)
			return
		}
		cursor = &millis
	}

	limit := 20
	if limitStr := string(c.Query("limit")); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			response.Error(ctx, c, errcode.ErrInvalidParam)
			return
		}
		limit = parsed
	}

	page, err := h.msgService.ListForConversation(ctx, subject, conversationId, cursor, limit)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	resp := map[string]interface{}{
		"messages": page.Messages,
		"hasMore":  page.HasMore,
	}
	if page.NextCursor != nil {
		resp["nextCursor"] = entity.FormatCursorTime(*page.NextCursor)
	}
	response.Success(ctx, c, resp)
}

// GetSingle implements GET /messages/single/:messageId.
func (h *MessageHandler) GetSingle(ctx context.Context, c *app.RequestContext) {
	subject := middleware.GetSubject(c)
	messageId := c.Param("messageId")
	if messageId == "" {
		response.Error(ctx, c, errcode.ErrInvalidParam)
		return
	}

	msg, err := h.msgService.GetSingle(ctx, subject, messageId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, msg)
}
