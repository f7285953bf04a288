package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/pulsechat/pulse/internal/middleware"
	"github.com/pulsechat/pulse/internal/service"
	"github.com/pulsechat/pulse/pkg/errcode"
	"github.com/pulsechat/pulse/pkg/response"
)

type ConversationHandler struct {
	convService *service.ConversationService
}

func NewConversationHandler(convService *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{convService: convService}
}

type createConversationRequest struct {
	UserIds []string `json:"userIds"`
	IsGroup bool     `json:"isGroup"`
	Name    string   `json:"name"`
}

// Create implements POST /conversations.
func (h *ConversationHandler) Create(ctx context.Context, c *app.RequestContext) {
	subject := middleware.GetSubject(c)

	var req createConversationRequest
	if err := c.BindAndValidate(&req); err != nil || len(req.UserIds) == 0 {
		response.Error(ctx, c, errcode.ErrInvalidParam)
		return
	}

	conv, err := h.convService.Create(ctx, subject, service.CreateRequest{
		UserIds: req.UserIds,
		IsGroup: req.IsGroup,
		Name:    req.Name,
	})
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, conv)
}

// List implements GET /conversations.
func (h *ConversationHandler) List(ctx context.Context, c *app.RequestContext) {
	subject := middleware.GetSubject(c)

	convs, err := h.convService.ListForUser(ctx, subject)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, convs)
}

// Get implements GET /conversations/:id.
func (h *ConversationHandler) Get(ctx context.Context, c *app.RequestContext) {
	subject := middleware.GetSubject(c)
	id := c.Param("id")
	if id == "" {
		response.Error(ctx, c, errcode.ErrInvalidParam)
		return
	}

	conv, err := h.convService.Get(ctx, id, subject)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, conv)
}
