package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/pulsechat/pulse/internal/middleware"
	"github.com/pulsechat/pulse/internal/service"
	"github.com/pulsechat/pulse/pkg/errcode"
	"github.com/pulsechat/pulse/pkg/response"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type syncRequest struct {
	Id    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Sync implements POST /auth/sync.
func (h *AuthHandler) Sync(ctx context.Context, c *app.RequestContext) {
	var req syncRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.Error(ctx, c, errcode.ErrInvalidParam)
		return
	}
	if req.Id == "" || req.Email == "" || req.Name == "" {
		response.Error(ctx, c, errcode.ErrInvalidParam)
		return
	}

	user, err := h.authService.Sync(ctx, req.Id, req.Email, req.Name, req.Image)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, user)
}

// Me implements GET /auth/me.
func (h *AuthHandler) Me(ctx context.Context, c *app.RequestContext) {
	subject := middleware.GetSubject(c)
	user, err := h.authService.Me(ctx, subject)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, user)
}
