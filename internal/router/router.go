// Package router wires the REST surface (§6) onto a Hertz server: route
// groups, JWT middleware on every authenticated group, and the /ws upgrade
// route, mirroring the teacher's internal/router/router.go shape.
package router

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/pulsechat/pulse/internal/config"
	"github.com/pulsechat/pulse/internal/gateway"
	"github.com/pulsechat/pulse/internal/handler"
	"github.com/pulsechat/pulse/internal/middleware"
)

// Handlers bundles every REST handler SetupRouter mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	Conversation *handler.ConversationHandler
	Message      *handler.MessageHandler
	Media        *handler.MediaHandler
}

// SetupRouter mounts every route in §6's REST surface plus the /ws upgrade.
func SetupRouter(h *server.Hertz, cfg *config.Config, handlers *Handlers, authMw app.HandlerFunc, wsServer *gateway.WsServer) {
	h.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	h.GET("/health", func(ctx context.Context, c *app.RequestContext) {
		c.JSON(consts.StatusOK, map[string]string{"status": "ok"})
	})

	authGroup := h.Group("/auth")
	{
		authGroup.POST("/sync", handlers.Auth.Sync)
		authGroup.GET("/me", authMw, handlers.Auth.Me)
	}

	convGroup := h.Group("/conversations", authMw)
	{
		convGroup.POST("", handlers.Conversation.Create)
		convGroup.GET("", handlers.Conversation.List)
		convGroup.GET("/:id", handlers.Conversation.Get)
	}

	msgGroup := h.Group("/messages", authMw)
	{
		msgGroup.POST("", handlers.Message.Send)
		msgGroup.GET("/single/:messageId", handlers.Message.GetSingle)
		msgGroup.GET("/:conversationId", handlers.Message.List)
	}

	mediaGroup := h.Group("/media", authMw)
	{
		mediaGroup.POST("/upload-url", handlers.Media.RequestUploadUrl)
		mediaGroup.GET("/url", handlers.Media.GetUrl)
	}

	h.GET("/ws", wsServer.HandleUpgrade)
}
