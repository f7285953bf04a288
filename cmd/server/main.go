package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/mbeoliero/kit/log"

	"github.com/pulsechat/pulse/internal/bus"
	"github.com/pulsechat/pulse/internal/config"
	"github.com/pulsechat/pulse/internal/gateway"
	"github.com/pulsechat/pulse/internal/handler"
	"github.com/pulsechat/pulse/internal/middleware"
	"github.com/pulsechat/pulse/internal/presence"
	"github.com/pulsechat/pulse/internal/repository"
	"github.com/pulsechat/pulse/internal/router"
	"github.com/pulsechat/pulse/internal/service"
	"github.com/pulsechat/pulse/pkg/blobstore"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		log.CtxError(ctx, "failed to load config: %v", err)
		panic(err)
	}
	log.CtxInfo(ctx, "config loaded: mode=%s", cfg.Server.Mode)

	repos, err := repository.NewRepositories(cfg)
	if err != nil {
		log.CtxError(ctx, "failed to initialize repositories: %v", err)
		panic(err)
	}
	defer repos.Close()

	if err := repos.CheckConnection(ctx); err != nil {
		log.CtxError(ctx, "store connection check failed: %v", err)
		panic(err)
	}
	log.CtxInfo(ctx, "mysql and redis connections established")

	blobClient, err := blobstore.New(ctx, &cfg.Media)
	if err != nil {
		log.CtxError(ctx, "failed to initialize blob store client: %v", err)
		panic(err)
	}

	presenceStore := presence.New(repos.Redis, cfg.Redis.KeyPrefix)
	msgBus := bus.New(repos.Redis, cfg.Bus.Channel)

	authService := service.NewAuthService(repos.User, cfg)
	convService := service.NewConversationService(repos)
	msgService := service.NewMessageService(repos)
	mediaService := service.NewMediaService(convService, blobClient, &cfg.Media, cfg.Auth.Secret)

	wsServer := gateway.NewWsServer(cfg, presenceStore, msgBus, authService, convService, msgService)
	msgService.SetPublisher(wsServer)

	wsServer.Run(ctx)
	log.CtxInfo(ctx, "gateway started")

	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Conversation: handler.NewConversationHandler(convService),
		Message:      handler.NewMessageHandler(msgService),
		Media:        handler.NewMediaHandler(mediaService),
	}

	h := server.Default(
		server.WithHostPorts(fmt.Sprintf(":%d", cfg.Server.HTTPPort)),
	)
	router.SetupRouter(h, cfg, handlers, middleware.JWTAuth(authService), wsServer)

	log.CtxInfo(ctx, "server starting on port %d", cfg.Server.HTTPPort)
	go func() {
		h.Spin()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.CtxInfo(ctx, "shutting down server...")
	if err := h.Shutdown(ctx); err != nil {
		log.CtxError(ctx, "server shutdown error: %v", err)
	}
	log.CtxInfo(ctx, "server stopped")
}
