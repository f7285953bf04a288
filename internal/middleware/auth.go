package middleware

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/pulsechat/pulse/internal/service"
	"github.com/pulsechat/pulse/pkg/errcode"
	"github.com/pulsechat/pulse/pkg/response"
)

const (
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
	SubjectKey          = "subject"
	PrincipalKey        = "principal"
)

// JWTAuth runs the Auth Verifier against the bearer credential and stashes
// the resolved Principal in the request context for downstream handlers.
func JWTAuth(auth *service.AuthService) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		authHeader := string(c.GetHeader(AuthorizationHeader))
		if authHeader == "" {
			response.Error(ctx, c, errcode.ErrTokenMissing)
			c.Abort()
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			response.Error(ctx, c, errcode.ErrTokenInvalid)
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		principal, err := auth.Verify(ctx, tokenString)
		if err != nil {
			response.Error(ctx, c, err)
			c.Abort()
			return
		}

		c.Set(SubjectKey, principal.Subject)
		c.Set(PrincipalKey, principal)
		c.Next(ctx)
	}
}

// GetSubject reads the authenticated subject set by JWTAuth.
func GetSubject(c *app.RequestContext) string {
	if v, ok := c.Get(SubjectKey); ok {
		return v.(string)
	}
	return ""
}

// GetPrincipal reads the authenticated principal set by JWTAuth.
func GetPrincipal(c *app.RequestContext) *service.Principal {
	if v, ok := c.Get(PrincipalKey); ok {
		return v.(*service.Principal)
	}
	return nil
}
