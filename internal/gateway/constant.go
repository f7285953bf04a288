package gateway

import (
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
)

// Query parameter keys for the /ws upgrade route.
const (
	QueryToken = "token"
)

func roomName(conversationId string) string {
	return "conversation:" + conversationId
}

// checkOrigin validates the Origin header against the configured allow-list,
// grounded on the teacher's router.checkOrigin, moved here so the upgrader
// can be built alongside the rest of the gateway instead of in a separate
// router package.
func checkOrigin(c *app.RequestContext, allowedOrigins []string) bool {
	return originAllowed(string(c.Request.Header.Peek("Origin")), allowedOrigins)
}

// originAllowed is checkOrigin's transport-free core, split out so it can be
// unit tested without constructing a *app.RequestContext.
func originAllowed(origin string, allowedOrigins []string) bool {
	if origin == "" {
		return true
	}
	if len(allowedOrigins) == 0 {
		return false
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" || strings.EqualFold(origin, allowed) {
			return true
		}
	}
	return false
}
