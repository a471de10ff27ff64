package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/showdesk/internal/core"
	"github.com/JonMunkholm/showdesk/internal/web/middleware"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx so service
// logs can name who triggered an import or mutation.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, middleware.ClientIP(r))
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}
