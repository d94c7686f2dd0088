package requestcontext

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type clientIPKey struct{}

type WithClientIPConfig struct {
	// TrustedHeader is the header carrying the real client ip when the
	// service runs behind a proxy, e.g. "X-Real-Ip" or "CF-Connecting-IP".
	// When empty, the connection remote ip is used.
	TrustedHeader string `mapstructure:"trusted_header"`
}

// GetClientIP returns the client ip from the context, or an empty string if
// the request context middleware did not run.
func GetClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// WithClientIP resolves the client ip and stores it in the request context.
func WithClientIP(config WithClientIPConfig) Option {
	return func(ctx context.Context, c *fiber.Ctx) (context.Context, error) {
		ip := c.IP()
		if config.TrustedHeader != "" {
			if v := strings.TrimSpace(c.Get(config.TrustedHeader)); v != "" {
				ip = v
			}
		}
		return context.WithValue(ctx, clientIPKey{}, ip), nil
	}
}
