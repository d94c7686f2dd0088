// Package requestcontext propagates per-request values (request id, client
// ip) into the request's context.Context and context logger.
package requestcontext

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"

	"github.com/auditforge/paygate/pkg/logger"
	"github.com/auditforge/paygate/pkg/logger/slogx"
)

type Option func(ctx context.Context, c *fiber.Ctx) (context.Context, error)

func New(opts ...Option) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var err error
		ctx := c.UserContext()
		for i, opt := range opts {
			ctx, err = opt(ctx, c)
			if err != nil {
				logger.ErrorContext(ctx, "failed to extract request context",
					slogx.Error(err),
					slogx.Int("optionIndex", i),
				)
				return errors.WithStack(c.Status(http.StatusInternalServerError).JSON(map[string]any{
					"error": "internal server error",
				}))
			}
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}
