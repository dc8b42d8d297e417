// Package middleware provides the fiber middleware of the mock API server.
package middleware

import (
	"context"
	"log/slog"
	"time"

	"pingme/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// CorrelationHeader carries the client-generated correlation id.
const CorrelationHeader = "X-Correlation-ID"

// ContextMiddleware copies the request id, the correlation id, the trace id and
// the authenticated user id into the request context so the context-aware
// logger picks them up in the repository layer.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			ctx = context.WithValue(ctx, observability.RequestIDKey, rid)
		}
		if cid := c.Get(CorrelationHeader); cid != "" {
			ctx = observability.WithCorrelationID(ctx, cid)
			c.Set(CorrelationHeader, cid)
		}
		if tid, ok := c.Locals("traceID").(string); ok {
			ctx = context.WithValue(ctx, observability.TraceIDKey, tid)
		}
		if uid, ok := c.Locals("userID").(int64); ok {
			ctx = observability.WithUserID(ctx, uid)
		}

		c.SetUserContext(ctx)
		return c.Next()
	}
}

// StructuredLogger returns a Fiber middleware for logging requests using slog
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		fields := []any{
			slog.Int("status", status),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
			slog.Duration("latency", time.Since(start)),
		}

		if err != nil {
			fields = append(fields, slog.String("error", err.Error()))
			observability.Logger.ErrorContext(c.UserContext(), "request failed", fields...)
		} else {
			observability.Logger.InfoContext(c.UserContext(), "request processed", fields...)
		}

		return err
	}
}
