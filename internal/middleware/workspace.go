package middleware

import (
	"context"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// WorkspaceIDKey is the context key for the caller's workspace ID
	WorkspaceIDKey contextKey = "workspace_id"

	// WorkspaceHeader carries the workspace a request acts on
	WorkspaceHeader = "X-Workspace-ID"
)

// ParseWorkspaceID parses a positive workspace ID
func ParseWorkspaceID(raw string) (int32, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int32(id), true
}

// RequireWorkspace rejects requests without a valid X-Workspace-ID header
// and stores the parsed ID in the request context.
func RequireWorkspace() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(WorkspaceHeader)
			if raw == "" {
				return unauthorizedError(c, "missing X-Workspace-ID header")
			}

			workspaceID, ok := ParseWorkspaceID(raw)
			if !ok {
				log.Debug().Str("workspace_header", raw).Msg("Rejected malformed workspace header")
				return unauthorizedError(c, "X-Workspace-ID must be a positive integer")
			}

			ctx := context.WithValue(c.Request().Context(), WorkspaceIDKey, workspaceID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetWorkspaceID extracts the workspace ID from the context
func GetWorkspaceID(c echo.Context) int32 {
	if id, ok := c.Request().Context().Value(WorkspaceIDKey).(int32); ok {
		return id
	}
	return 0
}
