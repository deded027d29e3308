package http

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/example/booking-sessions/internal/logging"
)

func handlerLogger(ctx context.Context, fallback zerolog.Logger, handlerName, operation string) zerolog.Logger {
	logger := logging.Component(ctx, fallback, "http", operation)
	return logger.With().Str("handler", handlerName).Logger()
}
