package application

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/example/booking-sessions/internal/logging"
)

func serviceLogger(ctx context.Context, base zerolog.Logger, operation, serviceID string) zerolog.Logger {
	logger := logging.Component(ctx, base, "session_generation", operation)
	if serviceID != "" {
		logger = logger.With().Str("service_id", serviceID).Logger()
	}
	return logger
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}

	var cErr *ConfigurationError
	if errors.As(err, &cErr) {
		return "configuration"
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
