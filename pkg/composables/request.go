package composables

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/musterhq/muster/pkg/constants"
)

// WithLogger returns a new context carrying the request-scoped logger.
func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, constants.LoggerKey, logger)
}

// UseLogger returns the logger from the context. Outside of a request
// (tests, CLI) it falls back to the process-wide standard logger.
func UseLogger(ctx context.Context) *logrus.Entry {
	logger := ctx.Value(constants.LoggerKey)
	if logger == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return logger.(*logrus.Entry)
}

// WithActorID records the acting person for the current request. Role
// and scope resolution key off this value.
func WithActorID(ctx context.Context, personID uuid.UUID) context.Context {
	return context.WithValue(ctx, constants.ActorKey, personID)
}

// UseActorID returns the acting person's id. The second return value is
// false for unauthenticated callers.
func UseActorID(ctx context.Context) (uuid.UUID, bool) {
	v := ctx.Value(constants.ActorKey)
	if v == nil {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// WithRequestID attaches the inbound request id for log correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, constants.RequestIDKey, requestID)
}

func UseRequestID(ctx context.Context) string {
	v := ctx.Value(constants.RequestIDKey)
	if v == nil {
		return ""
	}
	return v.(string)
}
