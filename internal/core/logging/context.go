package logging

import (
	"context"

	"github.com/colonyops/shoplist/internal/core/event"
)

type contextKey string

const (
	eventKindKey contextKey = "event_kind"
	accountKey   contextKey = "account"
)

// WithEventKind adds the kind of the event being handled to the context.
func WithEventKind(ctx context.Context, kind event.Kind) context.Context {
	return context.WithValue(ctx, eventKindKey, kind)
}

// WithAccount adds the signed-in account email to the context.
func WithAccount(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, accountKey, email)
}

// GetEventKind retrieves the event kind from the context.
// Returns empty string if not present.
func GetEventKind(ctx context.Context) event.Kind {
	if kind, ok := ctx.Value(eventKindKey).(event.Kind); ok {
		return kind
	}
	return ""
}

// GetAccount retrieves the account email from the context.
// Returns empty string if not present.
func GetAccount(ctx context.Context) string {
	if email, ok := ctx.Value(accountKey).(string); ok {
		return email
	}
	return ""
}
