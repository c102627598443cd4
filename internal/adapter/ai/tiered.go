package ai

import (
	"log/slog"

	"github.com/Abiads/talentscout/internal/adapter/observability"
	"github.com/Abiads/talentscout/internal/domain"
)

// tieredClient composes a primary and a secondary client. Invocation failures
// on the primary are transparently retried against the secondary; the caller's
// contract never differs between tiers.
type tieredClient struct {
	primary   domain.AIClient
	secondary domain.AIClient
}

// WithFallback composes primary and secondary into one client. If either side
// is nil the other is returned unwrapped.
func WithFallback(primary, secondary domain.AIClient) domain.AIClient {
	if primary == nil {
		return secondary
	}
	if secondary == nil {
		return primary
	}
	return &tieredClient{primary: primary, secondary: secondary}
}

func (t *tieredClient) Invoke(ctx domain.Context, prompt string, history []domain.Message) (string, error) {
	out, err := t.primary.Invoke(ctx, prompt, history)
	if err == nil {
		return out, nil
	}
	slog.Warn("primary ai tier failed, retrying on secondary",
		slog.String("primary", t.primary.Backend()),
		slog.String("secondary", t.secondary.Backend()),
		slog.Any("error", err))
	observability.AIFallbacksTotal.WithLabelValues("secondary").Inc()
	return t.secondary.Invoke(ctx, prompt, history)
}

// Backend reports the primary tier; the composite is indistinguishable from it
// until an invocation fails.
func (t *tieredClient) Backend() string { return t.primary.Backend() }
