package ai

import (
	"log/slog"
	"sync"

	"github.com/Abiads/talentscout/internal/adapter/ai/groq"
	"github.com/Abiads/talentscout/internal/adapter/ai/stub"
	"github.com/Abiads/talentscout/internal/config"
	"github.com/Abiads/talentscout/internal/domain"
)

// Options carry per-call overrides for Registry.Get.
type Options struct {
	// APIKey overrides the configured credential. Empty means "use config".
	APIKey string
	// AllowLocalFallback permits routing the primary tier to a local
	// OpenAI-compatible endpoint. Failures there degrade to the remote tier.
	AllowLocalFallback bool
}

// Registry builds and caches one client per (profile, effective configuration)
// fingerprint. It is the only cross-request shared mutable resource: writes are
// check-then-insert under a mutex, and a duplicate construction racing past the
// check is tolerated (last write wins, both clients are equivalent).
type Registry struct {
	cfg config.Config

	mu      sync.Mutex
	clients map[string]domain.AIClient
}

// NewRegistry constructs an empty registry for the given configuration.
func NewRegistry(cfg config.Config) *Registry {
	return &Registry{cfg: cfg, clients: make(map[string]domain.AIClient)}
}

// Get returns the client for profile, creating it on first use. It never fails:
// construction errors fall through primary → secondary → stub silently.
func (r *Registry) Get(profile Profile, opts Options) domain.AIClient {
	params := baseParams(profile)
	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = r.cfg.GroqAPIKey
	}
	allowLocal := opts.AllowLocalFallback || r.cfg.AllowLocalModels

	key := fingerprint(profile, params, apiKey != "", allowLocal)
	r.mu.Lock()
	if c, ok := r.clients[key]; ok {
		r.mu.Unlock()
		return c
	}
	r.mu.Unlock()

	c := r.build(profile, params, apiKey, allowLocal)

	r.mu.Lock()
	r.clients[key] = c
	r.mu.Unlock()
	return c
}

// build assembles the tier chain for one configuration.
func (r *Registry) build(profile Profile, params Params, apiKey string, allowLocal bool) domain.AIClient {
	if apiKey == "" && !allowLocal {
		slog.Info("no api key and local models not allowed; using stub client",
			slog.String("profile", string(profile)))
		return stub.New()
	}

	gp := groq.Params{
		Temperature:      params.Temperature,
		MaxTokens:        params.MaxTokens,
		TopP:             params.TopP,
		PresencePenalty:  params.PresencePenalty,
		FrequencyPenalty: params.FrequencyPenalty,
	}

	var primary domain.AIClient
	if allowLocal {
		// Local tier first; any failure here degrades to the remote tier.
		if lc, err := groq.New(r.cfg, r.cfg.LocalModelURL, "", r.cfg.GroqModel, gp); err == nil {
			primary = lc
		} else {
			slog.Warn("local model client unavailable, falling back to remote",
				slog.String("profile", string(profile)), slog.Any("error", err))
		}
	}
	if primary == nil && apiKey != "" {
		if pc, err := groq.New(r.cfg, r.cfg.GroqBaseURL, apiKey, r.cfg.GroqModel, gp); err == nil {
			primary = pc
		} else {
			slog.Error("primary groq client creation failed",
				slog.String("profile", string(profile)), slog.Any("error", err))
		}
	}

	var secondary domain.AIClient
	if apiKey != "" {
		rp := groq.Params{
			Temperature: params.Temperature,
			MaxTokens:   params.reduced().MaxTokens,
			TopP:        params.TopP,
		}
		if sc, err := groq.New(r.cfg, r.cfg.GroqBaseURL, apiKey, r.cfg.GroqMiniModel, rp); err == nil {
			secondary = sc
		} else {
			slog.Error("secondary groq client creation failed",
				slog.String("profile", string(profile)), slog.Any("error", err))
		}
	}
	if secondary == nil {
		secondary = stub.New()
	}
	if primary == nil {
		return secondary
	}
	return WithFallback(primary, secondary)
}

// Clear drops all cached clients. Used by tests and credential rotation.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.clients = make(map[string]domain.AIClient)
	r.mu.Unlock()
}

// Size reports the number of cached clients.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}
