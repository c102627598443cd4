// Package ai provides the model access layer: a registry of chat clients keyed
// by configuration profile, with tiered fallback and a no-credential stub.
package ai

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Profile selects a base sampling configuration for a client.
type Profile string

const (
	ProfileEvaluation     Profile = "evaluation"
	ProfileConversation   Profile = "conversation"
	ProfileRecommendation Profile = "recommendation"
	ProfileReport         Profile = "report"
)

// Params are the effective sampling parameters for one client instance.
type Params struct {
	Temperature      float64
	MaxTokens        int
	TopP             float64
	PresencePenalty  float64
	FrequencyPenalty float64
}

// baseParams returns the fixed defaults per profile. Unknown profiles get the
// conversation defaults.
func baseParams(p Profile) Params {
	switch p {
	case ProfileEvaluation:
		return Params{Temperature: 0.4, MaxTokens: 4028, TopP: 0.95, PresencePenalty: 0.6, FrequencyPenalty: 0.3}
	case ProfileRecommendation:
		return Params{Temperature: 0.5, MaxTokens: 4028, TopP: 0.9, PresencePenalty: 0.4, FrequencyPenalty: 0.4}
	case ProfileReport:
		return Params{Temperature: 0.3, MaxTokens: 4028, TopP: 0.8, PresencePenalty: 0.2, FrequencyPenalty: 0.2}
	default:
		return Params{Temperature: 0.7, MaxTokens: 2000, TopP: 1.0}
	}
}

// reduced lowers the sampling surface for the secondary tier.
func (p Params) reduced() Params {
	p.MaxTokens = p.MaxTokens / 2
	if p.MaxTokens < 256 {
		p.MaxTokens = 256
	}
	p.PresencePenalty = 0
	p.FrequencyPenalty = 0
	return p
}

// fingerprint derives the cache key for one effective configuration. The key
// itself never enters the fingerprint; only its presence does.
func fingerprint(profile Profile, p Params, hasKey, allowLocal bool) string {
	s := fmt.Sprintf("%s|%.3f|%d|%.3f|%.3f|%.3f|%t|%t",
		profile, p.Temperature, p.MaxTokens, p.TopP, p.PresencePenalty, p.FrequencyPenalty, hasKey, allowLocal)
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}
