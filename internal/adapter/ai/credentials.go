package ai

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Abiads/talentscout/internal/adapter/ai/groq"
	"github.com/Abiads/talentscout/internal/config"
	"github.com/Abiads/talentscout/internal/domain"
)

var keyPattern = regexp.MustCompile(`^gsk_[A-Za-z0-9_-]{16,128}$`)
var keyScanPattern = regexp.MustCompile(`gsk_[A-Za-z0-9_-]{16,128}`)

// ValidateKey checks a credential against the expected prefix/charset/length
// pattern. The check is advisory: a malformed-looking key is still attempted.
func ValidateKey(key string) bool {
	return keyPattern.MatchString(strings.TrimSpace(key))
}

// SanitizeKey extracts the first credential-shaped substring from pasted input.
// It returns the key (or "") and warnings, e.g. when several candidates exist.
func SanitizeKey(input string) (string, []string) {
	if strings.TrimSpace(input) == "" {
		return "", []string{"no key provided"}
	}
	matches := keyScanPattern.FindAllString(input, -1)
	if len(matches) == 0 {
		candidate := strings.TrimSpace(input)
		if ValidateKey(candidate) {
			return candidate, nil
		}
		return "", []string{"no credential-shaped key found in input"}
	}
	var warnings []string
	if len(matches) > 1 {
		warnings = append(warnings, fmt.Sprintf("found %d keys; using the first one", len(matches)))
	}
	return matches[0], warnings
}

// VerifyCredential performs one lightweight round-trip against the mini model
// to check whether a key is usable. It classifies failures by well-known error
// substrings and never returns an error itself.
func VerifyCredential(ctx domain.Context, cfg config.Config, key string) (bool, string) {
	key, warnings := SanitizeKey(key)
	if key == "" {
		return false, strings.Join(warnings, "; ")
	}
	client, err := groq.New(cfg, cfg.GroqBaseURL, key, cfg.GroqMiniModel, groq.Params{Temperature: 0, MaxTokens: 8, TopP: 1})
	if err != nil {
		return false, fmt.Sprintf("unable to create client for verification: %v", err)
	}
	resp, err := client.Invoke(ctx, "Ping", nil)
	if err != nil {
		msg := strings.ToLower(err.Error())
		switch {
		case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit"):
			return false, "rate limit or quota exceeded for this key"
		case strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "invalid"):
			return false, "authentication failed: invalid API key"
		default:
			return false, fmt.Sprintf("verification failed: %v", err)
		}
	}
	if resp == "" {
		return true, "key appears valid (no content returned but no error)"
	}
	slog.Debug("credential verified", slog.Int("response_len", len(resp)))
	return true, "key validated: model responded"
}
