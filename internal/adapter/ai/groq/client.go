// Package groq implements a real AI client backed by a Groq-compatible
// chat-completions API.
package groq

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/Abiads/talentscout/internal/adapter/observability"
	"github.com/Abiads/talentscout/internal/config"
	"github.com/Abiads/talentscout/internal/domain"
)

// Params are the sampling parameters sent with every completion request.
type Params struct {
	Temperature      float64
	MaxTokens        int
	TopP             float64
	PresencePenalty  float64
	FrequencyPenalty float64
}

// Client implements domain.AIClient against one model on one endpoint.
type Client struct {
	cfg     config.Config
	baseURL string
	apiKey  string
	model   string
	params  Params
	hc      *http.Client
}

// New constructs a client. It fails when the base URL or model is unusable so
// the registry can fall through to the next tier.
func New(cfg config.Config, baseURL, apiKey, model string, p Params) (*Client, error) {
	if model == "" {
		return nil, fmt.Errorf("%w: model required", domain.ErrInvalidArgument)
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid base url %q", domain.ErrInvalidArgument, baseURL)
	}
	return &Client{
		cfg:     cfg,
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		params:  p,
		hc:      &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Backend reports the endpoint and model serving this client.
func (c *Client) Backend() string { return "groq (" + c.model + ")" }

func (c *Client) getBackoffConfig() *backoff.ExponentialBackOff {
	expo := backoff.NewExponentialBackOff()
	maxElapsedTime, initialInterval, maxInterval, multiplier := c.cfg.GetAIBackoffConfig()
	expo.MaxElapsedTime = maxElapsedTime
	expo.InitialInterval = initialInterval
	expo.MaxInterval = maxInterval
	expo.Multiplier = multiplier
	return expo
}

// Invoke calls the chat completions endpoint and returns the message content.
// 429 and 5xx responses are retried with exponential backoff; other 4xx are
// permanent failures.
func (c *Client) Invoke(ctx domain.Context, prompt string, history []domain.Message) (string, error) {
	msgs := make([]map[string]string, 0, len(history)+1)
	for _, m := range history {
		msgs = append(msgs, map[string]string{"role": m.Role, "content": m.Content})
	}
	msgs = append(msgs, map[string]string{"role": "user", "content": prompt})

	body := map[string]any{
		"model":             c.model,
		"temperature":       c.params.Temperature,
		"max_tokens":        c.params.MaxTokens,
		"top_p":             c.params.TopP,
		"presence_penalty":  c.params.PresencePenalty,
		"frequency_penalty": c.params.FrequencyPenalty,
		"messages":          msgs,
	}
	b, _ := json.Marshal(body)

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	op := func() error {
		start := time.Now()
		// Recreate request each attempt to avoid reusing consumed bodies
		r, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(b))
		if c.apiKey != "" {
			r.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		r.Header.Set("Content-Type", "application/json")
		resp, err := c.hc.Do(r)
		observability.AIRequestsTotal.WithLabelValues("groq", "chat").Inc()
		observability.AIRequestDuration.WithLabelValues("groq", "chat").Observe(time.Since(start).Seconds())
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			slog.Error("failed to read response body", slog.String("backend", "groq"), slog.Any("error", err))
			return err
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			// Retryable: let backoff handle retries
			slog.Warn("ai provider rate limited", slog.String("backend", "groq"), slog.String("model", c.model), slog.Int("status", resp.StatusCode))
			return fmt.Errorf("%w: 429", domain.ErrRateLimited)
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			// Client error: non-retryable
			snippet := string(bodyBytes)
			if len(snippet) > 512 {
				snippet = snippet[:512]
			}
			slog.Warn("ai provider 4xx", slog.String("backend", "groq"), slog.String("model", c.model), slog.Int("status", resp.StatusCode), slog.String("body", snippet))
			if resp.StatusCode == http.StatusUnauthorized {
				return backoff.Permanent(fmt.Errorf("%w: 401 unauthorized", domain.ErrUnauthorized))
			}
			return backoff.Permanent(fmt.Errorf("chat status %d", resp.StatusCode))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			// 5xx and others: retryable
			slog.Error("ai provider non-2xx", slog.String("backend", "groq"), slog.String("model", c.model), slog.Int("status", resp.StatusCode))
			return fmt.Errorf("chat status %d", resp.StatusCode)
		}
		if err := json.Unmarshal(bodyBytes, &out); err != nil {
			slog.Error("ai provider decode error", slog.String("backend", "groq"), slog.String("model", c.model), slog.Any("error", err))
			return err
		}
		return nil
	}

	expo := c.getBackoffConfig()
	bo := backoff.WithContext(expo, ctx)
	if err := backoff.Retry(op, bo); err != nil {
		slog.Error("groq api failed after retries", slog.String("model", c.model), slog.Any("error", err))
		return "", fmt.Errorf("groq api failed: %w", err)
	}
	if len(out.Choices) == 0 {
		slog.Error("groq api returned empty choices", slog.String("model", c.model))
		return "", errors.New("empty choices from groq api")
	}
	return out.Choices[0].Message.Content, nil
}
