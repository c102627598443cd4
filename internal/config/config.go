// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`
	Port   int    `env:"PORT" envDefault:"8080"`

	// Groq-compatible chat completions endpoint. The API key is optional: the
	// access layer degrades to a deterministic stub when it is absent.
	GroqAPIKey    string `env:"GROQ_API_KEY"`
	GroqBaseURL   string `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	GroqModel     string `env:"GROQ_MODEL" envDefault:"groq/compound"`
	GroqMiniModel string `env:"GROQ_MINI_MODEL" envDefault:"groq/compound-mini"`
	// LocalModelURL points at an OpenAI-compatible local server (e.g. llama.cpp).
	// Only used when ALLOW_LOCAL_MODELS is set; failures degrade to the remote tier.
	LocalModelURL    string `env:"LOCAL_MODEL_URL" envDefault:"http://localhost:8081/v1"`
	AllowLocalModels bool   `env:"ALLOW_LOCAL_MODELS" envDefault:"false"`

	// TikaURL specifies the base URL for the Apache Tika server used for resume
	// text extraction.
	TikaURL string `env:"TIKA_URL" envDefault:"http://tika:9998"`

	// Assessment policy thresholds. Confidence at or above High ends the session
	// with a Strong decision; below Low it ends with No Hire; the band between
	// keeps the session open with Borderline.
	ConfidenceHigh float64 `env:"CONFIDENCE_HIGH" envDefault:"0.75"`
	ConfidenceLow  float64 `env:"CONFIDENCE_LOW" envDefault:"0.45"`
	SkipThreshold  int     `env:"SKIP_THRESHOLD" envDefault:"3"`

	// Phone validation accepts PHONE_MIN_DIGITS-15 digits; set it to 10 for the
	// stricter revision.
	PhoneMinDigits int `env:"PHONE_MIN_DIGITS" envDefault:"7"`

	// Resume consistency weights.
	ExperienceMismatchPenalty float64 `env:"EXPERIENCE_MISMATCH_PENALTY" envDefault:"-0.2"`
	SkillMismatchPenalty      float64 `env:"SKILL_MISMATCH_PENALTY" envDefault:"-0.1"`
	ResumeMismatchPenalty     float64 `env:"RESUME_MISMATCH_PENALTY" envDefault:"-0.15"`
	ResumeMatchBonus          float64 `env:"RESUME_MATCH_BONUS" envDefault:"0.1"`

	// ResumeTokenBudget caps the resume text passed to the LLM parser.
	ResumeTokenBudget int `env:"RESUME_TOKEN_BUDGET" envDefault:"3000"`

	MaxUploadMB           int64         `env:"MAX_UPLOAD_MB" envDefault:"10"`
	CORSAllowOrigins      string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	RateLimitPerMin       int           `env:"RATE_LIMIT_PER_MIN" envDefault:"30"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`

	// AI Backoff Configuration
	AIBackoffMaxElapsedTime  time.Duration `env:"AI_BACKOFF_MAX_ELAPSED_TIME" envDefault:"60s"`
	AIBackoffInitialInterval time.Duration `env:"AI_BACKOFF_INITIAL_INTERVAL" envDefault:"2s"`
	AIBackoffMaxInterval     time.Duration `env:"AI_BACKOFF_MAX_INTERVAL" envDefault:"20s"`
	AIBackoffMultiplier      float64       `env:"AI_BACKOFF_MULTIPLIER" envDefault:"1.5"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	return cfg, nil
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }

// GetAIBackoffConfig returns backoff configuration appropriate for the current
// environment. Test environments use much shorter timeouts.
func (c Config) GetAIBackoffConfig() (maxElapsedTime, initialInterval, maxInterval time.Duration, multiplier float64) {
	if c.IsTest() {
		return 2 * time.Second, 50 * time.Millisecond, 500 * time.Millisecond, 2.0
	}
	return c.AIBackoffMaxElapsedTime, c.AIBackoffInitialInterval, c.AIBackoffMaxInterval, c.AIBackoffMultiplier
}
