package app_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "github.com/Abiads/talentscout/internal/adapter/httpserver"
	"github.com/Abiads/talentscout/internal/app"
	"github.com/Abiads/talentscout/internal/config"
	"github.com/Abiads/talentscout/internal/domain"
	"github.com/Abiads/talentscout/internal/usecase"
)

func TestParseOrigins(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"*"}, app.ParseOrigins(""))
	assert.Equal(t, []string{"*"}, app.ParseOrigins("*"))
	assert.Equal(t, []string{"*"}, app.ParseOrigins(" , ,"))
	assert.Equal(t, []string{"https://a.example", "https://b.example"},
		app.ParseOrigins(" https://a.example , https://b.example "))
}

type echoAI struct{}

func (echoAI) Invoke(_ domain.Context, prompt string, _ []domain.Message) (string, error) {
	return "[no-key-stub] " + prompt, nil
}
func (echoAI) Backend() string { return domain.BackendStub }

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Config{
		AppEnv:          "test",
		PhoneMinDigits:  7,
		MaxUploadMB:     10,
		ConfidenceHigh:  0.75,
		ConfidenceLow:   0.45,
		SkipThreshold:   3,
		RateLimitPerMin: 100,
	}
	ai := echoAI{}
	assessment := usecase.NewAssessmentService(
		usecase.NewMemoryStore(),
		usecase.NewGenerator(ai),
		usecase.NewEvaluator(ai),
		usecase.NewPolicy(usecase.PolicyFromConfig(cfg), ai),
		usecase.NewReporter(ai),
	)
	resume := usecase.NewResumeService(nil, ai, cfg)
	srv := httpserver.NewServer(cfg, assessment, resume, nil)
	return app.BuildRouter(cfg, srv)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	t.Parallel()
	h := testRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	t.Parallel()
	h := testRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_SessionLifecycleRoutes(t *testing.T) {
	t.Parallel()
	h := testRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions",
		nil)
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty body rejected, route reachable")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/sessions/abc/question", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code, "unknown session reaches the handler")
}
