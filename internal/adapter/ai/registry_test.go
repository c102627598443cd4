package ai_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abiads/talentscout/internal/adapter/ai"
	"github.com/Abiads/talentscout/internal/adapter/ai/stub"
	"github.com/Abiads/talentscout/internal/config"
	"github.com/Abiads/talentscout/internal/domain"
)

func testAIConfig() config.Config {
	return config.Config{
		AppEnv:        "test",
		GroqBaseURL:   "https://api.groq.com/openai/v1",
		GroqModel:     "groq/compound",
		GroqMiniModel: "groq/compound-mini",
		LocalModelURL: "http://localhost:8081/v1",
	}
}

func TestRegistry_NoKeyYieldsStub(t *testing.T) {
	t.Parallel()
	r := ai.NewRegistry(testAIConfig())
	client := r.Get(ai.ProfileConversation, ai.Options{})
	require.NotNil(t, client)
	assert.Equal(t, domain.BackendStub, client.Backend())

	out, err := client.Invoke(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, stub.Marker))
}

func TestRegistry_CachesPerProfile(t *testing.T) {
	t.Parallel()
	r := ai.NewRegistry(testAIConfig())
	a := r.Get(ai.ProfileConversation, ai.Options{})
	b := r.Get(ai.ProfileConversation, ai.Options{})
	assert.Same(t, a, b, "identical profile and options reuse one client")
	assert.Equal(t, 1, r.Size())

	r.Get(ai.ProfileEvaluation, ai.Options{})
	assert.Equal(t, 2, r.Size())
}

func TestRegistry_KeyedByOptions(t *testing.T) {
	t.Parallel()
	r := ai.NewRegistry(testAIConfig())
	r.Get(ai.ProfileConversation, ai.Options{})
	r.Get(ai.ProfileConversation, ai.Options{APIKey: "gsk_" + strings.Repeat("a", 20)})
	assert.Equal(t, 2, r.Size(), "a supplied key produces a distinct client")
}

func TestRegistry_WithKeyYieldsRealBackend(t *testing.T) {
	t.Parallel()
	r := ai.NewRegistry(testAIConfig())
	client := r.Get(ai.ProfileReport, ai.Options{APIKey: "gsk_" + strings.Repeat("a", 20)})
	require.NotNil(t, client)
	assert.NotEqual(t, domain.BackendStub, client.Backend())
	assert.Contains(t, client.Backend(), "groq")
}

func TestRegistry_Clear(t *testing.T) {
	t.Parallel()
	r := ai.NewRegistry(testAIConfig())
	r.Get(ai.ProfileConversation, ai.Options{})
	require.Equal(t, 1, r.Size())
	r.Clear()
	assert.Equal(t, 0, r.Size())
}

func TestStubClient_Deterministic(t *testing.T) {
	t.Parallel()
	c := stub.New()
	out1, err := c.Invoke(context.Background(), "same prompt", nil)
	require.NoError(t, err)
	out2, err := c.Invoke(context.Background(), "same prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, out1, out2)
	assert.Equal(t, stub.Marker+"same prompt", out1)
	assert.Equal(t, domain.BackendStub, c.Backend())
}

type failingClient struct{ backend string }

func (f *failingClient) Invoke(domain.Context, string, []domain.Message) (string, error) {
	return "", domain.ErrRateLimited
}
func (f *failingClient) Backend() string { return f.backend }

func TestWithFallback_SecondaryOnPrimaryFailure(t *testing.T) {
	t.Parallel()
	c := ai.WithFallback(&failingClient{backend: "primary"}, stub.New())
	assert.Equal(t, "primary", c.Backend())

	out, err := c.Invoke(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, stub.Marker+"hi", out)
}

func TestWithFallback_NilSides(t *testing.T) {
	t.Parallel()
	s := stub.New()
	assert.Equal(t, domain.AIClient(s), ai.WithFallback(nil, s))
	assert.Equal(t, domain.AIClient(s), ai.WithFallback(s, nil))
}
