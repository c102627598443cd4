package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abiads/talentscout/internal/domain"
	"github.com/Abiads/talentscout/internal/usecase"
)

// fakeAI returns canned responses in order, then repeats the last one.
type fakeAI struct {
	responses []string
	err       error
	calls     int
	prompts   []string
	backend   string
}

func (f *fakeAI) Invoke(_ domain.Context, prompt string, _ []domain.Message) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", nil
	}
	i := f.calls - 1
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return f.responses[i], nil
}

func (f *fakeAI) Backend() string {
	if f.backend == "" {
		return "fake"
	}
	return f.backend
}

func TestDetectExitIntent(t *testing.T) {
	t.Parallel()
	cases := []struct {
		text string
		want bool
	}{
		{"exit", true},
		{"I want to quit now", true},
		{"please stop this assessment", true},
		{"END ASSESSMENT", true},
		// Substring matching means unrelated mentions also trigger it.
		{"what is a stop-loss order", true},
		{"the backend sends events", false},
		{"continue please", false},
		{"", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, usecase.DetectExitIntent(c.text), "text=%q", c.text)
	}
}

func TestQuestionSimilarity(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 1.0, usecase.QuestionSimilarity("what is a goroutine", "what is a goroutine"))
	assert.Equal(t, 0.0, usecase.QuestionSimilarity("alpha beta", "gamma delta"))
	assert.Equal(t, 0.0, usecase.QuestionSimilarity("", "anything"))
	mid := usecase.QuestionSimilarity("explain database indexing strategies", "explain database sharding strategies")
	assert.Greater(t, mid, 0.0)
	assert.Less(t, mid, 1.0)
}

func TestInitialQuestions_BankPreferred(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{}
	g := usecase.NewGenerator(ai)
	qs := g.InitialQuestions(context.Background(), []string{"python"})
	require.Len(t, qs, 5)
	assert.Zero(t, ai.calls, "curated bank must not consult the model")
}

func TestInitialQuestions_ModelLadder(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{responses: []string{
		"Here you go:\nQuestion 1: What is Elixir?\nQuestion 2: Explain OTP.\nsome chatter\nQuestion 3: Describe GenServer.\nQuestion 4: What is a supervision tree?\nQuestion 5: Explain BEAM scheduling.",
	}}
	g := usecase.NewGenerator(ai)
	qs := g.InitialQuestions(context.Background(), []string{"elixir"})
	require.Len(t, qs, 5)
	for _, q := range qs {
		assert.Regexp(t, `^Question \d+:`, q.Text)
		assert.Equal(t, []string{"elixir"}, q.Topics)
	}
}

func TestInitialQuestions_FallbackLadderOnError(t *testing.T) {
	t.Parallel()
	g := usecase.NewGenerator(&fakeAI{err: errors.New("boom")})
	qs := g.InitialQuestions(context.Background(), []string{"elixir"})
	require.Len(t, qs, 5)
	for _, q := range qs {
		assert.Contains(t, q.Text, "elixir")
	}
}

func TestInitialQuestions_FallbackLadderOnEmptyOutput(t *testing.T) {
	t.Parallel()
	g := usecase.NewGenerator(&fakeAI{responses: []string{"no numbered lines here"}})
	qs := g.InitialQuestions(context.Background(), []string{"elixir"})
	require.Len(t, qs, 5)
}

func TestFocusedQuestion_RegeneratesOnDuplicate(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{responses: []string{
		"What is the difference between a list and a tuple?",
		"Explain connection pooling in web backends.",
	}}
	g := usecase.NewGenerator(ai)
	previous := []string{"What is the difference between a list and a tuple?"}
	q := g.FocusedQuestion(context.Background(), []string{"python"}, []string{"data structures"}, previous)
	assert.Equal(t, 2, ai.calls, "one regeneration expected")
	assert.Equal(t, "Explain connection pooling in web backends.", q.Text)
	assert.Contains(t, ai.prompts[1], "substantially different")
}

func TestFocusedQuestion_SecondResultAcceptedRegardless(t *testing.T) {
	t.Parallel()
	dup := "What is the difference between a list and a tuple?"
	ai := &fakeAI{responses: []string{dup, dup}}
	g := usecase.NewGenerator(ai)
	q := g.FocusedQuestion(context.Background(), []string{"python"}, nil, []string{dup})
	assert.Equal(t, 2, ai.calls)
	assert.Equal(t, dup, q.Text, "second attempt is kept even when still similar")
}

func TestFocusedQuestion_FallbackOnError(t *testing.T) {
	t.Parallel()
	g := usecase.NewGenerator(&fakeAI{err: errors.New("down")})
	q := g.FocusedQuestion(context.Background(), []string{"python"}, []string{"sql"}, nil)
	require.NotEmpty(t, q.Text)
	assert.Contains(t, q.Text, "sql")
}
