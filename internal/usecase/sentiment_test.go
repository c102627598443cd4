package usecase_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Abiads/talentscout/internal/usecase"
)

func TestAnalyzeSentiment_Confident(t *testing.T) {
	t.Parallel()
	answer := "I am confident and experienced with this. " +
		"The database index clearly reduces query latency because lookups avoid full scans. " +
		"I have definitely tuned this in production systems before with measurable results."
	s := usecase.AnalyzeSentiment(answer)
	assert.Equal(t, "Confident", s.Category)
	assert.GreaterOrEqual(t, s.ConfidenceScore, 0.7)
	assert.Greater(t, s.PositiveIndicators, 0)
}

func TestAnalyzeSentiment_Uncertain(t *testing.T) {
	t.Parallel()
	s := usecase.AnalyzeSentiment("Um, I guess maybe it works like that, not sure, perhaps.")
	assert.Equal(t, "Uncertain", s.Category)
	assert.Less(t, s.ConfidenceScore, 0.5)
	assert.Greater(t, s.UncertainIndicators, 0)
}

func TestAnalyzeSentiment_NeutralBaseline(t *testing.T) {
	t.Parallel()
	s := usecase.AnalyzeSentiment("It depends on the workload.")
	assert.InDelta(t, 0.5, s.ConfidenceScore, 1e-9)
	assert.Equal(t, "Moderate", s.Category)
	assert.Equal(t, 5, s.WordCount)
}

func TestAnalyzeSentiment_RepeatedIndicatorCountsOnce(t *testing.T) {
	t.Parallel()
	once := usecase.AnalyzeSentiment("maybe it works")
	repeated := usecase.AnalyzeSentiment("maybe maybe maybe it works")
	assert.Equal(t, once.UncertainIndicators, repeated.UncertainIndicators)
	assert.InDelta(t, once.ConfidenceScore, repeated.ConfidenceScore, 1e-9)
}

func TestAnalyzeSentiment_DeliveryVerbsReadPositive(t *testing.T) {
	t.Parallel()
	s := usecase.AnalyzeSentiment("I implemented the cache layer, built the deploy pipeline, and improved the database performance under load.")
	assert.Equal(t, 3, s.PositiveIndicators)
	assert.Greater(t, s.TechnicalDepth, 0)
}

func TestAnalyzeSentiment_VeryLongAnswerPenalized(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("word ", 210)
	s := usecase.AnalyzeSentiment(long)
	assert.Equal(t, 210, s.WordCount)
	assert.Less(t, s.ConfidenceScore, 0.5)
}

func TestAnalyzeSentiment_ScoreBounds(t *testing.T) {
	t.Parallel()
	worst := "um uh um uh maybe not sure i guess perhaps possibly might unsure confused " + strings.Repeat("like ", 300)
	s := usecase.AnalyzeSentiment(worst)
	assert.GreaterOrEqual(t, s.ConfidenceScore, 0.0)
	assert.LessOrEqual(t, s.ConfidenceScore, 1.0)
}

func TestSentimentFeedback(t *testing.T) {
	t.Parallel()
	confident := usecase.AnalyzeSentiment("I am confident, sure, and clearly experienced. " + strings.Repeat("detail ", 25))
	assert.Contains(t, usecase.SentimentFeedback(confident), "confident")
	uncertain := usecase.AnalyzeSentiment("maybe not sure i guess um uh")
	assert.Contains(t, usecase.SentimentFeedback(uncertain), "uncertainty")
}
