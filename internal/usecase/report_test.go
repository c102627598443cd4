package usecase_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abiads/talentscout/internal/domain"
	"github.com/Abiads/talentscout/internal/usecase"
)

func completedSession() *domain.Session {
	s := sessionWithScores(0.9, 0.4)
	s.Profile = testProfile()
	s.Completed = true
	s.Decision = domain.DecisionBorderline
	// One skipped question on top of the scored ones.
	s.AskOrder = append(s.AskOrder, domain.Question{Text: "skipped one"})
	s.Answers["skipped one"] = domain.AnswerSkipped
	s.Scores["skipped one"] = 0
	s.QuestionsAsked++
	return s
}

func TestBuildReport_EntriesFollowAskOrder(t *testing.T) {
	t.Parallel()
	r := usecase.NewReporter(&fakeAI{backend: domain.BackendStub})
	rep := r.BuildReport(context.Background(), completedSession())

	require.Len(t, rep.Entries, 3)
	assert.Equal(t, "question 0", rep.Entries[0].Question)
	assert.Equal(t, "question 1", rep.Entries[1].Question)
	assert.Equal(t, "skipped one", rep.Entries[2].Question)
	assert.Equal(t, domain.AnswerSkipped, rep.Entries[2].Answer)
	assert.Equal(t, 3, rep.Asked)
	assert.Equal(t, 2, rep.Completed, "skips do not count as completed answers")
	assert.Equal(t, domain.DecisionBorderline, rep.Decision)
	assert.NotEmpty(t, rep.Recommendation)
	assert.False(t, rep.GeneratedAt.IsZero())
}

func TestFinalRecommendation_Tiers(t *testing.T) {
	t.Parallel()
	r := usecase.NewReporter(&fakeAI{backend: domain.BackendStub})

	strong := sessionWithScores(0.9, 0.85)
	assert.Contains(t, r.FinalRecommendation(context.Background(), strong), "Strong")

	qualified := sessionWithScores(0.65, 0.7)
	assert.Contains(t, r.FinalRecommendation(context.Background(), qualified), "Qualified")

	weak := sessionWithScores(0.2, 0.3)
	assert.Contains(t, r.FinalRecommendation(context.Background(), weak), "not recommended")
}

func TestFinalRecommendation_EarlyExit(t *testing.T) {
	t.Parallel()
	r := usecase.NewReporter(&fakeAI{responses: []string{"should not be used"}})
	s := sessionWithScores(0.9)
	s.Decision = domain.DecisionEarlyExit
	rec := r.FinalRecommendation(context.Background(), s)
	assert.Contains(t, rec, "ended the assessment early")
}

func TestFinalRecommendation_ModelText(t *testing.T) {
	t.Parallel()
	r := usecase.NewReporter(&fakeAI{responses: []string{"  Hire them.  "}})
	rec := r.FinalRecommendation(context.Background(), sessionWithScores(0.8))
	assert.Equal(t, "Hire them.", rec)
}

func TestRenderJSON_RoundTrip(t *testing.T) {
	t.Parallel()
	r := usecase.NewReporter(&fakeAI{backend: domain.BackendStub})
	rep := r.BuildReport(context.Background(), completedSession())

	b, err := usecase.RenderJSON(rep)
	require.NoError(t, err)

	var back domain.Report
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, rep.Decision, back.Decision)
	assert.Equal(t, rep.Entries, back.Entries)
	assert.Equal(t, rep.Candidate, back.Candidate)
	assert.InDelta(t, rep.AverageScore, back.AverageScore, 1e-9)
}

func TestRenderText_Sections(t *testing.T) {
	t.Parallel()
	r := usecase.NewReporter(&fakeAI{backend: domain.BackendStub})
	rep := r.BuildReport(context.Background(), completedSession())
	text := usecase.RenderText(rep)

	for _, heading := range []string{
		"TECHNICAL SCREENING REPORT",
		"CANDIDATE INFORMATION",
		"TECHNICAL ASSESSMENT RESULTS",
		"DETAILED ANSWERS",
		"RECOMMENDATION",
	} {
		assert.Contains(t, text, heading)
	}
	assert.Contains(t, text, "Ada Lovelace")
	assert.Contains(t, text, "question 0")
}
