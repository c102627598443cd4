package usecase

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Abiads/talentscout/internal/domain"
)

// Reporter builds the final assessment document and its renderings.
type Reporter struct {
	AI domain.AIClient
}

// NewReporter constructs a Reporter over a recommendation-profile client.
func NewReporter(ai domain.AIClient) *Reporter {
	return &Reporter{AI: ai}
}

// BuildReport assembles the immutable final document from a completed session.
// Entries follow ask order; a question asked twice appears twice with the same
// (last recorded) answer and score.
func (r *Reporter) BuildReport(ctx domain.Context, s *domain.Session) domain.Report {
	entries := make([]domain.ReportEntry, 0, len(s.AskOrder))
	answered := 0
	for _, q := range s.AskOrder {
		answer, ok := s.Answers[q.Text]
		if !ok {
			continue
		}
		if answer != domain.AnswerSkipped {
			answered++
		}
		entries = append(entries, domain.ReportEntry{
			Question: q.Text,
			Answer:   answer,
			Score:    s.Scores[q.Text],
		})
	}

	return domain.Report{
		GeneratedAt:    time.Now().UTC(),
		Candidate:      s.Profile,
		Entries:        entries,
		AverageScore:   s.AverageScore(),
		Completed:      answered,
		Asked:          s.QuestionsAsked,
		Decision:       s.Decision,
		Recommendation: r.FinalRecommendation(ctx, s),
	}
}

// FinalRecommendation produces the hire/no-hire narrative. The model writes it
// when available; otherwise a deterministic tiered summary keyed on the average
// score stands in.
func (r *Reporter) FinalRecommendation(ctx domain.Context, s *domain.Session) string {
	if s.Decision == domain.DecisionEarlyExit {
		return "Candidate ended the assessment early. The collected answers are insufficient for a hiring recommendation; a follow-up screening is advised."
	}
	if r.AI.Backend() == domain.BackendStub {
		return fallbackRecommendation(s)
	}

	var lines []string
	for _, q := range s.AskOrder {
		if answer, ok := s.Answers[q.Text]; ok {
			lines = append(lines, fmt.Sprintf("Q: %s\nA: %s\nScore: %.2f", q.Text, answer, s.Scores[q.Text]))
		}
	}
	prompt := fmt.Sprintf(`Write a concise hiring recommendation (3-5 sentences) for a technical screening.

Candidate: %s, applying for %s with %d years of experience.
Decision: %s
Average score: %.2f over %d questions (%d skipped).

Transcript:
%s

Ground every claim in the transcript. State strengths, gaps, and a clear recommendation.`,
		s.Profile.FullName, s.Profile.DesiredPosition, s.Profile.YearsOfExperience,
		s.Decision, s.AverageScore(), s.QuestionsAsked, s.SkippedCount(),
		strings.Join(lines, "\n\n"))

	text, err := r.AI.Invoke(ctx, prompt, nil)
	if err != nil {
		slog.Warn("recommendation generation failed, using tiered summary", slog.Any("error", err))
		return fallbackRecommendation(s)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fallbackRecommendation(s)
	}
	return text
}

// fallbackRecommendation maps the average score onto fixed narrative tiers so a
// report always carries a recommendation even with no model available.
func fallbackRecommendation(s *domain.Session) string {
	avg := s.AverageScore()
	switch {
	case avg >= 0.8:
		return fmt.Sprintf("Strong performance across the assessment (average score %.2f). The candidate demonstrated solid technical depth and is recommended for the next interview stage.", avg)
	case avg >= 0.6:
		return fmt.Sprintf("Qualified performance (average score %.2f). The candidate showed adequate technical knowledge with some gaps; recommended with reservations, to be probed in a follow-up interview.", avg)
	default:
		return fmt.Sprintf("Below-bar performance (average score %.2f). The answers lacked the depth expected for the role; proceeding is not recommended at this time.", avg)
	}
}

// RenderJSON marshals the report with stable field order and indentation.
func RenderJSON(rep domain.Report) ([]byte, error) {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("op=report.RenderJSON: %w", err)
	}
	return b, nil
}

// RenderText renders the report as a plain-text document for download.
func RenderText(rep domain.Report) string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	b.WriteString(rule + "\n")
	b.WriteString("TECHNICAL SCREENING REPORT\n")
	b.WriteString("Generated: " + rep.GeneratedAt.Format(time.RFC3339) + "\n")
	b.WriteString(rule + "\n\n")

	b.WriteString("CANDIDATE INFORMATION\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")
	fmt.Fprintf(&b, "Name:       %s\n", rep.Candidate.FullName)
	fmt.Fprintf(&b, "Email:      %s\n", rep.Candidate.Email)
	fmt.Fprintf(&b, "Phone:      %s\n", rep.Candidate.Phone)
	fmt.Fprintf(&b, "Position:   %s\n", rep.Candidate.DesiredPosition)
	fmt.Fprintf(&b, "Experience: %d years\n", rep.Candidate.YearsOfExperience)
	fmt.Fprintf(&b, "Location:   %s\n", rep.Candidate.Location)
	fmt.Fprintf(&b, "Tech Stack: %s\n\n", strings.Join(rep.Candidate.TechStack, ", "))

	b.WriteString("TECHNICAL ASSESSMENT RESULTS\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")
	fmt.Fprintf(&b, "Questions Asked:     %d\n", rep.Asked)
	fmt.Fprintf(&b, "Questions Completed: %d\n", rep.Completed)
	fmt.Fprintf(&b, "Average Score:       %.2f\n", rep.AverageScore)
	fmt.Fprintf(&b, "Decision:            %s\n\n", rep.Decision)

	b.WriteString("DETAILED ANSWERS\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")
	for i, e := range rep.Entries {
		fmt.Fprintf(&b, "%d. %s\n", i+1, e.Question)
		fmt.Fprintf(&b, "   Answer: %s\n", e.Answer)
		fmt.Fprintf(&b, "   Score:  %.2f\n\n", e.Score)
	}

	b.WriteString("RECOMMENDATION\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")
	b.WriteString(rep.Recommendation + "\n")
	b.WriteString(rule + "\n")
	return b.String()
}
