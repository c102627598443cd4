package usecase

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Abiads/talentscout/internal/config"
	"github.com/Abiads/talentscout/internal/domain"
)

// PolicyConfig carries the thresholds that shape the stopping decision.
type PolicyConfig struct {
	ConfidenceHigh float64
	ConfidenceLow  float64
	SkipThreshold  int
}

// PolicyFromConfig lifts the relevant fields from the app config.
func PolicyFromConfig(cfg config.Config) PolicyConfig {
	return PolicyConfig{
		ConfidenceHigh: cfg.ConfidenceHigh,
		ConfidenceLow:  cfg.ConfidenceLow,
		SkipThreshold:  cfg.SkipThreshold,
	}
}

// Assessment is the outcome of one policy evaluation over the session so far.
type Assessment struct {
	Confidence float64
	Decision   domain.Decision
	Reasoning  string
	FocusAreas []string
	// NeedMore is true while the policy wants further questions.
	NeedMore bool
}

// Policy decides after each answer whether the session has gathered enough
// signal to stop, and where the next question should probe if not.
type Policy struct {
	Cfg PolicyConfig
	AI  domain.AIClient
}

// NewPolicy constructs a Policy over a conversation-profile client.
func NewPolicy(cfg PolicyConfig, ai domain.AIClient) *Policy {
	return &Policy{Cfg: cfg, AI: ai}
}

// Assess evaluates the session state. Forced terminations are checked before
// the confidence computation: the question cap first, then the skip threshold.
// Exit intent is handled upstream by the session service before answers are
// scored, so it never reaches this method.
func (p *Policy) Assess(ctx domain.Context, s *domain.Session) Assessment {
	if s.QuestionsAsked >= domain.MaxQuestions {
		conf := p.confidence(s)
		return Assessment{
			Confidence: conf,
			Decision:   p.decisionForConfidence(conf),
			Reasoning:  fmt.Sprintf("Reached the %d-question cap; deciding on accumulated evidence.", domain.MaxQuestions),
			NeedMore:   false,
		}
	}

	if s.SkippedCount() >= p.Cfg.SkipThreshold {
		return Assessment{
			Confidence: p.confidence(s),
			Decision:   domain.DecisionNoHire,
			Reasoning:  fmt.Sprintf("Candidate skipped %d questions, at or above the %d-skip limit.", s.SkippedCount(), p.Cfg.SkipThreshold),
			NeedMore:   false,
		}
	}

	conf := p.confidence(s)
	focus := p.focusAreas(s)

	if conf >= p.Cfg.ConfidenceHigh {
		return Assessment{
			Confidence: conf,
			Decision:   domain.DecisionStrong,
			Reasoning:  p.reasoning(ctx, s, conf, domain.DecisionStrong),
			NeedMore:   false,
		}
	}
	if conf < p.Cfg.ConfidenceLow && len(s.Scores) >= 3 {
		return Assessment{
			Confidence: conf,
			Decision:   domain.DecisionNoHire,
			Reasoning:  p.reasoning(ctx, s, conf, domain.DecisionNoHire),
			NeedMore:   false,
		}
	}

	return Assessment{
		Confidence: conf,
		Decision:   domain.DecisionInProgress,
		Reasoning:  fmt.Sprintf("Confidence %.2f is inside the continue band; probing further.", conf),
		FocusAreas: focus,
		NeedMore:   true,
	}
}

// decisionForConfidence maps a confidence value to a terminal decision band.
func (p *Policy) decisionForConfidence(conf float64) domain.Decision {
	switch {
	case conf >= p.Cfg.ConfidenceHigh:
		return domain.DecisionStrong
	case conf >= p.Cfg.ConfidenceLow:
		return domain.DecisionBorderline
	default:
		return domain.DecisionNoHire
	}
}

// confidence aggregates the score history into [0,1]: the score mean, a recency
// trend comparing the last three answers against the overall mean, and a depth
// term rewarding a larger evidence base.
func (p *Policy) confidence(s *domain.Session) float64 {
	if len(s.Scores) == 0 {
		return 0
	}
	mean := s.AverageScore()

	// Recency trend over ask order.
	var recent []float64
	for i := len(s.AskOrder) - 1; i >= 0 && len(recent) < 3; i-- {
		if score, ok := s.Scores[s.AskOrder[i].Text]; ok {
			recent = append(recent, score)
		}
	}
	trend := 0.0
	if len(recent) > 0 {
		var sum float64
		for _, v := range recent {
			sum += v
		}
		trend = (sum/float64(len(recent)) - mean) * 0.2
	}

	depth := minF(float64(len(s.Scores))*0.02, 0.1)

	conf := mean + trend + depth
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return conf
}

// focusAreas returns the topics of the two lowest-scoring answered questions,
// deduplicated, for the next question to probe.
func (p *Policy) focusAreas(s *domain.Session) []string {
	type scored struct {
		score  float64
		topics []string
	}
	var items []scored
	for _, q := range s.AskOrder {
		if score, ok := s.Scores[q.Text]; ok && len(q.Topics) > 0 {
			items = append(items, scored{score: score, topics: q.Topics})
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].score < items[j].score })

	seen := map[string]struct{}{}
	var out []string
	for i := 0; i < len(items) && i < 2; i++ {
		for _, t := range items[i].topics {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				out = append(out, t)
			}
		}
	}
	return out
}

// reasoning asks the model for a short decision narrative, falling back to a
// deterministic sentence built from the numbers when the model path fails.
func (p *Policy) reasoning(ctx domain.Context, s *domain.Session, conf float64, d domain.Decision) string {
	fallback := fmt.Sprintf("Decision %q at confidence %.2f over %d scored answers (average %.2f, %d skipped).",
		d, conf, len(s.Scores), s.AverageScore(), s.SkippedCount())
	if p.AI.Backend() == domain.BackendStub {
		return fallback
	}

	var lines []string
	for _, q := range s.AskOrder {
		if score, ok := s.Scores[q.Text]; ok {
			lines = append(lines, fmt.Sprintf("- %s (score %.2f)", q.Text, score))
		}
	}
	prompt := fmt.Sprintf(`Summarize in 2-3 sentences why a technical screening reached the decision %q with confidence %.2f.

Scored questions:
%s

Be factual and specific. Do not invent details beyond the scores.`, d, conf, strings.Join(lines, "\n"))

	text, err := p.AI.Invoke(ctx, prompt, nil)
	if err != nil {
		slog.Warn("decision reasoning generation failed, using summary sentence", slog.Any("error", err))
		return fallback
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fallback
	}
	return text
}
