package usecase

import (
	"strings"

	"github.com/Abiads/talentscout/internal/domain"
)

// Lexicons for the rule-based confidence read on each answer. Matching is by
// substring over the lowercased text, so inflected forms count; each lexicon
// entry counts at most once no matter how often it repeats.
var (
	positiveWords = []string{
		"confident", "sure", "definitely", "absolutely", "certainly",
		"experience", "implemented", "developed", "created", "built",
		"successfully", "achieved", "optimized", "improved",
	}
	uncertainWords = []string{
		"maybe", "perhaps", "might", "possibly", "not sure",
		"i think", "probably", "guess", "unsure", "unclear",
	}
	fillerWords = []string{"um", "uh", "like", "you know", "basically", "actually", "literally"}

	depthIndicators = []string{
		"algorithm", "complexity", "optimization", "architecture",
		"design pattern", "framework", "library", "api", "database",
		"performance", "scalability", "security",
	}
)

func countMatches(lower string, lexicon []string) int {
	n := 0
	for _, w := range lexicon {
		if strings.Contains(lower, w) {
			n++
		}
	}
	return n
}

func countSentences(text string) int {
	n := 0
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			n++
		}
	}
	if n == 0 && strings.TrimSpace(text) != "" {
		n = 1
	}
	return n
}

// AnalyzeSentiment produces a rule-based confidence snapshot of one answer.
// The score starts at 0.5 and moves with capped contributions from positive,
// uncertain, and filler markers plus an answer-length adjustment. The snapshot
// is candidate-facing only and never feeds the stopping decision.
func AnalyzeSentiment(answer string) domain.SentimentSnapshot {
	lower := strings.ToLower(answer)
	words := len(strings.Fields(answer))

	pos := countMatches(lower, positiveWords)
	unc := countMatches(lower, uncertainWords)
	fill := countMatches(lower, fillerWords)

	score := 0.5
	score += minF(float64(pos)*0.05, 0.3)
	score -= minF(float64(unc)*0.1, 0.3)
	score -= minF(float64(fill)*0.05, 0.2)
	if words >= 20 && words <= 150 {
		score += 0.1
	} else if words > 200 {
		score -= 0.05
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	category := "Uncertain"
	switch {
	case score >= 0.7:
		category = "Confident"
	case score >= 0.5:
		category = "Moderate"
	}

	return domain.SentimentSnapshot{
		ConfidenceScore:     score,
		Category:            category,
		WordCount:           words,
		SentenceCount:       countSentences(answer),
		TechnicalDepth:      countMatches(lower, depthIndicators),
		PositiveIndicators:  pos,
		UncertainIndicators: unc,
		FillerCount:         fill,
	}
}

// SentimentFeedback renders a short human-readable line for a snapshot.
func SentimentFeedback(s domain.SentimentSnapshot) string {
	switch s.Category {
	case "Confident":
		return "The answer reads as confident and assured."
	case "Moderate":
		return "The answer reads as reasonably composed with some hesitation."
	default:
		return "The answer shows noticeable uncertainty or hesitation."
	}
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
