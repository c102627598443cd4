package usecase

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Abiads/talentscout/internal/domain"
	"github.com/Abiads/talentscout/pkg/textx"
)

// initialQuestionCount is the size of the opening question set.
const initialQuestionCount = 5

// exitPhrases terminate the assessment when found in an answer. Matching is by
// substring, so unrelated text containing e.g. "end" also triggers it. That
// sharp edge is carried over from the source system deliberately; see DESIGN.md.
var exitPhrases = []string{"exit", "quit", "stop", "end assessment", "end"}

// DetectExitIntent reports whether the candidate asked to leave the assessment.
func DetectExitIntent(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, phrase := range exitPhrases {
		if strings.Contains(t, phrase) {
			return true
		}
	}
	return false
}

// QuestionSimilarity computes word-set overlap between two questions:
// intersection size divided by the larger set size.
func QuestionSimilarity(q1, q2 string) float64 {
	s1 := textx.WordSet(q1)
	s2 := textx.WordSet(q2)
	if len(s1) == 0 || len(s2) == 0 {
		return 0
	}
	common := 0
	for w := range s1 {
		if _, ok := s2[w]; ok {
			common++
		}
	}
	larger := len(s1)
	if len(s2) > larger {
		larger = len(s2)
	}
	return float64(common) / float64(larger)
}

// similarityLimit is the overlap above which a generated question counts as a
// duplicate of an earlier one.
const similarityLimit = 0.7

var questionLinePattern = regexp.MustCompile(`^Question\s+\d+:`)

// Generator supplies questions for a session, from the curated bank when the
// tech stack matches and from the model otherwise.
type Generator struct {
	AI domain.AIClient
}

// NewGenerator constructs a Generator over a conversation-profile client.
func NewGenerator(ai domain.AIClient) *Generator {
	return &Generator{AI: ai}
}

// InitialQuestions returns the opening question set: the first five curated
// bank questions when any declared technology matches, otherwise a model-built
// five-step difficulty ladder. The result is never empty.
func (g *Generator) InitialQuestions(ctx domain.Context, techStack []string) []domain.Question {
	if qs := BankQuestions(techStack); len(qs) > 0 {
		if len(qs) > initialQuestionCount {
			qs = qs[:initialQuestionCount]
		}
		return qs
	}

	stack := strings.Join(techStack, ", ")
	prompt := fmt.Sprintf(`Based on the tech stack: %s, generate 5 questions with increasing difficulty:

1. Start with a basic concept/definition question (easy, short answer)
2. Progress to fundamentals application (moderate, brief explanation)
3. Add a practical scenario (moderate, focused solution)
4. Include problem-solving (challenging but specific)
5. End with advanced concepts

Rules:
- First 2 questions should be answerable in 1-2 sentences
- Questions 3-4 should need 3-4 sentences max
- Keep questions focused and specific
- Avoid asking for code implementations
- Use this format: "Question N: [The question text]"

Generate questions that are concise and clear.`, stack)

	resp, err := g.AI.Invoke(ctx, prompt, nil)
	if err != nil {
		slog.Warn("initial question generation failed, using generic ladder",
			slog.String("tech_stack", stack), slog.Any("error", err))
		return genericLadder(stack)
	}
	var out []domain.Question
	for _, line := range strings.Split(resp, "\n") {
		line = strings.TrimSpace(line)
		if questionLinePattern.MatchString(line) {
			out = append(out, domain.Question{Text: line, Topics: techStack})
			if len(out) == initialQuestionCount {
				break
			}
		}
	}
	if len(out) == 0 {
		slog.Warn("model returned no parseable question lines, using generic ladder",
			slog.String("tech_stack", stack))
		return genericLadder(stack)
	}
	return out
}

// genericLadder is the deterministic last resort when the model produces no
// usable questions. It keeps the session able to reach a terminal report even
// under total model unavailability.
func genericLadder(stack string) []domain.Question {
	texts := []string{
		fmt.Sprintf("Question 1: What is the core concept behind %s and what problems does it solve?", stack),
		fmt.Sprintf("Question 2: How do the fundamental building blocks of %s fit together in a typical project?", stack),
		fmt.Sprintf("Question 3: In a simple application using %s, how would you handle errors and unexpected input?", stack),
		fmt.Sprintf("Question 4: Describe how you would debug a performance problem in a system built on %s.", stack),
		fmt.Sprintf("Question 5: Explain a trade-off you have faced when designing with %s and how you resolved it.", stack),
	}
	out := make([]domain.Question, 0, len(texts))
	for _, t := range texts {
		out = append(out, domain.Question{Text: t})
	}
	return out
}

// FocusedQuestion generates one question probing the given focus areas,
// distinct from all previous questions. When the first attempt overlaps a
// previous question beyond the similarity limit, one regeneration is made with
// an explicit anti-duplication instruction; the second result is returned
// regardless of its similarity.
func (g *Generator) FocusedQuestion(ctx domain.Context, techStack, focusAreas, previous []string) domain.Question {
	focus := "general technical knowledge"
	if len(focusAreas) > 0 {
		focus = strings.Join(focusAreas, ", ")
	}
	prompt := fmt.Sprintf(`Based on the candidate's previous responses, generate ONE focused technical question.
Tech Stack: %s
Focus Areas Needed: %s

Previous Questions Asked:
%s

Generate a NEW question that:
1. Probes deeper into the identified focus areas
2. Is different from previous questions
3. Helps assess technical depth and problem-solving

Return ONLY the question text, no additional formatting or commentary.`,
		strings.Join(techStack, ", "), focus, strings.Join(previous, "\n"))

	text, err := g.AI.Invoke(ctx, prompt, nil)
	if err != nil {
		slog.Warn("focused question generation failed, using deterministic probe",
			slog.String("focus", focus), slog.Any("error", err))
		return fallbackProbe(focus)
	}
	text = strings.TrimSpace(text)

	for _, prev := range previous {
		if QuestionSimilarity(text, prev) > similarityLimit {
			retry := prompt + "\nIMPORTANT: Question must be substantially different from previous questions!"
			second, err := g.AI.Invoke(ctx, retry, nil)
			if err != nil {
				return fallbackProbe(focus)
			}
			text = strings.TrimSpace(second)
			break
		}
	}
	return domain.Question{Text: text, Topics: focusAreas}
}

func fallbackProbe(focus string) domain.Question {
	return domain.Question{
		Text:   fmt.Sprintf("Describe a concrete situation where you applied %s, the decisions you made, and what you would do differently today.", focus),
		Topics: []string{focus},
	}
}
