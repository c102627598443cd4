// Package domain defines the core entities and ports for the interview service.
package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrRateLimited     = errors.New("rate limited")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrUpstreamTimeout = errors.New("upstream timeout")
	ErrSessionClosed   = errors.New("session closed")
	ErrInternal        = errors.New("internal error")
)

// CandidateProfile holds intake data. Created once at intake; immutable within a session.
type CandidateProfile struct {
	FullName          string   `json:"full_name"`
	Email             string   `json:"email"`
	Phone             string   `json:"phone"`
	YearsOfExperience int      `json:"years_of_experience"`
	DesiredPosition   string   `json:"desired_position"`
	Location          string   `json:"location"`
	TechStack         []string `json:"tech_stack"`
}

// Question is never mutated after creation. Identity is its literal text: two
// questions with identical text collapse into the same answer/score entry, a
// behavior carried over from the source system (see DESIGN.md).
type Question struct {
	Text   string   `json:"text"`
	Topics []string `json:"topics,omitempty"`
}

// AnswerSkipped is the sentinel answer recorded for skipped questions.
const AnswerSkipped = "Skipped"

// Decision is the categorical assessment outcome.
type Decision string

const (
	DecisionInProgress Decision = "In Progress"
	DecisionStrong     Decision = "Strong"
	DecisionBorderline Decision = "Borderline"
	DecisionNoHire     Decision = "No Hire"
	DecisionEarlyExit  Decision = "Early Exit"
)

// MaxQuestions is the hard cap on questions asked within one session.
const MaxQuestions = 15

// SentimentSnapshot carries per-answer derived metrics. Read-only, used for
// candidate-facing feedback; it does not feed the stopping decision.
type SentimentSnapshot struct {
	ConfidenceScore     float64 `json:"confidence_score"`
	Category            string  `json:"category"`
	WordCount           int     `json:"word_count"`
	SentenceCount       int     `json:"sentence_count"`
	TechnicalDepth      int     `json:"technical_depth"`
	PositiveIndicators  int     `json:"positive_indicators"`
	UncertainIndicators int     `json:"uncertain_indicators"`
	FillerCount         int     `json:"filler_count"`
}

// Session aggregates all per-candidate assessment state. It lives in memory for
// the duration of one assessment and is discarded on reset.
// Invariants: every key of Scores has a matching key in Answers and vice versa;
// QuestionsAsked never exceeds MaxQuestions; Confidence stays in [0,1].
type Session struct {
	ID      string
	Profile CandidateProfile

	// AskOrder preserves the order questions were asked. Answers and Scores are
	// keyed by question text, so a repeated question overwrites its entry while
	// AskOrder still records both occurrences.
	AskOrder   []Question
	Answers    map[string]string
	Scores     map[string]float64
	Sentiments map[string]SentimentSnapshot

	// Pending is the question awaiting an answer, nil between rounds.
	Pending *Question
	// Queue holds generated-but-not-yet-asked initial questions.
	Queue []Question

	QuestionsAsked int
	Confidence     float64
	Decision       Decision
	Reasoning      string
	Completed      bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SkippedCount reports how many recorded answers are skips.
func (s *Session) SkippedCount() int {
	n := 0
	for _, a := range s.Answers {
		if a == AnswerSkipped {
			n++
		}
	}
	return n
}

// AverageScore returns the mean of all recorded scores, 0 when none exist.
func (s *Session) AverageScore() float64 {
	if len(s.Scores) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s.Scores {
		sum += v
	}
	return sum / float64(len(s.Scores))
}

// Report is the immutable final document: candidate profile, full answer and
// score history, and the recommendation narrative.
type Report struct {
	GeneratedAt    time.Time        `json:"generated_at"`
	Candidate      CandidateProfile `json:"candidate"`
	Entries        []ReportEntry    `json:"entries"`
	AverageScore   float64          `json:"average_score"`
	Completed      int              `json:"questions_completed"`
	Asked          int              `json:"questions_asked"`
	Decision       Decision         `json:"decision"`
	Recommendation string           `json:"recommendation"`
}

// ReportEntry is one question/answer/score block in ask order.
type ReportEntry struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float64 `json:"score"`
}

// Message is one turn of chat history passed to the model.
type Message struct {
	Role    string
	Content string
}

// BackendStub identifies the degraded no-credential client. Callers check it to
// skip steps that require real model output (e.g. structured resume parsing).
const BackendStub = "stub"

// AIClient (port). Invoke submits a prompt with optional history and returns
// the model's text. The contract is identical across real, tiered and stub
// implementations.
type AIClient interface {
	Invoke(ctx Context, prompt string, history []Message) (string, error)
	Backend() string
}

// TextExtractor (port). ExtractPath extracts plain text from a document at
// path; implementations may call external services (e.g. Tika).
type TextExtractor interface {
	ExtractPath(ctx Context, fileName, path string) (string, error)
}

// SessionStore (port). In-memory by design: persistent storage is out of scope.
type SessionStore interface {
	Create(ctx Context, s *Session) error
	Get(ctx Context, id string) (*Session, error)
	Save(ctx Context, s *Session) error
	Delete(ctx Context, id string) error
}

// Context aliases context.Context so adapters and usecases share one signature.
type Context = context.Context
