package usecase

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Abiads/talentscout/internal/adapter/observability"
	"github.com/Abiads/talentscout/internal/domain"
)

// MemoryStore is the in-process SessionStore. All sessions vanish on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*domain.Session)}
}

// Create stores a new session, rejecting duplicate IDs.
func (m *MemoryStore) Create(_ domain.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return fmt.Errorf("op=store.Create: id=%s: %w", s.ID, domain.ErrConflict)
	}
	m.sessions[s.ID] = s
	return nil
}

// Get returns the session for id.
func (m *MemoryStore) Get(_ domain.Context, id string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("op=store.Get: id=%s: %w", id, domain.ErrNotFound)
	}
	return s, nil
}

// Save overwrites an existing session.
func (m *MemoryStore) Save(_ domain.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; !ok {
		return fmt.Errorf("op=store.Save: id=%s: %w", s.ID, domain.ErrNotFound)
	}
	s.UpdatedAt = time.Now().UTC()
	m.sessions[s.ID] = s
	return nil
}

// Delete removes a session; deleting an unknown id is not an error.
func (m *MemoryStore) Delete(_ domain.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// AssessmentService orchestrates a session end to end: intake, question flow,
// answer scoring, the stopping decision, and the final report.
type AssessmentService struct {
	Store     domain.SessionStore
	Questions *Generator
	Evaluator *Evaluator
	Policy    *Policy
	Reporter  *Reporter

	// mu serializes state transitions per service. The HTTP layer is the only
	// caller and session traffic is low-volume, so a single lock is enough.
	mu sync.Mutex
}

// NewAssessmentService wires the collaborators together.
func NewAssessmentService(store domain.SessionStore, g *Generator, e *Evaluator, p *Policy, r *Reporter) *AssessmentService {
	return &AssessmentService{Store: store, Questions: g, Evaluator: e, Policy: p, Reporter: r}
}

// Start creates a session for a validated candidate profile.
func (svc *AssessmentService) Start(ctx domain.Context, profile domain.CandidateProfile) (*domain.Session, error) {
	now := time.Now().UTC()
	s := &domain.Session{
		ID:         uuid.NewString(),
		Profile:    profile,
		Answers:    make(map[string]string),
		Scores:     make(map[string]float64),
		Sentiments: make(map[string]domain.SentimentSnapshot),
		Decision:   domain.DecisionInProgress,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := svc.Store.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("op=assessment.Start: %w", err)
	}
	observability.SessionsActive.Inc()
	slog.Info("session started",
		slog.String("session_id", s.ID),
		slog.String("position", profile.DesiredPosition),
		slog.Int("stack_size", len(profile.TechStack)))
	return s, nil
}

// NextQuestion returns the question the candidate should answer next. The same
// pending question is returned until it is answered or skipped. When the
// initial queue is drained the policy decides between a focused follow-up and
// completing the session; a completed session yields ErrSessionClosed.
func (svc *AssessmentService) NextQuestion(ctx domain.Context, sessionID string) (*domain.Question, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	s, err := svc.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("op=assessment.NextQuestion: %w", err)
	}
	if s.Completed {
		return nil, fmt.Errorf("op=assessment.NextQuestion: id=%s: %w", sessionID, domain.ErrSessionClosed)
	}
	if s.Pending != nil {
		return s.Pending, nil
	}

	// First round: build the initial question queue.
	if s.QuestionsAsked == 0 && len(s.Queue) == 0 && len(s.AskOrder) == 0 {
		s.Queue = svc.Questions.InitialQuestions(ctx, s.Profile.TechStack)
	}

	if len(s.Queue) > 0 {
		q := s.Queue[0]
		s.Queue = s.Queue[1:]
		svc.ask(s, q)
		return s.Pending, svc.Store.Save(ctx, s)
	}

	// Queue drained: let the policy decide whether to keep probing.
	a := svc.Policy.Assess(ctx, s)
	s.Confidence = a.Confidence
	if !a.NeedMore {
		svc.complete(ctx, s, a.Decision, a.Reasoning)
		if err := svc.Store.Save(ctx, s); err != nil {
			return nil, fmt.Errorf("op=assessment.NextQuestion: %w", err)
		}
		return nil, fmt.Errorf("op=assessment.NextQuestion: id=%s: %w", sessionID, domain.ErrSessionClosed)
	}

	previous := make([]string, 0, len(s.AskOrder))
	for _, q := range s.AskOrder {
		previous = append(previous, q.Text)
	}
	q := svc.Questions.FocusedQuestion(ctx, s.Profile.TechStack, a.FocusAreas, previous)
	svc.ask(s, q)
	return s.Pending, svc.Store.Save(ctx, s)
}

func (svc *AssessmentService) ask(s *domain.Session, q domain.Question) {
	s.Pending = &q
	s.AskOrder = append(s.AskOrder, q)
}

// SubmitAnswer records the candidate's answer to the pending question. Exit
// phrases end the session with an Early Exit decision before any scoring.
func (svc *AssessmentService) SubmitAnswer(ctx domain.Context, sessionID, answer string) (*domain.Session, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	s, err := svc.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("op=assessment.SubmitAnswer: %w", err)
	}
	if s.Completed {
		return nil, fmt.Errorf("op=assessment.SubmitAnswer: id=%s: %w", sessionID, domain.ErrSessionClosed)
	}
	if s.Pending == nil {
		return nil, fmt.Errorf("op=assessment.SubmitAnswer: id=%s: no pending question: %w", sessionID, domain.ErrConflict)
	}
	if strings.TrimSpace(answer) == "" {
		return nil, fmt.Errorf("op=assessment.SubmitAnswer: empty answer: %w", domain.ErrInvalidArgument)
	}

	if DetectExitIntent(answer) {
		svc.complete(ctx, s, domain.DecisionEarlyExit, "Candidate requested to end the assessment.")
		return s, svc.Store.Save(ctx, s)
	}

	q := *s.Pending
	result := svc.Evaluator.Evaluate(ctx, q.Text, answer)

	s.Answers[q.Text] = answer
	s.Scores[q.Text] = result.Score
	s.Sentiments[q.Text] = AnalyzeSentiment(answer)
	s.Pending = nil
	s.QuestionsAsked++

	slog.Info("answer scored",
		slog.String("session_id", s.ID),
		slog.Int("asked", s.QuestionsAsked),
		slog.Float64("score", result.Score),
		slog.Bool("fallback", result.Fallback))

	return s, svc.Store.Save(ctx, s)
}

// Skip records the pending question as skipped with a zero score. When skips
// reach the policy threshold the session ends with No Hire.
func (svc *AssessmentService) Skip(ctx domain.Context, sessionID string) (*domain.Session, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	s, err := svc.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("op=assessment.Skip: %w", err)
	}
	if s.Completed {
		return nil, fmt.Errorf("op=assessment.Skip: id=%s: %w", sessionID, domain.ErrSessionClosed)
	}
	if s.Pending == nil {
		return nil, fmt.Errorf("op=assessment.Skip: id=%s: no pending question: %w", sessionID, domain.ErrConflict)
	}

	q := *s.Pending
	s.Answers[q.Text] = domain.AnswerSkipped
	s.Scores[q.Text] = 0
	s.Pending = nil
	s.QuestionsAsked++
	observability.ObserveAnswerScore(0, "skip")

	if s.SkippedCount() >= svc.Policy.Cfg.SkipThreshold {
		svc.complete(ctx, s, domain.DecisionNoHire,
			fmt.Sprintf("Candidate skipped %d questions, reaching the skip limit.", s.SkippedCount()))
	}

	slog.Info("question skipped",
		slog.String("session_id", s.ID),
		slog.Int("skipped", s.SkippedCount()),
		slog.Bool("completed", s.Completed))

	return s, svc.Store.Save(ctx, s)
}

// CompleteNow force-finishes an open session, deciding from the evidence so far.
func (svc *AssessmentService) CompleteNow(ctx domain.Context, sessionID string) (*domain.Session, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	s, err := svc.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("op=assessment.CompleteNow: %w", err)
	}
	if s.Completed {
		return s, nil
	}
	a := svc.Policy.Assess(ctx, s)
	s.Confidence = a.Confidence
	d := a.Decision
	if a.NeedMore {
		d = svc.Policy.decisionForConfidence(a.Confidence)
	}
	svc.complete(ctx, s, d, "Assessment closed on request; deciding on accumulated evidence.")
	return s, svc.Store.Save(ctx, s)
}

// complete marks the session terminal. Callers hold the service lock.
func (svc *AssessmentService) complete(_ domain.Context, s *domain.Session, d domain.Decision, reasoning string) {
	s.Completed = true
	s.Decision = d
	s.Reasoning = reasoning
	s.Pending = nil
	s.Queue = nil
	observability.SessionCompleted(string(d))
	slog.Info("session completed",
		slog.String("session_id", s.ID),
		slog.String("decision", string(d)),
		slog.Float64("confidence", s.Confidence),
		slog.Int("asked", s.QuestionsAsked))
}

// Report builds the final document for a completed session.
func (svc *AssessmentService) Report(ctx domain.Context, sessionID string) (domain.Report, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	s, err := svc.Store.Get(ctx, sessionID)
	if err != nil {
		return domain.Report{}, fmt.Errorf("op=assessment.Report: %w", err)
	}
	if !s.Completed {
		return domain.Report{}, fmt.Errorf("op=assessment.Report: id=%s still open: %w", sessionID, domain.ErrConflict)
	}
	return svc.Reporter.BuildReport(ctx, s), nil
}

// Reset discards a session entirely.
func (svc *AssessmentService) Reset(ctx domain.Context, sessionID string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	s, err := svc.Store.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("op=assessment.Reset: %w", err)
	}
	if !s.Completed {
		observability.SessionsActive.Dec()
	}
	if err := svc.Store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("op=assessment.Reset: %w", err)
	}
	slog.Info("session reset", slog.String("session_id", sessionID))
	return nil
}
