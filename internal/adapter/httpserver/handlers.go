package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Abiads/talentscout/internal/adapter/ai"
	"github.com/Abiads/talentscout/internal/config"
	"github.com/Abiads/talentscout/internal/domain"
	"github.com/Abiads/talentscout/internal/usecase"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg        config.Config
	Assessment *usecase.AssessmentService
	Resume     *usecase.ResumeService
	TikaCheck  func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers wired.
func NewServer(cfg config.Config, assessment *usecase.AssessmentService, resume *usecase.ResumeService, tikaCheck func(context.Context) error) *Server {
	return &Server{Cfg: cfg, Assessment: assessment, Resume: resume, TikaCheck: tikaCheck}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// allowedExt enforces an allowlist for resume uploads: .txt, .pdf, .docx
func allowedExt(name string) bool {
	n := strings.ToLower(name)
	return strings.HasSuffix(n, ".txt") || strings.HasSuffix(n, ".pdf") || strings.HasSuffix(n, ".docx")
}

func allowedMIMEFor(m string, filename string) bool {
	m = strings.ToLower(m)
	// For .txt files, accept any text/* as some detectors misclassify rich text
	if strings.HasSuffix(strings.ToLower(filename), ".txt") && strings.HasPrefix(m, "text/") {
		return true
	}
	if strings.HasPrefix(m, "text/plain") { // allow parameters such as charset
		return true
	}
	return m == "application/pdf" || m == "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

// StartSessionHandler validates the intake form and opens a session.
func (s *Server) StartSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		var req struct {
			FullName          string   `json:"full_name" validate:"required,max=200"`
			Email             string   `json:"email" validate:"required"`
			Phone             string   `json:"phone" validate:"required"`
			YearsOfExperience int      `json:"years_of_experience" validate:"min=0,max=60"`
			DesiredPosition   string   `json:"desired_position" validate:"required,max=200"`
			Location          string   `json:"location" validate:"max=200"`
			TechStack         []string `json:"tech_stack" validate:"required"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		if err := getValidator().Struct(req); err != nil {
			verrs := map[string]string{}
			if ve, ok := err.(validator.ValidationErrors); ok {
				for _, fe := range ve {
					verrs[strings.ToLower(fe.Field())] = fe.Tag()
				}
			}
			writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), verrs)
			return
		}
		if res := mergeResults(
			ValidateEmail(req.Email),
			ValidatePhone(req.Phone, s.Cfg.PhoneMinDigits),
			ValidateTechStack(req.TechStack),
		); !res.Valid {
			writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), res.Errors)
			return
		}

		stack := make([]string, 0, len(req.TechStack))
		for _, t := range req.TechStack {
			if t = strings.TrimSpace(t); t != "" {
				stack = append(stack, t)
			}
		}
		session, err := s.Assessment.Start(r.Context(), domain.CandidateProfile{
			FullName:          strings.TrimSpace(req.FullName),
			Email:             strings.TrimSpace(req.Email),
			Phone:             strings.TrimSpace(req.Phone),
			YearsOfExperience: req.YearsOfExperience,
			DesiredPosition:   strings.TrimSpace(req.DesiredPosition),
			Location:          strings.TrimSpace(req.Location),
			TechStack:         stack,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"id":         session.ID,
			"created_at": session.CreatedAt,
		})
	}
}

func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if res := ValidateSessionID(id); !res.Valid {
		writeError(w, r, fmt.Errorf("%w: invalid session id", domain.ErrInvalidArgument), res.Errors)
		return "", false
	}
	return id, true
}

// NextQuestionHandler returns the question the candidate should answer next.
func (s *Server) NextQuestionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}
		q, err := s.Assessment.NextQuestion(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"question": q})
	}
}

// AnswerHandler records an answer or a skip for the pending question.
func (s *Server) AnswerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		var req struct {
			Text string `json:"text"`
			Skip bool   `json:"skip"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}

		var (
			session *domain.Session
			err     error
		)
		if req.Skip {
			session, err = s.Assessment.Skip(r.Context(), id)
		} else {
			session, err = s.Assessment.SubmitAnswer(r.Context(), id, req.Text)
		}
		if err != nil {
			writeError(w, r, err, nil)
			return
		}

		resp := map[string]any{
			"questions_asked": session.QuestionsAsked,
			"completed":       session.Completed,
		}
		if session.Completed {
			resp["decision"] = session.Decision
		} else if !req.Skip {
			if last := lastAnswered(session); last != "" {
				snap := session.Sentiments[last]
				resp["score"] = session.Scores[last]
				resp["sentiment"] = map[string]any{
					"category": snap.Category,
					"feedback": usecase.SentimentFeedback(snap),
				}
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func lastAnswered(s *domain.Session) string {
	for i := len(s.AskOrder) - 1; i >= 0; i-- {
		if _, ok := s.Answers[s.AskOrder[i].Text]; ok {
			return s.AskOrder[i].Text
		}
	}
	return ""
}

// CompleteHandler force-finishes an open session.
func (s *Server) CompleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}
		session, err := s.Assessment.CompleteNow(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"decision":   session.Decision,
			"confidence": session.Confidence,
			"reasoning":  session.Reasoning,
		})
	}
}

// ResetHandler discards a session entirely.
func (s *Server) ResetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}
		if err := s.Assessment.Reset(r.Context(), id); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ReportHandler returns the final report as JSON.
func (s *Server) ReportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}
		rep, err := s.Assessment.Report(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		b, err := usecase.RenderJSON(rep)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	}
}

// ReportTextHandler returns the final report as a plain-text download.
func (s *Server) ReportTextHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}
		rep, err := s.Assessment.Report(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="assessment_report.txt"`)
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, usecase.RenderText(rep))
	}
}

// ResumeUploadHandler accepts a multipart resume, extracts and parses it, and
// when a session_id form field is present cross-checks the parse against the
// intake profile.
func (s *Server) ResumeUploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			writeError(w, r, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument), nil)
			return
		}
		maxBytes := s.Cfg.MaxUploadMB * 1024 * 1024
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "too large") {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{
					Code: "INVALID_ARGUMENT", Message: "payload too large",
					Details: map[string]any{"max_mb": s.Cfg.MaxUploadMB},
				}})
				return
			}
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		file, header, err := r.FormFile("resume")
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: resume file required", domain.ErrInvalidArgument), map[string]string{"field": "resume"})
			return
		}
		defer func() { _ = file.Close() }()

		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: resume read: %v", domain.ErrInvalidArgument, err), nil)
			return
		}

		if !allowedExt(header.Filename) {
			writeJSON(w, http.StatusUnsupportedMediaType, errorEnvelope{Error: apiError{
				Code: "INVALID_ARGUMENT", Message: "unsupported media type (extension)",
				Details: map[string]any{"filename": header.Filename},
			}})
			return
		}
		mt := mimetype.Detect(data)
		if !allowedMIMEFor(mt.String(), header.Filename) {
			writeJSON(w, http.StatusUnsupportedMediaType, errorEnvelope{Error: apiError{
				Code: "INVALID_ARGUMENT", Message: "unsupported media type (content)",
				Details: map[string]any{"mime": mt.String(), "filename": header.Filename},
			}})
			return
		}

		tmp, err := os.CreateTemp("", "resume-*"+filepath.Ext(header.Filename))
		if err != nil {
			writeError(w, r, fmt.Errorf("resume temp file: %w", err), nil)
			return
		}
		defer func() { _ = os.Remove(tmp.Name()); _ = tmp.Close() }()
		if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
			writeError(w, r, fmt.Errorf("resume temp write: %w", err), nil)
			return
		}

		profile, _, err := s.Resume.ExtractAndParse(r.Context(), header.Filename, tmp.Name())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}

		resp := map[string]any{"profile": profile}
		if profile == nil {
			resp["note"] = "Resume parsing is unavailable without a model credential."
		}
		if sid := r.FormValue("session_id"); sid != "" && profile != nil {
			if session, err := s.Assessment.Store.Get(r.Context(), sid); err == nil {
				resp["consistency"] = s.Resume.CheckConsistency(session.Profile, profile)
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// VerifyCredentialHandler checks a model API key with a live round trip.
func (s *Server) VerifyCredentialHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
		var req struct {
			APIKey string `json:"api_key" validate:"required"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		if err := getValidator().Struct(req); err != nil {
			writeError(w, r, fmt.Errorf("%w: api_key is required", domain.ErrInvalidArgument), nil)
			return
		}
		ok, msg := ai.VerifyCredential(r.Context(), s.Cfg, req.APIKey)
		writeJSON(w, http.StatusOK, map[string]any{"valid": ok, "message": msg})
	}
}

// HealthzHandler reports liveness.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyzHandler probes the Tika dependency.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, 1)
		if s.TikaCheck != nil {
			if err := s.TikaCheck(ctx); err != nil {
				checks = append(checks, check{Name: "tika", OK: false, Details: err.Error()})
			} else {
				checks = append(checks, check{Name: "tika", OK: true})
			}
		}
		st := http.StatusOK
		for _, c := range checks {
			if !c.OK {
				st = http.StatusServiceUnavailable
				break
			}
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
