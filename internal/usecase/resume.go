package usecase

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/Abiads/talentscout/internal/config"
	"github.com/Abiads/talentscout/internal/domain"
)

// ResumeProfile is the structured extraction from a resume document. The seven
// fields mirror the intake form so a parsed resume can pre-fill it; fields the
// model could not find carry their defaults.
type ResumeProfile struct {
	FullName        string   `json:"full_name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	YearsExperience int      `json:"years_experience"`
	DesiredPosition string   `json:"desired_position"`
	Location        string   `json:"location"`
	TechStack       []string `json:"tech_stack"`
}

// ResumeService extracts text from uploaded resumes, parses it into a profile,
// and cross-checks it against the intake form.
type ResumeService struct {
	Extractor domain.TextExtractor
	AI        domain.AIClient
	Cfg       config.Config
}

// NewResumeService wires the extractor and a conversation-profile client.
func NewResumeService(extractor domain.TextExtractor, ai domain.AIClient, cfg config.Config) *ResumeService {
	return &ResumeService{Extractor: extractor, AI: ai, Cfg: cfg}
}

// truncateTokens clips text to at most budget tokens under the cl100k_base
// encoding. On encoder failure the text passes through untouched.
func truncateTokens(text string, budget int) string {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		slog.Warn("token encoder unavailable, passing resume text through", slog.Any("error", err))
		return text
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= budget {
		return text
	}
	return enc.Decode(tokens[:budget])
}

var jsonFencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// Parse extracts a structured profile from raw resume text. The step is skipped
// entirely under the stub backend: stub output is not parseable JSON, and a nil
// profile tells callers to fall back to the intake form alone.
func (r *ResumeService) Parse(ctx domain.Context, text string) (*ResumeProfile, error) {
	if r.AI.Backend() == domain.BackendStub {
		slog.Info("resume parsing skipped, no model credential configured")
		return nil, nil
	}

	text = truncateTokens(text, r.Cfg.ResumeTokenBudget)
	prompt := fmt.Sprintf(`You are an expert HR assistant. Extract the candidate information from the resume below.
Return ONLY a valid JSON object with exactly these keys:
- "full_name": string (or empty string if not found)
- "email": string (or empty string if not found)
- "phone": string (or empty string if not found)
- "years_experience": integer (0 if not found)
- "desired_position": string (infer from experience or objective, default to "Software Engineer")
- "location": string (or empty string if not found)
- "tech_stack": list of strings (all technical skills, languages, frameworks)

Resume:
%s`, text)

	resp, err := r.AI.Invoke(ctx, prompt, nil)
	if err != nil {
		return nil, fmt.Errorf("op=resume.Parse: %w", err)
	}
	if m := jsonFencePattern.FindStringSubmatch(resp); m != nil {
		resp = m[1]
	}
	resp = strings.TrimSpace(resp)

	var p ResumeProfile
	if err := json.Unmarshal([]byte(resp), &p); err != nil {
		return nil, fmt.Errorf("op=resume.Parse: unparseable model output: %w", domain.ErrInternal)
	}
	applyDefaults(&p)
	return &p, nil
}

func applyDefaults(p *ResumeProfile) {
	if strings.TrimSpace(p.DesiredPosition) == "" {
		p.DesiredPosition = "Software Engineer"
	}
	if p.TechStack == nil {
		p.TechStack = []string{}
	}
}

// ConsistencyResult summarizes how well the resume backs the intake form.
type ConsistencyResult struct {
	Adjustment float64  `json:"adjustment"`
	Notes      []string `json:"notes"`
}

// CheckConsistency cross-checks a parsed resume against the intake profile and
// returns a bounded score adjustment with human-readable notes. A nil resume
// profile (stub backend) yields a zero adjustment.
func (r *ResumeService) CheckConsistency(profile domain.CandidateProfile, resume *ResumeProfile) ConsistencyResult {
	if resume == nil {
		return ConsistencyResult{Notes: []string{"No resume data available for cross-checking."}}
	}

	var adj float64
	var notes []string

	// Experience: compare claimed years against what the resume indicates.
	if resume.YearsExperience > 0 {
		diff := profile.YearsOfExperience - resume.YearsExperience
		if diff < 0 {
			diff = -diff
		}
		if diff > 2 {
			adj += r.Cfg.ExperienceMismatchPenalty
			notes = append(notes, fmt.Sprintf("Claimed %d years of experience but the resume indicates about %d.", profile.YearsOfExperience, resume.YearsExperience))
		} else {
			adj += r.Cfg.ResumeMatchBonus
			notes = append(notes, "Claimed experience is consistent with the resume.")
		}
	}

	// Skills: every declared technology should appear in the resume tech stack.
	if len(resume.TechStack) > 0 {
		joined := strings.ToLower(strings.Join(resume.TechStack, " "))
		missing := 0
		for _, tech := range profile.TechStack {
			if !strings.Contains(joined, strings.ToLower(tech)) {
				missing++
				notes = append(notes, fmt.Sprintf("Declared skill %q does not appear in the resume.", tech))
			}
		}
		if missing > 0 {
			adj += r.Cfg.SkillMismatchPenalty * float64(missing)
		} else if len(profile.TechStack) > 0 {
			notes = append(notes, "All declared skills are backed by the resume.")
		}
	}

	// Position: the declared target role should relate to what the resume suggests.
	if resume.DesiredPosition != "" {
		overlap := QuestionSimilarity(profile.DesiredPosition, resume.DesiredPosition)
		if overlap == 0 {
			adj += r.Cfg.ResumeMismatchPenalty
			notes = append(notes, fmt.Sprintf("Desired position %q shares no terms with the role the resume suggests, %q.", profile.DesiredPosition, resume.DesiredPosition))
		} else {
			adj += r.Cfg.ResumeMatchBonus
			notes = append(notes, "Desired position aligns with the resume.")
		}
	}

	// Clamp so a resume check can inform, never dominate, the outcome.
	if adj > 0.2 {
		adj = 0.2
	}
	if adj < -0.5 {
		adj = -0.5
	}
	return ConsistencyResult{Adjustment: adj, Notes: notes}
}

// ExtractAndParse runs the full pipeline for an uploaded file: Tika text
// extraction, then structured parsing.
func (r *ResumeService) ExtractAndParse(ctx domain.Context, fileName, path string) (*ResumeProfile, string, error) {
	text, err := r.Extractor.ExtractPath(ctx, fileName, path)
	if err != nil {
		return nil, "", fmt.Errorf("op=resume.ExtractAndParse: %w", err)
	}
	p, err := r.Parse(ctx, text)
	if err != nil {
		return nil, text, err
	}
	return p, text, nil
}
