package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/nadiaharb/apply-wise/internal/database"
	"github.com/nadiaharb/apply-wise/internal/middleware"
	"github.com/nadiaharb/apply-wise/internal/models"
	"github.com/nadiaharb/apply-wise/internal/store"
	"github.com/nadiaharb/apply-wise/internal/token"
)

// scriptedProvider returns a canned response and records the prompt and
// temperature it was called with.
type scriptedProvider struct {
	response    string
	err         error
	prompt      string
	temperature float64
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	p.prompt = prompt
	p.temperature = temperature
	return p.response, p.err
}

func (p *scriptedProvider) Name() string { return "scripted" }

// aiEnv serves the AI routes against the test database with a scripted
// provider. Like the jobs tests, these skip without PostgreSQL.
type aiEnv struct {
	srv      *httptest.Server
	provider *scriptedProvider
	jobs     *store.JobStore
	letters  *store.CoverLetterStore
	jobsEnv  *jobsEnv
}

func newAIEnv(t *testing.T) *aiEnv {
	t.Helper()

	db, err := database.Connect(testDSN())
	if err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	users := store.NewUserStore(db)
	jobs := store.NewJobStore(db)
	letters := store.NewCoverLetterStore(db)
	issuer := token.NewIssuer(testSigningSecret)
	provider := &scriptedProvider{}
	h := NewAI(provider, jobs, letters)
	lettersHandler := NewCoverLetters(letters)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(issuer))
		r.Route("/api/ai", func(r chi.Router) {
			r.Use(middleware.RequirePro(users))
			r.Post("/match", h.Match)
			r.Post("/cover-letter", h.CoverLetter)
			r.Post("/skill-gaps", h.SkillGaps)
		})
		r.Get("/api/cover-letters", lettersHandler.List)
		r.Delete("/api/cover-letters/{id}", lettersHandler.Delete)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &aiEnv{
		srv:      srv,
		provider: provider,
		jobs:     jobs,
		letters:  letters,
		jobsEnv:  &jobsEnv{srv: srv, db: db, users: users, jobs: jobs},
	}
}

// newProUser creates a Pro-plan account with one job carrying a description.
func (e *aiEnv) newProUser(t *testing.T) (string, *models.Job) {
	t.Helper()

	user, session := e.jobsEnv.newUser(t)
	if _, err := e.jobsEnv.db.Exec(`UPDATE users SET plan = 'pro' WHERE id = $1`, user.ID); err != nil {
		t.Fatalf("upgrade user: %v", err)
	}

	desc := "We are hiring a Go engineer with PostgreSQL experience."
	job, err := e.jobs.Create(&models.Job{
		UserID:         user.ID,
		Company:        "Acme",
		Role:           "Go Engineer",
		Status:         models.JobStatusApplied,
		JobDescription: &desc,
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	return session, job
}

func TestAI_FreePlanBlocked(t *testing.T) {
	env := newAIEnv(t)
	_, session := env.jobsEnv.newUser(t)

	status, body := doJSON(t, http.MethodPost, env.srv.URL+"/api/ai/match", session, map[string]any{
		"jobId":      "irrelevant",
		"resumeText": "irrelevant",
	})
	if status != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", status)
	}
	if body["upgrade"] != true {
		t.Errorf("expected upgrade marker, got %v", body)
	}
}

func TestAI_Match(t *testing.T) {
	env := newAIEnv(t)
	session, job := env.newProUser(t)
	env.provider.response = `{"score": 82, "summary": "Strong fit.", "strengths": [], "gaps": [], "suggestions": []}`

	status, body := doJSON(t, http.MethodPost, env.srv.URL+"/api/ai/match", session, map[string]any{
		"jobId":      job.ID.String(),
		"resumeText": "Five years of Go and PostgreSQL.",
	})
	if status != http.StatusOK {
		t.Fatalf("status = %d, body = %v", status, body)
	}

	analysis, _ := body["analysis"].(map[string]any)
	if analysis["score"] != float64(82) {
		t.Errorf("score = %v, want 82", analysis["score"])
	}

	if env.provider.temperature != 0.3 {
		t.Errorf("temperature = %v, want 0.3", env.provider.temperature)
	}
	if !strings.Contains(env.provider.prompt, *job.JobDescription) {
		t.Error("prompt should embed the job description")
	}
	if !strings.Contains(env.provider.prompt, "Five years of Go") {
		t.Error("prompt should embed the resume")
	}

	// The score is persisted on the job.
	stored, err := env.jobs.FindByID(job.ID)
	if err != nil || stored == nil {
		t.Fatalf("reload job: %v", err)
	}
	if stored.MatchScore == nil || *stored.MatchScore != 82 {
		t.Errorf("stored match score = %v, want 82", stored.MatchScore)
	}
}

func TestAI_Match_RequiresDescription(t *testing.T) {
	env := newAIEnv(t)
	session, job := env.newProUser(t)

	if _, err := env.jobsEnv.db.Exec(`UPDATE jobs SET job_description = NULL WHERE id = $1`, job.ID); err != nil {
		t.Fatalf("clear description: %v", err)
	}

	status, body := doJSON(t, http.MethodPost, env.srv.URL+"/api/ai/match", session, map[string]any{
		"jobId":      job.ID.String(),
		"resumeText": "Resume text.",
	})
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400, body = %v", status, body)
	}
}

func TestAI_Match_InvalidModelOutput(t *testing.T) {
	env := newAIEnv(t)
	session, job := env.newProUser(t)
	env.provider.response = "Sure! Here is your analysis: ..."

	status, body := doJSON(t, http.MethodPost, env.srv.URL+"/api/ai/match", session, map[string]any{
		"jobId":      job.ID.String(),
		"resumeText": "Resume text.",
	})
	if status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", status)
	}
	if msg, _ := body["message"].(string); !strings.Contains(msg, "try again") {
		t.Errorf("message = %q", msg)
	}
}

func TestAI_CoverLetterIsSaved(t *testing.T) {
	env := newAIEnv(t)
	session, job := env.newProUser(t)
	env.provider.response = "Dear hiring team, I build reliable Go services."

	status, body := doJSON(t, http.MethodPost, env.srv.URL+"/api/ai/cover-letter", session, map[string]any{
		"jobId":      job.ID.String(),
		"resumeText": "Resume text.",
		"tone":       "enthusiastic",
	})
	if status != http.StatusOK {
		t.Fatalf("status = %d, body = %v", status, body)
	}
	if env.provider.temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", env.provider.temperature)
	}
	if !strings.Contains(env.provider.prompt, "Tone: enthusiastic") {
		t.Error("prompt should carry the requested tone")
	}

	letter, _ := body["coverLetter"].(map[string]any)
	letterID, _ := letter["id"].(string)
	if letterID == "" {
		t.Fatalf("no saved letter in %v", body)
	}
	if letter["content"] != env.provider.response {
		t.Errorf("content = %v", letter["content"])
	}

	// It shows up in the user's collection and can be deleted.
	status, body = doJSON(t, http.MethodGet, env.srv.URL+"/api/cover-letters", session, nil)
	if status != http.StatusOK {
		t.Fatalf("list letters: status = %d", status)
	}
	if letters, _ := body["coverLetters"].([]any); len(letters) != 1 {
		t.Errorf("listed %d letters, want 1", len(letters))
	}

	status, _ = doJSON(t, http.MethodDelete, env.srv.URL+"/api/cover-letters/"+letterID, session, nil)
	if status != http.StatusOK {
		t.Fatalf("delete letter: status = %d", status)
	}
	status, _ = doJSON(t, http.MethodDelete, env.srv.URL+"/api/cover-letters/"+letterID, session, nil)
	if status != http.StatusNotFound {
		t.Errorf("re-delete letter: status = %d, want 404", status)
	}
}

func TestAI_SkillGaps(t *testing.T) {
	env := newAIEnv(t)
	session, job := env.newProUser(t)
	env.provider.response = `{"requiredSkills": ["Go"], "candidateSkills": ["Go"], "missingSkills": [], "recommendations": []}`

	status, body := doJSON(t, http.MethodPost, env.srv.URL+"/api/ai/skill-gaps", session, map[string]any{
		"jobId":      job.ID.String(),
		"resumeText": "Resume text.",
	})
	if status != http.StatusOK {
		t.Fatalf("status = %d, body = %v", status, body)
	}
	analysis, _ := body["analysis"].(map[string]any)
	if analysis["requiredSkills"] == nil {
		t.Errorf("analysis = %v", analysis)
	}
}

func TestAI_MissingFields(t *testing.T) {
	env := newAIEnv(t)
	session, _ := env.newProUser(t)

	status, _ := doJSON(t, http.MethodPost, env.srv.URL+"/api/ai/match", session, map[string]any{
		"resumeText": "Resume text.",
	})
	if status != http.StatusBadRequest {
		t.Errorf("missing jobId: status = %d, want 400", status)
	}
}
