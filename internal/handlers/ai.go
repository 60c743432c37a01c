package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/nadiaharb/apply-wise/internal/ai"
	"github.com/nadiaharb/apply-wise/internal/middleware"
	"github.com/nadiaharb/apply-wise/internal/models"
	"github.com/nadiaharb/apply-wise/internal/store"
)

// AI groups the LLM-backed endpoints: resume matching, cover letter
// generation, and skill gap analysis. All of them are Pro features.
type AI struct {
	provider ai.Provider
	jobs     *store.JobStore
	letters  *store.CoverLetterStore
}

// NewAI creates a new AI handler group.
func NewAI(provider ai.Provider, jobs *store.JobStore, letters *store.CoverLetterStore) *AI {
	return &AI{provider: provider, jobs: jobs, letters: letters}
}

type aiRequest struct {
	JobID      string `json:"jobId"`
	ResumeText string `json:"resumeText"`
	Tone       string `json:"tone"`
}

// loadJobForAI validates the shared request fields and loads the owned job.
// Writes the error response and returns nil when the caller should stop.
func (h *AI) loadJobForAI(w http.ResponseWriter, r *http.Request, req *aiRequest) *models.Job {
	if req.JobID == "" || req.ResumeText == "" {
		respondError(w, http.StatusBadRequest, "jobId and resumeText are required")
		return nil
	}
	if msg := validateResume(req.ResumeText); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return nil
	}

	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Job not found")
		return nil
	}

	job, err := h.jobs.FindByID(jobID)
	if err != nil {
		slog.Error("job lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return nil
	}
	if job == nil {
		respondError(w, http.StatusNotFound, "Job not found")
		return nil
	}
	if job.UserID != middleware.UserIDFromCtx(r.Context()) {
		respondError(w, http.StatusForbidden, "Not authorized")
		return nil
	}
	return job
}

const matchPromptFmt = `You are a professional ATS resume reviewer.

Compare the resume below against the job description and return a JSON response with exactly this structure:
{
  "score": <number 0-100>,
  "summary": "<2 sentence overall assessment>",
  "strengths": ["<strength 1>", "<strength 2>", "<strength 3>"],
  "gaps": ["<gap 1>", "<gap 2>", "<gap 3>"],
  "suggestions": [
    { "section": "<resume section>", "tip": "<specific actionable improvement>" }
  ]
}

Return ONLY the JSON. No markdown, no explanation.

JOB DESCRIPTION:
%s

RESUME:
%s`

// Match handles POST /api/ai/match. It scores the resume against the job
// description and stores the score on the job.
func (h *AI) Match(w http.ResponseWriter, r *http.Request) {
	var req aiRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	job := h.loadJobForAI(w, r, &req)
	if job == nil {
		return
	}
	if job.JobDescription == nil || *job.JobDescription == "" {
		respondError(w, http.StatusBadRequest, "Add a job description first")
		return
	}

	prompt := fmt.Sprintf(matchPromptFmt, *job.JobDescription, req.ResumeText)

	raw, err := h.provider.Generate(r.Context(), prompt, 0.3)
	if err != nil {
		slog.Error("resume match generation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	var analysis map[string]any
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		respondError(w, http.StatusInternalServerError, "AI returned invalid response, try again")
		return
	}

	if score, ok := analysis["score"].(float64); ok {
		if err := h.jobs.SetMatchScore(job.ID, int(score)); err != nil {
			slog.Error("save match score failed", "error", err)
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{"analysis": analysis})
}

const coverLetterPromptFmt = `Write a compelling, tailored cover letter for the following job application.

Tone: %s
Company: %s
Role: %s

Job Description:
%s

Candidate Resume:
%s

Instructions:
- Keep it to 3-4 paragraphs
- Open with a strong hook, not "I am applying for..."
- Reference specific requirements from the job description
- Highlight 2-3 relevant achievements from the resume
- Close with a clear call to action
- Do NOT include date, address headers, or "Sincerely" signature
- Return only the cover letter text, nothing else`

// CoverLetter handles POST /api/ai/cover-letter. The generated letter is
// saved to the user's collection automatically.
func (h *AI) CoverLetter(w http.ResponseWriter, r *http.Request) {
	var req aiRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Tone == "" {
		req.Tone = "professional"
	}

	job := h.loadJobForAI(w, r, &req)
	if job == nil {
		return
	}

	description := fmt.Sprintf("%s position at %s", job.Role, job.Company)
	if job.JobDescription != nil && *job.JobDescription != "" {
		description = *job.JobDescription
	}

	prompt := fmt.Sprintf(coverLetterPromptFmt, req.Tone, job.Company, job.Role, description, req.ResumeText)

	content, err := h.provider.Generate(r.Context(), prompt, 0.7)
	if err != nil {
		slog.Error("cover letter generation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	saved, err := h.letters.Create(job.UserID, job.Role, job.Company, content)
	if err != nil {
		slog.Error("save cover letter failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"coverLetter": saved})
}

const skillGapPromptFmt = `You are a career coach analyzing skill gaps between a candidate's resume and a job description.

Return a JSON response with exactly this structure:
{
  "requiredSkills": ["<skill 1>", "<skill 2>", ...],
  "candidateSkills": ["<skill 1>", "<skill 2>", ...],
  "missingSkills": ["<skill 1>", "<skill 2>", ...],
  "recommendations": [
    {
      "skill": "<missing skill>",
      "resource": "<specific course, project, or action to learn it>",
      "priority": "high" | "medium" | "low"
    }
  ]
}

Return ONLY the JSON. No markdown, no explanation.

JOB DESCRIPTION:
%s

RESUME:
%s`

// SkillGaps handles POST /api/ai/skill-gaps.
func (h *AI) SkillGaps(w http.ResponseWriter, r *http.Request) {
	var req aiRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	job := h.loadJobForAI(w, r, &req)
	if job == nil {
		return
	}
	if job.JobDescription == nil || *job.JobDescription == "" {
		respondError(w, http.StatusBadRequest, "Add a job description first")
		return
	}

	prompt := fmt.Sprintf(skillGapPromptFmt, *job.JobDescription, req.ResumeText)

	raw, err := h.provider.Generate(r.Context(), prompt, 0.3)
	if err != nil {
		slog.Error("skill gap generation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	var analysis map[string]any
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		respondError(w, http.StatusInternalServerError, "AI returned invalid response, try again")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"analysis": analysis})
}
