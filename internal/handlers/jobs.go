package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nadiaharb/apply-wise/internal/cache"
	"github.com/nadiaharb/apply-wise/internal/middleware"
	"github.com/nadiaharb/apply-wise/internal/models"
	"github.com/nadiaharb/apply-wise/internal/store"
)

// Jobs groups the job tracking and interview endpoints.
type Jobs struct {
	jobs  *store.JobStore
	users middleware.PlanDirectory
	stats *cache.StatsCache // may be nil
}

// NewJobs creates a new Jobs handler group. stats may be nil to run without
// aggregate caching.
func NewJobs(jobs *store.JobStore, users middleware.PlanDirectory, stats *cache.StatsCache) *Jobs {
	return &Jobs{jobs: jobs, users: users, stats: stats}
}

// invalidateStats drops the user's cached aggregates after a job write.
func (h *Jobs) invalidateStats(r *http.Request, userID uuid.UUID) {
	if h.stats != nil {
		h.stats.Invalidate(r.Context(), userID)
	}
}

// ownedJob loads the job at {id} and enforces ownership. Writes the error
// response and returns nil when the caller should stop.
func (h *Jobs) ownedJob(w http.ResponseWriter, r *http.Request, userID uuid.UUID) *models.Job {
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
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
	if job.UserID != userID {
		respondError(w, http.StatusForbidden, "Not authorized")
		return nil
	}
	return job
}

// List handles GET /api/jobs with optional status, industry, and search
// query filters.
func (h *Jobs) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromCtx(r.Context())

	filter := store.JobFilter{
		Status:   models.JobStatus(r.URL.Query().Get("status")),
		Industry: r.URL.Query().Get("industry"),
		Search:   r.URL.Query().Get("search"),
	}
	if filter.Status != "" && !models.ValidJobStatus(filter.Status) {
		respondError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	jobs, err := h.jobs.ListByUser(userID, filter)
	if err != nil {
		slog.Error("list jobs failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}

	respondJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

// Get handles GET /api/jobs/{id}.
func (h *Jobs) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromCtx(r.Context())

	job := h.ownedJob(w, r, userID)
	if job == nil {
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"job": job})
}

type jobRequest struct {
	Company        string     `json:"company"`
	Role           string     `json:"role"`
	Status         string     `json:"status"`
	Notes          *string    `json:"notes"`
	JobDescription *string    `json:"jobDescription"`
	Industry       *string    `json:"industry"`
	MatchScore     *int       `json:"matchScore"`
	AppliedAt      *time.Time `json:"appliedAt"`
	ResponseAt     *time.Time `json:"responseAt"`
}

// Create handles POST /api/jobs. Free-plan users are capped at a fixed
// number of tracked jobs.
func (h *Jobs) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromCtx(r.Context())

	var req jobRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if msg := validateJobFields(req.Company, req.Role); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if req.Status != "" && !models.ValidJobStatus(models.JobStatus(req.Status)) {
		respondError(w, http.StatusBadRequest, "Invalid status")
		return
	}
	if msg := validateJobText(req.Notes, req.JobDescription, req.Industry); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	user, err := h.users.FindByID(userID)
	if err != nil || user == nil {
		slog.Error("plan lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if !user.IsPro() {
		count, err := h.jobs.CountByUser(userID)
		if err != nil {
			slog.Error("job count failed", "error", err)
			respondError(w, http.StatusInternalServerError, "Something went wrong")
			return
		}
		if count >= models.FreePlanJobLimit {
			respondJSON(w, http.StatusForbidden, map[string]any{
				"message": "Free plan is limited to 10 jobs. Upgrade to Pro for unlimited.",
				"upgrade": true,
			})
			return
		}
	}

	status := models.JobStatus(req.Status)
	if status == "" {
		status = models.JobStatusWishlist
	}

	job, err := h.jobs.Create(&models.Job{
		UserID:         userID,
		Company:        req.Company,
		Role:           req.Role,
		Status:         status,
		Notes:          req.Notes,
		JobDescription: req.JobDescription,
		Industry:       req.Industry,
		AppliedAt:      req.AppliedAt,
	})
	if err != nil {
		slog.Error("create job failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	h.invalidateStats(r, userID)
	respondJSON(w, http.StatusCreated, map[string]any{"job": job})
}

// Update handles PATCH /api/jobs/{id}. Absent fields keep their stored
// values; explicit nulls clear the nullable ones.
func (h *Jobs) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromCtx(r.Context())

	job := h.ownedJob(w, r, userID)
	if job == nil {
		return
	}

	// Raw map distinguishes "absent" from "null" for the nullable fields.
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	var req jobRequest
	for key, val := range raw {
		field := map[string]any{
			"company":        &req.Company,
			"role":           &req.Role,
			"status":         &req.Status,
			"notes":          &req.Notes,
			"jobDescription": &req.JobDescription,
			"industry":       &req.Industry,
			"matchScore":     &req.MatchScore,
			"appliedAt":      &req.AppliedAt,
			"responseAt":     &req.ResponseAt,
		}[key]
		if field == nil {
			continue
		}
		if err := json.Unmarshal(val, field); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	if req.Status != "" && !models.ValidJobStatus(models.JobStatus(req.Status)) {
		respondError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	if req.Company != "" {
		job.Company = req.Company
	}
	if req.Role != "" {
		job.Role = req.Role
	}
	if req.Status != "" {
		job.Status = models.JobStatus(req.Status)
	}
	if _, ok := raw["notes"]; ok {
		job.Notes = req.Notes
	}
	if _, ok := raw["jobDescription"]; ok {
		job.JobDescription = req.JobDescription
	}
	if _, ok := raw["industry"]; ok {
		job.Industry = req.Industry
	}
	if _, ok := raw["matchScore"]; ok {
		job.MatchScore = req.MatchScore
	}
	if _, ok := raw["appliedAt"]; ok {
		job.AppliedAt = req.AppliedAt
	}
	if _, ok := raw["responseAt"]; ok {
		job.ResponseAt = req.ResponseAt
	}

	if msg := validateJobFields(job.Company, job.Role); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if msg := validateJobText(job.Notes, job.JobDescription, job.Industry); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := h.jobs.Update(job)
	if err != nil {
		slog.Error("update job failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if updated == nil {
		respondError(w, http.StatusNotFound, "Job not found")
		return
	}

	h.invalidateStats(r, userID)
	respondJSON(w, http.StatusOK, map[string]any{"job": updated})
}

// Delete handles DELETE /api/jobs/{id}.
func (h *Jobs) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromCtx(r.Context())

	job := h.ownedJob(w, r, userID)
	if job == nil {
		return
	}

	if err := h.jobs.Delete(job.ID); err != nil {
		slog.Error("delete job failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	h.invalidateStats(r, userID)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Job deleted"})
}

// Stats handles GET /api/jobs/stats. Results are cached per user for a
// short window.
func (h *Jobs) Stats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromCtx(r.Context())

	if h.stats != nil {
		if payload, ok := h.stats.Get(r.Context(), userID, "stats"); ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(payload)
			return
		}
	}

	stats, err := h.jobs.Stats(userID)
	if err != nil {
		slog.Error("job stats failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if stats.Recent == nil {
		stats.Recent = []models.Job{}
	}

	payload, err := json.Marshal(stats)
	if err != nil {
		slog.Error("marshal stats failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if h.stats != nil {
		h.stats.Set(r.Context(), userID, "stats", payload)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

type interviewRequest struct {
	Type  string     `json:"type"`
	Date  *time.Time `json:"date"`
	Notes *string    `json:"notes"`
}

// AddInterview handles POST /api/jobs/{id}/interviews. Adding a round also
// moves the job into the interview stage.
func (h *Jobs) AddInterview(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromCtx(r.Context())

	job := h.ownedJob(w, r, userID)
	if job == nil {
		return
	}

	var req interviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Date == nil || req.Type == "" {
		respondError(w, http.StatusBadRequest, "Date and type are required")
		return
	}
	if !validInterviewTypes[req.Type] {
		respondError(w, http.StatusBadRequest, "Invalid interview type")
		return
	}

	interview, err := h.jobs.AddInterview(job.ID, req.Type, req.Date, req.Notes)
	if err != nil {
		slog.Error("add interview failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	job.Status = models.JobStatusInterview
	if _, err := h.jobs.Update(job); err != nil {
		slog.Error("job status bump failed", "error", err)
	}

	h.invalidateStats(r, userID)
	respondJSON(w, http.StatusCreated, map[string]any{"interview": interview})
}

// UpdateInterview handles PATCH /api/jobs/{id}/interviews/{interviewId}.
func (h *Jobs) UpdateInterview(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromCtx(r.Context())

	job := h.ownedJob(w, r, userID)
	if job == nil {
		return
	}

	interviewID, err := uuid.Parse(chi.URLParam(r, "interviewId"))
	if err != nil {
		respondError(w, http.StatusNotFound, "Interview not found")
		return
	}

	existing, err := h.jobs.FindInterview(job.ID, interviewID)
	if err != nil {
		slog.Error("interview lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "Interview not found")
		return
	}

	var req interviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Type == "" {
		req.Type = existing.Type
	} else if !validInterviewTypes[req.Type] {
		respondError(w, http.StatusBadRequest, "Invalid interview type")
		return
	}
	if req.Date == nil {
		req.Date = existing.Date
	}
	if req.Notes == nil {
		req.Notes = existing.Notes
	}

	updated, err := h.jobs.UpdateInterview(job.ID, interviewID, req.Type, req.Date, req.Notes)
	if err != nil {
		slog.Error("update interview failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if updated == nil {
		respondError(w, http.StatusNotFound, "Interview not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"interview": updated})
}

// DeleteInterview handles DELETE /api/jobs/{id}/interviews/{interviewId}.
func (h *Jobs) DeleteInterview(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromCtx(r.Context())

	job := h.ownedJob(w, r, userID)
	if job == nil {
		return
	}

	interviewID, err := uuid.Parse(chi.URLParam(r, "interviewId"))
	if err != nil {
		respondError(w, http.StatusNotFound, "Interview not found")
		return
	}

	existing, err := h.jobs.FindInterview(job.ID, interviewID)
	if err != nil {
		slog.Error("interview lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "Interview not found")
		return
	}

	if err := h.jobs.DeleteInterview(job.ID, interviewID); err != nil {
		slog.Error("delete interview failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Interview deleted"})
}
