package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nadiaharb/apply-wise/internal/middleware"
	"github.com/nadiaharb/apply-wise/internal/models"
	"github.com/nadiaharb/apply-wise/internal/store"
)

// CoverLetters groups the saved cover letter endpoints.
type CoverLetters struct {
	letters *store.CoverLetterStore
}

// NewCoverLetters creates a new CoverLetters handler group.
func NewCoverLetters(letters *store.CoverLetterStore) *CoverLetters {
	return &CoverLetters{letters: letters}
}

// List handles GET /api/cover-letters.
func (h *CoverLetters) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromCtx(r.Context())

	letters, err := h.letters.ListByUser(userID)
	if err != nil {
		slog.Error("list cover letters failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if letters == nil {
		letters = []models.CoverLetter{}
	}

	respondJSON(w, http.StatusOK, map[string]any{"coverLetters": letters})
}

// Delete handles DELETE /api/cover-letters/{id}.
func (h *CoverLetters) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}

	letter, err := h.letters.FindByID(id)
	if err != nil {
		slog.Error("cover letter lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if letter == nil {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	if letter.UserID != userID {
		respondError(w, http.StatusForbidden, "Not authorized")
		return
	}

	if err := h.letters.Delete(id); err != nil {
		slog.Error("delete cover letter failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Deleted"})
}
