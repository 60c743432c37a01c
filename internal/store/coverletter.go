package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/nadiaharb/apply-wise/internal/models"
)

const coverLetterColumns = `id, user_id, job_title, company, content, created_at`

// CoverLetterStore handles persistence of generated cover letters.
type CoverLetterStore struct {
	db *sql.DB
}

// NewCoverLetterStore creates a new CoverLetterStore.
func NewCoverLetterStore(db *sql.DB) *CoverLetterStore {
	return &CoverLetterStore{db: db}
}

// ListByUser returns the user's cover letters, newest first.
func (s *CoverLetterStore) ListByUser(userID uuid.UUID) ([]models.CoverLetter, error) {
	rows, err := s.db.Query(`
		SELECT `+coverLetterColumns+` FROM cover_letters
		WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cover letters: %w", err)
	}
	defer rows.Close()

	var letters []models.CoverLetter
	for rows.Next() {
		var cl models.CoverLetter
		if err := rows.Scan(&cl.ID, &cl.UserID, &cl.JobTitle, &cl.Company, &cl.Content, &cl.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cover letter: %w", err)
		}
		letters = append(letters, cl)
	}
	return letters, rows.Err()
}

// FindByID retrieves one cover letter. Returns nil if not found.
func (s *CoverLetterStore) FindByID(id uuid.UUID) (*models.CoverLetter, error) {
	cl := &models.CoverLetter{}
	err := s.db.QueryRow(`
		SELECT `+coverLetterColumns+` FROM cover_letters WHERE id = $1
	`, id).Scan(&cl.ID, &cl.UserID, &cl.JobTitle, &cl.Company, &cl.Content, &cl.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find cover letter: %w", err)
	}
	return cl, nil
}

// Create saves a generated cover letter.
func (s *CoverLetterStore) Create(userID uuid.UUID, jobTitle, company, content string) (*models.CoverLetter, error) {
	cl := &models.CoverLetter{}
	err := s.db.QueryRow(`
		INSERT INTO cover_letters (user_id, job_title, company, content)
		VALUES ($1, $2, $3, $4)
		RETURNING `+coverLetterColumns+`
	`, userID, jobTitle, company, content).Scan(
		&cl.ID, &cl.UserID, &cl.JobTitle, &cl.Company, &cl.Content, &cl.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create cover letter: %w", err)
	}
	return cl, nil
}

// Delete removes a cover letter by ID.
func (s *CoverLetterStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM cover_letters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete cover letter: %w", err)
	}
	return nil
}
