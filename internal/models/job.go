package models

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents where an application sits in the pipeline.
type JobStatus string

const (
	JobStatusWishlist  JobStatus = "wishlist"
	JobStatusApplied   JobStatus = "applied"
	JobStatusInterview JobStatus = "interview"
	JobStatusOffer     JobStatus = "offer"
	JobStatusRejected  JobStatus = "rejected"
)

// ValidJobStatus reports whether s is one of the known pipeline statuses.
func ValidJobStatus(s JobStatus) bool {
	switch s {
	case JobStatusWishlist, JobStatusApplied, JobStatusInterview, JobStatusOffer, JobStatusRejected:
		return true
	}
	return false
}

// Job represents a tracked job application belonging to one user.
type Job struct {
	ID             uuid.UUID   `json:"id"`
	UserID         uuid.UUID   `json:"userId"`
	Company        string      `json:"company"`
	Role           string      `json:"role"`
	Status         JobStatus   `json:"status"`
	Notes          *string     `json:"notes"`
	JobDescription *string     `json:"jobDescription"`
	Industry       *string     `json:"industry"`
	MatchScore     *int        `json:"matchScore"`
	AppliedAt      *time.Time  `json:"appliedAt"`
	ResponseAt     *time.Time  `json:"responseAt"`
	Interviews     []Interview `json:"interviews"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// Interview represents a scheduled interview round for a job.
type Interview struct {
	ID        uuid.UUID  `json:"id"`
	JobID     uuid.UUID  `json:"jobId"`
	Type      string     `json:"type"` // phone, technical, onsite, final
	Date      *time.Time `json:"date"`
	Notes     *string    `json:"notes"`
	CreatedAt time.Time  `json:"createdAt"`
}

// CoverLetter is a generated cover letter saved for later reference.
type CoverLetter struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	JobTitle  string    `json:"jobTitle"`
	Company   string    `json:"company"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
