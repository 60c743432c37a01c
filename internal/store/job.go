package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/nadiaharb/apply-wise/internal/models"
)

const jobColumns = `id, user_id, company, role, status, notes, job_description, industry, match_score, applied_at, response_at, created_at, updated_at`

// JobFilter narrows a job listing. Zero values mean "no constraint".
type JobFilter struct {
	Status   models.JobStatus
	Industry string
	Search   string // matches company or role, case-insensitive substring
}

// JobStats is the aggregate view behind the dashboard stats endpoint.
type JobStats struct {
	Total        int                      `json:"total"`
	StatusCounts map[models.JobStatus]int `json:"statusCounts"`
	ResponseRate int                      `json:"responseRate"`
	Recent       []models.Job             `json:"recent"`
}

// MonthlyPoint is one month of the application funnel.
type MonthlyPoint struct {
	Month      string `json:"month"`
	Applied    int    `json:"applied"`
	Interviews int    `json:"interviews"`
	Offers     int    `json:"offers"`
}

// JobStore handles all job and interview database operations.
type JobStore struct {
	db *sql.DB
}

// NewJobStore creates a new JobStore with the given database connection.
func NewJobStore(db *sql.DB) *JobStore {
	return &JobStore{db: db}
}

func scanJob(scan func(dest ...any) error) (*models.Job, error) {
	j := &models.Job{}
	err := scan(
		&j.ID, &j.UserID, &j.Company, &j.Role, &j.Status, &j.Notes,
		&j.JobDescription, &j.Industry, &j.MatchScore, &j.AppliedAt,
		&j.ResponseAt, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return j, nil
}

// ListByUser returns the user's jobs, newest first, with interviews
// attached, optionally narrowed by the filter.
func (s *JobStore) ListByUser(userID uuid.UUID, filter JobFilter) ([]models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE user_id = $1`
	args := []any{userID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.Industry != "" {
		args = append(args, filter.Industry)
		query += ` AND industry = $` + strconv.Itoa(len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := strconv.Itoa(len(args))
		query += ` AND (company ILIKE $` + n + ` OR role ILIKE $` + n + `)`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		j, err := scanJob(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range jobs {
		interviews, err := s.listInterviews(jobs[i].ID)
		if err != nil {
			return nil, err
		}
		jobs[i].Interviews = interviews
	}
	return jobs, nil
}

// FindByID retrieves a job with its interviews. Returns nil if not found.
func (s *JobStore) FindByID(id uuid.UUID) (*models.Job, error) {
	j, err := scanJob(s.db.QueryRow(`
		SELECT `+jobColumns+` FROM jobs WHERE id = $1
	`, id).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find job by id: %w", err)
	}

	interviews, err := s.listInterviews(j.ID)
	if err != nil {
		return nil, err
	}
	j.Interviews = interviews
	return j, nil
}

// CountByUser returns how many jobs the user is tracking. Used to enforce
// the free plan limit.
func (s *JobStore) CountByUser(userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM jobs WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return count, nil
}

// Create inserts a new job and returns it with the generated ID.
func (s *JobStore) Create(j *models.Job) (*models.Job, error) {
	created, err := scanJob(s.db.QueryRow(`
		INSERT INTO jobs (user_id, company, role, status, notes, job_description, industry, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+jobColumns+`
	`, j.UserID, j.Company, j.Role, j.Status, j.Notes, j.JobDescription, j.Industry, j.AppliedAt).Scan)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return created, nil
}

// Update persists all mutable fields of the job and returns the stored row.
func (s *JobStore) Update(j *models.Job) (*models.Job, error) {
	updated, err := scanJob(s.db.QueryRow(`
		UPDATE jobs
		SET company = $1, role = $2, status = $3, notes = $4, job_description = $5,
		    industry = $6, match_score = $7, applied_at = $8, response_at = $9,
		    updated_at = NOW()
		WHERE id = $10
		RETURNING `+jobColumns+`
	`, j.Company, j.Role, j.Status, j.Notes, j.JobDescription,
		j.Industry, j.MatchScore, j.AppliedAt, j.ResponseAt, j.ID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}

	interviews, err := s.listInterviews(updated.ID)
	if err != nil {
		return nil, err
	}
	updated.Interviews = interviews
	return updated, nil
}

// SetMatchScore stores the AI resume match score on a job.
func (s *JobStore) SetMatchScore(id uuid.UUID, score int) error {
	_, err := s.db.Exec(`
		UPDATE jobs SET match_score = $1, updated_at = NOW() WHERE id = $2
	`, score, id)
	if err != nil {
		return fmt.Errorf("set match score: %w", err)
	}
	return nil
}

// Delete removes a job; its interviews go with it via the cascade.
func (s *JobStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	return nil
}

// Stats aggregates the user's pipeline: total jobs, counts per status,
// response rate, and the five most recent entries.
func (s *JobStore) Stats(userID uuid.UUID) (*JobStats, error) {
	stats := &JobStats{
		StatusCounts: map[models.JobStatus]int{
			models.JobStatusWishlist:  0,
			models.JobStatusApplied:   0,
			models.JobStatusInterview: 0,
			models.JobStatusOffer:     0,
			models.JobStatusRejected:  0,
		},
	}

	rows, err := s.db.Query(`
		SELECT status, COUNT(*) FROM jobs WHERE user_id = $1 GROUP BY status
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status models.JobStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats.StatusCounts[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Response rate: of everything submitted, how much got any reply.
	responded := stats.StatusCounts[models.JobStatusInterview] +
		stats.StatusCounts[models.JobStatusOffer] +
		stats.StatusCounts[models.JobStatusRejected]
	totalApplied := stats.StatusCounts[models.JobStatusApplied] + responded
	if totalApplied > 0 {
		stats.ResponseRate = int(float64(responded)/float64(totalApplied)*100 + 0.5)
	}

	recentRows, err := s.db.Query(`
		SELECT `+jobColumns+` FROM jobs
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT 5
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("recent jobs: %w", err)
	}
	defer recentRows.Close()

	for recentRows.Next() {
		j, err := scanJob(recentRows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan recent job: %w", err)
		}
		stats.Recent = append(stats.Recent, *j)
	}
	return stats, recentRows.Err()
}

// MonthlyFunnel groups the user's jobs by creation month and counts the
// applied/interview/offer statuses, oldest month first.
func (s *JobStore) MonthlyFunnel(userID uuid.UUID) ([]MonthlyPoint, error) {
	rows, err := s.db.Query(`
		SELECT to_char(date_trunc('month', created_at), 'Mon YYYY'),
		       COUNT(*) FILTER (WHERE status = 'applied'),
		       COUNT(*) FILTER (WHERE status = 'interview'),
		       COUNT(*) FILTER (WHERE status = 'offer')
		FROM jobs
		WHERE user_id = $1
		GROUP BY date_trunc('month', created_at)
		ORDER BY date_trunc('month', created_at)
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("monthly funnel: %w", err)
	}
	defer rows.Close()

	var points []MonthlyPoint
	for rows.Next() {
		var p MonthlyPoint
		if err := rows.Scan(&p.Month, &p.Applied, &p.Interviews, &p.Offers); err != nil {
			return nil, fmt.Errorf("scan funnel point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// --- Interviews ---

const interviewColumns = `id, job_id, type, date, notes, created_at`

func scanInterview(scan func(dest ...any) error) (*models.Interview, error) {
	iv := &models.Interview{}
	if err := scan(&iv.ID, &iv.JobID, &iv.Type, &iv.Date, &iv.Notes, &iv.CreatedAt); err != nil {
		return nil, err
	}
	return iv, nil
}

func (s *JobStore) listInterviews(jobID uuid.UUID) ([]models.Interview, error) {
	rows, err := s.db.Query(`
		SELECT `+interviewColumns+` FROM interviews
		WHERE job_id = $1 ORDER BY date ASC NULLS LAST, created_at ASC
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}
	defer rows.Close()

	// Always an array in the JSON, never null.
	interviews := []models.Interview{}
	for rows.Next() {
		iv, err := scanInterview(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan interview: %w", err)
		}
		interviews = append(interviews, *iv)
	}
	return interviews, rows.Err()
}

// AddInterview inserts an interview round for a job.
func (s *JobStore) AddInterview(jobID uuid.UUID, ivType string, date *time.Time, notes *string) (*models.Interview, error) {
	iv, err := scanInterview(s.db.QueryRow(`
		INSERT INTO interviews (job_id, type, date, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING `+interviewColumns+`
	`, jobID, ivType, date, notes).Scan)
	if err != nil {
		return nil, fmt.Errorf("add interview: %w", err)
	}
	return iv, nil
}

// UpdateInterview modifies an interview, scoped to its job so a caller can
// never reach across jobs. Returns nil if no such interview exists.
func (s *JobStore) UpdateInterview(jobID, interviewID uuid.UUID, ivType string, date *time.Time, notes *string) (*models.Interview, error) {
	iv, err := scanInterview(s.db.QueryRow(`
		UPDATE interviews SET type = $1, date = $2, notes = $3
		WHERE id = $4 AND job_id = $5
		RETURNING `+interviewColumns+`
	`, ivType, date, notes, interviewID, jobID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update interview: %w", err)
	}
	return iv, nil
}

// FindInterview retrieves one interview scoped to its job. Returns nil if
// not found.
func (s *JobStore) FindInterview(jobID, interviewID uuid.UUID) (*models.Interview, error) {
	iv, err := scanInterview(s.db.QueryRow(`
		SELECT `+interviewColumns+` FROM interviews WHERE id = $1 AND job_id = $2
	`, interviewID, jobID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find interview: %w", err)
	}
	return iv, nil
}

// DeleteInterview removes an interview scoped to its job.
func (s *JobStore) DeleteInterview(jobID, interviewID uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM interviews WHERE id = $1 AND job_id = $2`, interviewID, jobID)
	if err != nil {
		return fmt.Errorf("delete interview: %w", err)
	}
	return nil
}
