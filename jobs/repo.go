package jobs

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no job with the requested ID exists
var ErrNotFound = errors.New("no export job with that ID exists")

// ExportJob is one recorded export. Operation holds the platform operation
// name for drive exports and the download URL for download exports.
type ExportJob struct {
	ID          uuid.UUID `db:"id" json:"id"`
	AreaName    string    `db:"area_name" json:"areaName"`
	Destination string    `db:"destination" json:"destination"`
	State       string    `db:"state" json:"state"`
	Operation   string    `db:"operation" json:"operation"`
	StartDate   string    `db:"start_date" json:"startDate"`
	EndDate     string    `db:"end_date" json:"endDate"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// NewExportJob builds a job record with a fresh ID and timestamps
func NewExportJob(areaName, destination, state, operation, startDate, endDate string) *ExportJob {
	now := time.Now().UTC()
	return &ExportJob{
		ID:          uuid.New(),
		AreaName:    areaName,
		Destination: destination,
		State:       state,
		Operation:   operation,
		StartDate:   startDate,
		EndDate:     endDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Insert saves a new export job record
func (repo *Repository) Insert(job *ExportJob) error {
	query := `INSERT INTO export_jobs (id, area_name, destination, state, operation, start_date, end_date, created_at, updated_at)
	          VALUES (:id, :area_name, :destination, :state, :operation, :start_date, :end_date, :created_at, :updated_at)`

	if _, err := repo.dbConn.NamedExec(query, job); err != nil {
		return fmt.Errorf("inserting export job %s: %w", job.ID, err)
	}
	return nil
}

// List retrieves all export jobs, newest first
func (repo *Repository) List() ([]*ExportJob, error) {
	var jobs []*ExportJob
	query := `SELECT * FROM export_jobs ORDER BY created_at DESC`

	if err := repo.dbConn.Select(&jobs, query); err != nil {
		return nil, fmt.Errorf("fetching export jobs: %w", err)
	}
	return jobs, nil
}

// Get retrieves a single export job by ID
func (repo *Repository) Get(id uuid.UUID) (*ExportJob, error) {
	var job ExportJob
	query := `SELECT * FROM export_jobs WHERE id = ?`

	err := repo.dbConn.Get(&job, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching export job %s: %w", id, err)
	}
	return &job, nil
}

// UpdateState overwrites the state of an existing job
func (repo *Repository) UpdateState(id uuid.UUID, state string) error {
	query := `UPDATE export_jobs SET state = ?, updated_at = ? WHERE id = ?`

	result, err := repo.dbConn.Exec(query, state, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating export job %s: %w", id, err)
	}
	if count, _ := result.RowsAffected(); count == 0 {
		return ErrNotFound
	}
	return nil
}
