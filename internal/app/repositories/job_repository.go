package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/deptset"
	"github.com/yigit/placement/internal/pkg/logger"
)

var jobColumns = []string{
	"id", "title", "company", "location", "salary", "description", "requirements", "departments",
	"min_cgpa::float8", "deadline", "exclude_placed", "pdf_path", "posted_date",
}

// JobRepository handles job postings
type JobRepository struct {
	db db.DBTX
}

// NewJobRepository creates a new JobRepository
func NewJobRepository(conn db.DBTX) *JobRepository {
	return &JobRepository{db: conn}
}

// WithTx returns a copy bound to tx
func (r *JobRepository) WithTx(tx pgx.Tx) *JobRepository {
	return &JobRepository{db: tx}
}

func scanJob(row pgx.Row) (*models.Job, error) {
	var j models.Job
	err := row.Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.Salary, &j.Description, &j.Requirements,
		&j.RawDepartments, &j.MinCGPA, &j.Deadline, &j.ExcludePlaced, &j.PDFPath, &j.PostedDate)
	if err != nil {
		return nil, err
	}
	if set, ok := deptset.Decode(j.RawDepartments); ok {
		j.Departments = set
	} else {
		logger.Warn().Int64("jobID", j.ID).Msg("Job has an unreadable department set")
	}
	return &j, nil
}

// Create inserts a job, storing departments in their single JSON encoding
func (r *JobRepository) Create(ctx context.Context, job *models.Job) (int64, error) {
	departments, err := deptset.Encode(job.Departments)
	if err != nil {
		return 0, fmt.Errorf("failed to encode departments: %w", err)
	}
	requirements := job.Requirements
	if requirements == nil {
		requirements = []string{}
	}

	sql, args, err := psql.Insert("jobs").
		Columns("title", "company", "location", "salary", "description", "requirements", "departments",
			"min_cgpa", "deadline", "exclude_placed", "pdf_path").
		Values(job.Title, job.Company, job.Location, job.Salary, job.Description, requirements, string(departments),
			job.MinCGPA, job.Deadline, job.ExcludePlaced, job.PDFPath).
		Suffix("RETURNING id, posted_date").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create job query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&job.ID, &job.PostedDate); err != nil {
		logger.Error().Err(err).Str("title", job.Title).Msg("Error executing create job query")
		return 0, fmt.Errorf("error creating job: %w", err)
	}
	return job.ID, nil
}

// GetByID retrieves a job
func (r *JobRepository) GetByID(ctx context.Context, id int64) (*models.Job, error) {
	sql, args, err := psql.Select(jobColumns...).From("jobs").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get job query: %w", err)
	}

	job, err := scanJob(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, fmt.Errorf("error retrieving job: %w", err)
	}
	return job, nil
}

// List returns all jobs, newest posting first
func (r *JobRepository) List(ctx context.Context) ([]models.Job, error) {
	sql, args, err := psql.Select(jobColumns...).From("jobs").OrderBy("posted_date DESC", "id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list jobs query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// DeleteApplications removes every application for jobID
func (r *JobRepository) DeleteApplications(ctx context.Context, jobID int64) (int64, error) {
	sql, args, err := psql.Delete("job_applications").Where(squirrel.Eq{"job_id": jobID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete applications query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting applications: %w", err)
	}
	return tag.RowsAffected(), nil
}

// LockDocumentPath reads and row-locks the job, returning its document path
func (r *JobRepository) LockDocumentPath(ctx context.Context, jobID int64) (*string, error) {
	sql, args, err := psql.Select("pdf_path").From("jobs").Where(squirrel.Eq{"id": jobID}).Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build lock job query: %w", err)
	}

	var path *string
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&path); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, fmt.Errorf("error locking job: %w", err)
	}
	return path, nil
}

// Delete removes the job row
func (r *JobRepository) Delete(ctx context.Context, jobID int64) error {
	sql, args, err := psql.Delete("jobs").Where(squirrel.Eq{"id": jobID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete job query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrJobNotFound
	}
	return nil
}
