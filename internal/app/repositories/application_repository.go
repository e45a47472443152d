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
	"github.com/yigit/placement/internal/pkg/dberrors"
	"github.com/yigit/placement/internal/pkg/deptset"
	"github.com/yigit/placement/internal/pkg/logger"
)

// ApplicationRepository handles job applications
type ApplicationRepository struct {
	db db.DBTX
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(conn db.DBTX) *ApplicationRepository {
	return &ApplicationRepository{db: conn}
}

// Create records a pending application. The (student_id, job_id) unique
// constraint makes a second attempt fail with ErrAlreadyApplied.
func (r *ApplicationRepository) Create(ctx context.Context, studentID, jobID int64) (*models.JobApplication, error) {
	sql, args, err := psql.Insert("job_applications").
		Columns("student_id", "job_id", "status").
		Values(studentID, jobID, models.ApplicationPending).
		Suffix("RETURNING id, status, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build create application query: %w", err)
	}

	app := &models.JobApplication{StudentID: studentID, JobID: jobID}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&app.ID, &app.Status, &app.CreatedAt)
	if err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, dberrors.ApplicationStudentJobKey):
			logger.Warn().Int64("studentID", studentID).Int64("jobID", jobID).Msg("Duplicate job application rejected")
			return nil, apperrors.ErrAlreadyApplied
		case dberrors.IsForeignKeyError(err, dberrors.ApplicationJobFK):
			return nil, apperrors.ErrJobNotFound
		case dberrors.IsForeignKeyError(err, dberrors.ApplicationStudentFK):
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("studentID", studentID).Int64("jobID", jobID).Msg("Error executing create application query")
		return nil, fmt.Errorf("error creating application: %w", err)
	}
	return app, nil
}

// ListByStudent returns the student's applications with their jobs
func (r *ApplicationRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.AppliedJob, error) {
	cols := []string{"a.id", "a.student_id", "a.job_id", "a.status", "a.created_at"}
	for _, c := range jobColumns {
		cols = append(cols, "j."+c)
	}

	sql, args, err := psql.Select(cols...).
		From("job_applications a").
		Join("jobs j ON j.id = a.job_id").
		Where(squirrel.Eq{"a.student_id": studentID}).
		OrderBy("a.created_at DESC", "a.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list applications query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing applications: %w", err)
	}
	defer rows.Close()

	var out []models.AppliedJob
	for rows.Next() {
		var item models.AppliedJob
		a, j := &item.Application, &item.Job
		if err := rows.Scan(&a.ID, &a.StudentID, &a.JobID, &a.Status, &a.CreatedAt,
			&j.ID, &j.Title, &j.Company, &j.Location, &j.Salary, &j.Description, &j.Requirements,
			&j.RawDepartments, &j.MinCGPA, &j.Deadline, &j.ExcludePlaced, &j.PDFPath, &j.PostedDate); err != nil {
			return nil, fmt.Errorf("error scanning application: %w", err)
		}
		j.Departments, _ = deptset.Decode(j.RawDepartments)
		out = append(out, item)
	}
	return out, rows.Err()
}

// ListByJob returns the applicants of a job with their user and profile records
func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID int64) ([]models.Applicant, error) {
	cols := []string{
		"a.id", "a.student_id", "a.job_id", "a.status", "a.created_at",
		"u.id", "u.email", "COALESCE(u.name, '')", "COALESCE(u.department, '')",
		"p.id", "p.full_name", "p.roll_number", "p.department", "p.cgpa::float8", "p.backlogs", "p.phone_number", "p.placement_status",
	}

	sql, args, err := psql.Select(cols...).
		From("job_applications a").
		Join("users u ON u.id = a.student_id").
		LeftJoin("profile p ON p.user_id = a.student_id").
		Where(squirrel.Eq{"a.job_id": jobID}).
		OrderBy("a.created_at", "a.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list applicants query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing applicants: %w", err)
	}
	defer rows.Close()

	var out []models.Applicant
	for rows.Next() {
		var item models.Applicant
		var p struct {
			id                                     *int64
			fullName, roll, dept, phone, placement *string
			cgpa                                   *float64
			backlogs                               *int
		}
		a, u := &item.Application, &item.User
		if err := rows.Scan(&a.ID, &a.StudentID, &a.JobID, &a.Status, &a.CreatedAt,
			&u.ID, &u.Email, &u.Name, &u.Department,
			&p.id, &p.fullName, &p.roll, &p.dept, &p.cgpa, &p.backlogs, &p.phone, &p.placement); err != nil {
			return nil, fmt.Errorf("error scanning applicant: %w", err)
		}
		u.Role = models.RoleStudent
		if p.id != nil {
			item.Profile = &models.Profile{
				ID:              *p.id,
				UserID:          u.ID,
				FullName:        deref(p.fullName),
				RollNumber:      deref(p.roll),
				Department:      deref(p.dept),
				PhoneNumber:     deref(p.phone),
				PlacementStatus: deref(p.placement),
			}
			if p.cgpa != nil {
				item.Profile.CGPA = *p.cgpa
			}
			if p.backlogs != nil {
				item.Profile.Backlogs = *p.backlogs
			}
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// UpdateStatus changes the review status of an application
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) (*models.JobApplication, error) {
	sql, args, err := psql.Update("job_applications").
		Set("status", status).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING id, student_id, job_id, status, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update application query: %w", err)
	}

	var app models.JobApplication
	err = r.db.QueryRow(ctx, sql, args...).Scan(&app.ID, &app.StudentID, &app.JobID, &app.Status, &app.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("error updating application: %w", err)
	}
	return &app, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
