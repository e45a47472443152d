package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/pkg/apperrors"
)

// ApplicationService manages job applications
type ApplicationService struct {
	appRepo ApplicationStore
	jobRepo JobStore
	now     Clock
	logger  zerolog.Logger
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(appRepo ApplicationStore, jobRepo JobStore, logger zerolog.Logger) *ApplicationService {
	return &ApplicationService{
		appRepo: appRepo,
		jobRepo: jobRepo,
		now:     time.Now,
		logger:  logger,
	}
}

// Apply records a pending application of studentID for jobID. Applying
// twice fails with ErrAlreadyApplied.
func (s *ApplicationService) Apply(ctx context.Context, studentID, jobID int64) (*models.JobApplication, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.DeadlinePassed(s.now()) {
		return nil, apperrors.ErrDeadlinePassed
	}

	app, err := s.appRepo.Create(ctx, studentID, jobID)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("studentID", studentID).Int64("jobID", jobID).Msg("Application submitted")
	return app, nil
}

// ListByStudent returns the jobs studentID applied for
func (s *ApplicationService) ListByStudent(ctx context.Context, studentID int64) ([]models.AppliedJob, error) {
	return s.appRepo.ListByStudent(ctx, studentID)
}

// ListByJob returns the applicants of an existing job
func (s *ApplicationService) ListByJob(ctx context.Context, jobID int64) ([]models.Applicant, error) {
	if _, err := s.jobRepo.GetByID(ctx, jobID); err != nil {
		return nil, err
	}
	return s.appRepo.ListByJob(ctx, jobID)
}

// UpdateStatus moves an application to a new review status
func (s *ApplicationService) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) (*models.JobApplication, error) {
	if !status.IsValid() {
		return nil, apperrors.NewValidationError("unknown application status")
	}
	app, err := s.appRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("applicationID", id).Str("status", string(status)).Msg("Application status updated")
	return app, nil
}
