package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/deptset"
	"github.com/yigit/placement/internal/pkg/email"
	"github.com/yigit/placement/internal/pkg/filestorage"
	"github.com/yigit/placement/internal/pkg/helpers"
)

const jobDocumentExt = ".pdf"

// NewJobInput carries a parsed job posting form
type NewJobInput struct {
	Form         dto.CreateJobForm
	Departments  []string
	Requirements []string
	Document     *multipart.FileHeader
}

// JobService manages job postings
type JobService struct {
	jobRepo       JobStore
	bindTx        JobTxBinder
	transactor    db.Transactor
	profileRepo   ProfileStore
	authz         *appauth.AuthorizationService
	storage       filestorage.FileStorage
	notifications *NotificationService
	frontendURL   string
	logger        zerolog.Logger
}

// NewJobService creates a new JobService
func NewJobService(
	jobRepo JobStore,
	bindTx JobTxBinder,
	transactor db.Transactor,
	profileRepo ProfileStore,
	authz *appauth.AuthorizationService,
	storage filestorage.FileStorage,
	notifications *NotificationService,
	frontendURL string,
	logger zerolog.Logger,
) *JobService {
	return &JobService{
		jobRepo:       jobRepo,
		bindTx:        bindTx,
		transactor:    transactor,
		profileRepo:   profileRepo,
		authz:         authz,
		storage:       storage,
		notifications: notifications,
		frontendURL:   strings.TrimRight(frontendURL, "/"),
		logger:        logger,
	}
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Create posts a job, stores its optional PDF and, when requested, emails
// the targeted students. A failed notification never undoes the posting.
func (s *JobService) Create(ctx context.Context, in *NewJobInput) (*dto.CreateJobResponse, error) {
	departments, err := deptset.Normalize(deptset.FromForm(in.Departments))
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	deadline, err := helpers.ParseDate(in.Form.Deadline)
	if err != nil {
		return nil, apperrors.NewValidationError("deadline must be a date (YYYY-MM-DD)")
	}

	job := &models.Job{
		Title:         strings.TrimSpace(in.Form.Title),
		Company:       strings.TrimSpace(in.Form.Company),
		Location:      strings.TrimSpace(in.Form.Location),
		Salary:        strings.TrimSpace(in.Form.Salary),
		Description:   in.Form.Description,
		Requirements:  cleanList(deptset.FromForm(in.Requirements)),
		Departments:   departments,
		MinCGPA:       in.Form.MinCGPA,
		Deadline:      deadline,
		ExcludePlaced: in.Form.ExcludePlaced,
	}

	if in.Document != nil {
		name, err := s.storage.Save(in.Document, jobDocumentExt)
		if err != nil {
			if errors.Is(err, filestorage.ErrExtensionNotAllowed) {
				return nil, apperrors.NewValidationError("job document must be a PDF")
			}
			return nil, apperrors.NewUpstreamError("failed to store job document", err)
		}
		job.PDFPath = &name
	}

	job.ID, err = s.jobRepo.Create(ctx, job)
	if err != nil {
		if job.PDFPath != nil {
			s.removeDocument(*job.PDFPath)
		}
		return nil, err
	}
	s.logger.Info().Int64("jobID", job.ID).Str("company", job.Company).Msg("Job posted")

	stored, err := s.jobRepo.GetByID(ctx, job.ID)
	if err != nil {
		return nil, err
	}

	resp := &dto.CreateJobResponse{Job: dto.NewJobResponse(stored)}
	if in.Form.SendEmail {
		subject, body := email.JobEmail(email.JobPosting{
			Title:    stored.Title,
			Company:  stored.Company,
			Location: stored.Location,
			Salary:   stored.Salary,
			Deadline: helpers.FormatDate(stored.Deadline),
			URL:      s.frontendURL + "/student/jobs",
		})
		result, err := s.notifications.NotifyDepartments(ctx, stored.Departments, subject, body)
		if err != nil {
			s.logger.Error().Err(err).Int64("jobID", job.ID).Msg("Failed to notify students about job")
			result = &dto.FanOutResult{Failed: []dto.FanOutFailure{{Reason: "failed to load recipients"}}}
		}
		resp.Notification = result
	}
	return resp, nil
}

// List returns every job, newest first
func (s *JobService) List(ctx context.Context) ([]models.Job, error) {
	return s.jobRepo.List(ctx)
}

// ForStudent returns the jobs visible to a student: those targeting the
// student's department or all departments. Jobs that exclude placed
// students are hidden from a placed student.
func (s *JobService) ForStudent(ctx context.Context, studentID int64) ([]models.Job, error) {
	user, err := s.authz.RequireStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	placed, err := s.isPlaced(ctx, studentID)
	if err != nil {
		return nil, err
	}

	jobs, err := s.jobRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	visible := make([]models.Job, 0, len(jobs))
	for _, job := range jobs {
		var raw interface{} = job.RawDepartments
		if len(job.RawDepartments) == 0 {
			raw = job.Departments
		}
		if !deptset.Visible(raw, user.Department) {
			continue
		}
		if job.ExcludePlaced && placed {
			continue
		}
		visible = append(visible, job)
	}
	return visible, nil
}

func (s *JobService) isPlaced(ctx context.Context, studentID int64) (bool, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, studentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrProfileNotFound) {
			return false, nil
		}
		return false, err
	}
	return profile.IsPlaced(), nil
}

// Delete removes a job with all its applications in one transaction, then
// deletes the stored document. A leftover document is logged, not returned.
func (s *JobService) Delete(ctx context.Context, jobID int64) error {
	var document *string
	var removed int64

	err := s.transactor.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		store := s.bindTx(tx)

		var err error
		if document, err = store.LockDocumentPath(ctx, jobID); err != nil {
			return err
		}
		if removed, err = store.DeleteApplications(ctx, jobID); err != nil {
			return err
		}
		return store.Delete(ctx, jobID)
	})
	if err != nil {
		return err
	}

	s.logger.Info().Int64("jobID", jobID).Int64("applications", removed).Msg("Job deleted")
	if document != nil && *document != "" {
		s.removeDocument(*document)
	}
	return nil
}

func (s *JobService) removeDocument(name string) {
	if err := s.storage.DeleteFile(name); err != nil {
		s.logger.Warn().Err(err).Str("file", name).Msg("Failed to delete job document")
	}
}

// DocumentPath resolves a stored job document for download
func (s *JobService) DocumentPath(name string) (string, error) {
	path, err := s.storage.Path(name)
	if err != nil {
		if errors.Is(err, filestorage.ErrFileNotFound) || errors.Is(err, filestorage.ErrInvalidName) {
			return "", apperrors.NewResourceNotFoundError("document not found")
		}
		return "", fmt.Errorf("failed to resolve document: %w", err)
	}
	return path, nil
}

