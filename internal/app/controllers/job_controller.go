package controllers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/services"
	"github.com/yigit/placement/internal/middleware"
)

// JobDocumentField is the multipart field carrying a job's PDF
const JobDocumentField = "pdfFile"

// JobService is the job logic used by JobController
type JobService interface {
	Create(ctx context.Context, in *services.NewJobInput) (*dto.CreateJobResponse, error)
	List(ctx context.Context) ([]models.Job, error)
	ForStudent(ctx context.Context, studentID int64) ([]models.Job, error)
	Delete(ctx context.Context, jobID int64) error
	DocumentPath(name string) (string, error)
}

// JobController handles job postings
type JobController struct {
	jobService JobService
	logger     zerolog.Logger
}

// NewJobController creates a new JobController
func NewJobController(jobService JobService, logger zerolog.Logger) *JobController {
	return &JobController{
		jobService: jobService,
		logger:     logger,
	}
}

// Create posts a job
// @Summary Post a job
// @Description Creates a job from a multipart form with an optional PDF and optionally emails the targeted students
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param company formData string true "Company"
// @Param departments formData string true "JSON array or repeated values"
// @Param requirements formData string false "JSON array or repeated values"
// @Param minCGPA formData number false "Minimum CGPA"
// @Param deadline formData string false "YYYY-MM-DD"
// @Param excludePlaced formData bool false "Hide from placed students"
// @Param sendEmail formData bool false "Announce by email"
// @Param pdfFile formData file false "Job description PDF"
// @Success 201 {object} dto.APIResponse{data=dto.CreateJobResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Router /admin/jobs [post]
func (c *JobController) Create(ctx *gin.Context) {
	var form dto.CreateJobForm
	if err := ctx.ShouldBind(&form); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid job form")
		bindError(ctx, err)
		return
	}

	var document *multipart.FileHeader
	if fh, err := ctx.FormFile(JobDocumentField); err == nil {
		document = fh
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		bindError(ctx, err)
		return
	}

	resp, err := c.jobService.Create(ctx.Request.Context(), &services.NewJobInput{
		Form:         form,
		Departments:  ctx.PostFormArray("departments"),
		Requirements: ctx.PostFormArray("requirements"),
		Document:     document,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// List returns every job
// @Summary List jobs
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.JobResponse}
// @Router /admin/jobs [get]
func (c *JobController) List(ctx *gin.Context) {
	jobs, err := c.jobService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewJobResponses(jobs)))
}

// Delete removes a job with its applications and document
// @Summary Delete a job
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /admin/jobs/{id} [delete]
func (c *JobController) Delete(ctx *gin.Context) {
	jobID, ok := parseIDParam(ctx, "id", "Job")
	if !ok {
		return
	}

	if err := c.jobService.Delete(ctx.Request.Context(), jobID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewInfoResponse("Job deleted successfully"))
}

// FilteredForStudent returns the jobs a given student can see
// @Summary Jobs visible to a student
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.JobResponse}
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /admin/filtered-jobs/{studentId} [get]
func (c *JobController) FilteredForStudent(ctx *gin.Context) {
	studentID, ok := parseIDParam(ctx, "studentId", "Student")
	if !ok {
		return
	}
	c.respondForStudent(ctx, studentID)
}

// Available returns the jobs visible to the calling student
// @Summary Available jobs
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.JobResponse}
// @Router /student/jobs/available [get]
func (c *JobController) Available(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	c.respondForStudent(ctx, userID)
}

func (c *JobController) respondForStudent(ctx *gin.Context, studentID int64) {
	jobs, err := c.jobService.ForStudent(ctx.Request.Context(), studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewJobResponses(jobs)))
}

// Document streams a job's PDF
// @Summary Download job document
// @Tags student
// @Produce application/pdf
// @Security BearerAuth
// @Param filename path string true "Stored file name"
// @Success 200 {file} file
// @Failure 404 {object} dto.ErrorResponse "Document not found"
// @Router /student/jobs/pdf/{filename} [get]
func (c *JobController) Document(ctx *gin.Context) {
	path, err := c.jobService.DocumentPath(ctx.Param("filename"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Header("Content-Type", "application/pdf")
	ctx.File(path)
}
