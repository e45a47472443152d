package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/middleware"
	"github.com/yigit/placement/internal/pkg/apperrors"
)

// ApplicationService is the application logic used by ApplicationController
type ApplicationService interface {
	Apply(ctx context.Context, studentID, jobID int64) (*models.JobApplication, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.AppliedJob, error)
	ListByJob(ctx context.Context, jobID int64) ([]models.Applicant, error)
	UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) (*models.JobApplication, error)
}

// ApplicationController handles job applications
type ApplicationController struct {
	appService ApplicationService
	logger     zerolog.Logger
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(appService ApplicationService, logger zerolog.Logger) *ApplicationController {
	return &ApplicationController{
		appService: appService,
		logger:     logger,
	}
}

// Apply submits the calling student's application for a job
// @Summary Apply for a job
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 201 {object} dto.APIResponse{data=dto.ApplicationResponse}
// @Failure 400 {object} dto.ErrorResponse "Deadline passed"
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Failure 409 {object} dto.ErrorResponse "Already applied"
// @Router /student/jobs/{id}/apply [post]
func (c *ApplicationController) Apply(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	jobID, ok := parseIDParam(ctx, "id", "Job")
	if !ok {
		return
	}

	app, err := c.appService.Apply(ctx.Request.Context(), userID, jobID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewApplicationResponse(app)))
}

// Applied lists the jobs the calling student applied for
// @Summary Applied jobs
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.AppliedJobResponse}
// @Router /student/jobs/applied [get]
func (c *ApplicationController) Applied(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	items, err := c.appService.ListByStudent(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewAppliedJobResponses(items)))
}

// Status lists a student's application statuses. Students may only read
// their own; admins may read anyone's.
// @Summary Application statuses
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.ApplicationStatusResponse}
// @Failure 403 {object} dto.ErrorResponse "Another student's statuses"
// @Router /student/jobs/{id}/status [get]
func (c *ApplicationController) Status(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	studentID, ok := parseIDParam(ctx, "id", "Student")
	if !ok {
		return
	}

	role, _ := ctx.Get(middleware.ContextRole)
	if studentID != userID && role != string(models.RoleAdmin) {
		middleware.HandleAPIError(ctx, apperrors.NewForbiddenError("you can only view your own applications"))
		return
	}

	items, err := c.appService.ListByStudent(ctx.Request.Context(), studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewApplicationStatusResponses(items)))
}

// Applicants lists the applications for a job with the applicants' profiles
// @Summary Job applicants
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.ApplicantResponse}
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /admin/jobs/{id}/applications [get]
func (c *ApplicationController) Applicants(ctx *gin.Context) {
	jobID, ok := parseIDParam(ctx, "id", "Job")
	if !ok {
		return
	}

	items, err := c.appService.ListByJob(ctx.Request.Context(), jobID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewApplicantResponses(items)))
}

// UpdateStatus sets an application's review status
// @Summary Update application status
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.UpdateApplicationStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationResponse}
// @Failure 400 {object} dto.ErrorResponse "Unknown status"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /admin/applications/{id}/status [patch]
func (c *ApplicationController) UpdateStatus(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Application")
	if !ok {
		return
	}

	var req dto.UpdateApplicationStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	app, err := c.appService.UpdateStatus(ctx.Request.Context(), id, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewApplicationResponse(app)))
}
