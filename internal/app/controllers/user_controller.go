package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/middleware"
	"github.com/yigit/placement/internal/pkg/bulkinput"
	"github.com/yigit/placement/internal/pkg/helpers"
)

// BulkUploadField is the multipart field carrying the invitation sheet
const BulkUploadField = "csvFile"

// InvitationService is the invitation logic used by UserController
type InvitationService interface {
	Invite(ctx context.Context, req *dto.InviteStudentRequest) (*dto.InvitationResponse, error)
	InviteBulk(ctx context.Context, rows []bulkinput.Row) dto.FanOutResult
	Verify(token string) (*dto.InvitationDetails, error)
}

// UserLister pages through accounts
type UserLister interface {
	ListUsers(ctx context.Context, role models.RoleType, offset uint64, limit int) ([]models.User, int64, error)
}

// UserController handles invitations and account listings
type UserController struct {
	invitations InvitationService
	users       UserLister
	logger      zerolog.Logger
}

// NewUserController creates a new UserController
func NewUserController(invitations InvitationService, users UserLister, logger zerolog.Logger) *UserController {
	return &UserController{
		invitations: invitations,
		users:       users,
		logger:      logger,
	}
}

// Invite invites one student by email
// @Summary Invite a student
// @Description Creates a password-less student account when absent and emails a registration link
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.InviteStudentRequest true "Invitee"
// @Success 201 {object} dto.APIResponse{data=dto.InvitationResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 409 {object} dto.ErrorResponse "Account already registered"
// @Failure 500 {object} dto.ErrorResponse "Email could not be sent"
// @Router /users/register [post]
func (c *UserController) Invite(ctx *gin.Context) {
	var req dto.InviteStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid invitation payload")
		bindError(ctx, err)
		return
	}

	resp, err := c.invitations.Invite(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// InviteBulk invites every student listed in an uploaded sheet
// @Summary Bulk invite students
// @Description Reads email,department rows from a .csv or .xlsx upload and invites each independently
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param csvFile formData file true "CSV or XLSX sheet"
// @Success 200 {object} dto.APIResponse{data=dto.FanOutResult}
// @Failure 400 {object} dto.ErrorResponse "Missing, empty or unsupported file"
// @Router /admin/register-students [post]
func (c *UserController) InviteBulk(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile(BulkUploadField)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "File is required").
			WithField(BulkUploadField)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to open uploaded sheet")
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer file.Close()

	rows, err := bulkinput.Parse(fileHeader.Filename, file)
	if err != nil {
		code := dto.ErrorCodeBadRequest
		if errors.Is(err, bulkinput.ErrUnsupportedFormat) {
			code = dto.ErrorCodeUnsupportedFile
		}
		c.logger.Warn().Err(err).Str("file", fileHeader.Filename).Msg("Unreadable invitation sheet")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.NewErrorDetail(code, err.Error())))
		return
	}
	if len(rows) == 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "The file contains no invitations")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	result := c.invitations.InviteBulk(ctx.Request.Context(), rows)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// VerifyInvitation returns the email and department behind an invitation token
// @Summary Verify invitation
// @Tags users
// @Produce json
// @Param token query string true "Invitation token"
// @Success 200 {object} dto.APIResponse{data=dto.InvitationDetails}
// @Failure 401 {object} dto.ErrorResponse "Invalid or expired token"
// @Router /users/invitations/verify [get]
func (c *UserController) VerifyInvitation(ctx *gin.Context) {
	details, err := c.invitations.Verify(ctx.Query("token"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(details))
}

// ListStudents lists student accounts
// @Summary List students
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /users/students [get]
func (c *UserController) ListStudents(ctx *gin.Context) {
	c.list(ctx, models.RoleStudent)
}

// ListAll lists every account
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /users/all [get]
func (c *UserController) ListAll(ctx *gin.Context) {
	c.list(ctx, "")
}

func (c *UserController) list(ctx *gin.Context, role models.RoleType) {
	page, size := helpers.ParsePaginationParams(ctx)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	users, total, err := c.users.ListUsers(ctx.Request.Context(), role, offset, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i]))
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.PaginatedResponse{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}))
}
