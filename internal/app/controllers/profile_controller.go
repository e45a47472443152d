package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/middleware"
)

// ProfileService is the profile logic used by ProfileController
type ProfileService interface {
	Save(ctx context.Context, sessionUserID *int64, req *dto.ProfileRequest) (*models.Profile, bool, error)
	Get(ctx context.Context, userID int64) (*models.Profile, error)
}

// ProfileController handles the detailed student profile
type ProfileController struct {
	profileService ProfileService
	logger         zerolog.Logger
}

// NewProfileController creates a new ProfileController
func NewProfileController(profileService ProfileService, logger zerolog.Logger) *ProfileController {
	return &ProfileController{
		profileService: profileService,
		logger:         logger,
	}
}

// Save creates or replaces a student profile
// @Summary Save student profile
// @Description Upserts the profile of the session user, or of user_id when the request is anonymous
// @Tags student
// @Accept json
// @Produce json
// @Param request body dto.ProfileRequest true "Profile"
// @Success 201 {object} dto.APIResponse{data=dto.ProfileSaveResponse} "Profile created"
// @Success 200 {object} dto.APIResponse{data=dto.ProfileSaveResponse} "Profile updated"
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 403 {object} dto.ErrorResponse "user_id does not match the session"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /student/profile [post]
// @Router /student/profile [put]
func (c *ProfileController) Save(ctx *gin.Context) {
	var req dto.ProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid profile payload")
		bindError(ctx, err)
		return
	}

	var sessionUserID *int64
	if id, ok := middleware.UserID(ctx); ok {
		sessionUserID = &id
	}

	profile, created, err := c.profileService.Save(ctx.Request.Context(), sessionUserID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	ctx.JSON(status, dto.NewSuccessResponse(dto.ProfileSaveResponse{
		Created: created,
		Profile: dto.NewProfileResponse(profile),
	}))
}

// Get returns the caller's profile
// @Summary Get own profile
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ProfileResponse}
// @Failure 404 {object} dto.ErrorResponse "Profile not found"
// @Router /student/profile [get]
func (c *ProfileController) Get(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	profile, err := c.profileService.Get(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewProfileResponse(profile)))
}
