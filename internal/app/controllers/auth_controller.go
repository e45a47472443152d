package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/middleware"
	"github.com/yigit/placement/internal/pkg/auth"
)

// AuthService is the account and session logic used by AuthController
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	Me(ctx context.Context, userID int64) (*models.User, error)
	RegisterStudent(ctx context.Context, req *dto.StudentRegistrationRequest) (*dto.AuthResponse, error)
	RegisterAdmin(ctx context.Context, req *dto.RegisterAdminRequest) (*models.User, error)
}

// AuthController handles authentication related operations
type AuthController struct {
	authService  AuthService
	cookieSecure bool
	logger       zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService AuthService, cookieSecure bool, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService:  authService,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

func (c *AuthController) setSessionCookie(ctx *gin.Context, token string, maxAge int) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(auth.SessionCookieName, token, maxAge, "/", "", c.cookieSecure, true)
}

// Login handles user login
// @Summary User login
// @Description Authenticates a student or admin and starts a session (cookie and body token)
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid login request payload")
		bindError(ctx, err)
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setSessionCookie(ctx, resp.Token.AccessToken, resp.Token.ExpiresIn)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Logout ends the current session
// @Summary User logout
// @Description Clears the session cookie and revokes the session token
// @Tags auth
// @Produce json
// @Success 200 {object} dto.APIResponse "Logged out"
// @Failure 500 {object} dto.ErrorResponse "Revocation store unavailable"
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	if claims, ok := middleware.SessionClaims(ctx); ok {
		if err := c.authService.Logout(ctx.Request.Context(), claims); err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
	}

	c.setSessionCookie(ctx, "", -1)
	ctx.JSON(http.StatusOK, dto.NewInfoResponse("Logged out successfully"))
}

// Me returns the authenticated account
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	user, err := c.authService.Me(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewUserResponse(user)))
}

// RegisterStudent handles the basic-info registration step
// @Summary Student registration
// @Description Creates a student account or completes an invited one, then starts a session
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.StudentRegistrationRequest true "Basic information"
// @Success 201 {object} dto.APIResponse{data=dto.AuthResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 403 {object} dto.ErrorResponse "Invitation issued for another email"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Router /users/student-registration [post]
func (c *AuthController) RegisterStudent(ctx *gin.Context) {
	var req dto.StudentRegistrationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid student registration payload")
		bindError(ctx, err)
		return
	}

	resp, err := c.authService.RegisterStudent(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setSessionCookie(ctx, resp.Token.AccessToken, resp.Token.ExpiresIn)
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// RegisterAdmin creates another admin account
// @Summary Register admin
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RegisterAdminRequest true "Admin account"
// @Success 201 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 403 {object} dto.ErrorResponse "Admins only"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Router /users/register-admin [post]
func (c *AuthController) RegisterAdmin(ctx *gin.Context) {
	var req dto.RegisterAdminRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	user, err := c.authService.RegisterAdmin(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewUserResponse(user)))
}
