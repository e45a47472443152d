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

// MessageService is the announcement logic used by MessageController
type MessageService interface {
	Create(ctx context.Context, req *dto.CreateMessageRequest) (*models.Message, error)
	List(ctx context.Context) ([]models.Message, error)
	Delete(ctx context.Context, id int64) error
	Notify(ctx context.Context, id int64) (*dto.FanOutResult, error)
	ForStudent(ctx context.Context, studentID int64) ([]models.Message, error)
}

// MessageController handles placement cell announcements
type MessageController struct {
	messageService MessageService
	logger         zerolog.Logger
}

// NewMessageController creates a new MessageController
func NewMessageController(messageService MessageService, logger zerolog.Logger) *MessageController {
	return &MessageController{
		messageService: messageService,
		logger:         logger,
	}
}

// Create posts an announcement
// @Summary Create message
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateMessageRequest true "Message"
// @Success 201 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Router /admin/messages [post]
func (c *MessageController) Create(ctx *gin.Context) {
	var req dto.CreateMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid message payload")
		bindError(ctx, err)
		return
	}

	msg, err := c.messageService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewMessageResponse(msg)))
}

// List returns every announcement, newest first
// @Summary List messages
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.MessageResponse}
// @Router /admin/messages [get]
func (c *MessageController) List(ctx *gin.Context) {
	msgs, err := c.messageService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewMessageResponses(msgs)))
}

// Delete removes an announcement
// @Summary Delete message
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Message not found"
// @Router /admin/messages/{id} [delete]
func (c *MessageController) Delete(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Message")
	if !ok {
		return
	}

	if err := c.messageService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewInfoResponse("Message deleted successfully"))
}

// Notify emails an announcement to its departments' students
// @Summary Notify students about a message
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} dto.APIResponse{data=dto.FanOutResult}
// @Failure 404 {object} dto.ErrorResponse "Message not found"
// @Router /admin/messages/{id}/notify [post]
func (c *MessageController) Notify(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Message")
	if !ok {
		return
	}

	result, err := c.messageService.Notify(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// ForStudent returns the announcements addressed to the caller's department
// @Summary Student messages
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.MessageResponse}
// @Router /student/messages [get]
func (c *MessageController) ForStudent(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	msgs, err := c.messageService.ForStudent(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewMessageResponses(msgs)))
}
