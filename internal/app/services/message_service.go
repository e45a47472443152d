package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/deptset"
	"github.com/yigit/placement/internal/pkg/email"
)

// MessageService manages placement cell announcements
type MessageService struct {
	messageRepo   MessageStore
	authz         *appauth.AuthorizationService
	notifications *NotificationService
	logger        zerolog.Logger
}

// NewMessageService creates a new MessageService
func NewMessageService(messageRepo MessageStore, authz *appauth.AuthorizationService, notifications *NotificationService, logger zerolog.Logger) *MessageService {
	return &MessageService{
		messageRepo:   messageRepo,
		authz:         authz,
		notifications: notifications,
		logger:        logger,
	}
}

// Create stores an announcement for the given departments
func (s *MessageService) Create(ctx context.Context, req *dto.CreateMessageRequest) (*models.Message, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.NewValidationError("content is required")
	}
	departments, err := deptset.Normalize(req.Departments)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	msg := &models.Message{Content: content, Departments: departments}
	if msg.ID, err = s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("messageID", msg.ID).Strs("departments", []string(departments)).Msg("Message created")
	return s.messageRepo.GetByID(ctx, msg.ID)
}

// List returns every announcement, newest first
func (s *MessageService) List(ctx context.Context) ([]models.Message, error) {
	return s.messageRepo.List(ctx)
}

// Delete removes an announcement
func (s *MessageService) Delete(ctx context.Context, id int64) error {
	if err := s.messageRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("messageID", id).Msg("Message deleted")
	return nil
}

// Notify emails an announcement to the students of its departments
func (s *MessageService) Notify(ctx context.Context, id int64) (*dto.FanOutResult, error) {
	msg, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	subject, body := email.MessageEmail(msg.Content)
	return s.notifications.NotifyDepartments(ctx, msg.Departments, subject, body)
}

// ForStudent returns the announcements addressed to the student's department
func (s *MessageService) ForStudent(ctx context.Context, studentID int64) ([]models.Message, error) {
	user, err := s.authz.RequireStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	visible := make([]models.Message, 0, len(messages))
	for _, msg := range messages {
		var raw interface{} = msg.RawDepartments
		if len(msg.RawDepartments) == 0 {
			raw = msg.Departments
		}
		if deptset.Visible(raw, user.Department) {
			visible = append(visible, msg)
		}
	}
	return visible, nil
}
