package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/pkg/deptset"
	"github.com/yigit/placement/internal/pkg/email"
)

// Fan-out failure reasons reported to the caller
const (
	reasonMissingEmail = "missing email address"
	reasonDuplicate    = "duplicate recipient"
	reasonSendFailed   = "failed to send email"
	reasonCancelled    = "request cancelled before sending"
)

// NotificationService delivers one email to many recipients. Every
// recipient is attempted independently and the outcome is aggregated.
type NotificationService struct {
	sender   email.Sender
	userRepo UserStore
	logger   zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(sender email.Sender, userRepo UserStore, logger zerolog.Logger) *NotificationService {
	return &NotificationService{
		sender:   sender,
		userRepo: userRepo,
		logger:   logger,
	}
}

// FanOut sends subject/body to each address. A failed recipient never
// stops the remaining ones.
func (s *NotificationService) FanOut(ctx context.Context, recipients []string, subject, body string) dto.FanOutResult {
	result := dto.FanOutResult{Total: len(recipients), Failed: []dto.FanOutFailure{}}
	seen := make(map[string]struct{}, len(recipients))

	for _, raw := range recipients {
		addr := NormalizeEmail(raw)
		if reason := s.deliver(ctx, addr, seen, subject, body); reason != "" {
			result.Failed = append(result.Failed, dto.FanOutFailure{Email: raw, Reason: reason})
			continue
		}
		result.Succeeded++
	}

	s.logger.Info().
		Int("total", result.Total).
		Int("succeeded", result.Succeeded).
		Int("failed", len(result.Failed)).
		Str("subject", subject).
		Msg("Notification fan-out finished")
	return result
}

func (s *NotificationService) deliver(ctx context.Context, addr string, seen map[string]struct{}, subject, body string) string {
	if addr == "" {
		return reasonMissingEmail
	}
	if _, dup := seen[addr]; dup {
		return reasonDuplicate
	}
	seen[addr] = struct{}{}

	if ctx.Err() != nil {
		return reasonCancelled
	}
	if err := s.sender.Send(ctx, addr, subject, body); err != nil {
		s.logger.Warn().Err(err).Str("to", addr).Msg("Notification not delivered")
		return reasonSendFailed
	}
	return ""
}

// NotifyDepartments emails every student whose account department is in
// set. A set containing "all" reaches every student.
func (s *NotificationService) NotifyDepartments(ctx context.Context, set deptset.Set, subject, body string) (*dto.FanOutResult, error) {
	if len(set) == 0 {
		result := dto.FanOutResult{Failed: []dto.FanOutFailure{}}
		return &result, nil
	}

	students, err := s.userRepo.StudentRecipients(ctx, set)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipients: %w", err)
	}

	recipients := make([]string, 0, len(students))
	for i := range students {
		recipients = append(recipients, students[i].Email)
	}

	s.logger.Debug().
		Str("departments", strings.Join(set, ",")).
		Int("recipients", len(recipients)).
		Msg("Notifying departments")
	result := s.FanOut(ctx, recipients, subject, body)
	return &result, nil
}
