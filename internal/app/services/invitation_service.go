package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/auth"
	"github.com/yigit/placement/internal/pkg/bulkinput"
	"github.com/yigit/placement/internal/pkg/deptset"
	"github.com/yigit/placement/internal/pkg/email"
)

const registrationPath = "/student-registration"

// InvitationService invites students to register
type InvitationService struct {
	userRepo    UserStore
	jwtService  *auth.JWTService
	sender      email.Sender
	frontendURL string
	validate    *validator.Validate
	logger      zerolog.Logger
}

// NewInvitationService creates a new InvitationService
func NewInvitationService(userRepo UserStore, jwtService *auth.JWTService, sender email.Sender, frontendURL string, logger zerolog.Logger) *InvitationService {
	return &InvitationService{
		userRepo:    userRepo,
		jwtService:  jwtService,
		sender:      sender,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		validate:    validator.New(),
		logger:      logger,
	}
}

// RegistrationURL builds the link carried by an invitation email
func (s *InvitationService) RegistrationURL(token string) string {
	return s.frontendURL + registrationPath + "?token=" + url.QueryEscape(token)
}

func (s *InvitationService) checkInvitee(addr, department string) error {
	if err := s.validate.Var(addr, "required,email"); err != nil {
		return apperrors.NewValidationError("invalid email address")
	}
	if !deptset.IsKnown(department) {
		return apperrors.NewValidationError("unknown department")
	}
	return nil
}

// prepare records the invitee and returns whether the account was new.
// Completed accounts cannot be invited again.
func (s *InvitationService) prepare(ctx context.Context, addr, department string) (bool, error) {
	_, created, err := s.userRepo.CreateInvited(ctx, addr, department)
	if err != nil {
		return false, err
	}
	if created {
		return true, nil
	}

	existing, err := s.userRepo.GetByEmail(ctx, addr)
	if err != nil {
		return false, err
	}
	if existing.HasPassword() {
		return false, apperrors.NewConflictError("account is already registered")
	}
	return false, nil
}

func (s *InvitationService) send(ctx context.Context, addr, department string) error {
	token, err := s.jwtService.GenerateInvitationToken(addr, department)
	if err != nil {
		return err
	}
	subject, body := email.InvitationEmail(s.RegistrationURL(token))
	return s.sender.Send(ctx, addr, subject, body)
}

// Invite invites a single student. The password-less account is created
// only if the email is unknown; a pending invite is re-sent.
func (s *InvitationService) Invite(ctx context.Context, req *dto.InviteStudentRequest) (*dto.InvitationResponse, error) {
	addr := NormalizeEmail(req.Email)
	if err := s.checkInvitee(addr, req.Department); err != nil {
		return nil, err
	}

	created, err := s.prepare(ctx, addr, req.Department)
	if err != nil {
		return nil, err
	}
	if err := s.send(ctx, addr, req.Department); err != nil {
		return nil, apperrors.NewUpstreamError("failed to send invitation email", err)
	}

	s.logger.Info().Str("email", addr).Bool("created", created).Msg("Invitation sent")
	return &dto.InvitationResponse{Email: addr, Department: req.Department, Created: created}, nil
}

// InviteBulk invites every row independently and reports the aggregate
// outcome. A bad row is recorded as a failure and never stops the batch.
func (s *InvitationService) InviteBulk(ctx context.Context, rows []bulkinput.Row) dto.FanOutResult {
	result := dto.FanOutResult{Total: len(rows), Failed: []dto.FanOutFailure{}}
	seen := make(map[string]struct{}, len(rows))

	for _, row := range rows {
		if err := s.inviteRow(ctx, row, seen); err != nil {
			result.Failed = append(result.Failed, dto.FanOutFailure{
				Email:  row.Email,
				Reason: fmt.Sprintf("line %d: %s", row.Line, apperrors.PublicMessage(err, reasonSendFailed)),
			})
			continue
		}
		result.Succeeded++
	}

	s.logger.Info().
		Int("total", result.Total).
		Int("succeeded", result.Succeeded).
		Int("failed", len(result.Failed)).
		Msg("Bulk invitation finished")
	return result
}

func (s *InvitationService) inviteRow(ctx context.Context, row bulkinput.Row, seen map[string]struct{}) error {
	addr := NormalizeEmail(row.Email)
	if err := s.checkInvitee(addr, row.Department); err != nil {
		return err
	}
	if _, dup := seen[addr]; dup {
		return apperrors.NewValidationError(reasonDuplicate)
	}
	seen[addr] = struct{}{}

	if err := ctx.Err(); err != nil {
		return apperrors.NewUpstreamError(reasonCancelled, err)
	}
	if _, err := s.prepare(ctx, addr, row.Department); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.logger.Error().Err(err).Str("email", addr).Msg("Failed to record invitation")
		}
		return err
	}
	if err := s.send(ctx, addr, row.Department); err != nil {
		s.logger.Warn().Err(err).Str("email", addr).Msg("Invitation email not delivered")
		return apperrors.NewUpstreamError(reasonSendFailed, err)
	}
	return nil
}

// Verify checks an invitation token and returns the invited email and department
func (s *InvitationService) Verify(token string) (*dto.InvitationDetails, error) {
	claims, err := s.jwtService.ValidateInvitationToken(token)
	if err != nil {
		return nil, err
	}
	return &dto.InvitationDetails{Email: claims.Email, Department: claims.Department}, nil
}
