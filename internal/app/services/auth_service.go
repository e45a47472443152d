package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/auth"
	"github.com/yigit/placement/internal/pkg/deptset"
)

// AuthService handles login, sessions and account registration
type AuthService struct {
	userRepo    UserStore
	jwtService  *auth.JWTService
	revocations RevocationStore
	now         Clock
	logger      zerolog.Logger
}

// NewAuthService creates a new AuthService. revocations may be nil, in
// which case logout only clears the client cookie.
func NewAuthService(userRepo UserStore, jwtService *auth.JWTService, revocations RevocationStore, logger zerolog.Logger) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		jwtService:  jwtService,
		revocations: revocations,
		now:         time.Now,
		logger:      logger,
	}
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validatePassword validates a new password
func (s *AuthService) validatePassword(password string) error {
	if len(password) < auth.MinPasswordLength {
		return apperrors.NewValidationError(fmt.Sprintf("password must be at least %d characters long", auth.MinPasswordLength))
	}
	return nil
}

// Login authenticates a user for the requested role. Unknown email, wrong
// role, missing password and wrong password are indistinguishable.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.Info().Str("email", email).Msg("Login attempt for unknown email")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.Role != req.Role || !auth.CheckPassword(user.PasswordHash(), req.Password) {
		s.logger.Info().Str("email", email).Str("role", string(req.Role)).Msg("Login rejected")
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.generateAuthResponse(user)
}

// ValidateSession verifies a session token and checks it has not been
// revoked by a logout.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	if s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			// fail open when the store is unreachable
			s.logger.Error().Err(err).Msg("Failed to check session revocation")
		} else if revoked {
			return nil, apperrors.ErrTokenRevoked
		}
	}
	return claims, nil
}

// Logout revokes the session token until its natural expiry
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.revocations == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if err := s.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		return apperrors.NewUpstreamError("failed to end session", err)
	}
	s.logger.Info().Int64("userID", claims.UserID).Msg("Session revoked")
	return nil
}

// Me returns the account of the session user
func (s *AuthService) Me(ctx context.Context, userID int64) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// RegisterStudent completes the basic-info step. An invited, password-less
// account with the same email is completed in place and keeps its invited
// department. Otherwise a new student is created.
func (s *AuthService) RegisterStudent(ctx context.Context, req *dto.StudentRegistrationRequest) (*dto.AuthResponse, error) {
	email := NormalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)

	if req.Token != "" {
		invitation, err := s.jwtService.ValidateInvitationToken(req.Token)
		if err != nil {
			return nil, err
		}
		if NormalizeEmail(invitation.Email) != email {
			return nil, apperrors.NewForbiddenError("invitation was issued for a different email")
		}
	}

	if err := s.validatePassword(req.Password); err != nil {
		return nil, err
	}
	if !deptset.IsKnown(req.Department) {
		return nil, apperrors.NewValidationError("unknown department")
	}
	if name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.HasPassword() || existing.Role != models.RoleStudent {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		if err := s.userRepo.CompleteRegistration(ctx, existing.ID, hash, name, req.Department); err != nil {
			return nil, err
		}
		s.logger.Info().Int64("userID", existing.ID).Msg("Invited student completed basic info")
		user, err := s.userRepo.GetByID(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		return s.generateAuthResponse(user)

	case errors.Is(err, apperrors.ErrUserNotFound):
		user := &models.User{
			Email:      email,
			Password:   &hash,
			Role:       models.RoleStudent,
			Name:       name,
			Department: req.Department,
		}
		if user.ID, err = s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		user.CreatedAt = s.now()
		s.logger.Info().Int64("userID", user.ID).Msg("Student registered")
		return s.generateAuthResponse(user)

	default:
		return nil, err
	}
}

// RegisterAdmin creates another admin account
func (s *AuthService) RegisterAdmin(ctx context.Context, req *dto.RegisterAdminRequest) (*models.User, error) {
	if err := s.validatePassword(req.Password); err != nil {
		return nil, err
	}
	if req.Department != "" && !deptset.IsKnown(req.Department) {
		return nil, apperrors.NewValidationError("unknown department")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:      NormalizeEmail(req.Email),
		Password:   &hash,
		Role:       models.RoleAdmin,
		Name:       strings.TrimSpace(req.Name),
		Department: req.Department,
	}
	if user.ID, err = s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	user.CreatedAt = s.now()
	s.logger.Info().Int64("userID", user.ID).Str("email", user.Email).Msg("Admin registered")
	return user, nil
}

// EnsureAdmin creates the admin account for email unless it already exists
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, name, department string) (created bool, err error) {
	email = NormalizeEmail(email)
	_, err = s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return false, err
	}

	_, err = s.RegisterAdmin(ctx, &dto.RegisterAdminRequest{
		Email: email, Password: password, Name: name, Department: department,
	})
	if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		// created concurrently by another instance
		return false, nil
	}
	return err == nil, err
}

// ListUsers returns one page of users, optionally restricted to a role
func (s *AuthService) ListUsers(ctx context.Context, role models.RoleType, offset uint64, limit int) ([]models.User, int64, error) {
	return s.userRepo.List(ctx, role, offset, limit)
}

func (s *AuthService) generateAuthResponse(user *models.User) (*dto.AuthResponse, error) {
	token, expiresIn, err := s.jwtService.GenerateSessionToken(user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   expiresIn,
		},
		User: dto.NewUserResponse(user),
	}, nil
}
