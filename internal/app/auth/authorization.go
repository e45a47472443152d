package auth

import (
	"context"

	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/logger"
)

// UserLookup loads accounts by ID
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// AuthorizationService answers role questions about stored accounts
type AuthorizationService struct {
	userRepo UserLookup
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(userRepo UserLookup) *AuthorizationService {
	return &AuthorizationService{userRepo: userRepo}
}

// RequireStudent loads userID and fails unless the account is a student
func (s *AuthorizationService) RequireStudent(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleStudent {
		logger.Debug().Int64("userID", userID).Str("role", string(user.Role)).Msg("Account is not a student")
		return nil, apperrors.ErrNotAStudent
	}
	return user, nil
}

// ResolveProfileSubject decides whose profile a request writes. An
// authenticated session wins; a body user ID that disagrees with it is refused.
func ResolveProfileSubject(sessionUserID, bodyUserID *int64) (int64, error) {
	switch {
	case sessionUserID != nil:
		if bodyUserID != nil && *bodyUserID != *sessionUserID {
			return 0, apperrors.ErrUserIDMismatch
		}
		return *sessionUserID, nil
	case bodyUserID != nil && *bodyUserID > 0:
		return *bodyUserID, nil
	default:
		return 0, apperrors.NewValidationError("user_id is required")
	}
}
