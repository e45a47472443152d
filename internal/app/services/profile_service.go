package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/validation"
)

// ProfileService manages the detailed student profile
type ProfileService struct {
	authz       *appauth.AuthorizationService
	profileRepo ProfileStore
	logger      zerolog.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(authz *appauth.AuthorizationService, profileRepo ProfileStore, logger zerolog.Logger) *ProfileService {
	return &ProfileService{
		authz:       authz,
		profileRepo: profileRepo,
		logger:      logger,
	}
}

func validateProfile(p *models.Profile) error {
	if !validation.ValidCGPA(p.CGPA) {
		return apperrors.ErrInvalidCGPA
	}
	if p.Backlogs < 0 {
		return apperrors.ErrInvalidBacklogs
	}
	if p.CurrentYear != nil && (*p.CurrentYear < 1 || *p.CurrentYear > 6) {
		return apperrors.NewValidationError("current_year must be between 1 and 6")
	}
	if len(p.EducationHistory) > 0 && !json.Valid(p.EducationHistory) {
		return apperrors.NewValidationError("education_history must be valid JSON")
	}
	if len(p.Projects) > 0 && !json.Valid(p.Projects) {
		return apperrors.NewValidationError("projects must be valid JSON")
	}
	return nil
}

// Save creates or replaces the profile of the resolved student. created is
// true when no profile existed before.
func (s *ProfileService) Save(ctx context.Context, sessionUserID *int64, req *dto.ProfileRequest) (*models.Profile, bool, error) {
	userID, err := appauth.ResolveProfileSubject(sessionUserID, req.UserID)
	if err != nil {
		return nil, false, err
	}

	profile := req.ToModel(userID)
	profile.PlacementStatus = strings.ToLower(strings.TrimSpace(profile.PlacementStatus))
	if profile.PlacementStatus == "" {
		profile.PlacementStatus = models.PlacementStatusNotPlaced
	}
	if err := validateProfile(profile); err != nil {
		return nil, false, err
	}

	if _, err := s.authz.RequireStudent(ctx, userID); err != nil {
		return nil, false, err
	}

	created, err := s.profileRepo.Upsert(ctx, profile)
	if err != nil {
		return nil, false, err
	}
	s.logger.Info().Int64("userID", userID).Bool("created", created).Msg("Profile saved")

	saved, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return saved, created, nil
}

// Get returns the profile of userID
func (s *ProfileService) Get(ctx context.Context, userID int64) (*models.Profile, error) {
	return s.profileRepo.GetByUserID(ctx, userID)
}
