package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/dberrors"
	"github.com/yigit/placement/internal/pkg/logger"
)

var profileColumns = []string{
	"id", "user_id", "full_name", "phone_number", "address", "department", "roll_number",
	"current_year", "cgpa::float8", "backlogs", "placement_status", "education_history",
	"skills", "projects", "created_at", "updated_at",
}

const profileUpsertSuffix = `ON CONFLICT (user_id) DO UPDATE SET
	full_name = EXCLUDED.full_name,
	phone_number = EXCLUDED.phone_number,
	address = EXCLUDED.address,
	department = EXCLUDED.department,
	roll_number = EXCLUDED.roll_number,
	current_year = EXCLUDED.current_year,
	cgpa = EXCLUDED.cgpa,
	backlogs = EXCLUDED.backlogs,
	placement_status = EXCLUDED.placement_status,
	education_history = EXCLUDED.education_history,
	skills = EXCLUDED.skills,
	projects = EXCLUDED.projects,
	updated_at = NOW()
RETURNING id, created_at, updated_at, (xmax = 0) AS inserted`

// ProfileRepository handles student profile persistence
type ProfileRepository struct {
	db db.DBTX
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(conn db.DBTX) *ProfileRepository {
	return &ProfileRepository{db: conn}
}

func jsonOrEmptyArray(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "[]"
	}
	return string(raw)
}

// Upsert inserts or replaces the profile keyed by p.UserID. inserted reports
// whether a new row was created.
func (r *ProfileRepository) Upsert(ctx context.Context, p *models.Profile) (inserted bool, err error) {
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}

	sql, args, err := psql.Insert("profile").
		Columns("user_id", "full_name", "phone_number", "address", "department", "roll_number",
			"current_year", "cgpa", "backlogs", "placement_status", "education_history", "skills", "projects").
		Values(p.UserID, p.FullName, p.PhoneNumber, p.Address, p.Department, p.RollNumber,
			p.CurrentYear, p.CGPA, p.Backlogs, p.PlacementStatus,
			jsonOrEmptyArray(p.EducationHistory), skills, jsonOrEmptyArray(p.Projects)).
		Suffix(profileUpsertSuffix).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build upsert profile query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt, &inserted)
	if err != nil {
		if dberrors.IsForeignKeyError(err, dberrors.ProfileUserFK) {
			return false, apperrors.ErrUserNotFound
		}
		if dberrors.IsCheckViolation(err) {
			return false, fmt.Errorf("%w: %v", apperrors.ErrValidationFailed, err)
		}
		logger.Error().Err(err).Int64("userID", p.UserID).Msg("Error executing upsert profile query")
		return false, fmt.Errorf("error upserting profile: %w", err)
	}

	return inserted, nil
}

// GetByUserID retrieves the profile of a user
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	sql, args, err := psql.Select(profileColumns...).
		From("profile").
		Where(squirrel.Eq{"user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get profile query: %w", err)
	}

	p, err := scanProfile(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, fmt.Errorf("error retrieving profile: %w", err)
	}
	return p, nil
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.UserID, &p.FullName, &p.PhoneNumber, &p.Address, &p.Department, &p.RollNumber,
		&p.CurrentYear, &p.CGPA, &p.Backlogs, &p.PlacementStatus, &p.EducationHistory,
		&p.Skills, &p.Projects, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
