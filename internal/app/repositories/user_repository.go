package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/dberrors"
	"github.com/yigit/placement/internal/pkg/deptset"
	"github.com/yigit/placement/internal/pkg/logger"
)

var userColumns = []string{
	"id", "email", "password", "role", "COALESCE(name, '')", "COALESCE(department, '')", "created_at", "updated_at",
}

// UserRepository handles user database operations
type UserRepository struct {
	db db.DBTX
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(conn db.DBTX) *UserRepository {
	return &UserRepository{db: conn}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Role, &u.Name, &u.Department, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user and returns its ID
func (r *UserRepository) Create(ctx context.Context, user *models.User) (int64, error) {
	sql, args, err := psql.Insert("users").
		Columns("email", "password", "role", "name", "department").
		Values(user.Email, user.Password, user.Role, nullIfEmpty(user.Name), nullIfEmpty(user.Department)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create user query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsDuplicateConstraintError(err, dberrors.UsersEmailKey) {
			logger.Warn().Str("email", user.Email).Msg("Attempted to create user with duplicate email")
			return 0, apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error executing create user query")
		return 0, fmt.Errorf("error creating user: %w", err)
	}

	return id, nil
}

// CreateInvited inserts a password-less student row for email unless one
// already exists. created is false when the email was already known.
func (r *UserRepository) CreateInvited(ctx context.Context, email, department string) (id int64, created bool, err error) {
	sql, args, err := psql.Insert("users").
		Columns("email", "role", "department").
		Values(email, models.RoleStudent, nullIfEmpty(department)).
		Suffix("ON CONFLICT (email) DO NOTHING RETURNING id").
		ToSql()
	if err != nil {
		return 0, false, fmt.Errorf("failed to build invite user query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("error creating invited user: %w", err)
	}
	return id, true, nil
}

// CompleteRegistration sets the password and name of an invited student. The
// department recorded by the invitation is kept; department only fills a
// blank one. Returns ErrEmailAlreadyExists if the row already has a password.
func (r *UserRepository) CompleteRegistration(ctx context.Context, id int64, passwordHash, name, department string) error {
	sql, args, err := psql.Update("users").
		Set("password", passwordHash).
		Set("name", name).
		Set("department", squirrel.Expr("COALESCE(NULLIF(department, ''), ?)", department)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where("password IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build complete registration query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error completing registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrEmailAlreadyExists
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := psql.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email})
}

// List returns users newest first, optionally restricted to role, with the
// total count for pagination.
func (r *UserRepository) List(ctx context.Context, role models.RoleType, offset uint64, limit int) ([]models.User, int64, error) {
	filter := squirrel.And{}
	if role != "" {
		filter = append(filter, squirrel.Eq{"role": role})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("users").Where(filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count users query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting users: %w", err)
	}

	sql, args, err := psql.Select(userColumns...).From("users").Where(filter).
		OrderBy("created_at DESC", "id DESC").
		Offset(offset).Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

// StudentRecipients returns students whose department is in set. A set
// containing the all sentinel selects every student.
func (r *UserRepository) StudentRecipients(ctx context.Context, set deptset.Set) ([]models.User, error) {
	q := psql.Select(userColumns...).From("users").
		Where(squirrel.Eq{"role": models.RoleStudent}).
		OrderBy("id")

	if !set.Contains(deptset.All) {
		q = q.Where("department = ANY(?)", []string(set))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build recipients query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error selecting recipients: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning recipient: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
