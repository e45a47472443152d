package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the repositories react to
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

// Constraint names declared in migrations/001_init.sql
const (
	UsersEmailKey            = "users_email_key"
	ProfileUserIDKey         = "profile_user_id_key"
	ApplicationStudentJobKey = "job_applications_student_job_key"
	ApplicationJobFK         = "job_applications_job_id_fkey"
	ApplicationStudentFK     = "job_applications_student_id_fkey"
	ProfileUserFK            = "profile_user_id_fkey"
)

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraintName
}

// IsForeignKeyError reports a foreign key violation on the named constraint.
func IsForeignKeyError(err error, constraintName string) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == foreignKeyViolation && pgErr.ConstraintName == constraintName
}

// IsDatabaseError reports whether the error came back from PostgreSQL itself.
func IsDatabaseError(err error) bool {
	_, ok := pgError(err)
	return ok
}

// IsCheckViolation reports any CHECK constraint failure.
func IsCheckViolation(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == checkViolation
}
