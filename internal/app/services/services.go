// Package services holds the placement portal's business logic. Services
// depend on the small store interfaces below, which the repositories
// package satisfies.
package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/pkg/deptset"
)

// UserStore persists accounts
type UserStore interface {
	Create(ctx context.Context, user *models.User) (int64, error)
	CreateInvited(ctx context.Context, email, department string) (id int64, created bool, err error)
	CompleteRegistration(ctx context.Context, id int64, passwordHash, name, department string) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, role models.RoleType, offset uint64, limit int) ([]models.User, int64, error)
	StudentRecipients(ctx context.Context, set deptset.Set) ([]models.User, error)
}

// ProfileStore persists student profiles
type ProfileStore interface {
	Upsert(ctx context.Context, p *models.Profile) (inserted bool, err error)
	GetByUserID(ctx context.Context, userID int64) (*models.Profile, error)
}

// JobStore persists job postings
type JobStore interface {
	Create(ctx context.Context, job *models.Job) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Job, error)
	List(ctx context.Context) ([]models.Job, error)
}

// JobTxStore holds the job operations that run inside the delete transaction
type JobTxStore interface {
	DeleteApplications(ctx context.Context, jobID int64) (int64, error)
	LockDocumentPath(ctx context.Context, jobID int64) (*string, error)
	Delete(ctx context.Context, jobID int64) error
}

// JobTxBinder binds a JobTxStore to a transaction
type JobTxBinder func(tx pgx.Tx) JobTxStore

// ApplicationStore persists job applications
type ApplicationStore interface {
	Create(ctx context.Context, studentID, jobID int64) (*models.JobApplication, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.AppliedJob, error)
	ListByJob(ctx context.Context, jobID int64) ([]models.Applicant, error)
	UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) (*models.JobApplication, error)
}

// MessageStore persists announcements
type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Message, error)
	List(ctx context.Context) ([]models.Message, error)
	Delete(ctx context.Context, id int64) error
}

// RevocationStore records logged-out session token IDs
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Clock returns the current time
type Clock func() time.Time
