package services

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/auth"
	"github.com/yigit/placement/internal/pkg/deptset"
	"github.com/yigit/placement/internal/pkg/filestorage"
)

var testLogger = zerolog.New(io.Discard)

func newTestJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret-key-with-enough-length",
		AccessTokenExp: time.Hour,
		InvitationExp:  24 * time.Hour,
		TokenIssuer:    "placement-test",
	})
}

type fakeUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.User
	err    error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[int64]*models.User{}}
}

func (f *fakeUsers) add(u models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u.ID = f.nextID
	f.byID[u.ID] = &u
	return &u
}

func (f *fakeUsers) findEmail(email string) *models.User {
	for _, u := range f.byID {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.findEmail(user.Email) != nil {
		return 0, apperrors.ErrEmailAlreadyExists
	}
	return f.add(*user).ID, nil
}

func (f *fakeUsers) CreateInvited(_ context.Context, email, department string) (int64, bool, error) {
	if f.err != nil {
		return 0, false, f.err
	}
	if u := f.findEmail(email); u != nil {
		return u.ID, false, nil
	}
	u := f.add(models.User{Email: email, Role: models.RoleStudent, Department: department})
	return u.ID, true, nil
}

func (f *fakeUsers) CompleteRegistration(_ context.Context, id int64, hash, name, department string) error {
	u, ok := f.byID[id]
	if !ok || u.HasPassword() {
		return apperrors.ErrEmailAlreadyExists
	}
	u.Password = &hash
	u.Name = name
	if u.Department == "" {
		u.Department = department
	}
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u := f.findEmail(email)
	if u == nil {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) List(_ context.Context, role models.RoleType, offset uint64, limit int) ([]models.User, int64, error) {
	var out []models.User
	for _, u := range f.byID {
		if role == "" || u.Role == role {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := int64(len(out))
	if int(offset) >= len(out) {
		return []models.User{}, total, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (f *fakeUsers) StudentRecipients(_ context.Context, set deptset.Set) ([]models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.User
	for _, u := range f.byID {
		if u.Role == models.RoleStudent && set.Contains(u.Department) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeProfiles struct {
	byUser map[int64]*models.Profile
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{byUser: map[int64]*models.Profile{}}
}

func (f *fakeProfiles) Upsert(_ context.Context, p *models.Profile) (bool, error) {
	_, existed := f.byUser[p.UserID]
	cp := *p
	cp.ID = p.UserID
	f.byUser[p.UserID] = &cp
	return !existed, nil
}

func (f *fakeProfiles) GetByUserID(_ context.Context, userID int64) (*models.Profile, error) {
	p, ok := f.byUser[userID]
	if !ok {
		return nil, apperrors.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

type fakeJobs struct {
	nextID int64
	jobs   map[int64]*models.Job
	apps   *fakeApplications
	failTx bool
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{jobs: map[int64]*models.Job{}}
}

func (f *fakeJobs) Create(_ context.Context, job *models.Job) (int64, error) {
	f.nextID++
	cp := *job
	cp.ID = f.nextID
	cp.PostedDate = time.Now()
	f.jobs[cp.ID] = &cp
	return cp.ID, nil
}

func (f *fakeJobs) GetByID(_ context.Context, id int64) (*models.Job, error) {
	j, ok := f.jobs[id]
	if !ok {
		return nil, apperrors.ErrJobNotFound
	}
	cp := *j
	return &cp, nil
}

func (f *fakeJobs) List(_ context.Context) ([]models.Job, error) {
	out := make([]models.Job, 0, len(f.jobs))
	for _, j := range f.jobs {
		out = append(out, *j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeJobs) DeleteApplications(_ context.Context, jobID int64) (int64, error) {
	if f.apps == nil {
		return 0, nil
	}
	return f.apps.deleteForJob(jobID), nil
}

func (f *fakeJobs) LockDocumentPath(_ context.Context, jobID int64) (*string, error) {
	j, ok := f.jobs[jobID]
	if !ok {
		return nil, apperrors.ErrJobNotFound
	}
	return j.PDFPath, nil
}

func (f *fakeJobs) Delete(_ context.Context, jobID int64) error {
	if f.failTx {
		return errors.New("delete failed")
	}
	if _, ok := f.jobs[jobID]; !ok {
		return apperrors.ErrJobNotFound
	}
	delete(f.jobs, jobID)
	return nil
}

func (f *fakeJobs) binder() JobTxBinder {
	return func(pgx.Tx) JobTxStore { return f }
}

// fakeTransactor runs fn without a real transaction and counts calls
type fakeTransactor struct {
	calls int
}

func (t *fakeTransactor) WithTransaction(ctx context.Context, fn db.TransactionFn) error {
	t.calls++
	return fn(ctx, nil)
}

type fakeApplications struct {
	nextID int64
	apps   map[int64]*models.JobApplication
	jobs   *fakeJobs
}

func newFakeApplications(jobs *fakeJobs) *fakeApplications {
	f := &fakeApplications{apps: map[int64]*models.JobApplication{}, jobs: jobs}
	jobs.apps = f
	return f
}

func (f *fakeApplications) Create(_ context.Context, studentID, jobID int64) (*models.JobApplication, error) {
	if _, ok := f.jobs.jobs[jobID]; !ok {
		return nil, apperrors.ErrJobNotFound
	}
	for _, a := range f.apps {
		if a.StudentID == studentID && a.JobID == jobID {
			return nil, apperrors.ErrAlreadyApplied
		}
	}
	f.nextID++
	a := &models.JobApplication{ID: f.nextID, StudentID: studentID, JobID: jobID, Status: models.ApplicationPending, CreatedAt: time.Now()}
	f.apps[a.ID] = a
	cp := *a
	return &cp, nil
}

func (f *fakeApplications) ListByStudent(_ context.Context, studentID int64) ([]models.AppliedJob, error) {
	var out []models.AppliedJob
	for _, a := range f.apps {
		if a.StudentID == studentID {
			out = append(out, models.AppliedJob{Application: *a, Job: *f.jobs.jobs[a.JobID]})
		}
	}
	return out, nil
}

func (f *fakeApplications) ListByJob(_ context.Context, jobID int64) ([]models.Applicant, error) {
	var out []models.Applicant
	for _, a := range f.apps {
		if a.JobID == jobID {
			out = append(out, models.Applicant{Application: *a})
		}
	}
	return out, nil
}

func (f *fakeApplications) UpdateStatus(_ context.Context, id int64, status models.ApplicationStatus) (*models.JobApplication, error) {
	a, ok := f.apps[id]
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}
	a.Status = status
	cp := *a
	return &cp, nil
}

func (f *fakeApplications) deleteForJob(jobID int64) int64 {
	var n int64
	for id, a := range f.apps {
		if a.JobID == jobID {
			delete(f.apps, id)
			n++
		}
	}
	return n
}

type fakeMessages struct {
	nextID int64
	msgs   map[int64]*models.Message
}

func newFakeMessages() *fakeMessages {
	return &fakeMessages{msgs: map[int64]*models.Message{}}
}

func (f *fakeMessages) Create(_ context.Context, msg *models.Message) (int64, error) {
	f.nextID++
	cp := *msg
	cp.ID = f.nextID
	cp.CreatedAt = time.Now()
	f.msgs[cp.ID] = &cp
	return cp.ID, nil
}

func (f *fakeMessages) GetByID(_ context.Context, id int64) (*models.Message, error) {
	m, ok := f.msgs[id]
	if !ok {
		return nil, apperrors.ErrMessageNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMessages) List(_ context.Context) ([]models.Message, error) {
	out := make([]models.Message, 0, len(f.msgs))
	for _, m := range f.msgs {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeMessages) Delete(_ context.Context, id int64) error {
	if _, ok := f.msgs[id]; !ok {
		return apperrors.ErrMessageNotFound
	}
	delete(f.msgs, id)
	return nil
}

// fakeSender records deliveries and fails for addresses listed in failFor
type fakeSender struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]bool
}

func (s *fakeSender) Send(_ context.Context, to, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[to] {
		return errors.New("relay rejected recipient")
	}
	s.sent = append(s.sent, to)
	return nil
}

type fakeRevocations struct {
	revoked map[string]time.Duration
	err     error
}

func (f *fakeRevocations) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	if f.revoked == nil {
		f.revoked = map[string]time.Duration{}
	}
	f.revoked[jti] = ttl
	return nil
}

func (f *fakeRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.revoked[jti]
	return ok, nil
}

// fakeStorage keeps saved files in memory
type fakeStorage struct {
	files   map[string]bool
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: map[string]bool{}}
}

func (s *fakeStorage) Save(fh *multipart.FileHeader, allowedExts ...string) (string, error) {
	if fh == nil {
		return "", nil
	}
	if len(allowedExts) > 0 && !strings.HasSuffix(strings.ToLower(fh.Filename), allowedExts[0]) {
		return "", filestorage.ErrExtensionNotAllowed
	}
	name := "stored-" + fh.Filename
	s.files[name] = true
	return name, nil
}

func (s *fakeStorage) Path(name string) (string, error) {
	if strings.Contains(name, "/") {
		return "", filestorage.ErrInvalidName
	}
	if !s.files[name] {
		return "", filestorage.ErrFileNotFound
	}
	return "/uploads/" + name, nil
}

func (s *fakeStorage) DeleteFile(name string) error {
	delete(s.files, name)
	s.deleted = append(s.deleted, name)
	return nil
}
