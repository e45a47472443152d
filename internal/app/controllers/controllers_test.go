package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/services"
	"github.com/yigit/placement/internal/middleware"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/auth"
	"github.com/yigit/placement/internal/pkg/bulkinput"
	"github.com/yigit/placement/internal/pkg/deptset"
	"github.com/yigit/placement/internal/pkg/validation"
)

var testLogger = zerolog.New(io.Discard)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validation.Register(); err != nil {
		panic(err)
	}
}

// asUser stands in for the auth middleware.
func asUser(id int64, role models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, id)
		c.Set(middleware.ContextRole, string(role))
		c.Set(middleware.ContextClaims, &auth.Claims{UserID: id, Role: string(role)})
		c.Next()
	}
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) {
	t.Helper()
	resp := struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	if data != nil {
		require.NoError(t, json.Unmarshal(resp.Data, data))
	}
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorCode {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

type stubAuth struct {
	loggedOut *auth.Claims
	loginErr  error
}

func (s *stubAuth) Login(_ context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &dto.AuthResponse{
		Token: dto.TokenResponse{AccessToken: "tok", TokenType: "Bearer", ExpiresIn: 3600},
		User:  dto.UserResponse{ID: 1, Email: req.Email, Role: req.Role},
	}, nil
}

func (s *stubAuth) Logout(_ context.Context, claims *auth.Claims) error {
	s.loggedOut = claims
	return nil
}

func (s *stubAuth) Me(_ context.Context, id int64) (*models.User, error) {
	return &models.User{ID: id, Email: "me@college.edu", Role: models.RoleStudent}, nil
}

func (s *stubAuth) RegisterStudent(_ context.Context, req *dto.StudentRegistrationRequest) (*dto.AuthResponse, error) {
	return &dto.AuthResponse{Token: dto.TokenResponse{AccessToken: "fresh", ExpiresIn: 60}}, nil
}

func (s *stubAuth) RegisterAdmin(_ context.Context, req *dto.RegisterAdminRequest) (*models.User, error) {
	return &models.User{ID: 9, Email: req.Email, Role: models.RoleAdmin}, nil
}

func TestAuthControllerLogin(t *testing.T) {
	svc := &stubAuth{}
	c := NewAuthController(svc, false, testLogger)
	r := gin.New()
	r.POST("/login", c.Login)

	w := doJSON(r, http.MethodPost, "/login", dto.LoginRequest{Email: "s@college.edu", Password: "secret123", Role: models.RoleStudent})
	require.Equal(t, http.StatusOK, w.Code)
	cookie := w.Result().Cookies()
	require.NotEmpty(t, cookie)
	assert.Equal(t, auth.SessionCookieName, cookie[0].Name)
	assert.Equal(t, "tok", cookie[0].Value)
	assert.True(t, cookie[0].HttpOnly)

	w = doJSON(r, http.MethodPost, "/login", map[string]string{"email": "s@college.edu", "password": "x", "role": "dean"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.loginErr = apperrors.ErrInvalidCredentials
	w = doJSON(r, http.MethodPost, "/login", dto.LoginRequest{Email: "s@college.edu", Password: "wrong", Role: models.RoleStudent})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthControllerLogout(t *testing.T) {
	svc := &stubAuth{}
	c := NewAuthController(svc, false, testLogger)
	r := gin.New()
	r.POST("/logout", asUser(3, models.RoleStudent), c.Logout)

	w := doJSON(r, http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.loggedOut)
	assert.Equal(t, int64(3), svc.loggedOut.UserID)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "", cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)
}

type stubInvitations struct {
	rows []bulkinput.Row
}

func (s *stubInvitations) Invite(_ context.Context, req *dto.InviteStudentRequest) (*dto.InvitationResponse, error) {
	if req.Email == "taken@college.edu" {
		return nil, apperrors.NewConflictError("a registered account already uses this email")
	}
	return &dto.InvitationResponse{Email: req.Email, Department: req.Department}, nil
}

func (s *stubInvitations) InviteBulk(_ context.Context, rows []bulkinput.Row) dto.FanOutResult {
	s.rows = rows
	return dto.FanOutResult{Total: len(rows), Succeeded: len(rows), Failed: []dto.FanOutFailure{}}
}

func (s *stubInvitations) Verify(token string) (*dto.InvitationDetails, error) {
	if token != "good" {
		return nil, apperrors.ErrTokenInvalid
	}
	return &dto.InvitationDetails{Email: "new@college.edu", Department: "Civil Engineering"}, nil
}

type stubLister struct {
	role models.RoleType
}

func (s *stubLister) ListUsers(_ context.Context, role models.RoleType, offset uint64, limit int) ([]models.User, int64, error) {
	s.role = role
	return []models.User{{ID: 1, Email: "a@college.edu", Role: models.RoleStudent}}, 1, nil
}

func multipartBody(t *testing.T, field, filename, content string, values map[string][]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vs := range values {
		for _, v := range vs {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUserControllerInvite(t *testing.T) {
	c := NewUserController(&stubInvitations{}, &stubLister{}, testLogger)
	r := gin.New()
	r.POST("/invite", c.Invite)

	w := doJSON(r, http.MethodPost, "/invite", dto.InviteStudentRequest{Email: "new@college.edu", Department: "Civil Engineering"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/invite", dto.InviteStudentRequest{Email: "new@college.edu", Department: "Astrology"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/invite", dto.InviteStudentRequest{Email: "taken@college.edu", Department: "Civil Engineering"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUserControllerInviteBulk(t *testing.T) {
	invitations := &stubInvitations{}
	c := NewUserController(invitations, &stubLister{}, testLogger)
	r := gin.New()
	r.POST("/bulk", c.InviteBulk)

	post := func(field, name, content string) *httptest.ResponseRecorder {
		body, contentType := multipartBody(t, field, name, content, nil)
		req := httptest.NewRequest(http.MethodPost, "/bulk", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := post(BulkUploadField, "students.csv", "email,department\na@college.edu,Civil Engineering\nb@college.edu,Mechanical Engineering\n")
	require.Equal(t, http.StatusOK, w.Code)
	var result dto.FanOutResult
	decode(t, w, &result)
	assert.Equal(t, 2, result.Total)
	require.Len(t, invitations.rows, 2)
	assert.Equal(t, "a@college.edu", invitations.rows[0].Email)

	w = post(BulkUploadField, "students.txt", "a@college.edu")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeUnsupportedFile, errorCode(t, w))

	w = post(BulkUploadField, "students.csv", "email,department\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post("", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserControllerVerifyAndList(t *testing.T) {
	lister := &stubLister{}
	c := NewUserController(&stubInvitations{}, lister, testLogger)
	r := gin.New()
	r.GET("/verify", c.VerifyInvitation)
	r.GET("/students", c.ListStudents)
	r.GET("/all", c.ListAll)

	w := doJSON(r, http.MethodGet, "/verify?token=good", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var details dto.InvitationDetails
	decode(t, w, &details)
	assert.Equal(t, "Civil Engineering", details.Department)

	w = doJSON(r, http.MethodGet, "/verify?token=bad", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/students?page=1&size=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RoleStudent, lister.role)

	w = doJSON(r, http.MethodGet, "/all", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RoleType(""), lister.role)
}

type stubProfiles struct {
	session *int64
}

func (s *stubProfiles) Save(_ context.Context, sessionUserID *int64, req *dto.ProfileRequest) (*models.Profile, bool, error) {
	s.session = sessionUserID
	subject, err := resolveForTest(sessionUserID, req.UserID)
	if err != nil {
		return nil, false, err
	}
	return &models.Profile{UserID: subject, FullName: req.FullName}, subject == 1, nil
}

func resolveForTest(session, body *int64) (int64, error) {
	if session != nil {
		if body != nil && *body != *session {
			return 0, apperrors.ErrUserIDMismatch
		}
		return *session, nil
	}
	if body == nil {
		return 0, apperrors.NewValidationError("user_id is required")
	}
	return *body, nil
}

func (s *stubProfiles) Get(_ context.Context, id int64) (*models.Profile, error) {
	if id != 1 {
		return nil, apperrors.ErrProfileNotFound
	}
	return &models.Profile{UserID: 1}, nil
}

func TestProfileControllerSave(t *testing.T) {
	profiles := &stubProfiles{}
	c := NewProfileController(profiles, testLogger)
	r := gin.New()
	r.POST("/anon", c.Save)
	r.POST("/session", asUser(1, models.RoleStudent), c.Save)
	r.PUT("/other", asUser(2, models.RoleStudent), c.Save)

	w := doJSON(r, http.MethodPost, "/session", map[string]interface{}{"full_name": "Asha"})
	require.Equal(t, http.StatusCreated, w.Code)
	var saved dto.ProfileSaveResponse
	decode(t, w, &saved)
	assert.True(t, saved.Created)
	require.NotNil(t, profiles.session)
	assert.Equal(t, int64(1), *profiles.session)

	w = doJSON(r, http.MethodPut, "/other", map[string]interface{}{"full_name": "Ravi"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/anon", map[string]interface{}{"user_id": 2})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, profiles.session)

	w = doJSON(r, http.MethodPut, "/other", map[string]interface{}{"user_id": 5})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPost, "/anon", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileControllerGet(t *testing.T) {
	c := NewProfileController(&stubProfiles{}, testLogger)
	r := gin.New()
	r.GET("/mine", asUser(1, models.RoleStudent), c.Get)
	r.GET("/none", asUser(4, models.RoleStudent), c.Get)
	r.GET("/anon", c.Get)

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/mine", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/none", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(r, http.MethodGet, "/anon", nil).Code)
}

type stubJobs struct {
	input      *services.NewJobInput
	forStudent int64
	deleted    int64
}

func (s *stubJobs) Create(_ context.Context, in *services.NewJobInput) (*dto.CreateJobResponse, error) {
	s.input = in
	return &dto.CreateJobResponse{Job: dto.JobResponse{ID: 7, Title: in.Form.Title}}, nil
}

func (s *stubJobs) List(context.Context) ([]models.Job, error) {
	return []models.Job{{ID: 7, Title: "SDE"}}, nil
}

func (s *stubJobs) ForStudent(_ context.Context, id int64) ([]models.Job, error) {
	s.forStudent = id
	return nil, nil
}

func (s *stubJobs) Delete(_ context.Context, id int64) error {
	if id == 404 {
		return apperrors.ErrJobNotFound
	}
	s.deleted = id
	return nil
}

func (s *stubJobs) DocumentPath(name string) (string, error) {
	return "", apperrors.NewResourceNotFoundError("document not found")
}

func TestJobControllerCreate(t *testing.T) {
	jobs := &stubJobs{}
	c := NewJobController(jobs, testLogger)
	r := gin.New()
	r.POST("/jobs", c.Create)

	body, contentType := multipartBody(t, JobDocumentField, "jd.pdf", "%PDF-1.4", map[string][]string{
		"title":        {"SDE"},
		"company":      {"Acme"},
		"departments":  {"Computer Science", "Information Technology"},
		"requirements": {`["Go","SQL"]`},
		"minCGPA":      {"7.5"},
		"sendEmail":    {"true"},
	})
	req := httptest.NewRequest(http.MethodPost, "/jobs", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, jobs.input)
	assert.Equal(t, "Acme", jobs.input.Form.Company)
	assert.Equal(t, 7.5, jobs.input.Form.MinCGPA)
	assert.True(t, jobs.input.Form.SendEmail)
	assert.Equal(t, []string{"Computer Science", "Information Technology"}, jobs.input.Departments)
	assert.Equal(t, []string{`["Go","SQL"]`}, jobs.input.Requirements)
	require.NotNil(t, jobs.input.Document)
	assert.Equal(t, "jd.pdf", jobs.input.Document.Filename)

	body, contentType = multipartBody(t, "", "", "", map[string][]string{"company": {"Acme"}, "minCGPA": {"11"}})
	req = httptest.NewRequest(http.MethodPost, "/jobs", body)
	req.Header.Set("Content-Type", contentType)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJobControllerRoutes(t *testing.T) {
	jobs := &stubJobs{}
	c := NewJobController(jobs, testLogger)
	r := gin.New()
	r.GET("/jobs", c.List)
	r.DELETE("/jobs/:id", c.Delete)
	r.GET("/filtered/:studentId", c.FilteredForStudent)
	r.GET("/available", asUser(12, models.RoleStudent), c.Available)
	r.GET("/pdf/:filename", c.Document)

	w := doJSON(r, http.MethodGet, "/jobs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []dto.JobResponse
	decode(t, w, &list)
	require.Len(t, list, 1)

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodDelete, "/jobs/3", nil).Code)
	assert.Equal(t, int64(3), jobs.deleted)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodDelete, "/jobs/404", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodDelete, "/jobs/abc", nil).Code)

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/filtered/5", nil).Code)
	assert.Equal(t, int64(5), jobs.forStudent)
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/available", nil).Code)
	assert.Equal(t, int64(12), jobs.forStudent)

	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/pdf/missing.pdf", nil).Code)
}

type stubApplications struct {
	listed  int64
	updated models.ApplicationStatus
}

func (s *stubApplications) Apply(_ context.Context, studentID, jobID int64) (*models.JobApplication, error) {
	switch jobID {
	case 1:
		return &models.JobApplication{ID: 10, StudentID: studentID, JobID: jobID, Status: models.ApplicationPending}, nil
	case 2:
		return nil, apperrors.ErrAlreadyApplied
	default:
		return nil, apperrors.ErrDeadlinePassed
	}
}

func (s *stubApplications) ListByStudent(_ context.Context, id int64) ([]models.AppliedJob, error) {
	s.listed = id
	return nil, nil
}

func (s *stubApplications) ListByJob(_ context.Context, jobID int64) ([]models.Applicant, error) {
	return nil, apperrors.ErrJobNotFound
}

func (s *stubApplications) UpdateStatus(_ context.Context, id int64, status models.ApplicationStatus) (*models.JobApplication, error) {
	s.updated = status
	return &models.JobApplication{ID: id, Status: status}, nil
}

func TestApplicationControllerApply(t *testing.T) {
	c := NewApplicationController(&stubApplications{}, testLogger)
	r := gin.New()
	r.POST("/jobs/:id/apply", asUser(4, models.RoleStudent), c.Apply)

	w := doJSON(r, http.MethodPost, "/jobs/1/apply", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var app dto.ApplicationResponse
	decode(t, w, &app)
	assert.Equal(t, models.ApplicationPending, app.Status)

	assert.Equal(t, http.StatusConflict, doJSON(r, http.MethodPost, "/jobs/2/apply", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/jobs/3/apply", nil).Code)
}

func TestApplicationControllerStatus(t *testing.T) {
	apps := &stubApplications{}
	c := NewApplicationController(apps, testLogger)
	r := gin.New()
	r.GET("/student/:id/status", asUser(4, models.RoleStudent), c.Status)
	r.GET("/admin/:id/status", asUser(1, models.RoleAdmin), c.Status)

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/student/4/status", nil).Code)
	assert.Equal(t, int64(4), apps.listed)

	w := doJSON(r, http.MethodGet, "/student/5/status", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrorCodeForbidden, errorCode(t, w))

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/admin/5/status", nil).Code)
	assert.Equal(t, int64(5), apps.listed)
}

func TestApplicationControllerAdmin(t *testing.T) {
	apps := &stubApplications{}
	c := NewApplicationController(apps, testLogger)
	r := gin.New()
	r.GET("/jobs/:id/applications", c.Applicants)
	r.PATCH("/applications/:id/status", c.UpdateStatus)

	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/jobs/8/applications", nil).Code)

	w := doJSON(r, http.MethodPatch, "/applications/3/status", map[string]string{"status": "shortlisted"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ApplicationShortlisted, apps.updated)

	w = doJSON(r, http.MethodPatch, "/applications/3/status", map[string]string{"status": "hired"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type stubMessages struct {
	created *dto.CreateMessageRequest
}

func (s *stubMessages) Create(_ context.Context, req *dto.CreateMessageRequest) (*models.Message, error) {
	s.created = req
	return &models.Message{ID: 1, Content: req.Content, Departments: deptset.Set(req.Departments)}, nil
}

func (s *stubMessages) List(context.Context) ([]models.Message, error) {
	return []models.Message{{ID: 1, Content: "hello"}}, nil
}

func (s *stubMessages) Delete(_ context.Context, id int64) error {
	if id != 1 {
		return apperrors.ErrMessageNotFound
	}
	return nil
}

func (s *stubMessages) Notify(_ context.Context, id int64) (*dto.FanOutResult, error) {
	return &dto.FanOutResult{Total: 3, Succeeded: 2, Failed: []dto.FanOutFailure{{Email: "x@college.edu", Reason: "send failed"}}}, nil
}

func (s *stubMessages) ForStudent(_ context.Context, id int64) ([]models.Message, error) {
	return nil, nil
}

func TestMessageController(t *testing.T) {
	msgs := &stubMessages{}
	c := NewMessageController(msgs, testLogger)
	r := gin.New()
	r.POST("/messages", c.Create)
	r.GET("/messages", c.List)
	r.DELETE("/messages/:id", c.Delete)
	r.POST("/messages/:id/notify", c.Notify)
	r.GET("/mine", asUser(4, models.RoleStudent), c.ForStudent)

	w := doJSON(r, http.MethodPost, "/messages", map[string]interface{}{"content": "Drive on Monday", "departments": []string{"all"}})
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, msgs.created)

	w = doJSON(r, http.MethodPost, "/messages", map[string]interface{}{"content": "x", "departments": []string{"Astrology"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/messages", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodDelete, "/messages/1", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodDelete, "/messages/2", nil).Code)

	w = doJSON(r, http.MethodPost, "/messages/1/notify", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result dto.FanOutResult
	decode(t, w, &result)
	assert.Equal(t, 2, result.Succeeded)
	require.Len(t, result.Failed, 1)

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/mine", nil).Code)
}
