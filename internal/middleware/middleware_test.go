package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSessions map[string]*auth.Claims

func (s stubSessions) ValidateSession(_ context.Context, token string) (*auth.Claims, error) {
	if token == "" {
		return nil, apperrors.ErrTokenNotFound
	}
	if token == "revoked" {
		return nil, apperrors.ErrTokenRevoked
	}
	claims, ok := s[token]
	if !ok {
		return nil, apperrors.ErrTokenInvalid
	}
	return claims, nil
}

func newAuthRouter() *gin.Engine {
	m := NewAuthMiddleware(stubSessions{
		"student-token": {UserID: 1, Email: "s@college.edu", Role: string(models.RoleStudent)},
		"admin-token":   {UserID: 2, Email: "a@college.edu", Role: string(models.RoleAdmin)},
	})

	r := gin.New()
	whoami := func(c *gin.Context) {
		id, ok := UserID(c)
		c.String(http.StatusOK, fmt.Sprintf("%d:%v", id, ok))
	}
	r.GET("/me", m.JWTAuth(), whoami)
	r.GET("/admin", m.JWTAuth(), m.RoleRequired(models.RoleAdmin), whoami)
	r.GET("/optional", m.OptionalAuth(), whoami)
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp
}

func TestJWTAuth(t *testing.T) {
	r := newAuthRouter()

	cases := []struct {
		name   string
		cookie string
		header string
		status int
		code   dto.ErrorCode
		body   string
	}{
		{name: "cookie", cookie: "student-token", status: http.StatusOK, body: "1:true"},
		{name: "bearer header", header: "Bearer admin-token", status: http.StatusOK, body: "2:true"},
		{name: "missing", status: http.StatusUnauthorized, code: dto.ErrorCodeUnauthorized},
		{name: "invalid", header: "Bearer nope", status: http.StatusUnauthorized, code: dto.ErrorCodeInvalidToken},
		{name: "revoked", cookie: "revoked", status: http.StatusUnauthorized, code: dto.ErrorCodeTokenRevoked},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: tc.cookie})
			}
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, tc.body, w.Body.String())
				return
			}
			assert.Equal(t, tc.code, decodeError(t, w).Error.Code)
		})
	}
}

func TestRoleRequired(t *testing.T) {
	r := newAuthRouter()

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer student-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrorCodeForbidden, decodeError(t, w).Error.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	r := newAuthRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/optional", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0:false", w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "student-token"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "1:true", w.Body.String())
}

func TestHandleAPIError(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		code    dto.ErrorCode
		message string
	}{
		{apperrors.ErrInvalidCGPA, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "cgpa must be between 0 and 10"},
		{apperrors.NewValidationError("bad input"), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "bad input"},
		{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
		{apperrors.ErrUserIDMismatch, http.StatusForbidden, dto.ErrorCodeForbidden, "user ID mismatch"},
		{apperrors.ErrJobNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "job not found"},
		{apperrors.ErrAlreadyApplied, http.StatusConflict, dto.ErrorCodeConflict, "you have already applied for this job"},
		{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists"},
		{apperrors.NewUpstreamError("failed to send invitation email", errors.New("dial tcp")), http.StatusInternalServerError, dto.ErrorCodeExternalServiceError, "failed to send invitation email"},
		{fmt.Errorf("failed to get job: %w", &pgconn.PgError{Code: "42P01", Message: "relation \"jobs\" does not exist"}), http.StatusInternalServerError, dto.ErrorCodeDatabaseError, "Internal server error"},
		{errors.New("pq: something leaked"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tc.err)

			assert.Equal(t, tc.status, w.Code)
			resp := decodeError(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tc.code, resp.Error.Code)
			assert.Equal(t, tc.message, resp.Error.Message)
		})
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000/"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
