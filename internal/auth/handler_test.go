package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reazulislam1487/event-hub-server/internal/models"
)

type mockCredentials struct {
	registerErr error
	loginResp   *models.LoginResponse
	loginErr    error
	users       []models.User
	loggedOut   string
}

func (m *mockCredentials) Register(context.Context, models.RegisterRequest) error { return m.registerErr }

func (m *mockCredentials) Login(context.Context, string, string) (*models.LoginResponse, error) {
	return m.loginResp, m.loginErr
}

func (m *mockCredentials) Logout(_ context.Context, id string) error {
	m.loggedOut = id
	return nil
}

func (m *mockCredentials) ListUsers(context.Context) ([]models.User, error) { return m.users, nil }

func do(ctx context.Context, h http.HandlerFunc, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/", strings.NewReader(body)).WithContext(ctx)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestRegisterHandler(t *testing.T) {
	valid := `{"name":"Ana","email":"ana@example.com","password":"pw"}`

	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
		wantBody string
	}{
		{"created", valid, nil, http.StatusCreated, `{"message":"User registered successfully"}`},
		{"duplicate", valid, ErrDuplicateEmail, http.StatusBadRequest, `{"error":"Email already exists"}`},
		{"store failure", valid, errors.New("boom"), http.StatusInternalServerError, `{"error":"Registration failed"}`},
		{"bad json", `{`, nil, http.StatusBadRequest, `{"error":"invalid request body"}`},
		{"multibyte password over 72 bytes", `{"name":"Ana","email":"ana@example.com","password":"` + strings.Repeat("é", 40) + `"}`, nil, http.StatusBadRequest, `{"error":"password: value is too long"}`},
		{"too long from hashing", valid, ErrPasswordTooLong, http.StatusBadRequest, `{"error":"password: value is too long"}`},
		{"invalid email", `{"name":"Ana","email":"ana","password":"pw"}`, nil, http.StatusBadRequest, `{"error":"email: invalid email format"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&mockCredentials{registerErr: tt.err})
			rec := do(context.Background(), h.Register, http.MethodPost, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestLoginHandler(t *testing.T) {
	body := `{"email":"ana@example.com","password":"pw"}`

	t.Run("unknown user", func(t *testing.T) {
		rec := do(context.Background(), NewHandler(&mockCredentials{loginErr: ErrUserNotFound}).Login, http.MethodPost, body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"user not found"}`, rec.Body.String())
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := do(context.Background(), NewHandler(&mockCredentials{loginErr: ErrInvalidCredentials}).Login, http.MethodPost, body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Wrong password"}`, rec.Body.String())
	})

	t.Run("success", func(t *testing.T) {
		resp := &models.LoginResponse{
			User:      models.PublicUser{Name: "Ana", Email: "ana@example.com"},
			Token:     "tok",
			ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		rec := do(context.Background(), NewHandler(&mockCredentials{loginResp: resp}).Login, http.MethodPost, body)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"user":{"name":"Ana","email":"ana@example.com","photoURL":""},"token":"tok","expiresAt":"2030-01-01T00:00:00Z"}`, rec.Body.String())
	})
}

func TestLogoutHandler(t *testing.T) {
	m := &mockCredentials{}
	h := NewHandler(m)

	rec := do(context.Background(), h.Logout, http.MethodPost, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	ctx := WithIdentity(context.Background(), Identity{Email: "ana@example.com", TokenID: "jti-1"})
	rec = do(ctx, h.Logout, http.MethodPost, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jti-1", m.loggedOut)
}

func TestListUsersHandlerOmitsPassword(t *testing.T) {
	m := &mockCredentials{users: []models.User{{ID: "1", Name: "Ana", Email: "ana@example.com", Password: "$2a$10$hash"}}}
	rec := do(context.Background(), NewHandler(m).ListUsers, http.MethodGet, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "$2a$10$hash")
	assert.Contains(t, rec.Body.String(), `"email":"ana@example.com"`)
}
