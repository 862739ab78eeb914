package handlers_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-checklist/backend/internal/models"
	"go-checklist/backend/testutil"
)

func TestRegisterUser_Success(t *testing.T) {
	_, r, _, _ := testutil.SetupTestDB(t)

	w := testutil.DoJSON(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "New User",
		"email":    "New.User@Example.com",
		"password": "password789",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "New User", created.Name)
	assert.Equal(t, "new.user@example.com", created.Email)
	assert.NotContains(t, w.Body.String(), "password", "password hash must never be serialized")

	_, err := testutil.LoginAndGetToken(t, r, "new.user@example.com", "password789")
	assert.NoError(t, err)
}

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	_, r, _, _ := testutil.SetupTestDB(t)

	w := testutil.DoJSON(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Copycat",
		"email":    testutil.NormalUserEmail,
		"password": "password789",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Email already registered", decodeError(t, w).Message)
}

func TestRegisterUser_Validation(t *testing.T) {
	_, r, _, _ := testutil.SetupTestDB(t)

	cases := []struct {
		name    string
		body    map[string]string
		field   string
		message string
	}{
		{"missing name", map[string]string{"email": "a@example.com", "password": "password789"}, "name", "Name is required"},
		{"invalid email", map[string]string{"name": "A", "email": "not-an-email", "password": "password789"}, "email", "A valid email is required"},
		{"short password", map[string]string{"name": "A", "email": "a@example.com", "password": "short"}, "password", "Password must be at least 8 characters"},
		{"long password", map[string]string{"name": "A", "email": "a@example.com", "password": strings.Repeat("a", 73)}, "password", "Password must be at most 72 characters"},
		{"multibyte password over 72 bytes", map[string]string{"name": "A", "email": "a@example.com", "password": strings.Repeat("あ", 30)}, "password", "Password must be at most 72 bytes"},
		{"long name", map[string]string{"name": strings.Repeat("n", 256), "email": "a@example.com", "password": "password789"}, "name", "Name must be at most 255 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := testutil.DoJSON(t, r, http.MethodPost, "/api/auth/register", "", tc.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tc.message, body.Message)
			require.NotEmpty(t, body.Errors)
			assert.Equal(t, tc.field, body.Errors[0].Field)
		})
	}

	_, err := testutil.LoginAndGetToken(t, r, "a@example.com", "password789")
	assert.Error(t, err, "rejected registrations must not create a user")
}

func TestRegisterUser_PasswordAtBcryptLimit(t *testing.T) {
	_, r, _, _ := testutil.SetupTestDB(t)
	password := strings.Repeat("a", 72)

	w := testutil.DoJSON(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Limit",
		"email":    "limit@example.com",
		"password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	_, err := testutil.LoginAndGetToken(t, r, "limit@example.com", password)
	assert.NoError(t, err)
}

func TestLogin_Success(t *testing.T) {
	_, r, _, _ := testutil.SetupTestDB(t)

	w := testutil.DoJSON(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    testutil.NormalUserEmail,
		"password": testutil.NormalUserPassword,
	})

	require.Equal(t, http.StatusOK, w.Code)
	var res models.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.NotEmpty(t, res.Token)
	require.NotNil(t, res.User)
	assert.Equal(t, testutil.NormalUserEmail, res.User.Email)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	_, r, _, _ := testutil.SetupTestDB(t)

	for _, body := range []map[string]string{
		{"email": testutil.NormalUserEmail, "password": "wrong-password"},
		{"email": "nobody@example.com", "password": testutil.NormalUserPassword},
	} {
		w := testutil.DoJSON(t, r, http.MethodPost, "/api/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid credentials", decodeError(t, w).Message)
	}

	w := testutil.DoJSON(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{"email": testutil.NormalUserEmail})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Password is required", decodeError(t, w).Message)
}

func TestMe(t *testing.T) {
	_, r, _, _ := testutil.SetupTestDB(t)
	token, err := testutil.LoginAndGetToken(t, r, testutil.NormalUserEmail, testutil.NormalUserPassword)
	require.NoError(t, err)

	w := testutil.DoJSON(t, r, http.MethodGet, "/api/auth/me", token, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var claims models.JWTClaims
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &claims))
	assert.NotEmpty(t, claims.UserID)
	assert.Equal(t, testutil.NormalUserEmail, claims.Email)
}

func TestHealth(t *testing.T) {
	db, r, _, _ := testutil.SetupTestDB(t)

	w := testutil.DoJSON(t, r, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	require.NoError(t, db.Close())
	w = testutil.DoJSON(t, r, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestUnknownRoute(t *testing.T) {
	_, r, _, _ := testutil.SetupTestDB(t)

	w := testutil.DoJSON(t, r, http.MethodGet, "/api/nope", "", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", decodeError(t, w).Message)
}
