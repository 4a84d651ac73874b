package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/http/auth"
)

const secret = "test-secret"

func signedToken(t *testing.T, method jwt.SigningMethod, key any, expiresAt time.Time) string {
	t.Helper()

	token, err := jwt.NewWithClaims(method, jwt.MapClaims{
		"sub": "ops",
		"exp": expiresAt.Unix(),
	}).SignedString(key)
	require.NoError(t, err)

	return token
}

func request(t *testing.T, authorization string) *httptest.ResponseRecorder {
	t.Helper()

	handler := auth.Middleware(secret)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/files", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func TestMiddleware_AcceptsValidToken(t *testing.T) {
	token := signedToken(t, jwt.SigningMethodHS256, []byte(secret), time.Now().Add(time.Hour))

	rec := request(t, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddleware_RejectsMissingHeader(t *testing.T) {
	rec := request(t, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_RejectsNonBearerScheme(t *testing.T) {
	rec := request(t, "Basic b3BzOnNlY3JldA==")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_RejectsWrongSecret(t *testing.T) {
	token := signedToken(t, jwt.SigningMethodHS256, []byte("other-secret"), time.Now().Add(time.Hour))

	rec := request(t, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_RejectsExpiredToken(t *testing.T) {
	token := signedToken(t, jwt.SigningMethodHS256, []byte(secret), time.Now().Add(-time.Hour))

	rec := request(t, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_RejectsUnexpectedSigningMethod(t *testing.T) {
	token := signedToken(t, jwt.SigningMethodHS512, []byte(secret), time.Now().Add(time.Hour))

	rec := request(t, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
