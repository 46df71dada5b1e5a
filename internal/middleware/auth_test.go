package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(UserID(r.Context())))
	})
}

func TestAuthenticatorLocalToken(t *testing.T) {
	a := NewAuthenticator(AuthConfig{JWTSecret: testSecret})
	token, err := IssueToken(testSecret, "user-42", time.Hour, time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	a.Middleware(echoUser()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", rec.Body.String())
}

func TestAuthenticatorAnonymousPassesThrough(t *testing.T) {
	a := NewAuthenticator(AuthConfig{JWTSecret: testSecret})
	rec := httptest.NewRecorder()
	a.Middleware(echoUser()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestAuthenticatorRejectsBadTokens(t *testing.T) {
	a := NewAuthenticator(AuthConfig{JWTSecret: testSecret})

	expired, err := IssueToken(testSecret, "user-1", -time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	wrongKey, err := IssueToken("another-secret-another-secret-another", "user-1", time.Hour, time.Now())
	require.NoError(t, err)
	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	for name, header := range map[string]string{
		"expired":   "Bearer " + expired,
		"wrong key": "Bearer " + wrongKey,
		"no sub":    "Bearer " + noSub,
		"scheme":    "Basic abc",
		"garbage":   "Bearer not.a.jwt",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", header)
			rec := httptest.NewRecorder()
			a.Middleware(echoUser()).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"Invalid authentication token"}`, rec.Body.String())
		})
	}
}

func TestAuthenticatorRemoteFallback(t *testing.T) {
	defer gock.Off()

	gock.New("https://project.supabase.co").
		Get("/auth/v1/user").
		MatchHeader("Authorization", "Bearer opaque-token").
		MatchHeader("apikey", "anon").
		Reply(http.StatusOK).
		JSON(map[string]string{"id": "remote-user", "email": "a@b.c", "role": "authenticated"})
	gock.New("https://project.supabase.co").
		Get("/auth/v1/user").
		Reply(http.StatusUnauthorized).
		JSON(map[string]string{"msg": "invalid JWT"})

	a := NewAuthenticator(AuthConfig{URL: "https://project.supabase.co/", AnonKey: "anon"})
	gock.InterceptClient(a.client)

	u, err := a.Validate(context.Background(), "opaque-token")
	require.NoError(t, err)
	assert.Equal(t, "remote-user", u.ID)
	assert.Equal(t, "a@b.c", u.Email)

	_, err = a.Validate(context.Background(), "revoked-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.True(t, gock.IsDone())
}

func TestAuthenticatorWithoutValidator(t *testing.T) {
	_, err := NewAuthenticator(AuthConfig{}).Validate(context.Background(), "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRequireAuth(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireAuth(echoUser()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Authorization header required"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithUser(req.Context(), &User{ID: "u1"}))
	rec = httptest.NewRecorder()
	RequireAuth(echoUser()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())
}

func TestAuthenticatorOptionalDropsBadTokens(t *testing.T) {
	a := NewAuthenticator(AuthConfig{JWTSecret: testSecret})

	expired, err := IssueToken(testSecret, "user-1", -time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	valid, err := IssueToken(testSecret, "user-7", time.Hour, time.Now())
	require.NoError(t, err)

	for header, want := range map[string]string{
		"":                  "",
		"Bearer " + expired: "",
		"Basic abc":         "",
		"Bearer " + valid:   "user-7",
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		a.Optional(echoUser()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, header)
		assert.Equal(t, want, rec.Body.String(), header)
	}
}
