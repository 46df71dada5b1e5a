package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/bryanwahyu/glowguide/internal/logger"
)

type contextKey string

const userKey contextKey = "user"

var (
	ErrMissingToken = errors.New("authorization header required")
	ErrInvalidToken = errors.New("invalid authentication token")
)

// User is the authenticated caller.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type AuthConfig struct {
	// JWTSecret verifies HS256 tokens without a network hop.
	JWTSecret string
	// URL and AnonKey enable validation against <URL>/auth/v1/user when the
	// local check is unavailable or fails.
	URL     string
	AnonKey string
}

type Authenticator struct {
	cfg    AuthConfig
	client *http.Client
}

func NewAuthenticator(cfg AuthConfig) *Authenticator {
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	return &Authenticator{cfg: cfg, client: &http.Client{Timeout: 10 * time.Second}}
}

// Middleware resolves the bearer token when present. Requests without an
// Authorization header pass through anonymously; a bad token is rejected.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.resolve(r)
		if err != nil {
			logger.Debug(r.Context(), "token rejected", zap.Error(err))
			WriteError(w, http.StatusUnauthorized, "Invalid authentication token", "")
			return
		}
		next.ServeHTTP(w, withCaller(r, user))
	})
}

// Optional is Middleware for routes that work without an account: a token
// that fails validation is dropped and the request continues anonymously.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.resolve(r)
		if err != nil {
			logger.Debug(r.Context(), "ignoring invalid token on public route", zap.Error(err))
		}
		next.ServeHTTP(w, withCaller(r, user))
	})
}

// resolve returns a nil user when no Authorization header is sent.
func (a *Authenticator) resolve(r *http.Request) (*User, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, nil
	}
	token, ok := bearer(header)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported scheme", ErrInvalidToken)
	}
	return a.Validate(r.Context(), token)
}

func withCaller(r *http.Request, user *User) *http.Request {
	if user == nil {
		return r
	}
	ctx := WithUser(r.Context(), user)
	ctx = logger.WithFields(ctx, zap.String("user_id", user.ID))
	return r.WithContext(ctx)
}

// RequireAuth rejects requests that Middleware left anonymous.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			WriteError(w, http.StatusUnauthorized, "Authorization header required", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Validate checks token locally first, then remotely.
func (a *Authenticator) Validate(ctx context.Context, token string) (*User, error) {
	var localErr error
	if a.cfg.JWTSecret != "" {
		user, err := a.validateLocal(token)
		if err == nil {
			return user, nil
		}
		localErr = err
	}
	if a.cfg.URL != "" {
		return a.validateRemote(ctx, token)
	}
	if localErr != nil {
		return nil, localErr
	}
	return nil, fmt.Errorf("%w: no validator configured", ErrInvalidToken)
}

type claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func (a *Authenticator) validateLocal(token string) (*User, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return []byte(a.cfg.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return &User{ID: c.Subject, Email: c.Email, Role: c.Role}, nil
}

func (a *Authenticator) validateRemote(ctx context.Context, token string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.URL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if a.cfg.AnonKey != "" {
		req.Header.Set("apikey", a.cfg.AnonKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth server: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: auth server returned %d", ErrInvalidToken, resp.StatusCode)
	}

	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("decode auth user: %w", err)
	}
	if u.ID == "" {
		return nil, fmt.Errorf("%w: empty user", ErrInvalidToken)
	}
	return &u, nil
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// IssueToken signs an HS256 token for local development.
func IssueToken(secret, subject string, ttl time.Duration, now time.Time) (string, error) {
	c := claims{
		Role: "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userKey).(*User)
	return u
}

// UserID returns "" for anonymous requests.
func UserID(ctx context.Context) string {
	if u := UserFromContext(ctx); u != nil {
		return u.ID
	}
	return ""
}
