package api

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/basic"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dnounce/dnounce-api/config"
)

// AdminTokenTTL is how long an admin session token stays valid.
const AdminTokenTTL = 12 * time.Hour

// Tokens are re-verified against their signature once the cached entry ages out.
const tokenCacheTTL = 5 * time.Minute

const tokenIssuer = "dnounce-api"

var errInvalidCredentials = errors.New("invalid credentials")

// AdminAuth guards the admin dashboard routes. Admins log in with basic auth
// against ADMIN_EMAIL and ADMIN_PASSWORD_HASH and receive a signed bearer
// token for later calls.
type AdminAuth struct {
	email         string
	passwordHash  []byte
	secret        []byte
	authenticator auth.Authenticator
	now           func() time.Time
}

type adminClaims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

// AdminTokenResponse is the body returned by Login.
type AdminTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewAdminAuth sets up go-guardian with a basic strategy for login and a
// cached bearer strategy for tokens. Without JWT_SECRET a random key is used,
// so tokens do not survive a restart.
func NewAdminAuth(conf *config.Config) *AdminAuth {
	secret := []byte(conf.JWTSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			panic(fmt.Sprintf("admin auth: cannot generate signing key: %v", err))
		}
		zap.S().Warn("JWT_SECRET not set, admin tokens are signed with an ephemeral key")
	}

	a := &AdminAuth{
		email:        strings.ToLower(strings.TrimSpace(conf.AdminEmail)),
		passwordHash: []byte(conf.AdminPasswordHash),
		secret:       secret,
		now:          time.Now,
	}

	cache := store.NewFIFO(context.Background(), tokenCacheTTL)
	a.authenticator = auth.New()
	a.authenticator.EnableStrategy(basic.StrategyKey, basic.New(a.validateAdmin, cache))
	a.authenticator.EnableStrategy(bearer.CachedStrategyKey, bearer.New(a.validateToken, cache))
	return a
}

// Middleware rejects requests that carry neither valid admin credentials nor
// a valid admin token.
func (a *AdminAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.authenticator.Authenticate(r)
		if err != nil {
			zap.S().Warnw("unauthorized admin request", "url", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		zap.S().Debugf("admin %s authenticated", user.UserName())
		next.ServeHTTP(w, r)
	})
}

// Login exchanges basic credentials for a bearer token.
func (a *AdminAuth) Login(w http.ResponseWriter, r *http.Request) {
	email, password, ok := r.BasicAuth()
	if !ok {
		config.ErrorStatus("basic auth required", http.StatusUnauthorized, w, errInvalidCredentials)
		return
	}
	info, err := a.validateAdmin(r.Context(), r, email, password)
	if err != nil {
		config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, err)
		return
	}

	token, expires, err := a.IssueToken(info.UserName())
	if err != nil {
		config.ErrorStatus("failed to issue token", http.StatusInternalServerError, w, err)
		return
	}
	_ = auth.Append(a.authenticator.Strategy(bearer.CachedStrategyKey), token, info, r)

	b, err := json.Marshal(AdminTokenResponse{Token: token, ExpiresAt: expires})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// IssueToken signs an admin token for email.
func (a *AdminAuth) IssueToken(email string) (string, time.Time, error) {
	now := a.now()
	expires := now.Add(AdminTokenTTL)
	claims := adminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Scope: "admin",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	return signed, expires, err
}

func (a *AdminAuth) validateAdmin(_ context.Context, _ *http.Request, email, password string) (auth.Info, error) {
	if a.email == "" || len(a.passwordHash) == 0 {
		return nil, fmt.Errorf("admin login disabled: %w", errInvalidCredentials)
	}
	given := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	expected := sha256.Sum256([]byte(a.email))
	emailMatch := subtle.ConstantTimeCompare(given[:], expected[:]) == 1

	// Always run bcrypt so a wrong email costs the same as a wrong password.
	pwErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	if !emailMatch || pwErr != nil {
		return nil, errInvalidCredentials
	}
	return auth.NewDefaultUser(a.email, a.email, []string{"admin"}, nil), nil
}

func (a *AdminAuth) validateToken(_ context.Context, _ *http.Request, token string) (auth.Info, error) {
	claims := &adminClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.Scope != "admin" {
		return nil, errInvalidCredentials
	}
	return auth.NewDefaultUser(claims.Subject, claims.Subject, []string{"admin"}, nil), nil
}
