// Package session owns the client's authentication state: the bearer token,
// the identity decoded from it, and the login/register/logout lifecycle.
package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-faster/jx"
	"go.uber.org/zap"

	"github.com/xenking/tavola-client/internal/api"
)

// AuthError is a rejected login or registration. The message is shown to the
// user as-is, so it carries the backend's wording when available.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// Credentials identify a user at login, by email or by phone. The caller
// picks one mode; whichever field is non-empty is sent.
type Credentials struct {
	Email    string
	Phone    string
	Password string
}

// Registration is the payload for creating a new account.
type Registration struct {
	Email    string
	Password string
	FullName string
	Phone    string
}

// Store holds the session state. The invariant is that identity is non-nil
// exactly when a well-formed token is held; a malformed token means
// unauthenticated, never an error.
//
// Store is single-writer: all mutations happen on the UI event goroutine, so
// no locking is needed. Readers on other goroutines (the gateway's
// TokenSource) observe the token field, which is only swapped whole.
type Store struct {
	baseURL string
	http    *http.Client
	storage TokenStorage
	lg      *zap.Logger

	token    string
	identity *Identity
	epoch    uint64
}

// NewStore creates a Store. Call Restore to pick up a previously persisted
// token.
func NewStore(baseURL string, httpClient *http.Client, storage TokenStorage, lg *zap.Logger) *Store {
	return &Store{
		baseURL: baseURL,
		http:    httpClient,
		storage: storage,
		lg:      lg,
	}
}

// Restore loads a persisted token, if any, and decodes its identity.
// Decoding is best-effort with no server round-trip: a malformed stored token
// is discarded and the store stays unauthenticated.
func (s *Store) Restore() {
	token, err := s.storage.Load()
	if err != nil {
		s.lg.Warn("Token storage unreadable", zap.Error(err))
		return
	}
	if token == "" {
		return
	}

	identity, err := decodeIdentity(token)
	if err != nil {
		s.lg.Warn("Discarding malformed stored token", zap.Error(err))
		if err := s.storage.Clear(); err != nil {
			s.lg.Warn("Clear token storage", zap.Error(err))
		}
		return
	}

	s.token = token
	s.identity = identity
	s.epoch++
	s.lg.Info("Session restored", zap.String("email", identity.Email))
}

// Login authenticates against POST /auth/login and establishes the session.
//
// The call goes through the store's own HTTP client rather than the gateway:
// a 401 here means rejected credentials (an AuthError), not an expired
// session, and must not trigger the gateway's forced-logout path.
func (s *Store) Login(ctx context.Context, creds Credentials) error {
	body, status, err := s.post(ctx, "/auth/login", encodeCredentials(creds))
	if err != nil {
		return &AuthError{Message: err.Error()}
	}
	if status < 200 || status > 299 {
		return &AuthError{Message: authMessage(body, fmt.Sprintf("Login failed: %d", status))}
	}

	token := tokenFromBody(body)
	if token == "" {
		return &AuthError{Message: "login response did not include a token"}
	}

	identity, err := decodeIdentity(token)
	if err != nil {
		return &AuthError{Message: "server returned an unreadable token"}
	}

	if err := s.storage.Save(token); err != nil {
		s.lg.Warn("Persist token", zap.Error(err))
	}
	s.token = token
	s.identity = identity
	s.epoch++
	s.lg.Info("Logged in", zap.String("email", identity.Email), zap.String("role", identity.Role))
	return nil
}

// Register creates an account via POST /auth/register. It does not establish
// a session; success only confirms the account exists.
func (s *Store) Register(ctx context.Context, reg Registration) error {
	body, status, err := s.post(ctx, "/auth/register", encodeRegistration(reg))
	if err != nil {
		return &AuthError{Message: err.Error()}
	}
	if status < 200 || status > 299 {
		return &AuthError{Message: authMessage(body, fmt.Sprintf("Registration failed: %d", status))}
	}
	return nil
}

// Logout destroys the session unconditionally. No network round-trip is
// needed; clearing local state always succeeds.
func (s *Store) Logout() {
	s.Invalidate()
}

// Invalidate implements api.TokenSource: the gateway calls it on 401.
func (s *Store) Invalidate() {
	if s.token == "" && s.identity == nil {
		return
	}
	s.token = ""
	s.identity = nil
	s.epoch++
	if err := s.storage.Clear(); err != nil {
		s.lg.Warn("Clear token storage", zap.Error(err))
	}
}

// Token implements api.TokenSource.
func (s *Store) Token() string {
	return s.token
}

// Identity returns the decoded identity, or nil when unauthenticated.
func (s *Store) Identity() *Identity {
	return s.identity
}

// Authenticated reports whether a session is established.
func (s *Store) Authenticated() bool {
	return s.identity != nil
}

// Epoch increases on every session transition (login, logout, forced
// invalidation). Callers of long-running operations capture it before
// suspending and discard results if it moved.
func (s *Store) Epoch() uint64 {
	return s.epoch
}

// post sends a JSON body and returns the response body and status. Transport
// errors are mapped to a generic connectivity message.
func (s *Store) post(ctx context.Context, endpoint string, payload []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("cannot reach the server, check your connection")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("cannot reach the server, check your connection")
	}
	return body, resp.StatusCode, nil
}

// authMessage picks the most specific error text available: the body's JSON
// message, else the raw body text (the backend sometimes answers plain
// strings), else the given fallback.
func authMessage(body []byte, fallback string) string {
	if msg := api.MessageFromBody(body); msg != "" {
		return msg
	}
	// Plain-text bodies pass through; HTML error pages do not.
	if text := string(bytes.TrimSpace(body)); text != "" && text[0] != '<' {
		return text
	}
	return fallback
}

func encodeCredentials(creds Credentials) []byte {
	var e jx.Encoder
	e.ObjStart()
	if creds.Email != "" {
		e.FieldStart("email")
		e.Str(creds.Email)
	} else {
		e.FieldStart("phone")
		e.Str(creds.Phone)
	}
	e.FieldStart("password")
	e.Str(creds.Password)
	e.ObjEnd()
	return e.Bytes()
}

func encodeRegistration(reg Registration) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("email")
	e.Str(reg.Email)
	e.FieldStart("password")
	e.Str(reg.Password)
	e.FieldStart("fullName")
	e.Str(reg.FullName)
	e.FieldStart("phone")
	e.Str(reg.Phone)
	e.ObjEnd()
	return e.Bytes()
}

// tokenFromBody extracts the "token" field from a login response.
func tokenFromBody(body []byte) string {
	var token string
	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "token" {
			return d.Skip()
		}
		v, err := d.Str()
		if err != nil {
			return err
		}
		token = v
		return nil
	})
	if err != nil {
		return ""
	}
	return token
}
