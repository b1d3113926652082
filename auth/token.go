// Package auth supplies bearer credentials to the transport layer. A
// TokenSource yields the credential for each request and can produce a
// replacement when the remote service reports the credential expired.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoRefresh is returned by token sources that cannot mint a replacement
// credential.
var ErrNoRefresh = errors.New("auth: token source cannot refresh")

// TokenSource yields bearer credentials for outbound requests.
type TokenSource interface {
	// Token returns the credential to attach to the next request.
	Token(ctx context.Context) (string, error)
	// Refresh obtains a replacement credential after the remote service
	// reported the current one expired.
	Refresh(ctx context.Context) (string, error)
}

// StaticTokenSource always returns the same credential and cannot refresh.
type StaticTokenSource struct {
	token string
}

// NewStaticTokenSource creates a TokenSource around a fixed credential.
func NewStaticTokenSource(token string) *StaticTokenSource {
	return &StaticTokenSource{token: token}
}

// Token returns the fixed credential.
func (s *StaticTokenSource) Token(context.Context) (string, error) { return s.token, nil }

// Refresh always fails with ErrNoRefresh.
func (s *StaticTokenSource) Refresh(context.Context) (string, error) { return "", ErrNoRefresh }

// RefreshOptions configures a RefreshableTokenSource.
type RefreshOptions struct {
	// InitialToken seeds the cache so the first request skips the fetch.
	InitialToken string
	// ExpiryLeeway refreshes JWT credentials proactively when they expire
	// within this window. Ignored for opaque (non-JWT) credentials.
	ExpiryLeeway time.Duration
}

// RefreshableTokenSource caches a credential obtained from a fetch callback
// and replaces it on demand. When the cached credential is a JWT carrying an
// exp claim, Token refreshes proactively before the claim lapses so most
// requests never hit the expired-credential retry path at all.
type RefreshableTokenSource struct {
	mu     sync.Mutex
	token  string
	fetch  func(ctx context.Context) (string, error)
	leeway time.Duration
}

// NewRefreshableTokenSource creates a TokenSource backed by fetch.
func NewRefreshableTokenSource(fetch func(ctx context.Context) (string, error), optFns ...func(o *RefreshOptions)) *RefreshableTokenSource {
	opts := RefreshOptions{ExpiryLeeway: 30 * time.Second}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &RefreshableTokenSource{token: opts.InitialToken, fetch: fetch, leeway: opts.ExpiryLeeway}
}

// Token returns the cached credential, fetching a fresh one when the cache is
// empty or the cached JWT is about to expire.
func (s *RefreshableTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" && !s.expiringSoonLocked() {
		return s.token, nil
	}
	return s.refreshLocked(ctx)
}

// Refresh discards the cached credential and fetches a replacement.
func (s *RefreshableTokenSource) Refresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *RefreshableTokenSource) refreshLocked(ctx context.Context) (string, error) {
	if s.fetch == nil {
		return "", ErrNoRefresh
	}
	token, err := s.fetch(ctx)
	if err != nil {
		return "", err
	}
	s.token = token
	return token, nil
}

// expiringSoonLocked inspects the cached credential's exp claim without
// verifying the signature. Opaque credentials never report as expiring.
func (s *RefreshableTokenSource) expiringSoonLocked() bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return time.Until(claims.ExpiresAt.Time) < s.leeway
}
