// Package token issues and verifies the HS256 access and refresh tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bazaar/marketplace-api/internal/core/domain"
	"github.com/bazaar/marketplace-api/internal/core/ports"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour

	typeAccess  = "access"
	typeRefresh = "refresh"
)

// Config holds the signing material and lifetimes.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

type claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Type  string `json:"typ"`
	jwt.RegisteredClaims
}

// Service implements ports.TokenService.
type Service struct {
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	now        func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces time.Now for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService validates cfg and returns a token service. The two secrets must
// be non-empty and different so that neither can forge the other's tokens.
func NewService(cfg Config, opts ...Option) (*Service, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("token: access and refresh secrets are required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("token: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}

	s := &Service{
		accessKey:  []byte(cfg.AccessSecret),
		refreshKey: []byte(cfg.RefreshSecret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		issuer:     cfg.Issuer,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

var _ ports.TokenService = (*Service)(nil)

func (s *Service) IssueAccess(c ports.TokenClaims) (string, error) {
	return s.issue(c, typeAccess, s.accessKey, s.accessTTL)
}

func (s *Service) IssueRefresh(c ports.TokenClaims) (string, error) {
	return s.issue(c, typeRefresh, s.refreshKey, s.refreshTTL)
}

func (s *Service) VerifyAccess(token string) (*ports.TokenClaims, error) {
	return s.verify(token, typeAccess, s.accessKey)
}

func (s *Service) VerifyRefresh(token string) (*ports.TokenClaims, error) {
	return s.verify(token, typeRefresh, s.refreshKey)
}

func (s *Service) issue(c ports.TokenClaims, typ string, key []byte, ttl time.Duration) (string, error) {
	now := s.now()
	tc := claims{
		Email: c.Email,
		Role:  string(c.Role),
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.UserID,
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

func (s *Service) verify(token, typ string, key []byte) (*ports.TokenClaims, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	var tc claims
	parsed, err := parser.ParseWithClaims(token, &tc, func(*jwt.Token) (any, error) {
		return key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}
	if !parsed.Valid || tc.Type != typ || tc.Subject == "" {
		return nil, domain.ErrTokenInvalid
	}
	if s.issuer != "" && tc.Issuer != s.issuer {
		return nil, domain.ErrTokenInvalid
	}

	out := &ports.TokenClaims{
		UserID: tc.Subject,
		Email:  tc.Email,
		Role:   domain.Role(tc.Role),
		ID:     tc.ID,
	}
	if tc.IssuedAt != nil {
		out.IssuedAt = tc.IssuedAt.Time.UTC()
	}
	if tc.ExpiresAt != nil {
		out.ExpiresAt = tc.ExpiresAt.Time.UTC()
	}
	return out, nil
}
