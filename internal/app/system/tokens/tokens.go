// Package tokens issues and verifies the signed bearer tokens used by the
// admin API.
package tokens

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/portfolio/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const Issuer = "portfolio-api"

var (
	// ErrNotConfigured means the signing secret or expiry is missing. It is
	// a startup error, never a per-request one.
	ErrNotConfigured = errors.New("tokens: jwt_secret and jwt_expire must be set")
	ErrInvalidToken  = errors.New("tokens: invalid token")
)

// Claims carries the user id and role. The JSON names match what the
// frontend decodes.
type Claims struct {
	UserID string      `json:"id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Service signs and parses HS256 tokens.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// New builds a Service from the configured secret and expiry string.
func New(secret, expire string) (*Service, error) {
	if secret == "" || expire == "" {
		return nil, ErrNotConfigured
	}
	ttl, err := ParseExpiry(expire)
	if err != nil {
		return nil, err
	}
	return &Service{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL is the lifetime of issued tokens.
func (s *Service) TTL() time.Duration { return s.ttl }

// Issue signs a token for the user and returns it with its expiry time.
func (s *Service) Issue(userID primitive.ObjectID, role models.Role) (string, time.Time, error) {
	if s == nil || len(s.secret) == 0 || s.ttl <= 0 {
		return "", time.Time{}, ErrNotConfigured
	}
	now := s.now()
	exp := now.Add(s.ttl)
	claims := &Claims{
		UserID: userID.Hex(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   userID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies signature, issuer and expiry and returns the claims.
func (s *Service) Parse(token string) (*Claims, error) {
	if s == nil || len(s.secret) == 0 {
		return nil, ErrNotConfigured
	}
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(Issuer),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if _, err := primitive.ObjectIDFromHex(claims.UserID); err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return claims, nil
}

// ParseExpiry accepts Go durations ("12h", "90m"), a day suffix ("30d"),
// or a bare number of seconds ("3600").
func ParseExpiry(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrNotConfigured
	}
	var d time.Duration
	switch {
	case strings.HasSuffix(s, "d"):
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, fmt.Errorf("tokens: bad expiry %q", s)
		}
		d = time.Duration(n) * 24 * time.Hour
	default:
		if n, err := strconv.Atoi(s); err == nil {
			d = time.Duration(n) * time.Second
			break
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("tokens: bad expiry %q", s)
		}
		d = parsed
	}
	if d <= 0 {
		return 0, fmt.Errorf("tokens: expiry must be positive, got %q", s)
	}
	return d, nil
}
