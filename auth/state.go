package auth

import (
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-share-portal/internal/errors"
	"golang.org/x/crypto/hkdf"
)

const (
	stateKeyInfo     = "crm-oauth-state"
	stateIssuer      = "share-portal"
	DefaultStateTTL  = 10 * time.Minute
	stateSigningSize = 32
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// StateSigner issues and checks the OAuth "state" parameter as a short-lived
// HS256 JWT. Its key is derived from the portal secret so that a state value
// can never be replayed as a signed link or vice versa.
type StateSigner struct {
	key []byte
	ttl time.Duration
}

func NewStateSigner(secret string, ttl time.Duration) (*StateSigner, error) {
	if secret == "" {
		return nil, fmt.Errorf("[NewStateSigner] secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}

	key := make([]byte, stateSigningSize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(stateKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("[NewStateSigner] failed to derive key: %w", err)
	}
	return &StateSigner{key: key, ttl: ttl}, nil
}

// Issue returns a new state value and its unique id.
func (s *StateSigner) Issue() (state string, id string, err error) {
	now := NowTimeFunc()
	id = uuid.NewString()
	claims := jwt.RegisteredClaims{
		ID:        id,
		Issuer:    stateIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	state, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", "", fmt.Errorf("[StateSigner Issue] %w", err)
	}
	return state, id, nil
}

// Verify checks the signature and expiry of state and returns its id.
func (s *StateSigner) Verify(state string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(state, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(stateIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(NowTimeFunc),
	)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInvalidState, "[StateSigner Verify] %v", err)
	}
	return claims.ID, nil
}
