// Package signedlink issues and verifies the capability tokens embedded in
// public product-list links.
//
// A token has the form <base64(JSON payload)>.<hex(HMAC-SHA256(secret, base64 payload))>.
// It is self-contained: there is no server-side state and no revocation list.
package signedlink

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-share-portal/internal/errors"
	"github.com/jrsteele09/go-share-portal/metrics"
)

const (
	DefaultTTL = 30 * 24 * time.Hour
	separator  = "."

	// PublicPath is the customer facing page a link points to.
	PublicPath = "/product-list"
)

// Payload is the signed content of a link. Exp is in Unix milliseconds.
type Payload struct {
	AccountID string `json:"accountId"`
	ContactID string `json:"contactId"`
	Exp       int64  `json:"exp"`
}

func (p Payload) ExpiresAt() time.Time {
	return time.UnixMilli(p.Exp)
}

type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Codec)

// WithClock replaces time.Now, for expiry tests.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// WithTTL sets the lifetime used when Issue is called without one.
func WithTTL(ttl time.Duration) Option {
	return func(c *Codec) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func New(secret string, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, fmt.Errorf("[signedlink New] secret is required")
	}
	c := &Codec{
		secret: []byte(secret),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs a link for accountID/contactID valid for ttl, or the codec's
// default lifetime when ttl is zero.
func (c *Codec) Issue(accountID, contactID string, ttl time.Duration) (string, error) {
	if accountID == "" || contactID == "" {
		return "", errors.Wrapf(errors.ErrInvalidRequest, "[Codec Issue] accountId and contactId are required")
	}
	if ttl <= 0 {
		ttl = c.ttl
	}

	raw, err := json.Marshal(Payload{
		AccountID: accountID,
		ContactID: contactID,
		Exp:       c.now().Add(ttl).UnixMilli(),
	})
	if err != nil {
		return "", fmt.Errorf("[Codec Issue] %w", err)
	}

	data := base64.StdEncoding.EncodeToString(raw)
	metrics.SignedLinks.WithLabelValues("issue", "success").Inc()
	return data + separator + c.sign(data), nil
}

// Verify returns the payload of a token that was signed with this codec's
// secret and has not expired.
func (c *Codec) Verify(token string) (Payload, error) {
	payload, err := c.verify(token)
	if err != nil {
		metrics.SignedLinks.WithLabelValues("verify", outcome(err)).Inc()
		return Payload{}, err
	}
	metrics.SignedLinks.WithLabelValues("verify", "success").Inc()
	return payload, nil
}

func (c *Codec) verify(token string) (Payload, error) {
	parts := strings.Split(token, separator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Payload{}, errors.ErrMalformed
	}
	data, signature := parts[0], parts[1]

	if !hmac.Equal([]byte(signature), []byte(c.sign(data))) {
		return Payload{}, errors.ErrInvalidSignature
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return Payload{}, errors.Wrapf(errors.ErrMalformed, "[Codec Verify] %v", err)
	}
	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Payload{}, errors.Wrapf(errors.ErrMalformed, "[Codec Verify] %v", err)
	}
	if payload.AccountID == "" {
		return Payload{}, errors.ErrMalformed
	}

	if payload.Exp <= c.now().UnixMilli() {
		return Payload{}, errors.ErrExpired
	}
	return payload, nil
}

func (c *Codec) sign(data string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// LinkURL builds the distributable URL for a token, e.g.
// https://portal.example.com/product-list?a=<accountId>&t=<token>
func LinkURL(baseURL, token, accountID string) string {
	q := url.Values{}
	q.Set("t", token)
	q.Set("a", accountID)
	return strings.TrimRight(baseURL, "/") + PublicPath + "?" + q.Encode()
}

func outcome(err error) string {
	switch {
	case errors.Is(err, errors.ErrExpired):
		return "expired"
	case errors.Is(err, errors.ErrInvalidSignature):
		return "invalid_signature"
	default:
		return "malformed"
	}
}
