package carrier

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/jrsteele09/go-share-portal/internal/config"
	"github.com/jrsteele09/go-share-portal/internal/errors"
	"github.com/jrsteele09/go-share-portal/metrics"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	tokenPath = "/oauth/token"

	// DefaultExpiresIn applies when the carrier omits expires_in.
	DefaultExpiresIn = 1800 * time.Second

	// expirySafetyMargin keeps a token from expiring mid-flight.
	expirySafetyMargin = time.Second
)

// TokenManager caches the carrier's client-credentials bearer token.
//
// The cache mutex only guards the slot; it is not held during the grant,
// so concurrent callers that see an expired token may each fetch a new one.
// Either token is valid for the request that fetched it.
type TokenManager struct {
	cc     *clientcredentials.Config
	client *http.Client
	now    func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

type Option func(*TokenManager)

func WithClock(now func() time.Time) Option {
	return func(m *TokenManager) {
		m.now = now
	}
}

func NewTokenManager(cfg config.CarrierConfig, client *http.Client, opts ...Option) *TokenManager {
	if client == nil {
		client = http.DefaultClient
	}
	m := &TokenManager{
		cc: &clientcredentials.Config{
			ClientID:     cfg.GetCarrierClientID(),
			ClientSecret: cfg.GetCarrierClientSecret(),
			TokenURL:     cfg.GetCarrierBaseURL() + tokenPath,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		client: client,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Token returns the cached token while it is valid, otherwise performs one
// client-credentials grant. A refused grant is a *errors.CarrierAuthError; it
// is not retried here.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	if token, ok := m.cached(); ok {
		metrics.CarrierTokenCacheHits.Inc()
		return token, nil
	}

	tok, err := m.cc.Token(context.WithValue(ctx, oauth2.HTTPClient, m.client))
	if err != nil {
		metrics.CarrierTokenGrants.WithLabelValues("failed").Inc()
		authErr := &errors.CarrierAuthError{Err: err}
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			authErr.StatusCode = retrieveErr.Response.StatusCode
		}
		return "", authErr
	}
	metrics.CarrierTokenGrants.WithLabelValues("success").Inc()

	expiresIn := grantLifetime(tok)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = tok.AccessToken
	m.expiresAt = m.now().Add(expiresIn - expirySafetyMargin)
	return m.token, nil
}

// grantLifetime reads expires_in from the grant response. The
// client-credentials source does not copy it into Token.ExpiresIn.
func grantLifetime(tok *oauth2.Token) time.Duration {
	var seconds float64
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		seconds = v
	case json.Number:
		seconds, _ = v.Float64()
	case string:
		seconds, _ = strconv.ParseFloat(v, 64)
	}
	if seconds <= 0 {
		return DefaultExpiresIn
	}
	return time.Duration(seconds) * time.Second
}

// Invalidate drops the cached token so the next call performs a new grant.
func (m *TokenManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.expiresAt = time.Time{}
}

func (m *TokenManager) cached() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token != "" && m.now().Before(m.expiresAt) {
		return m.token, true
	}
	return "", false
}

// ExpiresAt reports when the cached token stops being used.
func (m *TokenManager) ExpiresAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expiresAt
}
