package proxy

import (
	"net/http"
	"sync"
)

const (
	// AccessCookieName holds the CRM access token between requests.
	AccessCookieName = "zoho_access"

	accessCookieMaxAge = 3600
)

// Session is where a proxied call reads its access token from and where a
// refreshed token is written back to.
type Session interface {
	AccessToken() string
	SetAccessToken(token string)
}

// CookieSession keeps the access token in the zoho_access cookie.
type CookieSession struct {
	w      http.ResponseWriter
	token  string
	secure bool
}

var _ Session = (*CookieSession)(nil)

// NewCookieSession reads the access token from r. Rewrites are set on w and
// are only marked Secure in production.
func NewCookieSession(w http.ResponseWriter, r *http.Request, secure bool) *CookieSession {
	s := &CookieSession{w: w, secure: secure}
	if c, err := r.Cookie(AccessCookieName); err == nil {
		s.token = c.Value
	}
	return s
}

func (s *CookieSession) AccessToken() string {
	return s.token
}

func (s *CookieSession) SetAccessToken(token string) {
	s.token = token
	SetAccessCookie(s.w, token, s.secure)
}

// SetAccessCookie writes the access token cookie.
func SetAccessCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   accessCookieMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// MemorySession holds a server-side access token, used where the caller has
// no cookie of its own.
type MemorySession struct {
	mu    sync.Mutex
	token string
}

var _ Session = (*MemorySession)(nil)

func NewMemorySession(token string) *MemorySession {
	return &MemorySession{token: token}
}

func (s *MemorySession) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *MemorySession) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}
