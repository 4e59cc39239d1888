package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-share-portal/auth"
	"github.com/jrsteele09/go-share-portal/crm"
	"github.com/jrsteele09/go-share-portal/internal/config"
	"github.com/jrsteele09/go-share-portal/pdf"
	"github.com/jrsteele09/go-share-portal/proxy"
	"github.com/jrsteele09/go-share-portal/shipment"
	"github.com/jrsteele09/go-share-portal/signedlink"
	"github.com/rs/zerolog/log"
)

// TokenManager is the CRM OAuth client used by the connect flow and by
// every proxied call.
type TokenManager interface {
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, userID, code string) (auth.TokenPair, error)
	Refresh(ctx context.Context, userID string) (string, bool)
}

// Dependencies are the collaborators a Server is built from.
type Dependencies struct {
	Tokens    TokenManager
	State     *auth.StateSigner
	Links     *signedlink.Codec
	CRM       *crm.Client
	Shipments *shipment.Service
	PDF       pdf.Renderer
}

type Server struct {
	env    string // Environment (e.g., "DEV", "PRODUCTION")
	mux    *http.ServeMux
	routes []string
	config config.Config
	userID string
	now    func() time.Time

	tokens    TokenManager
	state     *auth.StateSigner
	links     *signedlink.Codec
	crm       *crm.Client
	shipments *shipment.Service
	pdf       pdf.Renderer

	// portal holds the portal user's access token for the public pages
	portal *proxy.MemorySession
}

func New(config config.Config, deps Dependencies) (*Server, error) {
	if deps.Tokens == nil || deps.State == nil || deps.Links == nil || deps.CRM == nil || deps.Shipments == nil {
		return nil, fmt.Errorf("[Server New] missing dependency")
	}
	if deps.PDF == nil {
		deps.PDF = pdf.NewProductListRenderer("")
	}

	s := &Server{
		env:       config.GetEnv(),
		mux:       http.NewServeMux(),
		config:    config,
		userID:    config.GetPortalUserID(),
		now:       time.Now,
		tokens:    deps.Tokens,
		state:     deps.State,
		links:     deps.Links,
		crm:       deps.CRM,
		shipments: deps.Shipments,
		pdf:       deps.PDF,
		portal:    proxy.NewMemorySession(""),
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// refresh renews the portal user's access token.
func (s *Server) refresh() proxy.RefreshFunc {
	return proxy.RefreshFor(s.tokens, s.userID)
}

// session is the caller's access-token cookie.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *proxy.CookieSession {
	return proxy.NewCookieSession(w, r, s.config.IsProduction())
}

// portalSession is used by the public pages, whose visitors have no CRM
// session of their own. Staff previewing a link still use their cookie.
// The portal token is shared across requests and only refreshed when empty
// or when the CRM rejects it inside proxy.WithAuthRetry.
func (s *Server) portalSession(w http.ResponseWriter, r *http.Request) (proxy.Session, error) {
	if session := s.session(w, r); session.AccessToken() != "" {
		return session, nil
	}
	if s.portal.AccessToken() != "" {
		return s.portal, nil
	}
	token, ok := s.tokens.Refresh(r.Context(), s.userID)
	if !ok {
		return nil, errRefreshFailed
	}
	s.portal.SetAccessToken(token)
	return s.portal, nil
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}

// requestOrigin rebuilds the browser-visible origin behind a proxy.
func requestOrigin(r *http.Request) string {
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	return getScheme(r) + "://" + host
}
