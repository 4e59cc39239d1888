package server

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-share-portal/auth"
)

// stateCookieName binds an OAuth state value to the browser that started the flow.
const stateCookieName = "zoho_oauth_state"

func (s *Server) setStateCookie(w http.ResponseWriter, stateID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    stateID,
		Path:     RouteZohoCallback,
		HttpOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(auth.DefaultStateTTL.Seconds()),
	})
}

func (s *Server) clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     RouteZohoCallback,
		HttpOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// redirectSuccess helper for htmx-aware redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError sends the browser to origin/?error=<code>.
func redirectWithError(w http.ResponseWriter, r *http.Request, origin, errorCode string) {
	http.Redirect(w, r, origin+RouteHome+"?error="+url.QueryEscape(errorCode), http.StatusFound)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
