package server

import (
	"net/http"

	"github.com/jrsteele09/go-share-portal/auth"
	"github.com/jrsteele09/go-share-portal/proxy"
	"github.com/rs/zerolog"
)

// ConnectHandler starts the CRM consent flow.
func (s *Server) ConnectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.config.GetZohoClientID() == "" || s.config.GetZohoRedirectURI() == "" {
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Missing Zoho env vars"})
			return
		}

		state, stateID, err := s.state.Issue()
		if err != nil {
			writeAPIError(w, r, err)
			return
		}
		s.setStateCookie(w, stateID)
		http.Redirect(w, r, s.tokens.AuthCodeURL(state), http.StatusFound)
	}
}

// CallbackHandler completes the consent flow: the code is exchanged, the
// refresh token stored and the access token set as the session cookie.
// Every failure is reported to the home page as ?error=<code>.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())
		origin := requestOrigin(r)
		q := r.URL.Query()

		if errorParam := q.Get("error"); errorParam != "" {
			redirectWithError(w, r, origin, errorParam)
			return
		}
		code := q.Get("code")
		if code == "" {
			redirectWithError(w, r, origin, "MissingCode")
			return
		}

		stateID, err := s.state.Verify(q.Get("state"))
		cookie, cookieErr := r.Cookie(stateCookieName)
		s.clearStateCookie(w)
		if err != nil || cookieErr != nil || cookie.Value != stateID {
			logger.Warn().Err(err).Msg("OAuth callback with an invalid state")
			redirectWithError(w, r, origin, "InvalidState")
			return
		}

		tokens, err := s.tokens.ExchangeCode(r.Context(), s.userID, code)
		if err != nil {
			logger.Warn().Err(err).Msg("Authorization code exchange failed")
			redirectWithError(w, r, origin, auth.ExchangeErrorCode(err))
			return
		}

		proxy.SetAccessCookie(w, tokens.AccessToken, s.config.IsProduction())
		http.Redirect(w, r, origin+RouteProductList, http.StatusFound)
	}
}
