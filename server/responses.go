package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-share-portal/crm"
	"github.com/jrsteele09/go-share-portal/internal/errors"
	"github.com/rs/zerolog"
)

const contentTypeJSON = "application/json"

var (
	errUnauthenticated = errors.ErrUnauthenticated
	errRefreshFailed   = errors.ErrRefreshFailed
)

type errorBody struct {
	Error  string `json:"error"`
	Detail any    `json:"detail,omitempty"`
	Status int    `json:"status,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrapf(errors.ErrInvalidRequest, "invalid JSON body: %v", err)
	}
	return nil
}

// wantsPage reports whether the request is part of a page load rather than
// an API call.
func wantsPage(r *http.Request) bool {
	return isHTMXRequest(r) || strings.Contains(r.Header.Get("Accept"), "text/html")
}

// writeError answers err as JSON. A page load without a usable CRM session is
// sent to the connect flow instead.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if wantsPage(r) && (errors.Is(err, errors.ErrUnauthenticated) || errors.Is(err, errors.ErrRefreshFailed)) {
		redirectSuccess(w, r, RouteZohoAuth)
		return
	}
	writeAPIError(w, r, err)
}

// writeAPIError maps err onto a status code and JSON body. It never redirects.
func writeAPIError(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())

	var upstream *errors.UpstreamError
	var carrierAuth *errors.CarrierAuthError
	var requestErr *errors.RequestError

	switch {
	case errors.Is(err, errors.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Not authenticated"})
	case errors.Is(err, errors.ErrRefreshFailed):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Refresh failed"})
	case errors.Is(err, errors.ErrInvalidSignature):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Invalid token"})
	case errors.Is(err, errors.ErrExpired):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Link expired"})
	case errors.Is(err, errors.ErrMalformed):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Malformed token"})
	case errors.As(err, &requestErr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: requestErr.Msg})
	case errors.Is(err, errors.ErrUnknownDeliveryType), errors.Is(err, errors.ErrInvalidRequest):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, errors.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
	case errors.As(err, &carrierAuth):
		logger.Warn().Err(err).Msg("Carrier refused the client credentials")
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "Carrier authentication failed", Status: carrierAuth.StatusCode})
	case errors.As(err, &upstream):
		logger.Warn().Err(err).Str("target", upstream.Target).Msg("Upstream request failed")
		// Only the CRM credential maps to 401
		status := http.StatusBadGateway
		if upstream.Target == crm.UpstreamName && upstream.IsAuthorizationFailure() {
			status = http.StatusUnauthorized
		}
		writeJSON(w, status, errorBody{Error: upstream.Target + " request failed", Detail: upstreamDetail(upstream.Body), Status: upstream.Status})
	default:
		logger.Err(err).Msg("Unexpected error")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Unexpected error"})
	}
}

// upstreamDetail passes a JSON error body through as is, anything else as text.
func upstreamDetail(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	return string(body)
}
