package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-share-portal/crm"
	"github.com/jrsteele09/go-share-portal/internal/errors"
	"github.com/jrsteele09/go-share-portal/pdf"
	"github.com/jrsteele09/go-share-portal/proxy"
	"github.com/jrsteele09/go-share-portal/signedlink"
	"github.com/rs/zerolog"
)

// verifyLink checks the signed link in ?t=.
func (s *Server) verifyLink(token string) (signedlink.Payload, error) {
	if token == "" {
		return signedlink.Payload{}, invalid("Missing token")
	}
	return s.links.Verify(token)
}

// ValidateLinkHandler reports whether ?t= is a valid, unexpired link.
func (s *Server) ValidateLinkHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := s.verifyLink(r.URL.Query().Get("t"))
		if err != nil {
			writeAPIError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "payload": payload})
	}
}

// PublicProductsHandler lists products for a link holder using the portal's
// own CRM credential.
func (s *Server) PublicProductsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.verifyLink(r.URL.Query().Get("t")); err != nil {
			writeAPIError(w, r, err)
			return
		}
		session, err := s.portalSession(w, r)
		if err != nil {
			writeAPIError(w, r, err)
			return
		}

		products, err := proxy.WithAuthRetry(r.Context(), session, s.refresh(), func(ctx context.Context, token string) ([]crm.Product, error) {
			return s.crm.SearchProducts(ctx, token, crm.SchemeZohoOAuth)
		})
		if err != nil {
			writeAPIError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, dataResponse{Data: products})
	}
}

type publicSubmitRequest struct {
	Token    string         `json:"token"`
	Products map[string]any `json:"products"`
}

// PublicSubmitHandler renders a link holder's response as a PDF and attaches
// it to the account the link was issued for.
func (s *Server) PublicSubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())

		var req publicSubmitRequest
		if err := decodeJSON(r, &req); err != nil {
			writeAPIError(w, r, err)
			return
		}
		payload, err := s.verifyLink(req.Token)
		if err != nil {
			writeAPIError(w, r, err)
			return
		}
		if req.Products == nil {
			writeAPIError(w, r, invalid("products are required"))
			return
		}

		document, err := s.pdf.RenderProductList(req.Products, s.now())
		if err != nil {
			writeAPIError(w, r, err)
			return
		}

		session, err := s.portalSession(w, r)
		if err != nil {
			writeAPIError(w, r, err)
			return
		}
		file := crm.File{Name: pdf.DefaultFileName, ContentType: pdf.ContentType, Content: document}
		result, err := proxy.WithAuthRetry(r.Context(), session, s.refresh(), func(ctx context.Context, token string) (crm.UploadResult, error) {
			return s.crm.UploadAccountAttachment(ctx, token, crm.SchemeZohoOAuth, crm.V8, payload.AccountID, file)
		})
		if err != nil {
			writeAPIError(w, r, err)
			return
		}
		if result.AttachmentID == "" {
			writeAPIError(w, r, errors.Wrapf(errors.ErrInternal, "attachment uploaded but no id returned"))
			return
		}

		logger.Info().
			Str("account_id", payload.AccountID).
			Str("contact_id", payload.ContactID).
			Str("attachment_id", result.AttachmentID).
			Msg("Product list submitted")
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "attachmentId": result.AttachmentID})
	}
}
