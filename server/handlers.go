package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-share-portal/crm"
	"github.com/jrsteele09/go-share-portal/internal/errors"
	"github.com/jrsteele09/go-share-portal/proxy"
	"github.com/jrsteele09/go-share-portal/shipment"
	"github.com/jrsteele09/go-share-portal/signedlink"
)

const (
	defaultAttachmentName = "product-list.pdf"
	sendEmailFunction     = "sendproductemails"
)

type dataResponse struct {
	Data any `json:"data"`
}

func invalid(msg string) error {
	return errors.InvalidRequest(msg)
}

// ContactsHandler searches contacts by ?accountId= or ?leadId=.
func (s *Server) ContactsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := crm.ContactFilter{
			AccountID: r.URL.Query().Get("accountId"),
			LeadID:    r.URL.Query().Get("leadId"),
		}
		contacts, err := proxy.WithAuthRetry(r.Context(), s.session(w, r), s.refresh(), func(ctx context.Context, token string) ([]crm.Contact, error) {
			return s.crm.SearchContacts(ctx, token, crm.SchemeZohoOAuth, filter)
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, dataResponse{Data: contacts})
	}
}

func (s *Server) ProductsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := proxy.WithAuthRetry(r.Context(), s.session(w, r), s.refresh(), func(ctx context.Context, token string) ([]crm.Product, error) {
			return s.crm.SearchProducts(ctx, token, crm.SchemeZohoOAuth)
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, dataResponse{Data: products})
	}
}

type recordRequest struct {
	RecordID string `json:"recordId"`
}

func (s *Server) SampleRequestAttachmentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recordRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		if req.RecordID == "" {
			s.writeError(w, r, invalid("Missing recordId in request body"))
			return
		}

		attachments, err := proxy.WithAuthRetry(r.Context(), s.session(w, r), s.refresh(), func(ctx context.Context, token string) ([]crm.Attachment, error) {
			return s.crm.ListSampleRequestAttachments(ctx, token, crm.SchemeZohoOAuth, req.RecordID)
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"attachments": attachments})
	}
}

type saveAttachmentRequest struct {
	RecordID   string `json:"recordId"`
	FileName   string `json:"fileName"`
	FileBase64 string `json:"fileBase64"`
}

// SaveProductListAttachmentHandler attaches a client-rendered product list to an account.
func (s *Server) SaveProductListAttachmentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req saveAttachmentRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		if req.RecordID == "" || req.FileBase64 == "" {
			s.writeError(w, r, invalid("Missing recordId or fileBase64 in request body"))
			return
		}
		content, err := base64.StdEncoding.DecodeString(req.FileBase64)
		if err != nil {
			s.writeError(w, r, invalid("fileBase64 is not valid base64"))
			return
		}
		file := crm.File{Name: req.FileName, ContentType: "application/pdf", Content: content}
		if file.Name == "" {
			file.Name = defaultAttachmentName
		}

		result, err := proxy.WithAuthRetry(r.Context(), s.session(w, r), s.refresh(), func(ctx context.Context, token string) (crm.UploadResult, error) {
			return s.crm.UploadAccountAttachment(ctx, token, crm.SchemeZohoOAuth, crm.V2, req.RecordID, file)
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "result": result.Raw})
	}
}

type publicLinkRequest struct {
	AccountID string `json:"accountId"`
	ContactID string `json:"contactId"`
}

func (s *Server) GeneratePublicLinkHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req publicLinkRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		if req.AccountID == "" || req.ContactID == "" {
			s.writeError(w, r, invalid("Missing accountId or contactId"))
			return
		}

		token, err := s.links.Issue(req.AccountID, req.ContactID, 0)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"url":     signedlink.LinkURL(s.config.GetBaseURL(), token, req.AccountID),
		})
	}
}

type emailContact struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
}

type sendEmailRequest struct {
	Contacts   []emailContact `json:"contacts"`
	EntityID   string         `json:"entityId,omitempty"`
	EntityName string         `json:"entityName,omitempty"`
	PublicLink string         `json:"publicLink,omitempty"`
}

// SendEmailHandler runs the CRM function that emails the product list link.
func (s *Server) SendEmailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := s.session(w, r)
		if session.AccessToken() == "" {
			s.writeError(w, r, errUnauthenticated)
			return
		}
		var req sendEmailRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		if len(req.Contacts) == 0 {
			s.writeError(w, r, invalid("No contacts provided"))
			return
		}

		resp, err := proxy.WithAuthRetry(r.Context(), session, s.refresh(), func(ctx context.Context, token string) (any, error) {
			return s.crm.ExecuteFunction(ctx, token, crm.SchemeZohoOAuth, sendEmailFunction, req)
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "response": resp})
	}
}

func (s *Server) SubmitShipmentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := s.session(w, r)
		if session.AccessToken() == "" {
			s.writeError(w, r, errUnauthenticated)
			return
		}
		var req shipment.Request
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}

		result, err := s.shipments.Create(r.Context(), session, req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) SyncTrackingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req shipment.TrackingSync
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}

		result, err := s.shipments.SyncTracking(r.Context(), s.session(w, r), req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "updateResult": result})
	}
}

// InventoryHandler lists inventory items.
func (s *Server) InventoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := proxy.WithAuthRetry(r.Context(), s.session(w, r), s.refresh(), func(ctx context.Context, token string) (json.RawMessage, error) {
			return s.crm.ListInventoryItems(ctx, token, crm.SchemeZohoOAuth)
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, dataResponse{Data: items})
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
