package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-share-portal/internal/errors"
)

const (
	contactFields = "id,Full_Name,Email,Phone,Account_Name,Lead"
	productFields = "id,Product_Name,Product_Category,Category,Description,Product_Code,Unit_Price,UoM,Quantity_per_SKU"

	// ProductCriteria selects finished products that may be shown to customers.
	ProductCriteria = "(EliteChem_Product:equals:true) and " +
		"(Finished_EliteChem_Product:equals:Yes) and " +
		"((Product_Website_Status:equals:Live) or (Product_Website_Status:equals:Draft)) and " +
		"((Item_Classification:equals:Organization Only) or (Item_Classification:equals:Public))"

	sampleRequestsModule = "producttab__Sample_Requests"
	entityFields         = "Email,Phone,Name"
)

// ContactFilter selects contacts by account or, when AccountID is empty, by lead.
type ContactFilter struct {
	AccountID string
	LeadID    string
}

func (f ContactFilter) criteria() (string, error) {
	switch {
	case f.AccountID != "":
		return fmt.Sprintf("(Account_Name:equals:%s)", f.AccountID), nil
	case f.LeadID != "":
		return fmt.Sprintf("(Lead:equals:%s)", f.LeadID), nil
	default:
		return "", errors.InvalidRequest("Missing accountId or leadId")
	}
}

func searchURL(base string, criteria, fields string) string {
	q := url.Values{}
	q.Set("criteria", criteria)
	q.Set("fields", fields)
	return base + "?" + q.Encode()
}

func (c *Client) SearchContacts(ctx context.Context, token string, scheme AuthScheme, filter ContactFilter) ([]Contact, error) {
	criteria, err := filter.criteria()
	if err != nil {
		return nil, err
	}
	var raw recordList[rawContact]
	if err := c.getJSON(ctx, searchURL(c.recordURL(V2, "Contacts/search"), criteria, contactFields), token, scheme, &raw); err != nil {
		return nil, errors.Wrapf(err, "[crm SearchContacts]")
	}
	return normalizeContacts(raw.Data), nil
}

func (c *Client) SearchProducts(ctx context.Context, token string, scheme AuthScheme) ([]Product, error) {
	var raw recordList[rawProduct]
	if err := c.getJSON(ctx, searchURL(c.recordURL(V2, "Products/search"), ProductCriteria, productFields), token, scheme, &raw); err != nil {
		return nil, errors.Wrapf(err, "[crm SearchProducts]")
	}
	return normalizeProducts(raw.Data), nil
}

// ListSampleRequestAttachments returns the attachments of a sample request,
// each with a CRM preview URL.
func (c *Client) ListSampleRequestAttachments(ctx context.Context, token string, scheme AuthScheme, recordID string) ([]Attachment, error) {
	endpoint := c.recordURL(V2, fmt.Sprintf("%s/%s/Attachments?include_download_url=true", sampleRequestsModule, url.PathEscape(recordID)))
	var raw recordList[rawAttachment]
	if err := c.getJSON(ctx, endpoint, token, scheme, &raw); err != nil {
		return nil, errors.Wrapf(err, "[crm ListSampleRequestAttachments]")
	}
	return c.normalizeAttachments(raw.Data), nil
}

// EntityRef names a lead or account record.
type EntityRef struct {
	Module string
	ID     string
}

func (e EntityRef) String() string {
	return e.Module + "/" + e.ID
}

// GetEntityContact reads the contact fields of a lead or account.
func (c *Client) GetEntityContact(ctx context.Context, token string, scheme AuthScheme, entity EntityRef) (EntityContact, error) {
	endpoint := c.recordURL(V7, fmt.Sprintf("%s/%s?fields=%s", entity.Module, url.PathEscape(entity.ID), entityFields))
	var raw recordList[EntityContact]
	if err := c.getJSON(ctx, endpoint, token, scheme, &raw); err != nil {
		return EntityContact{}, errors.Wrapf(err, "[crm GetEntityContact]")
	}
	if len(raw.Data) == 0 {
		return EntityContact{}, errors.Wrapf(errors.ErrNotFound, "[crm GetEntityContact] %s", entity)
	}
	return raw.Data[0], nil
}

// TrackingUpdate is written to a sample request once a label is purchased.
type TrackingUpdate struct {
	ID             string  `json:"id"`
	TrackingNumber string  `json:"producttab__FedEx_tracking_no"`
	ShipDate       string  `json:"producttab__Ship_Date"`
	ShippingMethod string  `json:"FedEx_shipping_options"`
	LabelURL       *string `json:"FedEx_Tracking_Label_Url,omitempty"`
}

// UpdateSampleRequest patches the tracking fields of a sample request and
// returns the CRM's raw answer.
func (c *Client) UpdateSampleRequest(ctx context.Context, token string, scheme AuthScheme, update TrackingUpdate) (json.RawMessage, error) {
	body, err := json.Marshal(recordList[TrackingUpdate]{Data: []TrackingUpdate{update}})
	if err != nil {
		return nil, errors.Wrapf(err, "[crm UpdateSampleRequest]")
	}
	resp, err := c.do(ctx, request{
		method:      http.MethodPatch,
		url:         c.recordURL(V7, sampleRequestsModule+"/"+url.PathEscape(update.ID)),
		token:       token,
		scheme:      scheme,
		contentType: "application/json",
		body:        body,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "[crm UpdateSampleRequest]")
	}
	return json.RawMessage(resp), nil
}

// ExecuteFunction runs a CRM function with requestData as its argument. The
// answer is returned as JSON when it parses, otherwise as the raw text.
func (c *Client) ExecuteFunction(ctx context.Context, token string, scheme AuthScheme, name string, requestData any) (any, error) {
	data, err := json.Marshal(requestData)
	if err != nil {
		return nil, errors.Wrapf(err, "[crm ExecuteFunction]")
	}
	form := url.Values{}
	form.Set("requestData", string(data))
	form.Set("auth_type", "oauth")

	resp, err := c.do(ctx, request{
		method:      http.MethodPost,
		url:         fmt.Sprintf("%s/crm/v2/functions/%s/actions/execute", c.crmURL, url.PathEscape(name)),
		token:       token,
		scheme:      scheme,
		contentType: "application/x-www-form-urlencoded; charset=UTF-8",
		body:        []byte(form.Encode()),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "[crm ExecuteFunction]")
	}
	if json.Valid(resp) {
		return json.RawMessage(resp), nil
	}
	return strings.TrimSpace(string(resp)), nil
}

// ListInventoryItems returns the inventory item listing as received.
func (c *Client) ListInventoryItems(ctx context.Context, token string, scheme AuthScheme) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/api/v1/items?organization_id=%s", c.inventoryURL, url.QueryEscape(c.inventoryOrgID))
	resp, err := c.do(ctx, request{method: http.MethodGet, url: endpoint, token: token, scheme: scheme})
	if err != nil {
		return nil, errors.Wrapf(err, "[crm ListInventoryItems]")
	}
	return json.RawMessage(resp), nil
}
