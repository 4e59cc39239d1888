// Package crm calls the CRM record, function and inventory APIs and
// normalises their payloads into the portal's own shapes.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-share-portal/internal/config"
	"github.com/jrsteele09/go-share-portal/internal/errors"
	"github.com/jrsteele09/go-share-portal/metrics"
)

// UpstreamName labels CRM failures in metrics and errors.
const UpstreamName = "crm"

// AuthScheme is the Authorization header scheme an endpoint family expects.
type AuthScheme string

const (
	// SchemeZohoOAuth is used by the v2 record API, functions and inventory.
	SchemeZohoOAuth AuthScheme = "Zoho-oauthtoken"
	// SchemeBearer is used by the v7 and v8 record API.
	SchemeBearer AuthScheme = "Bearer"
)

func (s AuthScheme) header(token string) string {
	return string(s) + " " + token
}

// APIVersion selects the record API generation.
type APIVersion string

const (
	V2 APIVersion = "v2"
	V7 APIVersion = "v7"
	V8 APIVersion = "v8"
)

// Client is a thin CRM HTTP client. The access token and its scheme are
// supplied on every call.
type Client struct {
	apiURL         string
	crmURL         string
	inventoryURL   string
	crmOrgID       string
	inventoryOrgID string
	client         *http.Client
}

func NewClient(cfg config.ZohoConfig, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		apiURL:         cfg.GetZohoAPIURL(),
		crmURL:         cfg.GetZohoCRMURL(),
		inventoryURL:   cfg.GetZohoInventoryURL(),
		crmOrgID:       cfg.GetZohoCRMOrgID(),
		inventoryOrgID: cfg.GetZohoInventoryOrgID(),
		client:         client,
	}
}

func (c *Client) recordURL(version APIVersion, path string) string {
	return fmt.Sprintf("%s/crm/%s/%s", c.apiURL, version, path)
}

type request struct {
	method      string
	url         string
	token       string
	scheme      AuthScheme
	contentType string
	body        []byte
}

// do sends req and returns the response body. A non-2xx status is returned as
// an *errors.UpstreamError so callers can tell an expired token from a bad request.
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", req.scheme.header(req.token))
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(UpstreamName, "error").Inc()
		return nil, err
	}
	defer resp.Body.Close()
	metrics.UpstreamRequests.WithLabelValues(UpstreamName, strconv.Itoa(resp.StatusCode)).Inc()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &errors.UpstreamError{Target: UpstreamName, Status: resp.StatusCode, Body: respBody}
	}
	return respBody, nil
}

func (c *Client) getJSON(ctx context.Context, url, token string, scheme AuthScheme, out any) error {
	body, err := c.do(ctx, request{method: http.MethodGet, url: url, token: token, scheme: scheme})
	if err != nil {
		return err
	}
	// Searches answer 204 with no body when nothing matches
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}
