package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-share-portal/internal/errors"
	"github.com/jrsteele09/go-share-portal/metrics"
)

const (
	shipmentsPath = "/ship/v1/shipments"
	upstreamName  = "carrier"
)

// TokenSource supplies the carrier bearer token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// invalidator is implemented by token sources that cache.
type invalidator interface {
	Invalidate()
}

// Client calls the carrier's ship API.
type Client struct {
	baseURL string
	tokens  TokenSource
	client  *http.Client
}

func NewClient(baseURL string, tokens TokenSource, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{baseURL: baseURL, tokens: tokens, client: client}
}

// CreateShipment purchases a label. A non-2xx answer is returned as an
// *errors.UpstreamError carrying the carrier's body.
func (c *Client) CreateShipment(ctx context.Context, shipment ShipmentRequest) (*ShipmentResponse, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(shipment)
	if err != nil {
		return nil, fmt.Errorf("[carrier CreateShipment] %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+shipmentsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("[carrier CreateShipment] %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(upstreamName, "error").Inc()
		return nil, fmt.Errorf("[carrier CreateShipment] %w", err)
	}
	defer resp.Body.Close()
	metrics.UpstreamRequests.WithLabelValues(upstreamName, strconv.Itoa(resp.StatusCode)).Inc()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("[carrier CreateShipment] failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// A rejected bearer token is not reused by the next shipment
		if resp.StatusCode == http.StatusUnauthorized {
			if inv, ok := c.tokens.(invalidator); ok {
				inv.Invalidate()
			}
		}
		return nil, &errors.UpstreamError{Target: upstreamName, Status: resp.StatusCode, Body: respBody}
	}

	var out ShipmentResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("[carrier CreateShipment] cannot parse response: %w", err)
	}
	return &out, nil
}
