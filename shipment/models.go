package shipment

import (
	"encoding/json"

	"github.com/jrsteele09/go-share-portal/carrier"
)

type Ref struct {
	ID string `json:"id"`
}

// SampleRequest is the CRM sample request the shipment is for. Exactly one of
// Lead or Account names the recipient.
type SampleRequest struct {
	ID          string `json:"id"`
	Lead        *Ref   `json:"lead,omitempty"`
	Account     *Ref   `json:"account,omitempty"`
	Company     string `json:"company"`
	AttentionTo string `json:"attentionTo"`
}

// RatePayload is the rate quote the user accepted. Its recipient address and
// package line items are reused for the shipment.
type RatePayload struct {
	RequestedShipment struct {
		Recipient struct {
			Address carrier.Address `json:"address"`
		} `json:"recipient"`
		RequestedPackageLineItems []json.RawMessage `json:"requestedPackageLineItems"`
	} `json:"requestedShipment"`
	TotalWeight float64 `json:"totalWeight,omitempty"`
}

type Request struct {
	SampleRequest   SampleRequest   `json:"selectedSR"`
	ShippingPayload RatePayload     `json:"shippingPayload"`
	DeliveryType    string          `json:"deliveryType"`
	ShippingCost    json.RawMessage `json:"shippingCost,omitempty"`
}

type Result struct {
	Success         bool     `json:"success"`
	LabelURL        []string `json:"labelUrl"`
	ShipDate        string   `json:"shipDate"`
	TrackingNumber  string   `json:"trackingNumber"`
	SampleRequestID string   `json:"sampleRequestId"`
}

// TrackingSync is a manual tracking entry for a sample request.
type TrackingSync struct {
	RecordID       string `json:"recordId"`
	TrackingNumber string `json:"trackingNumber"`
	ShipDate       string `json:"shipDate"`
	ShippingMethod string `json:"shippingMethod"`
}

func (t TrackingSync) Validate() error {
	if t.RecordID == "" || t.TrackingNumber == "" || t.ShipDate == "" || t.ShippingMethod == "" {
		return errInvalid("recordId, trackingNumber, shipDate and shippingMethod are required")
	}
	return nil
}
