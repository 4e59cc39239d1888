package carrier

import "encoding/json"

type AccountNumber struct {
	Value string `json:"value"`
}

type Address struct {
	StreetLines         []string `json:"streetLines"`
	City                string   `json:"city,omitempty"`
	StateOrProvinceCode string   `json:"stateOrProvinceCode,omitempty"`
	PostalCode          string   `json:"postalCode,omitempty"`
	CountryCode         string   `json:"countryCode"`
	Residential         bool     `json:"residential"`
}

type Contact struct {
	PersonName   string `json:"personName,omitempty"`
	CompanyName  string `json:"companyName,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
}

type Party struct {
	Address Address `json:"address"`
	Contact Contact `json:"contact"`
}

type LabelSpecification struct {
	LabelFormatType string `json:"labelFormatType"`
	ImageType       string `json:"imageType"`
	LabelStockType  string `json:"labelStockType"`
	LabelOrder      string `json:"labelOrder"`
}

type ShippingChargesPayment struct {
	PaymentType string `json:"paymentType"`
}

type ShipmentSpecialServices struct {
	SpecialServiceTypes []string `json:"specialServiceTypes"`
}

// RequestedShipment describes one shipment. Package line items are passed
// through as received from the rate request.
type RequestedShipment struct {
	LabelSpecification        LabelSpecification       `json:"labelSpecification"`
	PackagingType             string                   `json:"packagingType"`
	PickupType                string                   `json:"pickupType"`
	ServiceType               string                   `json:"serviceType"`
	Shipper                   Party                    `json:"shipper"`
	Recipients                []Party                  `json:"recipients"`
	RequestedPackageLineItems []json.RawMessage        `json:"requestedPackageLineItems"`
	ShippingChargesPayment    ShippingChargesPayment   `json:"shippingChargesPayment"`
	ShipmentSpecialServices   *ShipmentSpecialServices `json:"shipmentSpecialServices,omitempty"`
	TotalWeight               float64                  `json:"totalWeight,omitempty"`
}

type ShipmentRequest struct {
	AccountNumber        AccountNumber     `json:"accountNumber"`
	LabelResponseOptions string            `json:"labelResponseOptions"`
	MergeLabelDocOption  string            `json:"mergeLabelDocOption"`
	RequestedShipment    RequestedShipment `json:"requestedShipment"`
}

type PackageDocument struct {
	URL         string `json:"url"`
	ContentType string `json:"contentType,omitempty"`
	DocType     string `json:"docType,omitempty"`
}

type PieceResponse struct {
	TrackingNumber   string            `json:"trackingNumber,omitempty"`
	PackageDocuments []PackageDocument `json:"packageDocuments"`
}

type TransactionShipment struct {
	MasterTrackingNumber string          `json:"masterTrackingNumber"`
	ShipDatestamp        string          `json:"shipDatestamp"`
	ServiceType          string          `json:"serviceType,omitempty"`
	PieceResponses       []PieceResponse `json:"pieceResponses"`
}

type ShipmentResponse struct {
	TransactionID string `json:"transactionId,omitempty"`
	Output        struct {
		TransactionShipments []TransactionShipment `json:"transactionShipments"`
	} `json:"output"`
}

func (r *ShipmentResponse) first() *TransactionShipment {
	if r == nil || len(r.Output.TransactionShipments) == 0 {
		return nil
	}
	return &r.Output.TransactionShipments[0]
}

// LabelURLs returns every package document URL of the first shipment.
func (r *ShipmentResponse) LabelURLs() []string {
	urls := []string{}
	if ts := r.first(); ts != nil {
		for _, piece := range ts.PieceResponses {
			for _, doc := range piece.PackageDocuments {
				urls = append(urls, doc.URL)
			}
		}
	}
	return urls
}

func (r *ShipmentResponse) TrackingNumber() string {
	if ts := r.first(); ts != nil {
		return ts.MasterTrackingNumber
	}
	return ""
}

func (r *ShipmentResponse) ShipDate() string {
	if ts := r.first(); ts != nil {
		return ts.ShipDatestamp
	}
	return ""
}
