// Package shipment buys a carrier label for a CRM sample request and records
// the tracking details back on the request.
package shipment

import (
	"context"
	"encoding/json"

	"github.com/jrsteele09/go-share-portal/carrier"
	"github.com/jrsteele09/go-share-portal/crm"
	"github.com/jrsteele09/go-share-portal/internal/config"
	"github.com/jrsteele09/go-share-portal/internal/errors"
	"github.com/jrsteele09/go-share-portal/metrics"
	"github.com/jrsteele09/go-share-portal/proxy"
	"github.com/rs/zerolog"
)

const maxCompanyNameLen = 35

type CRM interface {
	GetEntityContact(ctx context.Context, token string, scheme crm.AuthScheme, entity crm.EntityRef) (crm.EntityContact, error)
	UpdateSampleRequest(ctx context.Context, token string, scheme crm.AuthScheme, update crm.TrackingUpdate) (json.RawMessage, error)
}

type Carrier interface {
	CreateShipment(ctx context.Context, shipment carrier.ShipmentRequest) (*carrier.ShipmentResponse, error)
}

type Service struct {
	crm           CRM
	carrier       Carrier
	refresh       proxy.RefreshFunc
	accountNumber string
	shipper       config.Shipper
}

func NewService(crmClient CRM, carrierClient Carrier, refresh proxy.RefreshFunc, cfg config.CarrierConfig) *Service {
	return &Service{
		crm:           crmClient,
		carrier:       carrierClient,
		refresh:       refresh,
		accountNumber: cfg.GetCarrierAccountNumber(),
		shipper:       cfg.GetShipper(),
	}
}

func errInvalid(msg string) error {
	return errors.InvalidRequest(msg)
}

// Create buys a label for req. Resolving the recipient, reading its contact
// details and creating the shipment must all succeed; no CRM record is changed
// otherwise. The tracking update that follows is best effort: once the label
// is bought its details are returned even if the update fails.
func (s *Service) Create(ctx context.Context, session proxy.Session, req Request) (Result, error) {
	logger := zerolog.Ctx(ctx)

	if session.AccessToken() == "" {
		return Result{}, errors.ErrUnauthenticated
	}

	entity, companyName, err := resolveEntity(req.SampleRequest)
	if err != nil {
		return Result{}, err
	}
	packagingType, err := PackagingType(req.DeliveryType)
	if err != nil {
		return Result{}, err
	}

	contact, err := proxy.WithAuthRetry(ctx, session, s.refresh, func(ctx context.Context, token string) (crm.EntityContact, error) {
		return s.crm.GetEntityContact(ctx, token, crm.SchemeBearer, entity)
	})
	if err != nil {
		metrics.Shipments.WithLabelValues("crm_failed").Inc()
		return Result{}, errors.Wrapf(err, "[shipment Create] failed to fetch %s", entity)
	}

	shipment := s.buildShipment(req, packagingType, companyName, contact)
	resp, err := s.carrier.CreateShipment(ctx, shipment)
	if err != nil {
		metrics.Shipments.WithLabelValues("carrier_failed").Inc()
		return Result{}, errors.Wrapf(err, "[shipment Create]")
	}
	metrics.Shipments.WithLabelValues("success").Inc()

	result := Result{
		Success:         true,
		LabelURL:        resp.LabelURLs(),
		ShipDate:        resp.ShipDate(),
		TrackingNumber:  resp.TrackingNumber(),
		SampleRequestID: req.SampleRequest.ID,
	}
	logger.Info().
		Str("sample_request_id", result.SampleRequestID).
		Str("tracking_number", result.TrackingNumber).
		Msg("Shipment created")

	if result.SampleRequestID == "" || result.ShipDate == "" || result.TrackingNumber == "" {
		metrics.TrackingUpdates.WithLabelValues("skipped").Inc()
		return result, nil
	}

	update := crm.TrackingUpdate{
		ID:             result.SampleRequestID,
		TrackingNumber: result.TrackingNumber,
		ShipDate:       result.ShipDate,
		ShippingMethod: req.DeliveryType,
	}
	if len(result.LabelURL) > 0 {
		update.LabelURL = &result.LabelURL[0]
	}
	if _, err := s.updateTracking(ctx, session, update); err != nil {
		logger.Warn().Err(err).Str("sample_request_id", result.SampleRequestID).Msg("Failed to record tracking on sample request")
	}
	return result, nil
}

// SyncTracking records manually entered tracking details on a sample request.
func (s *Service) SyncTracking(ctx context.Context, session proxy.Session, sync TrackingSync) (json.RawMessage, error) {
	if err := sync.Validate(); err != nil {
		return nil, err
	}
	return s.updateTracking(ctx, session, crm.TrackingUpdate{
		ID:             sync.RecordID,
		TrackingNumber: sync.TrackingNumber,
		ShipDate:       sync.ShipDate,
		ShippingMethod: sync.ShippingMethod,
	})
}

func (s *Service) updateTracking(ctx context.Context, session proxy.Session, update crm.TrackingUpdate) (json.RawMessage, error) {
	result, err := proxy.WithAuthRetry(ctx, session, s.refresh, func(ctx context.Context, token string) (json.RawMessage, error) {
		return s.crm.UpdateSampleRequest(ctx, token, crm.SchemeBearer, update)
	})
	if err != nil {
		metrics.TrackingUpdates.WithLabelValues("failed").Inc()
		return nil, err
	}
	metrics.TrackingUpdates.WithLabelValues("success").Inc()
	return result, nil
}

func resolveEntity(sr SampleRequest) (crm.EntityRef, string, error) {
	var entity crm.EntityRef
	switch {
	case sr.Lead != nil && sr.Lead.ID != "":
		entity = crm.EntityRef{Module: "Leads", ID: sr.Lead.ID}
	case sr.Account != nil && sr.Account.ID != "":
		entity = crm.EntityRef{Module: "Accounts", ID: sr.Account.ID}
	default:
		return crm.EntityRef{}, "", errInvalid("no valid lead or account provided")
	}
	return entity, truncate(sr.Company, maxCompanyNameLen), nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func (s *Service) buildShipment(req Request, packagingType, companyName string, contact crm.EntityContact) carrier.ShipmentRequest {
	rate := req.ShippingPayload.RequestedShipment
	return carrier.ShipmentRequest{
		AccountNumber:        carrier.AccountNumber{Value: s.accountNumber},
		LabelResponseOptions: "URL_ONLY",
		MergeLabelDocOption:  "LABELS_AND_DOCS",
		RequestedShipment: carrier.RequestedShipment{
			LabelSpecification: carrier.LabelSpecification{
				LabelFormatType: "COMMON2D",
				ImageType:       "PDF",
				LabelStockType:  "STOCK_4X6",
				LabelOrder:      "SHIPPING_LABEL_FIRST",
			},
			PackagingType: packagingType,
			PickupType:    PickupType,
			ServiceType:   ServiceType,
			Shipper: carrier.Party{
				Address: carrier.Address{
					StreetLines:         s.shipper.StreetLines,
					City:                s.shipper.City,
					StateOrProvinceCode: s.shipper.StateOrProvinceCode,
					PostalCode:          s.shipper.PostalCode,
					CountryCode:         s.shipper.CountryCode,
				},
				Contact: carrier.Contact{
					CompanyName:  s.shipper.CompanyName,
					PersonName:   s.shipper.PersonName,
					EmailAddress: s.shipper.EmailAddress,
					PhoneNumber:  s.shipper.PhoneNumber,
				},
			},
			Recipients: []carrier.Party{{
				Address: rate.Recipient.Address,
				Contact: carrier.Contact{
					PersonName:   "ATTN: " + req.SampleRequest.AttentionTo,
					CompanyName:  companyName,
					EmailAddress: contact.Email,
					PhoneNumber:  contact.Phone,
				},
			}},
			RequestedPackageLineItems: rate.RequestedPackageLineItems,
			ShippingChargesPayment:    carrier.ShippingChargesPayment{PaymentType: "SENDER"},
			ShipmentSpecialServices:   &carrier.ShipmentSpecialServices{SpecialServiceTypes: []string{OneRateService}},
			TotalWeight:               req.ShippingPayload.TotalWeight,
		},
	}
}
