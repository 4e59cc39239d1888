package shipment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/jrsteele09/go-share-portal/carrier"
	"github.com/jrsteele09/go-share-portal/crm"
	"github.com/jrsteele09/go-share-portal/internal/config"
	"github.com/jrsteele09/go-share-portal/internal/errors"
	"github.com/jrsteele09/go-share-portal/proxy"
	"github.com/jrsteele09/go-share-portal/shipment"
	"github.com/stretchr/testify/require"
)

type fakeCRM struct {
	contact    crm.EntityContact
	contactErr []error
	updateErr  error

	entities []crm.EntityRef
	tokens   []string
	updates  []crm.TrackingUpdate
}

func (f *fakeCRM) GetEntityContact(ctx context.Context, token string, scheme crm.AuthScheme, entity crm.EntityRef) (crm.EntityContact, error) {
	i := len(f.entities)
	f.entities = append(f.entities, entity)
	f.tokens = append(f.tokens, token)
	if i < len(f.contactErr) && f.contactErr[i] != nil {
		return crm.EntityContact{}, f.contactErr[i]
	}
	return f.contact, nil
}

func (f *fakeCRM) UpdateSampleRequest(ctx context.Context, token string, scheme crm.AuthScheme, update crm.TrackingUpdate) (json.RawMessage, error) {
	f.updates = append(f.updates, update)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return json.RawMessage(`{"data":[{"code":"SUCCESS"}]}`), nil
}

type fakeCarrier struct {
	resp     *carrier.ShipmentResponse
	err      error
	requests []carrier.ShipmentRequest
}

func (f *fakeCarrier) CreateShipment(ctx context.Context, req carrier.ShipmentRequest) (*carrier.ShipmentResponse, error) {
	f.requests = append(f.requests, req)
	return f.resp, f.err
}

func shipped(t *testing.T) *carrier.ShipmentResponse {
	t.Helper()
	var resp carrier.ShipmentResponse
	require.NoError(t, json.Unmarshal([]byte(`{"output":{"transactionShipments":[{
	  "masterTrackingNumber":"794953555571",
	  "shipDatestamp":"2024-05-01",
	  "pieceResponses":[{"packageDocuments":[{"url":"https://labels.example.com/1.pdf"}]}]
	}]}}`), &resp))
	return &resp
}

func noRefresh(ctx context.Context) (string, bool) {
	return "", false
}

func request(t *testing.T) shipment.Request {
	t.Helper()
	var req shipment.Request
	require.NoError(t, json.Unmarshal([]byte(`{
	  "selectedSR": {
	    "id": "sr1",
	    "lead": {"id": "L1"},
	    "company": "An Extremely Long Company Name That Overflows The Label",
	    "attentionTo": "Receiving Dock"
	  },
	  "shippingPayload": {
	    "requestedShipment": {
	      "recipient": {"address": {"streetLines": ["1 Main St"], "city": "Austin", "stateOrProvinceCode": "TX", "postalCode": "73301", "countryCode": "US"}},
	      "requestedPackageLineItems": [{"weight": {"units": "LB", "value": 2}}]
	    },
	    "totalWeight": 2
	  },
	  "deliveryType": "FedEx Large Box",
	  "shippingCost": 42.1
	}`), &req))
	return req
}

func newService(c shipment.CRM, car shipment.Carrier, refresh proxy.RefreshFunc) *shipment.Service {
	return shipment.NewService(c, car, refresh, config.Carrier{})
}

func TestCreate(t *testing.T) {
	crmFake := &fakeCRM{contact: crm.EntityContact{Email: "buyer@example.com", Phone: "5551234"}}
	carrierFake := &fakeCarrier{resp: shipped(t)}
	svc := newService(crmFake, carrierFake, noRefresh)

	result, err := svc.Create(context.Background(), proxy.NewMemorySession("T1"), request(t))
	require.NoError(t, err)
	require.Equal(t, shipment.Result{
		Success:         true,
		LabelURL:        []string{"https://labels.example.com/1.pdf"},
		ShipDate:        "2024-05-01",
		TrackingNumber:  "794953555571",
		SampleRequestID: "sr1",
	}, result)

	require.Equal(t, []crm.EntityRef{{Module: "Leads", ID: "L1"}}, crmFake.entities)

	require.Len(t, carrierFake.requests, 1)
	sent := carrierFake.requests[0].RequestedShipment
	require.Equal(t, "FEDEX_LARGE_BOX", sent.PackagingType)
	require.Equal(t, shipment.ServiceType, sent.ServiceType)
	require.Equal(t, "740561073", carrierFake.requests[0].AccountNumber.Value)
	require.Equal(t, "IRVINE", sent.Shipper.Address.City)

	recipient := sent.Recipients[0]
	require.Equal(t, "Austin", recipient.Address.City)
	require.Equal(t, "ATTN: Receiving Dock", recipient.Contact.PersonName)
	require.Equal(t, "buyer@example.com", recipient.Contact.EmailAddress)
	require.Len(t, []rune(recipient.Contact.CompanyName), 35)
	require.True(t, strings.HasPrefix("An Extremely Long Company Name That Overflows The Label", recipient.Contact.CompanyName))
	require.Len(t, sent.RequestedPackageLineItems, 1)

	require.Len(t, crmFake.updates, 1)
	update := crmFake.updates[0]
	require.Equal(t, "sr1", update.ID)
	require.Equal(t, "794953555571", update.TrackingNumber)
	require.Equal(t, "2024-05-01", update.ShipDate)
	require.Equal(t, "FedEx Large Box", update.ShippingMethod)
	require.Equal(t, "https://labels.example.com/1.pdf", *update.LabelURL)
}

func TestCreate_AccountRecipient(t *testing.T) {
	crmFake := &fakeCRM{}
	svc := newService(crmFake, &fakeCarrier{resp: shipped(t)}, noRefresh)

	req := request(t)
	req.SampleRequest.Lead = nil
	req.SampleRequest.Account = &shipment.Ref{ID: "A1"}

	_, err := svc.Create(context.Background(), proxy.NewMemorySession("T1"), req)
	require.NoError(t, err)
	require.Equal(t, []crm.EntityRef{{Module: "Accounts", ID: "A1"}}, crmFake.entities)
}

func TestCreate_FailsBeforeAnyMutation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*shipment.Request)
		crm     *fakeCRM
		carrier *fakeCarrier
		wantErr error
	}{
		{
			name:    "no lead or account",
			mutate:  func(r *shipment.Request) { r.SampleRequest.Lead = nil },
			crm:     &fakeCRM{},
			carrier: &fakeCarrier{},
			wantErr: errors.ErrInvalidRequest,
		},
		{
			name:    "unknown delivery type",
			mutate:  func(r *shipment.Request) { r.DeliveryType = "Carrier Pigeon" },
			crm:     &fakeCRM{},
			carrier: &fakeCarrier{},
			wantErr: errors.ErrUnknownDeliveryType,
		},
		{
			name:    "entity lookup rejected",
			crm:     &fakeCRM{contactErr: []error{&errors.UpstreamError{Target: "crm", Status: http.StatusNotFound}}},
			carrier: &fakeCarrier{},
		},
		{
			name:    "carrier token refused",
			crm:     &fakeCRM{},
			carrier: &fakeCarrier{err: &errors.CarrierAuthError{StatusCode: http.StatusUnauthorized}},
		},
		{
			name:    "carrier rejected shipment",
			crm:     &fakeCRM{},
			carrier: &fakeCarrier{err: &errors.UpstreamError{Target: "carrier", Status: http.StatusBadRequest}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := request(t)
			if tt.mutate != nil {
				tt.mutate(&req)
			}
			svc := newService(tt.crm, tt.carrier, noRefresh)

			_, err := svc.Create(context.Background(), proxy.NewMemorySession("T1"), req)
			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
			require.Empty(t, tt.crm.updates)
		})
	}
}

func TestCreate_CarrierAuthErrorKeepsStatus(t *testing.T) {
	svc := newService(&fakeCRM{}, &fakeCarrier{err: &errors.CarrierAuthError{StatusCode: http.StatusForbidden}}, noRefresh)

	_, err := svc.Create(context.Background(), proxy.NewMemorySession("T1"), request(t))
	var authErr *errors.CarrierAuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, http.StatusForbidden, authErr.StatusCode)
}

func TestCreate_TrackingUpdateFailureIsNotFatal(t *testing.T) {
	crmFake := &fakeCRM{updateErr: &errors.UpstreamError{Target: "crm", Status: http.StatusBadRequest}}
	svc := newService(crmFake, &fakeCarrier{resp: shipped(t)}, noRefresh)

	result, err := svc.Create(context.Background(), proxy.NewMemorySession("T1"), request(t))
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, "794953555571", result.TrackingNumber)
	require.Len(t, crmFake.updates, 1)
}

func TestCreate_SkipsUpdateWithoutTracking(t *testing.T) {
	crmFake := &fakeCRM{}
	svc := newService(crmFake, &fakeCarrier{resp: &carrier.ShipmentResponse{}}, noRefresh)

	result, err := svc.Create(context.Background(), proxy.NewMemorySession("T1"), request(t))
	require.NoError(t, err)
	require.Empty(t, result.TrackingNumber)
	require.Empty(t, result.LabelURL)
	require.Empty(t, crmFake.updates)
}

func TestCreate_RefreshesExpiredCRMToken(t *testing.T) {
	crmFake := &fakeCRM{contactErr: []error{&errors.UpstreamError{Target: "crm", Status: http.StatusUnauthorized}}}
	session := proxy.NewMemorySession("T1")
	refresh := func(ctx context.Context) (string, bool) { return "T2", true }
	svc := newService(crmFake, &fakeCarrier{resp: shipped(t)}, refresh)

	_, err := svc.Create(context.Background(), session, request(t))
	require.NoError(t, err)
	require.Equal(t, []string{"T1", "T2"}, crmFake.tokens)
	require.Equal(t, "T2", session.AccessToken())
}

func TestCreate_Unauthenticated(t *testing.T) {
	crmFake := &fakeCRM{}
	carrierFake := &fakeCarrier{}
	svc := newService(crmFake, carrierFake, noRefresh)

	_, err := svc.Create(context.Background(), proxy.NewMemorySession(""), request(t))
	require.ErrorIs(t, err, errors.ErrUnauthenticated)
	require.Empty(t, crmFake.entities)
	require.Empty(t, carrierFake.requests)
}

func TestSyncTracking(t *testing.T) {
	crmFake := &fakeCRM{}
	svc := newService(crmFake, &fakeCarrier{}, noRefresh)

	_, err := svc.SyncTracking(context.Background(), proxy.NewMemorySession("T1"), shipment.TrackingSync{
		RecordID:       "sr1",
		TrackingNumber: "7949",
		ShipDate:       "2024-05-01",
		ShippingMethod: "FedEx Express Envelope",
	})
	require.NoError(t, err)
	require.Equal(t, []crm.TrackingUpdate{{
		ID:             "sr1",
		TrackingNumber: "7949",
		ShipDate:       "2024-05-01",
		ShippingMethod: "FedEx Express Envelope",
	}}, crmFake.updates)
}

func TestSyncTracking_MissingField(t *testing.T) {
	crmFake := &fakeCRM{}
	svc := newService(crmFake, &fakeCarrier{}, noRefresh)

	_, err := svc.SyncTracking(context.Background(), proxy.NewMemorySession("T1"), shipment.TrackingSync{RecordID: "sr1"})
	require.ErrorIs(t, err, errors.ErrInvalidRequest)
	require.Empty(t, crmFake.updates)
}

func TestPackagingType(t *testing.T) {
	tests := map[string]string{
		"FedEx Med-box 2 day":    "FEDEX_MEDIUM_BOX",
		"FedEx Express Envelope": "FEDEX_PAK",
		"FedEx Large Box":        "FEDEX_LARGE_BOX",
	}
	for label, want := range tests {
		got, err := shipment.PackagingType(label)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := shipment.PackagingType("fedex large box")
	require.ErrorIs(t, err, errors.ErrUnknownDeliveryType)
	require.Len(t, shipment.DeliveryTypes(), 3)
}
