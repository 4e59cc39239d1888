package shipment

import (
	"sort"

	"github.com/jrsteele09/go-share-portal/internal/errors"
)

const (
	ServiceType    = "FEDEX_2_DAY"
	PickupType     = "DROPOFF_AT_FEDEX_LOCATION"
	OneRateService = "FEDEX_ONE_RATE"
)

var packagingTypes = map[string]string{
	"FedEx Med-box 2 day":    "FEDEX_MEDIUM_BOX",
	"FedEx Express Envelope": "FEDEX_PAK",
	"FedEx Large Box":        "FEDEX_LARGE_BOX",
}

// PackagingType maps a delivery option shown to the user onto the carrier's
// packaging type. Unknown options are rejected.
func PackagingType(deliveryType string) (string, error) {
	pkType, ok := packagingTypes[deliveryType]
	if !ok {
		return "", errors.Wrapf(errors.ErrUnknownDeliveryType, "%q", deliveryType)
	}
	return pkType, nil
}

// DeliveryTypes lists the accepted delivery options.
func DeliveryTypes() []string {
	types := make([]string, 0, len(packagingTypes))
	for t := range packagingTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
