package config

import "strings"

// Shipper is the sender block printed on every label.
type Shipper struct {
	CompanyName         string
	PersonName          string
	EmailAddress        string
	PhoneNumber         string
	StreetLines         []string
	City                string
	StateOrProvinceCode string
	PostalCode          string
	CountryCode         string
}

type CarrierConfig interface {
	GetCarrierBaseURL() string
	GetCarrierClientID() string
	GetCarrierClientSecret() string
	GetCarrierAccountNumber() string
	GetShipper() Shipper
}

type Carrier struct{}

var _ CarrierConfig = Carrier{}

func (Carrier) GetCarrierBaseURL() string {
	return strings.TrimRight(GetEnv("FEDEX_BASE_URL", "https://apis-sandbox.fedex.com"), "/")
}

func (Carrier) GetCarrierClientID() string {
	return GetEnv("FEDEX_CLIENT_ID", "")
}

func (Carrier) GetCarrierClientSecret() string {
	return GetEnv("FEDEX_CLIENT_SECRET", "")
}

func (Carrier) GetCarrierAccountNumber() string {
	return GetEnv("FEDEX_ACCOUNT_NUMBER", "740561073") // sandbox
}

func (Carrier) GetShipper() Shipper {
	return Shipper{
		CompanyName:         GetEnv("SHIPPER_COMPANY", "Elitechem Products"),
		PersonName:          GetEnv("SHIPPER_PERSON", "SHIPPING AND RECEIVING"),
		EmailAddress:        GetEnv("SHIPPER_EMAIL", ""),
		PhoneNumber:         GetEnv("SHIPPER_PHONE", "9493220661"),
		StreetLines:         strings.Split(GetEnv("SHIPPER_STREET", "57 PARKER"), "|"),
		City:                GetEnv("SHIPPER_CITY", "IRVINE"),
		StateOrProvinceCode: GetEnv("SHIPPER_STATE", "CA"),
		PostalCode:          GetEnv("SHIPPER_POSTAL_CODE", "92618"),
		CountryCode:         GetEnv("SHIPPER_COUNTRY", "US"),
	}
}
