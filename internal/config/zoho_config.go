package config

import "strings"

const defaultZohoScopes = "ZohoBooks.fullaccess.all,ZohoBooks.settings.read,ZohoCRM.modules.ALL,ZohoCRM.settings.ALL," +
	"ZohoCRM.functions.execute.READ,ZohoCRM.functions.execute.CREATE,ZohoInventory.items.READ," +
	"ZohoInventory.shipmentorders.READ,ZohoCRM.coql.READ,ZohoMail.messages.ALL,ZohoBooks.settings.UPDATE," +
	"ZohoCRM.send_mail.all.CREATE,ZohoInventory.salesorders.READ,ZohoForms.forms.ALL"

// ZohoConfig holds the CRM OAuth client registration and API locations.
type ZohoConfig interface {
	GetZohoClientID() string
	GetZohoClientSecret() string
	GetZohoRedirectURI() string
	GetZohoOAuthURL() string
	GetZohoScopes() string
	GetZohoAPIURL() string
	GetZohoCRMURL() string
	GetZohoInventoryURL() string
	GetZohoCRMOrgID() string
	GetZohoInventoryOrgID() string
	GetPortalUserID() string
}

type Zoho struct{}

var _ ZohoConfig = Zoho{}

func (Zoho) GetZohoClientID() string {
	return GetEnv("ZOHO_CLIENT_ID", "")
}

func (Zoho) GetZohoClientSecret() string {
	return GetEnv("ZOHO_CLIENT_SECRET", "")
}

func (Zoho) GetZohoRedirectURI() string {
	return GetEnv("ZOHO_REDIRECT_URI", "")
}

// GetZohoOAuthURL returns the accounts server, e.g. https://accounts.zoho.com.
// ZOHO_OAUTH_DOMAIN may be given as a bare host name.
func (Zoho) GetZohoOAuthURL() string {
	return withScheme(GetEnv("ZOHO_OAUTH_DOMAIN", "accounts.zoho.com"))
}

func (Zoho) GetZohoScopes() string {
	return GetEnv("ZOHO_SCOPES", defaultZohoScopes)
}

func (Zoho) GetZohoAPIURL() string {
	return withScheme(GetEnv("ZOHO_API_DOMAIN", "www.zohoapis.com"))
}

func (Zoho) GetZohoCRMURL() string {
	return withScheme(GetEnv("ZOHO_CRM_DOMAIN", "crm.zoho.com"))
}

func (Zoho) GetZohoInventoryURL() string {
	return withScheme(GetEnv("ZOHO_INVENTORY_DOMAIN", "inventory.zoho.com"))
}

func (Zoho) GetZohoCRMOrgID() string {
	return GetEnv("ZOHO_CRM_ORG_ID", "")
}

func (Zoho) GetZohoInventoryOrgID() string {
	return GetEnv("ZOHO_INVENTORY_ORG_ID", "")
}

// GetPortalUserID is the key the refresh token is stored under.
func (Zoho) GetPortalUserID() string {
	return GetEnv("PORTAL_USER_ID", "demoUser")
}

func withScheme(domain string) string {
	domain = strings.TrimRight(domain, "/")
	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return domain
	}
	return "https://" + domain
}
