package server

// Route path constants
const (
	// CRM connect flow
	RouteZohoAuth     = "/api/zoho/auth"
	RouteZohoCallback = "/api/zoho/callback"

	// Staff API, backed by the CRM session cookie
	RoutePackagingContacts           = "/api/packaging/contacts"
	RoutePackagingProduct            = "/api/packaging/product"
	RoutePackagingAttachments        = "/api/packaging/samplerequestattachment"
	RoutePackagingSaveAttachment     = "/api/packaging/save-productlist-attachment"
	RoutePackagingGeneratePublicLink = "/api/packaging/generate-public-link"
	RoutePackagingSendEmail          = "/api/packaging/sendemail"
	RoutePackagingSubmit             = "/api/packaging/submit"
	RoutePackagingSyncTracking       = "/api/packaging/sync-tracking"
	RouteProtected                   = "/api/protected"

	// Signed-link gated routes
	RouteValidate            = "/validate"
	RoutePublicValidateToken = "/api/public/validate-token"
	RoutePublicProducts      = "/api/public/products"
	RoutePublicSubmit        = "/api/public/submit-product-list"

	// Pages the connect flow redirects to
	RouteHome        = "/"
	RouteProductList = "/productlist"

	RouteHealth   = "/health"
	RouteAPIPaths = "/api/"
)
