package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	// CONNECT
	s.RegisterRouteHandler("GET "+RouteZohoAuth, ChainMiddleware(s.ConnectHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteZohoCallback, ChainMiddleware(s.CallbackHandler(), s.PageMiddleware()...))

	// Staff API
	s.RegisterRouteHandler("GET "+RoutePackagingContacts, ChainMiddleware(s.ContactsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RoutePackagingProduct, ChainMiddleware(s.ProductsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RoutePackagingAttachments, ChainMiddleware(s.SampleRequestAttachmentsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RoutePackagingSaveAttachment, ChainMiddleware(s.SaveProductListAttachmentHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RoutePackagingGeneratePublicLink, ChainMiddleware(s.GeneratePublicLinkHandler(), s.APIMiddleware(s.RequireSession())...))
	s.RegisterRouteHandler("POST "+RoutePackagingSendEmail, ChainMiddleware(s.SendEmailHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RoutePackagingSubmit, ChainMiddleware(s.SubmitShipmentHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RoutePackagingSyncTracking, ChainMiddleware(s.SyncTrackingHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteProtected, ChainMiddleware(s.InventoryHandler(), s.APIMiddleware()...))

	// Public, gated by a signed link
	s.RegisterRouteHandler("GET "+RouteValidate, ChainMiddleware(s.ValidateLinkHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RoutePublicValidateToken, ChainMiddleware(s.ValidateLinkHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RoutePublicProducts, ChainMiddleware(s.PublicProductsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RoutePublicSubmit, ChainMiddleware(s.PublicSubmitHandler(), s.APIMiddleware()...))

	// CORS preflight for every API route
	s.RegisterRouteHandler("OPTIONS "+RouteAPIPaths, ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.APIMiddleware()...))

	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+s.config.GetMetricsPath(), promhttp.Handler())
}
