package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_upstream_requests_total",
		Help: "Total number of calls made to the CRM and carrier APIs",
	}, []string{"target", "status"})

	TokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_token_refreshes_total",
		Help: "CRM access token refresh attempts by outcome",
	}, []string{"outcome"})

	AuthRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_auth_retries_total",
		Help: "Proxied calls retried after an authorization failure, by outcome",
	}, []string{"outcome"})

	CarrierTokenGrants = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_carrier_token_grants_total",
		Help: "Carrier client-credentials grants by outcome",
	}, []string{"outcome"})

	CarrierTokenCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_carrier_token_cache_hits_total",
		Help: "Carrier token requests served from the in-process cache",
	})

	SignedLinks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_signed_links_total",
		Help: "Signed public links issued and verified, by outcome",
	}, []string{"operation", "outcome"})

	Shipments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_shipments_total",
		Help: "Shipment creation requests by outcome",
	}, []string{"outcome"})

	TrackingUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_tracking_updates_total",
		Help: "CRM sample request tracking updates by outcome",
	}, []string{"outcome"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portal_http_request_duration_seconds",
		Help:    "Time spent handling inbound HTTP requests",
		Buckets: prometheus.ExponentialBuckets(0.01, 2.0, 10), // 10ms to ~5s
	}, []string{"method", "status"})
)
