package mws

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"amazonpay/internal/pkg/httpclient"
	"amazonpay/internal/pkg/metrics"
)

// APIVersion is the MWS Off-Amazon Payments API version.
const APIVersion = "2013-01-01"

const (
	sandboxPath    = "OffAmazonPayments_Sandbox"
	productionPath = "OffAmazonPayments"
)

// Region is a marketplace region code.
type Region string

const (
	RegionJP Region = "jp"
	RegionUK Region = "uk"
	RegionDE Region = "de"
	RegionEU Region = "eu"
	RegionUS Region = "us"
	RegionNA Region = "na"
)

var regionEndpoints = map[Region]string{
	RegionJP: "mws.amazonservices.jp",
	RegionUK: "mws-eu.amazonservices.com",
	RegionDE: "mws-eu.amazonservices.com",
	RegionEU: "mws-eu.amazonservices.com",
	RegionUS: "mws.amazonservices.com",
	RegionNA: "mws.amazonservices.com",
}

var paymentDomains = map[Region]string{
	RegionJP: "FE_JPY",
	RegionUK: "EU_GBP",
	RegionDE: "EU_EUR",
	RegionEU: "EU_EUR",
	RegionUS: "NA_USD",
	RegionNA: "NA_USD",
}

// ParseRegion normalizes s and checks it against the known regions.
func ParseRegion(s string) (Region, error) {
	r := Region(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := regionEndpoints[r]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidRegion, s)
	}
	return r, nil
}

// Endpoint returns the MWS hostname for r.
func (r Region) Endpoint() string {
	return regionEndpoints[r]
}

// PaymentDomain returns the default payment domain for r.
func (r Region) PaymentDomain() string {
	return paymentDomains[r]
}

// Config is fixed at client construction.
type Config struct {
	MerchantID   string
	AccessKey    string
	SecretKey    string
	Region       string // default "na"
	Sandbox      bool
	CurrencyCode string // default "USD"
	PlatformID   string
	MWSAuthToken string

	// DisableThrottle turns off retrying of 500 and 503 responses.
	DisableThrottle bool

	ApplicationName    string
	ApplicationVersion string

	Proxy httpclient.Proxy

	// LogEnabled writes sanitized request and response bodies at debug level.
	LogEnabled bool
	Logger     *zap.Logger
	Metrics    *metrics.Metrics

	// Endpoint replaces the region hostname, e.g. host:port of a stub server.
	Endpoint string

	// HTTPClient overrides the default client. The User-Agent header is
	// always set on it.
	HTTPClient *httpclient.Client
}
