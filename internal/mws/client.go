package mws

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"amazonpay/internal/canonical"
	"amazonpay/internal/pkg/httpclient"
	"amazonpay/internal/signer"
)

// Client signs and sends MWS operations. It holds no mutable state after
// construction and is safe for concurrent use.
type Client struct {
	merchantID   string
	currencyCode string
	region       Region
	sandbox      bool
	host         string
	path         string
	secretKey    []byte
	defaults     canonical.Defaults
	transport    *Transport
	logger       *zap.Logger
	now          func() time.Time
}

// NewClient validates cfg and builds a client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, ErrMissingCredentials
	}

	regionCode := cfg.Region
	if regionCode == "" {
		regionCode = string(RegionNA)
	}
	region, err := ParseRegion(regionCode)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(cfg.CurrencyCode)
	if currency == "" {
		currency = "USD"
	}

	host := cfg.Endpoint
	if host == "" {
		host = region.Endpoint()
	}

	envPath := productionPath
	if cfg.Sandbox {
		envPath = sandboxPath
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = httpclient.New().WithProxy(cfg.Proxy)
	}
	httpClient.WithUserAgent(UserAgent(cfg.ApplicationName, cfg.ApplicationVersion))

	defaults := canonical.Defaults{
		AccessKeyID: cfg.AccessKey,
		APIVersion:  APIVersion,
	}
	if cfg.PlatformID != "" {
		defaults.PlatformID = canonical.Some(cfg.PlatformID)
	}
	if cfg.MWSAuthToken != "" {
		defaults.MWSAuthToken = canonical.Some(cfg.MWSAuthToken)
	}

	return &Client{
		merchantID:   cfg.MerchantID,
		currencyCode: currency,
		region:       region,
		sandbox:      cfg.Sandbox,
		host:         host,
		path:         "/" + envPath + "/" + APIVersion,
		secretKey:    []byte(cfg.SecretKey),
		defaults:     defaults,
		transport:    NewTransport(httpClient, !cfg.DisableThrottle, cfg.LogEnabled, logger, cfg.Metrics),
		logger:       logger,
		now:          time.Now,
	}, nil
}

func (c *Client) MerchantID() string {
	return c.merchantID
}

// CurrencyCode is the upper-cased default currency.
func (c *Client) CurrencyCode() string {
	return c.currencyCode
}

func (c *Client) Region() Region {
	return c.region
}

func (c *Client) Sandbox() bool {
	return c.sandbox
}

// PaymentDomain returns the region's default payment domain.
func (c *Client) PaymentDomain() string {
	return c.region.PaymentDomain()
}

// Host returns the MWS hostname requests are signed for.
func (c *Client) Host() string {
	return c.host
}

// Path returns the request path, /<environment>/<api version>.
func (c *Client) Path() string {
	return c.path
}

// BuildRequest merges required and optional parameters with the defaults,
// stamps a Timestamp unless one is supplied, and returns the encoded body
// with its Signature appended.
func (c *Client) BuildRequest(required, optional canonical.Params) string {
	params := required.Clone().Overlay(optional)
	if _, ok := params[canonical.KeyTimestamp]; !ok {
		params.Set(canonical.KeyTimestamp, c.now().UTC().Format(time.RFC3339))
	}

	encoded := canonical.Encode(canonical.Merge(c.defaults, params))
	toSign := signer.StringToSign("POST", c.host, c.path, encoded)

	return encoded + "&" + canonical.KeySignature + "=" + signer.SignHMAC(toSign, c.secretKey)
}

// Operation signs and posts one MWS action. required must contain Action.
func (c *Client) Operation(ctx context.Context, required, optional canonical.Params) (*Response, error) {
	action := required[canonical.KeyAction]
	if action == "" {
		return nil, fmt.Errorf("operation: missing %s parameter", canonical.KeyAction)
	}

	body := c.BuildRequest(required, optional)
	return c.transport.Post(ctx, action, c.host, c.path, body)
}
