package login

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"amazonpay/internal/mws"
	"amazonpay/internal/pkg/httpclient"
)

// ErrInvalidAccessToken is returned when the token was not issued to this
// client id.
var ErrInvalidAccessToken = errors.New("Invalid Access Token")

const tokenHeader = "x-amz-access-token"

var loginDomains = map[mws.Region]string{
	mws.RegionJP: "amazon.co.jp",
	mws.RegionUK: "amazon.co.uk",
	mws.RegionDE: "amazon.de",
	mws.RegionEU: "amazon.co.uk",
	mws.RegionUS: "amazon.com",
	mws.RegionNA: "amazon.com",
}

// Profile is the decoded /user/profile document, e.g. user_id, name, email.
type Profile map[string]interface{}

// String returns a top-level field as text, or "".
func (p Profile) String(key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

// Client fetches Login with Amazon profiles.
type Client struct {
	clientID string
	baseURL  string
	http     *httpclient.Client
	logger   *zap.Logger
}

// New creates a profile client for region. A nil http client gets a
// default one.
func New(clientID string, region mws.Region, sandbox bool, client *httpclient.Client, logger *zap.Logger) (*Client, error) {
	domain, ok := loginDomains[region]
	if !ok {
		return nil, fmt.Errorf("%w: %s", mws.ErrInvalidRegion, region)
	}
	host := "api." + domain
	if sandbox {
		host = "api.sandbox." + domain
	}
	if client == nil {
		client = httpclient.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		clientID: clientID,
		baseURL:  "https://" + host,
		http:     client,
		logger:   logger,
	}, nil
}

// BaseURL returns the scheme and host requests go to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetProfile checks that accessToken belongs to this client id and returns
// the user's profile. The token may arrive URL-encoded.
func (c *Client) GetProfile(ctx context.Context, accessToken string) (Profile, error) {
	token, err := url.QueryUnescape(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decode access token: %w", err)
	}
	headers := map[string]string{tokenHeader: token}

	resp, err := c.http.Get(ctx, c.baseURL+"/auth/o2/tokeninfo", headers)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch token info: %w", err)
	}
	if aud := gjson.GetBytes(resp.Body, "aud"); aud.String() != c.clientID {
		c.logger.Warn("Access token audience mismatch",
			zap.Int("status", resp.StatusCode),
			zap.String("aud", aud.String()),
		)
		return nil, ErrInvalidAccessToken
	}

	resp, err = c.http.Get(ctx, c.baseURL+"/user/profile", headers)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	if !gjson.ValidBytes(resp.Body) {
		return nil, fmt.Errorf("invalid profile response (status %d)", resp.StatusCode)
	}
	profile, ok := gjson.ParseBytes(resp.Body).Value().(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid profile response (status %d)", resp.StatusCode)
	}
	return Profile(profile), nil
}
