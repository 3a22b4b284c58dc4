package login

import (
	"context"
	"crypto/x509"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amazonpay/internal/mws"
	"amazonpay/internal/pkg/httpclient"
)

func newStubLogin(t *testing.T, aud string) (*Client, *[]string) {
	t.Helper()
	var tokens []string
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokens = append(tokens, r.Header.Get(tokenHeader))
		switch r.URL.Path {
		case "/auth/o2/tokeninfo":
			_, _ = w.Write([]byte(`{"aud":"` + aud + `","user_id":"amzn1.account.X"}`))
		case "/user/profile":
			_, _ = w.Write([]byte(`{"user_id":"amzn1.account.X","name":"Test User","email":"user@example.com"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	pool := x509.NewCertPool()
	pool.AddCert(srv.Certificate())

	c, err := New("client-id", mws.RegionNA, false, httpclient.New().WithRootCAs(pool), nil)
	require.NoError(t, err)
	c.baseURL = srv.URL
	return c, &tokens
}

func TestNew_Hosts(t *testing.T) {
	tests := []struct {
		region  mws.Region
		sandbox bool
		want    string
	}{
		{region: mws.RegionNA, want: "https://api.amazon.com"},
		{region: mws.RegionUS, sandbox: true, want: "https://api.sandbox.amazon.com"},
		{region: mws.RegionEU, want: "https://api.amazon.co.uk"},
		{region: mws.RegionUK, want: "https://api.amazon.co.uk"},
		{region: mws.RegionDE, sandbox: true, want: "https://api.sandbox.amazon.de"},
		{region: mws.RegionJP, want: "https://api.amazon.co.jp"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			c, err := New("id", tt.region, tt.sandbox, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.BaseURL())
		})
	}
}

func TestNew_UnknownRegion(t *testing.T) {
	_, err := New("id", mws.Region("br"), false, nil, nil)
	assert.ErrorIs(t, err, mws.ErrInvalidRegion)
}

func TestGetProfile(t *testing.T) {
	c, tokens := newStubLogin(t, "client-id")

	profile, err := c.GetProfile(context.Background(), "Atza%7Ctoken")
	require.NoError(t, err)

	assert.Equal(t, "Test User", profile.String("name"))
	assert.Equal(t, "user@example.com", profile.String("email"))
	assert.Equal(t, []string{"Atza|token", "Atza|token"}, *tokens)
}

func TestGetProfile_WrongAudience(t *testing.T) {
	c, tokens := newStubLogin(t, "someone-else")

	_, err := c.GetProfile(context.Background(), "Atza|token")
	assert.ErrorIs(t, err, ErrInvalidAccessToken)
	assert.EqualError(t, err, "Invalid Access Token")
	assert.Len(t, *tokens, 1)
}
