package ipn

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testCertURL = "https://sns.us-east-1.amazonaws.com/SimpleNotificationService-abc123.pem"

var (
	oidOrganization = asn1.ObjectIdentifier{2, 5, 4, 10}
	oidCountry      = asn1.ObjectIdentifier{2, 5, 4, 6}
)

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

// newCert self-signs a certificate whose subject has exactly the given RDNs, in order.
func newCert(t *testing.T, key *rsa.PrivateKey, names ...pkix.AttributeTypeAndValue) *x509.Certificate {
	t.Helper()
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{ExtraNames: names},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return cert
}

func cn(v string) pkix.AttributeTypeAndValue {
	return pkix.AttributeTypeAndValue{Type: oidCommonName, Value: v}
}

func org(v string) pkix.AttributeTypeAndValue {
	return pkix.AttributeTypeAndValue{Type: oidOrganization, Value: v}
}

func country(v string) pkix.AttributeTypeAndValue {
	return pkix.AttributeTypeAndValue{Type: oidCountry, Value: v}
}

func certPEM(cert *x509.Certificate) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
}

func testMessage() string {
	return `{"NotificationReferenceId":"32d195c3-a829-4222-b1e2-14ab28909513",` +
		`"MarketplaceID":"136291",` +
		`"NotificationType":"PaymentAuthorize",` +
		`"SellerId":"A1B2C3",` +
		`"ReleaseEnvironment":"Sandbox",` +
		`"Version":"2013-01-01",` +
		`"NotificationData":"<AuthorizationNotification><AuthorizationDetails><AmazonAuthorizationId>P01-1234567-1234567-0000001</AmazonAuthorizationId></AuthorizationDetails></AuthorizationNotification>",` +
		`"Timestamp":"2024-01-02T03:04:05Z"}`
}

// signedBody builds an envelope signed by key over its canonical string.
func signedBody(t *testing.T, key *rsa.PrivateKey, mutate func(*Envelope)) []byte {
	t.Helper()
	env := Envelope{
		Type:             "Notification",
		MessageID:        "cf5543af-dd65-5f74-8ccf-0a410e6c9a29",
		TopicArn:         "arn:aws:sns:us-east-1:291180941288:A1B2C3",
		Message:          testMessage(),
		Timestamp:        "2024-01-02T03:04:06.000Z",
		SignatureVersion: "1",
		SigningCertURL:   testCertURL,
		UnsubscribeURL:   "https://sns.us-east-1.amazonaws.com/?Action=Unsubscribe",
	}
	if mutate != nil {
		mutate(&env)
	}

	h := &Handler{env: env}
	digest := sha1.Sum([]byte(h.CanonicalString()))
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA1, digest[:])
	require.NoError(t, err)
	if env.Signature == "" {
		env.Signature = base64.StdEncoding.EncodeToString(sig)
	}

	raw, err := json.Marshal(env)
	require.NoError(t, err)
	return raw
}

func notificationHeaders() http.Header {
	h := http.Header{}
	h.Set(HeaderMessageType, "Notification")
	return h
}

// staticCerts serves one certificate and records requested URLs.
type staticCerts struct {
	cert *x509.Certificate
	err  error
	urls []string
}

func (s *staticCerts) Certificate(_ context.Context, url string) (*x509.Certificate, error) {
	s.urls = append(s.urls, url)
	if err := ValidateCertURL(url); err != nil {
		return nil, err
	}
	return s.cert, s.err
}

// recordingTransport answers every request with the scripted replies in
// order, repeating the last, and counts calls.
type recordingTransport struct {
	mu      sync.Mutex
	calls   int
	replies []func(*http.Request) (*http.Response, error)
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.mu.Lock()
	n := rt.calls
	rt.calls++
	rt.mu.Unlock()

	if len(rt.replies) == 0 {
		return nil, errors.New("no reply scripted")
	}
	if n >= len(rt.replies) {
		n = len(rt.replies) - 1
	}
	return rt.replies[n](req)
}

func (rt *recordingTransport) count() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.calls
}

func replyBody(status int, body []byte) func(*http.Request) (*http.Response, error) {
	return func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Header:     http.Header{"Content-Type": []string{"application/x-pem-file"}},
			Body:       io.NopCloser(strings.NewReader(string(body))),
			Request:    req,
		}, nil
	}
}

func replyError(msg string) func(*http.Request) (*http.Response, error) {
	return func(*http.Request) (*http.Response, error) {
		return nil, errors.New(msg)
	}
}

func jsonString(s string) string {
	raw, _ := json.Marshal(s)
	return string(raw)
}
