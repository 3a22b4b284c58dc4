package ipn

import (
	"context"
	"crypto/x509"
	"encoding/asn1"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"amazonpay/internal/pkg/httpclient"
	"amazonpay/internal/pkg/metrics"
	"amazonpay/internal/sanitize"
)

// CommonName is the subject CN every signing certificate must carry.
const CommonName = "sns.amazonaws.com"

const certFetchAttempts = 3

var (
	certHostPattern = regexp.MustCompile(`^sns\.[a-zA-Z0-9-]{3,}\.amazonaws\.com(\.cn)?$`)
	oidCommonName   = asn1.ObjectIdentifier{2, 5, 4, 3}
)

// ValidateCertURL rejects any certificate location that is not an https
// .pem file on an SNS host. It never touches the network.
func ValidateCertURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil ||
		u.Scheme != "https" ||
		!certHostPattern.MatchString(u.Hostname()) ||
		path.Ext(u.Path) != ".pem" {
		return &AuthError{Msg: msgCertURL + raw}
	}
	return nil
}

// ValidateSubject checks that some subject RDN is CN=sns.amazonaws.com.
// The position of the CN within the subject does not matter.
func ValidateSubject(cert *x509.Certificate) error {
	if cert != nil {
		for _, atv := range cert.Subject.Names {
			if !atv.Type.Equal(oidCommonName) {
				continue
			}
			if v, ok := atv.Value.(string); ok && v == CommonName {
				return nil
			}
		}
	}
	return &AuthError{Msg: MsgCertificate}
}

// ParseCertificate accepts a PEM block or raw DER.
func ParseCertificate(data []byte) (*x509.Certificate, error) {
	der := data
	if block, _ := pem.Decode(data); block != nil {
		der = block.Bytes
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signing certificate: %w", err)
	}
	return cert, nil
}

// CertificateSource returns the signing certificate published at url.
type CertificateSource interface {
	Certificate(ctx context.Context, url string) (*x509.Certificate, error)
}

// CertFetcher downloads signing certificates over verified TLS.
type CertFetcher struct {
	http       *httpclient.Client
	logEnabled bool
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewCertFetcher creates a fetcher. A nil client gets httpclient.New().
func NewCertFetcher(client *httpclient.Client, logEnabled bool, logger *zap.Logger, m *metrics.Metrics) *CertFetcher {
	if client == nil {
		client = httpclient.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CertFetcher{http: client, logEnabled: logEnabled, logger: logger, metrics: m}
}

// Certificate validates rawURL, then downloads and parses the certificate.
// Downloads are attempted up to three times with no wait in between.
func (f *CertFetcher) Certificate(ctx context.Context, rawURL string) (*x509.Certificate, error) {
	if err := ValidateCertURL(rawURL); err != nil {
		return nil, err
	}

	var body []byte
	download := func() error {
		resp, err := f.http.Get(ctx, rawURL, nil)
		if err != nil {
			f.metrics.ObserveCertFetch("error")
			return err
		}
		if resp.StatusCode != http.StatusOK {
			f.metrics.ObserveCertFetch("error")
			return fmt.Errorf("certificate download returned status %d", resp.StatusCode)
		}
		f.metrics.ObserveCertFetch("ok")
		body = resp.Body
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(&backoff.ZeroBackOff{}, certFetchAttempts-1), ctx)
	notify := func(err error, _ time.Duration) {
		f.logger.Warn("Signing certificate download failed", zap.String("url", rawURL), zap.Error(err))
	}
	if err := backoff.RetryNotify(download, policy, notify); err != nil {
		return nil, fmt.Errorf("failed to download signing certificate: %w", err)
	}

	if f.logEnabled {
		f.logger.Debug("Signing certificate", zap.String("body", sanitize.Response(string(body))))
	}
	return ParseCertificate(body)
}
