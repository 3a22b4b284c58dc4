// Package signer implements the three signature schemes used by the gateway:
// HMAC-SHA256 for outbound MWS requests, RSA/SHA1 verification for pushed
// notifications, and RSASSA-PSS/SHA256 for signing checkout payloads.
package signer

import (
	"crypto"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"

	"amazonpay/internal/canonical"
)

const (
	// PSSAlgorithm prefixes every payload signed with SignPayload.
	PSSAlgorithm = "AMZN-PAY-RSASSA-PSS"

	// PSSSaltLength is the fixed salt length for payload signatures.
	PSSSaltLength = 20
)

// ErrInvalidPrivateKey is returned when a PEM block holds no usable RSA key.
var ErrInvalidPrivateKey = errors.New("invalid RSA private key")

// StringToSign joins the request components covered by the HMAC signature.
// Format: METHOD\nHOST\nPATH\nENCODED_PARAMS
func StringToSign(method, host, path, encodedParams string) string {
	return strings.Join([]string{method, host, path, encodedParams}, "\n")
}

// SignHMAC returns the escaped base64 HMAC-SHA256 of body keyed by secretKey.
func SignHMAC(body string, secretKey []byte) string {
	mac := hmac.New(sha256.New, secretKey)
	mac.Write([]byte(body))
	return canonical.Escape(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}

// VerifySHA1 reports whether sig is a valid PKCS#1 v1.5 RSA signature of the
// SHA1 digest of signed. It never returns an error; callers map false to an
// authentication failure.
func VerifySHA1(pub *rsa.PublicKey, sig []byte, signed string) bool {
	if pub == nil || len(sig) == 0 {
		return false
	}
	digest := sha1.Sum([]byte(signed))
	return rsa.VerifyPKCS1v15(pub, crypto.SHA1, digest[:], sig) == nil
}

// HashAndHex returns the hex-encoded SHA256 of payload.
func HashAndHex(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// SignPayload signs payload with RSASSA-PSS (SHA256, MGF1-SHA256, salt 20)
// and returns the base64 signature. Non-string payloads are JSON-encoded
// first.
func SignPayload(key *rsa.PrivateKey, payload interface{}) (string, error) {
	if key == nil {
		return "", ErrInvalidPrivateKey
	}

	var body string
	switch p := payload.(type) {
	case string:
		body = p
	case []byte:
		body = string(p)
	default:
		raw, err := json.Marshal(p)
		if err != nil {
			return "", fmt.Errorf("failed to encode payload: %w", err)
		}
		body = string(raw)
	}

	digest := sha256.Sum256([]byte(PSSAlgorithm + "\n" + body))
	sig, err := rsa.SignPSS(rand.Reader, key, crypto.SHA256, digest[:], &rsa.PSSOptions{
		SaltLength: PSSSaltLength,
		Hash:       crypto.SHA256,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// VerifyPayload checks a signature produced by SignPayload.
func VerifyPayload(pub *rsa.PublicKey, payload, signature string) bool {
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil || pub == nil {
		return false
	}
	digest := sha256.Sum256([]byte(PSSAlgorithm + "\n" + payload))
	return rsa.VerifyPSS(pub, crypto.SHA256, digest[:], sig, &rsa.PSSOptions{
		SaltLength: PSSSaltLength,
		Hash:       crypto.SHA256,
	}) == nil
}

// LoadPrivateKey parses a PEM-encoded PKCS#1 or PKCS#8 RSA private key.
func LoadPrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, ErrInvalidPrivateKey
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrInvalidPrivateKey, parsed)
	}
	return key, nil
}
