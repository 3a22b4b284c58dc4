package ipn

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_CanonicalString(t *testing.T) {
	message := `{"NotificationReferenceId":"32d195c3","NotificationType":"OrderReferenceNotification"}`
	body := []byte(`{
		"Type": "Type",
		"MessageId": "MessageId",
		"TopicArn": "TopicArn",
		"Message": ` + jsonString(message) + `,
		"Timestamp": "Timestamp",
		"SignatureVersion": "1",
		"Signature": "Signature",
		"SigningCertURL": "https://sns.us-east-1.amazonaws.com/cert.pem"
	}`)

	h, err := Parse(notificationHeaders(), body, &staticCerts{}, nil)
	require.NoError(t, err)

	want := "Message\n" + message + "\nMessageId\nMessageId\nTimestamp\nTimestamp\nTopicArn\nTopicArn\nType\nType\n"
	assert.Equal(t, want, h.CanonicalString())
}

func TestHandler_CanonicalStringSkipsEmptyFields(t *testing.T) {
	h, err := Parse(nil, []byte(`{"Type":"Notification","MessageId":"","Message":"{}"}`), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Message\n{}\nType\nNotification\n", h.CanonicalString())
}

func TestHandler_Authenticate(t *testing.T) {
	key := newKey(t)
	cert := newCert(t, key, country("US"), org("Amazon.com, Inc."), cn(CommonName))

	h, err := Parse(notificationHeaders(), signedBody(t, key, nil), &staticCerts{cert: cert}, nil)
	require.NoError(t, err)

	require.NoError(t, h.Authenticate(context.Background()))
	assert.Equal(t, StateAuthentic, h.State())
}

func TestHandler_AuthenticateRejections(t *testing.T) {
	key := newKey(t)
	goodCert := newCert(t, key, cn(CommonName))

	tests := []struct {
		name    string
		headers http.Header
		body    func() []byte
		certs   *staticCerts
		wantMsg string
	}{
		{
			name:    "missing header",
			headers: http.Header{},
			body:    func() []byte { return signedBody(t, key, nil) },
			certs:   &staticCerts{cert: goodCert},
			wantMsg: MsgHeader,
		},
		{
			name:    "wrong header value",
			headers: http.Header{"X-Amz-Sns-Message-Type": []string{"SubscriptionConfirmation"}},
			body:    func() []byte { return signedBody(t, key, nil) },
			certs:   &staticCerts{cert: goodCert},
			wantMsg: MsgHeader,
		},
		{
			name:    "certificate outside aws",
			headers: notificationHeaders(),
			body: func() []byte {
				return signedBody(t, key, func(e *Envelope) { e.SigningCertURL = "https://example.com/cert.pem" })
			},
			certs:   &staticCerts{cert: goodCert},
			wantMsg: "Error - certificate is not hosted at AWS URL (https): https://example.com/cert.pem",
		},
		{
			name:    "certificate subject",
			headers: notificationHeaders(),
			body:    func() []byte { return signedBody(t, key, nil) },
			certs:   &staticCerts{cert: newCert(t, key, cn("example.com"))},
			wantMsg: MsgCertificate,
		},
		{
			name:    "signed by another key",
			headers: notificationHeaders(),
			body:    func() []byte { return signedBody(t, newKey(t), nil) },
			certs:   &staticCerts{cert: goodCert},
			wantMsg: MsgKey,
		},
		{
			name:    "signature not base64",
			headers: notificationHeaders(),
			body: func() []byte {
				return signedBody(t, key, func(e *Envelope) { e.Signature = "%%%" })
			},
			certs:   &staticCerts{cert: goodCert},
			wantMsg: MsgKey,
		},
		{
			name:    "tampered signature",
			headers: notificationHeaders(),
			body: func() []byte {
				return signedBody(t, key, func(e *Envelope) { e.Signature = base64.StdEncoding.EncodeToString([]byte("Signature")) })
			},
			certs:   &staticCerts{cert: goodCert},
			wantMsg: MsgKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := Parse(tt.headers, tt.body(), tt.certs, nil)
			require.NoError(t, err)

			err = h.Authenticate(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Equal(t, StateRejected, h.State())

			var authErr *AuthError
			assert.True(t, errors.As(err, &authErr))
			assert.ErrorIs(t, err, ErrNotAuthentic)
		})
	}
}

func TestHandler_AuthenticatePassesDownloadErrorThrough(t *testing.T) {
	key := newKey(t)
	certs := &staticCerts{err: errors.New("connection refused")}

	h, err := Parse(notificationHeaders(), signedBody(t, key, nil), certs, nil)
	require.NoError(t, err)

	err = h.Authenticate(context.Background())
	require.EqualError(t, err, "connection refused")
	assert.Equal(t, StateRejected, h.State())
	assert.NotErrorIs(t, err, ErrNotAuthentic)
}

func TestParse_AcceptsLowercaseHeaderKeys(t *testing.T) {
	key := newKey(t)
	cert := newCert(t, key, cn(CommonName))
	headers := http.Header{"x-amz-sns-message-type": []string{"Notification"}}

	h, err := Parse(headers, signedBody(t, key, nil), &staticCerts{cert: cert}, nil)
	require.NoError(t, err)

	require.NoError(t, h.Authenticate(context.Background()))
	assert.Equal(t, StateAuthentic, h.State())
}

func TestHandler_TamperedFieldFailsVerification(t *testing.T) {
	key := newKey(t)
	cert := newCert(t, key, cn(CommonName))

	body := signedBody(t, key, nil)
	h, err := Parse(notificationHeaders(), body, &staticCerts{cert: cert}, nil)
	require.NoError(t, err)
	h.env.TopicArn = "arn:aws:sns:us-east-1:000000000000:other"

	err = h.Authenticate(context.Background())
	assert.Equal(t, MsgKey, err.Error())
}

func TestHandler_HeaderCheckedBeforeCertificate(t *testing.T) {
	certs := &staticCerts{}
	h, err := Parse(http.Header{}, signedBody(t, newKey(t), nil), certs, nil)
	require.NoError(t, err)

	_ = h.Authenticate(context.Background())
	assert.Empty(t, certs.urls)
}

func TestHandler_Accessors(t *testing.T) {
	h, err := Parse(notificationHeaders(), signedBody(t, newKey(t), nil), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "Notification", h.Type())
	assert.Equal(t, "cf5543af-dd65-5f74-8ccf-0a410e6c9a29", h.MessageID())
	assert.Equal(t, "arn:aws:sns:us-east-1:291180941288:A1B2C3", h.TopicArn())
	assert.Equal(t, "2024-01-02T03:04:06.000Z", h.Timestamp())
	assert.Equal(t, "1", h.SignatureVersion())
	assert.Equal(t, testCertURL, h.SigningCertURL())
	assert.Equal(t, "https://sns.us-east-1.amazonaws.com/?Action=Unsubscribe", h.UnsubscribeURL())
	assert.NotEmpty(t, h.Signature())

	assert.Equal(t, "PaymentAuthorize", h.NotificationType())
	assert.Equal(t, "A1B2C3", h.SellerID())
	assert.Equal(t, "Sandbox", h.ReleaseEnvironment())
	assert.Equal(t, "2013-01-01", h.Version())
	assert.Equal(t, "2024-01-02T03:04:05Z", h.MessageTimestamp())
	assert.Contains(t, h.NotificationData(), "<AuthorizationNotification>")

	id, ok := h.NotificationElement("//AmazonAuthorizationId")
	assert.True(t, ok)
	assert.Equal(t, "P01-1234567-1234567-0000001", id)

	_, ok = h.NotificationElement("//AmazonCaptureId")
	assert.False(t, ok)

	inner, err := h.Inner()
	require.NoError(t, err)
	assert.Equal(t, "32d195c3-a829-4222-b1e2-14ab28909513", inner.NotificationReferenceID)
	assert.Equal(t, "136291", inner.MarketplaceID)
}

func TestParse_RejectsMalformedMessage(t *testing.T) {
	tests := []struct {
		name    string
		message string
	}{
		{name: "plain text", message: "this is not json"},
		{name: "truncated object", message: `{"NotificationType":`},
		{name: "empty", message: ""},
	}

	key := newKey(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := signedBody(t, key, func(e *Envelope) { e.Message = tt.message })

			h, err := Parse(notificationHeaders(), body, nil, nil)
			assert.Nil(t, h)
			assert.ErrorIs(t, err, ErrMalformedMessage)
		})
	}
}

func TestParse_MalformedEnvelope(t *testing.T) {
	_, err := Parse(nil, []byte("{"), nil, nil)
	assert.Error(t, err)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "header_checked", StateHeaderChecked.String())
	assert.Equal(t, "unknown", State(99).String())
}
