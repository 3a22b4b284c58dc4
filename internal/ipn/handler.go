package ipn

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/beevik/etree"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"amazonpay/internal/signer"
)

// HeaderMessageType must be "Notification" on every delivered IPN.
const HeaderMessageType = "x-amz-sns-message-type"

// State tracks how far authentication got.
type State int

const (
	StateStart State = iota
	StateHeaderChecked
	StateSubjectChecked
	StateKeyVerified
	StateAuthentic
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateHeaderChecked:
		return "header_checked"
	case StateSubjectChecked:
		return "subject_checked"
	case StateKeyVerified:
		return "key_verified"
	case StateAuthentic:
		return "authentic"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Envelope is the SNS wrapper around a notification.
type Envelope struct {
	Type             string `json:"Type"`
	MessageID        string `json:"MessageId"`
	TopicArn         string `json:"TopicArn"`
	Message          string `json:"Message"`
	Timestamp        string `json:"Timestamp"`
	Signature        string `json:"Signature"`
	SignatureVersion string `json:"SignatureVersion"`
	SigningCertURL   string `json:"SigningCertURL"`
	UnsubscribeURL   string `json:"UnsubscribeURL"`
}

// Message is the JSON document carried in Envelope.Message.
type Message struct {
	NotificationReferenceID string `json:"NotificationReferenceId"`
	MarketplaceID           string `json:"MarketplaceID"`
	NotificationType        string `json:"NotificationType"`
	SellerID                string `json:"SellerId"`
	ReleaseEnvironment      string `json:"ReleaseEnvironment"`
	Version                 string `json:"Version"`
	NotificationData        string `json:"NotificationData"`
	Timestamp               string `json:"Timestamp"`
}

// signableKeys are the envelope fields covered by the signature, in order.
var signableKeys = []string{"Message", "MessageId", "Timestamp", "TopicArn", "Type"}

// Handler authenticates one notification and exposes its fields.
type Handler struct {
	headers http.Header
	body    []byte
	env     Envelope
	certs   CertificateSource
	logger  *zap.Logger
	state   State
}

// Parse decodes the envelope and checks that its Message is JSON. It does
// not authenticate. Header keys need not be canonical.
func Parse(headers http.Header, body []byte, certs CertificateSource, logger *zap.Logger) (*Handler, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to parse notification envelope: %w", err)
	}
	if !gjson.Valid(env.Message) {
		return nil, ErrMalformedMessage
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		headers: canonicalHeaders(headers),
		body:    body,
		env:     env,
		certs:   certs,
		logger:  logger,
	}, nil
}

func canonicalHeaders(headers http.Header) http.Header {
	out := make(http.Header, len(headers))
	for k, vs := range headers {
		for _, v := range vs {
			out.Add(k, v)
		}
	}
	return out
}

// Authenticate runs the header, certificate and signature checks in order.
// The first failure rejects the notification with an *AuthError, or with
// the download error when the certificate could not be fetched.
func (h *Handler) Authenticate(ctx context.Context) error {
	h.state = StateStart

	if h.headers.Get(HeaderMessageType) != "Notification" {
		return h.reject(&AuthError{Msg: MsgHeader})
	}
	h.state = StateHeaderChecked

	cert, err := h.certs.Certificate(ctx, h.env.SigningCertURL)
	if err != nil {
		return h.reject(err)
	}
	if err := ValidateSubject(cert); err != nil {
		return h.reject(err)
	}
	h.state = StateSubjectChecked

	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return h.reject(&AuthError{Msg: MsgKey})
	}
	sig, err := base64.StdEncoding.DecodeString(h.env.Signature)
	if err != nil || !signer.VerifySHA1(pub, sig, h.CanonicalString()) {
		return h.reject(&AuthError{Msg: MsgKey})
	}
	h.state = StateKeyVerified

	h.state = StateAuthentic
	h.logger.Debug("Notification authenticated",
		zap.String("message_id", h.env.MessageID),
		zap.String("notification_type", h.NotificationType()),
	)
	return nil
}

func (h *Handler) reject(err error) error {
	h.logger.Warn("Notification rejected",
		zap.String("message_id", h.env.MessageID),
		zap.String("state", h.state.String()),
		zap.Error(err),
	)
	h.state = StateRejected
	return err
}

// State returns the authentication progress.
func (h *Handler) State() State {
	return h.state
}

// CanonicalString is the text covered by the notification signature: each
// non-empty signable field as "key\nvalue\n".
func (h *Handler) CanonicalString() string {
	var b strings.Builder
	for _, key := range signableKeys {
		value := h.field(key)
		if value == "" {
			continue
		}
		b.WriteString(key)
		b.WriteByte('\n')
		b.WriteString(value)
		b.WriteByte('\n')
	}
	return b.String()
}

func (h *Handler) field(key string) string {
	switch key {
	case "Message":
		return h.env.Message
	case "MessageId":
		return h.env.MessageID
	case "Timestamp":
		return h.env.Timestamp
	case "TopicArn":
		return h.env.TopicArn
	case "Type":
		return h.env.Type
	}
	return ""
}

func (h *Handler) Envelope() Envelope       { return h.env }
func (h *Handler) Body() []byte             { return h.body }
func (h *Handler) Type() string             { return h.env.Type }
func (h *Handler) MessageID() string        { return h.env.MessageID }
func (h *Handler) TopicArn() string         { return h.env.TopicArn }
func (h *Handler) Message() string          { return h.env.Message }
func (h *Handler) Timestamp() string        { return h.env.Timestamp }
func (h *Handler) Signature() string        { return h.env.Signature }
func (h *Handler) SignatureVersion() string { return h.env.SignatureVersion }
func (h *Handler) SigningCertURL() string   { return h.env.SigningCertURL }
func (h *Handler) UnsubscribeURL() string   { return h.env.UnsubscribeURL }

func (h *Handler) inner(key string) string {
	return gjson.Get(h.env.Message, key).String()
}

func (h *Handler) NotificationType() string   { return h.inner("NotificationType") }
func (h *Handler) SellerID() string           { return h.inner("SellerId") }
func (h *Handler) ReleaseEnvironment() string { return h.inner("ReleaseEnvironment") }
func (h *Handler) Version() string            { return h.inner("Version") }
func (h *Handler) NotificationData() string   { return h.inner("NotificationData") }
func (h *Handler) MessageTimestamp() string   { return h.inner("Timestamp") }

// Inner decodes the whole inner message, reporting malformed JSON.
func (h *Handler) Inner() (*Message, error) {
	var m Message
	if err := json.Unmarshal([]byte(h.env.Message), &m); err != nil {
		return nil, fmt.Errorf("failed to parse notification message: %w", err)
	}
	return &m, nil
}

// NotificationElement returns the text of the first element matching path
// inside the XML NotificationData, e.g. "//AmazonAuthorizationId".
func (h *Handler) NotificationElement(path string) (string, bool) {
	data := h.NotificationData()
	if data == "" {
		return "", false
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromString(data); err != nil {
		return "", false
	}
	p, err := etree.CompilePath(path)
	if err != nil {
		return "", false
	}
	el := doc.FindElementPath(p)
	if el == nil {
		return "", false
	}
	return el.Text(), true
}
