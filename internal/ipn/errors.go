package ipn

import "errors"

// Rejection messages. Each failed check carries exactly one of these.
const (
	MsgHeader      = "Error - Header does not contain x-amz-sns-message-type header"
	MsgCertificate = "Error - Unable to verify certificate subject issued by Amazon"
	MsgKey         = "Error - Unable to verify public key with signature and signed string"
	msgCertURL     = "Error - certificate is not hosted at AWS URL (https): "
)

var (
	// ErrNotAuthentic matches every *AuthError via errors.Is.
	ErrNotAuthentic = errors.New("notification is not authentic")
	// ErrMalformedMessage is returned by Parse when Message is not JSON.
	ErrMalformedMessage = errors.New("notification message is not valid JSON")
)

// AuthError is returned for every rejected notification.
type AuthError struct {
	Msg string
}

func (e *AuthError) Error() string {
	return e.Msg
}

func (e *AuthError) Is(target error) bool {
	return target == ErrNotAuthentic
}
