package canonical

// Default parameter names sent with every request.
const (
	KeyAccessKeyID      = "AWSAccessKeyId"
	KeySignatureMethod  = "SignatureMethod"
	KeySignatureVersion = "SignatureVersion"
	KeyVersion          = "Version"
	KeyPlatformID       = "PlatformId"
	KeyMWSAuthToken     = "MWSAuthToken"
	KeyTimestamp        = "Timestamp"
	KeySignature        = "Signature"
	KeyAction           = "Action"

	SignatureMethod  = "HmacSHA256"
	SignatureVersion = "2"
)

// identityKeys are never overridden by per-request parameters.
var identityKeys = map[string]bool{
	KeyAccessKeyID:      true,
	KeySignatureMethod:  true,
	KeySignatureVersion: true,
	KeyVersion:          true,
}

// Defaults is the fixed parameter set merged into every request.
type Defaults struct {
	AccessKeyID  string
	APIVersion   string
	PlatformID   Opt
	MWSAuthToken Opt
}

// Params returns the defaults as a fresh parameter set.
func (d Defaults) Params() Params {
	p := Params{
		KeyAccessKeyID:      d.AccessKeyID,
		KeySignatureMethod:  SignatureMethod,
		KeySignatureVersion: SignatureVersion,
		KeyVersion:          d.APIVersion,
	}
	return p.SetOpt(KeyPlatformID, d.PlatformID).SetOpt(KeyMWSAuthToken, d.MWSAuthToken)
}

// Merge overlays explicit params on top of the defaults. Explicit values win
// on collision except for identity fields, which always keep the default.
func Merge(d Defaults, explicit Params) Params {
	out := d.Params()
	for k, v := range explicit {
		if identityKeys[k] {
			continue
		}
		out[k] = v
	}
	return out
}
