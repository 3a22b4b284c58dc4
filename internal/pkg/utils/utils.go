package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// maxReferenceIDLength is the longest seller reference id MWS accepts.
const maxReferenceIDLength = 32

// RandomHex generates a random hex string of n bytes.
func RandomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// ReferenceID generates a unique seller reference id such as
// "auth-lq2x3k9a-1f2e3d4c", usable for AuthorizationReferenceId,
// CaptureReferenceId and RefundReferenceId. The result is cut to 32
// characters.
func ReferenceID(prefix string) string {
	id := strconv.FormatInt(time.Now().UnixMilli(), 36) + "-" + RandomHex(4)
	if prefix != "" {
		id = prefix + "-" + id
	}
	if len(id) > maxReferenceIDLength {
		id = id[:maxReferenceIDLength]
	}
	return id
}
