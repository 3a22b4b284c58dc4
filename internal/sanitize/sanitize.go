// Package sanitize redacts buyer PII from request strings and XML bodies
// before they reach a log sink.
package sanitize

import "regexp"

// Removed replaces every redacted value.
const Removed = "*REMOVED*"

// Fields lists the parameter and element names that carry PII.
var Fields = []string{
	"Buyer",
	"PhysicalDestination",
	"BillingAddress",
	"AuthorizationBillingAddress",
	"SellerNote",
	"SellerAuthorizationNote",
	"SellerCaptureNote",
	"SellerRefundNote",
}

type rule struct {
	re   *regexp.Regexp
	repl string
}

var (
	requestRules  = make([]rule, 0, len(Fields))
	responseRules = make([]rule, 0, len(Fields))
)

func init() {
	for _, f := range Fields {
		// A key matches at the start, after a query delimiter, or as the
		// last segment of a dotted attribute (OrderReferenceAttributes.SellerNote).
		requestRules = append(requestRules, rule{
			re:   regexp.MustCompile(`(^|[?&.])` + f + `=[^&]+`),
			repl: "${1}" + f + "=" + Removed,
		})
		responseRules = append(responseRules, rule{
			re:   regexp.MustCompile(`(?s)<` + f + `>.*?</` + f + `>`),
			repl: "<" + f + ">" + Removed + "</" + f + ">",
		})
	}
}

// Request redacts sensitive values in an encoded key=value&... string.
func Request(s string) string {
	for _, r := range requestRules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return s
}

// Response redacts the text of sensitive elements in an XML body.
func Response(s string) string {
	for _, r := range responseRules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return s
}
