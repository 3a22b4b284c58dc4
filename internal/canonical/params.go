package canonical

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Opt is an optional parameter value. The zero value is absent.
type Opt struct {
	value string
	set   bool
}

// Some returns a present optional value.
func Some(v string) Opt {
	return Opt{value: v, set: true}
}

// SomeValue stringifies v and returns it as a present optional value.
func SomeValue(v interface{}) Opt {
	return Some(Stringify(v))
}

// SomeBool returns "true" or "false" as a present optional value.
func SomeBool(b bool) Opt {
	return Some(strconv.FormatBool(b))
}

// None returns an absent optional value.
func None() Opt {
	return Opt{}
}

// Get returns the value and whether it is present.
func (o Opt) Get() (string, bool) {
	return o.value, o.set
}

// IsSet reports whether the value is present.
func (o Opt) IsSet() bool {
	return o.set
}

// Or returns the value if present, otherwise def.
func (o Opt) Or(def string) string {
	if o.set {
		return o.value
	}
	return def
}

// Stringify renders non-string values the way they travel on the wire.
func Stringify(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Params is a flat request parameter set. Absent values are never stored.
type Params map[string]string

// NewParams returns an empty parameter set.
func NewParams() Params {
	return make(Params)
}

// Set stores a present value.
func (p Params) Set(key, value string) Params {
	p[key] = value
	return p
}

// SetValue stores the string rendering of value.
func (p Params) SetValue(key string, value interface{}) Params {
	p[key] = Stringify(value)
	return p
}

// SetOpt stores the value only when it is present.
func (p Params) SetOpt(key string, o Opt) Params {
	if v, ok := o.Get(); ok {
		p[key] = v
	}
	return p
}

// Overlay copies every entry of other into p, replacing existing keys.
func (p Params) Overlay(other Params) Params {
	for k, v := range other {
		p[k] = v
	}
	return p
}

// Clone returns a copy of p.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Keys returns the keys in byte-wise lexicographic order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Encode serializes p as key=value pairs sorted by key and joined by '&'.
// Values are escaped with Escape; keys are written as-is.
func Encode(p Params) string {
	var b strings.Builder
	for i, k := range p.Keys() {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(Escape(p[k]))
	}
	return b.String()
}
