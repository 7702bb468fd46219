package bridge

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// The attribute keys the translator understands. Everything else is opaque
// pass-through data.
const (
	attrHTTPMethod     = attribute.Key("http.method")
	attrHTTPStatusCode = attribute.Key("http.status_code")
	attrHTTPTarget     = attribute.Key("http.target")
	attrNetPeerName    = attribute.Key("net.peer.name")
	attrDBSystem       = attribute.Key("db.system")
	attrDBStatement    = attribute.Key("db.statement")
)

// translation is what the rules derive from a finished span's attributes.
// Op and Description start out as the span name; HTTPStatus is zero when no
// status code attribute was seen.
type translation struct {
	Op          string
	Description string
	HTTPStatus  int
}

type attrSet map[attribute.Key]attribute.Value

func (a attrSet) asString(key attribute.Key) (string, bool) {
	v, ok := a[key]
	if !ok || v.Type() != attribute.STRING {
		return "", false
	}
	return v.AsString(), true
}

func (a attrSet) asInt(key attribute.Key) (int, bool) {
	v, ok := a[key]
	if !ok || v.Type() != attribute.INT64 {
		return 0, false
	}
	return int(v.AsInt64()), true
}

// The rules are ordered; the first one that matches wins. New rules that
// need priority over existing ones go earlier in the slice.
var rules = []struct {
	match func(attrs attrSet) bool
	apply func(attrs attrSet, kind trace.SpanKind, out *translation)
}{
	{
		match: func(attrs attrSet) bool {
			_, ok := attrs.asString(attrHTTPMethod)
			return ok
		},
		apply: func(attrs attrSet, kind trace.SpanKind, out *translation) {
			method, _ := attrs.asString(attrHTTPMethod)

			out.Op = "http." + kind.String()
			out.Description = method

			if peer, ok := attrs.asString(attrNetPeerName); ok {
				out.Description += " " + peer
			}
			if target, ok := attrs.asString(attrHTTPTarget); ok {
				out.Description += target
			}

			if code, ok := attrs.asInt(attrHTTPStatusCode); ok {
				out.HTTPStatus = code
			}
		},
	},
	{
		match: func(attrs attrSet) bool {
			_, ok := attrs.asString(attrDBSystem)
			return ok
		},
		apply: func(attrs attrSet, kind trace.SpanKind, out *translation) {
			out.Op = "db"
			if stmt, ok := attrs.asString(attrDBStatement); ok {
				out.Description = stmt
			}
		},
	},
}

// translate derives the internal span's operation, description and HTTP
// status from a finished otel span. name is the span name, already the
// default for both operation and description.
func translate(name string, kind trace.SpanKind, attributes []attribute.KeyValue) translation {
	out := translation{
		Op:          name,
		Description: name,
	}

	attrs := make(attrSet, len(attributes))
	for _, kv := range attributes {
		attrs[kv.Key] = kv.Value
	}

	for _, rule := range rules {
		if rule.match(attrs) {
			rule.apply(attrs, kind, &out)
			break
		}
	}

	return out
}
