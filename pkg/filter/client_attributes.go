package filter

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

// ClientAttribute names one extractable field of an outbound request. Most
// attributes become span tags; ClientEntity and ClientEntityStream describe
// the request body and are recorded as span events instead, so the payload
// never lands in the tag index.
type ClientAttribute int

const (
	ClientAcceptableLanguages ClientAttribute = iota
	ClientAcceptableMediaTypes
	ClientCookies
	ClientDate
	ClientEntity
	ClientEntityAnnotations
	ClientEntityClass
	ClientEntityStream
	ClientHeaders
	ClientLanguage
	ClientMediaType
	ClientMethod
	ClientPropertyNames
	ClientURI
)

// entitySnapshotLimit bounds how much of a replayable body is captured for
// the entity event.
const entitySnapshotLimit = 4096

type clientExtractor func(r *http.Request) (attribute.KeyValue, bool)

// clientTagExtractors covers the attributes recorded as span tags.
var clientTagExtractors = map[ClientAttribute]clientExtractor{
	ClientAcceptableLanguages:  clientHeaderTag("Acceptable Languages", "Accept-Language"),
	ClientAcceptableMediaTypes: clientHeaderTag("Acceptable Media Types", "Accept"),
	ClientCookies: func(r *http.Request) (attribute.KeyValue, bool) {
		cookies := r.Cookies()
		if len(cookies) == 0 {
			return attribute.KeyValue{}, false
		}
		parts := make([]string, len(cookies))
		for i, c := range cookies {
			parts[i] = c.Name + "=" + c.Value
		}
		return attribute.String("Cookies", strings.Join(parts, "; ")), true
	},
	ClientDate: clientHeaderTag("Date", "Date"),
	ClientEntityAnnotations: func(r *http.Request) (attribute.KeyValue, bool) {
		if len(r.TransferEncoding) == 0 {
			return attribute.KeyValue{}, false
		}
		return attribute.String("Entity Annotations", strings.Join(r.TransferEncoding, ",")), true
	},
	ClientEntityClass: func(r *http.Request) (attribute.KeyValue, bool) {
		if r.Body == nil {
			return attribute.KeyValue{}, false
		}
		return attribute.String("Entity Class", fmt.Sprintf("%T", r.Body)), true
	},
	ClientHeaders: func(r *http.Request) (attribute.KeyValue, bool) {
		if len(r.Header) == 0 {
			return attribute.KeyValue{}, false
		}
		return attribute.String("Headers", formatHeaders(r.Header)), true
	},
	ClientLanguage:  clientHeaderTag("Language", "Content-Language"),
	ClientMediaType: clientHeaderTag("Media Type", "Content-Type"),
	ClientMethod: func(r *http.Request) (attribute.KeyValue, bool) {
		return attribute.String("Method", r.Method), true
	},
	ClientPropertyNames: func(r *http.Request) (attribute.KeyValue, bool) {
		names := PropertyNames(r.Context())
		if len(names) == 0 {
			return attribute.KeyValue{}, false
		}
		return attribute.String("Property Names", strings.Join(names, ",")), true
	},
	ClientURI: func(r *http.Request) (attribute.KeyValue, bool) {
		return attribute.String("URI", r.URL.String()), true
	},
}

// clientEventExtractor evaluates one body-describing attribute. It returns
// the event name, the event attributes, and whether the field is present.
type clientEventExtractor func(r *http.Request) (string, []attribute.KeyValue, bool)

// clientEventExtractors covers the attributes recorded as span events.
var clientEventExtractors = map[ClientAttribute]clientEventExtractor{
	ClientEntity: func(r *http.Request) (string, []attribute.KeyValue, bool) {
		if r.Body == nil || r.GetBody == nil {
			return "", nil, false
		}
		body, err := r.GetBody()
		if err != nil {
			return "", nil, false
		}
		defer body.Close()
		snapshot, err := io.ReadAll(io.LimitReader(body, entitySnapshotLimit))
		if err != nil || len(snapshot) == 0 {
			return "", nil, false
		}
		return "entity", []attribute.KeyValue{
			attribute.String("Entity", string(snapshot)),
		}, true
	},
	ClientEntityStream: func(r *http.Request) (string, []attribute.KeyValue, bool) {
		if r.Body == nil {
			return "", nil, false
		}
		return "entity stream", []attribute.KeyValue{
			attribute.String("Entity Stream", fmt.Sprintf("%T", r.Body)),
			attribute.Int64("Content Length", r.ContentLength),
		}, true
	},
}

func clientHeaderTag(label, header string) clientExtractor {
	return func(r *http.Request) (attribute.KeyValue, bool) {
		v := r.Header.Get(header)
		if v == "" {
			return attribute.KeyValue{}, false
		}
		return attribute.String(label, v), true
	}
}
