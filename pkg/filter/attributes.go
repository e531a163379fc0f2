package filter

import (
	"net/http"
	"net/url"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

// ServerAttribute names one extractable field of an inbound request. The set
// is closed: each attribute maps to a fixed tag label and a pure extraction
// function. Extraction distinguishes "field absent" (a normal occurrence,
// skipped silently) from a present value; absence is never signalled by a
// recovered panic.
type ServerAttribute int

const (
	ServerAbsolutePath ServerAttribute = iota
	ServerAcceptableLanguages
	ServerAcceptableMediaTypes
	ServerAuthenticationScheme
	ServerBaseURI
	ServerCookies
	ServerHeaders
	ServerIsSecure
	ServerLanguage
	ServerMethod
	ServerMediaType
	ServerPath
	ServerQueryParameters
	ServerSecurityContext
	ServerURI
	ServerUserPrincipal
)

// serverExtractor evaluates one attribute against a request. The second
// return value reports whether the field is present.
type serverExtractor func(r *http.Request) (attribute.KeyValue, bool)

// serverExtractors maps each server attribute to its extraction function.
var serverExtractors = map[ServerAttribute]serverExtractor{
	ServerAbsolutePath: func(r *http.Request) (attribute.KeyValue, bool) {
		u := absoluteURL(r)
		u.RawQuery = ""
		u.Fragment = ""
		return attribute.String("Absolute Path", u.String()), true
	},
	ServerAcceptableLanguages:  headerTag("Acceptable Languages", "Accept-Language"),
	ServerAcceptableMediaTypes: headerTag("Acceptable Media Types", "Accept"),
	ServerAuthenticationScheme: func(r *http.Request) (attribute.KeyValue, bool) {
		sc, ok := SecurityContextFrom(r.Context())
		if !ok || sc.Scheme == "" {
			return attribute.KeyValue{}, false
		}
		return attribute.String("Authentication Scheme", sc.Scheme), true
	},
	ServerBaseURI: func(r *http.Request) (attribute.KeyValue, bool) {
		u := absoluteURL(r)
		base := url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}
		return attribute.String("Base URI", base.String()), true
	},
	ServerCookies: func(r *http.Request) (attribute.KeyValue, bool) {
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
	ServerHeaders: func(r *http.Request) (attribute.KeyValue, bool) {
		if len(r.Header) == 0 {
			return attribute.KeyValue{}, false
		}
		return attribute.String("Headers", formatHeaders(r.Header)), true
	},
	ServerIsSecure: func(r *http.Request) (attribute.KeyValue, bool) {
		return attribute.Bool("Is Secure", r.TLS != nil), true
	},
	ServerLanguage: headerTag("Language", "Content-Language"),
	ServerMethod: func(r *http.Request) (attribute.KeyValue, bool) {
		return attribute.String("Method", r.Method), true
	},
	ServerMediaType: headerTag("Media Type", "Content-Type"),
	ServerPath: func(r *http.Request) (attribute.KeyValue, bool) {
		return attribute.String("Path", r.URL.Path), true
	},
	ServerQueryParameters: func(r *http.Request) (attribute.KeyValue, bool) {
		if r.URL.RawQuery == "" {
			return attribute.KeyValue{}, false
		}
		return attribute.String("Query Parameters", r.URL.RawQuery), true
	},
	ServerSecurityContext: func(r *http.Request) (attribute.KeyValue, bool) {
		sc, ok := SecurityContextFrom(r.Context())
		if !ok {
			return attribute.KeyValue{}, false
		}
		return attribute.String("Security Context", sc.Scheme), true
	},
	ServerURI: func(r *http.Request) (attribute.KeyValue, bool) {
		return attribute.String("URI", absoluteURL(r).String()), true
	},
	ServerUserPrincipal: func(r *http.Request) (attribute.KeyValue, bool) {
		sc, ok := SecurityContextFrom(r.Context())
		if !ok || sc.Principal == "" {
			return attribute.KeyValue{}, false
		}
		return attribute.String("User Principal", sc.Principal), true
	},
}

// headerTag builds an extractor that tags the first value of a header,
// treating a missing header as field-absent.
func headerTag(label, header string) serverExtractor {
	return func(r *http.Request) (attribute.KeyValue, bool) {
		v := r.Header.Get(header)
		if v == "" {
			return attribute.KeyValue{}, false
		}
		return attribute.String(label, v), true
	}
}

// absoluteURL reconstructs the absolute request URL. Server-side request
// URLs carry only the path and query; scheme and host come from the
// connection and the Host header.
func absoluteURL(r *http.Request) *url.URL {
	u := *r.URL
	if u.Scheme == "" {
		if r.TLS != nil {
			u.Scheme = "https"
		} else {
			u.Scheme = "http"
		}
	}
	if u.Host == "" {
		u.Host = r.Host
	}
	return &u
}

// formatHeaders renders a header map deterministically (sorted by name).
func formatHeaders(h http.Header) string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for i, name := range names {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(name)
		sb.WriteString("=")
		sb.WriteString(strings.Join(h[name], ","))
	}
	return sb.String()
}
