// Copyright (C) 2017. See AUTHORS.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package signer

import (
	"encoding/hex"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// signingData holds what the canonical request is built from.
type signingData struct {
	method        string
	url           *url.URL
	hashedPayload string
	datetime      string
	// headers maps lowercased names to canonical values.
	headers       map[string]string
	signedHeaders string
}

func newSigningData(u *url.URL, method string, headers http.Header,
	body []byte, date time.Time, service string) (*signingData, error) {
	sd := &signingData{
		method:   method,
		url:      u,
		datetime: headers.Get(HeaderDate),
		headers:  make(map[string]string, len(headers)),
	}
	if sd.datetime == "" {
		sd.datetime = timestamp(date)
	}

	switch {
	case headers.Get(HeaderContentSHA256) != "":
		sd.hashedPayload = headers.Get(HeaderContentSHA256)
	case service == "s3":
		sd.hashedPayload = UnsignedPayload
	default:
		hashed, err := hashedPayload(body)
		if err != nil {
			return nil, err
		}
		sd.hashedPayload = hashed
	}

	keys := make([]string, 0, len(headers))
	for key := range headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	names := make([]string, 0, len(headers))
	for _, name := range keys {
		values := headers[name]
		if strings.EqualFold(name, HeaderAuthorization) {
			continue
		}
		lower := strings.ToLower(name)
		canonical := make([]string, len(values))
		for i, v := range values {
			canonical[i] = canonicalHeaderValue(v)
		}
		if prev, ok := sd.headers[lower]; ok {
			sd.headers[lower] = prev + "," + strings.Join(canonical, ",")
			continue
		}
		sd.headers[lower] = strings.Join(canonical, ",")
		names = append(names, lower)
	}
	sort.Strings(names)
	sd.signedHeaders = strings.Join(names, ";")
	return sd, nil
}

// canonicalHeaders copies headers under canonical keys, so that Get and
// Set see every value whatever case the caller used. Values of keys that
// differ only in case are appended in sorted key order.
func canonicalHeaders(headers http.Header) http.Header {
	keys := make([]string, 0, len(headers))
	for key := range headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	canonical := make(http.Header, len(headers)+4)
	for _, key := range keys {
		for _, value := range headers[key] {
			canonical.Add(key, value)
		}
	}
	return canonical
}

// date is the yyyymmdd prefix of the timestamp.
func (sd *signingData) date() string {
	if len(sd.datetime) < 8 {
		return sd.datetime
	}
	return sd.datetime[:8]
}

// canonicalRequest follows
// https://docs.aws.amazon.com/general/latest/gr/sigv4-create-canonical-request.html
func (sd *signingData) canonicalRequest() string {
	names := strings.Split(sd.signedHeaders, ";")
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, name+":"+sd.headers[name])
	}
	return sd.method + "\n" +
		canonicalPath(sd.url) + "\n" +
		canonicalQuery(sd.url) + "\n" +
		strings.Join(lines, "\n") + "\n\n" +
		sd.signedHeaders + "\n" +
		sd.hashedPayload
}

func canonicalPath(u *url.URL) string {
	path := u.Path
	if path == "" {
		return "/"
	}
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = uriEncode(segment)
	}
	return strings.Join(segments, "/")
}

func canonicalQuery(u *url.URL) string {
	if u.RawQuery == "" {
		return ""
	}
	query, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		// ParseQuery keeps every pair it could decode.
		logger.Debugf("signer: malformed query %q: %v", u.RawQuery, err)
	}
	return canonicalQueryString(query)
}

// canonicalQueryString encodes query, sorted by encoded key, then value.
func canonicalQueryString(query url.Values) string {
	type pair struct{ key, value string }
	pairs := make([]pair, 0, len(query))
	for key, values := range query {
		encoded := uriEncode(key)
		for _, value := range values {
			pairs = append(pairs, pair{encoded, uriEncode(value)})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].key != pairs[j].key {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].value < pairs[j].value
	})
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.key)
		b.WriteByte('=')
		b.WriteString(p.value)
	}
	return b.String()
}

// canonicalHeaderValue trims a header value and collapses inner runs of
// whitespace to one space.
func canonicalHeaderValue(v string) string {
	return strings.Join(strings.Fields(v), " ")
}

// uriEncode percent-encodes everything outside the RFC 3986 unreserved
// set, with upper case hex digits.
func uriEncode(s string) string {
	const hexDigits = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&15])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return 'A' <= c && c <= 'Z' ||
		'a' <= c && c <= 'z' ||
		'0' <= c && c <= '9' ||
		c == '-' || c == '_' || c == '.' || c == '~'
}

func hexEncode(b []byte) string {
	return hex.EncodeToString(b)
}
