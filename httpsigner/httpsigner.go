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

// Package httpsigner builds SigV4 signed net/http requests and signs
// outgoing requests in an http.RoundTripper.
package httpsigner

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/spacemonkeygo/spacelog"

	"github.com/awssigner/go-openssl/signer"
)

var logger = spacelog.GetLogger()

// NewHeaderSignedRequest returns a request for rawURL carrying headers and
// the SigV4 Authorization header computed at date.
func NewHeaderSignedRequest(ctx context.Context, s *signer.Signer, method,
	rawURL string, headers http.Header, body []byte, date time.Time) (
	*http.Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "httpsigner: parsing url")
	}
	signed, err := s.SignHeaders(u, method, headers, body, date)
	if err != nil {
		return nil, err
	}
	req, err := newRequest(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	applyHeaders(req, signed)
	return req, nil
}

// NewURLSignedRequest returns a request for the presigned form of rawURL,
// valid for expires.
func NewURLSignedRequest(ctx context.Context, s *signer.Signer, method,
	rawURL string, body []byte, date time.Time, expires time.Duration) (
	*http.Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "httpsigner: parsing url")
	}
	presigned, err := s.SignURL(u, method, body, date, expires)
	if err != nil {
		return nil, err
	}
	return newRequest(ctx, method, presigned, body)
}

func newRequest(ctx context.Context, method string, u *url.URL,
	body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, errors.Wrap(err, "httpsigner: creating request")
	}
	return req, nil
}

// applyHeaders copies signed onto req. net/http sends req.Host, never a
// Host entry of req.Header.
func applyHeaders(req *http.Request, signed http.Header) {
	for name, values := range signed {
		if name == signer.HeaderHost {
			req.Host = signed.Get(name)
			continue
		}
		req.Header[name] = values
	}
}

// Transport signs every request in its headers before handing it to Base.
type Transport struct {
	Signer *signer.Signer
	// Base defaults to http.DefaultTransport.
	Base http.RoundTripper
	// Now defaults to time.Now.
	Now func() time.Time
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

// RoundTrip signs a copy of req, buffering its body to hash it.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil && req.Body != http.NoBody {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, errors.Wrap(err, "httpsigner: reading body")
		}
	}

	u := *req.URL
	if req.Host != "" {
		u.Host = req.Host
	}
	signed, err := t.Signer.SignHeaders(&u, req.Method, req.Header, body, t.now())
	if err != nil {
		return nil, err
	}

	out := req.Clone(req.Context())
	out.Header = make(http.Header, len(signed))
	applyHeaders(out, signed)
	if body != nil {
		out.Body = io.NopCloser(bytes.NewReader(body))
		out.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
		out.ContentLength = int64(len(body))
	}
	logger.Debugf("httpsigner: signed %s %s", out.Method, u.Redacted())
	return t.base().RoundTrip(out)
}
