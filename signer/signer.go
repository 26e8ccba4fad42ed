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

// Package signer implements AWS Signature Version 4 request signing, in
// the Authorization header or in the query string of a presigned URL.
//
// https://docs.aws.amazon.com/general/latest/gr/signing_aws_api_requests.html
package signer

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/spacemonkeygo/spacelog"

	"github.com/awssigner/go-openssl/credentials"
)

var logger = spacelog.GetLogger()

const (
	Algorithm       = "AWS4-HMAC-SHA256"
	UnsignedPayload = "UNSIGNED-PAYLOAD"

	HeaderAuthorization = "Authorization"
	HeaderDate          = "X-Amz-Date"
	HeaderContentSHA256 = "X-Amz-Content-Sha256"
	HeaderSecurityToken = "X-Amz-Security-Token"
	HeaderHost          = "Host"

	DefaultExpires = 24 * time.Hour
	MaxExpires     = 7 * 24 * time.Hour

	timeFormat = "20060102T150405Z"
	terminator = "aws4_request"
)

// Signer signs requests for one service in one region.
type Signer struct {
	credentials credentials.Provider
	service     string
	region      string
}

// New returns a Signer. service is the signing name of the service, which
// is usually the service name ("s3", "sns", ...).
func New(provider credentials.Provider, service, region string) *Signer {
	return &Signer{
		credentials: provider,
		service:     service,
		region:      region,
	}
}

func (s *Signer) Service() string { return s.service }
func (s *Signer) Region() string  { return s.region }

// HashBackend names the implementation computing SHA256 and HMAC.
func HashBackend() string { return hashBackend }

// SignHeaders returns a copy of headers with X-Amz-Date, Host,
// X-Amz-Content-Sha256, X-Amz-Security-Token (for temporary credentials)
// and Authorization added. A caller supplied X-Amz-Content-Sha256 is kept
// and signed as the payload hash.
func (s *Signer) SignHeaders(u *url.URL, method string, headers http.Header,
	body []byte, date time.Time) (http.Header, error) {
	cred, err := s.credentials.Retrieve()
	if err != nil {
		return nil, errors.Wrap(err, "signer: retrieving credentials")
	}

	signed := canonicalHeaders(headers)
	signed.Del(HeaderAuthorization)
	signed.Set(HeaderDate, timestamp(date))
	signed.Set(HeaderHost, u.Host)
	if signed.Get(HeaderContentSHA256) == "" {
		hashed, err := hashedPayload(body)
		if err != nil {
			return nil, err
		}
		signed.Set(HeaderContentSHA256, hashed)
	}
	if cred.SessionToken != "" {
		signed.Set(HeaderSecurityToken, cred.SessionToken)
	}

	sd, err := newSigningData(u, method, signed, body, date, s.service)
	if err != nil {
		return nil, err
	}
	signature, err := s.signature(cred, sd)
	if err != nil {
		return nil, err
	}
	signed.Set(HeaderAuthorization, fmt.Sprintf(
		"%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		Algorithm, cred.AccessKeyID, s.scope(sd.date()), sd.signedHeaders,
		signature))
	return signed, nil
}

// SignURL returns a presigned copy of u, valid for expires (DefaultExpires
// when zero). Existing query parameters are kept and signed.
func (s *Signer) SignURL(u *url.URL, method string, body []byte,
	date time.Time, expires time.Duration) (*url.URL, error) {
	if expires == 0 {
		expires = DefaultExpires
	}
	if expires < time.Second || expires > MaxExpires {
		return nil, errors.Errorf("signer: expiry %s outside [1s, %s]",
			expires, MaxExpires)
	}
	cred, err := s.credentials.Retrieve()
	if err != nil {
		return nil, errors.Wrap(err, "signer: retrieving credentials")
	}

	headers := http.Header{HeaderHost: []string{u.Host}}
	sd, err := newSigningData(u, method, headers, body, date, s.service)
	if err != nil {
		return nil, err
	}

	query, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return nil, errors.Wrapf(err, "signer: parsing query of %s", u.Redacted())
	}
	query.Set("X-Amz-Algorithm", Algorithm)
	query.Set("X-Amz-Credential", cred.AccessKeyID+"/"+s.scope(sd.date()))
	query.Set("X-Amz-Date", sd.datetime)
	query.Set("X-Amz-Expires", strconv.Itoa(int(expires/time.Second)))
	query.Set("X-Amz-SignedHeaders", sd.signedHeaders)
	if cred.SessionToken != "" {
		query.Set("X-Amz-Security-Token", cred.SessionToken)
	}

	presigned := *u
	presigned.RawQuery = canonicalQueryString(query)
	presigned.Fragment = ""
	sd.url = &presigned

	signature, err := s.signature(cred, sd)
	if err != nil {
		return nil, err
	}
	presigned.RawQuery += "&X-Amz-Signature=" + signature
	return &presigned, nil
}

// scope is the credential scope without the access key id.
func (s *Signer) scope(date string) string {
	return date + "/" + s.region + "/" + s.service + "/" + terminator
}

// signature follows
// https://docs.aws.amazon.com/general/latest/gr/sigv4-calculate-signature.html
func (s *Signer) signature(cred credentials.Credential, sd *signingData) (string, error) {
	key, err := s.signingKey(cred.SecretAccessKey, sd.date())
	if err != nil {
		return "", err
	}
	toSign, err := s.stringToSign(sd)
	if err != nil {
		return "", err
	}
	sig, err := hmacSHA256(key, []byte(toSign))
	if err != nil {
		return "", errors.Wrap(err, "signer: signing")
	}
	return hexEncode(sig), nil
}

func (s *Signer) signingKey(secret, date string) (key []byte, err error) {
	key = []byte("AWS4" + secret)
	for _, part := range []string{date, s.region, s.service, terminator} {
		key, err = hmacSHA256(key, []byte(part))
		if err != nil {
			return nil, errors.Wrap(err, "signer: deriving signing key")
		}
	}
	return key, nil
}

// stringToSign follows
// https://docs.aws.amazon.com/general/latest/gr/sigv4-create-string-to-sign.html
func (s *Signer) stringToSign(sd *signingData) (string, error) {
	canonical := sd.canonicalRequest()
	if logger.DebugEnabled() {
		logger.Debugf("signer: canonical request:\n%s", canonical)
	}
	hashed, err := sha256Hex([]byte(canonical))
	if err != nil {
		return "", errors.Wrap(err, "signer: hashing canonical request")
	}
	return Algorithm + "\n" +
		sd.datetime + "\n" +
		s.scope(sd.date()) + "\n" +
		hashed, nil
}

func timestamp(date time.Time) string {
	return date.UTC().Format(timeFormat)
}

func hashedPayload(body []byte) (string, error) {
	hashed, err := sha256Hex(body)
	if err != nil {
		return "", errors.Wrap(err, "signer: hashing payload")
	}
	return hashed, nil
}
