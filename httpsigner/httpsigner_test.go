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

package httpsigner

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awssigner/go-openssl/credentials"
	"github.com/awssigner/go-openssl/signer"
)

var (
	testCredential = credentials.Credential{
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
	}
	testDate = time.Date(2015, 8, 30, 12, 36, 0, 0, time.UTC)
)

type received struct {
	authorization string
	verified      string
	body          string
	query         url.Values
	err           error
}

// resign signs r again from the headers its Authorization lists.
func resign(s *signer.Signer, r *http.Request, body []byte) (string, error) {
	date, err := time.Parse("20060102T150405Z", r.Header.Get(signer.HeaderDate))
	if err != nil {
		return "", err
	}
	authorization := r.Header.Get(signer.HeaderAuthorization)
	names := authorization[strings.Index(authorization, "SignedHeaders=")+len("SignedHeaders="):]
	names = names[:strings.Index(names, ",")]
	headers := http.Header{}
	for _, name := range strings.Split(names, ";") {
		if name != "host" {
			headers[http.CanonicalHeaderKey(name)] = r.Header.Values(name)
		}
	}
	u, err := url.Parse("http://" + r.Host + r.URL.RequestURI())
	if err != nil {
		return "", err
	}
	resigned, err := s.SignHeaders(u, r.Method, headers, body, date)
	if err != nil {
		return "", err
	}
	return resigned.Get(signer.HeaderAuthorization), nil
}

// verifyingServer reports what each request carried along with the
// Authorization the server computes for it.
func verifyingServer(t *testing.T, s *signer.Signer) (*httptest.Server, chan received) {
	ch := make(chan received, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		got := received{
			authorization: r.Header.Get(signer.HeaderAuthorization),
			body:          string(body),
			query:         r.URL.Query(),
			err:           err,
		}
		if err == nil && got.authorization != "" {
			got.verified, got.err = resign(s, r, body)
		}
		ch <- got
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv, ch
}

func TestNewHeaderSignedRequest(t *testing.T) {
	s := signer.New(testCredential, "service", "us-east-1")
	srv, ch := verifyingServer(t, s)

	headers := http.Header{"Content-Type": []string{"text/plain"}}
	req, err := NewHeaderSignedRequest(context.Background(), s, "POST",
		srv.URL+"/path?b=2&a=1", headers, []byte("hello"), testDate)
	require.NoError(t, err)
	assert.Empty(t, req.Header.Get(signer.HeaderHost))
	assert.Equal(t, req.URL.Host, req.Host)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	got := <-ch
	require.NoError(t, got.err)
	assert.Equal(t, "hello", got.body)
	assert.NotEmpty(t, got.authorization)
	assert.Equal(t, got.authorization, got.verified)
	assert.Contains(t, got.authorization, "SignedHeaders=content-type;host;")
}

func TestNewURLSignedRequest(t *testing.T) {
	s := signer.New(testCredential, "service", "us-east-1")
	srv, ch := verifyingServer(t, s)

	req, err := NewURLSignedRequest(context.Background(), s, "GET",
		srv.URL+"/object", nil, testDate, time.Hour)
	require.NoError(t, err)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	got := <-ch
	require.NoError(t, got.err)
	assert.Empty(t, got.authorization)
	assert.Equal(t, signer.Algorithm, got.query.Get("X-Amz-Algorithm"))
	assert.Equal(t, "3600", got.query.Get("X-Amz-Expires"))
	assert.Equal(t, "host", got.query.Get("X-Amz-SignedHeaders"))
	assert.Len(t, got.query.Get("X-Amz-Signature"), 64)
}

func TestNewRequestErrors(t *testing.T) {
	s := signer.New(testCredential, "service", "us-east-1")
	_, err := NewHeaderSignedRequest(context.Background(), s, "GET", "://bad",
		nil, nil, testDate)
	assert.Error(t, err)
	_, err = NewURLSignedRequest(context.Background(), s, "GET",
		"https://example.amazonaws.com/", nil, testDate, 30*24*time.Hour)
	assert.Error(t, err)

	empty := signer.New(credentials.Credential{}, "service", "us-east-1")
	_, err = NewHeaderSignedRequest(context.Background(), empty, "GET",
		"https://example.amazonaws.com/", nil, nil, testDate)
	assert.Error(t, err)
}

func TestTransport(t *testing.T) {
	s := signer.New(testCredential, "service", "us-east-1")
	srv, ch := verifyingServer(t, s)

	client := &http.Client{Transport: &Transport{
		Signer: s,
		Base:   srv.Client().Transport,
		Now:    func() time.Time { return testDate },
	}}

	req, err := http.NewRequest("PUT", srv.URL+"/upload", strings.NewReader("payload"))
	require.NoError(t, err)
	req.Header.Set("X-Custom", "  spaced   value ")
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	got := <-ch
	require.NoError(t, got.err)
	assert.Equal(t, "payload", got.body)
	assert.Contains(t, got.authorization, "Credential=AKIDEXAMPLE/20150830/us-east-1/service/aws4_request")
	assert.Contains(t, got.authorization, "SignedHeaders=host;x-amz-content-sha256;x-amz-date;x-custom,")
	assert.Equal(t, got.authorization, got.verified)

	// the caller's request is not modified
	assert.Empty(t, req.Header.Get(signer.HeaderAuthorization))
}

func TestTransportEmptyBody(t *testing.T) {
	s := signer.New(testCredential, "service", "us-east-1")
	srv, ch := verifyingServer(t, s)
	client := &http.Client{Transport: &Transport{Signer: s, Base: srv.Client().Transport}}

	resp, err := client.Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()

	got := <-ch
	require.NoError(t, got.err)
	assert.Empty(t, got.body)
	assert.Equal(t, got.authorization, got.verified)
}

func TestTransportCredentialError(t *testing.T) {
	client := &http.Client{Transport: &Transport{
		Signer: signer.New(credentials.Credential{}, "service", "us-east-1"),
	}}
	_, err := client.Get("http://127.0.0.1:1/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieving credentials")
}
