// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package httputils

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTransport answers every request with body and remembers the last one.
type recordingTransport struct {
	body string
	err  error
	last *http.Request
}

func (r *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r.last = req
	if r.err != nil {
		return nil, r.err
	}

	return &http.Response{
		Status:     "200 OK",
		StatusCode: http.StatusOK,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(r.body)),
	}, nil
}

func TestLoggingRoundTripperRedactsKey(t *testing.T) {
	var trace bytes.Buffer

	lt := &LoggingRoundTripper{
		Transport: &recordingTransport{body: `{"status":"OK"}`},
		Writer:    &trace,
		DumpBody:  true,
	}

	req, err := http.NewRequest(http.MethodGet, "https://maps.googleapis.com/maps/api/geocode/json?address=TCS&key=AIzaSecret", nil)
	require.NoError(t, err)

	resp, err := lt.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()

	out := trace.String()
	assert.Contains(t, out, "> GET /maps/api/geocode/json?address=TCS&key=REDACTED")
	assert.Contains(t, out, "< RESPONSE: [")
	assert.Contains(t, out, `{"status":"OK"}`)
	assert.NotContains(t, out, "AIzaSecret")
}

func TestLoggingRoundTripperWithoutWriter(t *testing.T) {
	rt := &recordingTransport{body: "ok"}
	lt := &LoggingRoundTripper{Transport: rt}

	req, err := http.NewRequest(http.MethodGet, "https://example.com/", nil)
	require.NoError(t, err)

	resp, err := lt.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Same(t, req, rt.last)
}

func TestLoggingRoundTripperTransportError(t *testing.T) {
	var trace bytes.Buffer

	lt := &LoggingRoundTripper{Transport: &recordingTransport{err: errors.New("connection refused")}, Writer: &trace}

	req, err := http.NewRequest(http.MethodGet, "https://example.com/search", nil)
	require.NoError(t, err)

	_, err = lt.RoundTrip(req)
	require.ErrorContains(t, err, "connection refused")
	assert.Contains(t, trace.String(), "> GET /search")
	assert.NotContains(t, trace.String(), "RESPONSE")
}

func TestRedact(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"GET /json?key=abc HTTP/1.1", "GET /json?key=REDACTED HTTP/1.1"},
		{"GET /json?address=x&key=abc&region=in", "GET /json?address=x&key=REDACTED&region=in"},
		{"Authorization: Bearer sk-123", "Authorization: REDACTED"},
		{"authorization: Bearer sk-123", "authorization: REDACTED"},
		{"Host: maps.googleapis.com", "Host: maps.googleapis.com"},
		{"GET /json?monkey=1", "GET /json?monkey=1"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, redact(tt.input))
		})
	}
}

func TestAbbreviate(t *testing.T) {
	long := strings.Repeat("x", 600)

	got := abbreviate([]string{"GET / HTTP/1.1\r", long}, '>')
	require.Len(t, got, 2)
	assert.Equal(t, "> GET / HTTP/1.1", got[0])
	assert.Len(t, got[1], 512+len("…"))
	assert.True(t, strings.HasSuffix(got[1], "…"))

	many := make([]string, 2050)
	assert.Len(t, abbreviate(many, '<'), 2049)
}

func TestAppendRequestHeadersRoundTripper(t *testing.T) {
	rt := &recordingTransport{}
	atr := &AppendRequestHeadersRoundTripper{
		Transport: rt,
		Headers:   map[string]string{"Authorization": "Bearer sk-test"},
	}

	req, err := http.NewRequest(http.MethodPost, "https://api.openai.com/v1/chat/completions", nil)
	require.NoError(t, err)

	resp, err := atr.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.NotNil(t, rt.last)
	assert.Equal(t, "Bearer sk-test", rt.last.Header.Get("Authorization"))
	assert.Empty(t, req.Header.Get("Authorization"), "caller request is left untouched")
}

func TestNewClient(t *testing.T) {
	var userAgent string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	var trace bytes.Buffer

	client := NewClient(time.Second, &trace, map[string]string{"User-Agent": "addrlookup-test"})
	assert.Equal(t, time.Second, client.Timeout)

	resp, err := client.Get(srv.URL + "/ping")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "addrlookup-test", userAgent)
	assert.Contains(t, trace.String(), "> GET /ping")
}

func TestNewClientPlain(t *testing.T) {
	client := NewClient(5*time.Second, nil, nil)
	assert.Equal(t, http.DefaultTransport, client.Transport)
}
