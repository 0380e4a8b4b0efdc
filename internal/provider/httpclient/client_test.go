package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func TestPostJSON(t *testing.T) {
	hc := &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.String() != "http://upstream/v1/thing" {
			t.Fatalf("url=%s", req.URL)
		}
		if req.Header.Get("X-Api-Key") != "k" || req.Header.Get("Content-Type") != "application/json" {
			t.Fatalf("headers=%v", req.Header)
		}
		if _, ok := req.Context().Deadline(); !ok {
			t.Fatalf("expected deadline from timeout")
		}
		var in map[string]string
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			t.Fatalf("decode: %v", err)
		}
		b, _ := json.Marshal(map[string]string{"echo": in["msg"]})
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(b))}, nil
	})}

	c, err := New("http://upstream/", http.Header{"X-Api-Key": []string{"k"}}, hc)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var out map[string]string
	if err := c.PostJSON(context.Background(), time.Second, "/v1/thing", map[string]string{"msg": "hi"}, &out); err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
	if out["echo"] != "hi" {
		t.Fatalf("out=%v", out)
	}
}

func TestPostJSONNon2xx(t *testing.T) {
	hc := &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusTooManyRequests, Body: io.NopCloser(bytes.NewBufferString("slow down"))}, nil
	})}
	c, _ := New("http://upstream", nil, hc)
	err := c.PostJSON(context.Background(), 0, "/x", nil, nil)
	var he *HTTPError
	if !errors.As(err, &he) || he.StatusCode != 429 || he.Body != "slow down" {
		t.Fatalf("err=%v", err)
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New("  ", nil, nil); err == nil {
		t.Fatalf("expected error")
	}
}
