package idp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"authgate/internal/observability/logging"
)

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	logger, err := logging.NewLogger("error")
	if err != nil {
		t.Fatalf("create logger: %v", err)
	}
	return logger
}

func newTestClient(t *testing.T, endpoint string) *Client {
	t.Helper()
	return NewClient(Config{
		Endpoint:     endpoint,
		ClientID:     "gateway-id",
		ClientSecret: "gateway-secret",
		Timeout:      2 * time.Second,
	}, testLogger(t))
}

func TestIntrospectActive(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/login/oauth/introspect" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		gotQuery = map[string]string{
			"token":           q.Get("token"),
			"token_type_hint": q.Get("token_type_hint"),
			"client_id":       q.Get("client_id"),
			"client_secret":   q.Get("client_secret"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"active": true, "sub": "alice", "exp": 1999999999}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	result, err := client.Introspect(context.Background(), "tok-123")
	if err != nil {
		t.Fatalf("Introspect: %v", err)
	}
	if !result.Active {
		t.Error("expected active token")
	}
	if result.Subject != "alice" {
		t.Errorf("subject = %q, want alice", result.Subject)
	}

	want := map[string]string{
		"token":           "tok-123",
		"token_type_hint": "access_token",
		"client_id":       "gateway-id",
		"client_secret":   "gateway-secret",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], v)
		}
	}
}

func TestIntrospectInactive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"active": false}`))
	}))
	defer srv.Close()

	result, err := newTestClient(t, srv.URL).Introspect(context.Background(), "tok")
	if err != nil {
		t.Fatalf("Introspect: %v", err)
	}
	if result.Active {
		t.Error("expected inactive token")
	}
}

func TestIntrospectUpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>not json</html>"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := newTestClient(t, srv.URL).Introspect(context.Background(), "tok")
			if !errors.Is(err, ErrUpstream) {
				t.Errorf("got %v, want ErrUpstream", err)
			}
		})
	}
}

func TestIntrospectTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"active": true}`))
	}))
	defer srv.Close()

	client := NewClient(Config{
		Endpoint:     srv.URL,
		ClientID:     "gateway-id",
		ClientSecret: "gateway-secret",
		Timeout:      20 * time.Millisecond,
	}, testLogger(t))

	_, err := client.Introspect(context.Background(), "tok")
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("got %v, want ErrUpstream", err)
	}
}

func TestIntrospectUnreachable(t *testing.T) {
	// Closed server: the address refuses connections.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newTestClient(t, srv.URL).Introspect(context.Background(), "tok")
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("got %v, want ErrUpstream", err)
	}
}

func TestExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/login/oauth/access_token" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("grant_type") != "authorization_code" {
			t.Errorf("grant_type = %q", q.Get("grant_type"))
		}
		if q.Get("code") != "the-code" {
			t.Errorf("code = %q", q.Get("code"))
		}
		w.Write([]byte(`{"access_token": "at-1", "expires_in": 3600, "token_type": "Bearer"}`))
	}))
	defer srv.Close()

	bundle, err := newTestClient(t, srv.URL).ExchangeCode(context.Background(), "the-code")
	if err != nil {
		t.Fatalf("ExchangeCode: %v", err)
	}
	if bundle.AccessToken != "at-1" {
		t.Errorf("access token = %q, want at-1", bundle.AccessToken)
	}
	if bundle.ExpiresIn != 3600 {
		t.Errorf("expires_in = %d, want 3600", bundle.ExpiresIn)
	}
}

func TestExchangeCodeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).ExchangeCode(context.Background(), "bad-code")
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("got %v, want ErrUpstream", err)
	}
}
