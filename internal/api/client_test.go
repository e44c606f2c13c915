package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/claimhub/claimctl/internal/credstore"
	"github.com/claimhub/claimctl/internal/model"
)

func testConfig(baseURL string) model.APIConfig {
	return model.APIConfig{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	}
}

func TestClient_NoCredentialNoHeader(t *testing.T) {
	var gotAuth string
	var hadAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, hadAuth = r.Header["Authorization"]
		_, _ = fmt.Fprint(w, `{"ok":true}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), credstore.NewMemStore())
	if _, err := client.Do(context.Background(), http.MethodGet, "/claims", nil); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if hadAuth {
		t.Errorf("Expected no Authorization header, got %q", gotAuth)
	}
}

func TestClient_CredentialAttachedFresh(t *testing.T) {
	var gotAuth atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		_, _ = fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	store := credstore.NewMemStore()
	client := NewClient(testConfig(server.URL), store)

	_ = store.Set("token-one")
	if _, err := client.Do(context.Background(), http.MethodGet, "/claims", nil); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got := gotAuth.Load(); got != "Bearer token-one" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer token-one")
	}

	// Token replaced between requests: the new value must be attached
	_ = store.Set("token-two")
	if _, err := client.Do(context.Background(), http.MethodGet, "/claims", nil); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got := gotAuth.Load(); got != "Bearer token-two" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer token-two")
	}

	// Cleared between requests: no header at all
	_ = store.Clear()
	if _, err := client.Do(context.Background(), http.MethodGet, "/claims", nil); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got := gotAuth.Load(); got != "" {
		t.Errorf("Authorization after Clear = %q, want empty", got)
	}
}

func TestClient_UnauthorizedTearsDownSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = fmt.Fprint(w, `{"message":"token expired"}`)
	}))
	defer server.Close()

	store := credstore.NewMemStore()
	_ = store.Set("stale-token")

	client := NewClient(testConfig(server.URL), store)
	var invalidated atomic.Bool
	client.OnSessionInvalidated(func() { invalidated.Store(true) })

	_, err := client.Do(context.Background(), http.MethodGet, "/claims", nil)
	if err == nil {
		t.Fatal("Expected error for 401 response")
	}

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Expected *AuthError, got %T: %v", err, err)
	}
	if !authErr.SessionExpired {
		t.Error("Expected SessionExpired for 401 with attached credential")
	}
	if authErr.Error() != "session expired, log in again" {
		t.Errorf("Unexpected message: %q", authErr.Error())
	}

	// Credential erased before the error propagated
	if _, ok := store.Get(); ok {
		t.Error("Expected credential erased after 401")
	}
	if !invalidated.Load() {
		t.Error("Expected invalidation hook to fire")
	}
}

func TestClient_UnauthorizedWithoutCredential(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = fmt.Fprint(w, `{"message":"invalid credentials"}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), credstore.NewMemStore())
	var invalidated atomic.Bool
	client.OnSessionInvalidated(func() { invalidated.Store(true) })

	_, err := client.Do(context.Background(), http.MethodPost, "/auth/login", nil)
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Expected *AuthError, got %T: %v", err, err)
	}
	if authErr.SessionExpired {
		t.Error("A 401 without an attached credential is not an expired session")
	}
	if authErr.Error() != "invalid credentials" {
		t.Errorf("Expected backend message, got %q", authErr.Error())
	}
	if invalidated.Load() {
		t.Error("Invalidation hook must not fire for unauthenticated requests")
	}
}

func TestClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = fmt.Fprint(w, `{"message":"extraction failed"}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), credstore.NewMemStore())
	_, err := client.Do(context.Background(), http.MethodGet, "/claims/42", nil)

	var srvErr *ServerError
	if !errors.As(err, &srvErr) {
		t.Fatalf("Expected *ServerError, got %T: %v", err, err)
	}
	if srvErr.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", srvErr.Status)
	}
	if srvErr.Message != "extraction failed" {
		t.Errorf("Message = %q, want %q", srvErr.Message, "extraction failed")
	}
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), credstore.NewMemStore())
	_, err := client.Do(context.Background(), http.MethodGet, "/claims", nil, WithTimeout(50*time.Millisecond))
	if err == nil {
		t.Fatal("Expected timeout error")
	}
	if !IsTimeout(err) {
		t.Errorf("Expected timeout classification, got %v", err)
	}
}

func TestClient_NetworkUnavailable(t *testing.T) {
	// Server closed before the request is made
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(testConfig(url), credstore.NewMemStore())
	_, err := client.Do(context.Background(), http.MethodGet, "/claims", nil)

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Expected *NetworkError, got %T: %v", err, err)
	}
	if netErr.Timeout {
		t.Error("Connection refused should not classify as timeout")
	}
}

func TestClient_PayloadPassthrough(t *testing.T) {
	raw := `[{"patient_name":"  Patient ID  John  ","totalAmount":"abc"}]`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, raw)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), credstore.NewMemStore())
	payload, err := client.Do(context.Background(), http.MethodGet, "/claims", nil)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	// The dispatcher does not shape domain data
	if string(payload) != raw {
		t.Errorf("Payload modified in transit: %s", payload)
	}
}

func TestClient_RequestIDHeader(t *testing.T) {
	ids := make(map[string]bool)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids[r.Header.Get("X-Request-ID")] = true
		_, _ = fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), credstore.NewMemStore())
	for i := 0; i < 3; i++ {
		if _, err := client.Do(context.Background(), http.MethodGet, "/claims", nil); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
	}
	if len(ids) != 3 || ids[""] {
		t.Errorf("Expected 3 distinct non-empty request IDs, got %v", ids)
	}
}

func TestUnwrapData(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"enveloped", `{"data":[{"id":1}]}`, `[{"id":1}]`},
		{"bare array", `[{"id":1}]`, `[{"id":1}]`},
		{"null data", `{"data":null}`, `{"data":null}`},
		{"bare object", `{"id":1}`, `{"id":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(UnwrapData([]byte(tt.payload))); got != tt.want {
				t.Errorf("UnwrapData(%s) = %s, want %s", tt.payload, got, tt.want)
			}
		})
	}
}
