package revalidate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"expoadmin/config"
	"expoadmin/domain/shared"
)

func TestHTTPNotifier(t *testing.T) {
	var got request
	var secret string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret = r.Header.Get(SecretHeader)
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewHTTPNotifier(srv.URL, "s3cret", time.Second)
	if err := n.Notify(context.Background(), []string{"/main-countries"}); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if secret != "s3cret" || len(got.Paths) != 1 || got.Paths[0] != "/main-countries" {
		t.Errorf("secret=%q paths=%v", secret, got.Paths)
	}
}

func TestHTTPNotifierFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewHTTPNotifier(srv.URL, "", time.Second).Notify(context.Background(), []string{"/"})
	if !errors.Is(err, shared.ErrTransport) {
		t.Errorf("non-2xx: err = %v", err)
	}

	srv.Close()
	err = NewHTTPNotifier(srv.URL, "", time.Second).Notify(context.Background(), []string{"/"})
	if !errors.Is(err, shared.ErrTransport) {
		t.Errorf("unreachable: err = %v", err)
	}
}

func TestNewDisabled(t *testing.T) {
	if _, ok := New(config.RevalidationConfig{Enabled: false, URL: "http://x"}).(Noop); !ok {
		t.Error("disabled config should produce Noop")
	}
	if _, ok := New(config.RevalidationConfig{Enabled: true, URL: "http://x"}).(*HTTPNotifier); !ok {
		t.Error("enabled config should produce HTTPNotifier")
	}
}
