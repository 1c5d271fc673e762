package keyspace_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/linkorb/etcdkv-go/pkg/keyspace"
)

func TestNewFromEnvHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"action":"get","node":{"key":"/probe","value":"ok"}}`))
	}))
	defer srv.Close()

	t.Setenv("ETCDKV_MODE", "http")
	t.Setenv("ETCDKV_ENDPOINT", srv.URL)
	t.Setenv("ETCDKV_ROOT", "")

	client, mode, err := keyspace.NewFromEnv()
	if err != nil {
		t.Fatalf("NewFromEnv: %v", err)
	}
	if mode != "http" {
		t.Fatalf("expected http mode, got %q", mode)
	}

	value, err := client.Get(context.Background(), "probe")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if value != "ok" {
		t.Fatalf("unexpected value %q", value)
	}
}

func TestNewFromEnvHTTPRequiresEndpoint(t *testing.T) {
	t.Setenv("ETCDKV_MODE", "http")
	t.Setenv("ETCDKV_ENDPOINT", "")

	if _, _, err := keyspace.NewFromEnv(); err == nil {
		t.Fatal("expected error for unset endpoint")
	}
}

func TestNewFromEnvMockRoundTrip(t *testing.T) {
	t.Setenv("ETCDKV_MODE", "mock")
	t.Setenv("ETCDKV_ENDPOINT", "")
	t.Setenv("ETCDKV_ROOT", "/linkorb")

	client, mode, err := keyspace.NewFromEnv()
	if err != nil {
		t.Fatalf("NewFromEnv: %v", err)
	}
	if mode != "mock" {
		t.Fatalf("expected mock mode, got %q", mode)
	}
	if client.Root() != "/linkorb" {
		t.Fatalf("root not applied: %q", client.Root())
	}

	ctx := context.Background()
	if _, err := client.Create(ctx, "key1", "value1", 0); err != nil {
		t.Fatalf("Create: %v", err)
	}
	value, err := client.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if value != "value1" {
		t.Fatalf("unexpected value %q", value)
	}
}

func TestNewFromEnvAutoFallsBackToMock(t *testing.T) {
	t.Setenv("ETCDKV_MODE", "")
	t.Setenv("ETCDKV_ENDPOINT", "")
	t.Setenv("ETCDKV_ROOT", "")

	_, mode, err := keyspace.NewFromEnv()
	if err != nil {
		t.Fatalf("NewFromEnv: %v", err)
	}
	if mode != "mock" {
		t.Fatalf("expected mock fallback, got %q", mode)
	}
}

func TestNewFromEnvUnsupportedMode(t *testing.T) {
	t.Setenv("ETCDKV_MODE", "carrier-pigeon")

	if _, _, err := keyspace.NewFromEnv(); err == nil {
		t.Fatal("expected error for unsupported mode")
	}
}
