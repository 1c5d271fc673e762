package keyspace_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/linkorb/etcdkv-go/pkg/keyspace"
)

// countingTransport records every call and replays a canned result.
type countingTransport struct {
	calls  int64
	last   keyspace.Request
	result keyspace.Result
	err    error
}

func (t *countingTransport) Call(_ context.Context, req keyspace.Request) (keyspace.Result, error) {
	atomic.AddInt64(&t.calls, 1)
	t.last = req
	return t.result, t.err
}

func TestKeyPathDeterministic(t *testing.T) {
	client := keyspace.NewWithTransport(&countingTransport{})

	first := client.KeyPath("key1")
	second := client.KeyPath("key1")
	if first != second {
		t.Fatalf("KeyPath not stable: %q != %q", first, second)
	}
	if first != "/v2/keys/key1" {
		t.Fatalf("unexpected path: %q", first)
	}
}

func TestKeyPathRootNormalization(t *testing.T) {
	client := keyspace.NewWithTransport(&countingTransport{})

	client.SetRoot("linkorb")
	withoutSlash := client.KeyPath("key1")
	if withoutSlash != "/v2/keys/linkorb/key1" {
		t.Fatalf("unexpected path: %q", withoutSlash)
	}

	client.SetRoot("/linkorb")
	if withSlash := client.KeyPath("key1"); withSlash != withoutSlash {
		t.Fatalf("root normalization mismatch: %q != %q", withSlash, withoutSlash)
	}

	client.SetRoot("/linkorb/")
	if trailing := client.KeyPath("key1"); trailing != withoutSlash {
		t.Fatalf("trailing slash not stripped: %q", trailing)
	}
}

func TestKeyPathLeadingSlashOnKey(t *testing.T) {
	client := keyspace.NewWithTransport(&countingTransport{})
	if got := client.KeyPath("/a/b"); got != "/v2/keys/a/b" {
		t.Fatalf("unexpected path: %q", got)
	}
	if got := client.KeyPath("a/b"); got != "/v2/keys/a/b" {
		t.Fatalf("leading slash not prepended: %q", got)
	}
}

func TestGetDecodesErrorBodyOnNotFoundStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/keys/missing-key" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errorCode":100,"message":"Key not found","cause":"/missing-key","index":7}`))
	}))
	defer srv.Close()

	client, err := keyspace.New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.Get(context.Background(), "missing-key")
	if !errors.Is(err, keyspace.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}

	var storeErr *keyspace.Error
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected *keyspace.Error in chain, got %v", err)
	}
	if storeErr.Code != 100 || storeErr.Message != "Key not found" || storeErr.Index != 7 {
		t.Fatalf("store payload not preserved: %#v", storeErr)
	}
}

func TestGetReturnsLeafValue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"action":"get","node":{"key":"/a","value":"1","modifiedIndex":3,"createdIndex":3}}`))
	}))
	defer srv.Close()

	client, err := keyspace.New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	value, err := client.Get(context.Background(), "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if value != "1" {
		t.Fatalf("unexpected value %q", value)
	}
}

func TestSetSendsConditionsAndTTL(t *testing.T) {
	var gotQuery, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("unexpected method %q", r.Method)
		}
		gotQuery = r.URL.RawQuery
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		gotBody = r.PostForm.Encode()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"action":"compareAndSwap","node":{"key":"/a","value":"2","modifiedIndex":4,"createdIndex":3}}`))
	}))
	defer srv.Close()

	client, err := keyspace.New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := client.Set(context.Background(), "a", "2", &keyspace.SetOptions{
		TTL:       30,
		Condition: keyspace.Condition{PrevValue: "1", PrevIndex: 3},
	})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if resp.Node == nil || resp.Node.Value != "2" {
		t.Fatalf("unexpected response: %#v", resp)
	}
	if gotQuery != "prevIndex=3&prevValue=1" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
	if gotBody != "ttl=30&value=2" {
		t.Fatalf("unexpected form body %q", gotBody)
	}
}

func TestSetSurfacesStoreErrorsWithoutClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPreconditionFailed)
		_, _ = w.Write([]byte(`{"errorCode":101,"message":"Compare failed","cause":"[1 != 2]"}`))
	}))
	defer srv.Close()

	client, err := keyspace.New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.Set(context.Background(), "a", "3", &keyspace.SetOptions{
		Condition: keyspace.Condition{PrevValue: "2"},
	})
	var storeErr *keyspace.Error
	if !errors.As(err, &storeErr) || storeErr.Code != 101 {
		t.Fatalf("expected generic store error 101, got %v", err)
	}
	if errors.Is(err, keyspace.ErrKeyExists) || errors.Is(err, keyspace.ErrKeyNotFound) {
		t.Fatalf("raw Set must not classify store errors: %v", err)
	}
}

func TestUpdateDirZeroTTLFailsLocally(t *testing.T) {
	transport := &countingTransport{}
	client := keyspace.NewWithTransport(transport)

	_, err := client.UpdateDir(context.Background(), "d", 0)
	if !errors.Is(err, keyspace.ErrTTLRequired) {
		t.Fatalf("expected ErrTTLRequired, got %v", err)
	}

	var storeErr *keyspace.Error
	if !errors.As(err, &storeErr) || storeErr.Code != 204 {
		t.Fatalf("expected local code 204, got %v", err)
	}
	if n := atomic.LoadInt64(&transport.calls); n != 0 {
		t.Fatalf("expected zero transport invocations, got %d", n)
	}
}

func TestNonJSONBodyIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>gateway error</html>"))
	}))
	defer srv.Close()

	client, err := keyspace.New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.Get(context.Background(), "a")
	if !errors.Is(err, keyspace.ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestDeleteDirSendsRecursiveFlag(t *testing.T) {
	transport := &countingTransport{result: keyspace.Result{
		StatusCode: http.StatusOK,
		Body:       []byte(`{"action":"delete","node":{"key":"/d","dir":true}}`),
	}}
	client := keyspace.NewWithTransport(transport)

	if _, err := client.DeleteDir(context.Background(), "d", true); err != nil {
		t.Fatalf("DeleteDir: %v", err)
	}
	if transport.last.Method != http.MethodDelete {
		t.Fatalf("unexpected method %q", transport.last.Method)
	}
	if transport.last.Query.Get("dir") != "true" || transport.last.Query.Get("recursive") != "true" {
		t.Fatalf("unexpected query %v", transport.last.Query)
	}
}

func TestVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/version" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"etcdserver":"2.3.8","etcdcluster":"2.3.0"}`))
	}))
	defer srv.Close()

	client, err := keyspace.New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	info, err := client.Version(context.Background())
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	parsed, err := info.ServerVersion()
	if err != nil {
		t.Fatalf("ServerVersion: %v", err)
	}
	if parsed.Major != 2 || parsed.Minor != 3 || parsed.Patch != 8 {
		t.Fatalf("unexpected version %v", parsed)
	}
}
