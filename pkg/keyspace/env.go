package keyspace

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/linkorb/etcdkv-go/pkg/keyspace/mock"
)

const (
	envMode     = "ETCDKV_MODE"
	envEndpoint = "ETCDKV_ENDPOINT"
	envRoot     = "ETCDKV_ROOT"

	modeAuto = "auto"
	modeHTTP = "http"
	modeMock = "mock"
)

// NewFromEnv initialises a Client from ETCDKV_* environment variables and
// returns the resolved mode ("http" or "mock"). Mode "auto" (the default)
// selects HTTP when ETCDKV_ENDPOINT is set and an in-memory mock key space
// otherwise.
func NewFromEnv() (client *Client, mode string, err error) {
	mode = strings.ToLower(strings.TrimSpace(os.Getenv(envMode)))
	endpoint := strings.TrimSpace(os.Getenv(envEndpoint))
	root := strings.TrimSpace(os.Getenv(envRoot))

	switch mode {
	case "", modeAuto:
		if endpoint != "" {
			client, mode, err = newHTTPClient(endpoint)
		} else {
			client, mode, err = newMockClient()
		}
	case modeHTTP:
		if endpoint == "" {
			return nil, "", fmt.Errorf("keyspace: HTTP mode requires %s", envEndpoint)
		}
		client, mode, err = newHTTPClient(endpoint)
	case modeMock:
		client, mode, err = newMockClient()
	default:
		return nil, "", fmt.Errorf("keyspace: unsupported %s value %q", envMode, mode)
	}
	if err != nil {
		return nil, "", err
	}
	if root != "" {
		client.SetRoot(root)
	}
	return client, mode, nil
}

func newHTTPClient(endpoint string) (*Client, string, error) {
	client, err := New(endpoint)
	if err != nil {
		return nil, "", fmt.Errorf("keyspace: init HTTP client: %w", err)
	}
	return client, modeHTTP, nil
}

func newMockClient() (*Client, string, error) {
	ks := mock.New()
	client := NewWithTransport(TransportFunc(func(ctx context.Context, req Request) (Result, error) {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		status, body := ks.Handle(req.Method, req.Path, req.Query, req.Form)
		return Result{StatusCode: status, Body: body}, nil
	}))
	return client, modeMock, nil
}
