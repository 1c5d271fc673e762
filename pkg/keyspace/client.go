package keyspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/coreos/go-semver/semver"

	"github.com/linkorb/etcdkv-go/internal/httpx"
)

// DefaultEndpoint is the store's loopback address on its default port.
const DefaultEndpoint = "http://127.0.0.1:2379"

const (
	defaultAPIVersion = "v2"
	defaultRoot       = "/"
	keysPrefix        = "/keys"
)

// Request describes one wire exchange handed to the Transport.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Form   url.Values
}

// Result is the outcome of one wire exchange: the HTTP status and the raw
// body, regardless of status class.
type Result struct {
	StatusCode int
	Body       []byte
}

// Transport executes a single HTTP exchange against the store. Transports
// must return the body for non-2xx statuses too: the store delivers
// application error payloads on error statuses.
type Transport interface {
	Call(ctx context.Context, req Request) (Result, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req Request) (Result, error)

// Call implements Transport.
func (f TransportFunc) Call(ctx context.Context, req Request) (Result, error) {
	return f(ctx, req)
}

// Client is a key-space client for the store's v2 keys API. All keys are
// addressed under a namespace root, set at construction and replaceable via
// SetRoot. Each operation issues exactly one HTTP round trip and surfaces
// every failure synchronously; there are no retries.
type Client struct {
	transport Transport
	version   string
	root      string
}

// New constructs a Client for the given endpoint. An empty endpoint selects
// DefaultEndpoint. The namespace root starts at "/".
func New(endpoint string, opts ...httpx.Option) (*Client, error) {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultEndpoint
	}
	hc, err := httpx.NewClient(endpoint, opts...)
	if err != nil {
		return nil, err
	}
	return NewWithTransport(&httpTransport{client: hc}), nil
}

// NewWithTransport wraps a caller-supplied Transport (e.g. a mock).
func NewWithTransport(t Transport) *Client {
	return &Client{
		transport: t,
		version:   defaultAPIVersion,
		root:      defaultRoot,
	}
}

// SetRoot replaces the namespace root applied to all subsequent operations.
// The root is normalized to start with "/" and not end with "/". SetRoot is
// not safe for use concurrently with in-flight operations.
func (c *Client) SetRoot(root string) {
	c.root = normalizeRoot(root)
}

// Root returns the current namespace root.
func (c *Client) Root() string {
	return c.root
}

// SetAPIVersion replaces the API version segment (default "v2").
func (c *Client) SetAPIVersion(version string) {
	version = strings.Trim(strings.TrimSpace(version), "/")
	if version != "" {
		c.version = version
	}
}

// KeyPath returns the on-wire path for key under the current namespace
// root: /<version>/keys<root><key>. Pure and deterministic: the same key
// under the same root always yields an identical path.
func (c *Client) KeyPath(key string) string {
	if !strings.HasPrefix(key, "/") {
		key = "/" + key
	}
	root := c.root
	if root == defaultRoot {
		root = ""
	}
	return "/" + c.version + keysPrefix + root + key
}

func normalizeRoot(root string) string {
	root = strings.TrimSpace(root)
	if !strings.HasPrefix(root, "/") {
		root = "/" + root
	}
	for len(root) > 1 && strings.HasSuffix(root, "/") {
		root = root[:len(root)-1]
	}
	return root
}

// Get retrieves the leaf value stored at key. A store error of any code is
// reported as ErrKeyNotFound.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	node, err := c.GetNode(ctx, key, nil)
	if err != nil {
		return "", err
	}
	return node.Value, nil
}

// GetNode retrieves the node stored at key. Extra query flags (e.g.
// sorted=true) may be supplied via query.
func (c *Client) GetNode(ctx context.Context, key string, query url.Values) (*Node, error) {
	resp, err := c.call(ctx, http.MethodGet, c.KeyPath(key), query, nil)
	if err != nil {
		return nil, classify(err, ErrKeyNotFound)
	}
	if resp.Node == nil {
		return nil, fmt.Errorf("%w: response carries no node", ErrInvalidResponse)
	}
	return resp.Node, nil
}

// Exists reports whether key resolves to an existing node.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.GetNode(ctx, key, nil)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Set writes value at key unconditionally unless opts carries a Condition.
// Set is the permissive primitive: store errors are surfaced as generic
// *Error values without being mapped to ErrKeyExists or ErrKeyNotFound.
// Callers needing strict create/update semantics use Create and Update.
func (c *Client) Set(ctx context.Context, key, value string, opts *SetOptions) (*Response, error) {
	var ttl int64
	var cond Condition
	if opts != nil {
		ttl = opts.TTL
		cond = opts.Condition
	}
	form := url.Values{}
	form.Set("value", value)
	return c.put(ctx, http.MethodPut, key, form, ttl, cond, false)
}

// Create stores value at key, failing with ErrKeyExists when the key is
// already present.
func (c *Client) Create(ctx context.Context, key, value string, ttl int64) (*Response, error) {
	form := url.Values{}
	form.Set("value", value)
	resp, err := c.put(ctx, http.MethodPut, key, form, ttl, existence(false), false)
	if err != nil {
		return nil, classify(err, ErrKeyExists)
	}
	return resp, nil
}

// CreateInOrder appends value under dir with an auto-generated, ordered key
// suffix. Like Set, it does not classify store errors.
func (c *Client) CreateInOrder(ctx context.Context, dir, value string, ttl int64) (*Response, error) {
	form := url.Values{}
	form.Set("value", value)
	return c.put(ctx, http.MethodPost, dir, form, ttl, Condition{}, false)
}

// Mkdir creates a directory at key, failing with ErrKeyExists when a node
// is already present there.
func (c *Client) Mkdir(ctx context.Context, key string, ttl int64) (*Response, error) {
	resp, err := c.put(ctx, http.MethodPut, key, url.Values{}, ttl, existence(false), true)
	if err != nil {
		return nil, classify(err, ErrKeyExists)
	}
	return resp, nil
}

// MkdirInOrder creates a directory under dir with an auto-generated,
// ordered key suffix, failing with ErrKeyExists on a store error.
func (c *Client) MkdirInOrder(ctx context.Context, dir string, ttl int64) (*Response, error) {
	resp, err := c.put(ctx, http.MethodPost, dir, url.Values{}, ttl, Condition{}, true)
	if err != nil {
		return nil, classify(err, ErrKeyExists)
	}
	return resp, nil
}

// Update replaces the value at an existing key, failing with
// ErrKeyNotFound when the key is absent. Extra predicates from cond are
// sent alongside the implied prevExist=true.
func (c *Client) Update(ctx context.Context, key, value string, ttl int64, cond Condition) (*Response, error) {
	exist := true
	cond.PrevExist = &exist
	form := url.Values{}
	form.Set("value", value)
	resp, err := c.put(ctx, http.MethodPut, key, form, ttl, cond, false)
	if err != nil {
		return nil, classify(err, ErrKeyNotFound)
	}
	return resp, nil
}

// UpdateDir refreshes the TTL of an existing directory. The TTL is
// mandatory: a zero value is a programmer error reported locally, before
// any round trip.
func (c *Client) UpdateDir(ctx context.Context, key string, ttl int64) (*Response, error) {
	if ttl <= 0 {
		return nil, &Error{
			Code:    ErrorCodeTTLRequired,
			Message: "ttl is required for directory update",
			kind:    ErrTTLRequired,
		}
	}
	return c.put(ctx, http.MethodPut, key, url.Values{}, ttl, existence(true), true)
}

// Delete removes the leaf at key. Store errors stay generic.
func (c *Client) Delete(ctx context.Context, key string) (*Response, error) {
	return c.call(ctx, http.MethodDelete, c.KeyPath(key), nil, nil)
}

// DeleteDir removes the directory at key; recursive removes its contents
// as well. Store errors stay generic.
func (c *Client) DeleteDir(ctx context.Context, key string, recursive bool) (*Response, error) {
	q := url.Values{}
	q.Set("dir", "true")
	if recursive {
		q.Set("recursive", "true")
	}
	return c.call(ctx, http.MethodDelete, c.KeyPath(key), q, nil)
}

// ListDir retrieves the directory at key (default "/"), with its full
// subtree when recursive is set. A store error is reported as
// ErrKeyNotFound.
func (c *Client) ListDir(ctx context.Context, key string, recursive bool) (*Response, error) {
	if key == "" {
		key = "/"
	}
	var q url.Values
	if recursive {
		q = url.Values{}
		q.Set("recursive", "true")
	}
	resp, err := c.call(ctx, http.MethodGet, c.KeyPath(key), q, nil)
	if err != nil {
		return nil, classify(err, ErrKeyNotFound)
	}
	return resp, nil
}

// put is the conditional-write primitive every write operation layers over:
// one verb, one target key, the form fields, an optional TTL and the
// caller's precondition. Policy (which precondition, which error class)
// lives entirely in the wrappers.
func (c *Client) put(ctx context.Context, method, key string, form url.Values, ttl int64, cond Condition, dir bool) (*Response, error) {
	q := url.Values{}
	cond.apply(q)
	if dir {
		q.Set("dir", "true")
	}
	if ttl > 0 {
		form.Set("ttl", strconv.FormatInt(ttl, 10))
	}
	return c.call(ctx, method, c.KeyPath(key), q, form)
}

func (c *Client) call(ctx context.Context, method, path string, query, form url.Values) (*Response, error) {
	if c == nil || c.transport == nil {
		return nil, errors.New("keyspace: client is not configured")
	}
	res, err := c.transport.Call(ctx, Request{
		Method: method,
		Path:   path,
		Query:  query,
		Form:   form,
	})
	if err != nil {
		return nil, fmt.Errorf("keyspace: %s %s: %w", method, path, err)
	}
	return decodeResponse(res.Body)
}

func existence(exist bool) Condition {
	return Condition{PrevExist: &exist}
}

// VersionInfo describes the server and cluster versions reported by the
// store's /version endpoint.
type VersionInfo struct {
	Server  string `json:"etcdserver"`
	Cluster string `json:"etcdcluster"`
}

// ServerVersion parses the server version as semantic version.
func (v *VersionInfo) ServerVersion() (*semver.Version, error) {
	return semver.NewVersion(v.Server)
}

// Version queries the store's /version endpoint.
func (c *Client) Version(ctx context.Context) (*VersionInfo, error) {
	if c == nil || c.transport == nil {
		return nil, errors.New("keyspace: client is not configured")
	}
	res, err := c.transport.Call(ctx, Request{
		Method: http.MethodGet,
		Path:   "/version",
	})
	if err != nil {
		return nil, fmt.Errorf("keyspace: GET /version: %w", err)
	}
	info := &VersionInfo{}
	if err := json.Unmarshal(res.Body, info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return info, nil
}

type httpTransport struct {
	client *httpx.Client
}

func (t *httpTransport) Call(ctx context.Context, req Request) (Result, error) {
	resp, err := t.client.Do(ctx, &httpx.Request{
		Method: req.Method,
		Path:   req.Path,
		Query:  req.Query,
		Form:   req.Form,
	})
	if err != nil {
		return Result{}, err
	}
	body, err := httpx.ReadAllAndClose(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read response body: %w", err)
	}
	return Result{StatusCode: resp.StatusCode, Body: body}, nil
}
