// Package mock implements an in-memory key space speaking the etcd v2 keys
// API at the wire level: the same JSON bodies, error codes and HTTP
// statuses a real server produces. It backs the client's mock runtime mode
// and the sandbox server, and lets tests exercise the full decode and
// error-classification path without a store.
package mock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Store error codes from the v2 protocol.
const (
	codeKeyNotFound = 100
	codeTestFailed  = 101
	codeNotFile     = 102
	codeNotDir      = 104
	codeNodeExist   = 105
	codeDirNotEmpty = 108
)

// KeySpace is an in-memory tree of keys and directories with TTL
// bookkeeping and compare-and-swap semantics.
type KeySpace struct {
	mu    sync.Mutex
	root  *node
	index uint64
	now   func() time.Time
}

// Option configures a KeySpace.
type Option func(*KeySpace)

// WithClock overrides the clock used for TTL bookkeeping (useful in tests).
func WithClock(fn func() time.Time) Option {
	return func(ks *KeySpace) {
		if fn != nil {
			ks.now = fn
		}
	}
}

// New creates an empty key space.
func New(opts ...Option) *KeySpace {
	ks := &KeySpace{
		root: &node{dir: true, children: map[string]*node{}},
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(ks)
	}
	return ks
}

// Seed preloads leaf values, creating intermediate directories as needed.
func (ks *KeySpace) Seed(values map[string]string) error {
	for key, value := range values {
		form := url.Values{}
		form.Set("value", value)
		status, body := ks.Handle(http.MethodPut, "/v2/keys"+withSlash(key), nil, form)
		if status >= 400 {
			return fmt.Errorf("mock keyspace: seed %q: %s", key, body)
		}
	}
	return nil
}

type node struct {
	key      string
	value    string
	dir      bool
	children map[string]*node
	order    []string
	created  uint64
	modified uint64
	ttl      int64
	expires  time.Time
}

func (n *node) expired(now time.Time) bool {
	return !n.expires.IsZero() && now.After(n.expires)
}

func (n *node) child(name string) *node {
	if n.children == nil {
		return nil
	}
	return n.children[name]
}

func (n *node) attach(name string, child *node) {
	if n.children == nil {
		n.children = map[string]*node{}
	}
	if _, ok := n.children[name]; !ok {
		n.order = append(n.order, name)
	}
	n.children[name] = child
}

func (n *node) detach(name string) {
	delete(n.children, name)
	for i, existing := range n.order {
		if existing == name {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
}

// Handle serves one v2 keys API exchange and returns the HTTP status plus
// the JSON body, mirroring what a real server would send on the wire.
func (ks *KeySpace) Handle(method, path string, query, form url.Values) (int, []byte) {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	if strings.Trim(path, "/") == "version" {
		return http.StatusOK, []byte(`{"etcdserver":"2.3.8","etcdcluster":"2.3.0"}`)
	}

	parts, ok := splitKeyPath(path)
	if !ok {
		return errorBody(codeKeyNotFound, path)
	}

	now := ks.now()
	ks.prune(ks.root, now)

	switch method {
	case http.MethodGet:
		return ks.get(parts, query)
	case http.MethodPut:
		return ks.put(parts, query, form, now)
	case http.MethodPost:
		return ks.post(parts, query, form, now)
	case http.MethodDelete:
		return ks.delete(parts, query)
	default:
		return errorBody(codeKeyNotFound, strings.Join(parts, "/"))
	}
}

// ServeHTTP exposes the key space as an HTTP server, for sandbox use.
func (ks *KeySpace) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	status, body := ks.Handle(r.Method, r.URL.Path, r.URL.Query(), r.PostForm)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (ks *KeySpace) get(parts []string, query url.Values) (int, []byte) {
	n := ks.resolve(parts)
	if n == nil {
		return errorBody(codeKeyNotFound, keyOf(parts))
	}
	recursive := query.Get("recursive") == "true"
	return http.StatusOK, marshal(response{
		Action: "get",
		Node:   ks.render(n, recursive),
	})
}

func (ks *KeySpace) put(parts []string, query, form url.Values, now time.Time) (int, []byte) {
	if len(parts) == 0 {
		return errorBody(codeNotFile, "/")
	}

	parent, code := ks.walkDirs(parts[:len(parts)-1], true)
	if code != 0 {
		return errorBody(code, keyOf(parts))
	}

	name := parts[len(parts)-1]
	key := keyOf(parts)
	existing := parent.child(name)
	dir := query.Get("dir") == "true"

	if code := checkConditions(existing, query); code != 0 {
		return errorBody(code, key)
	}
	if existing != nil && existing.dir && !dir {
		return errorBody(codeNotFile, key)
	}

	action := "set"
	switch {
	case query.Get("prevValue") != "" || query.Get("prevIndex") != "":
		action = "compareAndSwap"
	case query.Get("prevExist") == "false":
		action = "create"
	case query.Get("prevExist") == "true":
		action = "update"
	}

	var prev *wireNode
	if existing != nil {
		prev = ks.render(existing, false)
	}

	ks.index++
	n := &node{
		key:      key,
		dir:      dir,
		created:  ks.index,
		modified: ks.index,
	}
	if existing != nil {
		n.created = existing.created
		if dir {
			// TTL refresh keeps directory contents.
			n.children = existing.children
			n.order = existing.order
		}
	}
	if !dir {
		n.value = form.Get("value")
	}
	applyTTL(n, form.Get("ttl"), now)
	parent.attach(name, n)

	status := http.StatusOK
	if existing == nil {
		status = http.StatusCreated
	}
	return status, marshal(response{
		Action:   action,
		Node:     ks.render(n, false),
		PrevNode: prev,
	})
}

func (ks *KeySpace) post(parts []string, query, form url.Values, now time.Time) (int, []byte) {
	parent, code := ks.walkDirs(parts, true)
	if code != 0 {
		return errorBody(code, keyOf(parts))
	}

	ks.index++
	name := fmt.Sprintf("%020d", ks.index)
	n := &node{
		key:      keyOf(append(append([]string{}, parts...), name)),
		dir:      query.Get("dir") == "true",
		created:  ks.index,
		modified: ks.index,
	}
	if !n.dir {
		n.value = form.Get("value")
	}
	applyTTL(n, form.Get("ttl"), now)
	parent.attach(name, n)

	return http.StatusCreated, marshal(response{
		Action: "create",
		Node:   ks.render(n, false),
	})
}

func (ks *KeySpace) delete(parts []string, query url.Values) (int, []byte) {
	if len(parts) == 0 {
		return errorBody(codeNotFile, "/")
	}
	parent, code := ks.walkDirs(parts[:len(parts)-1], false)
	if code != 0 {
		return errorBody(code, keyOf(parts))
	}

	name := parts[len(parts)-1]
	key := keyOf(parts)
	existing := parent.child(name)
	if existing == nil {
		return errorBody(codeKeyNotFound, key)
	}

	dir := query.Get("dir") == "true"
	recursive := query.Get("recursive") == "true"
	if existing.dir {
		if !dir && !recursive {
			return errorBody(codeNotFile, key)
		}
		if len(existing.children) > 0 && !recursive {
			return errorBody(codeDirNotEmpty, key)
		}
	}
	if code := checkConditions(existing, query); code != 0 {
		return errorBody(code, key)
	}

	prev := ks.render(existing, false)
	parent.detach(name)
	ks.index++

	return http.StatusOK, marshal(response{
		Action:   "delete",
		Node:     &wireNode{Key: key, Dir: existing.dir, CreatedIndex: existing.created, ModifiedIndex: ks.index},
		PrevNode: prev,
	})
}

// walkDirs resolves the directory at parts, creating missing intermediate
// directories when create is set. A leaf on the path yields codeNotDir.
func (ks *KeySpace) walkDirs(parts []string, create bool) (*node, int) {
	current := ks.root
	for i, name := range parts {
		next := current.child(name)
		if next == nil {
			if !create {
				return nil, codeKeyNotFound
			}
			ks.index++
			next = &node{
				key:      keyOf(parts[:i+1]),
				dir:      true,
				created:  ks.index,
				modified: ks.index,
			}
			current.attach(name, next)
		}
		if !next.dir {
			return nil, codeNotDir
		}
		current = next
	}
	return current, 0
}

func (ks *KeySpace) resolve(parts []string) *node {
	current := ks.root
	for _, name := range parts {
		current = current.child(name)
		if current == nil {
			return nil
		}
	}
	return current
}

func (ks *KeySpace) prune(n *node, now time.Time) {
	for _, name := range append([]string{}, n.order...) {
		child := n.child(name)
		if child == nil {
			continue
		}
		if child.expired(now) {
			n.detach(name)
			continue
		}
		if child.dir {
			ks.prune(child, now)
		}
	}
}

func checkConditions(existing *node, query url.Values) int {
	switch query.Get("prevExist") {
	case "false":
		if existing != nil {
			return codeNodeExist
		}
	case "true":
		if existing == nil {
			return codeKeyNotFound
		}
	}
	if prevValue := query.Get("prevValue"); prevValue != "" {
		if existing == nil {
			return codeKeyNotFound
		}
		if existing.value != prevValue {
			return codeTestFailed
		}
	}
	if prevIndex := query.Get("prevIndex"); prevIndex != "" {
		if existing == nil {
			return codeKeyNotFound
		}
		idx, err := strconv.ParseUint(prevIndex, 10, 64)
		if err != nil || existing.modified != idx {
			return codeTestFailed
		}
	}
	return 0
}

func applyTTL(n *node, raw string, now time.Time) {
	if raw == "" {
		return
	}
	ttl, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ttl <= 0 {
		return
	}
	n.ttl = ttl
	n.expires = now.Add(time.Duration(ttl) * time.Second)
}

type response struct {
	Action   string    `json:"action"`
	Node     *wireNode `json:"node"`
	PrevNode *wireNode `json:"prevNode,omitempty"`
}

type wireNode struct {
	Key           string      `json:"key,omitempty"`
	Value         string      `json:"value,omitempty"`
	Dir           bool        `json:"dir,omitempty"`
	TTL           int64       `json:"ttl,omitempty"`
	Expiration    *time.Time  `json:"expiration,omitempty"`
	Nodes         []*wireNode `json:"nodes,omitempty"`
	ModifiedIndex uint64      `json:"modifiedIndex"`
	CreatedIndex  uint64      `json:"createdIndex"`
}

func (ks *KeySpace) render(n *node, recursive bool) *wireNode {
	w := &wireNode{
		Key:           n.key,
		Dir:           n.dir,
		TTL:           n.ttl,
		CreatedIndex:  n.created,
		ModifiedIndex: n.modified,
	}
	if !n.expires.IsZero() {
		expiration := n.expires
		w.Expiration = &expiration
	}
	if !n.dir {
		w.Value = n.value
		return w
	}
	for _, name := range n.order {
		child := n.child(name)
		if child == nil {
			continue
		}
		rendered := ks.render(child, recursive)
		if child.dir && !recursive {
			rendered.Nodes = nil
		}
		w.Nodes = append(w.Nodes, rendered)
	}
	return w
}

var errorMessages = map[int]string{
	codeKeyNotFound: "Key not found",
	codeTestFailed:  "Compare failed",
	codeNotFile:     "Not a file",
	codeNotDir:      "Not a directory",
	codeNodeExist:   "Key already exists",
	codeDirNotEmpty: "Directory not empty",
}

var errorStatuses = map[int]int{
	codeKeyNotFound: http.StatusNotFound,
	codeTestFailed:  http.StatusPreconditionFailed,
	codeNotFile:     http.StatusForbidden,
	codeNotDir:      http.StatusForbidden,
	codeNodeExist:   http.StatusPreconditionFailed,
	codeDirNotEmpty: http.StatusForbidden,
}

func errorBody(code int, cause string) (int, []byte) {
	status, ok := errorStatuses[code]
	if !ok {
		status = http.StatusBadRequest
	}
	payload := struct {
		ErrorCode int    `json:"errorCode"`
		Message   string `json:"message"`
		Cause     string `json:"cause"`
	}{
		ErrorCode: code,
		Message:   errorMessages[code],
		Cause:     cause,
	}
	return status, marshal(payload)
}

func marshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		// Wire structs are always marshalable.
		panic(fmt.Sprintf("mock keyspace: marshal: %v", err))
	}
	return data
}

func splitKeyPath(path string) ([]string, bool) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil, false
	}
	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 || parts[1] != "keys" {
		return nil, false
	}
	key := parts[2:]
	for _, seg := range key {
		if seg == "" {
			return nil, false
		}
	}
	return key, true
}

func keyOf(parts []string) string {
	return "/" + strings.Join(parts, "/")
}

func withSlash(key string) string {
	if strings.HasPrefix(key, "/") {
		return key
	}
	return "/" + key
}
