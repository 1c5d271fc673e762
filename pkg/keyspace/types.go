package keyspace

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Node is the store's representation of one key-space entry: either a leaf
// carrying a value or a directory carrying child nodes.
type Node struct {
	Key           string     `json:"key"`
	Value         string     `json:"value,omitempty"`
	Dir           bool       `json:"dir,omitempty"`
	Expiration    *time.Time `json:"expiration,omitempty"`
	TTL           int64      `json:"ttl,omitempty"`
	Nodes         Nodes      `json:"nodes,omitempty"`
	ModifiedIndex uint64     `json:"modifiedIndex,omitempty"`
	CreatedIndex  uint64     `json:"createdIndex,omitempty"`
}

// Nodes is an ordered sequence of child nodes, in document order.
type Nodes []*Node

// Response is the store's reply to a successful key-space operation.
type Response struct {
	Action   string `json:"action"`
	Node     *Node  `json:"node"`
	PrevNode *Node  `json:"prevNode,omitempty"`
}

// Condition carries the optimistic-concurrency predicates attached to a
// conditional write. The zero value sends no predicates.
type Condition struct {
	PrevExist *bool
	PrevValue string
	PrevIndex uint64
}

func (cond Condition) apply(q url.Values) {
	if cond.PrevExist != nil {
		q.Set("prevExist", strconv.FormatBool(*cond.PrevExist))
	}
	if cond.PrevValue != "" {
		q.Set("prevValue", cond.PrevValue)
	}
	if cond.PrevIndex != 0 {
		q.Set("prevIndex", strconv.FormatUint(cond.PrevIndex, 10))
	}
}

// SetOptions controls the raw Set operation. A zero TTL sends no ttl field.
type SetOptions struct {
	TTL       int64
	Condition Condition
}

var (
	// ErrKeyNotFound is reported when the addressed key or directory does
	// not exist, by read and update-style operations.
	ErrKeyNotFound = errors.New("keyspace: key not found")
	// ErrKeyExists is reported by create-style operations when the
	// addressed key or directory is already present.
	ErrKeyExists = errors.New("keyspace: key already exists")
	// ErrTTLRequired is reported locally, before any round trip, when a
	// mandatory TTL parameter is absent.
	ErrTTLRequired = errors.New("keyspace: ttl is required")
	// ErrInvalidResponse indicates the body was not valid JSON, meaning the
	// transport or server misbehaved. Always fatal, never swallowed.
	ErrInvalidResponse = errors.New("keyspace: invalid response body")
)

// Store error codes used by the v2 keys API, exposed so callers can branch
// on Error.Code without magic numbers.
const (
	ErrorCodeKeyNotFound = 100
	ErrorCodeTestFailed  = 101
	ErrorCodeNotFile     = 102
	ErrorCodeNotDir      = 104
	ErrorCodeNodeExist   = 105
	ErrorCodeDirNotEmpty = 108
	ErrorCodeTTLRequired = 204
)

// Error is an application-level failure reported by the store. Code and
// Message carry the store's original numeric code and text. Unwrap yields
// the sentinel the failing operation classified the error as, so callers
// branch with errors.Is on operation intent and recover the payload with
// errors.As.
type Error struct {
	Code    int    `json:"errorCode"`
	Message string `json:"message"`
	Cause   string `json:"cause,omitempty"`
	Index   uint64 `json:"index,omitempty"`

	kind error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != "" {
		return fmt.Sprintf("keyspace: %s (code %d, cause %q)", e.Message, e.Code, e.Cause)
	}
	return fmt.Sprintf("keyspace: %s (code %d)", e.Message, e.Code)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.kind
}

// classify stamps store errors found in err's chain with the sentinel the
// calling operation expects, leaving transport faults untouched.
func classify(err error, kind error) error {
	var se *Error
	if errors.As(err, &se) {
		se.kind = kind
	}
	return err
}
