package keyspace

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// decodeResponse parses an API body into a Response, or returns the
// application *Error the body describes. The decoder never classifies: the
// same error code is a legitimate outcome for one operation and a failure
// for another, so interpretation stays with the operation.
//
// A body that is not valid JSON is a transport fault, reported as
// ErrInvalidResponse rather than an application error.
func decodeResponse(body []byte) (*Response, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidResponse)
	}

	var probe struct {
		ErrorCode *int `json:"errorCode"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if probe.ErrorCode != nil {
		storeErr := &Error{}
		if err := json.Unmarshal(trimmed, storeErr); err != nil {
			return nil, fmt.Errorf("%w: malformed error payload: %v", ErrInvalidResponse, err)
		}
		return nil, storeErr
	}

	resp := &Response{}
	if err := json.Unmarshal(trimmed, resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return resp, nil
}
