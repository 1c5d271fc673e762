package keyspace

import (
	"errors"
	"testing"
)

func TestDecodeResponse(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantErr   error
		wantCode  int
		wantValue string
	}{
		{
			name:      "leaf node",
			body:      `{"action":"get","node":{"key":"/a","value":"1"}}`,
			wantValue: "1",
		},
		{
			name: "directory node",
			body: `{"action":"get","node":{"key":"/d","dir":true,"nodes":[{"key":"/d/a","value":"x"}]}}`,
		},
		{
			name:     "error payload",
			body:     `{"errorCode":105,"message":"Key already exists","cause":"/a"}`,
			wantCode: 105,
		},
		{
			name:    "invalid json",
			body:    `<html>bad gateway</html>`,
			wantErr: ErrInvalidResponse,
		},
		{
			name:    "empty body",
			body:    ``,
			wantErr: ErrInvalidResponse,
		},
		{
			name:    "whitespace body",
			body:    "  \n ",
			wantErr: ErrInvalidResponse,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			resp, err := decodeResponse([]byte(tc.body))

			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if tc.wantCode != 0 {
				var storeErr *Error
				if !errors.As(err, &storeErr) {
					t.Fatalf("expected store error, got resp=%#v err=%v", resp, err)
				}
				if storeErr.Code != tc.wantCode {
					t.Fatalf("expected code %d, got %d", tc.wantCode, storeErr.Code)
				}
				if storeErr.Unwrap() != nil {
					t.Fatalf("decoder must not classify errors, got kind %v", storeErr.Unwrap())
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeResponse: %v", err)
			}
			if tc.wantValue != "" && (resp.Node == nil || resp.Node.Value != tc.wantValue) {
				t.Fatalf("unexpected node: %#v", resp.Node)
			}
		})
	}
}

func TestDecodeResponseMalformedNodeDoesNotCrash(t *testing.T) {
	// dir=true alongside a value is invalid server output; the client must
	// decode it without failing and let the materializer treat it as a dir.
	resp, err := decodeResponse([]byte(`{"action":"get","node":{"key":"/d","dir":true,"value":"stray"}}`))
	if err != nil {
		t.Fatalf("decodeResponse: %v", err)
	}
	if resp.Node == nil || !resp.Node.Dir {
		t.Fatalf("unexpected node: %#v", resp.Node)
	}
}
