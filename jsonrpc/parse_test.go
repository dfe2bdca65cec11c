package jsonrpc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValidRequests(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantMethod string
		wantID     string // raw JSON, empty means notification
		wantParams string // raw JSON, empty means absent
	}{
		{
			name:       "full request with numeric id",
			payload:    `{"jsonrpc":"2.0","id":1,"method":"ping","params":[]}`,
			wantMethod: "ping",
			wantID:     "1",
			wantParams: "[]",
		},
		{
			name:       "string id survives byte-exactly",
			payload:    `{"jsonrpc":"2.0","id":"req-007","method":"echo","params":{"a":1}}`,
			wantMethod: "echo",
			wantID:     `"req-007"`,
			wantParams: `{"a":1}`,
		},
		{
			name:       "notification without id",
			payload:    `{"jsonrpc":"2.0","method":"notify"}`,
			wantMethod: "notify",
		},
		{
			name:       "null id counts as notification",
			payload:    `{"jsonrpc":"2.0","id":null,"method":"notify"}`,
			wantMethod: "notify",
		},
		{
			name:       "version tag may be absent",
			payload:    `{"id":3,"method":"legacy"}`,
			wantMethod: "legacy",
			wantID:     "3",
		},
		{
			name:       "null params accepted",
			payload:    `{"id":4,"method":"m","params":null}`,
			wantMethod: "m",
			wantID:     "4",
			wantParams: "null",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, err := Parse([]byte(tc.payload))
			require.NoError(t, err)
			assert.Equal(t, tc.wantMethod, req.Method)
			assert.Equal(t, tc.wantID, string(req.ID))
			assert.Equal(t, tc.wantParams, string(req.Params))
			assert.Equal(t, tc.wantID == "", req.Notification())
		})
	}
}

func TestParseRejectsNonObjects(t *testing.T) {
	payloads := []string{
		`[1,2,3]`,
		`42`,
		`"hello"`,
		`null`,
		``,
		`{"id":1,"method":`,
	}
	for _, payload := range payloads {
		_, err := Parse([]byte(payload))
		var pe *ParseError
		require.ErrorAs(t, err, &pe, "payload %q", payload)
	}
}

func TestParseInvalidRequests(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantID  string // recoverable id, empty if none
	}{
		{name: "method missing", payload: `{"id":7}`, wantID: "7"},
		{name: "method not a string", payload: `{"id":8,"method":42}`, wantID: "8"},
		{name: "method empty", payload: `{"id":9,"method":""}`, wantID: "9"},
		{name: "wrong version tag", payload: `{"jsonrpc":"1.0","id":10,"method":"m"}`, wantID: "10"},
		{name: "params not structured", payload: `{"id":11,"method":"m","params":5}`, wantID: "11"},
		{name: "method missing and no id", payload: `{"params":[]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.payload))
			var ire *InvalidRequestError
			require.ErrorAs(t, err, &ire)
			assert.Equal(t, tc.wantID, string(ire.ID))
		})
	}
}

func TestParsePreservesIDType(t *testing.T) {
	for _, id := range []string{`1`, `"1"`, `1.5`, `"abc"`} {
		req, err := Parse([]byte(`{"id":` + id + `,"method":"m"}`))
		require.NoError(t, err)
		assert.Equal(t, id, string(req.ID))
		assert.Equal(t, json.RawMessage(id), req.ID)
	}
}
