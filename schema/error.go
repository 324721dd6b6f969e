package schema

import (
	"encoding/json"

	"github.com/viant/jsonrpc"
)

const (
	// ServerError is the reserved JSON-RPC code surfaced when a backend
	// call could not produce a usable reply.
	ServerError = -32000
)

// nullId substitutes for an identifier that is absent or unusable.
var nullId = json.RawMessage("null")

// NewServerError creates a transport level failure error.
func NewServerError(message string) *jsonrpc.Error {
	return jsonrpc.NewError(ServerError, message, nil)
}

// NewErrorResponse builds the envelope emitted in place of a backend
// reply. Id carries the original identifier bytes, or null when the
// message had none.
func NewErrorResponse(id *json.RawMessage, rpcError *jsonrpc.Error) ([]byte, error) {
	anId := nullId
	if id != nil {
		anId = *id
	}
	response := &jsonrpc.Response{Jsonrpc: jsonrpc.Version, Id: anId, Error: rpcError}
	return json.Marshal(response)
}
