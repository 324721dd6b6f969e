package schema

import (
	"encoding/json"
)

// Message is the envelope of a single JSON-RPC 2.0 payload carried by the
// bridge. Only the envelope fields are decoded; params stay raw so the
// bridge never interprets or rewrites what it forwards. Id keeps the
// original bytes, the reply for a message must echo the identifier exactly
// as it arrived, including number representations json.Unmarshal would not
// round-trip.
type Message struct {
	Jsonrpc string           `json:"jsonrpc,omitempty"`
	Id      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

// Notification reports whether the message carries no identifier and thus
// expects no correlated reply.
func (m *Message) Notification() bool {
	return m.Id == nil
}

// ParseMessage strictly decodes one line as a JSON-RPC payload. Callers
// must drop the line on error; no identifier can be trusted from input
// that failed to decode.
func ParseMessage(data []byte) (*Message, error) {
	message := &Message{}
	if err := json.Unmarshal(data, message); err != nil {
		return nil, err
	}
	return message, nil
}
