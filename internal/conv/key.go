package conv

import "encoding/json"

// IdKey derives a pending table key from a raw JSON-RPC identifier. Keys
// compare identifier bytes, so the string "1" and the number 1 stay
// distinct.
func IdKey(id json.RawMessage) string {
	return string(id)
}
