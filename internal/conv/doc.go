// Package conv holds small conversion helpers shared by the bridge and
// gateway internals; none of them are part of the public API.
//
// At the moment it only exposes IdKey, which derives a map key from a raw
// JSON-RPC identifier.
package conv
