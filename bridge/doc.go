// Package bridge implements the stdio to HTTP side of the proxy. It reads
// newline delimited JSON-RPC 2.0 messages from an input stream, forwards
// each one as an HTTP POST to a configured backend endpoint and writes the
// backend reply, or a synthesized error envelope, back as a single output
// line.
//
// Lines are dispatched independently, so replies surface in completion
// order rather than arrival order; consumers correlate by JSON-RPC
// identifier, never by stream position.
package bridge
