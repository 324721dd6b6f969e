// Package gateway implements the HTTP to stdio side of the proxy, the
// mirror image of package bridge. It spawns a child process that speaks
// newline delimited JSON-RPC 2.0 on its standard streams and exposes it
// behind a single HTTP endpoint: each request body is written to the
// child as one line and the child stdout line carrying the same
// identifier is returned as the response.
//
// Identifier based correlation means concurrent HTTP callers never
// receive each other's replies, even when the child answers out of
// order. Bodies without an identifier are notifications, acknowledged
// with 202 Accepted and never awaited.
package gateway
