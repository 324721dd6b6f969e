// Package mcpbridge glues line delimited JSON-RPC 2.0 stdio transports
// to HTTP in both directions. In practice it is used as an umbrella
// package that exposes two primary entry-points:
//  1. NewBridge – a stdio to HTTP proxy that forwards every input line
//     to a backend endpoint and prints each reply as one output line, and
//  2. NewGateway – an HTTP to stdio proxy that spawns a line protocol
//     child process and answers HTTP calls with the child's replies.
//
// Both constructors accept option structures that can be populated from
// CLI flags or configuration files; the mcp-bridge and mcp-gateway
// commands are thin wrappers around them.
//
// Example:
//
//	srv := mcpbridge.NewBridge(&bridge.Options{URL: "http://127.0.0.1:8000/mcp"})
//	err := srv.Run(ctx)
//
// See the bridge and gateway packages for the underlying services.
package mcpbridge
