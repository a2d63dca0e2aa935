// Package server orchestrates the minidg server components.
//
// # Overview
//
// The server package is the central coordinator: it owns the singleton
// Discord session, the roster service, and the HTTP server, and runs them
// as one unit with a strict startup and shutdown order.
//
// # Startup Order
//
// Run(ctx) proceeds in fixed steps:
//
//  1. Bind the listener (TCP or Tailscale)
//  2. Start the Discord session in a background goroutine
//  3. Block until the session reports ready, bounded by discord.ready_timeout
//  4. Start serving HTTP
//  5. Wait for context cancellation or a server error
//
// A session that cannot get ready within the window is fatal: the session
// context is canceled, its goroutine is awaited, the listener closes, and
// Run returns the error. No request is ever served by a process whose
// session never came up.
//
// # Shutdown Order
//
// On cancellation the HTTP server drains first, then the Discord session
// closes, then the session goroutine is awaited. The goroutine's
// context.Canceled return is the expected acknowledgement and is not
// treated as an error.
//
// # HTTP API
//
// Routes registered in api.go:
//
//   - GET / - Service metadata
//   - GET /health - Liveness plus connection state
//   - GET /health/ready - Readiness probe (503 until the session is up)
//   - GET /guild/{guild_id}/users - Full member list of a guild
//   - GET /docs - Rendered API guide
//   - GET /openapi.json - Machine-readable schema
//
// # Tailscale
//
// With tailscale.enabled the API serves on a tsnet node instead of a TCP
// address, optionally with auto-provisioned HTTPS certs or a public funnel.
package server
