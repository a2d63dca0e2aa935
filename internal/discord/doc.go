// Package discord owns the process's single long-lived Discord gateway
// session and answers read-only guild queries against it.
//
// # Overview
//
// The Client is the connection lifecycle manager: exactly one gateway
// session exists per Client, created lazily, run as a cancellable
// background task, and torn down explicitly at shutdown. Consumers never
// hold the session; they go through the Client, which also carries the
// readiness signal the HTTP layer gates on.
//
// # Lifecycle
//
//	client := discord.NewClient(token, logger)
//
//	// background task, cancelled at shutdown
//	go client.Run(ctx)
//
//	// startup gate: bounded wait for the session handshake
//	if err := client.WaitReady(readyCtx); err != nil { ... abort ... }
//
//	// teardown
//	client.Close()
//
// Key operations:
//
//   - Acquire(): construct/return the session handle (no network I/O)
//   - Run(ctx): open the session and hold it until ctx is cancelled
//   - Ready() / WaitReady(ctx): non-blocking and blocking readiness reads
//   - Close(): graceful shutdown, idempotent
//   - Guild(id): cache-only guild resolution
//   - Members(ctx, id): full member enumeration via paged REST calls
//
// # Readiness
//
// Readiness is a one-shot signal per session instance: a channel closed
// by the gateway's ready event, registered with AddHandlerOnce. It is
// monotonic for the lifetime of a session handle and resets only when a
// new handle is acquired after Close. Each handler is bound to the
// signal it was armed with, so a late event from a closed or replaced
// session is discarded. Startup decides how long to wait; the Client
// only reports.
//
// # Error Taxonomy
//
// Queries return sentinel errors callers can map to HTTP statuses:
// ErrNotReady (session not established), ErrGuildNotFound (not in the
// session cache), ErrForbidden (remote permission denial), ErrUpstream
// (any other Discord API or network fault).
//
// # Thread Safety
//
// Client is safe for concurrent use. The session handle, state cache
// pointer, and readiness flag are guarded by one RWMutex; request
// handlers only read.
package discord
