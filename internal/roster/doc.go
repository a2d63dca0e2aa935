// Package roster projects Discord guild membership into the JSON shape the
// HTTP API serves.
//
// # Projection Rules
//
// Each guild member becomes one [Member] entry, keyed by the stringified
// snowflake ID:
//
//   - Discriminator: kept verbatim; a missing value becomes "0000"
//   - Display name: server nickname, else global display name, else username
//   - Avatar URL: CDN URL when the user has a custom avatar, null otherwise
//   - Joined at: RFC 3339 timestamp, null when the gateway did not report one
//
// Duplicate member payloads collapse onto a single entry, so TotalMembers
// always equals len(Users).
package roster
