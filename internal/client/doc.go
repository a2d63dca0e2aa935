// Package client provides a typed HTTP client for the minidg API.
//
// # Overview
//
// The client wraps the service's three JSON endpoints with typed
// methods and decodes the service's error shape into *APIError:
//
//   - Health: GET /health
//   - ServiceInfo: GET /
//   - Members: GET /guild/{guild_id}/users
//
// It backs the "minidg health" subcommand and is suitable for
// integration tooling that talks to a running instance.
//
// # Usage
//
//	c := client.New("localhost:8000")
//	st, err := c.Health(ctx)
//	if err != nil {
//		var apiErr *client.APIError
//		if errors.As(err, &apiErr) {
//			// apiErr.Status, apiErr.Message
//		}
//	}
package client
