// Package config handles configuration loading for minidg.
//
// # Overview
//
// Configuration is layered: built-in defaults, then an optional YAML file
// with environment variable expansion, then environment overrides. The
// service is fully runnable with nothing but DISCORD_TOKEN set.
//
// # Configuration File
//
// The file path comes from the -config flag or MINIDG_CONFIG; when
// neither is set, $XDG_CONFIG_HOME/minidg/config.yaml (default
// ~/.config/minidg/config.yaml) is used if it exists. A .env file in
// the working directory is loaded first (godotenv).
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	discord:
//	  token: "${DISCORD_TOKEN}"
//
// Syntax: ${VAR_NAME}
//
// # Environment Overrides
//
// Two variables override whatever the file says:
//
//	DISCORD_TOKEN   bot credential
//	API_PORT        listen port (becomes ":<port>")
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: ":8000"
//
// Discord session:
//
//	discord:
//	  token: "${DISCORD_TOKEN}"
//	  ready_timeout: "10s"   # startup aborts if the session is not ready in time
//
// Logging:
//
//	logging:
//	  level: "info"    # debug, info, warn, error
//	  format: "color"  # text, json, color
//
// Tailscale:
//
//	tailscale:
//	  enabled: false
//	  hostname: "minidg"
//	  auth_key: "${TS_AUTHKEY}"
//	  https: false
//	  funnel: false
//
// # Validation
//
// Load() validates:
//
//   - Bot token presence (the process must fail fast without one)
//   - Positive ready_timeout
//   - Listen address presence when Tailscale is disabled
//   - Known logging level and format values
package config
