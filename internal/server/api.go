// ABOUTME: HTTP handlers for health, service metadata, and guild member lists
// ABOUTME: Maps roster errors onto status codes so clients see stable failure shapes

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Phinfire/miniDiscordGateway/internal/discord"
	"github.com/Phinfire/miniDiscordGateway/internal/docs"
)

// healthResponse is the JSON response for GET /health and GET /health/ready.
type healthResponse struct {
	Status             string `json:"status"`
	DiscordClientReady bool   `json:"discord_client_ready"`
	DiscordBotName     string `json:"discord_bot_name"`
}

// rootResponse is the JSON response for GET /.
type rootResponse struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	DocsURL    string `json:"docs_url"`
	OpenAPIURL string `json:"openapi_url"`
}

// errorResponse is the shared error body. Detail stays null on the expected
// failure paths; anything worth more words belongs in the server log.
type errorResponse struct {
	Error  string  `json:"error"`
	Detail *string `json:"detail"`
}

// handleHealth handles GET /health requests.
// Always answers 200; discord_client_ready carries the connection state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, s.healthSnapshot())
}

// handleReady handles GET /health/ready requests.
// Status code follows readiness so probes can gate traffic on it.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if !s.discord.Ready() {
		s.sendJSONError(w, http.StatusServiceUnavailable, "Discord client is not ready. Please try again later.")
		return
	}
	s.writeJSON(w, http.StatusOK, s.healthSnapshot())
}

func (s *Server) healthSnapshot() healthResponse {
	botName := s.discord.BotName()
	if botName == "" {
		botName = "Not connected"
	}
	return healthResponse{
		Status:             "ok",
		DiscordClientReady: s.discord.Ready(),
		DiscordBotName:     botName,
	}
}

// handleRoot handles GET / requests with service metadata.
// The root pattern catches every otherwise unrouted path, so anything but
// exactly "/" is a 404 here.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.sendJSONError(w, http.StatusNotFound, "Not Found")
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, rootResponse{
		Name:       serviceName,
		Version:    s.version,
		DocsURL:    "/docs",
		OpenAPIURL: "/openapi.json",
	})
}

// handleGuildUsers handles GET /guild/{guild_id}/users requests.
//
// Responsibilities:
//  1. Parse the guild ID from the path
//  2. Reject non-positive IDs before touching any session state
//  3. Gate on readiness so an unready session never reaches Discord
//  4. Assemble the member list via the roster service
//  5. Map failures onto the error surface
func (s *Server) handleGuildUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	raw, ok := guildPathID(r.URL.Path)
	if !ok {
		s.sendJSONError(w, http.StatusNotFound, "Not Found")
		return
	}

	guildID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || guildID <= 0 {
		s.sendJSONError(w, http.StatusBadRequest, "Guild ID must be a positive integer")
		return
	}

	if !s.discord.Ready() {
		s.logger.Error("discord client is not ready")
		s.sendJSONError(w, http.StatusServiceUnavailable, "Discord client is not ready. Please try again later.")
		return
	}

	list, err := s.roster.MemberList(r.Context(), guildID)
	if err != nil {
		s.respondGuildError(w, guildID, err)
		return
	}

	s.writeJSON(w, http.StatusOK, list)
}

// guildPathID extracts the raw guild ID segment from /guild/{id}/users.
func guildPathID(path string) (string, bool) {
	const (
		prefix = "/guild/"
		suffix = "/users"
	)
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		return "", false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(path, prefix), suffix)
	if raw == "" || strings.Contains(raw, "/") {
		return "", false
	}
	return raw, true
}

// respondGuildError maps roster errors onto the HTTP error surface.
func (s *Server) respondGuildError(w http.ResponseWriter, guildID int64, err error) {
	switch {
	case errors.Is(err, discord.ErrNotReady):
		s.logger.Error("discord client is not ready")
		s.sendJSONError(w, http.StatusServiceUnavailable, "Discord client is not ready. Please try again later.")
	case errors.Is(err, discord.ErrGuildNotFound):
		s.logger.Warn("guild not found", "guild_id", guildID)
		s.sendJSONError(w, http.StatusNotFound, fmt.Sprintf("Guild %d not found", guildID))
	case errors.Is(err, discord.ErrForbidden):
		s.logger.Error("permission denied accessing guild", "guild_id", guildID)
		s.sendJSONError(w, http.StatusForbidden, "Bot does not have permission to access this guild")
	case errors.Is(err, discord.ErrUpstream):
		s.logger.Error("discord api error", "guild_id", guildID, "error", err)
		s.sendJSONError(w, http.StatusBadGateway, "Discord API error. Please try again later.")
	default:
		s.logger.Error("unexpected error", "guild_id", guildID, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// handleOpenAPI handles GET /openapi.json requests.
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(docs.OpenAPI())
}

// handleDocs handles GET /docs requests with the rendered API guide.
func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	page, err := docs.RenderPage(serviceName)
	if err != nil {
		s.logger.Error("failed to render docs page", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}
