// ABOUTME: Tests for the embedded API documentation
// ABOUTME: Verifies the OpenAPI document parses and the docs page renders

package docs

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestOpenAPI_ParsesAndMatchesSurface(t *testing.T) {
	var doc struct {
		OpenAPI string `json:"openapi"`
		Info    struct {
			Title   string `json:"title"`
			Version string `json:"version"`
		} `json:"info"`
		Paths map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(OpenAPI(), &doc); err != nil {
		t.Fatalf("openapi.json does not parse: %v", err)
	}

	if doc.Info.Title != "Mini Discord Gateway API" {
		t.Errorf("expected title %q, got %q", "Mini Discord Gateway API", doc.Info.Title)
	}
	if doc.Info.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %q", doc.Info.Version)
	}

	for _, path := range []string{"/", "/health", "/health/ready", "/guild/{guild_id}/users"} {
		if _, ok := doc.Paths[path]; !ok {
			t.Errorf("openapi.json missing path %s", path)
		}
	}
}

func TestRenderPage(t *testing.T) {
	page, err := RenderPage("Mini Discord Gateway API")
	if err != nil {
		t.Fatalf("RenderPage failed: %v", err)
	}

	html := string(page)
	if !strings.Contains(html, "<title>Mini Discord Gateway API</title>") {
		t.Error("rendered page missing title")
	}
	if !strings.Contains(html, "/guild/{guild_id}/users") {
		t.Error("rendered page missing the member-list endpoint")
	}
	if !strings.HasPrefix(html, "<!DOCTYPE html>") {
		t.Error("rendered page missing doctype")
	}
}

func TestRenderPage_RendersErrorTable(t *testing.T) {
	page, err := RenderPage("Mini Discord Gateway API")
	if err != nil {
		t.Fatalf("RenderPage failed: %v", err)
	}

	html := string(page)
	if !strings.Contains(html, "<table>") {
		t.Error("error table did not render as an HTML table")
	}
	if strings.Contains(html, "| Status |") {
		t.Error("pipe table served as literal markdown text")
	}
}

func TestRenderPage_EscapesTitle(t *testing.T) {
	page, err := RenderPage(`<script>alert("x")</script>`)
	if err != nil {
		t.Fatalf("RenderPage failed: %v", err)
	}
	if strings.Contains(string(page), "<script>alert") {
		t.Error("title was not escaped")
	}
}
