// ABOUTME: Embedded API documentation served at /docs and /openapi.json
// ABOUTME: Markdown converts to HTML via goldmark inside a small page shell

package docs

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed openapi.json
var openapiJSON []byte

//go:embed api.md
var apiMarkdown []byte

//go:embed page.html
var pageShell string

var pageTmpl = template.Must(template.New("docs").Parse(pageShell))

// GFM for the guide's pipe tables, which core CommonMark does not parse.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// OpenAPI returns the embedded OpenAPI document as raw JSON.
func OpenAPI() []byte {
	return openapiJSON
}

// RenderPage converts the embedded API guide into a standalone HTML page
// with the given title.
func RenderPage(title string) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert(apiMarkdown, &body); err != nil {
		return nil, fmt.Errorf("converting api guide: %w", err)
	}

	data := struct {
		Title   string
		Content template.HTML
	}{
		Title:   title,
		Content: template.HTML(body.String()),
	}

	var page bytes.Buffer
	if err := pageTmpl.Execute(&page, data); err != nil {
		return nil, fmt.Errorf("rendering docs page: %w", err)
	}
	return page.Bytes(), nil
}
