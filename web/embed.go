package web

import (
	"embed"
	"html/template"
)

// templateFS embeds the server-rendered pages into the Go binary.
//
//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates. Names match the file names,
// e.g. "auth.html" and "dashboard.html".
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}
