// Package web holds the HTML pages rendered by the handlers.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses every page. Each file is registered under its base name,
// e.g. "login.html".
func Templates() (*template.Template, error) {
	return template.ParseFS(files, "templates/*.html")
}
