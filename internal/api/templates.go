package api

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// loadTemplates parses the page templates from dir, or the embedded copies
// when dir is empty.
func loadTemplates(dir string) (*template.Template, error) {
	if dir != "" {
		return template.ParseGlob(filepath.Join(dir, "*.html"))
	}
	return template.ParseFS(templateFS, "templates/*.html")
}

func staticFiles() (http.FileSystem, error) {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}
	return http.FS(sub), nil
}
