// Package web serves the embedded browser UI: a Leaflet map with drawing
// controls and a sidebar for managing areas, previews, and exports.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var staticFiles embed.FS

// Handler serves the UI assets from the embedded filesystem
func Handler() http.Handler {
	content, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err) // embedded tree is fixed at build time
	}
	return http.FileServer(http.FS(content))
}
