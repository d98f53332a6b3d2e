// Package web embeds the browser frontend shared by the desktop app and
// the HTTP server.
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:dist
var assets embed.FS

// Dist returns the frontend files rooted at the dist directory.
func Dist() fs.FS {
	sub, err := fs.Sub(assets, "dist")
	if err != nil {
		panic(err)
	}
	return sub
}
