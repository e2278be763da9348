// Package web embeds the built frontend assets.
package web

import "embed"

// DistFS holds the compiled SPA. Run the frontend build into dist/ before
// building the server binary.
//
//go:embed all:dist
var DistFS embed.FS
