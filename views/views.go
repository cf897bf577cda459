// Package views embeds the HTML page templates.
package views

import "embed"

// FS holds the page templates and layouts.
//
//go:embed *.html layouts/*.html
var FS embed.FS
