// Package views embeds the HTML templates rendered by the handlers package.
package views

import "embed"

//go:embed *.html
var TemplatesFS embed.FS
