// Package assets embeds the templates shipped with the binaries.
package assets

import "embed"

// FS holds every template; "all:" keeps the "_" prefixed base layouts.
//
//go:embed all:templates
var FS embed.FS

const (
	EmailTemplatesDir = "templates/email"
	WebTemplatesDir   = "templates/web"
)
