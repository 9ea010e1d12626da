// Package appfs exposes static assets needed at runtime as an embedded
// filesystem.
package appfs

import "embed"

//go:embed migrations
var FS embed.FS
