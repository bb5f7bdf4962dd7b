// Package runtimeembed provides the embedded JavaScript runtime prelude that
// lowered declarations call into.
package runtimeembed

import (
	"embed"
	"io/fs"
	"strings"
)

//go:embed js/*.js
var preludeFS embed.FS

// PreludeFS exposes the embedded runtime sources.
func PreludeFS() fs.FS {
	return preludeFS
}

// Prelude returns the runtime prelude source with runtime as the name of the
// global runtime object.
func Prelude(runtime string) (string, error) {
	data, err := preludeFS.ReadFile("js/lumen.js")
	if err != nil {
		return "", err
	}
	text := string(data)
	if runtime != "" && runtime != "$lumen" {
		text = strings.ReplaceAll(text, "var $lumen =", "var "+runtime+" =")
	}
	return text, nil
}
