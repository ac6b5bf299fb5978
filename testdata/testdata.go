package testdata

import "embed"

//go:embed forms/*/*.xml
var Forms embed.FS

// GetFS returns the embedded sample forms
func GetFS() embed.FS {
	return Forms
}
