package fieldset

import (
	"embed"
	"io/fs"
)

//go:embed defaults/*.yaml
var embeddedDefaults embed.FS

// DefaultFS returns the bundled page configurations.
func DefaultFS() fs.FS {
	sub, err := fs.Sub(embeddedDefaults, "defaults")
	if err != nil {
		panic(err)
	}
	return sub
}

// Defaults parses the bundled page configurations.
func Defaults() (*Catalog, error) {
	return LoadFS(DefaultFS())
}
