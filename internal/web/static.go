package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var staticFS embed.FS

// staticAssets serves the embedded static directory at its root.
var staticAssets = mustSub(staticFS, "static")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic("web: embedded " + dir + ": " + err.Error())
	}
	return sub
}
