// Package web embeds the dashboard templates and static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*/*.html
var templates embed.FS

//go:embed static/*
var static embed.FS

// Templates returns the template tree rooted at templates/.
func Templates() fs.FS {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}

	return sub
}

// Static returns the static asset tree rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}

	return sub
}
