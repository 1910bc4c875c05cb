package main

import (
	"context"
	"embed"
	"os"

	"github.com/dmitrymomot/formkit/pkg/formdef"
	"github.com/dmitrymomot/formkit/pkg/i18n"
)

//go:embed forms.yaml translations/*.yaml
var assets embed.FS

// loadForms reads path, or the bundled definitions when path is empty.
func loadForms(path string) ([]formdef.Definition, error) {
	if path == "" {
		return formdef.LoadFS(assets, "forms.yaml")
	}
	return formdef.LoadFile(path)
}

// newTranslator loads the catalogues under dir, or the bundled ones when
// dir is empty.
func newTranslator(ctx context.Context, dir string, opts ...i18n.Option) (*i18n.Translator, error) {
	adapter := i18n.FSAdapter{FS: assets, Dir: "translations"}
	if dir != "" {
		adapter = i18n.FSAdapter{FS: os.DirFS(dir)}
	}
	return i18n.NewTranslator(ctx, adapter, opts...)
}
