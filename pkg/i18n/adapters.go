package i18n

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
)

// Adapter loads translations from a source.
type Adapter interface {
	Load(ctx context.Context) (Catalog, error)
}

// MapAdapter serves an in-memory catalogue.
type MapAdapter Catalog

func (a MapAdapter) Load(context.Context) (Catalog, error) {
	out := make(Catalog, len(a))
	out.merge(Catalog(a))
	return out, nil
}

// FileAdapter loads a single file, choosing the parser by extension.
type FileAdapter struct {
	Path string
}

func (a FileAdapter) Load(ctx context.Context) (Catalog, error) {
	parser, err := ParserFor(a.Path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, errors.Join(ErrFailedToReadFile, err)
	}
	return parser.Parse(ctx, content)
}

// FSAdapter loads every YAML and JSON file under Dir of FS, merging them in
// lexical order. Use os.DirFS for a directory on disk or an embed.FS for
// compiled-in catalogues. Files with other extensions are skipped.
type FSAdapter struct {
	FS  fs.FS
	Dir string
}

func (a FSAdapter) Load(ctx context.Context) (Catalog, error) {
	dir := a.Dir
	if dir == "" {
		dir = "."
	}

	catalog := Catalog{}
	err := fs.WalkDir(a.FS, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Join(ErrLoadingCancelled, ctxErr)
		}
		if d.IsDir() {
			return nil
		}

		parser, perr := ParserFor(path.Base(p))
		if perr != nil {
			return nil
		}
		content, rerr := fs.ReadFile(a.FS, p)
		if rerr != nil {
			return errors.Join(ErrFailedToReadFile, rerr)
		}
		parsed, perr := parser.Parse(ctx, content)
		if perr != nil {
			return fmt.Errorf("%s: %w", p, perr)
		}
		catalog.merge(parsed)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return catalog, nil
}
