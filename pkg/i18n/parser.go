package i18n

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog holds translations keyed by language, then by (possibly nested) key.
type Catalog map[string]map[string]any

// Parser decodes a translation file into a Catalog. The top-level keys of a
// file are language codes.
type Parser interface {
	Parse(ctx context.Context, content []byte) (Catalog, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(ctx context.Context, content []byte) (Catalog, error)

func (f ParserFunc) Parse(ctx context.Context, content []byte) (Catalog, error) {
	return f(ctx, content)
}

// YAMLParser parses YAML catalogues.
var YAMLParser Parser = ParserFunc(func(ctx context.Context, content []byte) (Catalog, error) {
	return decode(ctx, content, yaml.Unmarshal)
})

// JSONParser parses JSON catalogues.
var JSONParser Parser = ParserFunc(func(ctx context.Context, content []byte) (Catalog, error) {
	return decode(ctx, content, json.Unmarshal)
})

// ParserFor picks a parser by file extension.
func ParserFor(filename string) (Parser, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "yaml", "yml":
		return YAMLParser, nil
	case "json":
		return JSONParser, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
}

func decode(ctx context.Context, content []byte, unmarshal func([]byte, any) error) (Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(ErrLoadingCancelled, err)
	}

	var data map[string]any
	if err := unmarshal(content, &data); err != nil {
		return nil, errors.Join(ErrFailedToParse, err)
	}

	catalog := make(Catalog, len(data))
	for lang, val := range data {
		entries, ok := val.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: language %q: expected map, got %T", ErrInvalidStructure, lang, val)
		}
		catalog[lang] = entries
	}
	return catalog, nil
}

// merge copies src into dst. Nested maps are merged key by key, and src
// wins on conflicts.
func (dst Catalog) merge(src Catalog) {
	for lang, entries := range src {
		if dst[lang] == nil {
			dst[lang] = make(map[string]any, len(entries))
		}
		mergeMaps(dst[lang], entries)
	}
}

func mergeMaps(dst, src map[string]any) {
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			mergeMaps(dstMap, srcMap)
			continue
		}
		dst[k] = v
	}
}
