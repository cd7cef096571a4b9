// Package index exposes typed table rows and raw file bytes from a bundle.
//
// The pipeline treats a missing required table as fatal for the whole run,
// so table readers wrap ErrMissingTable with the table name. Individual file
// lookups keep the bundle.ErrNotExist semantics and stay per-record.
package index

import (
	"context"
	"errors"
	"fmt"

	"talisman/internal/bundle"
	"talisman/internal/dat"
)

// ErrMissingTable reports a required table absent from the bundle.
var ErrMissingTable = errors.New("index: table does not exist")

// Index reads typed tables and raw files from a bundle Fs.
type Index struct {
	fs bundle.Fs
}

// New creates an index over fs.
func New(fs bundle.Fs) *Index {
	return &Index{fs: fs}
}

func (i *Index) table(ctx context.Context, name string) (*dat.Table, error) {
	raw, err := i.fs.Read(ctx, "Data/"+name+".dat64")
	if err != nil {
		if errors.Is(err, bundle.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingTable, name)
		}
		return nil, fmt.Errorf("read table %s: %w", name, err)
	}
	table, err := dat.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse table %s: %w", name, err)
	}
	return table, nil
}

// BaseItemTypes reads the BaseItemTypes table.
func (i *Index) BaseItemTypes(ctx context.Context) ([]dat.BaseItemType, error) {
	table, err := i.table(ctx, "BaseItemTypes")
	if err != nil {
		return nil, err
	}
	return table.BaseItemTypes()
}

// UniqueStashLayouts reads the UniqueStashLayout table.
func (i *Index) UniqueStashLayouts(ctx context.Context) ([]dat.UniqueStashLayout, error) {
	table, err := i.table(ctx, "UniqueStashLayout")
	if err != nil {
		return nil, err
	}
	return table.UniqueStashLayouts()
}

// Words reads the Words table.
func (i *Index) Words(ctx context.Context) ([]dat.Word, error) {
	table, err := i.table(ctx, "Words")
	if err != nil {
		return nil, err
	}
	return table.Words()
}

// ItemVisualIdentities reads the ItemVisualIdentity table.
func (i *Index) ItemVisualIdentities(ctx context.Context) ([]dat.ItemVisualIdentity, error) {
	table, err := i.table(ctx, "ItemVisualIdentity")
	if err != nil {
		return nil, err
	}
	return table.ItemVisualIdentities()
}

// ReadByPath fetches raw bytes for a logical bundle path. Missing paths
// surface as bundle.ErrNotExist.
func (i *Index) ReadByPath(ctx context.Context, path string) ([]byte, error) {
	return i.fs.Read(ctx, path)
}
