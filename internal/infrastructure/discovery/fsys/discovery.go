// Package fsys discovers document categories and their indexes on disk.
//
// The expected layout mirrors the index builder's output:
//
//	<root>/<category>/<index>/manifest.yaml
//
// Every immediate subdirectory of the root is a category; every directory
// below a category that carries a manifest.yaml is one loadable index.
package fsys

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vlad-alaukhov/Docibot/internal/infrastructure/vector/indexmeta"
)

type Discovery struct {
	root string
}

func NewDiscovery(root string) *Discovery {
	return &Discovery{root: root}
}

func (d *Discovery) ListCategories(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("read index root %s: %w", d.root, err)
	}

	categories := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		categories = append(categories, entry.Name())
	}
	sort.Strings(categories)
	return categories, nil
}

func (d *Discovery) ListIndexPaths(_ context.Context, category string) ([]string, error) {
	base := filepath.Join(d.root, filepath.Clean("/"+category))

	var paths []string
	err := filepath.WalkDir(base, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if indexmeta.Exists(path) {
			paths = append(paths, path)
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk category %s: %w", category, err)
	}
	sort.Strings(paths)
	return paths, nil
}
