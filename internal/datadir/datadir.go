// Package datadir discovers the client's data files: action bar
// definitions and the item catalog.
package datadir

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"chosenoffset.com/gridia/internal/action"
	"chosenoffset.com/gridia/internal/inventory"
)

// ItemsFile is the catalog file name looked up in the data directory.
const ItemsFile = "items.json"

// Bundle lists the data files found in one directory.
type Bundle struct {
	Dir         string
	ActionFiles []string // Sorted by name; later files override earlier ones
	ItemsFile   string   // Empty when the directory has no catalog
}

// Scan scans a data directory for action libraries and the item catalog.
func Scan(dataPath string) (*Bundle, error) {
	entries, err := os.ReadDir(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	b := &Bundle{Dir: dataPath}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		lower := strings.ToLower(name)
		if strings.HasPrefix(name, ".") || !strings.HasSuffix(lower, ".json") {
			continue
		}

		switch {
		case lower == ItemsFile:
			b.ItemsFile = name
		case strings.Contains(lower, "action"):
			b.ActionFiles = append(b.ActionFiles, name)
		}
	}
	sort.Strings(b.ActionFiles)
	return b, nil
}

// Actions loads every action file, merged in order.
func (b *Bundle) Actions() ([]action.Definition, error) {
	merged := action.NewLibrary(nil)
	for _, name := range b.ActionFiles {
		lib, err := action.LoadLibrary(filepath.Join(b.Dir, name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		merged.Merge(lib)
	}
	return merged.All(), nil
}

// Catalog loads the item catalog, or returns nil when there is none.
func (b *Bundle) Catalog() (*inventory.Catalog, error) {
	if b.ItemsFile == "" {
		return nil, nil
	}
	return inventory.LoadCatalog(filepath.Join(b.Dir, b.ItemsFile))
}
