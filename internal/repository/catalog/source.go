// Package catalog loads the restaurant and menu JSON files and joins them into catalog rows.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/kailas-cloud/menurank/internal/domain"
	domcat "github.com/kailas-cloud/menurank/internal/domain/catalog"
	domdoc "github.com/kailas-cloud/menurank/internal/domain/document"
)

// restaurantSuffix marks restaurant columns that collide with menu columns.
const restaurantSuffix = "_restaurant"

// FileSource reads a restaurants file and one or more menu files matched by a glob.
type FileSource struct {
	restaurants string
	menu        string
	logger      *zap.Logger
}

// NewFileSource creates a source. menu may be a plain path or a doublestar glob
// such as "data/menus/**/*.json".
func NewFileSource(restaurants, menu string, logger *zap.Logger) *FileSource {
	return &FileSource{restaurants: restaurants, menu: menu, logger: logger}
}

// Load returns every menu row left-joined with its restaurant on restaurant_id.
// Menu rows keep their order; files matched by the glob are read in lexical order.
// A row whose restaurant is unknown keeps only its own keys.
func (s *FileSource) Load(ctx context.Context) ([]domcat.Item, error) {
	restaurants, err := readRows(s.restaurants)
	if err != nil {
		return nil, err
	}

	menuFiles, err := s.menuFiles()
	if err != nil {
		return nil, err
	}

	var menu []map[string]any
	for _, path := range menuFiles {
		if err := ctx.Err(); err != nil {
			return nil, err //nolint:wrapcheck // context errors pass through
		}
		rows, err := readRows(path)
		if err != nil {
			return nil, err
		}
		menu = append(menu, rows...)
	}

	items := Join(menu, restaurants)
	s.logger.Info("Catalog loaded",
		zap.Int("restaurants", len(restaurants)),
		zap.Int("menu_files", len(menuFiles)),
		zap.Int("items", len(items)),
	)
	return items, nil
}

func (s *FileSource) menuFiles() ([]string, error) {
	if !doublestar.ValidatePattern(s.menu) {
		return nil, fmt.Errorf("menu pattern %q: %w", s.menu, domain.ErrInvalidCatalog)
	}
	files, err := doublestar.FilepathGlob(s.menu, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w: %w", s.menu, domain.ErrInvalidCatalog, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no menu files match %q: %w", s.menu, domain.ErrInvalidCatalog)
	}
	sort.Strings(files)
	return files, nil
}

// Join left-joins menu rows with restaurant rows on restaurant_id.
// Restaurant columns that collide with a menu column are kept with a "_restaurant" suffix.
// Identifiers are compared after normalisation, so 7, 7.0 and "7" join.
func Join(menu, restaurants []map[string]any) []domcat.Item {
	byID := make(map[string]map[string]any, len(restaurants))
	for _, r := range restaurants {
		id := domdoc.NormalizeID(r[domcat.KeyRestaurantID])
		if id == "" {
			continue
		}
		if _, dup := byID[id]; !dup {
			byID[id] = r
		}
	}

	items := make([]domcat.Item, 0, len(menu))
	for _, m := range menu {
		item := make(domcat.Item, len(m)+16)
		for k, v := range m {
			item[k] = v
		}
		if r, ok := byID[domdoc.NormalizeID(m[domcat.KeyRestaurantID])]; ok {
			for k, v := range r {
				if k == domcat.KeyRestaurantID {
					continue
				}
				if _, clash := m[k]; clash {
					item[k+restaurantSuffix] = v
					continue
				}
				item[k] = v
			}
		}
		items = append(items, item)
	}
	return items
}

func readRows(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", path, domain.ErrInvalidCatalog, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode %s: expected a JSON array of objects: %w: %w", path, domain.ErrInvalidCatalog, err)
	}
	return rows, nil
}
