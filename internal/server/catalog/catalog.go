// Package catalog holds the module registry: the built-in module list, the
// idempotent seed, and an immutable in-memory snapshot read by request
// handlers.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/lifekeeper/internal/server/models"
	"github.com/dmitrijs2005/lifekeeper/internal/server/repositories/modules"
)

// Catalog is a read-only view of the module registry.
type Catalog struct {
	modules []models.Module
	byName  map[string]models.Module
}

// New builds a catalog from mods, ordered by display order, then name.
func New(mods []models.Module) *Catalog {
	sorted := make([]models.Module, len(mods))
	copy(sorted, mods)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].DisplayOrder != sorted[j].DisplayOrder {
			return sorted[i].DisplayOrder < sorted[j].DisplayOrder
		}
		return sorted[i].Name < sorted[j].Name
	})

	byName := make(map[string]models.Module, len(sorted))
	for _, m := range sorted {
		byName[m.Name] = m
	}
	return &Catalog{modules: sorted, byName: byName}
}

// List returns a copy of the ordered module list.
func (c *Catalog) List() []models.Module {
	out := make([]models.Module, len(c.modules))
	copy(out, c.modules)
	return out
}

func (c *Catalog) Lookup(name string) (models.Module, bool) {
	m, ok := c.byName[name]
	return m, ok
}

// Seed inserts mods, skipping names that already exist, and returns how many
// rows were new. Store errors abort the seed.
func Seed(ctx context.Context, repo modules.Repository, mods []models.Module) (int, error) {
	inserted := 0
	for _, m := range mods {
		ok, err := repo.Insert(ctx, m)
		if err != nil {
			return inserted, fmt.Errorf("seed module %s: %w", m.Name, err)
		}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}

// Load reads the registry from the store into a Catalog.
func Load(ctx context.Context, repo modules.Repository) (*Catalog, error) {
	mods, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load modules: %w", err)
	}
	return New(mods), nil
}

func rawJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
