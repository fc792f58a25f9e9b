// Package seed populates an empty collection from a fixture list.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/erazemk/barstock/internal/model"
	"github.com/erazemk/barstock/internal/store"
)

//go:embed fixtures.yaml
var fixtures []byte

// Row is one hand-authored fixture. Numbers are loose: they may be
// fractional or negative and are normalized on load.
type Row struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	ItemType string `yaml:"itemType"`

	BarQty     *float64 `yaml:"barQty"`
	StorageQty *float64 `yaml:"storageQty"`

	BarMin       *float64 `yaml:"barMin"`
	BackstockMin *float64 `yaml:"backstockMin"`
	BackstockMax *float64 `yaml:"backstockMax"`

	OrderUnit     string   `yaml:"orderUnit"`
	OrderMultiple *float64 `yaml:"orderMultiple"`
	Vendor        string   `yaml:"vendor"`

	StockAtBar *bool `yaml:"stockAtBar"`
	// StockUnderBar is the older name of StockAtBar.
	StockUnderBar *bool  `yaml:"stockUnderBar"`
	StockStatus   string `yaml:"stockStatus"`

	FridgeSpace     *float64 `yaml:"fridgeSpace"`
	Expiration      string   `yaml:"expiration"`
	StorageLocation string   `yaml:"storageLocation"`
	Notes           string   `yaml:"notes"`
}

type fixtureFile struct {
	Items []Row `yaml:"items"`
}

// LoadFixtures returns the built-in fixture list.
func LoadFixtures() ([]Row, error) {
	return ParseFixtures(bytes.NewReader(fixtures))
}

// ParseFixtures decodes a YAML fixture file with a top-level "items" list.
// Unknown keys are rejected.
func ParseFixtures(r io.Reader) ([]Row, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f fixtureFile
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decoding fixtures: %w", err)
	}
	return f.Items, nil
}

func qty(f *float64) int {
	if f == nil {
		return 0
	}
	return model.ClampQty(*f)
}

// Item converts the row into a normalized item. A row without an id gets a
// fresh one.
func (r Row) Item(now time.Time) model.Item {
	id := strings.TrimSpace(r.ID)
	if id == "" {
		id = uuid.NewString()
	}

	atBar := r.StockAtBar
	if atBar == nil {
		atBar = r.StockUnderBar
	}

	var fridgeSpace *int
	if r.FridgeSpace != nil {
		v := qty(r.FridgeSpace)
		fridgeSpace = &v
	}

	item := model.Item{
		ID:              id,
		Name:            r.Name,
		Category:        model.Category(strings.TrimSpace(r.Category)),
		ItemType:        r.ItemType,
		BarQty:          qty(r.BarQty),
		StorageQty:      qty(r.StorageQty),
		BarMin:          qty(r.BarMin),
		BackstockMin:    qty(r.BackstockMin),
		BackstockMax:    qty(r.BackstockMax),
		OrderUnit:       r.OrderUnit,
		OrderMultiple:   model.ClampMultiple(r.OrderMultiple),
		Vendor:          r.Vendor,
		StockAtBar:      atBar,
		StockStatus:     model.StockStatus(r.StockStatus),
		FridgeSpace:     fridgeSpace,
		Expiration:      r.Expiration,
		StorageLocation: r.StorageLocation,
		Notes:           r.Notes,
		UpdatedAt:       now,
	}
	model.Normalize(&item)
	return item
}

// SeedIfEmpty inserts rows into coll unless it already holds items. All
// rows share one UpdatedAt and are inserted in a single transaction, so
// calling it again, or concurrently, is harmless. Reports whether it seeded.
func SeedIfEmpty(ctx context.Context, coll *store.Collection, rows []Row) (bool, error) {
	now := coll.Now().Truncate(time.Millisecond)

	items := make([]model.Item, 0, len(rows))
	for i, row := range rows {
		item := row.Item(now)
		if err := model.Validate(item); err != nil {
			return false, fmt.Errorf("fixture %d: %w", i+1, err)
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return false, nil
	}

	seeded, err := coll.Seed(ctx, items)
	if err != nil {
		return false, fmt.Errorf("seeding items: %w", err)
	}
	return seeded, nil
}
