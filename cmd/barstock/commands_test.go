package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/barstock/internal/model"
	"github.com/erazemk/barstock/internal/seed"
)

type cli struct {
	t      *testing.T
	dbPath string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return &cli{t: t, dbPath: filepath.Join(dir, "data", "barstock.sqlite3")}
}

// run invokes the command line against the test database with seeding off.
func (c *cli) run(args ...string) (int, string, string) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	args = append([]string{"-no-seed", "-d", c.dbPath}, args...)
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func (c *cli) ok(args ...string) string {
	c.t.Helper()
	code, stdout, stderr := c.run(args...)
	require.Equal(c.t, 0, code, "barstock %s\nstdout: %s\nstderr: %s", strings.Join(args, " "), stdout, stderr)
	return stdout
}

func (c *cli) add(args ...string) string {
	c.t.Helper()
	return strings.TrimSpace(c.ok(append([]string{"add"}, args...)...))
}

func (c *cli) get(id string) model.Item {
	c.t.Helper()
	var item model.Item
	require.NoError(c.t, json.Unmarshal([]byte(c.ok("get", id, "-json")), &item))
	return item
}

func TestUsage(t *testing.T) {
	c := newCLI(t)

	code, stdout, _ := c.run()
	assert.Equal(t, 2, code)
	assert.Contains(t, stdout, "Usage: barstock")

	code, stdout, _ = c.run("-h")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Commands:")

	code, _, stderr := c.run("juggle")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "unknown command: juggle")
}

func TestMoveThenRemoveTooMany(t *testing.T) {
	c := newCLI(t)

	id := c.add("-name", "Cola", "-category", "Concessions", "-storage", "10")
	require.NotEmpty(t, id)

	assert.Equal(t, "Cola: bar 3, storage 7\n", c.ok("move", id, "3"))
	assert.Equal(t, "no change\n", c.ok("remove-bar", id, "5"))

	item := c.get(id)
	assert.Equal(t, 3, item.BarQty)
	assert.Equal(t, 7, item.StorageQty)
}

func TestQuantityCommands(t *testing.T) {
	c := newCLI(t)

	id := c.add("-name", "Mop", "-category", "Cleaning", "-storage", "2")

	assert.Equal(t, "Mop: bar 1, storage 1\n", c.ok("move", id))
	assert.Equal(t, "Mop: bar 0, storage 2\n", c.ok("return", id))
	assert.Equal(t, "Mop: bar 0, storage 6\n", c.ok("restock", id, "4"))
	assert.Equal(t, "Mop: bar 0, storage 5\n", c.ok("remove-storage", id))
	assert.Equal(t, "Mop: bar 0, storage 0\n", c.ok("adjust", id, "-storage", "-9"))
	assert.Equal(t, "no change\n", c.ok("adjust", id, "-storage", "-1"))

	code, _, stderr := c.run("move", id, "many")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "invalid quantity")
}

func TestAddNormalizesInput(t *testing.T) {
	c := newCLI(t)

	id := c.add("-name", " Cups ", "-category", "Concessions",
		"-bar", "-2", "-storage", "3.7", "-min", "5", "-max", "2", "-multiple", "0")

	item := c.get(id)
	assert.Equal(t, "Cups", item.Name)
	assert.Equal(t, 0, item.BarQty)
	assert.Equal(t, 3, item.StorageQty)
	assert.Equal(t, 5, item.BackstockMax)
	assert.Nil(t, item.OrderMultiple)
}

func TestAddRejectsInvalid(t *testing.T) {
	c := newCLI(t)

	code, _, stderr := c.run("add", "-name", "Rake", "-category", "Garden")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "unknown category")
}

func TestAddAndEditRejectUnknownStatus(t *testing.T) {
	c := newCLI(t)

	code, _, stderr := c.run("add", "-name", "Cola", "-category", "Concessions", "-status", "Bogus")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `unknown status "Bogus"`)
	assert.Equal(t, "[]\n", c.ok("list", "-json"))

	id := c.add("-name", "Cola", "-category", "Concessions", "-status", "Low")
	assert.Equal(t, model.StockLow, c.get(id).StockStatus)

	code, _, stderr = c.run("edit", id, "-status", "Bogus")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `unknown status "Bogus"`)
	assert.Equal(t, model.StockLow, c.get(id).StockStatus)

	assert.Equal(t, "updated\n", c.ok("edit", id, "-status", ""))
	assert.Empty(t, c.get(id).StockStatus)
}

func TestEdit(t *testing.T) {
	c := newCLI(t)

	id := c.add("-name", "Cola", "-category", "Concessions", "-vendor", "Acme", "-multiple", "24")

	assert.Equal(t, "updated\n", c.ok("edit", id, "-name", "Diet Cola", "-min", "6", "-at-bar"))
	item := c.get(id)
	assert.Equal(t, "Diet Cola", item.Name)
	assert.Equal(t, "Acme", item.Vendor)
	assert.Equal(t, 6, item.BackstockMax)
	assert.True(t, item.AtBar())
	require.NotNil(t, item.OrderMultiple)
	assert.Equal(t, 24, *item.OrderMultiple)

	assert.Equal(t, "no change\n", c.ok("edit", id))
	assert.Equal(t, "no change\n", c.ok("edit", "missing", "-name", "Ghost"))
}

func TestStatusCommands(t *testing.T) {
	c := newCLI(t)

	id := c.add("-name", "Cola", "-category", "Concessions", "-storage", "1")

	assert.Equal(t, "Full\n", c.ok("cycle", id))
	assert.Equal(t, "Moderate\n", c.ok("cycle", id))
	assert.Equal(t, "Out\n", c.ok("status", id, "Out"))
	assert.Equal(t, "false\n", c.ok("at-bar", id, "false"))

	code, _, _ := c.run("status", id, "Overflowing")
	assert.Equal(t, 2, code)

	assert.Equal(t, "Cola: bar 1, storage 0\n", c.ok("take", id))
	item := c.get(id)
	assert.Equal(t, model.StockFull, item.StockStatus)
	assert.True(t, item.AtBar())
	assert.Equal(t, "no change\n", c.ok("take", id))
}

func TestListFiltersAndFacets(t *testing.T) {
	c := newCLI(t)

	for _, name := range []string{"Bleach", "Broom", "Mop"} {
		c.add("-name", name, "-category", "Cleaning")
	}
	cola := c.add("-name", "Cola", "-category", "Concessions", "-type", "Soda")
	c.add("-name", "Chips", "-category", "Concessions")

	var items []model.Item
	require.NoError(t, json.Unmarshal([]byte(c.ok("list", "-category", "Cleaning", "-json")), &items))
	assert.Len(t, items, 3)
	for _, item := range items {
		assert.Equal(t, model.CategoryCleaning, item.Category)
	}

	table := c.ok("list", "-type", "Soda")
	assert.Contains(t, table, cola)
	assert.NotContains(t, table, "Chips")

	facets := c.ok("facets")
	assert.Contains(t, facets, "Categories: All, Cleaning, Concessions")
	assert.Contains(t, facets, "Item types: All, Soda, Uncategorized")
}

func TestClassify(t *testing.T) {
	c := newCLI(t)

	a := c.add("-name", "Cola", "-category", "Concessions")
	b := c.add("-name", "Sprite", "-category", "Concessions")

	assert.Equal(t, "2 items updated\n", c.ok("classify", "-type", "Soda", a, b, "missing"))
	assert.Equal(t, "Soda", c.get(a).ItemType)
	assert.Equal(t, "Soda", c.get(b).ItemType)

	assert.Equal(t, "0 items updated\n", c.ok("classify", "-type", "Pop"))

	code, _, _ := c.run("classify", a)
	assert.Equal(t, 2, code)
}

func TestSeedSummaryAndClear(t *testing.T) {
	c := newCLI(t)

	rows, err := seed.LoadFixtures()
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("seeded %d items\n", len(rows)), c.ok("seed"))
	assert.Equal(t, "database not empty, nothing seeded\n", c.ok("seed"))
	assert.Regexp(t, fmt.Sprintf(`Total items:\s+%d\n`, len(rows)), c.ok("summary"))

	code, _, stderr := c.run("clear")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "-yes")

	assert.Equal(t, fmt.Sprintf("deleted %d items\n", len(rows)), c.ok("clear", "-yes"))
	assert.Regexp(t, `Total items:\s+0\n`, c.ok("summary"))
}

func TestSeedOnStart(t *testing.T) {
	c := newCLI(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-d", c.dbPath, "summary"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stderr.String(), "seeded empty database")
	assert.NotContains(t, stdout.String(), "level=")
	assert.NotRegexp(t, `Total items:\s+0\n`, stdout.String())
}

func TestListJSONOnFreshDatabase(t *testing.T) {
	c := newCLI(t)

	rows, err := seed.LoadFixtures()
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-d", c.dbPath, "list", "-json"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var items []model.Item
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &items), stdout.String())
	assert.Len(t, items, len(rows))
	assert.Contains(t, stderr.String(), "seeded empty database")
}

func TestLogFileGetsDebugRecords(t *testing.T) {
	c := newCLI(t)
	logPath := filepath.Join(t.TempDir(), "barstock.log")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-d", c.dbPath, "-l", logPath, "summary"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "database ready")
	assert.Contains(t, string(data), "seeded empty database")
	assert.NotContains(t, stderr.String(), "database ready")
	assert.NotContains(t, stdout.String(), "level=")
}

func TestGetMissing(t *testing.T) {
	c := newCLI(t)

	assert.Equal(t, "no item with id nope\n", c.ok("get", "nope"))

	code, _, _ := c.run("get")
	assert.Equal(t, 2, code)
}
