package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/erazemk/barstock/internal/inventory"
	"github.com/erazemk/barstock/internal/model"
	"github.com/erazemk/barstock/internal/seed"
)

// errUsage marks invalid command arguments.
var errUsage = errors.New("invalid arguments")

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = []command{
	{"list", "list [-category c] [-type t] [-status s] [-json]", cmdList},
	{"get", "get <id> [-json]", cmdGet},
	{"add", "add -name <name> -category <category> [fields]", cmdAdd},
	{"edit", "edit <id> [fields]", cmdEdit},
	{"move", "move <id> [qty]", quantityCommand((*inventory.Store).MoveToBar)},
	{"return", "return <id> [qty]", quantityCommand((*inventory.Store).ReturnToStorage)},
	{"remove-bar", "remove-bar <id> [qty]", quantityCommand((*inventory.Store).RemoveFromBar)},
	{"remove-storage", "remove-storage <id> [qty]", quantityCommand((*inventory.Store).RemoveFromStorage)},
	{"restock", "restock <id> <qty>", quantityCommand((*inventory.Store).RestockStorage)},
	{"take", "take <id> [qty]", quantityCommand((*inventory.Store).TakeFromStorage)},
	{"adjust", "adjust <id> [-bar n] [-storage n]", cmdAdjust},
	{"cycle", "cycle <id>", cmdCycle},
	{"status", "status <id> <Full|Moderate|Low|Out>", cmdStatus},
	{"at-bar", "at-bar <id> <true|false>", cmdAtBar},
	{"classify", "classify -type <type> <id>...", cmdClassify},
	{"facets", "facets", cmdFacets},
	{"summary", "summary", cmdSummary},
	{"seed", "seed [-f file]", cmdSeed},
	{"clear", "clear -yes", cmdClear},
}

func usageErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usageErr("%v", err)
	}
	return nil
}

// idArg splits off the leading item id.
func idArg(args []string) (string, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", nil, usageErr("missing item id")
	}
	return args[0], args[1:], nil
}

func reportApplied(a *app, applied bool, what string) {
	if applied {
		fmt.Fprintln(a.out, what)
		return
	}
	fmt.Fprintln(a.out, "no change")
}

func quantityCommand(op func(*inventory.Store, context.Context, string, int) (bool, error)) func(context.Context, *app, []string) error {
	return func(ctx context.Context, a *app, args []string) error {
		id, rest, err := idArg(args)
		if err != nil {
			return err
		}
		qty := 1
		switch len(rest) {
		case 0:
		case 1:
			qty, err = strconv.Atoi(rest[0])
			if err != nil {
				return usageErr("invalid quantity %q", rest[0])
			}
		default:
			return usageErr("unexpected argument %q", rest[1])
		}

		applied, err := op(a.store, ctx, id, qty)
		if err != nil {
			return err
		}
		if !applied {
			fmt.Fprintln(a.out, "no change")
			return nil
		}
		return printItemLine(ctx, a, id)
	}
}

func printItemLine(ctx context.Context, a *app, id string) error {
	item, err := a.store.GetItemByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return nil
	}
	fmt.Fprintf(a.out, "%s: bar %d, storage %d\n", item.Name, item.BarQty, item.StorageQty)
	return nil
}

func cmdList(_ context.Context, a *app, args []string) error {
	fs := newFlagSet("list")
	category := fs.String("category", inventory.All, "")
	itemType := fs.String("type", inventory.All, "")
	status := fs.String("status", inventory.All, "")
	asJSON := fs.Bool("json", false, "")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	view := inventory.NewView()
	view.SetCategory(*category)
	view.SetItemType(*itemType)
	view.SetStockStatus(*status)
	items := a.store.VisibleItems(view)

	if *asJSON {
		return writeJSON(a.out, items)
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tTYPE\tBAR\tSTORAGE\tSTATUS")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			item.ID, item.Name, item.Category, item.ItemType,
			item.BarQty, item.StorageQty, item.StockStatus.Effective())
	}
	return tw.Flush()
}

func cmdGet(ctx context.Context, a *app, args []string) error {
	id, rest, err := idArg(args)
	if err != nil {
		return err
	}
	fs := newFlagSet("get")
	asJSON := fs.Bool("json", false, "")
	if err := parseFlags(fs, rest); err != nil {
		return err
	}

	item, err := a.store.GetItemByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		fmt.Fprintf(a.out, "no item with id %s\n", id)
		return nil
	}
	if *asJSON {
		return writeJSON(a.out, item)
	}
	return printItem(a.out, *item)
}

func printItem(w io.Writer, item model.Item) error {
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	row := func(label string, value any) { fmt.Fprintf(tw, "%s:\t%v\n", label, value) }
	optional := func(label, value string) {
		if value != "" {
			row(label, value)
		}
	}

	row("ID", item.ID)
	row("Name", item.Name)
	row("Category", item.Category)
	optional("Type", item.ItemType)
	row("Bar", item.BarQty)
	row("Storage", item.StorageQty)
	row("Bar min", item.BarMin)
	row("Backstock", fmt.Sprintf("%d-%d", item.BackstockMin, item.BackstockMax))
	optional("Order unit", item.OrderUnit)
	if item.OrderMultiple != nil {
		row("Order multiple", *item.OrderMultiple)
	}
	optional("Vendor", item.Vendor)
	row("At bar", item.AtBar())
	row("Status", item.StockStatus.Effective())
	if item.FridgeSpace != nil {
		row("Fridge space", *item.FridgeSpace)
	}
	optional("Expiration", item.Expiration)
	optional("Location", item.StorageLocation)
	optional("Notes", item.Notes)
	row("Updated", item.UpdatedAt.Format("2006-01-02 15:04:05"))
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// itemFlags holds the item fields shared by add and edit. Numbers are parsed
// as floats and normalized, so input like "-2" or "3.7" is clamped and floored.
type itemFlags struct {
	name       *string
	category   *string
	itemType   *string
	bar        *float64
	storage    *float64
	barMin     *float64
	backMin    *float64
	backMax    *float64
	unit       *string
	multiple   *float64
	vendor     *string
	atBar      *bool
	status     *string
	fridge     *float64
	expiration *string
	location   *string
	notes      *string
}

func registerItemFlags(fs *flag.FlagSet) *itemFlags {
	return &itemFlags{
		name:       fs.String("name", "", ""),
		category:   fs.String("category", "", ""),
		itemType:   fs.String("type", "", ""),
		bar:        fs.Float64("bar", 0, ""),
		storage:    fs.Float64("storage", 0, ""),
		barMin:     fs.Float64("bar-min", 0, ""),
		backMin:    fs.Float64("min", 0, ""),
		backMax:    fs.Float64("max", 0, ""),
		unit:       fs.String("unit", "", ""),
		multiple:   fs.Float64("multiple", 0, ""),
		vendor:     fs.String("vendor", "", ""),
		atBar:      fs.Bool("at-bar", false, ""),
		status:     fs.String("status", "", ""),
		fridge:     fs.Float64("fridge", 0, ""),
		expiration: fs.String("expiration", "", ""),
		location:   fs.String("location", "", ""),
		notes:      fs.String("notes", "", ""),
	}
}

func setFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// statusFlag returns the -status value if it was given. An empty value
// clears the status; unknown statuses are usage errors.
func statusFlag(set map[string]bool, f *itemFlags) (*model.StockStatus, error) {
	if !set["status"] {
		return nil, nil
	}
	status := model.StockStatus(*f.status)
	if status != "" && !status.Valid() {
		return nil, usageErr("unknown status %q", *f.status)
	}
	return &status, nil
}

func fridgeSpace(f float64) *int {
	v := model.ClampQty(f)
	return &v
}

func cmdAdd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("add")
	f := registerItemFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	set := setFlags(fs)
	status, err := statusFlag(set, f)
	if err != nil {
		return err
	}

	n := model.NewItem{
		Name:            *f.name,
		Category:        model.Category(*f.category),
		ItemType:        *f.itemType,
		BarQty:          model.ClampQty(*f.bar),
		StorageQty:      model.ClampQty(*f.storage),
		BarMin:          model.ClampQty(*f.barMin),
		BackstockMin:    model.ClampQty(*f.backMin),
		BackstockMax:    model.ClampQty(*f.backMax),
		OrderUnit:       *f.unit,
		OrderMultiple:   model.ClampMultiple(f.multiple),
		Vendor:          *f.vendor,
		Expiration:      *f.expiration,
		StorageLocation: *f.location,
		Notes:           *f.notes,
	}
	if status != nil {
		n.StockStatus = *status
	}
	if set["at-bar"] {
		n.StockAtBar = f.atBar
	}
	if set["fridge"] {
		n.FridgeSpace = fridgeSpace(*f.fridge)
	}

	item, err := a.store.AddItem(ctx, n)
	if err != nil {
		if errors.Is(err, model.ErrInvalidItem) {
			return usageErr("%v", err)
		}
		return err
	}
	fmt.Fprintln(a.out, item.ID)
	return nil
}

func cmdEdit(ctx context.Context, a *app, args []string) error {
	id, rest, err := idArg(args)
	if err != nil {
		return err
	}
	fs := newFlagSet("edit")
	f := registerItemFlags(fs)
	if err := parseFlags(fs, rest); err != nil {
		return err
	}
	set := setFlags(fs)
	status, err := statusFlag(set, f)
	if err != nil {
		return err
	}

	p := model.Patch{StockStatus: status}
	str := func(name string, src *string, dst **string) {
		if set[name] {
			*dst = src
		}
	}
	num := func(name string, src *float64, dst **int) {
		if set[name] {
			v := model.ClampQty(*src)
			*dst = &v
		}
	}

	str("name", f.name, &p.Name)
	str("type", f.itemType, &p.ItemType)
	str("unit", f.unit, &p.OrderUnit)
	str("vendor", f.vendor, &p.Vendor)
	str("expiration", f.expiration, &p.Expiration)
	str("location", f.location, &p.StorageLocation)
	str("notes", f.notes, &p.Notes)
	num("bar", f.bar, &p.BarQty)
	num("storage", f.storage, &p.StorageQty)
	num("bar-min", f.barMin, &p.BarMin)
	num("min", f.backMin, &p.BackstockMin)
	num("max", f.backMax, &p.BackstockMax)
	if set["category"] {
		c := model.Category(*f.category)
		p.Category = &c
	}
	if set["multiple"] {
		m := model.ClampMultiple(f.multiple)
		p.OrderMultiple = &m
	}
	if set["at-bar"] {
		p.StockAtBar = &f.atBar
	}
	if set["fridge"] {
		space := fridgeSpace(*f.fridge)
		p.FridgeSpace = &space
	}

	applied, err := a.store.UpdateItem(ctx, id, p)
	if err != nil {
		if errors.Is(err, model.ErrInvalidItem) {
			return usageErr("%v", err)
		}
		return err
	}
	reportApplied(a, applied, "updated")
	return nil
}

func cmdAdjust(ctx context.Context, a *app, args []string) error {
	id, rest, err := idArg(args)
	if err != nil {
		return err
	}
	fs := newFlagSet("adjust")
	bar := fs.Int("bar", 0, "")
	storage := fs.Int("storage", 0, "")
	if err := parseFlags(fs, rest); err != nil {
		return err
	}
	if *bar == 0 && *storage == 0 {
		return usageErr("nothing to adjust")
	}

	changed := false
	if *storage != 0 {
		ok, err := a.store.AdjustStorage(ctx, id, *storage)
		if err != nil {
			return err
		}
		changed = changed || ok
	}
	if *bar != 0 {
		ok, err := a.store.AdjustBar(ctx, id, *bar)
		if err != nil {
			return err
		}
		changed = changed || ok
	}
	if !changed {
		fmt.Fprintln(a.out, "no change")
		return nil
	}
	return printItemLine(ctx, a, id)
}

func cmdCycle(ctx context.Context, a *app, args []string) error {
	id, rest, err := idArg(args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return usageErr("unexpected argument %q", rest[0])
	}

	status, err := a.store.CycleStockStatus(ctx, id)
	if err != nil {
		return err
	}
	if status == "" {
		fmt.Fprintln(a.out, "no change")
		return nil
	}
	fmt.Fprintln(a.out, status)
	return nil
}

func cmdStatus(ctx context.Context, a *app, args []string) error {
	id, rest, err := idArg(args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return usageErr("expected one status")
	}
	status := model.StockStatus(rest[0])
	if !status.Valid() {
		return usageErr("unknown status %q", rest[0])
	}

	applied, err := a.store.SetStockedStatus(ctx, id, status)
	if err != nil {
		return err
	}
	reportApplied(a, applied, string(status))
	return nil
}

func cmdAtBar(ctx context.Context, a *app, args []string) error {
	id, rest, err := idArg(args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return usageErr("expected true or false")
	}
	atBar, err := strconv.ParseBool(rest[0])
	if err != nil {
		return usageErr("invalid flag value %q", rest[0])
	}

	applied, err := a.store.SetStockedAtBar(ctx, id, atBar)
	if err != nil {
		return err
	}
	reportApplied(a, applied, strconv.FormatBool(atBar))
	return nil
}

func cmdClassify(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("classify")
	itemType := fs.String("type", "", "")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if !setFlags(fs)["type"] {
		return usageErr("-type is required")
	}

	n, err := a.store.UpdateItemTypeBulk(ctx, fs.Args(), *itemType)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d items updated\n", n)
	return nil
}

func cmdFacets(_ context.Context, a *app, _ []string) error {
	fmt.Fprintf(a.out, "Categories: %s\n", strings.Join(a.store.Categories(), ", "))
	fmt.Fprintf(a.out, "Item types: %s\n", strings.Join(a.store.ItemTypes(), ", "))
	statuses := []string{inventory.All}
	for _, s := range model.StockStatuses {
		statuses = append(statuses, string(s))
	}
	fmt.Fprintf(a.out, "Stock statuses: %s\n", strings.Join(statuses, ", "))
	return nil
}

func cmdSummary(_ context.Context, a *app, _ []string) error {
	s := a.store.Summary()
	tw := tabwriter.NewWriter(a.out, 0, 4, 1, ' ', 0)
	fmt.Fprintf(tw, "Total items:\t%d\n", s.Total)
	fmt.Fprintf(tw, "Low in storage:\t%d\n", s.Low)
	fmt.Fprintf(tw, "Out in storage:\t%d\n", s.Out)
	fmt.Fprintf(tw, "Low at bar:\t%d\n", s.LowAtBar)
	fmt.Fprintf(tw, "Concessions not at bar:\t%d\n", s.ConcessionsNotAtBar)
	return tw.Flush()
}

func cmdSeed(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("seed")
	file := fs.String("f", "", "")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var rows []seed.Row
	var err error
	if *file == "" {
		rows, err = seed.LoadFixtures()
	} else {
		rows, err = loadFixtureFile(*file)
	}
	if err != nil {
		return err
	}

	seeded, err := seed.SeedIfEmpty(ctx, a.coll, rows)
	if err != nil {
		return err
	}
	if !seeded {
		fmt.Fprintln(a.out, "database not empty, nothing seeded")
		return nil
	}
	fmt.Fprintf(a.out, "seeded %d items\n", len(rows))
	return nil
}

func loadFixtureFile(path string) ([]seed.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening fixtures: %w", err)
	}
	defer f.Close()
	return seed.ParseFixtures(f)
}

func cmdClear(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("clear")
	yes := fs.Bool("yes", false, "")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if !*yes {
		return usageErr("clear deletes every item; pass -yes to confirm")
	}

	n, err := a.store.ClearDatabase(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted %d items\n", n)
	return nil
}
