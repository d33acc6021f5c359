package cli

import (
	"context"

	"github.com/noman2111ni/Retail-Managment-System/internal/application/resource"
	"github.com/noman2111ni/Retail-Managment-System/internal/domain/retail"
)

func runResources(_ context.Context, e *env, args []string) error {
	if len(args) > 0 {
		return usageErrorf("resources takes no arguments")
	}
	type row struct {
		Name     string `json:"name"`
		ReadOnly bool   `json:"read_only"`
	}
	rows := make([]row, 0, len(e.store.Names()))
	for _, name := range e.store.Names() {
		col, err := e.store.Collection(name)
		if err != nil {
			return err
		}
		rows = append(rows, row{Name: name, ReadOnly: col.ReadOnly()})
	}
	return e.out.Print(rows)
}

func runList(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return usageErrorf("list needs a resource name")
	}
	col, err := e.store.Collection(args[0])
	if err != nil {
		return err
	}
	items, err := col.FetchAll(ctx)
	if err != nil {
		return err
	}
	return e.out.Print(items)
}

func runGet(ctx context.Context, e *env, args []string) error {
	col, id, err := collectionAndID(e, args, "get")
	if err != nil {
		return err
	}
	item, err := col.Get(ctx, id)
	if err != nil {
		return err
	}
	return e.out.Print(item)
}

func runCreate(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("create", e.app.Stderr)
	data := fs.String("data", "", "Record as a JSON object")
	file := fs.String("file", "", "File holding the record as JSON (- for stdin)")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return usageErrorf("create needs a resource name")
	}
	col, err := e.store.Collection(positional[0])
	if err != nil {
		return err
	}
	payload, err := readPayload(*data, *file, e.app.Stdin)
	if err != nil {
		return err
	}
	item, err := col.Create(ctx, payload)
	if err != nil {
		return err
	}
	return e.out.Print(item)
}

func runUpdate(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("update", e.app.Stderr)
	data := fs.String("data", "", "Record as a JSON object")
	file := fs.String("file", "", "File holding the record as JSON (- for stdin)")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	col, id, err := collectionAndID(e, positional, "update")
	if err != nil {
		return err
	}
	payload, err := readPayload(*data, *file, e.app.Stdin)
	if err != nil {
		return err
	}
	item, err := col.Update(ctx, id, payload)
	if err != nil {
		return err
	}
	return e.out.Print(item)
}

func runDelete(ctx context.Context, e *env, args []string) error {
	col, id, err := collectionAndID(e, args, "delete")
	if err != nil {
		return err
	}
	if err := col.Delete(ctx, id); err != nil {
		return err
	}
	return e.out.Message("Deleted %s %s", col.Name(), id)
}

func collectionAndID(e *env, args []string, verb string) (resource.Collection, retail.ID, error) {
	if len(args) != 2 {
		return nil, 0, usageErrorf("%s needs a resource name and a record id", verb)
	}
	col, err := e.store.Collection(args[0])
	if err != nil {
		return nil, 0, err
	}
	id, err := retail.ParseID(args[1])
	if err != nil || id <= 0 {
		return nil, 0, usageErrorf("record id must be a positive integer, got %q", args[1])
	}
	return col, id, nil
}
