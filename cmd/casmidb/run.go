package main

import (
	"context"
	"fmt"
	"io"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"casmidb/pkg/entity"
	"casmidb/pkg/storage"
)

var samples = []Alcohol2{
	{ABV: 40, Origin: "Jamaica"},
	{ABV: 37, Origin: "England"},
	{ABV: 43, Origin: "Scotland"},
	{ABV: 55, Origin: "Mexico"},
}

// run saves the sample rows concurrently, updates and deletes one of each
// type, and prints every table after each step.
func run(ctx context.Context, exec storage.Executor, out io.Writer) error {
	recs := make([]*entity.Record, len(samples))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range samples {
		i := i
		a := samples[i]
		a.Name = ulid.Make().String()
		g.Go(func() error {
			rec, err := entity.Bind(gctx, exec, &a)
			if err != nil {
				return err
			}
			if err := rec.Save(gctx); err != nil {
				return err
			}
			recs[i] = rec
			return nil
		})
	}
	for _, name := range []string{"rum", "gin"} {
		name := name
		g.Go(func() error {
			rec, err := entity.Bind(gctx, exec, &Alcohol{Name: name, ABV: 40, Origin: "unknown"})
			if err != nil {
				return err
			}
			return rec.Save(gctx)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("save samples: %w", err)
	}

	first := recs[0].Entity().(*Alcohol2)
	first.ABV = 42
	if err := recs[0].Save(ctx); err != nil {
		return fmt.Errorf("update %s: %w", first.Name, err)
	}
	if err := list(ctx, exec, out, "after insert and update"); err != nil {
		return err
	}

	if err := recs[len(recs)-1].Delete(ctx); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	// Auto-keyed rows only learn their id when loaded.
	autos, err := entity.FindAll(ctx, exec, func() *Alcohol { return &Alcohol{} })
	if err != nil {
		return err
	}
	if len(autos) > 0 {
		if err := autos[0].Delete(ctx); err != nil {
			return fmt.Errorf("delete: %w", err)
		}
	}

	return list(ctx, exec, out, "after delete")
}

func list(ctx context.Context, exec storage.Executor, out io.Writer, title string) error {
	fmt.Fprintf(out, "-- %s\n", title)

	keyed, err := entity.FindAll(ctx, exec, func() *Alcohol2 { return &Alcohol2{} })
	if err != nil {
		return err
	}
	for _, r := range keyed {
		fmt.Fprintln(out, r)
	}

	autos, err := entity.FindAll(ctx, exec, func() *Alcohol { return &Alcohol{} })
	if err != nil {
		return err
	}
	for _, r := range autos {
		fmt.Fprintln(out, r)
	}
	return nil
}
