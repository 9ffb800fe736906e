// Command pickplan optimizes a pick order offline from a YAML layout and a
// CSV order file and prints the pick list.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	yaml "gopkg.in/yaml.v3"

	"pickpath/internal/export"
	"pickpath/internal/integrations/csvorders"
	"pickpath/internal/logging"
	"pickpath/internal/model"
	"pickpath/internal/opt"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "pickplan:", err)
		}
		os.Exit(2)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("pickplan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	layoutPath := fs.String("layout", "", "warehouse layout YAML file (required)")
	orderPath := fs.String("order", "-", "order CSV file, - for stdin")
	strategy := fs.String("strategy", string(model.StrategyNearest), "nearest, return_to_dock or zone_cluster")
	twoOpt := fs.Bool("two-opt", false, "apply 2-opt refinement")
	speed := fs.Float64("speed", model.DefaultWalkingSpeedMps, "walking speed in m/s")
	pick := fs.Int("pick-seconds", model.DefaultPickSecondsPerItem, "seconds spent per pick")
	format := fs.String("format", "txt", "output format: txt, csv, path or json")
	verbose := fs.Bool("v", false, "log routing warnings to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *layoutPath == "" {
		fs.Usage()
		return errors.New("-layout is required")
	}
	f, err := export.ParseFormat(*format)
	if err != nil {
		return err
	}
	params := model.OptimizeParams{
		Strategy:           model.Strategy(*strategy),
		WalkingSpeedMps:    *speed,
		PickSecondsPerItem: *pick,
		TwoOpt:             *twoOpt,
	}
	if !params.Strategy.Valid() {
		return fmt.Errorf("unknown strategy %q", *strategy)
	}

	w, err := loadLayout(*layoutPath)
	if err != nil {
		return err
	}
	order, err := loadOrder(*orderPath, stdin)
	if err != nil {
		return err
	}

	log := logging.Discard()
	if *verbose {
		cfg := logging.DefaultConfig("pickplan")
		cfg.Output = stderr
		cfg.Level = logging.LevelDebug
		log = logging.New(cfg)
	}
	res, err := opt.NewEngine(log, 0, nil).Optimize(ctx, w, order, params)
	if err != nil {
		return err
	}
	return export.Write(stdout, f, res)
}

func loadLayout(path string) (model.WarehouseLayout, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return model.WarehouseLayout{}, fmt.Errorf("read layout: %w", err)
	}
	var w model.WarehouseLayout
	if err := yaml.Unmarshal(b, &w); err != nil {
		return model.WarehouseLayout{}, fmt.Errorf("parse layout %s: %w", path, err)
	}
	if w.Rows <= 0 || w.Cols <= 0 || w.Locations == nil {
		return model.WarehouseLayout{}, fmt.Errorf("layout %s: rows, cols and locations are required", path)
	}
	g := w.Grid()
	if !g.InBounds(w.Start) {
		return model.WarehouseLayout{}, fmt.Errorf("layout %s: start %s is outside the grid", path, w.Start)
	}
	for id, at := range w.Locations {
		if !g.InBounds(at) {
			return model.WarehouseLayout{}, fmt.Errorf("layout %s: location %s at %s is outside the grid", path, id, at)
		}
	}
	return w, nil
}

func loadOrder(path string, stdin io.Reader) ([]model.OrderItem, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open order: %w", err)
		}
		defer f.Close()
		r = f
	}
	items, err := csvorders.Adapter{}.ParseOrder(r)
	if err != nil {
		return nil, fmt.Errorf("parse order: %w", err)
	}
	return items, nil
}
