package main

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tenjam/shopsync/internal/core"
	"github.com/tenjam/shopsync/internal/logging"
	"github.com/tenjam/shopsync/internal/schema"
)

var (
	convertSteps      string
	convertEquipment  string
	convertOrders     string
	convertProduction string
	convertOut        string
	convertProducts   []string
	convertDueDate    string
	convertVersion    string
	convertExclWork   []string
	convertExclProd   []string
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert raw sheet regions into normalized import CSVs",
	Long: `Reshapes raw rectangular sheet regions (exported as CSV, one per sheet)
into the normalized column contracts the import API accepts. Each input
flag is optional; only the regions given are converted.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&convertSteps, "steps", "", "work-steps region CSV")
	convertCmd.Flags().StringVar(&convertEquipment, "equipment", "", "equipment-matrix region CSV")
	convertCmd.Flags().StringVar(&convertOrders, "orders", "", "orders list CSV")
	convertCmd.Flags().StringVar(&convertProduction, "production", "", "production-data region CSV")
	convertCmd.Flags().StringVar(&convertOut, "out", ".", "output directory")
	convertCmd.Flags().StringArrayVar(&convertProducts, "product", nil,
		`product version the steps apply to, as "Name:version:number[:default]" (repeatable)`)
	convertCmd.Flags().StringVar(&convertDueDate, "due-date", "", "order due date stamped on production events (YYYY-MM-DD)")
	convertCmd.Flags().StringVar(&convertVersion, "version", "v1.0", "product version stamped on production events")
	convertCmd.Flags().StringArrayVar(&convertExclWork, "exclude-worker", nil, "baseline worker excluded from production history (repeatable)")
	convertCmd.Flags().StringArrayVar(&convertExclProd, "exclude-product", nil, "baseline product excluded from production history (repeatable)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	logging.Setup(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	if convertSteps == "" && convertEquipment == "" && convertOrders == "" && convertProduction == "" {
		return fmt.Errorf("nothing to convert: give at least one of --steps, --equipment, --orders, --production")
	}
	if err := os.MkdirAll(convertOut, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if convertEquipment != "" {
		if err := convertRegion(convertEquipment, "worker-equipment.csv", func(grid [][]string) (core.RowSet, int, error) {
			return core.NormalizeEquipmentRegion(grid, schema.EquipMatrixShape)
		}); err != nil {
			return err
		}
	}

	if convertSteps != "" {
		products, err := parseProductVersions(convertProducts)
		if err != nil {
			return err
		}
		if err := convertRegion(convertSteps, "products.csv", func(grid [][]string) (core.RowSet, int, error) {
			return core.NormalizeStepsRegion(grid, schema.WorkStepsShape, products)
		}); err != nil {
			return err
		}
	}

	if convertOrders != "" {
		if err := convertRegion(convertOrders, "orders.csv", func(grid [][]string) (core.RowSet, int, error) {
			return core.NormalizeOrdersRegion(grid, schema.OrdersShape)
		}); err != nil {
			return err
		}
	}

	if convertProduction != "" {
		opts := core.ProductionOptions{
			DueDate:         convertDueDate,
			VersionName:     convertVersion,
			ExcludeWorkers:  convertExclWork,
			ExcludeProducts: convertExclProd,
		}
		if err := convertRegion(convertProduction, "production-history.csv", func(grid [][]string) (core.RowSet, int, error) {
			return core.NormalizeProductionRegion(grid, schema.ProductionDataShape, opts)
		}); err != nil {
			return err
		}
	}

	return nil
}

func convertRegion(inPath, outName string, normalize func([][]string) (core.RowSet, int, error)) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", inPath, err)
	}
	grid, err := core.ParseCSV(core.SanitizeUTF8(data))
	if err != nil {
		return fmt.Errorf("parse %s: %w", inPath, err)
	}

	set, skipped, err := normalize(grid)
	if err != nil {
		return err
	}

	outPath := filepath.Join(convertOut, outName)
	if err := writeRowSet(outPath, set); err != nil {
		return err
	}

	slog.Info("region converted",
		"source", inPath,
		"output", outPath,
		"rows", len(set.Rows),
		"skipped", skipped,
	)
	return nil
}

func writeRowSet(path string, set core.RowSet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(set.Columns); err != nil {
		return err
	}
	for _, row := range set.Rows {
		// Pad short rows so every record matches the header width.
		if len(row) < len(set.Columns) {
			padded := make([]string, len(set.Columns))
			copy(padded, row)
			row = padded
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// parseProductVersions parses repeated --product flags of the form
// "Name:version:number[:default]".
func parseProductVersions(specs []string) ([]core.ProductVersion, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("--steps requires at least one --product")
	}

	out := make([]core.ProductVersion, 0, len(specs))
	for _, spec := range specs {
		parts := strings.Split(spec, ":")
		if len(parts) < 3 || len(parts) > 4 {
			return nil, fmt.Errorf("invalid --product %q, want \"Name:version:number[:default]\"", spec)
		}
		number, err := strconv.Atoi(parts[2])
		if err != nil || number < 1 {
			return nil, fmt.Errorf("invalid version number in --product %q", spec)
		}
		pv := core.ProductVersion{
			Name:          strings.TrimSpace(parts[0]),
			VersionName:   strings.TrimSpace(parts[1]),
			VersionNumber: number,
		}
		if len(parts) == 4 {
			if parts[3] != "default" {
				return nil, fmt.Errorf("invalid --product %q, fourth segment must be \"default\"", spec)
			}
			pv.Default = true
		}
		out = append(out, pv)
	}
	return out, nil
}
