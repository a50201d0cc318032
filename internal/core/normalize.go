package core

// normalize.go reshapes raw rectangular sheet regions into the flat column
// contracts defined in internal/schema, and value-normalizes contract rows.
// Reshaping enforces the region geometry (a shape error aborts the whole
// region); rows whose entity-key cell is empty are separators or footers,
// skipped and counted but never reported as failures.

import (
	"fmt"
	"strings"

	"github.com/tenjam/shopsync/internal/canon"
	"github.com/tenjam/shopsync/internal/schema"
)

// ProductVersion names one product version the work-steps region is
// instantiated for. The shop authors a single steps sheet shared by every
// color variant of a product, so conversion fans each step row out per
// version.
type ProductVersion struct {
	Name          string
	VersionName   string
	VersionNumber int
	Default       bool
}

// ProductionOptions parameterizes production-history conversion.
type ProductionOptions struct {
	DueDate     string // order reference applied to every event
	VersionName string // product version the events belong to
	// Baseline rows excluded from conversion (reference workers or
	// development products that never ship).
	ExcludeWorkers  []string
	ExcludeProducts []string
}

func checkShape(grid [][]string, shape schema.Shape) error {
	if len(grid) < shape.HeaderRows {
		return fmt.Errorf("region %s: %d rows, need at least %d header rows", shape.Name, len(grid), shape.HeaderRows)
	}
	for i, row := range grid[shape.HeaderRows:] {
		if IsEmptyRow(row) {
			continue
		}
		if len(row) < shape.MinColumns {
			return fmt.Errorf("region %s: row %d has %d columns, expected at least %d",
				shape.Name, shape.HeaderRows+i+1, len(row), shape.MinColumns)
		}
	}
	return nil
}

func keyEmpty(row []string, keyCol int) bool {
	return keyCol >= len(row) || CleanCell(row[keyCol]) == ""
}

// NormalizeEquipmentRegion reshapes the raw equipment/certification matrix
// into the equipment-matrix contract. Worker identities are discovered from
// the header columns bounded by the shape's matrix range, canonicalized,
// and become the dynamic tail of the output header. The sentinel cost row
// is always emitted first, carrying per-worker hourly cost, even when the
// source has no cost data.
func NormalizeEquipmentRegion(grid [][]string, shape schema.Shape) (RowSet, int, error) {
	if err := checkShape(grid, shape); err != nil {
		return RowSet{}, 0, err
	}
	if shape.Matrix == nil {
		return RowSet{}, 0, fmt.Errorf("region %s: shape has no matrix range", shape.Name)
	}

	header := grid[0]
	var workers []string
	workerCols := make([]int, 0, shape.Matrix.Last-shape.Matrix.First)
	for col := shape.Matrix.First; col < shape.Matrix.Last && col < len(header); col++ {
		name := canon.Worker(CleanCell(header[col]))
		if name == "" {
			continue
		}
		workers = append(workers, name)
		workerCols = append(workerCols, col)
	}

	columns := append(append([]string{}, schema.EquipmentColumns...), workers...)
	set := RowSet{Columns: columns}

	// Source cost row, if present, overrides the synthesized one.
	costs := make([]string, len(workers))
	for i := range costs {
		costs[i] = "0"
	}

	skipped := 0
	for _, row := range grid[shape.HeaderRows:] {
		if keyEmpty(row, shape.KeyColumn) {
			skipped++
			continue
		}
		code := CleanCell(row[shape.KeyColumn])

		if code == schema.CostSentinel {
			for i, col := range workerCols {
				if col < len(row) {
					if v, ok := ParseNumericCell(row[col]); ok {
						costs[i] = formatNumeric(v)
					}
				}
			}
			skipped++ // re-emitted in front, not counted as an equipment row
			continue
		}

		stations, _ := ParseIntCell(row[schema.EquipColStations])
		category, workType := SplitWorkType(row[schema.EquipColWorkType])

		out := []string{code, category, workType, fmt.Sprintf("%d", stations), "0"}
		for _, col := range workerCols {
			cell := ""
			if col < len(row) {
				cell = row[col]
			}
			out = append(out, ParseFlag(cell))
		}
		set.Rows = append(set.Rows, out)
	}

	sentinel := []string{schema.CostSentinel, "", "Worker Cost Per Hour", "0", "0"}
	sentinel = append(sentinel, costs...)
	set.Rows = append([][]string{sentinel}, set.Rows...)

	return set, skipped, nil
}

// NormalizeStepsRegion reshapes the raw work-steps region into the products
// contract, one output row per (product version, step). Dependencies are
// encoded from the predecessor and relation cells.
func NormalizeStepsRegion(grid [][]string, shape schema.Shape, products []ProductVersion) (RowSet, int, error) {
	if err := checkShape(grid, shape); err != nil {
		return RowSet{}, 0, err
	}
	if len(products) == 0 {
		return RowSet{}, 0, fmt.Errorf("region %s: no product versions given", shape.Name)
	}

	set := RowSet{Columns: append([]string{}, schema.ProductColumns...)}
	skipped := 0

	for _, product := range products {
		isDefault := ""
		if product.Default {
			isDefault = "Y"
		}
		for _, row := range grid[shape.HeaderRows:] {
			if keyEmpty(row, shape.KeyColumn) {
				skipped++
				continue
			}

			seconds, _ := ParseIntCell(row[schema.StepColSeconds])

			// External IDs export as "123.0" from the sheet; store them
			// as plain integers when they parse.
			externalID := CleanCell(cellAt(row, schema.StepColExternalID))
			if externalID != "" {
				if n, ok := ParseIntCell(externalID); ok {
					externalID = fmt.Sprintf("%d", n)
				}
			}

			set.Rows = append(set.Rows, []string{
				canon.Product(product.Name),
				product.VersionName,
				fmt.Sprintf("%d", product.VersionNumber),
				isDefault,
				CleanCell(row[shape.KeyColumn]),
				externalID,
				CleanCell(cellAt(row, schema.StepColCategory)),
				CleanCell(cellAt(row, schema.StepColComponent)),
				CleanCell(cellAt(row, schema.StepColTaskName)),
				fmt.Sprintf("%d", seconds),
				CleanCell(cellAt(row, schema.StepColEquipment)),
				EncodeDeps(cellAt(row, schema.StepColDependency), cellAt(row, schema.StepColRelation)),
			})
		}
	}

	// The skip count covers one pass over the region, not one per product.
	if len(products) > 0 {
		skipped /= len(products)
	}
	return set, skipped, nil
}

// NormalizeOrdersRegion reshapes a headered orders list into the orders
// contract, canonicalizing product names.
func NormalizeOrdersRegion(grid [][]string, shape schema.Shape) (RowSet, int, error) {
	if err := checkShape(grid, shape); err != nil {
		return RowSet{}, 0, err
	}

	idx := MakeHeaderIndex(grid[0])
	set := RowSet{Columns: append([]string{}, schema.OrderColumns...)}
	skipped := 0

	for _, row := range grid[shape.HeaderRows:] {
		product := Cell(row, idx, "product_name")
		if product == "" {
			skipped++
			continue
		}
		set.Rows = append(set.Rows, []string{
			canon.Product(product),
			Cell(row, idx, "quantity"),
			Cell(row, idx, "due_date"),
			strings.ToLower(Cell(row, idx, "status")),
		})
	}
	return set, skipped, nil
}

// NormalizeProductionRegion reshapes the raw production-data region into the
// production-history contract. Columns are located by header name because
// the shop reorders this sheet more often than the others. Worker and
// product names are canonicalized; excluded baseline rows are skipped.
func NormalizeProductionRegion(grid [][]string, shape schema.Shape, opts ProductionOptions) (RowSet, int, error) {
	if err := checkShape(grid, shape); err != nil {
		return RowSet{}, 0, err
	}

	idx := MakeHeaderIndex(grid[0])
	for _, required := range []string{"product", "date", "name", "task id"} {
		if _, ok := idx[required]; !ok {
			return RowSet{}, 0, fmt.Errorf("region %s: missing column %q", shape.Name, required)
		}
	}

	excludeWorker := toSet(opts.ExcludeWorkers)
	excludeProduct := toSet(opts.ExcludeProducts)

	set := RowSet{Columns: append([]string{}, schema.ProductionColumns...)}
	skipped := 0

	for _, row := range grid[shape.HeaderRows:] {
		stepCode := Cell(row, idx, "task id")
		worker := Cell(row, idx, "name")
		if stepCode == "" || worker == "" {
			skipped++
			continue
		}
		product := Cell(row, idx, "product")
		if excludeWorker[worker] || excludeProduct[product] {
			skipped++
			continue
		}

		workDate, ok := ParseDateCell(Cell(row, idx, "date"))
		if !ok {
			skipped++
			continue
		}
		start, _ := ParseClockCell(Cell(row, idx, "start time"))
		end, _ := ParseClockCell(Cell(row, idx, "finish time"))
		units, _ := ParseIntCell(Cell(row, idx, "completed units"))

		set.Rows = append(set.Rows, []string{
			canon.Product(product),
			opts.DueDate,
			opts.VersionName,
			stepCode,
			canon.Worker(worker),
			workDate.Format("2006-01-02"),
			start,
			end,
			fmt.Sprintf("%d", units),
		})
	}
	return set, skipped, nil
}

// NormalizeRow value-normalizes one contract row in place: cells are
// cleaned, spec normalizers applied, and flag columns reduced to their
// canonical representation. The operation is a stable fixpoint: running it
// over already-normalized output changes nothing.
func NormalizeRow(def Definition, idx HeaderIndex, row []string) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = CleanCell(v)
	}

	for _, spec := range def.FieldSpecs {
		pos, ok := idx[strings.ToLower(spec.Name)]
		if !ok || pos >= len(out) {
			continue
		}
		if spec.Normalizer != nil {
			out[pos] = spec.Normalizer(out[pos])
		}
		if spec.Type == schema.FieldFlag {
			out[pos] = ParseFlag(out[pos])
		}
		if spec.Type == schema.FieldClock {
			if v, ok := ParseClockCell(out[pos]); ok {
				out[pos] = v
			}
		}
	}

	// Dynamic trailing columns on the equipment matrix are certification
	// flags, except on the sentinel cost row where they carry costs.
	if def.Dynamic && def.Type == EntityEquipmentMatrix {
		keyPos, ok := idx["equipment_code"]
		if ok && keyPos < len(out) && out[keyPos] != schema.CostSentinel {
			for i := len(def.Columns); i < len(out); i++ {
				out[i] = ParseFlag(out[i])
			}
		}
	}

	return out
}

func cellAt(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return row[col]
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func formatNumeric(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
