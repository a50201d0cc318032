package core

// validate.go checks rows at two levels. Field validation applies each
// column's FieldSpec (type, range, enum membership). Referential validation
// runs per entity type over the whole batch: dependency resolution and
// cycle detection for steps, sentinel presence for the equipment matrix,
// and cross-entity lookups against the backend's committed state for
// orders and production events. Errors block confirm; warnings never do.

import (
	"context"
	"fmt"
	"strings"

	"github.com/tenjam/shopsync/internal/schema"
)

// ValidateFields checks one normalized row against the definition's field
// specs and returns every problem found.
func ValidateFields(def Definition, idx HeaderIndex, row []string, line int) []Diagnostic {
	var diags []Diagnostic

	for _, spec := range def.FieldSpecs {
		pos, ok := idx[strings.ToLower(spec.Name)]
		if !ok || pos >= len(row) {
			if spec.Required {
				diags = append(diags, Diagnostic{Line: line, Field: spec.Name, Message: "missing required column"})
			}
			continue
		}

		raw := CleanCell(row[pos])
		if raw == "" {
			if spec.Required && !spec.Key {
				diags = append(diags, Diagnostic{Line: line, Field: spec.Name, Message: "required field is empty"})
			}
			continue
		}

		if msg := validateCell(raw, spec); msg != "" {
			diags = append(diags, Diagnostic{Line: line, Field: spec.Name, Message: msg})
		}
	}
	return diags
}

func validateCell(value string, spec schema.FieldSpec) string {
	switch spec.Type {
	case schema.FieldInt:
		n, ok := ParseIntCell(value)
		if !ok {
			return fmt.Sprintf("invalid integer %q", value)
		}
		if n < spec.Min {
			return fmt.Sprintf("value %d below minimum %d", n, spec.Min)
		}
	case schema.FieldNumeric:
		f, ok := ParseNumericCell(value)
		if !ok {
			return fmt.Sprintf("invalid number %q", value)
		}
		if f < float64(spec.Min) {
			return fmt.Sprintf("value %v below minimum %d", f, spec.Min)
		}
	case schema.FieldDate:
		if _, ok := ParseDateCell(value); !ok {
			return fmt.Sprintf("invalid date %q (use YYYY-MM-DD)", value)
		}
	case schema.FieldClock:
		if _, ok := ParseClockCell(value); !ok {
			return fmt.Sprintf("invalid time %q (use HH:MM)", value)
		}
	case schema.FieldEnum:
		for _, ev := range spec.EnumValues {
			if strings.EqualFold(ev, value) {
				return ""
			}
		}
		return fmt.Sprintf("value %q not one of: %s", value, strings.Join(spec.EnumValues, ", "))
	}
	return ""
}

func validateEquipment(ctx context.Context, set RowSet, backend Backend) (errs, warns []Diagnostic) {
	idx := MakeHeaderIndex(set.Columns)
	keyPos := idx["equipment_code"]

	sentinels := 0
	seen := make(map[string]int)
	workerCount := len(set.Columns) - len(schema.EquipmentColumns)

	for i, row := range set.Rows {
		line := i + 2
		code := CleanCell(row[keyPos])

		if code == schema.CostSentinel {
			sentinels++
			continue
		}

		if prev, dup := seen[code]; dup {
			errs = append(errs, Diagnostic{Line: line, Field: "equipment_code",
				Message: fmt.Sprintf("duplicate equipment code %q (first at line %d)", code, prev)})
		} else {
			seen[code] = line
		}

		certified := 0
		for c := len(schema.EquipmentColumns); c < len(row) && c < len(set.Columns); c++ {
			if FlagSet(row[c]) {
				certified++
			}
		}
		if workerCount > 0 && certified == 0 {
			warns = append(warns, Diagnostic{Line: line, Field: "equipment_code",
				Message: fmt.Sprintf("equipment %q has no certified workers", code)})
		}
	}

	switch sentinels {
	case 1:
	case 0:
		errs = append(errs, Diagnostic{Field: "equipment_code",
			Message: fmt.Sprintf("missing sentinel cost row %q", schema.CostSentinel)})
	default:
		errs = append(errs, Diagnostic{Field: "equipment_code",
			Message: fmt.Sprintf("sentinel cost row %q appears %d times, expected exactly one", schema.CostSentinel, sentinels)})
	}
	return errs, warns
}

func validateProducts(ctx context.Context, set RowSet, backend Backend) (errs, warns []Diagnostic) {
	idx := MakeHeaderIndex(set.Columns)

	type versionKey struct{ product, version string }
	type stepRow struct {
		line int
		deps []Dep
	}
	versions := make(map[versionKey]map[string]stepRow)

	for i, row := range set.Rows {
		line := i + 2
		key := versionKey{Cell(row, idx, "product_name"), Cell(row, idx, "version_name")}
		code := Cell(row, idx, "step_code")

		steps := versions[key]
		if steps == nil {
			steps = make(map[string]stepRow)
			versions[key] = steps
		}
		if prev, dup := steps[code]; dup {
			errs = append(errs, Diagnostic{Line: line, Field: "step_code",
				Message: fmt.Sprintf("duplicate step code %q in %s %s (first at line %d)", code, key.product, key.version, prev.line)})
			continue
		}

		deps, err := DecodeDeps(Cell(row, idx, "dependencies"))
		if err != nil {
			errs = append(errs, Diagnostic{Line: line, Field: "dependencies", Message: err.Error()})
		}
		steps[code] = stepRow{line: line, deps: deps}
	}

	for key, steps := range versions {
		graph := make(map[string][]string, len(steps))
		for code, sr := range steps {
			for _, dep := range sr.deps {
				if _, ok := steps[dep.Code]; !ok {
					errs = append(errs, Diagnostic{Line: sr.line, Field: "dependencies",
						Message: fmt.Sprintf("dependency %q does not resolve to a step in %s %s", dep.Code, key.product, key.version)})
					continue
				}
				graph[code] = append(graph[code], dep.Code)
			}
			if _, ok := graph[code]; !ok {
				graph[code] = nil
			}
		}
		if cycle := FindCycle(graph); cycle != nil {
			errs = append(errs, Diagnostic{Field: "dependencies",
				Message: fmt.Sprintf("dependency cycle in %s %s: %s", key.product, key.version, strings.Join(cycle, " -> "))})
		}
	}
	return errs, warns
}

func validateOrders(ctx context.Context, set RowSet, backend Backend) (errs, warns []Diagnostic) {
	idx := MakeHeaderIndex(set.Columns)

	for i, row := range set.Rows {
		line := i + 2
		product := Cell(row, idx, "product_name")

		known, err := backend.ProductExists(ctx, product)
		if err != nil {
			errs = append(errs, Diagnostic{Line: line, Message: fmt.Sprintf("product lookup: %v", err)})
			continue
		}
		if !known {
			errs = append(errs, Diagnostic{Line: line, Field: "product_name",
				Message: fmt.Sprintf("unknown product %q (import products first)", product)})
		}
	}
	return errs, warns
}

func validateProduction(ctx context.Context, set RowSet, backend Backend) (errs, warns []Diagnostic) {
	idx := MakeHeaderIndex(set.Columns)

	workers, err := backend.Workers(ctx)
	if err != nil {
		return []Diagnostic{{Message: fmt.Sprintf("worker lookup: %v", err)}}, nil
	}

	stepCache := make(map[string]map[string]bool)

	for i, row := range set.Rows {
		line := i + 2
		product := Cell(row, idx, "product_name")
		version := Cell(row, idx, "version_name")
		stepCode := Cell(row, idx, "step_code")
		worker := Cell(row, idx, "worker_name")

		cacheKey := product + "\x00" + version
		steps, ok := stepCache[cacheKey]
		if !ok {
			steps, err = backend.StepCodes(ctx, product, version)
			if err != nil {
				errs = append(errs, Diagnostic{Line: line, Message: fmt.Sprintf("step lookup: %v", err)})
				continue
			}
			stepCache[cacheKey] = steps
		}

		if !steps[stepCode] {
			errs = append(errs, Diagnostic{Line: line, Field: "step_code",
				Message: fmt.Sprintf("step %q does not exist for %s %s", stepCode, product, version)})
		}
		if !workers[worker] {
			errs = append(errs, Diagnostic{Line: line, Field: "worker_name",
				Message: fmt.Sprintf("worker %q not in equipment matrix", worker)})
		}

		start, _ := ParseClockCell(Cell(row, idx, "start_time"))
		end, _ := ParseClockCell(Cell(row, idx, "end_time"))
		if start != "" && end != "" && start > end {
			errs = append(errs, Diagnostic{Line: line, Field: "start_time",
				Message: fmt.Sprintf("start time %s after end time %s", start, end)})
		}

		if units, ok := ParseIntCell(Cell(row, idx, "units_produced")); ok && units == 0 {
			warns = append(warns, Diagnostic{Line: line, Field: "units_produced",
				Message: "no units produced"})
		}
	}
	return errs, warns
}
