package core

import (
	"context"
	"strings"
	"testing"

	"github.com/tenjam/shopsync/internal/schema"
)

func equipSet(rows ...[]string) RowSet {
	columns := append(append([]string{}, schema.EquipmentColumns...), "Noe", "Cyndi")
	return RowSet{Columns: columns, Rows: rows}
}

func TestValidateEquipment(t *testing.T) {
	sentinel := []string{"_COST", "", "Worker Cost Per Hour", "0", "0", "19.5", "22"}

	t.Run("valid batch", func(t *testing.T) {
		set := equipSet(
			sentinel,
			[]string{"CFA1", "Cut", "Cut - Foam", "2", "0", "Y", ""},
		)
		errs, warns := validateEquipment(context.Background(), set, nil)
		if len(errs) != 0 || len(warns) != 0 {
			t.Errorf("errs = %v, warns = %v", errs, warns)
		}
	})

	t.Run("missing sentinel", func(t *testing.T) {
		set := equipSet([]string{"CFA1", "Cut", "Cut - Foam", "2", "0", "Y", ""})
		errs, _ := validateEquipment(context.Background(), set, nil)
		if len(errs) != 1 || !strings.Contains(errs[0].Message, "_COST") {
			t.Errorf("errs = %v", errs)
		}
	})

	t.Run("duplicate sentinel", func(t *testing.T) {
		set := equipSet(sentinel, sentinel)
		errs, _ := validateEquipment(context.Background(), set, nil)
		if len(errs) != 1 || !strings.Contains(errs[0].Message, "exactly one") {
			t.Errorf("errs = %v", errs)
		}
	})

	t.Run("duplicate code", func(t *testing.T) {
		set := equipSet(
			sentinel,
			[]string{"CFA1", "Cut", "Cut - Foam", "2", "0", "Y", ""},
			[]string{"CFA1", "Cut", "Cut - Foam", "1", "0", "", "Y"},
		)
		errs, _ := validateEquipment(context.Background(), set, nil)
		if len(errs) != 1 || !strings.Contains(errs[0].Message, "duplicate equipment code") {
			t.Errorf("errs = %v", errs)
		}
	})

	t.Run("no certified workers warns", func(t *testing.T) {
		set := equipSet(
			sentinel,
			[]string{"WA3", "Weld", "Weld", "1", "0", "", ""},
		)
		errs, warns := validateEquipment(context.Background(), set, nil)
		if len(errs) != 0 {
			t.Fatalf("errs = %v", errs)
		}
		if len(warns) != 1 || !strings.Contains(warns[0].Message, "no certified workers") {
			t.Errorf("warns = %v", warns)
		}
	})
}

func productSet(rows ...[]string) RowSet {
	return RowSet{Columns: append([]string{}, schema.ProductColumns...), Rows: rows}
}

func stepRow(product, version, code, deps string) []string {
	return []string{product, version, "1", "", code, "", "Cut", "", "task", "60", "CFA1", deps}
}

func TestValidateProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("resolved chain", func(t *testing.T) {
		set := productSet(
			stepRow("Tenjam Blue", "v1.0", "S1", ""),
			stepRow("Tenjam Blue", "v1.0", "S2", "S1:finish"),
		)
		errs, _ := validateProducts(ctx, set, nil)
		if len(errs) != 0 {
			t.Errorf("errs = %v", errs)
		}
	})

	t.Run("duplicate step code per version", func(t *testing.T) {
		set := productSet(
			stepRow("Tenjam Blue", "v1.0", "S1", ""),
			stepRow("Tenjam Blue", "v1.0", "S1", ""),
			stepRow("Tenjam Blue", "v2.0", "S1", ""), // different version, fine
		)
		errs, _ := validateProducts(ctx, set, nil)
		if len(errs) != 1 || !strings.Contains(errs[0].Message, "duplicate step code") {
			t.Errorf("errs = %v", errs)
		}
	})

	t.Run("unresolved dependency", func(t *testing.T) {
		set := productSet(stepRow("Tenjam Blue", "v1.0", "S1", "S9:finish"))
		errs, _ := validateProducts(ctx, set, nil)
		if len(errs) != 1 || !strings.Contains(errs[0].Message, "does not resolve") {
			t.Errorf("errs = %v", errs)
		}
	})

	t.Run("dependency cycle", func(t *testing.T) {
		set := productSet(
			stepRow("Tenjam Blue", "v1.0", "S1", "S2:finish"),
			stepRow("Tenjam Blue", "v1.0", "S2", "S1:finish"),
		)
		errs, _ := validateProducts(ctx, set, nil)
		if len(errs) != 1 || !strings.Contains(errs[0].Message, "dependency cycle") {
			t.Errorf("errs = %v", errs)
		}
	})

	t.Run("malformed dependency encoding", func(t *testing.T) {
		set := productSet(stepRow("Tenjam Blue", "v1.0", "S1", "S2:sideways"))
		errs, _ := validateProducts(ctx, set, nil)
		if len(errs) == 0 {
			t.Error("bad relation accepted")
		}
	})
}

func productionSet(rows ...[]string) RowSet {
	return RowSet{Columns: append([]string{}, schema.ProductionColumns...), Rows: rows}
}

func eventRow(product, step, worker, start, end, units string) []string {
	return []string{product, "2025-06-01", "v1.0", step, worker, "2025-03-14", start, end, units}
}

func TestValidateProduction(t *testing.T) {
	backend := &fakeBackend{
		workers: map[string]bool{"Noe": true},
		steps: map[string]map[string]bool{
			"Tenjam Blue\x00v1.0": {"S1": true},
		},
	}
	ctx := context.Background()

	t.Run("valid event", func(t *testing.T) {
		set := productionSet(eventRow("Tenjam Blue", "S1", "Noe", "09:00", "13:00", "8"))
		errs, warns := validateProduction(ctx, set, backend)
		if len(errs) != 0 || len(warns) != 0 {
			t.Errorf("errs = %v, warns = %v", errs, warns)
		}
	})

	t.Run("unknown step and worker", func(t *testing.T) {
		set := productionSet(eventRow("Tenjam Blue", "S9", "Ghost", "", "", "1"))
		errs, _ := validateProduction(ctx, set, backend)
		if len(errs) != 2 {
			t.Fatalf("errs = %v", errs)
		}
	})

	t.Run("start after end", func(t *testing.T) {
		set := productionSet(eventRow("Tenjam Blue", "S1", "Noe", "14:00", "09:00", "3"))
		errs, _ := validateProduction(ctx, set, backend)
		if len(errs) != 1 || !strings.Contains(errs[0].Message, "after end time") {
			t.Errorf("errs = %v", errs)
		}
	})

	t.Run("zero units warns", func(t *testing.T) {
		set := productionSet(eventRow("Tenjam Blue", "S1", "Noe", "", "", "0"))
		errs, warns := validateProduction(ctx, set, backend)
		if len(errs) != 0 {
			t.Fatalf("errs = %v", errs)
		}
		if len(warns) != 1 || !strings.Contains(warns[0].Message, "no units") {
			t.Errorf("warns = %v", warns)
		}
	})
}

func TestValidateFieldsDiagnostics(t *testing.T) {
	def, ok := Get(EntityOrders)
	if !ok {
		t.Fatal("orders entity not registered")
	}
	idx := MakeHeaderIndex(def.Columns)

	tests := []struct {
		name      string
		row       []string
		wantField string
	}{
		{"valid", []string{"Tenjam Blue", "10", "2025-06-01", "pending"}, ""},
		{"zero quantity", []string{"Tenjam Blue", "0", "2025-06-01", "pending"}, "quantity"},
		{"bad date", []string{"Tenjam Blue", "10", "June 1st", "pending"}, "due_date"},
		{"bad status", []string{"Tenjam Blue", "10", "2025-06-01", "shipped"}, "status"},
		{"empty required", []string{"Tenjam Blue", "", "2025-06-01", "pending"}, "quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := ValidateFields(def, idx, tt.row, 2)
			if tt.wantField == "" {
				if len(diags) != 0 {
					t.Errorf("diags = %v", diags)
				}
				return
			}
			if len(diags) != 1 || diags[0].Field != tt.wantField {
				t.Errorf("diags = %v, want one on %q", diags, tt.wantField)
			}
		})
	}
}
