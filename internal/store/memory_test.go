package store

import (
	"context"
	"testing"

	"github.com/tenjam/shopsync/internal/core"
	"github.com/tenjam/shopsync/internal/schema"
)

func applyBatch(t *testing.T, m *Memory, entity core.EntityType, set core.RowSet) core.CommitSummary {
	t.Helper()
	summary, err := m.Apply(context.Background(), core.Batch{Entity: entity, Set: set})
	if err != nil {
		t.Fatalf("apply %s: %v", entity, err)
	}
	return summary
}

func TestMemoryApplyEquipment(t *testing.T) {
	m := NewMemory()
	set := core.RowSet{
		Columns: append(append([]string{}, schema.EquipmentColumns...), "Noe", "Cyndi"),
		Rows: [][]string{
			{"_COST", "", "Worker Cost Per Hour", "0", "0", "19.5", "22"},
			{"CFA1", "Cut", "Cut - Foam", "2", "0", "Y", ""},
			{"WA3", "Weld", "Weld", "1", "0", "", "Y"},
		},
	}

	summary := applyBatch(t, m, core.EntityEquipmentMatrix, set)
	if summary.Committed != 3 {
		t.Errorf("committed = %d, want 3", summary.Committed)
	}
	if summary.Counts["equipment"] != 2 || summary.Counts["workers"] != 2 {
		t.Errorf("counts = %v", summary.Counts)
	}

	workers, err := m.Workers(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !workers["Noe"] || !workers["Cyndi"] || len(workers) != 2 {
		t.Errorf("workers = %v", workers)
	}

	// A re-import replaces the matrix wholesale.
	replacement := core.RowSet{
		Columns: append(append([]string{}, schema.EquipmentColumns...), "Maricella"),
		Rows: [][]string{
			{"_COST", "", "Worker Cost Per Hour", "0", "0", "18"},
			{"SA1", "Sew", "Sew - Cover", "3", "0", "Y"},
		},
	}
	applyBatch(t, m, core.EntityEquipmentMatrix, replacement)

	workers, _ = m.Workers(context.Background())
	if len(workers) != 1 || !workers["Maricella"] {
		t.Errorf("workers after replacement = %v", workers)
	}
}

func TestMemoryApplyProducts(t *testing.T) {
	m := NewMemory()
	set := core.RowSet{
		Columns: append([]string{}, schema.ProductColumns...),
		Rows: [][]string{
			{"Tenjam Blue", "v1.0", "1", "Y", "S1", "", "Cut", "", "t", "60", "CFA1", ""},
			{"Tenjam Blue", "v1.0", "1", "Y", "S2", "", "Sew", "", "t", "90", "SA1", "S1:finish"},
			{"Tenjam White", "v1.0", "1", "", "S1", "", "Cut", "", "t", "60", "CFA1", ""},
		},
	}

	summary := applyBatch(t, m, core.EntityProducts, set)
	if summary.Committed != 3 {
		t.Errorf("committed = %d, want 3", summary.Committed)
	}
	if summary.Counts["products"] != 2 || summary.Counts["versions"] != 2 || summary.Counts["steps"] != 3 {
		t.Errorf("counts = %v", summary.Counts)
	}

	ctx := context.Background()
	codes, err := m.StepCodes(ctx, "Tenjam Blue", "v1.0")
	if err != nil {
		t.Fatal(err)
	}
	if !codes["S1"] || !codes["S2"] || len(codes) != 2 {
		t.Errorf("codes = %v", codes)
	}

	known, _ := m.ProductExists(ctx, "Tenjam Blue")
	if !known {
		t.Error("Tenjam Blue not known after import")
	}
	unknown, _ := m.ProductExists(ctx, "Chillbean")
	if unknown {
		t.Error("Chillbean reported known")
	}

	// Re-importing one version replaces that version's steps only.
	again := core.RowSet{
		Columns: append([]string{}, schema.ProductColumns...),
		Rows: [][]string{
			{"Tenjam Blue", "v1.0", "1", "Y", "S9", "", "Cut", "", "t", "60", "CFA1", ""},
		},
	}
	applyBatch(t, m, core.EntityProducts, again)

	codes, _ = m.StepCodes(ctx, "Tenjam Blue", "v1.0")
	if len(codes) != 1 || !codes["S9"] {
		t.Errorf("codes after re-import = %v", codes)
	}
	white, _ := m.StepCodes(ctx, "Tenjam White", "v1.0")
	if len(white) != 1 {
		t.Errorf("unrelated version disturbed: %v", white)
	}
}

func TestMemoryApplyOrdersAndProduction(t *testing.T) {
	m := NewMemory()

	orders := core.RowSet{
		Columns: append([]string{}, schema.OrderColumns...),
		Rows: [][]string{
			{"Tenjam Blue", "10", "2025-06-01", "pending"},
			{"Tenjam White", "5", "2025-06-15", "done"},
		},
	}
	summary := applyBatch(t, m, core.EntityOrders, orders)
	if summary.Committed != 2 || m.Orders() != 2 {
		t.Errorf("committed = %d, stored = %d", summary.Committed, m.Orders())
	}

	// Orders accumulate across batches.
	applyBatch(t, m, core.EntityOrders, orders)
	if m.Orders() != 4 {
		t.Errorf("orders after second batch = %d, want 4", m.Orders())
	}

	events := core.RowSet{
		Columns: append([]string{}, schema.ProductionColumns...),
		Rows: [][]string{
			{"Tenjam Blue", "2025-06-01", "v1.0", "S1", "Noe", "2025-03-14", "09:00", "13:00", "8"},
		},
	}
	summary = applyBatch(t, m, core.EntityProductionHistory, events)
	if summary.Committed != 1 || m.Events() != 1 {
		t.Errorf("committed = %d, events = %d", summary.Committed, m.Events())
	}
}

func TestMemoryApplyUnknownEntity(t *testing.T) {
	m := NewMemory()
	_, err := m.Apply(context.Background(), core.Batch{Entity: core.EntityType("widgets")})
	if err == nil {
		t.Fatal("unknown entity accepted")
	}
}
