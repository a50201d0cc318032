// Package store provides the backend implementations for confirmed
// imports: an in-memory store used for tests and single-shot conversions,
// and a PostgreSQL store for the real system. Both satisfy core.Backend.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tenjam/shopsync/internal/core"
	"github.com/tenjam/shopsync/internal/schema"
)

type orderRec struct {
	Product  string
	Quantity int
	DueDate  string
	Status   string
}

// Memory is a mutex-guarded in-memory backend. Apply stages the whole
// batch before touching shared state, so a failed batch leaves the store
// unchanged.
type Memory struct {
	mu      sync.RWMutex
	steps   map[string]map[string]map[string]bool // product -> version -> step codes
	workers map[string]bool
	costs   map[string]float64
	equip   map[string]bool
	orders  []orderRec
	events  int
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{
		steps:   make(map[string]map[string]map[string]bool),
		workers: make(map[string]bool),
		costs:   make(map[string]float64),
		equip:   make(map[string]bool),
	}
}

// Apply persists one validated batch. All parsing happens before any state
// mutation; either the whole batch lands or none of it does.
func (m *Memory) Apply(ctx context.Context, batch core.Batch) (core.CommitSummary, error) {
	summary := core.CommitSummary{
		Entity:    batch.Entity,
		Counts:    make(map[string]int),
		AppliedAt: time.Now().UTC(),
	}

	switch batch.Entity {
	case core.EntityEquipmentMatrix:
		return m.applyEquipment(batch.Set, summary)
	case core.EntityProducts:
		return m.applyProducts(batch.Set, summary)
	case core.EntityOrders:
		return m.applyOrders(batch.Set, summary)
	case core.EntityProductionHistory:
		return m.applyProduction(batch.Set, summary)
	default:
		return summary, fmt.Errorf("unknown entity type: %s", batch.Entity)
	}
}

func (m *Memory) applyEquipment(set core.RowSet, summary core.CommitSummary) (core.CommitSummary, error) {
	fixed := len(schema.EquipmentColumns)
	if len(set.Columns) < fixed {
		return summary, fmt.Errorf("equipment batch: %d columns, want at least %d", len(set.Columns), fixed)
	}
	workerNames := set.Columns[fixed:]

	idx := core.MakeHeaderIndex(set.Columns)
	workers := make(map[string]bool, len(workerNames))
	costs := make(map[string]float64, len(workerNames))
	equip := make(map[string]bool)

	for _, name := range workerNames {
		workers[name] = true
	}

	for _, row := range set.Rows {
		code := core.Cell(row, idx, "equipment_code")
		if code == schema.CostSentinel {
			for i, name := range workerNames {
				col := fixed + i
				if col < len(row) {
					if v, ok := core.ParseNumericCell(row[col]); ok {
						costs[name] = v
					}
				}
			}
			continue
		}
		equip[code] = true
	}

	m.mu.Lock()
	m.workers = workers
	m.costs = costs
	m.equip = equip
	m.mu.Unlock()

	summary.Committed = len(set.Rows)
	summary.Counts["equipment"] = len(equip)
	summary.Counts["workers"] = len(workers)
	return summary, nil
}

func (m *Memory) applyProducts(set core.RowSet, summary core.CommitSummary) (core.CommitSummary, error) {
	idx := core.MakeHeaderIndex(set.Columns)

	staged := make(map[string]map[string]map[string]bool)
	versions := 0
	for _, row := range set.Rows {
		product := core.Cell(row, idx, "product_name")
		version := core.Cell(row, idx, "version_name")
		code := core.Cell(row, idx, "step_code")

		if staged[product] == nil {
			staged[product] = make(map[string]map[string]bool)
		}
		if staged[product][version] == nil {
			staged[product][version] = make(map[string]bool)
			versions++
		}
		staged[product][version][code] = true
	}

	m.mu.Lock()
	for product, byVersion := range staged {
		if m.steps[product] == nil {
			m.steps[product] = make(map[string]map[string]bool)
		}
		for version, codes := range byVersion {
			m.steps[product][version] = codes
		}
	}
	m.mu.Unlock()

	summary.Committed = len(set.Rows)
	summary.Counts["steps"] = len(set.Rows)
	summary.Counts["products"] = len(staged)
	summary.Counts["versions"] = versions
	return summary, nil
}

func (m *Memory) applyOrders(set core.RowSet, summary core.CommitSummary) (core.CommitSummary, error) {
	idx := core.MakeHeaderIndex(set.Columns)

	staged := make([]orderRec, 0, len(set.Rows))
	for _, row := range set.Rows {
		qty, _ := core.ParseIntCell(core.Cell(row, idx, "quantity"))
		staged = append(staged, orderRec{
			Product:  core.Cell(row, idx, "product_name"),
			Quantity: qty,
			DueDate:  core.Cell(row, idx, "due_date"),
			Status:   core.Cell(row, idx, "status"),
		})
	}

	m.mu.Lock()
	m.orders = append(m.orders, staged...)
	m.mu.Unlock()

	summary.Committed = len(staged)
	summary.Counts["orders"] = len(staged)
	return summary, nil
}

func (m *Memory) applyProduction(set core.RowSet, summary core.CommitSummary) (core.CommitSummary, error) {
	m.mu.Lock()
	m.events += len(set.Rows)
	m.mu.Unlock()

	summary.Committed = len(set.Rows)
	summary.Counts["events"] = len(set.Rows)
	return summary, nil
}

// StepCodes returns the committed step codes for a product version.
func (m *Memory) StepCodes(ctx context.Context, product, version string) (map[string]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]bool)
	for code := range m.steps[product][version] {
		out[code] = true
	}
	return out, nil
}

// Workers returns the worker identities from the committed equipment matrix.
func (m *Memory) Workers(ctx context.Context) (map[string]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]bool, len(m.workers))
	for name := range m.workers {
		out[name] = true
	}
	return out, nil
}

// ProductExists reports whether a product has committed steps.
func (m *Memory) ProductExists(ctx context.Context, product string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.steps[product]) > 0, nil
}

// Orders returns the committed orders. Test helper.
func (m *Memory) Orders() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders)
}

// Events returns the committed production event count. Test helper.
func (m *Memory) Events() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.events
}
