// Package core implements the import encoding and two-phase commit
// protocol: tabular normalization of spreadsheet regions into fixed column
// contracts, dependency encoding between process steps, and the
// preview/confirm session protocol that commits validated batches to a
// backend. The package has no HTTP or UI dependencies.
package core

import (
	"context"
	"fmt"
	"time"
)

// EntityType identifies one of the importable entity kinds. Later entity
// types reference earlier ones, so batches import them in ImportOrder.
type EntityType string

const (
	EntityEquipmentMatrix   EntityType = "equipment-matrix"
	EntityProducts          EntityType = "products"
	EntityOrders            EntityType = "orders"
	EntityProductionHistory EntityType = "production-history"
)

// ImportOrder is the dependency order for batch imports: equipment before
// steps before orders before production events.
var ImportOrder = []EntityType{
	EntityEquipmentMatrix,
	EntityProducts,
	EntityOrders,
	EntityProductionHistory,
}

// ParseEntityType validates an entity-type string from the wire.
func ParseEntityType(s string) (EntityType, bool) {
	switch EntityType(s) {
	case EntityEquipmentMatrix, EntityProducts, EntityOrders, EntityProductionHistory:
		return EntityType(s), true
	default:
		return "", false
	}
}

// HeaderIndex maps column names (lowercase) to their position in a row.
type HeaderIndex map[string]int

// RowSet is a normalized, immutable batch of rows sharing one header.
type RowSet struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Diagnostic is a single validation error or warning tied to a source line.
type Diagnostic struct {
	Line    int    `json:"line,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	switch {
	case d.Line > 0 && d.Field != "":
		return fmt.Sprintf("line %d, %s: %s", d.Line, d.Field, d.Message)
	case d.Line > 0:
		return fmt.Sprintf("line %d: %s", d.Line, d.Message)
	case d.Field != "":
		return fmt.Sprintf("%s: %s", d.Field, d.Message)
	default:
		return d.Message
	}
}

// PreviewSummary contains the row counts from preview analysis.
type PreviewSummary struct {
	TotalRows   int `json:"totalRows"`
	ValidRows   int `json:"validRows"`
	SkippedRows int `json:"skippedRows"`
	ErrorRows   int `json:"errorRows"`
	Warnings    int `json:"warnings"`
}

// PreviewResult is the outcome of validating one entity batch. The token
// addresses the captured snapshot for a later Confirm; when Errors is
// non-empty the session is blocked and Confirm will reject the token.
type PreviewResult struct {
	Token    string         `json:"importToken"`
	Entity   EntityType     `json:"entityType"`
	Summary  PreviewSummary `json:"summary"`
	Errors   []Diagnostic   `json:"errors"`
	Warnings []Diagnostic   `json:"warnings"`
}

// Blocked reports whether the preview carries errors that prevent confirm.
func (p *PreviewResult) Blocked() bool { return len(p.Errors) > 0 }

// CommitSummary reports what a confirmed import wrote to the backend.
type CommitSummary struct {
	Entity    EntityType     `json:"entityType"`
	Committed int            `json:"committed"`
	Counts    map[string]int `json:"counts,omitempty"`
	AppliedAt time.Time      `json:"appliedAt"`
}

// Batch is the unit handed to the backend on confirm: the exact row set
// captured at preview time.
type Batch struct {
	Entity EntityType
	Set    RowSet
}

// Backend is the persistence boundary for confirmed imports. Implementations
// must apply a batch atomically: either every row is persisted or none.
// The lookup methods back cross-entity referential checks during preview and
// reflect previously committed batches only.
type Backend interface {
	// Apply persists a validated batch and returns the commit counts.
	Apply(ctx context.Context, batch Batch) (CommitSummary, error)

	// StepCodes returns the committed step codes for a product version.
	StepCodes(ctx context.Context, product, version string) (map[string]bool, error)

	// Workers returns the worker identities known to the committed
	// equipment matrix.
	Workers(ctx context.Context) (map[string]bool, error)

	// ProductExists reports whether a product has committed steps.
	ProductExists(ctx context.Context, product string) (bool, error)
}
