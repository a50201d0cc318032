package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/tenjam/shopsync/internal/schema"
)

// ValidateFunc runs entity-specific referential checks over a complete,
// field-valid row set. Cross-entity references are resolved against the
// backend's committed state.
type ValidateFunc func(ctx context.Context, set RowSet, backend Backend) (errs, warns []Diagnostic)

// Definition binds one entity type to its column contract, field specs, and
// referential validator.
type Definition struct {
	Type       EntityType
	Columns    []string           // fixed contract columns, in wire order
	FieldSpecs []schema.FieldSpec // per-column validation rules
	Dynamic    bool               // trailing runtime-discovered columns follow the contract
	Validate   ValidateFunc
}

var (
	registry   = make(map[EntityType]Definition)
	registryMu sync.RWMutex
)

// Register adds an entity definition. Panics on duplicate registration;
// definitions are wired once at init time.
func Register(def Definition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Type]; exists {
		panic(fmt.Sprintf("entity already registered: %s", def.Type))
	}
	registry[def.Type] = def
}

// Get returns the definition for an entity type.
func Get(entity EntityType) (Definition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[entity]
	return def, ok
}
