// Package schema declares the column contracts for the normalized
// interchange CSVs and the shape descriptors for the raw spreadsheet
// regions they are produced from.
//
// The column order of each contract is fixed and versioned: it is the wire
// format between the converter and the import API, and the import API
// locates columns by header name, never by position.
package schema

// FieldType represents the expected data type for a CSV field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldEnum
	FieldInt
	FieldNumeric
	FieldDate
	FieldClock
	FieldFlag
)

// FieldSpec defines validation rules for a single CSV column.
type FieldSpec struct {
	Name       string               // Column header name
	Type       FieldType            // Expected data type
	Required   bool                 // Value must be non-empty
	Key        bool                 // Entity-key column: empty value means the row is a separator, not data
	Min        int                  // Lower bound for FieldInt (inclusive); ignored for other types
	EnumValues []string             // Valid values for FieldEnum
	Normalizer func(string) string  // Optional canonicalization applied before validation
}

// MatrixRange bounds the header columns scanned for dynamic,
// identity-keyed columns (worker names in the certification matrix).
// Both bounds are zero-based and the range is half-open: [First, Last).
type MatrixRange struct {
	First int
	Last  int
}

// Shape describes the geometry of one raw spreadsheet region.
type Shape struct {
	Name       string       // Region name, used in error messages
	HeaderRows int          // Rows preceding the data
	KeyColumn  int          // Column whose emptiness marks a non-data row
	MinColumns int          // Fewer columns than this is a shape error
	Matrix     *MatrixRange // Dynamic identity columns, nil when the region has none
}

// Raw work-steps region column positions.
const (
	StepColDependency = 0
	StepColRelation   = 1
	StepColCode       = 2
	StepColExternalID = 3
	StepColCategory   = 4
	StepColComponent  = 5
	StepColTaskName   = 6
	StepColSeconds    = 7
	StepColEquipment  = 8
)

// Raw equipment-matrix region column positions.
const (
	EquipColStations = 0
	EquipColCode     = 1
	EquipColWorkType = 2
)

// WorkStepsShape describes the "Work Steps" sheet region.
var WorkStepsShape = Shape{
	Name:       "work-steps",
	HeaderRows: 1,
	KeyColumn:  StepColCode,
	MinColumns: 9,
}

// EquipMatrixShape describes the "Equip Matrix" sheet region. Worker names
// occupy header columns 3-15 in the shop's current spreadsheet; the bound
// is part of the descriptor so a layout change is a config edit, not a
// code change.
var EquipMatrixShape = Shape{
	Name:       "equipment-matrix",
	HeaderRows: 1,
	KeyColumn:  EquipColCode,
	MinColumns: 3,
	Matrix:     &MatrixRange{First: 3, Last: 16},
}

// ProductionDataShape describes the "Production Data" sheet region. Unlike
// the other regions its columns are located by header name.
var ProductionDataShape = Shape{
	Name:       "production-data",
	HeaderRows: 1,
	KeyColumn:  0,
	MinColumns: 7,
}

// OrdersShape describes the orders list region.
var OrdersShape = Shape{
	Name:       "orders",
	HeaderRows: 1,
	KeyColumn:  0,
	MinColumns: 4,
}
