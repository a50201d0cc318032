package schema

import "github.com/tenjam/shopsync/internal/canon"

// CostSentinel is the reserved equipment_code of the synthetic capability
// row that carries per-worker hourly cost instead of certification flags.
// Exactly one must be present in every normalized equipment batch.
const CostSentinel = "_COST"

// OrderStatuses is the closed set of order states.
var OrderStatuses = []string{"pending", "in_progress", "done"}

// EquipmentColumns is the fixed prefix of the equipment-matrix contract.
// Worker columns follow, discovered from the source header at read time.
var EquipmentColumns = []string{
	"equipment_code", "work_category", "work_type", "station_count", "hourly_cost",
}

// EquipmentFieldSpecs validates the fixed columns of an equipment row.
// The dynamic worker columns are flag-typed and validated separately.
var EquipmentFieldSpecs = []FieldSpec{
	{Name: "equipment_code", Type: FieldText, Required: true, Key: true},
	{Name: "work_category", Type: FieldText},
	{Name: "work_type", Type: FieldText},
	{Name: "station_count", Type: FieldInt, Min: 0},
	{Name: "hourly_cost", Type: FieldNumeric, Min: 0},
}

// ProductColumns is the process-step contract.
var ProductColumns = []string{
	"product_name", "version_name", "version_number", "is_default",
	"step_code", "external_id", "category", "component", "task_name",
	"time_seconds", "equipment_code", "dependencies",
}

// ProductFieldSpecs validates one process-step row.
var ProductFieldSpecs = []FieldSpec{
	{Name: "product_name", Type: FieldText, Required: true, Normalizer: canon.Product},
	{Name: "version_name", Type: FieldText, Required: true},
	{Name: "version_number", Type: FieldInt, Min: 1, Required: true},
	{Name: "is_default", Type: FieldFlag},
	{Name: "step_code", Type: FieldText, Required: true, Key: true},
	{Name: "external_id", Type: FieldText},
	{Name: "category", Type: FieldText},
	{Name: "component", Type: FieldText},
	{Name: "task_name", Type: FieldText},
	{Name: "time_seconds", Type: FieldInt, Min: 0},
	{Name: "equipment_code", Type: FieldText},
	{Name: "dependencies", Type: FieldText},
}

// OrderColumns is the order contract.
var OrderColumns = []string{"product_name", "quantity", "due_date", "status"}

// OrderFieldSpecs validates one order row.
var OrderFieldSpecs = []FieldSpec{
	{Name: "product_name", Type: FieldText, Required: true, Key: true, Normalizer: canon.Product},
	{Name: "quantity", Type: FieldInt, Min: 1, Required: true},
	{Name: "due_date", Type: FieldDate, Required: true},
	{Name: "status", Type: FieldEnum, Required: true, EnumValues: OrderStatuses},
}

// ProductionColumns is the production-event contract.
var ProductionColumns = []string{
	"product_name", "due_date", "version_name", "step_code",
	"worker_name", "work_date", "start_time", "end_time", "units_produced",
}

// ProductionFieldSpecs validates one production-event row.
var ProductionFieldSpecs = []FieldSpec{
	{Name: "product_name", Type: FieldText, Required: true, Normalizer: canon.Product},
	{Name: "due_date", Type: FieldDate, Required: true},
	{Name: "version_name", Type: FieldText, Required: true},
	{Name: "step_code", Type: FieldText, Required: true, Key: true},
	{Name: "worker_name", Type: FieldText, Required: true, Normalizer: canon.Worker},
	{Name: "work_date", Type: FieldDate, Required: true},
	{Name: "start_time", Type: FieldClock},
	{Name: "end_time", Type: FieldClock},
	{Name: "units_produced", Type: FieldInt, Min: 0},
}
