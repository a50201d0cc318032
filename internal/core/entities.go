package core

import "github.com/tenjam/shopsync/internal/schema"

func init() {
	Register(Definition{
		Type:       EntityEquipmentMatrix,
		Columns:    schema.EquipmentColumns,
		FieldSpecs: schema.EquipmentFieldSpecs,
		Dynamic:    true,
		Validate:   validateEquipment,
	})
	Register(Definition{
		Type:       EntityProducts,
		Columns:    schema.ProductColumns,
		FieldSpecs: schema.ProductFieldSpecs,
		Validate:   validateProducts,
	})
	Register(Definition{
		Type:       EntityOrders,
		Columns:    schema.OrderColumns,
		FieldSpecs: schema.OrderFieldSpecs,
		Validate:   validateOrders,
	})
	Register(Definition{
		Type:       EntityProductionHistory,
		Columns:    schema.ProductionColumns,
		FieldSpecs: schema.ProductionFieldSpecs,
		Validate:   validateProduction,
	})
}
