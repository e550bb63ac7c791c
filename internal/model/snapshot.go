package model

import "github.com/shopspring/decimal"

// ProductionType identifies the manufacturing technology of a component.
type ProductionType string

const (
	TechFDM   ProductionType = "fdm"
	TechResin ProductionType = "resin"
	TechCNC   ProductionType = "cnc"
	TechOther ProductionType = "other"
)

func (t ProductionType) IsValid() bool {
	switch t {
	case TechFDM, TechResin, TechCNC, TechOther:
		return true
	}
	return false
}

// SnapshotTypeMixed is the snapshot type when more than one component is present.
const SnapshotTypeMixed = "mixed"

// AppliedRates is the value copy of the rate table captured when a snapshot
// was computed. It is embedded in the entity, never a reference to the live
// settings object, so historical cost records stay decoupled from later rate
// edits.
type AppliedRates struct {
	ElectricityPrice        decimal.Decimal `json:"electricityPrice"`
	MachineDepreciationRate decimal.Decimal `json:"machineDepreciationRate"`
	MaterialCostPerUnit     decimal.Decimal `json:"materialCostPerUnit"` // per kg (FDM) or per liter (resin)
	HumanHourlyRate         decimal.Decimal `json:"humanHourlyRate"`
}

// ComponentRates is the per-component slice of AppliedRates.
type ComponentRates struct {
	MachineDepreciationRate decimal.Decimal `json:"machineDepreciationRate"`
	MaterialCostPerUnit     decimal.Decimal `json:"materialCostPerUnit"`
	ElectricityPrice        decimal.Decimal `json:"electricityPrice"`
}

// ProductionComponent is one machine run inside a manufactured job.
type ProductionComponent struct {
	ID          string         `json:"id"`
	Type        ProductionType `json:"type"`
	MachineID   string         `json:"machineId,omitempty"`
	MachineName string         `json:"machineName,omitempty"`

	MachineTimeMinutes float64 `json:"machineTimeMinutes"`
	// MaterialWeightG is grams for FDM and milliliters for resin.
	MaterialWeightG float64 `json:"materialWeightG"`

	ComputedEnergyCost       decimal.Decimal `json:"computedEnergyCost"`
	ComputedDepreciationCost decimal.Decimal `json:"computedDepreciationCost"`
	ComputedMaterialCost     decimal.Decimal `json:"computedMaterialCost"`

	AppliedRates ComponentRates `json:"appliedRates"`
}

// ProductionSnapshot is the immutable cost breakdown attached to an income
// record that represents a manufactured job. Computed fields are a pure
// function of the inputs plus the AppliedRates captured inside it; they are
// never recomputed when global rates change.
type ProductionSnapshot struct {
	Type string `json:"type"` // a ProductionType, or "mixed"

	MachineTimeMinutes float64 `json:"machineTimeMinutes"`
	HumanTimeMinutes   float64 `json:"humanTimeMinutes"`
	MaterialWeightG    float64 `json:"materialWeightG"`

	ComputedEnergyCost       decimal.Decimal `json:"computedEnergyCost"`
	ComputedDepreciationCost decimal.Decimal `json:"computedDepreciationCost"`
	ComputedMaterialCost     decimal.Decimal `json:"computedMaterialCost"`
	ComputedLaborCost        decimal.Decimal `json:"computedLaborCost"`

	AppliedRates AppliedRates `json:"appliedRates"`

	// Single-machine metadata kept for records predating multi-component jobs.
	MachineID   string `json:"machineId,omitempty"`
	MachineName string `json:"machineName,omitempty"`

	Components []ProductionComponent `json:"components,omitempty"`
}

// TotalDirectCost is energy + depreciation + material. Labor is tracked
// separately because it is not a cash outflow.
func (s *ProductionSnapshot) TotalDirectCost() decimal.Decimal {
	return s.ComputedEnergyCost.Add(s.ComputedDepreciationCost).Add(s.ComputedMaterialCost)
}
