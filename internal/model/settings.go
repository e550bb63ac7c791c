package model

import "github.com/shopspring/decimal"

// MachineDefinition is one owned machine in the rate table. HourlyRate is
// derived from purchase cost / (life years * 365 * daily hours) and stored,
// not recomputed on read.
type MachineDefinition struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Type         ProductionType  `json:"type"` // fdm | resin
	PurchaseCost decimal.Decimal `json:"purchaseCost"`
	LifeYears    float64         `json:"lifeYears"`
	DailyHours   float64         `json:"dailyHours"`
	HourlyRate   decimal.Decimal `json:"hourlyRate"`
}

// RateSettings is the versioned cost configuration. The whole object carries
// a single UpdatedAt; sync merges it latest-wins, never per field or per
// machine.
type RateSettings struct {
	ElectricityPrice decimal.Decimal `json:"electricityPrice"` // PEN per kWh

	// Per-technology depreciation fallbacks (PEN per machine hour), used when
	// no concrete machine can be resolved for a component.
	MachineDepreciationRateFdm   decimal.Decimal `json:"machineDepreciationRateFdm"`
	MachineDepreciationRateResin decimal.Decimal `json:"machineDepreciationRateResin"`

	MaterialCostFdm   decimal.Decimal `json:"materialCostFdm"`   // PEN per kg
	MaterialCostResin decimal.Decimal `json:"materialCostResin"` // PEN per liter

	HumanHourlyRate    decimal.Decimal `json:"humanHourlyRate"` // general labor target
	PaintingHourlyRate decimal.Decimal `json:"paintingHourlyRate"`
	ModelingHourlyRate decimal.Decimal `json:"modelingHourlyRate"`

	WholesaleThreshold     int             `json:"wholesaleThreshold"` // units
	WholesaleMarginPercent decimal.Decimal `json:"wholesaleMarginPercent"`

	Machines []MachineDefinition `json:"machines,omitempty"`

	UpdatedAt int64 `json:"updatedAt"`
}

// DefaultRateSettings returns the starting rate table for a fresh install.
func DefaultRateSettings() RateSettings {
	return RateSettings{
		ElectricityPrice:             decimal.NewFromFloat(0.85),
		MachineDepreciationRateFdm:   decimal.NewFromFloat(0.50),
		MachineDepreciationRateResin: decimal.NewFromFloat(0.80),
		MaterialCostFdm:              decimal.NewFromInt(80),
		MaterialCostResin:            decimal.NewFromInt(120),
		HumanHourlyRate:              decimal.NewFromInt(20),
		PaintingHourlyRate:           decimal.NewFromInt(25),
		ModelingHourlyRate:           decimal.NewFromInt(30),
		WholesaleThreshold:           10,
		WholesaleMarginPercent:       decimal.NewFromInt(30),
	}
}

// DepreciationFallback returns the per-technology depreciation rate used when
// no machine matches a component.
func (s RateSettings) DepreciationFallback(t ProductionType) decimal.Decimal {
	switch t {
	case TechFDM:
		return s.MachineDepreciationRateFdm
	case TechResin:
		return s.MachineDepreciationRateResin
	}
	return decimal.Zero
}

// MaterialUnitCost returns the material cost per kg/liter for a technology.
func (s RateSettings) MaterialUnitCost(t ProductionType) decimal.Decimal {
	switch t {
	case TechFDM:
		return s.MaterialCostFdm
	case TechResin:
		return s.MaterialCostResin
	}
	return decimal.Zero
}

// MachineByID looks up a machine definition. Returns nil when absent.
func (s RateSettings) MachineByID(id string) *MachineDefinition {
	if id == "" {
		return nil
	}
	for i := range s.Machines {
		if s.Machines[i].ID == id {
			return &s.Machines[i]
		}
	}
	return nil
}
