// Package costmodel computes production costs (energy, machine depreciation,
// material, labor) from manufacturing inputs and a rate table. It does no I/O
// and keeps no state: the same inputs and rates always produce byte-identical
// results, which is what makes snapshots safe to replay and merge.
package costmodel

import (
	"github.com/shopspring/decimal"

	"github.com/ddreams3d/backend/internal/model"
)

// Nominal machine power draw per technology, in kW. FDM and resin values come
// from the printers the business runs; CNC assumes a small desktop mill.
var powerKw = map[model.ProductionType]decimal.Decimal{
	model.TechFDM:   decimal.NewFromFloat(0.2),
	model.TechResin: decimal.NewFromFloat(0.1),
	model.TechCNC:   decimal.NewFromFloat(0.5),
	model.TechOther: decimal.Zero,
}

var (
	sixty    = decimal.NewFromInt(60)
	thousand = decimal.NewFromInt(1000)
	hundred  = decimal.NewFromInt(100)
)

// round4 rounds a money value to 4 decimal places, half up. Applied after
// every arithmetic step, not only at the end; otherwise two computations of
// the same snapshot could drift by order of operations.
func round4(d decimal.Decimal) decimal.Decimal {
	return d.Round(4)
}

// ComponentCost is the cost contribution of a single production component.
type ComponentCost struct {
	Energy       decimal.Decimal
	Depreciation decimal.Decimal
	Material     decimal.Decimal
	Rates        model.ComponentRates
}

// MachineHourlyRate derives a machine's depreciation rate per hour from its
// purchase cost spread over its expected working hours. Returns zero when the
// lifetime inputs are unusable instead of dividing by zero.
func MachineHourlyRate(purchaseCost decimal.Decimal, lifeYears, dailyHours float64) decimal.Decimal {
	totalHours := lifeYears * 365 * dailyHours
	if totalHours <= 0 {
		return decimal.Zero
	}
	return round4(purchaseCost.Div(decimal.NewFromFloat(totalHours)))
}

// DepreciationRate resolves the hourly depreciation rate for a component:
// the explicit machine's stored rate when machineID matches, else the mean
// rate across machines of the same technology, else the technology fallback
// from the rate table, else zero.
func DepreciationRate(t model.ProductionType, machineID string, rates model.RateSettings) decimal.Decimal {
	if m := rates.MachineByID(machineID); m != nil {
		return m.HourlyRate
	}
	sum := decimal.Zero
	count := 0
	for _, m := range rates.Machines {
		if m.Type == t {
			sum = sum.Add(m.HourlyRate)
			count++
		}
	}
	if count > 0 {
		return round4(sum.Div(decimal.NewFromInt(int64(count))))
	}
	return rates.DepreciationFallback(t)
}

// ComputeComponentCost prices one machine run.
//
//	energy       = powerKw(type) * electricityPrice * machineHours
//	depreciation = hourlyRate * machineHours
//	material     = (weight/1000) * materialUnitCost(type)
//
// Weight is grams (FDM) or milliliters (resin); cost tables are per kg/liter.
func ComputeComponentCost(c model.ProductionComponent, rates model.RateSettings) ComponentCost {
	hours := decimal.NewFromFloat(c.MachineTimeMinutes).Div(sixty)
	depRate := DepreciationRate(c.Type, c.MachineID, rates)
	matCost := rates.MaterialUnitCost(c.Type)

	energy := round4(powerKw[c.Type].Mul(rates.ElectricityPrice))
	energy = round4(energy.Mul(hours))

	depreciation := round4(depRate.Mul(hours))

	weight := decimal.NewFromFloat(c.MaterialWeightG).Div(thousand)
	material := round4(weight.Mul(matCost))

	return ComponentCost{
		Energy:       energy,
		Depreciation: depreciation,
		Material:     material,
		Rates: model.ComponentRates{
			MachineDepreciationRate: depRate,
			MaterialCostPerUnit:     matCost,
			ElectricityPrice:        rates.ElectricityPrice,
		},
	}
}

// ComputeSnapshot prices a whole job and captures the rates used into the
// returned snapshot. Returns nil when there is nothing to price (no machine
// time, no material, no labor): an absent snapshot is distinct from a valid
// zero-cost one, which can still arise from zero rates on a real job.
func ComputeSnapshot(components []model.ProductionComponent, humanTimeMinutes float64, rates model.RateSettings) *model.ProductionSnapshot {
	active := make([]model.ProductionComponent, 0, len(components))
	for _, c := range components {
		if c.MachineTimeMinutes > 0 || c.MaterialWeightG > 0 {
			active = append(active, c)
		}
	}
	if len(active) == 0 && humanTimeMinutes <= 0 {
		return nil
	}

	snap := &model.ProductionSnapshot{
		HumanTimeMinutes: humanTimeMinutes,
		AppliedRates: model.AppliedRates{
			ElectricityPrice: rates.ElectricityPrice,
			HumanHourlyRate:  rates.HumanHourlyRate,
		},
	}

	for _, c := range active {
		cost := ComputeComponentCost(c, rates)
		c.ComputedEnergyCost = cost.Energy
		c.ComputedDepreciationCost = cost.Depreciation
		c.ComputedMaterialCost = cost.Material
		c.AppliedRates = cost.Rates

		snap.Components = append(snap.Components, c)
		snap.MachineTimeMinutes += c.MachineTimeMinutes
		snap.MaterialWeightG += c.MaterialWeightG
		snap.ComputedEnergyCost = snap.ComputedEnergyCost.Add(cost.Energy)
		snap.ComputedDepreciationCost = snap.ComputedDepreciationCost.Add(cost.Depreciation)
		snap.ComputedMaterialCost = snap.ComputedMaterialCost.Add(cost.Material)
	}

	humanHours := decimal.NewFromFloat(humanTimeMinutes).Div(sixty)
	snap.ComputedLaborCost = round4(rates.HumanHourlyRate.Mul(humanHours))

	switch len(active) {
	case 0:
		snap.Type = string(model.TechOther)
	case 1:
		snap.Type = string(active[0].Type)
		snap.MachineID = active[0].MachineID
		snap.MachineName = active[0].MachineName
		snap.AppliedRates.MachineDepreciationRate = snap.Components[0].AppliedRates.MachineDepreciationRate
		snap.AppliedRates.MaterialCostPerUnit = snap.Components[0].AppliedRates.MaterialCostPerUnit
	default:
		snap.Type = model.SnapshotTypeMixed
		// Aggregate applied rates follow the first component; per-component
		// rates carry the exact values for each run.
		snap.AppliedRates.MachineDepreciationRate = snap.Components[0].AppliedRates.MachineDepreciationRate
		snap.AppliedRates.MaterialCostPerUnit = snap.Components[0].AppliedRates.MaterialCostPerUnit
	}

	return snap
}

// SuggestedPrice marks up the direct cost of a snapshot so that marginPercent
// of the sale is margin, rounded up to the next whole currency unit. Rounding
// is always upward. A margin of 100% or more has no finite price and yields
// zero rather than an error.
func SuggestedPrice(snap *model.ProductionSnapshot, marginPercent decimal.Decimal) decimal.Decimal {
	if snap == nil {
		return decimal.Zero
	}
	denom := decimal.NewFromInt(1).Sub(marginPercent.Div(hundred))
	if !denom.IsPositive() {
		return decimal.Zero
	}
	return snap.TotalDirectCost().Div(denom).Ceil()
}
