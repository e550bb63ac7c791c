package costmodel

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ddreams3d/backend/internal/model"
)

func testRates() model.RateSettings {
	return model.RateSettings{
		ElectricityPrice:             decimal.NewFromFloat(0.85),
		MachineDepreciationRateFdm:   decimal.NewFromFloat(0.50),
		MachineDepreciationRateResin: decimal.NewFromFloat(0.80),
		MaterialCostFdm:              decimal.NewFromInt(80),
		MaterialCostResin:            decimal.NewFromInt(120),
		HumanHourlyRate:              decimal.NewFromInt(20),
	}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeSnapshot_SingleFdmComponent(t *testing.T) {
	components := []model.ProductionComponent{{
		ID:                 "c1",
		Type:               model.TechFDM,
		MachineTimeMinutes: 120,
		MaterialWeightG:    50,
	}}

	snap := ComputeSnapshot(components, 30, testRates())
	if snap == nil {
		t.Fatal("expected a snapshot, got nil")
	}

	// energy: 0.2 kW * 0.85 = 0.17/h, * 2h = 0.34
	if !snap.ComputedEnergyCost.Equal(dec("0.34")) {
		t.Errorf("energy: expected 0.34, got %s", snap.ComputedEnergyCost)
	}
	// depreciation: fdm fallback 0.50/h * 2h = 1.00
	if !snap.ComputedDepreciationCost.Equal(dec("1.00")) {
		t.Errorf("depreciation: expected 1.00, got %s", snap.ComputedDepreciationCost)
	}
	// material: 50g / 1000 * 80 = 4.00
	if !snap.ComputedMaterialCost.Equal(dec("4.00")) {
		t.Errorf("material: expected 4.00, got %s", snap.ComputedMaterialCost)
	}
	// labor: 0.5h * 20 = 10.00, not part of direct cost
	if !snap.ComputedLaborCost.Equal(dec("10.00")) {
		t.Errorf("labor: expected 10.00, got %s", snap.ComputedLaborCost)
	}
	if !snap.TotalDirectCost().Equal(dec("5.34")) {
		t.Errorf("total direct: expected 5.34, got %s", snap.TotalDirectCost())
	}

	if snap.Type != string(model.TechFDM) {
		t.Errorf("expected type fdm, got %q", snap.Type)
	}
	if !snap.AppliedRates.ElectricityPrice.Equal(dec("0.85")) {
		t.Errorf("applied electricity: expected 0.85, got %s", snap.AppliedRates.ElectricityPrice)
	}
}

func TestComputeSnapshot_Deterministic(t *testing.T) {
	components := []model.ProductionComponent{
		{ID: "a", Type: model.TechFDM, MachineTimeMinutes: 97, MaterialWeightG: 33.3},
		{ID: "b", Type: model.TechResin, MachineTimeMinutes: 41, MaterialWeightG: 18.7},
	}
	rates := testRates()

	first := ComputeSnapshot(components, 45, rates)
	second := ComputeSnapshot(components, 45, rates)
	if first == nil || second == nil {
		t.Fatal("expected snapshots")
	}
	if !first.TotalDirectCost().Equal(second.TotalDirectCost()) {
		t.Errorf("same inputs produced different totals: %s vs %s",
			first.TotalDirectCost(), second.TotalDirectCost())
	}
	if !first.ComputedLaborCost.Equal(second.ComputedLaborCost) {
		t.Errorf("same inputs produced different labor: %s vs %s",
			first.ComputedLaborCost, second.ComputedLaborCost)
	}
	if first.Type != model.SnapshotTypeMixed {
		t.Errorf("expected mixed type, got %q", first.Type)
	}
}

func TestComputeSnapshot_CostMonotonicInMachineTime(t *testing.T) {
	rates := testRates()
	base := ComputeSnapshot([]model.ProductionComponent{
		{ID: "a", Type: model.TechFDM, MachineTimeMinutes: 60, MaterialWeightG: 20},
	}, 0, rates)
	more := ComputeSnapshot([]model.ProductionComponent{
		{ID: "a", Type: model.TechFDM, MachineTimeMinutes: 90, MaterialWeightG: 20},
	}, 0, rates)

	if more.TotalDirectCost().LessThan(base.TotalDirectCost()) {
		t.Errorf("more machine time got cheaper: %s < %s",
			more.TotalDirectCost(), base.TotalDirectCost())
	}
}

func TestComputeSnapshot_EmptyInputsYieldNil(t *testing.T) {
	if snap := ComputeSnapshot(nil, 0, testRates()); snap != nil {
		t.Errorf("expected nil snapshot for empty inputs, got %+v", snap)
	}
	// components with no time and no material are not active
	snap := ComputeSnapshot([]model.ProductionComponent{
		{ID: "a", Type: model.TechFDM},
	}, 0, testRates())
	if snap != nil {
		t.Errorf("expected nil snapshot for inert components, got %+v", snap)
	}
}

func TestComputeSnapshot_LaborOnly(t *testing.T) {
	snap := ComputeSnapshot(nil, 90, testRates())
	if snap == nil {
		t.Fatal("expected labor-only snapshot")
	}
	if !snap.ComputedLaborCost.Equal(dec("30.00")) {
		t.Errorf("labor: expected 30.00, got %s", snap.ComputedLaborCost)
	}
	if !snap.TotalDirectCost().IsZero() {
		t.Errorf("labor-only job should have zero direct cost, got %s", snap.TotalDirectCost())
	}
}

func TestComputeSnapshot_ZeroRatesStillSnapshot(t *testing.T) {
	// Zero rates on a real job produce a valid zero-cost snapshot, distinct
	// from the nil returned for empty inputs.
	snap := ComputeSnapshot([]model.ProductionComponent{
		{ID: "a", Type: model.TechOther, MachineTimeMinutes: 60},
	}, 0, model.RateSettings{})
	if snap == nil {
		t.Fatal("expected a snapshot for a real job with zero rates")
	}
	if !snap.TotalDirectCost().IsZero() {
		t.Errorf("expected zero cost, got %s", snap.TotalDirectCost())
	}
}

func TestMachineHourlyRate(t *testing.T) {
	// 4380 / (3 * 365 * 8) = 0.5
	rate := MachineHourlyRate(decimal.NewFromInt(4380), 3, 8)
	if !rate.Equal(dec("0.5")) {
		t.Errorf("expected 0.5, got %s", rate)
	}

	if !MachineHourlyRate(decimal.NewFromInt(4380), 0, 8).IsZero() {
		t.Error("zero life years must yield zero rate, not a division error")
	}
	if !MachineHourlyRate(decimal.NewFromInt(4380), 3, 0).IsZero() {
		t.Error("zero daily hours must yield zero rate")
	}
}

func TestDepreciationRate_ResolutionOrder(t *testing.T) {
	rates := testRates()
	rates.Machines = []model.MachineDefinition{
		{ID: "m1", Name: "Ender", Type: model.TechFDM, HourlyRate: dec("0.40")},
		{ID: "m2", Name: "Prusa", Type: model.TechFDM, HourlyRate: dec("0.60")},
		{ID: "m3", Name: "Mars", Type: model.TechResin, HourlyRate: dec("0.90")},
	}

	// explicit machine id wins
	if got := DepreciationRate(model.TechFDM, "m2", rates); !got.Equal(dec("0.60")) {
		t.Errorf("machine rate: expected 0.60, got %s", got)
	}
	// unknown id falls back to the mean of same-type machines
	if got := DepreciationRate(model.TechFDM, "gone", rates); !got.Equal(dec("0.5")) {
		t.Errorf("mean rate: expected 0.5, got %s", got)
	}
	// no machines of the type falls back to the settings rate
	if got := DepreciationRate(model.TechCNC, "", rates); !got.IsZero() {
		t.Errorf("cnc has no fallback configured, expected 0, got %s", got)
	}
	rates.Machines = nil
	if got := DepreciationRate(model.TechResin, "", rates); !got.Equal(dec("0.80")) {
		t.Errorf("settings fallback: expected 0.80, got %s", got)
	}
}

func TestSuggestedPrice(t *testing.T) {
	snap := ComputeSnapshot([]model.ProductionComponent{
		{ID: "a", Type: model.TechFDM, MachineTimeMinutes: 120, MaterialWeightG: 50},
	}, 0, testRates())

	// 5.34 / (1 - 0.30) = 7.628..., rounded up to the next whole unit
	if got := SuggestedPrice(snap, decimal.NewFromInt(30)); !got.Equal(dec("8")) {
		t.Errorf("expected 8, got %s", got)
	}
	if got := SuggestedPrice(snap, decimal.Zero); !got.Equal(dec("6")) {
		t.Errorf("zero margin should still round up: expected 6, got %s", got)
	}
	if got := SuggestedPrice(snap, decimal.NewFromInt(100)); !got.IsZero() {
		t.Errorf("100%% margin has no finite price, expected 0, got %s", got)
	}
	if got := SuggestedPrice(snap, decimal.NewFromInt(150)); !got.IsZero() {
		t.Errorf("margin above 100%% must yield 0, got %s", got)
	}
	if got := SuggestedPrice(nil, decimal.NewFromInt(30)); !got.IsZero() {
		t.Errorf("nil snapshot prices at 0, got %s", got)
	}
}
