package wildfire

// Physical constants shared by the passes.
const (
	StefanBoltzmann   = 5.670374419e-8 // W/(m²·K⁴)
	LatentHeatVapor   = 2.26e6         // J/kg
	StoichiometricO2  = 1.33           // kg O2 per kg fuel
	AirDensity        = 1.225          // kg/m³
	O2MassFraction    = 0.232
	Gravity           = 9.81
	KelvinOffset      = 273.15
	minFuelLoad       = 1e-6
	gradientEpsilon   = 1e-10
	divisionEpsilon   = 1e-9
	maxTemperatureK   = 2000.0
	ambientFloorDelta = 50.0
)

// FuelModel holds the static surface fuel properties for one fuel type.
// Inputs are metric; the spread model converts internally.
type FuelModel struct {
	ID   uint8
	Name string

	SurfaceAreaToVolume float64 // 1/m
	BedDepth            float64 // m
	Load                float64 // kg/m², initial oven-dry load
	MoistureExtinction  float64 // fraction
	HeatContent         float64 // kJ/kg

	ThermalDiffusivity float64 // m²/s
	SpecificHeat       float64 // kJ/(kg·K)
	InitialMoisture    float64 // fraction
}

// Burnable reports whether the model carries fuel.
func (f FuelModel) Burnable() bool { return f.Load > 0 && f.BedDepth > 0 && f.SurfaceAreaToVolume > 0 }

// FuelTable maps fuel ids to models. Id 0 is reserved for non-burnable cells.
type FuelTable []FuelModel

// Lookup returns the model for id.
func (t FuelTable) Lookup(id uint8) (FuelModel, bool) {
	if int(id) >= len(t) {
		return FuelModel{}, false
	}
	m := t[id]
	if !m.Burnable() {
		return m, false
	}
	return m, true
}

// Fuel ids of the default table.
const (
	FuelNone uint8 = iota
	FuelShortGrass
	FuelTimberGrass
	FuelTallGrass
	FuelChaparral
	FuelBrush
	FuelTimberLitter
	FuelHardwoodLitter
)

// DefaultFuelTable returns the built-in surface fuel models, converted from
// the Anderson (1982) stylized models.
func DefaultFuelTable() FuelTable {
	base := func(id uint8, name string, sav, depth, load, mx, moist float64) FuelModel {
		return FuelModel{
			ID:                  id,
			Name:                name,
			SurfaceAreaToVolume: sav,
			BedDepth:            depth,
			Load:                load,
			MoistureExtinction:  mx,
			HeatContent:         18608,
			ThermalDiffusivity:  1.5e-7,
			SpecificHeat:        1.5,
			InitialMoisture:     moist,
		}
	}
	return FuelTable{
		{ID: FuelNone, Name: "non-burnable", SpecificHeat: 0.9},
		base(FuelShortGrass, "short grass", 11483, 0.3048, 0.166, 0.12, 0.06),
		base(FuelTimberGrass, "timber grass", 9843, 0.3048, 0.449, 0.15, 0.08),
		base(FuelTallGrass, "tall grass", 4921, 0.762, 0.675, 0.25, 0.08),
		base(FuelChaparral, "chaparral", 6562, 1.829, 1.123, 0.20, 0.10),
		base(FuelBrush, "brush", 6562, 0.610, 0.225, 0.20, 0.10),
		base(FuelTimberLitter, "closed timber litter", 6562, 0.061, 0.337, 0.30, 0.12),
		base(FuelHardwoodLitter, "hardwood litter", 8202, 0.061, 0.655, 0.25, 0.12),
	}
}

// CanopyProperties describes the crown fuel layer above every cell.
type CanopyProperties struct {
	BaseHeight     float64 // m
	BulkDensity    float64 // kg/m³
	FoliarMoisture float64 // percent
	CoverFraction  float64 // 0..1
	FuelLoad       float64 // kg/m²
	HeatContent    float64 // kJ/kg
}

// DefaultCanopy returns a generic conifer canopy.
func DefaultCanopy() CanopyProperties {
	return CanopyProperties{
		BaseHeight:     8,
		BulkDensity:    0.15,
		FoliarMoisture: 100,
		CoverFraction:  0.7,
		FuelLoad:       1.2,
		HeatContent:    20000,
	}
}
