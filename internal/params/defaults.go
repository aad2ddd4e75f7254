package params

import "sort"

// Land search field names, as they appear on the wire and in configuration.
const (
	FieldPurpose                  = "purpose"
	FieldMinSize                  = "min_size"
	FieldMaxSize                  = "max_size"
	FieldMinPrice                 = "min_price"
	FieldMaxPrice                 = "max_price"
	FieldLocationPreference       = "location_preference"
	FieldConnectivityImportance   = "connectivity_importance"
	FieldInfrastructureImportance = "infrastructure_importance"
	FieldLimit                    = "limit"
)

// Defaults maps a numeric land search field to the value used when the
// user's input cannot be parsed.
type Defaults map[string]float64

func DefaultLandDefaults() Defaults {
	return Defaults{
		FieldMinSize:                  0,
		FieldMaxSize:                  10000,
		FieldMinPrice:                 0,
		FieldMaxPrice:                 100000000,
		FieldConnectivityImportance:   0.5,
		FieldInfrastructureImportance: 0.5,
		FieldLimit:                    10,
	}
}

// WithOverrides returns a copy with known fields replaced. Unknown keys are
// returned so the caller can report them.
func (d Defaults) WithOverrides(overrides map[string]float64) (Defaults, []string) {
	out := make(Defaults, len(d))
	for k, v := range d {
		out[k] = v
	}

	var unknown []string
	for k, v := range overrides {
		if _, ok := d[k]; !ok {
			unknown = append(unknown, k)
			continue
		}
		switch k {
		case FieldConnectivityImportance, FieldInfrastructureImportance:
			v = Clamp01(v)
		case FieldLimit:
			if v < 1 {
				continue
			}
		}
		out[k] = v
	}
	sort.Strings(unknown)
	return out, unknown
}

// Bound is an inclusive numeric range.
type Bound struct {
	Min float64
	Max float64
}

func (b Bound) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Soil and climate field names.
const (
	FieldN           = "N"
	FieldP           = "P"
	FieldK           = "K"
	FieldTemperature = "temperature"
	FieldHumidity    = "humidity"
	FieldPH          = "ph"
	FieldRainfall    = "rainfall"
	FieldLocation    = "location"
	FieldLandID      = "land_id"
)

// CropFieldOrder is the order fields are checked and errors reported in.
var CropFieldOrder = []string{
	FieldN, FieldP, FieldK, FieldTemperature, FieldHumidity, FieldPH, FieldRainfall,
}

// CropBounds are the accepted ranges for soil and climate readings.
var CropBounds = map[string]Bound{
	FieldN:           {Min: 0, Max: 200},
	FieldP:           {Min: 0, Max: 200},
	FieldK:           {Min: 0, Max: 250},
	FieldTemperature: {Min: -10, Max: 50},
	FieldHumidity:    {Min: 0, Max: 100},
	FieldPH:          {Min: 0, Max: 14},
	FieldRainfall:    {Min: 0, Max: 3500},
}
