// internal/models/catalog.go
package models

type ConditionRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// CropRequirements lists the optimal growing range per soil/climate parameter.
type CropRequirements struct {
	CropName          string                    `json:"crop_name"`
	OptimalConditions map[string]ConditionRange `json:"optimal_conditions"`
	SamplesCount      int                       `json:"samples_count"`
}
