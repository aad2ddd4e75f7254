package params

// LandForm holds the raw text of the land search form.
type LandForm struct {
	Purpose                  string
	MinSize                  string
	MaxSize                  string
	MinPrice                 string
	MaxPrice                 string
	LocationPreference       string
	ConnectivityImportance   string
	InfrastructureImportance string
	Limit                    string
}

// CropForm holds the raw text of the soil and climate form.
type CropForm struct {
	N           string
	P           string
	K           string
	Temperature string
	Humidity    string
	PH          string
	Rainfall    string
	Location    string
	LandID      string
}

func (f CropForm) value(field string) string {
	switch field {
	case FieldN:
		return f.N
	case FieldP:
		return f.P
	case FieldK:
		return f.K
	case FieldTemperature:
		return f.Temperature
	case FieldHumidity:
		return f.Humidity
	case FieldPH:
		return f.PH
	case FieldRainfall:
		return f.Rainfall
	}
	return ""
}
