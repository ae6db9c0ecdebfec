package ecosystem

// Field identifies one of the nine recorded state variables.
type Field uint8

// Field constants, in recording order.
const (
	FieldCrop Field = iota
	FieldWeed
	FieldPest
	FieldBird
	FieldBat
	FieldSoilNutrient
	FieldSoilHealth
	FieldHerbicideResidue
	FieldPesticideResidue
)

// Fields lists every state variable in recording order.
var Fields = [...]Field{
	FieldCrop, FieldWeed, FieldPest, FieldBird, FieldBat,
	FieldSoilNutrient, FieldSoilHealth, FieldHerbicideResidue, FieldPesticideResidue,
}

var fieldNames = [...]string{
	FieldCrop:             "crop",
	FieldWeed:             "weed",
	FieldPest:             "pest",
	FieldBird:             "bird",
	FieldBat:              "bat",
	FieldSoilNutrient:     "soil_nutrient",
	FieldSoilHealth:       "soil_health",
	FieldHerbicideResidue: "herbicide_residue",
	FieldPesticideResidue: "pesticide_residue",
}

// String returns the snake_case name of the field.
func (f Field) String() string {
	if int(f) < len(fieldNames) {
		return fieldNames[f]
	}
	return "unknown"
}

// ParseField looks up a field by its snake_case name.
func ParseField(name string) (Field, bool) {
	for _, f := range Fields {
		if fieldNames[f] == name {
			return f, true
		}
	}
	return 0, false
}

// State is the current condition of the farm ecosystem.
// Every field is kept >= 0. SoilHealth is only bounded to [0,100] when
// fertilizer is applied.
type State struct {
	Crop             float64 `json:"crop"`              // Crop biomass
	Weed             float64 `json:"weed"`              // Weed biomass
	Pest             float64 `json:"pest"`              // Pest density
	Bird             float64 `json:"bird"`              // Bird density
	Bat              float64 `json:"bat"`               // Bat density
	SoilNutrient     float64 `json:"soil_nutrient"`     // Available nutrient pool
	SoilHealth       float64 `json:"soil_health"`       // Soil health index
	HerbicideResidue float64 `json:"herbicide_residue"` // Herbicide concentration
	PesticideResidue float64 `json:"pesticide_residue"` // Pesticide concentration
}

// InitialState returns the condition of a field before the first spring.
func InitialState() State {
	return State{
		Crop:         0,
		Weed:         30,
		Pest:         5,
		SoilNutrient: 50,
		SoilHealth:   50,
	}
}

// Get returns the value of a single field.
func (s *State) Get(f Field) float64 {
	return *s.ref(f)
}

// Set writes a single field, clamping negative values to zero.
func (s *State) Set(f Field, v float64) {
	*s.ref(f) = nonNegative(v)
}

func (s *State) ref(f Field) *float64 {
	switch f {
	case FieldCrop:
		return &s.Crop
	case FieldWeed:
		return &s.Weed
	case FieldPest:
		return &s.Pest
	case FieldBird:
		return &s.Bird
	case FieldBat:
		return &s.Bat
	case FieldSoilNutrient:
		return &s.SoilNutrient
	case FieldSoilHealth:
		return &s.SoilHealth
	case FieldHerbicideResidue:
		return &s.HerbicideResidue
	case FieldPesticideResidue:
		return &s.PesticideResidue
	}
	panic("ecosystem: unknown field " + f.String())
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
