package models

import "time"

// Defaults applied to any nutrient missing from the current soil health.
const (
	DefaultNitrogen      = 40.0
	DefaultPhosphorus    = 30.0
	DefaultPotassium     = 30.0
	DefaultPH            = 6.5
	DefaultOrganicMatter = 2.0
)

// SoilHealth is the field's current soil state. Overwritten wholesale on
// update; no history is kept for it.
type SoilHealth struct {
	Nitrogen      float64   `bson:"nitrogen"      json:"nitrogen"`   // kg/ha
	Phosphorus    float64   `bson:"phosphorus"    json:"phosphorus"` // kg/ha
	Potassium     float64   `bson:"potassium"     json:"potassium"`  // kg/ha
	PH            float64   `bson:"pH"            json:"pH"`
	OrganicMatter float64   `bson:"organicMatter" json:"organicMatter"` // percent
	LastTested    time.Time `bson:"lastTested"    json:"lastTested"`
}

// SoilReading is a partial soil measurement. Nil means "not measured".
type SoilReading struct {
	Nitrogen      *float64 `bson:"nitrogen,omitempty"      json:"nitrogen,omitempty"`
	Phosphorus    *float64 `bson:"phosphorus,omitempty"    json:"phosphorus,omitempty"`
	Potassium     *float64 `bson:"potassium,omitempty"     json:"potassium,omitempty"`
	PH            *float64 `bson:"pH,omitempty"            json:"pH,omitempty"`
	OrganicMatter *float64 `bson:"organicMatter,omitempty" json:"organicMatter,omitempty"`
}

// DefaultSoilHealth returns the baseline used when a field is registered
// without a soil test.
func DefaultSoilHealth(tested time.Time) SoilHealth {
	return SoilHealth{
		Nitrogen:      DefaultNitrogen,
		Phosphorus:    DefaultPhosphorus,
		Potassium:     DefaultPotassium,
		PH:            DefaultPH,
		OrganicMatter: DefaultOrganicMatter,
		LastTested:    tested,
	}
}

// Apply overlays the measured values of r onto s and stamps lastTested.
func (s SoilHealth) Apply(r SoilReading, tested time.Time) SoilHealth {
	out := s
	if r.Nitrogen != nil {
		out.Nitrogen = *r.Nitrogen
	}
	if r.Phosphorus != nil {
		out.Phosphorus = *r.Phosphorus
	}
	if r.Potassium != nil {
		out.Potassium = *r.Potassium
	}
	if r.PH != nil {
		out.PH = *r.PH
	}
	if r.OrganicMatter != nil {
		out.OrganicMatter = *r.OrganicMatter
	}
	out.LastTested = tested
	return out
}

// IsEmpty reports whether no nutrient was measured.
func (r SoilReading) IsEmpty() bool {
	return r.Nitrogen == nil && r.Phosphorus == nil && r.Potassium == nil &&
		r.PH == nil && r.OrganicMatter == nil
}

// SoilProfile — point soil data returned by the soil-data lookup.
type SoilProfile struct {
	Source        string       `json:"source"` // soilgrids
	Nitrogen      float64      `json:"nitrogen"`
	Phosphorus    float64      `json:"phosphorus"`
	Potassium     float64      `json:"potassium"`
	PH            float64      `json:"pH"`
	OrganicCarbon *float64     `json:"organicCarbon,omitempty"` // g/kg
	Clay          *float64     `json:"clay,omitempty"`          // percent
	Sand          *float64     `json:"sand,omitempty"`
	Silt          *float64     `json:"silt,omitempty"`
	Texture       string       `json:"texture"`
	SoilType      string       `json:"soilType"`
	Drainage      string       `json:"drainage"`
	Depth         string       `json:"depth"`
	Erosion       string       `json:"erosion"`
	Latitude      float64      `json:"latitude"`
	Longitude     float64      `json:"longitude"`
	IsRealData    bool         `json:"isRealData"`
	IsFallback    bool         `json:"isFallback"`
	Quality       *DataQuality `json:"dataQuality,omitempty"`
	LastUpdated   time.Time    `json:"lastUpdated"`
}

type DataQuality struct {
	Score          int      `json:"score"`
	Level          string   `json:"level"` // Excellent | Good | Fair | Low
	Sources        []string `json:"sources"`
	Recommendation string   `json:"recommendation"`
}
