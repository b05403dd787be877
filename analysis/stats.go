package analysis

import "krishimitra/models"

// Statistics summarises a rotation history for the analysis view.
type Statistics struct {
	TotalCropsGrown int                 `json:"totalCropsGrown"`
	CropFamilies    []models.CropFamily `json:"cropFamilies"`
	YearsTracked    int                 `json:"yearsTracked"` // max year - min year + 1
	AverageYield    *float64            `json:"averageYield"` // nil when no entry has a yield
	LastCrop        *string             `json:"lastCrop"`     // most recently appended entry
}

// Summarize computes Statistics over history in insertion order.
// Entries with a zero yield are treated as having no yield.
func Summarize(history []models.RotationEntry) Statistics {
	st := Statistics{
		TotalCropsGrown: len(history),
		CropFamilies:    distinctFamilies(history),
	}
	if len(history) == 0 {
		return st
	}

	minYear, maxYear := history[0].Year, history[0].Year
	var yieldSum float64
	var yieldN int
	for _, e := range history {
		if e.Year < minYear {
			minYear = e.Year
		}
		if e.Year > maxYear {
			maxYear = e.Year
		}
		if e.Yield != nil && *e.Yield != 0 {
			yieldSum += *e.Yield
			yieldN++
		}
	}
	st.YearsTracked = maxYear - minYear + 1

	if yieldN > 0 {
		avg := yieldSum / float64(yieldN)
		st.AverageYield = &avg
	}
	last := history[len(history)-1].CropName
	st.LastCrop = &last
	return st
}
