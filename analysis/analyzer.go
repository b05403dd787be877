// Package analysis classifies a field's crop rotation and soil fertility and
// turns the result into farmer-facing recommendations. Everything here is a
// pure function of the aggregate; callers persist the results.
package analysis

import (
	"strings"

	"krishimitra/models"
)

// Rotation patterns.
const (
	PatternInsufficientData = "Insufficient Data"
	PatternMonoculture      = "Monoculture (Not Recommended)"
	PatternLegumeCereal     = "Legume-Cereal Rotation (Good)"
	PatternMultiCrop        = "Multi-crop Rotation (Excellent)"
	PatternTwoCrop          = "Two-crop Rotation (Fair)"
)

// Recommendation texts, in the order GenerateRecommendations emits them.
const (
	RecAvoidMonoculture = "⚠️ Avoid continuous cultivation of the same crop family. Rotate with legumes or other families."
	RecIncludeLegumes   = "🌱 Include legume crops (chickpea, lentil, beans) to naturally restore soil nitrogen."
	RecFertilityDecline = "⚠️ Soil fertility is declining. Consider green manure, organic compost, or cover crops."
	RecLowNitrogen      = "💧 Soil nitrogen is low. Plant nitrogen-fixing crops or apply organic fertilizers."
	RecAcidicSoil       = "🧪 Soil is acidic (pH < 6.0). Consider lime application to raise pH."
	RecAlkalineSoil     = "🧪 Soil is alkaline (pH > 8.0). Consider gypsum or sulfur application."
	RecLowOrganicMatter = "🍂 Low organic matter. Add compost, farmyard manure, or crop residues."
	RecDiversify        = "🔄 Diversify crop families in rotation for better soil health."
)

const (
	trendWindow      = 3
	trendThreshold   = 5.0
	lowNitrogen      = 30.0
	acidicPH         = 6.0
	alkalinePH       = 8.0
	lowOrganicMatter = 1.5
)

// ClassifyPattern labels the rotation from the crop families of the whole
// history. Monoculture wins over Legume-Cereal, which wins over Multi-crop.
func ClassifyPattern(history []models.RotationEntry) string {
	if len(history) < 2 {
		return PatternInsufficientData
	}

	families := distinctFamilies(history)
	switch {
	case len(families) == 1:
		return PatternMonoculture
	case containsFamily(families, models.FamilyLegume) && containsFamily(families, models.FamilyCereal):
		return PatternLegumeCereal
	case len(families) >= 3:
		return PatternMultiCrop
	default:
		return PatternTwoCrop
	}
}

// ClassifyFertilityTrend averages the nitrogen change of the last three
// entries that carry a nitrogen value in both soil snapshots.
// Phosphorus, potassium, pH and organic matter are not considered.
func ClassifyFertilityTrend(history []models.RotationEntry) models.FertilityTrend {
	if len(history) < 2 {
		return models.TrendUnknown
	}

	recent := history
	if len(recent) > trendWindow {
		recent = recent[len(recent)-trendWindow:]
	}

	var sum float64
	var n int
	for _, e := range recent {
		change, ok := nitrogenChange(e)
		if !ok {
			continue
		}
		sum += change
		n++
	}
	if n == 0 {
		return models.TrendUnknown
	}

	avg := sum / float64(n)
	switch {
	case avg > trendThreshold:
		return models.TrendImproving
	case avg > -trendThreshold:
		return models.TrendStable
	default:
		return models.TrendDeclining
	}
}

// GenerateRecommendations evaluates every check independently against the
// record as it is now and returns a new list. It never reads the previous
// recommendations.
func GenerateRecommendations(rec *models.FieldRotation) []string {
	out := []string{}
	history := rec.RotationHistory
	soil := rec.CurrentSoilHealth

	if strings.Contains(rec.RotationPattern, "Monoculture") {
		out = append(out, RecAvoidMonoculture)
	}

	if len(history) >= 2 && !hasFamily(history, models.FamilyLegume) {
		out = append(out, RecIncludeLegumes)
	}

	if rec.SoilFertilityTrend == models.TrendDeclining {
		out = append(out, RecFertilityDecline)
	}

	if soil.Nitrogen < lowNitrogen {
		out = append(out, RecLowNitrogen)
	}

	if soil.PH < acidicPH {
		out = append(out, RecAcidicSoil)
	} else if soil.PH > alkalinePH {
		out = append(out, RecAlkalineSoil)
	}

	if soil.OrganicMatter < lowOrganicMatter {
		out = append(out, RecLowOrganicMatter)
	}

	if len(history) >= trendWindow {
		if len(distinctFamilies(history[len(history)-trendWindow:])) < 2 {
			out = append(out, RecDiversify)
		}
	}

	return out
}

// Recompute refreshes pattern, trend and recommendations on rec, in that
// order, since recommendations read the first two.
func Recompute(rec *models.FieldRotation) {
	rec.RotationPattern = ClassifyPattern(rec.RotationHistory)
	rec.SoilFertilityTrend = ClassifyFertilityTrend(rec.RotationHistory)
	rec.Recommendations = GenerateRecommendations(rec)
}

func nitrogenChange(e models.RotationEntry) (float64, bool) {
	if e.SoilHealthBefore == nil || e.SoilHealthAfter == nil {
		return 0, false
	}
	if e.SoilHealthBefore.Nitrogen == nil || e.SoilHealthAfter.Nitrogen == nil {
		return 0, false
	}
	return *e.SoilHealthAfter.Nitrogen - *e.SoilHealthBefore.Nitrogen, true
}

// distinctFamilies returns the families of history in first-seen order.
func distinctFamilies(history []models.RotationEntry) []models.CropFamily {
	seen := make(map[models.CropFamily]struct{}, len(history))
	out := make([]models.CropFamily, 0, len(history))
	for _, e := range history {
		if _, ok := seen[e.CropFamily]; ok {
			continue
		}
		seen[e.CropFamily] = struct{}{}
		out = append(out, e.CropFamily)
	}
	return out
}

func containsFamily(families []models.CropFamily, f models.CropFamily) bool {
	for _, x := range families {
		if x == f {
			return true
		}
	}
	return false
}

func hasFamily(history []models.RotationEntry, f models.CropFamily) bool {
	for _, e := range history {
		if e.CropFamily == f {
			return true
		}
	}
	return false
}
