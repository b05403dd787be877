package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CropFamily is the coarse grouping used for rotation diversity.
type CropFamily string

const (
	FamilyLegume    CropFamily = "Legume"
	FamilyCereal    CropFamily = "Cereal"
	FamilyOilseed   CropFamily = "Oilseed"
	FamilyVegetable CropFamily = "Vegetable"
	FamilyFruit     CropFamily = "Fruit"
	FamilyFiber     CropFamily = "Fiber"
	FamilyOther     CropFamily = "Other"
)

// Season is the Indian cropping season an entry was planted in.
type Season string

const (
	SeasonKharif    Season = "Kharif"
	SeasonRabi      Season = "Rabi"
	SeasonZaid      Season = "Zaid"
	SeasonPerennial Season = "Perennial"
)

// FertilityTrend mirrors the soilFertilityTrend enum.
type FertilityTrend string

const (
	TrendImproving FertilityTrend = "Improving"
	TrendStable    FertilityTrend = "Stable"
	TrendDeclining FertilityTrend = "Declining"
	TrendUnknown   FertilityTrend = "Unknown"
)

const (
	DefaultYieldUnit       = "t/ha"
	DefaultRotationPattern = "Unknown"
)

// FieldRotation — one field's rotation history, current soil health and the
// last analysis results. Derived fields are recomputed on every write.
type FieldRotation struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId"        json:"userId"    validate:"required"`
	FieldID   string             `bson:"fieldId"       json:"fieldId"   validate:"required"`
	FieldName string             `bson:"fieldName"     json:"fieldName" validate:"required"`
	Area      float64            `bson:"area"          json:"area"      validate:"required,gt=0"`

	RotationHistory   []RotationEntry `bson:"rotationHistory"   json:"rotationHistory" validate:"dive"`
	CurrentSoilHealth SoilHealth      `bson:"currentSoilHealth" json:"currentSoilHealth"`

	// Derived by the analyzer
	RotationPattern    string         `bson:"rotationPattern"    json:"rotationPattern"`
	SoilFertilityTrend FertilityTrend `bson:"soilFertilityTrend" json:"soilFertilityTrend"`
	Recommendations    []string       `bson:"recommendations"    json:"recommendations"`

	// Version is checked and bumped on every write.
	Version   int64     `bson:"version"   json:"version"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// RotationEntry — one historical planting on a field. Entries are append-only.
type RotationEntry struct {
	CropName    string     `bson:"cropName"              json:"cropName"    validate:"required"`
	CropFamily  CropFamily `bson:"cropFamily"            json:"cropFamily"  validate:"required,oneof=Legume Cereal Oilseed Vegetable Fruit Fiber Other"`
	Season      Season     `bson:"season"                json:"season"      validate:"required,oneof=Kharif Rabi Zaid Perennial"`
	Year        int        `bson:"year"                  json:"year"        validate:"required"`
	PlantedDate time.Time  `bson:"plantedDate"           json:"plantedDate" validate:"required"`
	HarvestDate *time.Time `bson:"harvestDate,omitempty" json:"harvestDate,omitempty"`

	Yield     *float64 `bson:"yield,omitempty" json:"yield,omitempty" validate:"omitempty,gte=0"`
	YieldUnit string   `bson:"yieldUnit"       json:"yieldUnit"       validate:"omitempty,oneof=t/ha kg/ha quintal/ha tons kg"`

	SoilHealthBefore *SoilReading `bson:"soilHealthBefore,omitempty" json:"soilHealthBefore,omitempty"`
	SoilHealthAfter  *SoilReading `bson:"soilHealthAfter,omitempty"  json:"soilHealthAfter,omitempty"`

	FertilizersUsed []Fertilizer `bson:"fertilizersUsed,omitempty" json:"fertilizersUsed,omitempty"`
	Notes           string       `bson:"notes,omitempty"           json:"notes,omitempty"`
}

type Fertilizer struct {
	Type   string   `bson:"type"             json:"type"`
	Amount *float64 `bson:"amount,omitempty" json:"amount,omitempty"`
	Unit   string   `bson:"unit,omitempty"   json:"unit,omitempty"`
}
