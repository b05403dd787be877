package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"krishimitra/models"
)

// Request DTOs. Keep them minimal and explicit.

type createRotationReq struct {
	UserID            string              `json:"userId,omitempty"` // must match the token subject when set
	FieldID           string              `json:"fieldId"`
	FieldName         string              `json:"fieldName"`
	Area              float64             `json:"area"`
	RotationHistory   []rotationEntryReq  `json:"rotationHistory,omitempty"`
	CurrentSoilHealth *models.SoilReading `json:"currentSoilHealth,omitempty"`
}

type rotationEntryReq struct {
	CropName         string              `json:"cropName"`
	CropFamily       models.CropFamily   `json:"cropFamily"`
	Season           models.Season       `json:"season"`
	Year             int                 `json:"year"`
	PlantedDate      dateInput           `json:"plantedDate"`
	HarvestDate      dateInput           `json:"harvestDate"`
	Yield            *float64            `json:"yield,omitempty"`
	YieldUnit        string              `json:"yieldUnit,omitempty"`
	SoilHealthBefore *models.SoilReading `json:"soilHealthBefore,omitempty"`
	SoilHealthAfter  *models.SoilReading `json:"soilHealthAfter,omitempty"`
	FertilizersUsed  []models.Fertilizer `json:"fertilizersUsed,omitempty"`
	Notes            string              `json:"notes,omitempty"`
}

type updateFieldReq struct {
	FieldName *string  `json:"fieldName,omitempty"`
	Area      *float64 `json:"area,omitempty"`
}

func (e rotationEntryReq) toModel() models.RotationEntry {
	out := models.RotationEntry{
		CropName:         e.CropName,
		CropFamily:       e.CropFamily,
		Season:           e.Season,
		Year:             e.Year,
		PlantedDate:      e.PlantedDate.Time,
		Yield:            e.Yield,
		YieldUnit:        e.YieldUnit,
		SoilHealthBefore: e.SoilHealthBefore,
		SoilHealthAfter:  e.SoilHealthAfter,
		FertilizersUsed:  e.FertilizersUsed,
		Notes:            e.Notes,
	}
	if !e.HarvestDate.IsZero() {
		h := e.HarvestDate.Time
		out.HarvestDate = &h
	}
	return out
}

// dateInput accepts RFC 3339 timestamps or plain YYYY-MM-DD dates, as sent
// by HTML date inputs. null and "" decode to the zero time.
type dateInput struct {
	time.Time
}

func (d *dateInput) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}
