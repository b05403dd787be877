// Package rotation owns the FieldRotation lifecycle: validation, soil-health
// merging, recompute-on-write and optimistic-concurrency checked persistence.
package rotation

import (
	"context"
	"strings"
	"time"

	"krishimitra/analysis"
	"krishimitra/models"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service implements the crop-rotation operations over a Store.
type Service struct {
	store    Store
	validate *validator.Validate
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for lastTested and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		validate: newValidator(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CreateInput carries a new field registration.
type CreateInput struct {
	UserID            primitive.ObjectID
	FieldID           string
	FieldName         string
	Area              float64
	RotationHistory   []models.RotationEntry
	CurrentSoilHealth *models.SoilReading
}

// FieldUpdate carries metadata changes. Nil means unchanged.
type FieldUpdate struct {
	FieldName *string
	Area      *float64
}

// Analysis is the detailed, read-only view of one field.
type Analysis struct {
	FieldName          string                 `json:"fieldName"`
	Area               float64                `json:"area"`
	RotationPattern    string                 `json:"rotationPattern"`
	SoilFertilityTrend models.FertilityTrend  `json:"soilFertilityTrend"`
	CurrentSoilHealth  models.SoilHealth      `json:"currentSoilHealth"`
	Recommendations    []string               `json:"recommendations"`
	Statistics         analysis.Statistics    `json:"statistics"`
	RotationHistory    []models.RotationEntry `json:"rotationHistory"`
}

// Create registers a field. Derived state is computed before the first write
// so an immediate read sees the same analysis.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.FieldRotation, error) {
	now := s.now().UTC()

	rec := &models.FieldRotation{
		UserID:          in.UserID,
		FieldID:         strings.TrimSpace(in.FieldID),
		FieldName:       strings.TrimSpace(in.FieldName),
		Area:            in.Area,
		RotationHistory: make([]models.RotationEntry, 0, len(in.RotationHistory)),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, e := range in.RotationHistory {
		rec.RotationHistory = append(rec.RotationHistory, normalizeEntry(e))
	}

	if err := s.validate.Struct(rec); err != nil {
		return nil, toValidationError("invalid crop rotation record", err)
	}

	rec.CurrentSoilHealth = models.DefaultSoilHealth(now)
	if in.CurrentSoilHealth != nil {
		rec.CurrentSoilHealth = rec.CurrentSoilHealth.Apply(*in.CurrentSoilHealth, now)
	}

	analysis.Recompute(rec)
	if err := s.store.Insert(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// AppendEntry adds a planting to the field's history. A soilHealthAfter
// snapshot becomes the field's current soil health.
func (s *Service) AppendEntry(ctx context.Context, userID, id primitive.ObjectID, entry models.RotationEntry) (*models.FieldRotation, error) {
	entry = normalizeEntry(entry)
	if err := s.validate.Struct(entry); err != nil {
		return nil, toValidationError("invalid rotation entry", err)
	}

	rec, err := s.store.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rec.RotationHistory = append(rec.RotationHistory, entry)
	if entry.SoilHealthAfter != nil {
		rec.CurrentSoilHealth = rec.CurrentSoilHealth.Apply(*entry.SoilHealthAfter, now)
	}

	return s.save(ctx, rec, now)
}

// UpdateSoilHealth overwrites only the measured nutrients.
func (s *Service) UpdateSoilHealth(ctx context.Context, userID, id primitive.ObjectID, reading models.SoilReading) (*models.FieldRotation, error) {
	rec, err := s.store.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rec.CurrentSoilHealth = rec.CurrentSoilHealth.Apply(reading, now)
	return s.save(ctx, rec, now)
}

// UpdateField changes name and/or area. Derived state does not depend on
// either, so no recompute happens.
func (s *Service) UpdateField(ctx context.Context, userID, id primitive.ObjectID, upd FieldUpdate) (*models.FieldRotation, error) {
	var name string
	if upd.FieldName != nil {
		name = strings.TrimSpace(*upd.FieldName)
	}
	if name == "" && upd.Area == nil {
		return nil, &ValidationError{Msg: "nothing to update", Fields: []string{"fieldName or area is required"}}
	}
	if upd.Area != nil && *upd.Area <= 0 {
		return nil, &ValidationError{Msg: "invalid field update", Fields: []string{"area must be greater than 0"}}
	}

	rec, err := s.store.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		rec.FieldName = name
	}
	if upd.Area != nil {
		rec.Area = *upd.Area
	}
	rec.UpdatedAt = s.now().UTC()
	if err := s.store.Replace(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Get returns one record with freshly computed analysis. Nothing is written.
func (s *Service) Get(ctx context.Context, userID, id primitive.ObjectID) (*models.FieldRotation, error) {
	rec, err := s.store.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	analysis.Recompute(rec)
	return rec, nil
}

// GetByField looks a record up by the caller-supplied field identifier.
func (s *Service) GetByField(ctx context.Context, userID primitive.ObjectID, fieldID string) (*models.FieldRotation, error) {
	rec, err := s.store.FindByFieldID(ctx, userID, strings.TrimSpace(fieldID))
	if err != nil {
		return nil, err
	}
	analysis.Recompute(rec)
	return rec, nil
}

// List returns the user's records, most recently updated first.
func (s *Service) List(ctx context.Context, userID primitive.ObjectID) ([]models.FieldRotation, error) {
	recs, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		analysis.Recompute(&recs[i])
	}
	return recs, nil
}

// Analysis recomputes the record and adds history statistics.
func (s *Service) Analysis(ctx context.Context, userID, id primitive.ObjectID) (*Analysis, error) {
	rec, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return &Analysis{
		FieldName:          rec.FieldName,
		Area:               rec.Area,
		RotationPattern:    rec.RotationPattern,
		SoilFertilityTrend: rec.SoilFertilityTrend,
		CurrentSoilHealth:  rec.CurrentSoilHealth,
		Recommendations:    rec.Recommendations,
		Statistics:         analysis.Summarize(rec.RotationHistory),
		RotationHistory:    rec.RotationHistory,
	}, nil
}

func (s *Service) Delete(ctx context.Context, userID, id primitive.ObjectID) error {
	return s.store.Delete(ctx, userID, id)
}

func (s *Service) save(ctx context.Context, rec *models.FieldRotation, now time.Time) (*models.FieldRotation, error) {
	analysis.Recompute(rec)
	rec.UpdatedAt = now
	if err := s.store.Replace(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func normalizeEntry(e models.RotationEntry) models.RotationEntry {
	e.CropName = strings.TrimSpace(e.CropName)
	if e.YieldUnit == "" {
		e.YieldUnit = models.DefaultYieldUnit
	}
	return e
}
