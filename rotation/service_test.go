package rotation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"krishimitra/analysis"
	"krishimitra/models"
)

var fixedNow = time.Date(2024, time.November, 2, 9, 30, 0, 0, time.UTC)

func f64(v float64) *float64 { return &v }

func newTestService(t *testing.T) (*Service, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	return NewService(store, WithClock(func() time.Time { return fixedNow })), store
}

func cropEntry(name string, family models.CropFamily, year int) models.RotationEntry {
	return models.RotationEntry{
		CropName:    name,
		CropFamily:  family,
		Season:      models.SeasonRabi,
		Year:        year,
		PlantedDate: time.Date(year, time.November, 1, 0, 0, 0, 0, time.UTC),
	}
}

func createField(t *testing.T, svc *Service, owner primitive.ObjectID) *models.FieldRotation {
	t.Helper()
	rec, err := svc.Create(context.Background(), CreateInput{
		UserID:    owner,
		FieldID:   "field-north",
		FieldName: "North Plot",
		Area:      5,
	})
	require.NoError(t, err)
	return rec
}

func TestCreate_Defaults(t *testing.T) {
	svc, _ := newTestService(t)
	owner := primitive.NewObjectID()

	rec := createField(t, svc, owner)

	assert.False(t, rec.ID.IsZero())
	assert.Equal(t, analysis.PatternInsufficientData, rec.RotationPattern)
	assert.Equal(t, models.TrendUnknown, rec.SoilFertilityTrend)
	assert.Empty(t, rec.Recommendations)
	assert.Equal(t, models.DefaultSoilHealth(fixedNow), rec.CurrentSoilHealth)
	assert.Equal(t, int64(0), rec.Version)
}

func TestCreate_PartialSoilHealthKeepsDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	rec, err := svc.Create(context.Background(), CreateInput{
		UserID:            primitive.NewObjectID(),
		FieldID:           "f1",
		FieldName:         "South",
		Area:              2.5,
		CurrentSoilHealth: &models.SoilReading{PH: f64(5.5)},
	})
	require.NoError(t, err)

	assert.Equal(t, 5.5, rec.CurrentSoilHealth.PH)
	assert.Equal(t, models.DefaultNitrogen, rec.CurrentSoilHealth.Nitrogen)
	assert.Equal(t, []string{analysis.RecAcidicSoil}, rec.Recommendations)
}

func TestCreate_Validation(t *testing.T) {
	owner := primitive.NewObjectID()
	tests := []struct {
		name  string
		in    CreateInput
		field string
	}{
		{"missing user", CreateInput{FieldID: "f", FieldName: "n", Area: 1}, "userId is required"},
		{"missing field id", CreateInput{UserID: owner, FieldName: "n", Area: 1}, "fieldId is required"},
		{"blank field name", CreateInput{UserID: owner, FieldID: "f", FieldName: "   ", Area: 1}, "fieldName is required"},
		{"missing area", CreateInput{UserID: owner, FieldID: "f", FieldName: "n"}, "area is required"},
		{"negative area", CreateInput{UserID: owner, FieldID: "f", FieldName: "n", Area: -2}, "area must be greater than 0"},
		{
			"bad initial entry",
			CreateInput{UserID: owner, FieldID: "f", FieldName: "n", Area: 1, RotationHistory: []models.RotationEntry{{CropName: "rice"}}},
			"rotationHistory[0].cropFamily is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService(t)
			_, err := svc.Create(context.Background(), tt.in)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)

			recs, err := store.ListByUser(context.Background(), owner)
			require.NoError(t, err)
			assert.Empty(t, recs)
		})
	}
}

func TestCreate_DuplicateFieldID(t *testing.T) {
	svc, _ := newTestService(t)
	owner := primitive.NewObjectID()
	createField(t, svc, owner)

	_, err := svc.Create(context.Background(), CreateInput{UserID: owner, FieldID: "field-north", FieldName: "Again", Area: 1})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAppendEntry_Monoculture(t *testing.T) {
	svc, _ := newTestService(t)
	owner := primitive.NewObjectID()
	rec := createField(t, svc, owner)

	var err error
	for i, name := range []string{"rice", "wheat", "maize"} {
		rec, err = svc.AppendEntry(context.Background(), owner, rec.ID, cropEntry(name, models.FamilyCereal, 2021+i))
		require.NoError(t, err)
	}

	assert.Len(t, rec.RotationHistory, 3)
	assert.Equal(t, analysis.PatternMonoculture, rec.RotationPattern)
	assert.Contains(t, rec.Recommendations, analysis.RecAvoidMonoculture)
	assert.Contains(t, rec.Recommendations, analysis.RecIncludeLegumes)
	assert.Equal(t, int64(3), rec.Version)
	assert.Equal(t, models.DefaultYieldUnit, rec.RotationHistory[0].YieldUnit)
}

func TestAppendEntry_SoilHealthAfterMerges(t *testing.T) {
	svc, _ := newTestService(t)
	owner := primitive.NewObjectID()
	rec := createField(t, svc, owner)

	e1 := cropEntry("rice", models.FamilyCereal, 2022)
	e1.SoilHealthBefore = &models.SoilReading{Nitrogen: f64(40)}
	e1.SoilHealthAfter = &models.SoilReading{Nitrogen: f64(30), PH: f64(6.8)}
	e2 := cropEntry("wheat", models.FamilyCereal, 2023)
	e2.SoilHealthBefore = &models.SoilReading{Nitrogen: f64(30)}
	e2.SoilHealthAfter = &models.SoilReading{Nitrogen: f64(25)}

	_, err := svc.AppendEntry(context.Background(), owner, rec.ID, e1)
	require.NoError(t, err)
	rec, err = svc.AppendEntry(context.Background(), owner, rec.ID, e2)
	require.NoError(t, err)

	assert.Equal(t, 25.0, rec.CurrentSoilHealth.Nitrogen)
	assert.Equal(t, 6.8, rec.CurrentSoilHealth.PH)
	assert.Equal(t, models.DefaultPhosphorus, rec.CurrentSoilHealth.Phosphorus)
	assert.Equal(t, fixedNow, rec.CurrentSoilHealth.LastTested)
	assert.Equal(t, models.TrendDeclining, rec.SoilFertilityTrend)
	assert.Contains(t, rec.Recommendations, analysis.RecFertilityDecline)
	assert.Contains(t, rec.Recommendations, analysis.RecLowNitrogen)
}

func TestAppendEntry_ValidationDoesNotMutate(t *testing.T) {
	svc, store := newTestService(t)
	owner := primitive.NewObjectID()
	rec := createField(t, svc, owner)

	bad := cropEntry("rice", "Grass", 2022)
	bad.PlantedDate = time.Time{}
	_, err := svc.AppendEntry(context.Background(), owner, rec.ID, bad)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "plantedDate is required")
	assert.Contains(t, verr.Fields, "cropFamily must be one of [Legume Cereal Oilseed Vegetable Fruit Fiber Other]")

	stored, err := store.FindByID(context.Background(), owner, rec.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.RotationHistory)
	assert.Equal(t, int64(0), stored.Version)
}

func TestAppendEntry_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.AppendEntry(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), cropEntry("rice", models.FamilyCereal, 2022))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateSoilHealth(t *testing.T) {
	svc, _ := newTestService(t)
	owner := primitive.NewObjectID()
	rec := createField(t, svc, owner)

	rec, err := svc.UpdateSoilHealth(context.Background(), owner, rec.ID, models.SoilReading{
		PH:            f64(8.6),
		OrganicMatter: f64(1.2),
	})
	require.NoError(t, err)

	assert.Equal(t, 8.6, rec.CurrentSoilHealth.PH)
	assert.Equal(t, 1.2, rec.CurrentSoilHealth.OrganicMatter)
	assert.Equal(t, models.DefaultNitrogen, rec.CurrentSoilHealth.Nitrogen)
	assert.Equal(t, []string{analysis.RecAlkalineSoil, analysis.RecLowOrganicMatter}, rec.Recommendations)
}

func TestUpdateField(t *testing.T) {
	svc, _ := newTestService(t)
	owner := primitive.NewObjectID()
	rec := createField(t, svc, owner)

	name := "East Plot"
	out, err := svc.UpdateField(context.Background(), owner, rec.ID, FieldUpdate{FieldName: &name})
	require.NoError(t, err)
	assert.Equal(t, "East Plot", out.FieldName)
	assert.Equal(t, 5.0, out.Area)

	_, err = svc.UpdateField(context.Background(), owner, rec.ID, FieldUpdate{Area: f64(0)})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.UpdateField(context.Background(), owner, rec.ID, FieldUpdate{})
	assert.ErrorAs(t, err, &verr)
}

func TestAnalysis_MatchesCreate(t *testing.T) {
	svc, _ := newTestService(t)
	owner := primitive.NewObjectID()

	a := cropEntry("rice", models.FamilyCereal, 2021)
	a.Yield = f64(4.2)
	b := cropEntry("chickpea", models.FamilyLegume, 2023)
	created, err := svc.Create(context.Background(), CreateInput{
		UserID:          owner,
		FieldID:         "f-2",
		FieldName:       "River Plot",
		Area:            3,
		RotationHistory: []models.RotationEntry{a, b},
	})
	require.NoError(t, err)

	an, err := svc.Analysis(context.Background(), owner, created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.RotationPattern, an.RotationPattern)
	assert.Equal(t, created.SoilFertilityTrend, an.SoilFertilityTrend)
	assert.Equal(t, created.Recommendations, an.Recommendations)
	assert.Equal(t, analysis.PatternLegumeCereal, an.RotationPattern)
	assert.Equal(t, 2, an.Statistics.TotalCropsGrown)
	assert.Equal(t, 3, an.Statistics.YearsTracked)
	require.NotNil(t, an.Statistics.AverageYield)
	assert.InDelta(t, 4.2, *an.Statistics.AverageYield, 1e-9)
	require.NotNil(t, an.Statistics.LastCrop)
	assert.Equal(t, "chickpea", *an.Statistics.LastCrop)
}

func TestOwnershipIsolation(t *testing.T) {
	svc, _ := newTestService(t)
	owner := primitive.NewObjectID()
	rec := createField(t, svc, owner)
	stranger := primitive.NewObjectID()

	_, err := svc.Get(context.Background(), stranger, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetByField(context.Background(), stranger, "field-north")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), stranger, rec.ID), ErrNotFound)

	list, err := svc.List(context.Background(), stranger)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService(t)
	owner := primitive.NewObjectID()
	rec := createField(t, svc, owner)

	require.NoError(t, svc.Delete(context.Background(), owner, rec.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), owner, rec.ID), ErrNotFound)
}

// racingStore lets a second writer land between a read and a write.
type racingStore struct {
	*MemoryStore
	interleave func()
}

func (s *racingStore) Replace(ctx context.Context, rec *models.FieldRotation) error {
	if s.interleave != nil {
		f := s.interleave
		s.interleave = nil
		f()
	}
	return s.MemoryStore.Replace(ctx, rec)
}

func TestAppendEntry_ConcurrentWriterConflicts(t *testing.T) {
	mem := NewMemoryStore()
	store := &racingStore{MemoryStore: mem}
	svc := NewService(store, WithClock(func() time.Time { return fixedNow }))
	owner := primitive.NewObjectID()
	rec := createField(t, svc, owner)

	store.interleave = func() {
		other, err := mem.FindByID(context.Background(), owner, rec.ID)
		require.NoError(t, err)
		require.NoError(t, mem.Replace(context.Background(), other))
	}

	_, err := svc.AppendEntry(context.Background(), owner, rec.ID, cropEntry("rice", models.FamilyCereal, 2022))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))

	stored, err := mem.FindByID(context.Background(), owner, rec.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.RotationHistory)
}
