package rotation

import (
	"context"
	"sort"
	"sync"

	"krishimitra/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is an in-process Store with the same semantics as MongoStore.
// Records are deep-copied in and out so callers never share state.
type MemoryStore struct {
	mu   sync.RWMutex
	recs map[primitive.ObjectID]models.FieldRotation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[primitive.ObjectID]models.FieldRotation)}
}

func (s *MemoryStore) Insert(_ context.Context, rec *models.FieldRotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.recs {
		if r.UserID == rec.UserID && r.FieldID == rec.FieldID {
			return ErrDuplicateField
		}
	}
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	s.recs[rec.ID] = clone(*rec)
	return nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.FieldRotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.FieldRotation{}
	for _, r := range s.recs {
		if r.UserID == userID {
			out = append(out, clone(r))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *MemoryStore) FindByID(_ context.Context, userID, id primitive.ObjectID) (*models.FieldRotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recs[id]
	if !ok || r.UserID != userID {
		return nil, ErrNotFound
	}
	c := clone(r)
	return &c, nil
}

func (s *MemoryStore) FindByFieldID(_ context.Context, userID primitive.ObjectID, fieldID string) (*models.FieldRotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.recs {
		if r.UserID == userID && r.FieldID == fieldID {
			c := clone(r)
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Replace(_ context.Context, rec *models.FieldRotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.recs[rec.ID]
	if !ok || cur.UserID != rec.UserID {
		return ErrNotFound
	}
	if cur.Version != rec.Version {
		return ErrConflict
	}
	rec.Version++
	s.recs[rec.ID] = clone(*rec)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.recs[id]
	if !ok || r.UserID != userID {
		return ErrNotFound
	}
	delete(s.recs, id)
	return nil
}

func clone(r models.FieldRotation) models.FieldRotation {
	out := r
	if r.RotationHistory != nil {
		out.RotationHistory = make([]models.RotationEntry, len(r.RotationHistory))
		for i, e := range r.RotationHistory {
			out.RotationHistory[i] = cloneEntry(e)
		}
	}
	if r.Recommendations != nil {
		out.Recommendations = append([]string{}, r.Recommendations...)
	}
	return out
}

func cloneEntry(e models.RotationEntry) models.RotationEntry {
	out := e
	if e.HarvestDate != nil {
		t := *e.HarvestDate
		out.HarvestDate = &t
	}
	out.Yield = cloneFloat(e.Yield)
	out.SoilHealthBefore = cloneReading(e.SoilHealthBefore)
	out.SoilHealthAfter = cloneReading(e.SoilHealthAfter)
	if e.FertilizersUsed != nil {
		out.FertilizersUsed = make([]models.Fertilizer, len(e.FertilizersUsed))
		for i, f := range e.FertilizersUsed {
			f.Amount = cloneFloat(f.Amount)
			out.FertilizersUsed[i] = f
		}
	}
	return out
}

func cloneReading(r *models.SoilReading) *models.SoilReading {
	if r == nil {
		return nil
	}
	return &models.SoilReading{
		Nitrogen:      cloneFloat(r.Nitrogen),
		Phosphorus:    cloneFloat(r.Phosphorus),
		Potassium:     cloneFloat(r.Potassium),
		PH:            cloneFloat(r.PH),
		OrganicMatter: cloneFloat(r.OrganicMatter),
	}
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
