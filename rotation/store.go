package rotation

import (
	"context"

	"krishimitra/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store persists FieldRotation aggregates. Every lookup is scoped to the
// owning user. Replace must only succeed when the stored version equals
// rec.Version, and must bump rec.Version on success.
type Store interface {
	Insert(ctx context.Context, rec *models.FieldRotation) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.FieldRotation, error)
	FindByID(ctx context.Context, userID, id primitive.ObjectID) (*models.FieldRotation, error)
	FindByFieldID(ctx context.Context, userID primitive.ObjectID, fieldID string) (*models.FieldRotation, error)
	Replace(ctx context.Context, rec *models.FieldRotation) error
	Delete(ctx context.Context, userID, id primitive.ObjectID) error
}
