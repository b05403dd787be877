package rotation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"krishimitra/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the Mongo collection holding rotation aggregates.
const CollectionName = "crop_rotations"

// collection is the subset of *mongo.Collection the store calls.
type collection interface {
	Indexes() mongo.IndexView
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// MongoStore keeps one document per field.
type MongoStore struct {
	coll collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the owner listing index and the unique
// (userId, fieldId) index. The unique index cannot be built while two
// records of one owner share a fieldId; those must be merged or removed
// before the server will start.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "updatedAt", Value: -1}}},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "fieldId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if mongo.IsDuplicateKeyError(err) {
		err = fmt.Errorf("%s holds duplicate (userId, fieldId) pairs: %w", CollectionName, err)
	}
	return storageErr("create indexes", err)
}

func (s *MongoStore) Insert(ctx context.Context, rec *models.FieldRotation) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateField
		}
		return storageErr("insert", err)
	}
	return nil
}

func (s *MongoStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.FieldRotation, error) {
	ctx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()

	cur, err := s.coll.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}))
	if err != nil {
		return nil, storageErr("find", err)
	}
	defer cur.Close(ctx)

	out := []models.FieldRotation{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, storageErr("decode", err)
	}
	return out, nil
}

func (s *MongoStore) FindByID(ctx context.Context, userID, id primitive.ObjectID) (*models.FieldRotation, error) {
	return s.findOne(ctx, bson.M{"_id": id, "userId": userID})
}

func (s *MongoStore) FindByFieldID(ctx context.Context, userID primitive.ObjectID, fieldID string) (*models.FieldRotation, error) {
	return s.findOne(ctx, bson.M{"fieldId": fieldID, "userId": userID})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*models.FieldRotation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var rec models.FieldRotation
	if err := s.coll.FindOne(ctx, filter).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, storageErr("find one", err)
	}
	return &rec, nil
}

// Replace writes the whole document, guarded by the version it was read at.
func (s *MongoStore) Replace(ctx context.Context, rec *models.FieldRotation) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	expected := rec.Version
	next := *rec
	next.Version = expected + 1

	res, err := s.coll.ReplaceOne(ctx, versionFilter(rec.UserID, rec.ID, expected), &next)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateField
		}
		return storageErr("replace", err)
	}
	if res.MatchedCount == 0 {
		// Either gone or someone else wrote first.
		n, err := s.coll.CountDocuments(ctx, bson.M{"_id": rec.ID, "userId": rec.UserID})
		if err != nil {
			return storageErr("count", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	rec.Version = next.Version
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, userID, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return storageErr("delete", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func versionFilter(userID, id primitive.ObjectID, version int64) bson.M {
	return bson.M{"_id": id, "userId": userID, "version": version}
}
