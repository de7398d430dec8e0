package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// sequence hands out monotonically increasing numeric ids per name
type sequence struct {
	collection *mongo.Collection
	name       string
}

func newSequence(db *mongo.Database, name string) *sequence {
	return &sequence{
		collection: db.Collection("counters"),
		name:       name,
	}
}

// Next atomically increments and returns the counter
func (s *sequence) Next(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Value int64 `bson:"value"`
	}
	err := s.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": s.name},
		bson.M{"$inc": bson.M{"value": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Value, nil
}
