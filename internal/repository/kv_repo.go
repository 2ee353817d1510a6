package repository

import (
	"context"
	"time"
	"wellbeing/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// kvDocument is one key of the substrate stored as a MongoDB document
type kvDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// KVRepo exposes a MongoDB collection as the record store's key-value
// substrate. Each key is one document, replaced atomically on write.
type KVRepo struct {
	collection *mongo.Collection
}

// NewKVRepo creates a Mongo-backed KV over the "kv" collection
func NewKVRepo(db *mongo.Database) *KVRepo {
	return &KVRepo{
		collection: db.Collection("kv"),
	}
}

func (r *KVRepo) Get(ctx context.Context, key string) (string, error) {
	var doc kvDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return doc.Value, nil
}

func (r *KVRepo) Set(ctx context.Context, key, value string) error {
	opts := options.Replace().SetUpsert(true)
	doc := kvDocument{Key: key, Value: value, UpdatedAt: time.Now()}
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts)
	return err
}

func (r *KVRepo) Remove(ctx context.Context, key string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": key})
	return err
}
