package repository

import (
	"context"
	"os"
	"testing"
	"time"
	"wellbeing/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TestKVRepoAgainstMongo needs a live server: MONGO_URI=mongodb://localhost:27017
func TestKVRepoAgainstMongo(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	defer client.Disconnect(ctx)

	db := client.Database("wellbeing_test_" + uuid.NewString()[:8])
	defer db.Drop(ctx)

	repo := NewKVRepo(db)

	_, err = repo.Get(ctx, "wellbeing_stats")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, repo.Set(ctx, "wellbeing_stats", `{"totalCount":1}`))
	require.NoError(t, repo.Set(ctx, "wellbeing_stats", `{"totalCount":2}`))
	got, err := repo.Get(ctx, "wellbeing_stats")
	require.NoError(t, err)
	assert.Equal(t, `{"totalCount":2}`, got)

	require.NoError(t, repo.Remove(ctx, "wellbeing_stats"))
	_, err = repo.Get(ctx, "wellbeing_stats")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
