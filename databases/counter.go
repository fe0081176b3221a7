package databases

// go generate: mockery --name CounterDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/darul-qaza/darul-qaza-api/models"
)

const counterCollectionName = "counters"

// CounterDatabase allocates monotonically increasing sequence numbers, unique
// per (name, year). NextSequence is atomic: concurrent callers never observe
// the same value.
type CounterDatabase interface {
	NextSequence(ctx context.Context, name string, year int) (int, error)
}

type counterDatabase struct {
	db DatabaseHelper
}

// NewCounterDatabase initializes a new instance of counter database with the provided db connection
func NewCounterDatabase(db DatabaseHelper) CounterDatabase {
	return &counterDatabase{
		db: db,
	}
}

func (c *counterDatabase) NextSequence(ctx context.Context, name string, year int) (int, error) {
	upsert := true
	after := options.After
	opts := &options.FindOneAndUpdateOptions{
		Upsert:         &upsert,
		ReturnDocument: &after,
	}

	counter := &models.Counter{}
	err := c.db.Collection(counterCollectionName).FindOneAndUpdate(ctx,
		bson.M{"name": name, "year": year},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}
