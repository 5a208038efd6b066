package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/ti/docmock/dependencies/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes on the collection.
// Unique indexes only apply to documents that carry every indexed field.
func (m *Mongo) EnsureIndexes(ctx context.Context, table string, indexes ...*database.Index) error {
	if len(indexes) == 0 {
		return nil
	}
	col := m.Collection(table)
	models, err := indexModels(indexes)
	if err != nil {
		return err
	}
	if _, err = col.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("create index for %s error for %w", col.Name(), err)
	}
	return nil
}

func indexModels(indexes []*database.Index) ([]mongo.IndexModel, error) {
	models := make([]mongo.IndexModel, len(indexes))
	for i, v := range indexes {
		if v == nil || v.Field == "" {
			return nil, fmt.Errorf("index %d: field can not be empty", i)
		}
		value := 1
		if v.ReverseOrder {
			value = -1
		}
		fields := v.Fields()
		keys := make(bson.D, len(fields))
		partialFilter := make(bson.D, len(fields))
		for j, f := range fields {
			keys[j] = bson.E{Key: f, Value: value}
			partialFilter[j] = bson.E{Key: f, Value: bson.D{{Key: "$exists", Value: true}}}
		}
		opts := options.Index().SetName(v.Name())
		if v.Unique {
			opts.SetUnique(true)
			opts.SetPartialFilterExpression(partialFilter)
		}
		if v.Expires > time.Second {
			opts.SetExpireAfterSeconds(int32(v.Expires / time.Second))
		}
		models[i] = mongo.IndexModel{
			Keys:    keys,
			Options: opts,
		}
	}
	return models, nil
}
