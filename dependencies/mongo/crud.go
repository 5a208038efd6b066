package mongo

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/ti/docmock/dependencies/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Insert insert many data
func (m *Mongo) Insert(ctx context.Context, table string, docs any) (count int, err error) {
	data := reflect.ValueOf(docs)
	if data.Kind() != reflect.Slice {
		if err = m.InsertOne(ctx, table, docs); err != nil {
			return 0, err
		}
		return 1, nil
	}
	dataLen := data.Len()
	if dataLen == 0 {
		return 0, errors.New("no insert data found")
	}
	mgoDocs := make([]any, dataLen)
	for i := 0; i < dataLen; i++ {
		mgoDocs[i] = toDocument(data.Index(i).Interface())
	}
	ret, err := m.Collection(table).InsertMany(ctx, mgoDocs, options.InsertMany().SetOrdered(false))
	if err != nil {
		return 0, convertToStatusError(table, err)
	}
	return len(ret.InsertedIDs), nil
}

// InsertOne insert one data
func (m *Mongo) InsertOne(ctx context.Context, table string, data any) error {
	_, err := m.Collection(table).InsertOne(ctx, toDocument(data))
	return convertToStatusError(table, err)
}

// Update update data
func (m *Mongo) Update(ctx context.Context, table string, conds database.C, data any) (int, error) {
	ret, err := m.Collection(table).UpdateMany(ctx, getCondition(conds), bson.M{"$set": toDocument(data)})
	if err != nil {
		return 0, convertToStatusError(table, err)
	}
	return int(ret.ModifiedCount), nil
}

// UpdateOne update one data
func (m *Mongo) UpdateOne(ctx context.Context, table string, conds database.C, data any) (int, error) {
	ret, err := m.Collection(table).UpdateOne(ctx, getCondition(conds), bson.M{"$set": toDocument(data)})
	if err != nil {
		return 0, convertToStatusError(table, err)
	}
	if ret.MatchedCount == 0 {
		return 0, status.Errorf(codes.NotFound, "condition %s not found", conds)
	}
	return int(ret.ModifiedCount), nil
}

// Delete delete data
func (m *Mongo) Delete(ctx context.Context, table string, conds database.C) (int, error) {
	ret, err := m.Collection(table).DeleteMany(ctx, getCondition(conds))
	if err != nil {
		return 0, convertToStatusError(table, err)
	}
	return int(ret.DeletedCount), nil
}

// DeleteOne delete one
func (m *Mongo) DeleteOne(ctx context.Context, table string, conds database.C) (int, error) {
	ret, err := m.Collection(table).DeleteOne(ctx, getCondition(conds))
	if err != nil {
		return 0, convertToStatusError(table, err)
	}
	return int(ret.DeletedCount), nil
}

// Find data.
func (m *Mongo) Find(ctx context.Context, table string, conds database.C, order []string,
	limit int, arrayPtr any,
) error {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if len(order) > 0 {
		opts.SetSort(getSort(order))
	}
	cursor, err := m.Collection(table).Find(ctx, getCondition(conds), opts)
	if err != nil {
		return convertToStatusError(table, err)
	}
	return convertToStatusError(table, cursor.All(ctx, arrayPtr))
}

// FindOne find one
func (m *Mongo) FindOne(ctx context.Context, table string, conds database.C, data any) error {
	return convertToStatusError(table, m.Collection(table).FindOne(ctx, getCondition(conds)).Decode(data))
}

// Exist check if the data exists.
func (m *Mongo) Exist(ctx context.Context, table string, conds database.C) (bool, error) {
	count, err := m.Collection(table).CountDocuments(ctx, getCondition(conds), options.Count().SetLimit(1))
	if err != nil {
		return false, convertToStatusError(table, err)
	}
	return count > 0, nil
}

// Count the data.
func (m *Mongo) Count(ctx context.Context, table string, conds database.C) (int64, error) {
	count, err := m.Collection(table).CountDocuments(ctx, getCondition(conds))
	return count, convertToStatusError(table, err)
}

// Drop the collection.
func (m *Mongo) Drop(ctx context.Context, table string) error {
	return convertToStatusError(table, m.Collection(table).Drop(ctx))
}

var operators = map[database.Condition]string{
	database.Ne:  "$ne",
	database.Lt:  "$lt",
	database.Lte: "$lte",
	database.Gt:  "$gt",
	database.Gte: "$gte",
	database.In:  "$in",
	database.Nin: "$nin",
}

func getCondition(conds database.C) bson.D {
	cond := bson.D{}
	for _, v := range conds {
		value := v.Value
		if op, ok := operators[v.C]; ok {
			value = bson.D{{Key: op, Value: value}}
		}
		cond = append(cond, bson.E{Key: v.Key, Value: value})
	}
	return cond
}

func getSort(order []string) bson.D {
	sort := make(bson.D, len(order))
	for i, field := range order {
		if strings.HasPrefix(field, "-") {
			sort[i] = bson.E{Key: field[1:], Value: -1}
		} else {
			sort[i] = bson.E{Key: field, Value: 1}
		}
	}
	return sort
}

// toDocument converts database.D to bson.D, other values are left to the driver codecs.
func toDocument(data any) any {
	if d, ok := data.(database.D); ok {
		doc := make(bson.D, len(d))
		for i, e := range d {
			doc[i] = bson.E{Key: e.Key, Value: e.Value}
		}
		return doc
	}
	return data
}

// ensure the interface
var _ database.Database = (*Mongo)(nil)

