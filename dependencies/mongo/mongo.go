// Package mongo implements database.Database over the official mongo driver.
package mongo

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/ti/docmock/dependencies/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo the mongo client
type Mongo struct {
	*mongo.Client
	defaultDatabase string
}

func init() {
	database.RegisterImplements("mongodb", func(ctx context.Context, u *url.URL) (database.Database, error) {
		m := &Mongo{}
		return m, m.Init(ctx, u)
	})
}

// New client
func New(ctx context.Context, uri string) (*Mongo, error) {
	m := &Mongo{}
	u, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}
	return m, m.Init(ctx, u)
}

// Init the mongo client and ping the default database named in the uri path.
func (m *Mongo) Init(ctx context.Context, u *url.URL) error {
	if len(u.Path) <= 1 {
		return errors.New("default database not set in mongo uri")
	}
	uri := u.String()
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetBSONOptions(&options.BSONOptions{
			UseJSONStructTags:   true,
			NilSliceAsEmpty:     true,
			NilByteSliceAsEmpty: true,
		})
	mongoClient, err := mongo.Connect(ctx, opts)
	if err != nil {
		return errors.New("can not dial mongo " + uri + " - " + err.Error())
	}
	defaultDatabase := u.Path[1:]
	err = mongoClient.Database(defaultDatabase).RunCommand(ctx, bson.M{"ping": 1}).Err()
	if err != nil {
		_ = mongoClient.Disconnect(ctx)
		return errors.New("can not ping mongo " + uri + " - " + err.Error())
	}
	m.defaultDatabase = defaultDatabase
	m.Client = mongoClient
	return nil
}

// Collection get Collection
func (m *Mongo) Collection(colName string) *mongo.Collection {
	return m.Database(m.defaultDatabase).Collection(colName)
}

// Close database.
func (m *Mongo) Close(ctx context.Context) error {
	if m.Client == nil {
		return nil
	}
	err := m.Client.Disconnect(ctx)
	m.Client = nil
	return err
}
