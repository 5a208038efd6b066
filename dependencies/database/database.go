// Package database defines the document storage a model is bound to and a
// registry of implementations keyed by URI scheme.
package database

import (
	"context"
	"fmt"
	"net/url"
	"sync"
)

// Database the document storage interface implemented by mongodb and the in-memory mock.
// nolint: interfacebloat // one method per model operation.
type Database interface {
	Close(ctx context.Context) error
	Insert(ctx context.Context, table string, docs any) (count int, err error)
	InsertOne(ctx context.Context, table string, data any) error
	// Update the doc, the value of doc can be [database.D] or any other pointer.
	Update(ctx context.Context, table string, condition C, doc any) (count int, err error)
	// UpdateOne the value of doc can be [database.D] or any other pointer.
	UpdateOne(ctx context.Context, table string, condition C, doc any) (count int, err error)
	// Delete with condition
	Delete(ctx context.Context, table string, condition C) (count int, err error)
	DeleteOne(ctx context.Context, table string, condition C) (count int, err error)
	// Find the data must be a slice, sortBy, ["age"] means age ASC, ["-age"] means age DESC.
	Find(ctx context.Context, table string, condition C, sortBy []string, limit int, arrayPtr any) error
	FindOne(ctx context.Context, table string, condition C, data any) error
	Exist(ctx context.Context, table string, condition C) (bool, error)
	Count(ctx context.Context, table string, condition C) (int64, error)
	// EnsureIndexes creates the indexes if they do not exist yet.
	EnsureIndexes(ctx context.Context, table string, indexes ...*Index) error
	// Drop removes the table and every document in it.
	Drop(ctx context.Context, table string) error
}

// NewFunc builds a Database from a parsed uri.
type NewFunc func(context.Context, *url.URL) (Database, error)

var (
	implementsMu sync.RWMutex
	implements   = make(map[string]NewFunc)
)

// New database client by uri, the scheme selects the implementation.
func New(ctx context.Context, uri string) (Database, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}
	implementsMu.RLock()
	newFn, ok := implements[u.Scheme]
	implementsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s not implement", u.Scheme)
	}
	return newFn(ctx, u)
}

// RegisterImplements register implements.
func RegisterImplements(scheme string, newFN NewFunc) {
	implementsMu.Lock()
	defer implementsMu.Unlock()
	implements[scheme] = newFN
}
