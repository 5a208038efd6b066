package odm

import (
	"context"
	"sync"

	"github.com/ti/docmock/dependencies/database"
)

// Model a schema bound to one collection of a connection.
type Model struct {
	name       string
	schema     *Schema
	collection string
	conn       *Connection

	mu      sync.RWMutex
	storage database.Database
}

// Name the model name.
func (m *Model) Name() string {
	return m.name
}

// Schema the schema the model was defined with.
func (m *Model) Schema() *Schema {
	return m.schema
}

// CollectionName the collection the documents live in.
func (m *Model) CollectionName() string {
	return m.collection
}

// Connection the connection the model was defined on.
func (m *Model) Connection() *Connection {
	return m.conn
}

// SetStorage pins the model to db instead of its connection's database.
func (m *Model) SetStorage(db database.Database) {
	m.mu.Lock()
	m.storage = db
	m.mu.Unlock()
}

// Storage the database the model operates on, nil when not connected.
func (m *Model) Storage() database.Database {
	m.mu.RLock()
	db := m.storage
	m.mu.RUnlock()
	if db != nil {
		return db
	}
	return m.conn.Database()
}

func (m *Model) db() (database.Database, error) {
	if db := m.Storage(); db != nil {
		return db, nil
	}
	return nil, ErrNotConnected
}

// EnsureIndexes builds the schema indexes on the collection.
func (m *Model) EnsureIndexes(ctx context.Context) error {
	db, err := m.db()
	if err != nil {
		return err
	}
	if len(m.schema.Indexes) == 0 {
		return nil
	}
	return db.EnsureIndexes(ctx, m.collection, m.schema.Indexes...)
}

// Create inserts docs, a single doc or one slice of docs.
func (m *Model) Create(ctx context.Context, docs ...any) (int, error) {
	db, err := m.db()
	if err != nil {
		return 0, err
	}
	if len(docs) == 1 {
		return db.Insert(ctx, m.collection, docs[0])
	}
	return db.Insert(ctx, m.collection, docs)
}

// Find the documents matching cond into the slice pointer out.
func (m *Model) Find(ctx context.Context, cond database.C, sortBy []string, limit int, out any) error {
	db, err := m.db()
	if err != nil {
		return err
	}
	return db.Find(ctx, m.collection, cond, sortBy, limit, out)
}

// FindOne the first document matching cond.
func (m *Model) FindOne(ctx context.Context, cond database.C, out any) error {
	db, err := m.db()
	if err != nil {
		return err
	}
	return db.FindOne(ctx, m.collection, cond, out)
}

// UpdateOne applies doc to the first matching document.
func (m *Model) UpdateOne(ctx context.Context, cond database.C, doc any) (int, error) {
	db, err := m.db()
	if err != nil {
		return 0, err
	}
	return db.UpdateOne(ctx, m.collection, cond, doc)
}

// UpdateMany applies doc to every matching document.
func (m *Model) UpdateMany(ctx context.Context, cond database.C, doc any) (int, error) {
	db, err := m.db()
	if err != nil {
		return 0, err
	}
	return db.Update(ctx, m.collection, cond, doc)
}

// DeleteOne removes the first matching document.
func (m *Model) DeleteOne(ctx context.Context, cond database.C) (int, error) {
	db, err := m.db()
	if err != nil {
		return 0, err
	}
	return db.DeleteOne(ctx, m.collection, cond)
}

// DeleteMany removes every matching document.
func (m *Model) DeleteMany(ctx context.Context, cond database.C) (int, error) {
	db, err := m.db()
	if err != nil {
		return 0, err
	}
	return db.Delete(ctx, m.collection, cond)
}

// Count the matching documents.
func (m *Model) Count(ctx context.Context, cond database.C) (int64, error) {
	db, err := m.db()
	if err != nil {
		return 0, err
	}
	return db.Count(ctx, m.collection, cond)
}

// Exists reports whether any document matches.
func (m *Model) Exists(ctx context.Context, cond database.C) (bool, error) {
	db, err := m.db()
	if err != nil {
		return false, err
	}
	return db.Exist(ctx, m.collection, cond)
}

// Drop removes the collection.
func (m *Model) Drop(ctx context.Context) error {
	db, err := m.db()
	if err != nil {
		return err
	}
	return db.Drop(ctx, m.collection)
}
