package odm

import (
	"context"
	"sync"

	"github.com/ti/docmock/dependencies/database"
	"github.com/ti/docmock/log"
)

// DefineFunc a model definition bound to one connection, see Connection.SetModelFunc.
type DefineFunc func(name string, schema *Schema, opts ...ModelOption) (*Model, error)

// Connection one logical connection to a database.
type Connection struct {
	emitter

	client *Client
	id     int

	mu       sync.RWMutex
	state    ReadyState
	name     string
	host     string
	db       database.Database
	models   map[string]*Model
	indexed  []*Model
	modelFun DefineFunc
}

func newConnection(c *Client, id int) *Connection {
	return &Connection{
		client: c,
		id:     id,
		models: make(map[string]*Model),
	}
}

// ID the position of the connection in its client, 0 is the default connection.
func (conn *Connection) ID() int {
	return conn.id
}

// Client the owner of the connection.
func (conn *Connection) Client() *Client {
	return conn.client
}

// Name the database name, empty until the connection was opened.
func (conn *Connection) Name() string {
	conn.mu.RLock()
	defer conn.mu.RUnlock()
	return conn.name
}

// Host the host the connection was opened against.
func (conn *Connection) Host() string {
	conn.mu.RLock()
	defer conn.mu.RUnlock()
	return conn.host
}

// ReadyState the current connection phase.
func (conn *Connection) ReadyState() ReadyState {
	conn.mu.RLock()
	defer conn.mu.RUnlock()
	return conn.state
}

// SetReadyState overwrites the connection phase without emitting anything.
func (conn *Connection) SetReadyState(state ReadyState) {
	conn.mu.Lock()
	conn.state = state
	conn.mu.Unlock()
}

// Database the storage bound by the last successful open, nil before.
func (conn *Connection) Database() database.Database {
	conn.mu.RLock()
	defer conn.mu.RUnlock()
	return conn.db
}

// Open opens the connection asynchronously, see Client.Connect for the arguments.
// The trailing callback, if any, runs once the attempt settled.
func (conn *Connection) Open(args ...any) {
	conn.client.entrypoints().Open(conn, args...)
}

// Model defines (or with a nil schema looks up) a model bound to this connection.
func (conn *Connection) Model(name string, schema *Schema, opts ...ModelOption) (*Model, error) {
	conn.mu.RLock()
	override := conn.modelFun
	conn.mu.RUnlock()
	if override != nil {
		return override(name, schema, opts...)
	}
	return conn.client.entrypoints().ConnectionModel(conn, name, schema, opts...)
}

// SetModelFunc overrides Model on this connection only, nil restores the default.
func (conn *Connection) SetModelFunc(fn DefineFunc) {
	conn.mu.Lock()
	conn.modelFun = fn
	conn.mu.Unlock()
}

// Close closes the bound storage and emits disconnecting, disconnected and close.
func (conn *Connection) Close(ctx context.Context) error {
	conn.SetReadyState(Disconnecting)
	conn.Emit(EventDisconnecting)
	conn.mu.Lock()
	db := conn.db
	conn.db = nil
	conn.mu.Unlock()
	var err error
	if db != nil {
		err = db.Close(ctx)
	}
	conn.SetReadyState(Disconnected)
	conn.Emit(EventDisconnected)
	conn.Emit(EventClose)
	return err
}

// report turns driver progress into ready state changes and events.
func (conn *Connection) report(state ReadyState, err error) {
	conn.SetReadyState(state)
	switch state {
	case Connecting:
		conn.Emit(EventConnecting)
	case Connected:
		conn.Emit(EventConnected)
		conn.Emit(EventOpen)
	case Disconnected:
		if err != nil {
			conn.Emit(EventError, err)
			return
		}
		conn.Emit(EventDisconnected)
	case Disconnecting:
		conn.Emit(EventDisconnecting)
	}
}

func (conn *Connection) setTarget(t target) {
	conn.mu.Lock()
	conn.name = t.name
	conn.host = t.host
	conn.mu.Unlock()
}

func (conn *Connection) bind(db database.Database) {
	conn.mu.Lock()
	conn.db = db
	conn.mu.Unlock()
}

// define creates the model, caches it on the connection and queues its index build.
func (conn *Connection) define(name string, schema *Schema, opts []ModelOption) (*Model, error) {
	if name == "" {
		return nil, ErrInvalidModelName
	}
	if schema == nil {
		conn.mu.RLock()
		m, ok := conn.models[name]
		conn.mu.RUnlock()
		if !ok {
			return nil, &MissingSchemaError{Name: name}
		}
		return m, nil
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	var o ModelOptions
	for _, opt := range opts {
		opt(&o)
	}
	collection := o.Collection
	if collection == "" {
		collection = schema.Options.Collection
	}
	if collection == "" {
		collection = CollectionName(name)
	}
	m := &Model{
		name:       name,
		schema:     schema,
		collection: collection,
		conn:       conn,
	}
	conn.mu.Lock()
	if old, ok := conn.models[name]; ok {
		conn.indexed = removeModel(conn.indexed, old)
	}
	conn.models[name] = m
	if !o.SkipInit && schema.Options.AutoIndex {
		conn.indexed = append(conn.indexed, m)
	}
	conn.mu.Unlock()
	return m, nil
}

// ensureIndexes builds the indexes of every auto-indexed model after an open.
// Failures are logged, the connection stays usable.
func (conn *Connection) ensureIndexes(ctx context.Context) {
	conn.mu.RLock()
	models := append([]*Model(nil), conn.indexed...)
	conn.mu.RUnlock()
	for _, m := range models {
		if err := m.EnsureIndexes(ctx); err != nil {
			log.Action("ensure_indexes").Error("model %s on %s: %v", m.name, m.collection, err)
		}
	}
}

func removeModel(models []*Model, m *Model) []*Model {
	for i, v := range models {
		if v == m {
			return append(models[:i], models[i+1:]...)
		}
	}
	return models
}
