package odm

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

type (
	// ConnectFunc the implementation behind Client.Connect.
	ConnectFunc func(c *Client, uri string, args ...any) *Client
	// CreateConnectionFunc the implementation behind Client.CreateConnection.
	CreateConnectionFunc func(c *Client, args ...any) *Connection
	// OpenFunc the implementation behind Connection.Open.
	OpenFunc func(conn *Connection, args ...any)
	// ModelFunc the implementation behind Client.Model.
	ModelFunc func(c *Client, name string, schema *Schema, opts ...ModelOption) (*Model, error)
	// ConnectionModelFunc the implementation behind Connection.Model.
	ConnectionModelFunc func(conn *Connection, name string, schema *Schema, opts ...ModelOption) (*Model, error)
)

// Funcs the replaceable entry points of a client.
type Funcs struct {
	Connect          ConnectFunc
	CreateConnection CreateConnectionFunc
	Open             OpenFunc
	Model            ModelFunc
	ConnectionModel  ConnectionModelFunc
}

func defaultFuncs() Funcs {
	return Funcs{
		Connect:          connect,
		CreateConnection: createConnection,
		Open:             open,
		Model:            model,
		ConnectionModel:  connectionModel,
	}
}

// Client the entry point of the mapper, it owns the default connection.
type Client struct {
	mu        sync.RWMutex
	funcs     Funcs
	originals *Funcs
	driver    Driver
	executor  Executor
	conns     []*Connection
}

// Option configures a Client.
type Option func(*Client)

// WithDriver replaces the driver used to dial connections.
func WithDriver(d Driver) Option {
	return func(c *Client) {
		c.driver = d
	}
}

// WithExecutor replaces where the asynchronous part of an open runs.
func WithExecutor(e Executor) Option {
	return func(c *Client) {
		c.executor = e
	}
}

// New client with its default connection, dialing mongodb uris on goroutines.
func New(opts ...Option) *Client {
	c := &Client{
		funcs:    defaultFuncs(),
		driver:   uriDriver{},
		executor: goroutines,
	}
	c.conns = []*Connection{newConnection(c, 0)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect opens the default connection, the arguments after uri are
// (database, port, options, callback), each optional and positional.
func (c *Client) Connect(uri string, args ...any) *Client {
	return c.entrypoints().Connect(c, uri, args...)
}

// CreateConnection creates another connection, opening it when arguments are given.
func (c *Client) CreateConnection(args ...any) *Connection {
	return c.entrypoints().CreateConnection(c, args...)
}

// Model defines a model on the default connection, a nil schema looks it up.
func (c *Client) Model(name string, schema *Schema, opts ...ModelOption) (*Model, error) {
	return c.entrypoints().Model(c, name, schema, opts...)
}

// Connection the default connection.
func (c *Client) Connection() *Connection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conns[0]
}

// Connections the default connection followed by the created ones.
func (c *Client) Connections() []*Connection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*Connection(nil), c.conns...)
}

// Intercept replaces the entry points with the result of fn. fn always gets
// the entry points the client was built with: they are saved the first time
// and reused by every later call, so interceptors never wrap each other.
// It reports whether this was the first interception.
func (c *Client) Intercept(fn func(orig Funcs) Funcs) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	first := c.originals == nil
	if first {
		orig := c.funcs
		c.originals = &orig
	}
	c.funcs = fn(*c.originals)
	return first
}

// Intercepted reports whether Intercept was called.
func (c *Client) Intercepted() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.originals != nil
}

// SetDriver replaces the driver used by later opens.
func (c *Client) SetDriver(d Driver) {
	c.mu.Lock()
	c.driver = d
	c.mu.Unlock()
}

// SetExecutor replaces the executor used by later opens.
func (c *Client) SetExecutor(e Executor) {
	c.mu.Lock()
	c.executor = e
	c.mu.Unlock()
}

// Disconnect closes every connection concurrently.
func (c *Client) Disconnect(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, conn := range c.Connections() {
		eg.Go(func() error {
			return conn.Close(ctx)
		})
	}
	return eg.Wait()
}

func (c *Client) entrypoints() Funcs {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.funcs
}

func (c *Client) runtime() (Driver, Executor) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.driver, c.executor
}

// open resolves the arguments now and dials on the executor.
func (c *Client) open(conn *Connection, args []any) {
	t, cb, err := parseOpenArgs(args)
	if err == nil {
		conn.setTarget(t)
	}
	driver, executor := c.runtime()
	executor.Go(func() {
		if err != nil {
			if r, ok := driver.(Rejecter); ok {
				r.Reject(err, conn.report)
			} else {
				conn.report(Disconnected, err)
			}
			if cb != nil {
				cb(err, conn)
			}
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout())
		defer cancel()
		db, err := driver.Dial(ctx, t.uri, conn.report)
		if err == nil {
			conn.bind(db)
			conn.ensureIndexes(ctx)
		}
		if cb != nil {
			cb(err, conn)
		}
	})
}

func connect(c *Client, uri string, args ...any) *Client {
	c.open(c.Connection(), append([]any{uri}, args...))
	return c
}

func createConnection(c *Client, args ...any) *Connection {
	c.mu.Lock()
	conn := newConnection(c, len(c.conns))
	c.conns = append(c.conns, conn)
	c.mu.Unlock()
	if len(args) > 0 {
		c.open(conn, args)
	}
	return conn
}

func open(conn *Connection, args ...any) {
	conn.client.open(conn, args)
}

func model(c *Client, name string, schema *Schema, opts ...ModelOption) (*Model, error) {
	return c.Connection().define(name, schema, opts)
}

func connectionModel(conn *Connection, name string, schema *Schema, opts ...ModelOption) (*Model, error) {
	return conn.define(name, schema, opts)
}
