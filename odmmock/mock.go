package odmmock

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/ti/docmock/dependencies/database"
	// registers the mock scheme
	_ "github.com/ti/docmock/dependencies/database/mock"
	"github.com/ti/docmock/log"
	"github.com/ti/docmock/odm"
)

// DefaultStorage the storage uri used when none is configured.
const DefaultStorage = "mock://local/docmock"

// Storage the in-memory database models are bound to.
type Storage interface {
	database.Database
	// Reset drops the named collections, or all of them when none is given.
	Reset(collections ...string)
}

// Config the installation settings, loadable with config.Load.
type Config struct {
	// ThrowErrors makes every connection attempt fail with an error event.
	ThrowErrors bool `json:"throw_errors" yaml:"throw_errors"`
	// Storage the uri of the storage, DefaultStorage when empty.
	Storage string `json:"storage" yaml:"storage"`
	Log     struct {
		Level string `json:"level" yaml:"level"`
	} `json:"log" yaml:"log"`
}

type options struct {
	throwErrors bool
	storage     Storage
	storageURI  string
}

// Option configures Install.
type Option func(*options)

// WithThrowErrors makes every connection attempt of the installation fail.
func WithThrowErrors(throw bool) Option {
	return func(o *options) {
		o.throwErrors = throw
	}
}

// WithStorage binds models to s instead of a storage built from a uri.
func WithStorage(s Storage) Option {
	return func(o *options) {
		o.storage = s
	}
}

// WithConfig applies a loaded Config.
func WithConfig(cfg *Config) Option {
	return func(o *options) {
		o.throwErrors = cfg.ThrowErrors
		if cfg.Storage != "" {
			o.storageURI = cfg.Storage
		}
	}
}

// Mock one installation on one client. It owns the model registry.
type Mock struct {
	id          string
	ctx         context.Context
	client      *odm.Client
	storage     Storage
	throwErrors bool
	loop        *loop
	logger      log.Logger
	orig        odm.Funcs

	mu     sync.RWMutex
	models map[string]*odm.Model
}

// Install intercepts the entry points of client. Installing again on the
// same client replaces the previous installation without wrapping it.
func Install(ctx context.Context, client *odm.Client, opts ...Option) (*Mock, error) {
	o := &options{storageURI: DefaultStorage}
	for _, opt := range opts {
		opt(o)
	}
	storage := o.storage
	if storage == nil {
		db, err := database.New(ctx, o.storageURI)
		if err != nil {
			return nil, fmt.Errorf("odmmock: open storage %s: %w", o.storageURI, err)
		}
		s, ok := db.(Storage)
		if !ok {
			return nil, fmt.Errorf("odmmock: storage %s can not be reset", o.storageURI)
		}
		storage = s
	}
	m := &Mock{
		id:          uuid.NewString(),
		ctx:         context.WithoutCancel(ctx),
		client:      client,
		storage:     storage,
		throwErrors: o.throwErrors,
		loop:        &loop{},
		logger:      log.Extract(ctx),
		models:      make(map[string]*odm.Model),
	}
	client.SetDriver(storageDriver{m})
	client.SetExecutor(m.loop)
	first := client.Intercept(func(orig odm.Funcs) odm.Funcs {
		m.orig = orig
		return odm.Funcs{
			Connect:          m.connect,
			CreateConnection: m.createConnection,
			Open:             m.open,
			Model:            m.model,
			ConnectionModel:  m.connectionModel,
		}
	})
	m.logger.With(map[string]any{"action": "install", "installation": m.id}).
		Debug("installed mock, throw errors: %v, reinstall: %v", m.throwErrors, !first)
	return m, nil
}

// storageDriver hands the storage to the original open. It reports nothing,
// not even rejected arguments: handleConnection plays every handshake.
type storageDriver struct {
	m *Mock
}

func (d storageDriver) Dial(context.Context, string, odm.Reporter) (database.Database, error) {
	return d.m.storage, nil
}

func (storageDriver) Reject(error, odm.Reporter) {}

// ID identifies the installation in log lines.
func (m *Mock) ID() string {
	return m.id
}

// Client the client the mock is installed on.
func (m *Mock) Client() *odm.Client {
	return m.client
}

// Storage the storage models are bound to.
func (m *Mock) Storage() Storage {
	return m.storage
}

// ThrowErrors reports whether connection attempts fail.
func (m *Mock) ThrowErrors() bool {
	return m.throwErrors
}

// Flush runs every scheduled handshake step and returns how many ran.
func (m *Mock) Flush() int {
	return m.loop.flush()
}

// Pending the number of scheduled steps.
func (m *Mock) Pending() int {
	return m.loop.pending()
}

// Model the registered model, nil if none.
func (m *Mock) Model(name string) *odm.Model {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.models[name]
}

// Models the registered model names, sorted.
func (m *Mock) Models() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.models))
	for name := range m.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
