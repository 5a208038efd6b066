package odmmock

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ti/docmock/config"
	"github.com/ti/docmock/dependencies/database"
	"github.com/ti/docmock/dependencies/database/mock"
	"github.com/ti/docmock/log"
	"github.com/ti/docmock/odm"
)

var lifecycle = []string{
	odm.EventConnecting, odm.EventConnected, odm.EventOpen, odm.EventError,
	odm.EventDisconnecting, odm.EventDisconnected, odm.EventClose,
}

// emission one event with the ready state observed inside the listener.
type emission struct {
	event string
	state odm.ReadyState
	args  []any
}

func record(conn *odm.Connection) *[]emission {
	var got []emission
	for _, e := range lifecycle {
		conn.On(e, func(args ...any) {
			got = append(got, emission{event: e, state: conn.ReadyState(), args: args})
		})
	}
	return &got
}

func events(got []emission) []string {
	names := make([]string, len(got))
	for i, e := range got {
		names[i] = e.event
	}
	return names
}

type callbackResult struct {
	calls int
	err   error
	conn  *odm.Connection
}

func (r *callbackResult) callback() func(error, *odm.Connection) {
	return func(err error, conn *odm.Connection) {
		r.calls++
		r.err, r.conn = err, conn
	}
}

func TestNormalizeConnectArgs(t *testing.T) {
	cb := func(error) {}
	tests := []struct {
		name     string
		host     string
		args     []any
		database string
		callback bool
	}{
		{"host only", "mongodb://localhost/testdb", nil, "testdb", false},
		{"host and callback", "mongodb://localhost/testdb", []any{cb}, "testdb", true},
		{"explicit database", "mongodb://localhost/testdb", []any{"other"}, "other", false},
		{"callback as port", "mongodb://localhost/testdb", []any{"other", cb}, "other", true},
		{"port and callback", "localhost", []any{"app", 27017, cb}, "app", true},
		{"options and callback", "localhost", []any{"app", 27017, map[string]any{"x": 1}, cb}, "app", true},
		{"options db", "mongodb://localhost/testdb", []any{nil, nil, map[string]any{"db": "fromopts"}, cb}, "fromopts", true},
		{"typed options db", "mongodb://localhost/testdb", []any{"explicit", 27017, odm.Options{DB: "fromopts"}}, "fromopts", false},
		{"pointer options db", "localhost/testdb", []any{nil, nil, &odm.Options{DB: "fromopts"}}, "fromopts", false},
		{"options empty db", "mongodb://localhost/testdb", []any{nil, nil, odm.Options{User: "u"}}, "testdb", false},
		{"callback in options position", "mongodb://localhost/testdb", []any{nil, nil, cb}, "testdb", true},
		{"non string database", "mongodb://localhost/testdb", []any{42}, "testdb", false},
		{"no slash in host", "testdb", nil, "testdb", false},
		{"trailing slash", "mongodb://localhost/", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeConnectArgs(tt.host, tt.args...)
			assert.Equal(t, tt.database, got.Database)
			assert.True(t, got.Options.IsZero())
			assert.Equal(t, tt.callback, got.Callback != nil)
		})
	}
}

func TestNormalizeConnectArgsCallbackPrecedence(t *testing.T) {
	var which string
	fromPort := func(error) { which = "port" }
	trailing := func(error) { which = "trailing" }

	got := NormalizeConnectArgs("mongodb://localhost/db", "db", fromPort, map[string]any{"db": "ignored"}, trailing)
	require.NotNil(t, got.Callback)
	got.Callback(nil, nil)
	assert.Equal(t, "port", which)
	assert.Equal(t, "db", got.Database)

	got = NormalizeConnectArgs("mongodb://localhost/db", "db", 27017, nil, trailing)
	got.Callback(nil, nil)
	assert.Equal(t, "trailing", which)
}

func TestConnect(t *testing.T) {
	client, m := NewClient(t)
	var res callbackResult

	got := client.Connect("mongodb://localhost/testdb", res.callback())
	assert.Same(t, client, got)
	conn := client.Connection()
	emitted := record(conn)
	assert.Equal(t, 0, res.calls)
	assert.Equal(t, odm.Disconnected, conn.ReadyState())

	assert.Positive(t, m.Flush())
	assert.Equal(t, 1, res.calls)
	assert.NoError(t, res.err)
	assert.Same(t, conn, res.conn)
	assert.Equal(t, []string{odm.EventConnecting, odm.EventConnected, odm.EventOpen}, events(*emitted))
	assert.Equal(t, odm.Connected, conn.ReadyState())
	assert.Equal(t, "testdb", conn.Name())
	assert.Zero(t, m.Pending())
}

func TestConnectThrowErrors(t *testing.T) {
	client, m := NewClient(t, WithThrowErrors(true))
	var res callbackResult

	client.Connect("mongodb://localhost/testdb", res.callback())
	conn := client.Connection()
	emitted := record(conn)
	m.Flush()

	assert.Equal(t, 1, res.calls)
	assert.NoError(t, res.err, "the callback reports success even when failing")
	assert.Same(t, conn, res.conn)
	assert.Equal(t, []string{odm.EventConnecting, odm.EventError}, events(*emitted))
	assert.Equal(t, []any{nil}, (*emitted)[1].args)
	assert.Equal(t, odm.Disconnected, conn.ReadyState())
	assert.True(t, m.ThrowErrors())
}

func TestReadyStateIsSetBeforeEmit(t *testing.T) {
	for _, throw := range []bool{false, true} {
		client, m := NewClient(t, WithThrowErrors(throw))
		conn := client.CreateConnection("testdb")
		emitted := record(conn)
		m.Flush()

		want := map[string]odm.ReadyState{
			odm.EventConnecting: odm.Connecting,
			odm.EventConnected:  odm.Connected,
			odm.EventOpen:       odm.Connected,
			odm.EventError:      odm.Disconnected,
		}
		require.NotEmpty(t, *emitted)
		assert.Equal(t, odm.EventConnecting, (*emitted)[0].event)
		for _, e := range *emitted {
			assert.Equal(t, want[e.event], e.state, "state seen by %s listener", e.event)
		}
	}
}

func TestCreateConnection(t *testing.T) {
	client, m := NewClient(t)
	var res callbackResult

	conn := client.CreateConnection("mongodb://localhost/other", res.callback())
	require.NotNil(t, conn)
	assert.Equal(t, 1, conn.ID())
	emitted := record(conn)
	defaultEmitted := record(client.Connection())

	m.Flush()
	assert.Equal(t, 1, res.calls)
	assert.NoError(t, res.err)
	assert.Same(t, conn, res.conn)
	assert.Equal(t, []string{odm.EventConnecting, odm.EventConnected, odm.EventOpen}, events(*emitted))
	assert.Empty(t, *defaultEmitted, "events stay on the driven connection")
	assert.Equal(t, odm.Connected, conn.ReadyState())
	assert.Equal(t, odm.Connected, client.Connection().ReadyState(), "state is mirrored on the default connection")
	assert.Equal(t, "other", conn.Name())
}

func TestCreateConnectionWithoutArguments(t *testing.T) {
	client, m := NewClient(t)
	idle := client.CreateConnection()
	assert.Zero(t, m.Pending())
	assert.Equal(t, odm.Disconnected, idle.ReadyState())

	var res callbackResult
	conn := client.CreateConnection(res.callback())
	emitted := record(conn)
	m.Flush()
	assert.Equal(t, 1, res.calls)
	assert.Equal(t, []string{odm.EventConnecting, odm.EventConnected, odm.EventOpen}, events(*emitted))
}

func TestOpen(t *testing.T) {
	client, m := NewClient(t, WithThrowErrors(true))
	conn := client.CreateConnection()
	var calls int
	conn.Open("localhost", "app", 27017, func(err error) {
		calls++
		assert.NoError(t, err)
	})
	emitted := record(conn)
	m.Flush()

	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{odm.EventConnecting, odm.EventError}, events(*emitted))
	assert.Equal(t, odm.Disconnected, conn.ReadyState())
	assert.Equal(t, "app", conn.Name())
	assert.Equal(t, "localhost:27017", conn.Host())
}

func TestOpenWithoutCallback(t *testing.T) {
	client, m := NewClient(t)
	conn := client.CreateConnection()
	conn.Open("app")
	emitted := record(conn)
	m.Flush()
	assert.Equal(t, []string{odm.EventConnecting, odm.EventConnected, odm.EventOpen}, events(*emitted))
	assert.Same(t, m.Storage(), conn.Database())
}

func TestReinstallDoesNotDoubleWrap(t *testing.T) {
	client := odm.New()
	first, err := Install(context.Background(), client)
	require.NoError(t, err)
	second, err := Install(context.Background(), client, WithStorage(first.Storage()))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), second.ID())

	conn := client.CreateConnection()
	emitted := record(conn)
	var calls int
	conn.Open("app", func(error) { calls++ })
	second.Flush()
	conn.Open("app", func(error) { calls++ })
	second.Flush()

	assert.Zero(t, first.Pending())
	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{
		odm.EventConnecting, odm.EventConnected, odm.EventOpen,
		odm.EventConnecting, odm.EventConnected, odm.EventOpen,
	}, events(*emitted))

	_, err = client.Model("User", odm.NewSchema())
	require.NoError(t, err)
	assert.Empty(t, first.Models())
	assert.Equal(t, []string{"User"}, second.Models())
}

type user struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func TestModel(t *testing.T) {
	ctx := context.Background()
	client, m := NewClient(t)

	schema := odm.NewSchema(&database.Index{Field: "email", Unique: true})
	users, err := client.Model("User", schema)
	require.NoError(t, err)
	assert.Same(t, users, m.Model("User"))
	assert.Same(t, m.Storage(), users.Storage())

	store := m.Storage().(*mock.Mock)
	require.Len(t, store.Indexes("users"), 1, "indexes are built when the model is defined")

	_, err = users.Create(ctx, &user{Name: "a", Email: "a@x"})
	require.NoError(t, err)
	var got user
	require.NoError(t, users.FindOne(ctx, database.C{{Key: "email", Value: "a@x"}}, &got))
	assert.Equal(t, "a", got.Name)

	again, err := client.Model("User", odm.NewSchema())
	require.NoError(t, err)
	assert.Same(t, again, m.Model("User"), "redefinition overwrites the registry")

	plain, err := client.Model("Plain", &odm.Schema{Indexes: []*database.Index{{Field: "x"}}})
	require.NoError(t, err)
	assert.Empty(t, store.Indexes(plain.CollectionName()))
}

func TestModelErrorsPropagate(t *testing.T) {
	client, m := NewClient(t)

	_, err := client.Model("", odm.NewSchema())
	assert.ErrorIs(t, err, odm.ErrInvalidModelName)
	_, err = client.Model("Ghost", nil)
	assert.ErrorIs(t, err, odm.ErrMissingSchema)
	var se *odm.SchemaError
	_, err = client.Model("Bad", odm.NewSchema(&database.Index{Field: ","}))
	assert.ErrorAs(t, err, &se)
	assert.Empty(t, m.Models())
}

// failingIndexes rejects every index build.
type failingIndexes struct {
	*mock.Mock
}

var errIndex = errors.New("index build failed")

func (failingIndexes) EnsureIndexes(context.Context, string, ...*database.Index) error {
	return errIndex
}

func TestModelIndexErrorPropagates(t *testing.T) {
	client, m := NewClient(t, WithStorage(failingIndexes{mock.NewStore("x")}))
	_, err := client.Model("User", odm.NewSchema(&database.Index{Field: "email"}))
	assert.ErrorIs(t, err, errIndex)
	assert.Nil(t, m.Model("User"))

	_, err = client.Model("Quiet", &odm.Schema{Indexes: []*database.Index{{Field: "email"}}})
	assert.NoError(t, err)
}

func TestConnectionModel(t *testing.T) {
	client, m := NewClient(t)
	conn := client.CreateConnection("other")
	m.Flush()

	audit, err := conn.Model("Event", odm.NewSchema(), odm.WithCollection("audit"))
	require.NoError(t, err)
	assert.Same(t, conn, audit.Connection())
	assert.Equal(t, "audit", audit.CollectionName())
	assert.Same(t, audit, m.Model("Event"))
	assert.Same(t, m.Storage(), audit.Storage())
}

func TestConnectRebindsDefaultConnectionModel(t *testing.T) {
	client, m := NewClient(t)
	client.Connect("mongodb://localhost/testdb")
	m.Flush()

	defined, err := client.Connection().Model("User", odm.NewSchema())
	require.NoError(t, err)
	assert.Same(t, defined, m.Model("User"))
	found, err := client.Model("User", nil)
	require.NoError(t, err)
	assert.Same(t, defined, found, "definitions through the default connection are top-level ones")
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	client, m := NewClient(t)
	users, err := client.Model("User", odm.NewSchema())
	require.NoError(t, err)
	posts, err := client.Model("Post", odm.NewSchema())
	require.NoError(t, err)
	_, err = users.Create(ctx, &user{Name: "a"})
	require.NoError(t, err)
	_, err = posts.Create(ctx, map[string]any{"title": "t"})
	require.NoError(t, err)

	m.Reset("User")
	assert.Equal(t, []string{"Post"}, m.Models())
	n, err := users.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = posts.Count(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "other models stay queryable")

	m.Reset("Missing")
	assert.Equal(t, []string{"Post"}, m.Models())

	m.Reset()
	assert.Empty(t, m.Models())
	assert.Empty(t, m.Storage().(*mock.Mock).Tables())

	redefined, err := client.Model("Post", odm.NewSchema())
	require.NoError(t, err)
	assert.Same(t, redefined, m.Model("Post"))
}

func TestSetMockReadyState(t *testing.T) {
	client, m := NewClient(t)
	conn := client.CreateConnection()
	m.SetMockReadyState(conn, odm.Disconnecting)
	assert.Equal(t, odm.Disconnecting, conn.ReadyState())
	assert.Equal(t, odm.Disconnecting, client.Connection().ReadyState())

	m.SetMockReadyState(client.Connection(), odm.Connected)
	assert.Equal(t, odm.Connected, client.Connection().ReadyState())
	assert.Equal(t, odm.Disconnecting, conn.ReadyState())
}

func TestInstallWithConfig(t *testing.T) {
	cfg := &Config{ThrowErrors: true, Storage: "mock://local/configured"}
	client := odm.New()
	m, err := Install(context.Background(), client, WithConfig(cfg))
	require.NoError(t, err)
	assert.True(t, m.ThrowErrors())
	assert.Equal(t, "configured", m.Storage().(*mock.Mock).Name())
	assert.True(t, client.Intercepted())

	_, err = Install(context.Background(), odm.New(), WithConfig(&Config{Storage: "nope://x/y"}))
	assert.Error(t, err)
}

func TestConnectLogs(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() {
		log.SetOutput(os.Stdout)
	})

	client, m := NewClient(t)
	client.Connect("mongodb://localhost/testdb")
	m.Flush()

	var line map[string]any
	for _, raw := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(raw, &entry))
		if entry["action"] == "connect" {
			line = entry
		}
	}
	require.NotNil(t, line)
	assert.Equal(t, "INFO", line["level"])
	assert.Equal(t, m.ID(), line["installation"])
	assert.Contains(t, line["msg"], "testdb")
}

func TestFlushRunsNestedTasks(t *testing.T) {
	var l loop
	var order []int
	l.Go(func() {
		order = append(order, 1)
		l.Go(func() { order = append(order, 3) })
	})
	l.Go(func() { order = append(order, 2) })
	assert.Equal(t, 2, l.pending())
	assert.Equal(t, 3, l.flush())
	assert.Equal(t, []int{1, 2, 3}, order)
	assert.Zero(t, l.flush())
}

func TestOpenUnparsableArguments(t *testing.T) {
	client, m := NewClient(t)
	conn := client.CreateConnection()
	emitted := record(conn)
	var res callbackResult
	conn.Open(odm.Options{DB: "app"}, res.callback())
	m.Flush()

	assert.Equal(t, 1, res.calls)
	assert.NoError(t, res.err)
	assert.Equal(t, []string{odm.EventConnecting, odm.EventConnected, odm.EventOpen}, events(*emitted))
	assert.Equal(t, odm.Connected, conn.ReadyState())
}

func TestCreateConnectionUnparsableArgumentsThrowErrors(t *testing.T) {
	client, m := NewClient(t, WithThrowErrors(true))
	var res callbackResult
	conn := client.CreateConnection("h", "db", "extra", res.callback())
	emitted := record(conn)
	m.Flush()

	assert.Equal(t, 1, res.calls)
	assert.NoError(t, res.err)
	require.Equal(t, []string{odm.EventConnecting, odm.EventError}, events(*emitted))
	require.Len(t, (*emitted)[1].args, 1)
	err, _ := (*emitted)[1].args[0].(error)
	assert.ErrorIs(t, err, odm.ErrInvalidArgument)
	assert.Equal(t, odm.Disconnected, conn.ReadyState())
}

func TestInstallFromConfigFile(t *testing.T) {
	t.Cleanup(func() {
		log.SetLevel("debug")
	})
	var cfg Config
	require.NoError(t, config.Load(context.Background(), "testdata/mock.yaml", &cfg))
	assert.True(t, cfg.ThrowErrors)
	assert.Equal(t, "mock://local/fromfile", cfg.Storage)
	assert.Equal(t, "info", cfg.Log.Level)

	client, m := NewClient(t, WithConfig(&cfg))
	assert.True(t, m.ThrowErrors())
	assert.Equal(t, "fromfile", m.Storage().(*mock.Mock).Name())

	conn := client.CreateConnection("testdb")
	emitted := record(conn)
	m.Flush()
	assert.Equal(t, []string{odm.EventConnecting, odm.EventError}, events(*emitted))
}
