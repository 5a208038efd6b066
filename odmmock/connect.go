package odmmock

import (
	"strings"

	"github.com/ti/docmock/odm"
)

// ConnectArgs the normalized arguments of Client.Connect.
type ConnectArgs struct {
	Database string
	Options  odm.Options
	Callback odm.Callback
}

// NormalizeConnectArgs resolves (database, port, options, callback) following
// Connect's overloads, in order:
//
//   - a callable database is the callback;
//   - a database that is not a string is the last path segment of host;
//   - a callable port, else a callable options, is the callback and drops options;
//   - options carrying a db name override database;
//   - options are always discarded.
func NormalizeConnectArgs(host string, args ...any) ConnectArgs {
	at := func(i int) any {
		if i < len(args) {
			return args[i]
		}
		return nil
	}
	database, port, options, callback := at(0), at(1), at(2), at(3)

	if _, ok := odm.AsCallback(database); ok {
		callback, database = database, nil
	}
	name, ok := database.(string)
	if !ok {
		name = host[strings.LastIndex(host, "/")+1:]
	}
	if _, ok := odm.AsCallback(port); ok {
		callback, options = port, nil
	} else if _, ok := odm.AsCallback(options); ok {
		callback, options = options, nil
	}
	if db, ok := optionsDB(options); ok {
		name = db
	}
	cb, _ := odm.AsCallback(callback)
	return ConnectArgs{Database: name, Callback: cb}
}

func optionsDB(v any) (string, bool) {
	switch o := v.(type) {
	case odm.Options:
		return o.DB, o.DB != ""
	case *odm.Options:
		if o == nil {
			return "", false
		}
		return o.DB, o.DB != ""
	case map[string]any:
		db, ok := o["db"].(string)
		return db, ok
	}
	return "", false
}

func (m *Mock) connect(c *odm.Client, host string, args ...any) *odm.Client {
	a := NormalizeConnectArgs(host, args...)
	m.logger.With(map[string]any{"action": "connect", "installation": m.id}).
		Info("creating mock database: connect %s options: %+v", a.Database, a.Options)
	conn := c.Connection()
	m.orig.Connect(c, a.Database, a.Options, odm.Callback(func(err error, _ *odm.Connection) {
		m.handleConnection(a.Callback, conn, err)
	}))
	conn.SetModelFunc(func(name string, schema *odm.Schema, opts ...odm.ModelOption) (*odm.Model, error) {
		return m.model(c, name, schema, opts...)
	})
	return c
}
