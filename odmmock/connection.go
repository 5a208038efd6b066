package odmmock

import "github.com/ti/docmock/odm"

// SetMockReadyState writes state on conn and on the client's default connection.
func (m *Mock) SetMockReadyState(conn *odm.Connection, state odm.ReadyState) {
	conn.SetReadyState(state)
	if def := m.client.Connection(); def != conn {
		def.SetReadyState(state)
	}
}

// handleConnection plays the handshake: connecting now, the rest on the next turn.
// The callback always gets a nil error, failures only show as the error event.
func (m *Mock) handleConnection(cb odm.Callback, conn *odm.Connection, err error) {
	m.SetMockReadyState(conn, odm.Connecting)
	conn.Emit(odm.EventConnecting)
	m.loop.Go(func() {
		if cb != nil {
			cb(nil, conn)
		}
		if m.throwErrors {
			m.SetMockReadyState(conn, odm.Disconnected)
			conn.Emit(odm.EventError, err)
			return
		}
		m.SetMockReadyState(conn, odm.Connected)
		conn.Emit(odm.EventConnected)
		conn.Emit(odm.EventOpen)
	})
}

// splitCallback removes a trailing callback from args.
func splitCallback(args []any) ([]any, odm.Callback) {
	if n := len(args); n > 0 {
		if cb, ok := odm.AsCallback(args[n-1]); ok {
			return args[:n-1:n-1], cb
		}
	}
	return args, nil
}

func (m *Mock) open(conn *odm.Connection, args ...any) {
	args, cb := splitCallback(args)
	if len(args) == 0 {
		m.loop.Go(func() {
			m.handleConnection(cb, conn, nil)
		})
		return
	}
	m.orig.Open(conn, append(args, odm.Callback(func(err error, _ *odm.Connection) {
		m.handleConnection(cb, conn, err)
	}))...)
}

func (m *Mock) createConnection(c *odm.Client, args ...any) *odm.Connection {
	args, cb := splitCallback(args)
	if len(args) == 0 {
		conn := m.orig.CreateConnection(c)
		if cb != nil {
			m.loop.Go(func() {
				m.handleConnection(cb, conn, nil)
			})
		}
		return conn
	}
	var conn *odm.Connection
	conn = m.orig.CreateConnection(c, append(args, odm.Callback(func(err error, _ *odm.Connection) {
		m.handleConnection(cb, conn, err)
	}))...)
	return conn
}
