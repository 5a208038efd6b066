package odm

import "fmt"

// ReadyState the connection phase.
type ReadyState int32

// ReadyState values, numbered like the driver-level states clients expose.
const (
	Disconnected  ReadyState = 0
	Connected     ReadyState = 1
	Connecting    ReadyState = 2
	Disconnecting ReadyState = 3
)

func (s ReadyState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	case Connecting:
		return "connecting"
	case Disconnecting:
		return "disconnecting"
	}
	return fmt.Sprintf("ReadyState(%d)", int32(s))
}

// Lifecycle events emitted on a Connection.
const (
	EventConnecting    = "connecting"
	EventConnected     = "connected"
	EventOpen          = "open"
	EventError         = "error"
	EventDisconnecting = "disconnecting"
	EventDisconnected  = "disconnected"
	EventClose         = "close"
)
