// Package odmmock installs an in-memory stand-in on an odm.Client.
//
// After Install the client's entry points keep their signatures but never
// touch a network: models are bound to an in-memory storage and every open
// attempt plays a scripted handshake on the connection. The handshake runs
// on a task loop the test drains with Flush, so listeners attached right
// after Connect, CreateConnection or Open always see every event:
//
//	client, m := odmmock.NewClient(t)
//	client.Connect("mongodb://localhost/testdb", func(err error, conn *odm.Connection) {
//	    // err is always nil
//	})
//	client.Connection().On(odm.EventOpen, func(...any) { ... })
//	m.Flush()
//
// With WithThrowErrors(true) every attempt ends Disconnected with an "error"
// event instead, while the callback still reports success.
package odmmock
