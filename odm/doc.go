// Package odm is a small object-document mapper over database.Database.
//
// A Client owns one default Connection plus any number created with
// CreateConnection. Connections open asynchronously: the dial runs on the
// client's Executor and its progress is reported as a ReadyState plus events
// ("connecting", "connected", "open", "error", "disconnected", "close").
// Models are schema-bound handles to one collection.
//
// Every public entry point dispatches through the client's Funcs table, which
// Intercept lets a test double replace while keeping the originals:
//
//	client := odm.New()
//	client.Connect("mongodb://localhost:27017/app", func(err error, conn *odm.Connection) {
//	    ...
//	})
//	users, err := client.Model("User", odm.NewSchema(&database.Index{Field: "email", Unique: true}))
package odm
