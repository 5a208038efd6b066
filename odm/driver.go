package odm

import (
	"context"

	"github.com/ti/docmock/dependencies/database"
	// registers the mongodb scheme
	_ "github.com/ti/docmock/dependencies/mongo"
)

// Reporter receives the state changes of a dial in progress.
type Reporter func(state ReadyState, err error)

// Driver dials the storage behind a connection uri.
type Driver interface {
	Dial(ctx context.Context, uri string, report Reporter) (database.Database, error)
}

// Rejecter is implemented by drivers that decide how an open failing before
// Dial, on arguments that can not be parsed, is reported. Drivers without it
// report Disconnected with the error.
type Rejecter interface {
	Reject(err error, report Reporter)
}

// DriverFunc adapts a function to a Driver.
type DriverFunc func(ctx context.Context, uri string, report Reporter) (database.Database, error)

// Dial calls f.
func (f DriverFunc) Dial(ctx context.Context, uri string, report Reporter) (database.Database, error) {
	return f(ctx, uri, report)
}

// uriDriver dials through the database scheme registry and reports every phase.
type uriDriver struct{}

func (uriDriver) Dial(ctx context.Context, uri string, report Reporter) (database.Database, error) {
	report(Connecting, nil)
	db, err := database.New(ctx, uri)
	if err != nil {
		report(Disconnected, err)
		return nil, err
	}
	report(Connected, nil)
	return db, nil
}

// Executor runs the asynchronous part of an open attempt.
type Executor interface {
	Go(fn func())
}

// ExecutorFunc adapts a function to an Executor.
type ExecutorFunc func(fn func())

// Go calls f.
func (f ExecutorFunc) Go(fn func()) {
	f(fn)
}

var goroutines = ExecutorFunc(func(fn func()) {
	go fn()
})
