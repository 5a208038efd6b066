// Package config loads settings from a uri through objectbind.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/ti/docmock/log"
	"github.com/ti/objectbind"
)

// EnvURI the environment variable read when Load gets an empty uri.
const EnvURI = "DOCMOCK_CONFIG"

// ErrNoSource neither a uri nor DOCMOCK_CONFIG was given.
var ErrNoSource = errors.New("config: no uri given and " + EnvURI + " is empty")

// Load binds the document at uri (a file path or any objectbind source, for
// exp: ./testdata/mock.yaml) into configPtr once, without watching it.
// A string field Log.Level, when present and set, becomes the log level; an
// unknown level is returned as an error.
func Load(ctx context.Context, uri string, configPtr any) error {
	if uri == "" {
		uri = os.Getenv(EnvURI)
		if uri == "" {
			return ErrNoSource
		}
	}
	var cc context.CancelFunc
	if _, ok := ctx.Deadline(); !ok {
		ctx, cc = context.WithTimeout(ctx, 5*time.Second)
	}
	if cc != nil {
		defer cc()
	}
	if _, err := objectbind.Bind(ctx, configPtr, uri, objectbind.WithoutWatch(true)); err != nil {
		return fmt.Errorf("config: load %s: %w", uri, err)
	}
	if level := logLevel(configPtr); level != "" {
		if err := log.CheckLevel(level); err != nil {
			return fmt.Errorf("config: log.level in %s: %w", uri, err)
		}
		log.SetLevel(level)
	}
	return nil
}

func logLevel(configPtr any) string {
	v := reflect.Indirect(reflect.ValueOf(configPtr))
	if v.Kind() != reflect.Struct {
		return ""
	}
	logField := v.FieldByName("Log")
	if !logField.IsValid() || logField.Kind() != reflect.Struct {
		return ""
	}
	level := logField.FieldByName("Level")
	if !level.IsValid() || level.Kind() != reflect.String {
		return ""
	}
	return level.String()
}
