package odmmock

import (
	"context"
	"testing"

	"github.com/ti/docmock/odm"
)

// NewClient a fresh client with the mock installed, reset when tb ends.
func NewClient(tb testing.TB, opts ...Option) (*odm.Client, *Mock) {
	tb.Helper()
	client := odm.New()
	m, err := Install(context.Background(), client, opts...)
	if err != nil {
		tb.Fatalf("install mock: %v", err)
	}
	tb.Cleanup(func() {
		m.Reset()
	})
	return client, m
}
