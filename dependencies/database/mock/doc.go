// Package mock provides an in-memory mock database implementation for testing.
//
// Mock implements the database.Database interface and stores all data in memory.
// docmock binds every model defined under an installed mock to a Mock, and uses
// Reset to wipe one table or all of them between tests.
//
// URL Format:
//
//	mock://host/database_name
//
// Basic Usage:
//
//	import (
//	    "context"
//	    "github.com/ti/docmock/dependencies/database"
//	    _ "github.com/ti/docmock/dependencies/database/mock"
//	)
//
//	db, err := database.New(ctx, "mock://local/testdb")
//	if err != nil {
//	    panic(err)
//	}
//	defer db.Close(ctx)
//
//	user := &User{ID: 1, Name: "Alice"}
//	db.InsertOne(ctx, "users", user)
//
//	var result User
//	db.FindOne(ctx, "users",
//	    database.C{{Key: "id", Value: int64(1)}},
//	    &result)
//
// Features:
//
//   - Documents from structs, map[string]any or database.D
//   - Generated ObjectID in _id when a document has none
//   - Conditional queries (Eq, Ne, Gt, Gte, Lt, Lte, In, Nin)
//   - Sorting and limiting
//   - Index declarations are recorded, not enforced
//   - Reset of single tables or the whole store
//   - Thread-safe with sync.RWMutex
package mock
