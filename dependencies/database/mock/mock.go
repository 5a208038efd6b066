package mock

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/ti/docmock/dependencies/database"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	database.RegisterImplements("mock", func(ctx context.Context, u *url.URL) (database.Database, error) {
		m := &Mock{}
		return m, m.Init(ctx, u)
	})
}

// fieldID is the primary key every stored document gets.
const fieldID = "_id"

// Mock is an in-memory database implementation for testing
type Mock struct {
	mu              sync.RWMutex
	tables          map[string]*table
	defaultDatabase string
}

type table struct {
	data    []map[string]any
	indexes map[string]*database.Index
}

// New creates a new mock database instance
func New(ctx context.Context, uri string) (*Mock, error) {
	m := &Mock{}
	u, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}
	return m, m.Init(ctx, u)
}

// NewStore creates an empty store for the named database without going through a uri.
func NewStore(name string) *Mock {
	return &Mock{
		tables:          make(map[string]*table),
		defaultDatabase: name,
	}
}

// Init initializes the mock database from URL
// URL format: mock://host/database?option=value
func (m *Mock) Init(ctx context.Context, u *url.URL) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tables = make(map[string]*table)

	if u.Path == "" || u.Path == "/" {
		return NewInvalidArgumentError("uri_path", "database name not specified in mock URI")
	}
	m.defaultDatabase = strings.TrimPrefix(u.Path, "/")

	return nil
}

// Name returns the database name given at creation.
func (m *Mock) Name() string {
	return m.defaultDatabase
}

// Close clears all data, the store stays usable.
func (m *Mock) Close(ctx context.Context) error {
	m.Reset()
	return nil
}

// Reset drops the named tables, or every table when none is given.
// Unknown names are ignored.
func (m *Mock) Reset(tables ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(tables) == 0 {
		m.tables = make(map[string]*table)
		return
	}
	for _, name := range tables {
		delete(m.tables, name)
	}
}

// Drop removes the table and every document in it.
func (m *Mock) Drop(ctx context.Context, tableName string) error {
	m.Reset(tableName)
	return nil
}

// Tables lists the tables currently holding documents or indexes, sorted.
func (m *Mock) Tables() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.tables))
	for name := range m.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// getOrCreateTable gets or creates a table
func (m *Mock) getOrCreateTable(tableName string) *table {
	if m.tables == nil {
		m.tables = make(map[string]*table)
	}
	if m.tables[tableName] == nil {
		m.tables[tableName] = &table{
			data:    make([]map[string]any, 0),
			indexes: make(map[string]*database.Index),
		}
	}
	return m.tables[tableName]
}

// toSnakeCase converts camelCase or PascalCase to snake_case
// Examples:
//   - userId -> user_id
//   - UserName -> user_name
//   - HTTPResponse -> http_response
//   - user_id -> user_id (already snake_case)
func toSnakeCase(s string) string {
	if s == "" {
		return s
	}

	var result strings.Builder
	result.Grow(len(s) + 5)

	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			// "HTTPResponse" -> "http_response"
			prevLower := s[i-1] >= 'a' && s[i-1] <= 'z'
			nextLower := i+1 < len(s) && s[i+1] >= 'a' && s[i+1] <= 'z'

			if prevLower || nextLower {
				result.WriteByte('_')
			}
		}
		result.WriteRune(r)
	}

	return strings.ToLower(result.String())
}

// normalizeKey converts a key to snake_case for consistent storage
func normalizeKey(key string) string {
	return toSnakeCase(key)
}

// fieldName reads the storage name of a struct field from its json or bson tag.
func fieldName(field reflect.StructField) string {
	for _, key := range []string{"json", "bson"} {
		tag := field.Tag.Get(key)
		if tag == "" || tag == "-" {
			continue
		}
		if idx := strings.Index(tag, ","); idx >= 0 {
			tag = tag[:idx]
		}
		if tag != "" {
			return tag
		}
	}
	return field.Name
}

// toRow converts a struct, map or database.D document to a stored row
func toRow(data any) (map[string]any, error) {
	switch doc := data.(type) {
	case database.D:
		row := make(map[string]any, len(doc))
		for _, e := range doc {
			row[normalizeKey(e.Key)] = e.Value
		}
		return row, nil
	case map[string]any:
		row := make(map[string]any, len(doc))
		for k, v := range doc {
			row[normalizeKey(k)] = v
		}
		return row, nil
	}

	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("data must be a struct, map or database.D, got %T", data)
	}

	result := make(map[string]any)
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		result[normalizeKey(fieldName(field))] = v.Field(i).Interface()
	}
	return result, nil
}

// fromRow copies a stored row into dest, a struct pointer or *map[string]any
func fromRow(row map[string]any, dest any) error {
	if out, ok := dest.(*map[string]any); ok {
		*out = copyRow(row)
		return nil
	}

	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Ptr {
		return fmt.Errorf("dest must be a pointer")
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("dest must be a struct pointer")
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		value, ok := row[normalizeKey(fieldName(field))]
		if !ok || value == nil {
			continue
		}
		fieldValue := v.Field(i)
		val := reflect.ValueOf(value)
		if fieldValue.CanSet() && val.Type().AssignableTo(fieldValue.Type()) {
			fieldValue.Set(val)
		}
	}
	return nil
}

func copyRow(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// assignID gives the row a fresh ObjectID unless it already carries a non-zero _id
func assignID(row map[string]any) {
	if id, ok := row[fieldID]; ok && id != nil && !reflect.ValueOf(id).IsZero() {
		return
	}
	row[fieldID] = primitive.NewObjectID()
}

// matchCondition checks if a row matches the given condition
func matchCondition(row map[string]any, cond database.CE) bool {
	value, ok := row[normalizeKey(cond.Key)]
	if !ok {
		return false
	}

	switch cond.C {
	case database.Eq:
		return reflect.DeepEqual(value, cond.Value)
	case database.Ne:
		return !reflect.DeepEqual(value, cond.Value)
	case database.Gt:
		return compareValues(value, cond.Value) > 0
	case database.Gte:
		return compareValues(value, cond.Value) >= 0
	case database.Lt:
		return compareValues(value, cond.Value) < 0
	case database.Lte:
		return compareValues(value, cond.Value) <= 0
	case database.In:
		return containsValue(value, cond.Value)
	case database.Nin:
		return !containsValue(value, cond.Value)
	default:
		return false
	}
}

func compareOrdered[T int | int64 | float64 | string](a T, b any) int {
	v2, ok := b.(T)
	if !ok {
		return 0
	}
	switch {
	case a > v2:
		return 1
	case a < v2:
		return -1
	}
	return 0
}

// compareValues compares two values of the same type (for Gt, Gte, Lt, Lte and sorting)
func compareValues(a, b any) int {
	switch v1 := a.(type) {
	case int:
		return compareOrdered(v1, b)
	case int64:
		return compareOrdered(v1, b)
	case float64:
		return compareOrdered(v1, b)
	case string:
		return compareOrdered(v1, b)
	default:
		return 0
	}
}

// containsValue checks if value is in the slice
func containsValue(value any, slice any) bool {
	sliceValue := reflect.ValueOf(slice)
	if sliceValue.Kind() != reflect.Slice {
		return false
	}

	for i := 0; i < sliceValue.Len(); i++ {
		if reflect.DeepEqual(value, sliceValue.Index(i).Interface()) {
			return true
		}
	}

	return false
}

// matchConditions checks if a row matches all conditions
func matchConditions(row map[string]any, conditions database.C) bool {
	for _, cond := range conditions {
		if !matchCondition(row, cond) {
			return false
		}
	}
	return true
}
