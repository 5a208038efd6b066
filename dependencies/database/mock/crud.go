package mock

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/ti/docmock/dependencies/database"
)

// Insert inserts one or more documents, a slice inserts each element
func (m *Mock) Insert(ctx context.Context, tableName string, docs any) (count int, err error) {
	v := reflect.ValueOf(docs)
	if v.Kind() == reflect.Ptr && v.Elem().Kind() == reflect.Slice {
		v = v.Elem()
	}

	var rows []map[string]any
	if v.Kind() == reflect.Slice {
		if v.Len() == 0 {
			return 0, NewInvalidArgumentError("docs", "no insert data found")
		}
		rows = make([]map[string]any, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			row, err := toRow(v.Index(i).Interface())
			if err != nil {
				return 0, err
			}
			rows = append(rows, row)
		}
	} else {
		row, err := toRow(docs)
		if err != nil {
			return 0, err
		}
		rows = append(rows, row)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	table := m.getOrCreateTable(tableName)
	for _, row := range rows {
		assignID(row)
		table.data = append(table.data, row)
	}
	return len(rows), nil
}

// InsertOne inserts a single document
func (m *Mock) InsertOne(ctx context.Context, tableName string, data any) error {
	_, err := m.Insert(ctx, tableName, data)
	return err
}

// Update updates documents matching the condition
func (m *Mock) Update(ctx context.Context, tableName string, condition database.C, doc any) (count int, err error) {
	return m.update(tableName, condition, doc, false)
}

// UpdateOne updates a single document matching the condition
func (m *Mock) UpdateOne(ctx context.Context, tableName string, condition database.C, doc any) (count int, err error) {
	return m.update(tableName, condition, doc, true)
}

func (m *Mock) update(tableName string, condition database.C, doc any, one bool) (count int, err error) {
	updates, err := toRow(doc)
	if err != nil {
		return 0, err
	}
	// the primary key is immutable
	delete(updates, fieldID)

	m.mu.Lock()
	defer m.mu.Unlock()

	table := m.getOrCreateTable(tableName)
	for i := range table.data {
		if !matchConditions(table.data[i], condition) {
			continue
		}
		for key, value := range updates {
			table.data[i][key] = value
		}
		count++
		if one {
			break
		}
	}
	return count, nil
}

// Delete deletes documents matching the condition
func (m *Mock) Delete(ctx context.Context, tableName string, condition database.C) (count int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	table := m.getOrCreateTable(tableName)

	newData := make([]map[string]any, 0, len(table.data))
	for _, row := range table.data {
		if !matchConditions(row, condition) {
			newData = append(newData, row)
		} else {
			count++
		}
	}

	table.data = newData
	return count, nil
}

// DeleteOne deletes a single document matching the condition
func (m *Mock) DeleteOne(ctx context.Context, tableName string, condition database.C) (count int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	table := m.getOrCreateTable(tableName)

	for i, row := range table.data {
		if matchConditions(row, condition) {
			table.data = append(table.data[:i], table.data[i+1:]...)
			return 1, nil
		}
	}

	return 0, nil
}

// Find finds documents matching the condition, arrayPtr must point to a slice
// of structs or of map[string]any
func (m *Mock) Find(ctx context.Context, tableName string, condition database.C, sortBy []string, limit int, arrayPtr any) error {
	m.mu.RLock()
	matches := m.collect(tableName, condition)
	m.mu.RUnlock()

	if len(sortBy) > 0 {
		sortRows(matches, sortBy)
	}
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return sliceToArray(matches, arrayPtr)
}

// collect copies the matching rows, the caller holds the lock
func (m *Mock) collect(tableName string, condition database.C) []map[string]any {
	table, ok := m.tables[tableName]
	if !ok {
		return nil
	}
	var matches []map[string]any
	for _, row := range table.data {
		if matchConditions(row, condition) {
			matches = append(matches, copyRow(row))
		}
	}
	return matches
}

// FindOne finds a single document matching the condition
func (m *Mock) FindOne(ctx context.Context, tableName string, condition database.C, data any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if table, ok := m.tables[tableName]; ok {
		for _, row := range table.data {
			if matchConditions(row, condition) {
				return fromRow(row, data)
			}
		}
	}

	return NewNotFoundError(tableName)
}

// Exist checks if any document matches the condition
func (m *Mock) Exist(ctx context.Context, tableName string, condition database.C) (bool, error) {
	count, err := m.Count(ctx, tableName, condition)
	return count > 0, err
}

// Count counts documents matching the condition
func (m *Mock) Count(ctx context.Context, tableName string, condition database.C) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	table, ok := m.tables[tableName]
	if !ok {
		return 0, nil
	}
	var count int64
	for _, row := range table.data {
		if matchConditions(row, condition) {
			count++
		}
	}
	return count, nil
}

// EnsureIndexes records the index declarations by name. Recording the same
// name twice keeps the latest declaration, no constraint is enforced.
func (m *Mock) EnsureIndexes(ctx context.Context, tableName string, indexes ...*database.Index) error {
	for _, idx := range indexes {
		if idx == nil || idx.Field == "" {
			return NewInvalidArgumentError("index", "field can not be empty")
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	table := m.getOrCreateTable(tableName)
	for _, idx := range indexes {
		table.indexes[idx.Name()] = idx
	}
	return nil
}

// Indexes returns the indexes recorded for the table, sorted by name.
func (m *Mock) Indexes(tableName string) []*database.Index {
	m.mu.RLock()
	defer m.mu.RUnlock()

	table, ok := m.tables[tableName]
	if !ok {
		return nil
	}
	out := make([]*database.Index, 0, len(table.indexes))
	for _, idx := range table.indexes {
		out = append(out, idx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// sortRows sorts rows by the given sort fields
func sortRows(rows []map[string]any, sortBy []string) {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, field := range sortBy {
			desc := false
			if strings.HasPrefix(field, "-") {
				desc = true
				field = field[1:]
			}

			normalizedField := normalizeKey(field)
			cmp := compareValues(rows[i][normalizedField], rows[j][normalizedField])
			if cmp != 0 {
				if desc {
					return cmp > 0
				}
				return cmp < 0
			}
		}
		return false
	})
}

// sliceToArray converts slice of maps to the slice arrayPtr points to
func sliceToArray(matches []map[string]any, arrayPtr any) error {
	v := reflect.ValueOf(arrayPtr)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("arrayPtr must be a pointer to slice")
	}
	v = v.Elem()

	elemType := v.Type().Elem()
	isPtr := elemType.Kind() == reflect.Ptr
	if isPtr {
		elemType = elemType.Elem()
	}

	for _, match := range matches {
		elem := reflect.New(elemType)
		if err := fromRow(match, elem.Interface()); err != nil {
			return err
		}
		if isPtr {
			v.Set(reflect.Append(v, elem))
		} else {
			v.Set(reflect.Append(v, elem.Elem()))
		}
	}

	return nil
}
