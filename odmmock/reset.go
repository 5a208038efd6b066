package odmmock

// Reset forgets the named models and drops their collections. With no name
// it forgets every model and wipes the storage. Unknown names only reset the
// collection of the same name.
func (m *Mock) Reset(names ...string) {
	if len(names) == 0 {
		m.mu.Lock()
		clear(m.models)
		m.mu.Unlock()
		m.storage.Reset()
		return
	}
	collections := make([]string, 0, len(names))
	m.mu.Lock()
	for _, name := range names {
		collection := name
		if model, ok := m.models[name]; ok {
			collection = model.CollectionName()
			delete(m.models, name)
		}
		collections = append(collections, collection)
	}
	m.mu.Unlock()
	m.storage.Reset(collections...)
}
