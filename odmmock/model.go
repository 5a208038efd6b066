package odmmock

import "github.com/ti/docmock/odm"

func (m *Mock) model(c *odm.Client, name string, schema *odm.Schema, opts ...odm.ModelOption) (*odm.Model, error) {
	return m.register(name)(m.orig.Model(c, name, schema, opts...))
}

func (m *Mock) connectionModel(conn *odm.Connection, name string, schema *odm.Schema, opts ...odm.ModelOption) (*odm.Model, error) {
	return m.register(name)(m.orig.ConnectionModel(conn, name, schema, opts...))
}

// register binds a freshly defined model to the storage, builds its indexes
// when the schema asks for it and records it under name.
func (m *Mock) register(name string) func(*odm.Model, error) (*odm.Model, error) {
	return func(model *odm.Model, err error) (*odm.Model, error) {
		if err != nil {
			return nil, err
		}
		model.SetStorage(m.storage)
		if model.Schema().Options.AutoIndex {
			if err := model.EnsureIndexes(m.ctx); err != nil {
				return nil, err
			}
		}
		m.mu.Lock()
		m.models[name] = model
		m.mu.Unlock()
		return model, nil
	}
}
