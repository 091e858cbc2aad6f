package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_Lookup(t *testing.T) {
	t.Parallel()

	r := NewRegistry(DefaultSchemas())

	s := r.Lookup("masterdata", "brokers")
	require.NotNil(t, s)
	assert.Equal(t, "brokers", s.Table)

	assert.Nil(t, r.Lookup("masterdata", "trades"))
	assert.NotNil(t, r.Lookup("trading", "trades"))
	assert.NotNil(t, r.Lookup("admin", "audit-sinks"))
}

func TestDefaultSchemas_Consistency(t *testing.T) {
	t.Parallel()

	for _, s := range DefaultSchemas() {
		t.Run(s.Name, func(t *testing.T) {
			t.Parallel()

			require.NotEmpty(t, s.Table)
			require.NotEmpty(t, s.Area)
			require.NotEmpty(t, s.Singular)

			// The uniqueness key must be a declared field.
			require.NotNil(t, s.FieldByName(s.UniqueKey), "unique key %q not declared", s.UniqueKey)

			// Equals-filters and search columns must be declared fields.
			for _, name := range s.EqualsFilters {
				assert.NotNil(t, s.FieldByName(name), "filter %q not declared", name)
			}
			for _, name := range s.SearchColumns {
				assert.NotNil(t, s.FieldByName(name), "search column %q not declared", name)
			}

			// Transactional resources declare a lifecycle over their status enum.
			if s.States != nil {
				statusF := s.FieldByName(s.StatusField)
				require.NotNil(t, statusF)
				for _, state := range statusF.Enum {
					assert.True(t, s.States.Known(state), "state %q not in machine", state)
				}
				assert.True(t, s.States.Known(s.States.Initial))
			}

			// Generated identifiers only make sense for code-typed unique keys.
			if s.CodePrefix != "" {
				keyField := s.FieldByName(s.UniqueKey)
				require.NotNil(t, keyField)
				assert.Equal(t, Code, keyField.Type)
				assert.False(t, keyField.Required, "generated keys must be optional in the payload")
			}

			for _, ref := range s.References() {
				assert.NotEmpty(t, ref.Ref.Table)
				assert.NotEmpty(t, ref.Ref.Label)
			}
		})
	}
}
