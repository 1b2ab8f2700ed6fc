package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseViolationTypes(t *testing.T) {
	raw := []byte(`
- name: Speeding
  base_fine: 20000
  description: Exceeding the posted speed limit
- name: Hooting in a silent zone
  base_fine: 2000
  active: false
`)
	types, err := parseViolationTypes(raw)
	require.NoError(t, err)
	require.Len(t, types, 2)

	assert.Equal(t, "Speeding", types[0].Name)
	assert.Equal(t, int64(20000), types[0].BaseFine)
	assert.True(t, types[0].IsActive)
	assert.False(t, types[1].IsActive)
}

func TestParseViolationTypesRejectsEmpty(t *testing.T) {
	_, err := parseViolationTypes([]byte("[]"))
	assert.Error(t, err)

	_, err = parseViolationTypes([]byte("name: [unterminated"))
	assert.Error(t, err)
}

func TestDefaultCatalogueIsValid(t *testing.T) {
	seen := map[string]bool{}
	for _, vt := range defaultViolationTypes() {
		assert.NotEmpty(t, vt.Name)
		assert.Positive(t, vt.BaseFine)
		assert.False(t, seen[vt.Name], vt.Name)
		seen[vt.Name] = true
	}
}
