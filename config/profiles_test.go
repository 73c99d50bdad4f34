package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestProfileSetList(t *testing.T) {
	var p ProfileSet
	err := yaml.Unmarshal([]byte("[default, staging, production]"), &p)
	require.NoError(t, err)

	assert.Equal(t, []string{"default", "staging", "production"}, p.Names)
	assert.False(t, p.Matchable())
	assert.True(t, p.HasProfile("staging"))
	assert.False(t, p.HasProfile("qa"))
}

func TestProfileSetMapping(t *testing.T) {
	content := `
staging:
  env:
    - development
    - staging
production:
  env: production
`
	var p ProfileSet
	err := yaml.Unmarshal([]byte(content), &p)
	require.NoError(t, err)

	assert.True(t, p.Matchable())
	require.Len(t, p.Rules, 2)

	// Declaration order is preserved for tie-breaking.
	assert.Equal(t, "staging", p.Rules[0].Name)
	assert.Equal(t, "production", p.Rules[1].Name)

	assert.Equal(t, CriterionValues{"development", "staging"}, p.Rules[0].Criteria["env"])
	assert.Equal(t, CriterionValues{"production"}, p.Rules[1].Criteria["env"])
}

func TestProfileSetNullCriteria(t *testing.T) {
	var p ProfileSet
	err := yaml.Unmarshal([]byte("shared:\n"), &p)
	require.NoError(t, err)

	assert.True(t, p.Matchable())
	require.Len(t, p.Rules, 1)
	assert.Empty(t, p.Rules[0].Criteria)
}

func TestProfileSetBadShape(t *testing.T) {
	var p ProfileSet
	assert.Error(t, yaml.Unmarshal([]byte("42"), &p))

	var q ProfileSet
	assert.Error(t, yaml.Unmarshal([]byte("prod: a-string\n"), &q))
}

func TestCriterionValuesContains(t *testing.T) {
	v := CriterionValues{"development", "staging"}
	assert.True(t, v.Contains("staging"))
	assert.False(t, v.Contains("production"))
}
