// internal/filter/sanitize/sanitize_test.go
package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filter-agent/internal/models"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		in       interface{}
		expected interface{}
	}{
		{
			name:     "scalar passes through",
			in:       "value",
			expected: "value",
		},
		{
			name: "blocked keys stripped at every depth",
			in: map[string]interface{}{
				"operator":   "and",
				"sourceType": "lens",
				"nested": map[string]interface{}{
					"source_type": "dimensions",
					"keep":        "yes",
				},
			},
			expected: map[string]interface{}{
				"operator": "and",
				"nested":   map[string]interface{}{"keep": "yes"},
			},
		},
		{
			name: "nil map values dropped",
			in: map[string]interface{}{
				"keep": "yes",
				"drop": nil,
			},
			expected: map[string]interface{}{"keep": "yes"},
		},
		{
			name:     "nil slice elements dropped, not replaced",
			in:       []interface{}{"a", nil, "b"},
			expected: []interface{}{"a", "b"},
		},
		{
			name: "typed map slices normalized and cleaned",
			in: []map[string]interface{}{
				{"operator": "and", "sourceType": "lens"},
				nil,
			},
			expected: []interface{}{
				map[string]interface{}{"operator": "and"},
			},
		},
		{
			name: "nested sequences cleaned recursively",
			in: map[string]interface{}{
				"filters": []interface{}{
					map[string]interface{}{
						"sourceType": "lens",
						"value": []interface{}{
							map[string]interface{}{"columnName": "account_type", "dimension": nil},
							nil,
						},
					},
				},
			},
			expected: map[string]interface{}{
				"filters": []interface{}{
					map[string]interface{}{
						"value": []interface{}{
							map[string]interface{}{"columnName": "account_type"},
						},
					},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Clean(tt.in))
		})
	}
}

func TestClean_FixedPoint(t *testing.T) {
	in := map[string]interface{}{
		"operator":   "and",
		"sourceType": "lens",
		"value": []interface{}{
			map[string]interface{}{"columnName": "account_type", "drop": nil},
			nil,
		},
	}

	once := Clean(in)
	twice := Clean(once)
	assert.Equal(t, once, twice)
}

func TestSummary(t *testing.T) {
	summary := &models.AccountSummary{
		ColumnGroups: []models.ColumnGroup{
			{
				ID:       "cg-1",
				Grouping: []map[string]interface{}{{"constant": "Actuals Data"}},
				Filters: []map[string]interface{}{
					{
						"operator":   "and",
						"sourceType": "lens",
						"value": []interface{}{
							map[string]interface{}{"columnName": "account_type", "value": "AP", "operator": "equal"},
						},
					},
				},
			},
		},
	}

	out := Summary(summary)
	require.NotNil(t, out)

	groups, ok := out["columnGroups"].([]interface{})
	require.True(t, ok)
	require.Len(t, groups, 1)

	filters := groups[0].(map[string]interface{})["filters"].([]interface{})
	require.Len(t, filters, 1)

	filterGroup := filters[0].(map[string]interface{})
	assert.NotContains(t, filterGroup, "sourceType")
	assert.Equal(t, "and", filterGroup["operator"])

	conditions := filterGroup["value"].([]interface{})
	require.Len(t, conditions, 1)
	assert.Equal(t, "account_type", conditions[0].(map[string]interface{})["columnName"])
}

func TestSummary_Nil(t *testing.T) {
	assert.Nil(t, Summary(nil))
}
