// internal/filter/resolver/resolver_test.go
package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "filter-agent/internal/common/errors"
	"filter-agent/internal/common/logger"
	"filter-agent/internal/models"
)

func group(id, name string) models.ColumnGroup {
	return models.ColumnGroup{
		ID:       id,
		Grouping: []map[string]interface{}{{"constant": name}},
	}
}

func twoGroupSummary() *models.AccountSummary {
	return &models.AccountSummary{
		ColumnGroups: []models.ColumnGroup{
			group("cg-1", "Actuals Data"),
			group("cg-2", "Budget Data"),
		},
	}
}

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		summary  *models.AccountSummary
		validate func(t *testing.T, res Resolution)
	}{
		{
			name:    "single group wins regardless of query",
			query:   "add a filter",
			summary: &models.AccountSummary{ColumnGroups: []models.ColumnGroup{group("cg-1", "Actuals Data")}},
			validate: func(t *testing.T, res Resolution) {
				assert.True(t, res.Resolved())
				assert.Equal(t, "cg-1", res.GroupID)
			},
		},
		{
			name:    "full display name in the query",
			query:   "filter budget data by fund type General",
			summary: twoGroupSummary(),
			validate: func(t *testing.T, res Resolution) {
				assert.True(t, res.Resolved())
				assert.Equal(t, "cg-2", res.GroupID)
			},
		},
		{
			name:    "name token match",
			query:   "filter actuals by fiscal period 10",
			summary: twoGroupSummary(),
			validate: func(t *testing.T, res Resolution) {
				assert.True(t, res.Resolved())
				assert.Equal(t, "cg-1", res.GroupID)
			},
		},
		{
			name:  "synonym phrase match",
			query: "filter previous by department",
			summary: &models.AccountSummary{ColumnGroups: []models.ColumnGroup{
				group("cg-1", "Prior Period"),
				group("cg-2", "Current Period"),
			}},
			validate: func(t *testing.T, res Resolution) {
				assert.True(t, res.Resolved())
				assert.Equal(t, "cg-1", res.GroupID)
			},
		},
		{
			name:    "ambiguous query yields every named candidate",
			query:   "add a fiscal period filter",
			summary: twoGroupSummary(),
			validate: func(t *testing.T, res Resolution) {
				assert.False(t, res.Resolved())
				assert.True(t, res.NeedsClarification())
				require.Len(t, res.Candidates, 2)
				assert.Equal(t, "Actuals Data", res.Candidates[0].Name)
				assert.Equal(t, "Budget Data", res.Candidates[1].Name)
			},
		},
		{
			name:    "unnamed groups are excluded from candidates",
			query:   "add a filter",
			summary: &models.AccountSummary{ColumnGroups: []models.ColumnGroup{group("cg-1", "Actuals Data"), {ID: "cg-2"}}},
			validate: func(t *testing.T, res Resolution) {
				assert.True(t, res.NeedsClarification())
				require.Len(t, res.Candidates, 1)
				assert.Equal(t, "cg-1", res.Candidates[0].ID)
			},
		},
		{
			name:    "no groups at all",
			query:   "add a filter",
			summary: &models.AccountSummary{},
			validate: func(t *testing.T, res Resolution) {
				assert.ErrorIs(t, res.Err, ErrNoGroups)
			},
		},
		{
			name:    "nil summary",
			query:   "add a filter",
			summary: nil,
			validate: func(t *testing.T, res Resolution) {
				assert.ErrorIs(t, res.Err, ErrNoGroups)
			},
		},
	}

	r := New(logger.NewNoOpLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, r.Resolve(tt.query, tt.summary))
		})
	}
}

func TestResolver_Resolve_TwoCharTokensIgnored(t *testing.T) {
	// "PY" is too short to match as a token; only its synonym phrases count.
	summary := &models.AccountSummary{
		ColumnGroups: []models.ColumnGroup{
			group("cg-1", "PY"),
			group("cg-2", "Budget Data"),
		},
	}
	r := New(logger.NewNoOpLogger())

	res := r.Resolve("apply a filter", summary)
	assert.True(t, res.NeedsClarification())

	res = r.Resolve("filter prior year by department", summary)
	assert.Equal(t, "cg-1", res.GroupID)
}

func TestResolver_SelectGroup(t *testing.T) {
	summary := twoGroupSummary()
	r := New(logger.NewNoOpLogger())

	tests := []struct {
		name     string
		arg      string
		wantID   string
		wantCode apperrors.ErrorCode
	}{
		{"exact match", "Actuals Data", "cg-1", ""},
		{"case-insensitive exact match", "budget data", "cg-2", ""},
		{"substring match", "Budget", "cg-2", ""},
		{"padded input", "  actuals data  ", "cg-1", ""},
		{"unknown name", "Forecast", "", apperrors.ErrCodeGroupNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := r.SelectGroup(tt.arg, summary)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, apperrors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestResolver_SelectGroup_NoGroups(t *testing.T) {
	r := New(logger.NewNoOpLogger())
	_, err := r.SelectGroup("Actuals Data", nil)
	assert.ErrorIs(t, err, ErrNoGroups)
}
