// internal/models/summary.go
package models

import (
	"fmt"
)

// ColumnGroup is one report column/scenario partition (e.g. "Actuals",
// "Budget") owning its own filter list. Everything except ID, Grouping and
// Filters is report configuration the core passes through verbatim.
type ColumnGroup struct {
	ID                    string                   `json:"id"`
	Lens                  map[string]interface{}   `json:"lens,omitempty"`
	MeasureColumn         map[string]interface{}   `json:"measureColumn,omitempty"`
	Grouping              []map[string]interface{} `json:"grouping"`
	Filters               []map[string]interface{} `json:"filters"`
	DateFilter            []map[string]interface{} `json:"dateFilter,omitempty"`
	RelativeFilter        string                   `json:"relativeFilter,omitempty"`
	Type                  string                   `json:"type,omitempty"`
	ColumnValueMapping    map[string]interface{}   `json:"columnValueMapping,omitempty"`
	RollingNumRangeOption map[string]interface{}   `json:"rollingNumRangeOption,omitempty"`
}

// DisplayName extracts the human-readable name used for disambiguation:
// the first grouping entry's "constant" field. Empty when absent.
func (cg *ColumnGroup) DisplayName() string {
	if len(cg.Grouping) == 0 {
		return ""
	}
	constant, _ := cg.Grouping[0]["constant"].(string)
	return constant
}

// AccountSummary is the full report structure. Every ColumnGroup ID is
// unique within it; the remaining maps are opaque configuration.
type AccountSummary struct {
	ColumnGroups      []ColumnGroup            `json:"columnGroups"`
	ColumnOrder       map[string]interface{}   `json:"columnOrder,omitempty"`
	ExpandedGroupKeys map[string]interface{}   `json:"expandedGroupKeys,omitempty"`
	ExpandedRows      map[string]interface{}   `json:"expandedRows,omitempty"`
	Filters           []map[string]interface{} `json:"filters,omitempty"`
	Formatting        map[string]interface{}   `json:"formatting,omitempty"`
	HiddenColumns     map[string]interface{}   `json:"hiddenColumns,omitempty"`
	RowGroups         []map[string]interface{} `json:"rowGroups,omitempty"`
	Charts            []map[string]interface{} `json:"charts,omitempty"`
	Rounding          map[string]interface{}   `json:"rounding,omitempty"`
}

// GroupByID returns a pointer into ColumnGroups so callers can mutate the
// targeted group in place, or nil when the id is unknown.
func (s *AccountSummary) GroupByID(id string) *ColumnGroup {
	for i := range s.ColumnGroups {
		if s.ColumnGroups[i].ID == id {
			return &s.ColumnGroups[i]
		}
	}
	return nil
}

// ParseFilterGroups decodes the dictionary-shaped filter list carried by a
// ColumnGroup into typed FilterGroups. Malformed conditions are skipped and
// reported; groups left with zero conditions are dropped.
func ParseFilterGroups(raw []map[string]interface{}) ([]FilterGroup, []error) {
	groups := make([]FilterGroup, 0, len(raw))
	var errs []error

	for _, groupData := range raw {
		operator, _ := groupData["operator"].(string)
		sourceType, _ := groupData["sourceType"].(string)
		if sourceType == "" {
			sourceType, _ = groupData["source_type"].(string)
		}

		group := FilterGroup{
			Operator:   ParseLogicalOperator(operator),
			SourceType: ParseSourceType(sourceType),
		}

		rawConditions, _ := groupData["value"].([]interface{})
		for _, rawCondition := range rawConditions {
			conditionData, ok := rawCondition.(map[string]interface{})
			if !ok {
				errs = append(errs, fmt.Errorf("condition is not an object: %v", rawCondition))
				continue
			}
			condition, err := parseCondition(conditionData)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			group.Value = append(group.Value, condition)
		}

		if len(group.Value) > 0 {
			groups = append(groups, group)
		}
	}

	return groups, errs
}

func parseCondition(data map[string]interface{}) (FilterCondition, error) {
	columnName, _ := data["columnName"].(string)
	if columnName == "" {
		return FilterCondition{}, fmt.Errorf("condition missing columnName: %v", data)
	}

	operator, _ := data["operator"].(string)
	op, _ := ParseFilterOperator(operator)

	condition := FilterCondition{
		ColumnName: columnName,
		Value:      stringify(data["value"]),
		Operator:   op,
	}

	if dimData, ok := data["dimension"].(map[string]interface{}); ok {
		if id, ok := dimData["id"].(string); ok && id != "" {
			condition.Dimension = &DimensionInfo{ID: id}
		}
	}
	if join, ok := data["joinColumnName"].(string); ok {
		condition.JoinColumnName = join
	}

	// Dimension and JoinColumnName travel together.
	if condition.Dimension == nil {
		condition.JoinColumnName = ""
	} else if condition.JoinColumnName == "" {
		condition.Dimension = nil
	}

	return condition, nil
}

// stringify normalizes a filter value to its string form; values are
// strings on the wire even when semantically numeric.
func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// FilterGroupsToMaps re-encodes typed FilterGroups into the dictionary
// shape stored on a ColumnGroup. SourceType is kept here; the response
// sanitizer removes it at the boundary.
func FilterGroupsToMaps(groups []FilterGroup) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(groups))
	for _, group := range groups {
		conditions := make([]interface{}, 0, len(group.Value))
		for _, condition := range group.Value {
			conditionData := map[string]interface{}{
				"columnName": condition.ColumnName,
				"value":      condition.Value,
				"operator":   string(condition.Operator),
			}
			if condition.Dimension != nil {
				conditionData["dimension"] = map[string]interface{}{"id": condition.Dimension.ID}
				conditionData["joinColumnName"] = condition.JoinColumnName
			}
			conditions = append(conditions, conditionData)
		}
		out = append(out, map[string]interface{}{
			"operator":   string(group.Operator),
			"value":      conditions,
			"sourceType": string(group.SourceType),
		})
	}
	return out
}
