// internal/models/filter.go
package models

// FilterOperator is the comparison applied by a single condition.
type FilterOperator string

const (
	OperatorEqual          FilterOperator = "equal"
	OperatorNotEqual       FilterOperator = "notEqual"
	OperatorContains       FilterOperator = "contains"
	OperatorDoesNotContain FilterOperator = "doesNotContain"
	OperatorIsBlank        FilterOperator = "isBlank"
	OperatorIsNotBlank     FilterOperator = "isNotBlank"
)

// ParseFilterOperator maps a raw string to a FilterOperator. Unknown values
// fall back to equal; ok is false so callers can log the downgrade.
func ParseFilterOperator(raw string) (op FilterOperator, ok bool) {
	switch FilterOperator(raw) {
	case OperatorEqual, OperatorNotEqual, OperatorContains,
		OperatorDoesNotContain, OperatorIsBlank, OperatorIsNotBlank:
		return FilterOperator(raw), true
	case "":
		return OperatorEqual, true
	}
	return OperatorEqual, false
}

// LogicalOperator combines the conditions of one FilterGroup.
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "and"
	LogicalOr  LogicalOperator = "or"
)

func ParseLogicalOperator(raw string) LogicalOperator {
	if LogicalOperator(raw) == LogicalOr {
		return LogicalOr
	}
	return LogicalAnd
}

// SourceType classifies where a filtered column lives: the report's primary
// data source (lens) or a joined secondary dimension table.
type SourceType string

const (
	SourceLens       SourceType = "lens"
	SourceDimensions SourceType = "dimensions"
)

func ParseSourceType(raw string) SourceType {
	if SourceType(raw) == SourceDimensions {
		return SourceDimensions
	}
	return SourceLens
}

// DimensionInfo identifies the external source backing a dimension condition.
type DimensionInfo struct {
	ID string `json:"id"`
}

// FilterCondition is one atomic test against a column. Dimension and
// JoinColumnName are both set or both empty, never one without the other.
type FilterCondition struct {
	ColumnName     string         `json:"columnName"`
	Value          string         `json:"value"`
	Operator       FilterOperator `json:"operator"`
	Dimension      *DimensionInfo `json:"dimension,omitempty"`
	JoinColumnName string         `json:"joinColumnName,omitempty"`
}

// FilterGroup is an ordered set of conditions combined by one logical
// operator. SourceType is internal bookkeeping; the sanitizer strips it
// before the structure crosses the service boundary. A group with zero
// conditions is invalid and must be dropped, never persisted.
type FilterGroup struct {
	Operator   LogicalOperator   `json:"operator"`
	Value      []FilterCondition `json:"value"`
	SourceType SourceType        `json:"sourceType,omitempty"`
}

// AvailableFilter is the caller-declared metadata for one filterable column.
type AvailableFilter struct {
	Name           string `json:"name"`
	Label          string `json:"label"`
	SourceType     string `json:"sourceType"`
	SourceID       string `json:"sourceId"`
	JoinColumnName string `json:"joinColumnName,omitempty"`
}
