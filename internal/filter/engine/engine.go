// Package engine implements the six filter reconciliation operations. All
// of them act on the FilterGroup list of the session's targeted column
// group only; other column groups are never touched.
package engine

import (
	"fmt"
	"strings"

	apperrors "filter-agent/internal/common/errors"
	"filter-agent/internal/common/logger"
	"filter-agent/internal/filter/state"
	"filter-agent/internal/models"
)

// removeAllPhrases escalate a single-item remove into a full clear. The
// upstream intent model routes bulk removals into remove often enough that
// the original service special-cased the narrative text.
var removeAllPhrases = []string{
	"all filters", "remove all", "clear all", "delete all", "everything",
}

// Input carries the arguments shared by the condition-building operations.
type Input struct {
	Name     string
	Label    string
	Value    string
	Values   []string
	Type     string // lens | dimensions
	Operator string
	Message  string
}

type Engine struct {
	logger logger.Logger
}

func New(log logger.Logger) *Engine {
	return &Engine{
		logger: log.WithFields(map[string]interface{}{"component": "filter-engine"}),
	}
}

// normalizeKey folds a filter identifier into underscore form so that
// "Fiscal Period" and "fiscal_period" compare equal.
func normalizeKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

// conditionMatches tests a condition against a requested filter type by
// name or space-joined label.
func conditionMatches(c models.FilterCondition, name, label string) bool {
	column := normalizeKey(c.ColumnName)
	if name != "" && column == normalizeKey(name) {
		return true
	}
	return label != "" && column == normalizeKey(label)
}

// groupContains reports whether any condition in the group matches the
// requested filter type.
func groupContains(g models.FilterGroup, name, label string) bool {
	for _, c := range g.Value {
		if conditionMatches(c, name, label) {
			return true
		}
	}
	return false
}

// Add appends a condition for the filter type: into the existing group of
// the same type and source classification when one exists (keeping that
// group's logical operator), otherwise as a new single-condition and-group.
func (e *Engine) Add(sess *state.Session, in Input) error {
	return e.apply(sess, "add", func(groups []models.FilterGroup) ([]models.FilterGroup, error) {
		in.Name = sess.CanonicalName(in.Name)
		condition := e.buildCondition(sess, in, in.Value)
		sourceType := models.ParseSourceType(in.Type)

		updated := make([]models.FilterGroup, 0, len(groups)+1)
		added := false
		for _, group := range groups {
			if !added && group.SourceType == sourceType && groupContains(group, in.Name, in.Label) {
				group.Value = append(append([]models.FilterCondition{}, group.Value...), condition)
				added = true
			}
			updated = append(updated, group)
		}
		if !added {
			updated = append(updated, models.FilterGroup{
				Operator:   models.LogicalAnd,
				Value:      []models.FilterCondition{condition},
				SourceType: sourceType,
			})
		}
		return updated, nil
	})
}

// Modify replaces the matching condition in place, leaving its siblings
// and the group's logical operator untouched. Falls back to Add when the
// filter type is not present.
func (e *Engine) Modify(sess *state.Session, in Input) error {
	return e.apply(sess, "modify", func(groups []models.FilterGroup) ([]models.FilterGroup, error) {
		in.Name = sess.CanonicalName(in.Name)
		condition := e.buildCondition(sess, in, in.Value)

		updated := make([]models.FilterGroup, 0, len(groups)+1)
		found := false
		for _, group := range groups {
			if !groupContains(group, in.Name, in.Label) {
				updated = append(updated, group)
				continue
			}
			conditions := make([]models.FilterCondition, 0, len(group.Value))
			for _, existing := range group.Value {
				if conditionMatches(existing, in.Name, in.Label) {
					conditions = append(conditions, condition)
					found = true
				} else {
					conditions = append(conditions, existing)
				}
			}
			group.Value = conditions
			updated = append(updated, group)
		}
		if !found {
			updated = append(updated, models.FilterGroup{
				Operator:   models.LogicalAnd,
				Value:      []models.FilterCondition{condition},
				SourceType: models.ParseSourceType(in.Type),
			})
		}
		return updated, nil
	})
}

// Remove drops every condition of the filter type from every group and
// drops any group left empty. A narrative message asking to remove all
// filters escalates to RemoveAll wholesale.
func (e *Engine) Remove(sess *state.Session, in Input) error {
	messageLower := strings.ToLower(in.Message)
	for _, phrase := range removeAllPhrases {
		if strings.Contains(messageLower, phrase) {
			return e.RemoveAll(sess)
		}
	}

	return e.apply(sess, "remove", func(groups []models.FilterGroup) ([]models.FilterGroup, error) {
		in.Name = sess.CanonicalName(in.Name)

		updated := make([]models.FilterGroup, 0, len(groups))
		for _, group := range groups {
			remaining := make([]models.FilterCondition, 0, len(group.Value))
			for _, condition := range group.Value {
				if !conditionMatches(condition, in.Name, in.Label) {
					remaining = append(remaining, condition)
				}
			}
			if len(remaining) > 0 {
				group.Value = remaining
				updated = append(updated, group)
			}
		}
		return updated, nil
	})
}

// RemoveMany drops the entire group when any of its conditions matches any
// requested filter type, by substring containment in either direction
// after normalization. Non-matching groups pass through unchanged.
func (e *Engine) RemoveMany(sess *state.Session, filterTypes []string) error {
	normalized := make([]string, 0, len(filterTypes))
	for _, ft := range filterTypes {
		normalized = append(normalized, normalizeKey(ft))
	}

	return e.apply(sess, "remove-many", func(groups []models.FilterGroup) ([]models.FilterGroup, error) {
		updated := make([]models.FilterGroup, 0, len(groups))
		for _, group := range groups {
			if !groupMatchesAnyType(group, normalized) {
				updated = append(updated, group)
			}
		}
		return updated, nil
	})
}

func groupMatchesAnyType(group models.FilterGroup, normalizedTypes []string) bool {
	for _, condition := range group.Value {
		column := normalizeKey(condition.ColumnName)
		for _, ft := range normalizedTypes {
			if ft == "" {
				continue
			}
			if strings.Contains(column, ft) || strings.Contains(ft, column) {
				return true
			}
		}
	}
	return false
}

// RemoveAll unconditionally clears the targeted group's filters. Idempotent.
func (e *Engine) RemoveAll(sess *state.Session) error {
	return e.apply(sess, "remove-all", func([]models.FilterGroup) ([]models.FilterGroup, error) {
		return []models.FilterGroup{}, nil
	})
}

// AddOr replaces the group of matching filter type and source
// classification with an or-group holding one condition per value, creating
// it when absent. The only operation allowed to change a group's logical
// operator.
func (e *Engine) AddOr(sess *state.Session, in Input) error {
	return e.apply(sess, "add-or", func(groups []models.FilterGroup) ([]models.FilterGroup, error) {
		if len(in.Values) == 0 {
			return nil, apperrors.NewInvalidConditionError("add-or requires at least one value")
		}
		in.Name = sess.CanonicalName(in.Name)
		sourceType := models.ParseSourceType(in.Type)

		conditions := make([]models.FilterCondition, 0, len(in.Values))
		for _, value := range in.Values {
			conditions = append(conditions, e.buildCondition(sess, in, value))
		}
		orGroup := models.FilterGroup{
			Operator:   models.LogicalOr,
			Value:      conditions,
			SourceType: sourceType,
		}

		updated := make([]models.FilterGroup, 0, len(groups)+1)
		replaced := false
		for _, group := range groups {
			if !replaced && group.SourceType == sourceType && groupContains(group, in.Name, in.Label) {
				updated = append(updated, orGroup)
				replaced = true
			} else {
				updated = append(updated, group)
			}
		}
		if !replaced {
			updated = append(updated, orGroup)
		}
		return updated, nil
	})
}

// apply runs one transformation against the targeted column group's filter
// list and writes the result back into the session's report structure so
// later operations in the same request see it.
func (e *Engine) apply(sess *state.Session, operation string, transform func([]models.FilterGroup) ([]models.FilterGroup, error)) error {
	if sess == nil || !sess.HasReport() {
		return apperrors.NewNoReportStateError()
	}
	target := sess.TargetGroup()
	if target == nil {
		return apperrors.NewProcessingError(fmt.Errorf("%s invoked before column group resolution", operation))
	}

	groups, parseErrs := models.ParseFilterGroups(target.Filters)
	for _, err := range parseErrs {
		e.logger.Warn("skipping malformed filter condition", map[string]interface{}{
			"operation": operation,
			"groupId":   target.ID,
			"error":     err.Error(),
		})
	}

	updated, err := transform(groups)
	if err != nil {
		return err
	}

	target.Filters = models.FilterGroupsToMaps(updated)

	e.logger.Info("filter operation applied", map[string]interface{}{
		"operation":  operation,
		"groupId":    target.ID,
		"groupCount": len(updated),
	})
	return nil
}

// buildCondition constructs one condition from the declared filter
// metadata. Dimension-sourced filters join against a secondary table and
// carry the source id plus join column; lens filters carry neither.
func (e *Engine) buildCondition(sess *state.Session, in Input, value string) models.FilterCondition {
	operator, known := models.ParseFilterOperator(in.Operator)
	if !known {
		e.logger.Warn("unknown filter operator, defaulting to equal", map[string]interface{}{
			"operator": in.Operator,
			"filter":   in.Name,
		})
	}

	condition := models.FilterCondition{
		ColumnName: in.Name,
		Value:      value,
		Operator:   operator,
	}

	if models.ParseSourceType(in.Type) == models.SourceDimensions {
		sourceID := ""
		join := ""
		if af, ok := sess.FindFilter(in.Name, in.Label); ok {
			sourceID = af.SourceID
			join = af.JoinColumnName
		}
		if join == "" {
			join = in.Name
		}
		condition.Dimension = &models.DimensionInfo{ID: sourceID}
		condition.JoinColumnName = join
	}

	return condition
}
