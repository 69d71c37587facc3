// Package resolver determines which column group a request targets.
package resolver

import (
	"errors"
	"strings"

	apperrors "filter-agent/internal/common/errors"
	"filter-agent/internal/common/logger"
	"filter-agent/internal/models"
)

// ErrNoGroups is returned when the report has zero column groups.
var ErrNoGroups = errors.New("NO_COLUMN_GROUPS")

// Resolution is the outcome of a resolve attempt. Clarification is an
// expected control-flow branch, not an error, so it is carried as data.
type Resolution struct {
	GroupID    string
	Candidates []models.GroupRef
	Err        error
}

func (r Resolution) Resolved() bool {
	return r.Err == nil && r.GroupID != ""
}

func (r Resolution) NeedsClarification() bool {
	return r.Err == nil && r.GroupID == ""
}

type Resolver struct {
	logger logger.Logger
}

func New(log logger.Logger) *Resolver {
	return &Resolver{
		logger: log.WithFields(map[string]interface{}{"component": "column-group-resolver"}),
	}
}

// Resolve picks the column group a query targets. Rules run in order and
// the first match wins:
//  1. a single group wins unconditionally
//  2. full display name appears in the query (case-insensitive)
//  3. a display-name token longer than 2 chars appears in the query
//  4. a synonym phrase for a name fragment appears in the query
//
// Anything else yields a clarification carrying every named group.
func (r *Resolver) Resolve(query string, summary *models.AccountSummary) Resolution {
	if summary == nil || len(summary.ColumnGroups) == 0 {
		return Resolution{Err: ErrNoGroups}
	}

	groups := summary.ColumnGroups
	if len(groups) == 1 {
		return Resolution{GroupID: groups[0].ID}
	}

	queryLower := strings.ToLower(query)

	// Full display name verbatim in the query; first match in group order.
	for i := range groups {
		name := groups[i].DisplayName()
		if name == "" {
			continue
		}
		if strings.Contains(queryLower, strings.ToLower(name)) {
			return Resolution{GroupID: groups[i].ID}
		}
	}

	// Name tokens longer than 2 characters.
	for i := range groups {
		name := groups[i].DisplayName()
		if name == "" {
			continue
		}
		for _, token := range strings.Fields(strings.ToLower(name)) {
			if len(token) > 2 && strings.Contains(queryLower, token) {
				return Resolution{GroupID: groups[i].ID}
			}
		}
	}

	// Synonym phrases for known name fragments.
	for i := range groups {
		nameLower := strings.ToLower(groups[i].DisplayName())
		if nameLower == "" {
			continue
		}
		for key, phrases := range synonyms {
			if !strings.Contains(nameLower, key) {
				continue
			}
			for _, phrase := range phrases {
				if strings.Contains(queryLower, phrase) {
					return Resolution{GroupID: groups[i].ID}
				}
			}
		}
	}

	candidates := make([]models.GroupRef, 0, len(groups))
	for i := range groups {
		if name := groups[i].DisplayName(); name != "" {
			candidates = append(candidates, models.GroupRef{ID: groups[i].ID, Name: name})
		}
	}

	r.logger.Info("column group ambiguous, requesting clarification", map[string]interface{}{
		"query":      query,
		"candidates": len(candidates),
	})

	return Resolution{Candidates: candidates}
}

// SelectGroup resolves an explicitly named column group: exact display-name
// match first, then substring. Used for clarification follow-ups.
func (r *Resolver) SelectGroup(name string, summary *models.AccountSummary) (string, error) {
	if summary == nil || len(summary.ColumnGroups) == 0 {
		return "", ErrNoGroups
	}

	nameLower := strings.ToLower(strings.TrimSpace(name))
	groups := summary.ColumnGroups

	for i := range groups {
		if strings.ToLower(groups[i].DisplayName()) == nameLower {
			return groups[i].ID, nil
		}
	}
	for i := range groups {
		display := strings.ToLower(groups[i].DisplayName())
		if display != "" && strings.Contains(display, nameLower) {
			return groups[i].ID, nil
		}
	}

	return "", apperrors.NewGroupNotFoundError(name)
}
