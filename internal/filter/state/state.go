// Package state holds the per-request session context. One Session is
// created at request entry and passed explicitly through resolver, engine
// and sanitizer; it is never shared across concurrent requests and never
// outlives the request that created it.
package state

import (
	"strings"
	"unicode"

	"filter-agent/internal/models"
)

type Session struct {
	Summary          *models.AccountSummary
	Query            string
	AvailableFilters []models.AvailableFilter
	AuthSession      string

	targetGroupID  string
	initialFilters []map[string]interface{}
}

// New seeds a session from the caller-supplied request data.
func New(query string, summary *models.AccountSummary, available []models.AvailableFilter, authSession string) *Session {
	return &Session{
		Summary:          summary,
		Query:            query,
		AvailableFilters: available,
		AuthSession:      authSession,
	}
}

// HasReport reports whether a report structure was supplied.
func (s *Session) HasReport() bool {
	return s.Summary != nil && len(s.Summary.ColumnGroups) > 0
}

// Targeted reports whether column-group resolution already ran for this
// request. Resolution runs at most once; retargeting requires the explicit
// select-group operation.
func (s *Session) Targeted() bool {
	return s.targetGroupID != ""
}

// SetTargetGroup records the resolved column group and snapshots its
// filter list so conversational/no-op turns can echo unchanged state.
func (s *Session) SetTargetGroup(id string) {
	s.targetGroupID = id
	if group := s.Summary.GroupByID(id); group != nil {
		s.initialFilters = make([]map[string]interface{}, len(group.Filters))
		copy(s.initialFilters, group.Filters)
	}
}

// TargetGroupID returns the currently targeted column group id, empty
// until resolution runs.
func (s *Session) TargetGroupID() string {
	return s.targetGroupID
}

// TargetGroup returns the targeted column group, nil until resolved.
func (s *Session) TargetGroup() *models.ColumnGroup {
	if s.targetGroupID == "" || s.Summary == nil {
		return nil
	}
	return s.Summary.GroupByID(s.targetGroupID)
}

// InitialFilters returns the snapshot taken when targeting resolved.
func (s *Session) InitialFilters() []map[string]interface{} {
	return s.initialFilters
}

// FindFilter looks up declared filter metadata by name or label,
// case-insensitively.
func (s *Session) FindFilter(name, label string) (models.AvailableFilter, bool) {
	for _, af := range s.AvailableFilters {
		if strings.EqualFold(af.Name, name) || (label != "" && strings.EqualFold(af.Label, label)) {
			return af, true
		}
	}
	// The intent model sometimes hands the label back in the name slot.
	for _, af := range s.AvailableFilters {
		if strings.EqualFold(af.Label, name) {
			return af, true
		}
	}
	return models.AvailableFilter{}, false
}

// CanonicalName repairs a swapped name argument: when the supplied name
// looks like a human label (contains a space or starts upper-case) and
// matches a declared label, the declared name is returned instead.
func (s *Session) CanonicalName(name string) string {
	if name == "" {
		return name
	}
	looksLikeLabel := strings.Contains(name, " ") || unicode.IsUpper(rune(name[0]))
	if !looksLikeLabel {
		return name
	}
	for _, af := range s.AvailableFilters {
		if strings.EqualFold(af.Label, name) {
			return af.Name
		}
	}
	return name
}
