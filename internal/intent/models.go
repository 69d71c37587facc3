// internal/intent/models.go
package intent

import "filter-agent/internal/models"

// Operation names the intent API can choose from.
const (
	OpAdd         = "add"
	OpModify      = "modify"
	OpRemove      = "remove"
	OpRemoveMany  = "remove_many"
	OpRemoveAll   = "remove_all"
	OpAddOr       = "add_or"
	OpSelectGroup = "select_group"
	OpCasual      = "casual"
	OpClarify     = "clarify"
)

// Request is the payload sent to the intent API: the free-text query plus
// everything the model needs to ground its choice.
type Request struct {
	Query            string                       `json:"query"`
	AvailableFilters []models.AvailableFilter     `json:"availableFilters"`
	CurrentFilters   []map[string]interface{}     `json:"currentFilters,omitempty"`
	History          []models.ConversationMessage `json:"history,omitempty"`
}

// Arguments carries the chosen operation's parameters. Which fields are
// set depends on the operation.
type Arguments struct {
	Name            string   `json:"name,omitempty"`
	Label           string   `json:"label,omitempty"`
	Value           string   `json:"value,omitempty"`
	Values          []string `json:"values,omitempty"`
	Type            string   `json:"type,omitempty"`
	Operator        string   `json:"operator,omitempty"`
	FilterTypes     []string `json:"filterTypes,omitempty"`
	GroupName       string   `json:"groupName,omitempty"`
	Input           string   `json:"input,omitempty"`
	AvailableValues []string `json:"availableValues,omitempty"`
}

// Decision is one resolved intent: the operation, its arguments, and the
// narrative message echoed back to the user verbatim.
type Decision struct {
	Operation string    `json:"operation"`
	Arguments Arguments `json:"arguments"`
	Message   string    `json:"message"`
}
