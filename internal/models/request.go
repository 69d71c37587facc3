// internal/models/request.go
package models

const (
	ResponseTypeSuccess       = "success"
	ResponseTypeError         = "error"
	ResponseTypeClarification = "clarification_needed"
)

// FilterRequest is the inbound natural-language filter request.
type FilterRequest struct {
	Query            string            `json:"query"`
	AvailableFilters []AvailableFilter `json:"available_filters"`
	AuthSession      string            `json:"auth_session"`
	AccountSummary   *AccountSummary   `json:"account_summary,omitempty"`
	ConversationID   string            `json:"conversation_id,omitempty"`
}

// SelectGroupRequest is the follow-up request naming a column group after a
// clarification response.
type SelectGroupRequest struct {
	Query            string            `json:"query"`
	ColumnGroupName  string            `json:"column_group_name"`
	AvailableFilters []AvailableFilter `json:"available_filters"`
	AuthSession      string            `json:"auth_session"`
	AccountSummary   *AccountSummary   `json:"account_summary,omitempty"`
	ConversationID   string            `json:"conversation_id,omitempty"`
}

// GroupRef is one selectable column group offered in a clarification.
type GroupRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FilterResponse is the success shape. AccountSummary carries the sanitized
// report structure, already stripped of internal bookkeeping fields.
type FilterResponse struct {
	Type           string                 `json:"type"`
	Message        string                 `json:"message"`
	AccountSummary map[string]interface{} `json:"account_summary"`
	ConversationID string                 `json:"conversation_id,omitempty"`
}

// ErrorResponse is the failure shape.
type ErrorResponse struct {
	Type           string `json:"type"`
	Message        string `json:"message"`
	ErrorCode      string `json:"error_code"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ClarificationResponse asks the caller to pick a column group.
type ClarificationResponse struct {
	Type            string     `json:"type"`
	Message         string     `json:"message"`
	AvailableGroups []GroupRef `json:"available_groups"`
	ConversationID  string     `json:"conversation_id,omitempty"`
}
