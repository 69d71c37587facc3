// internal/server/schema.go
package server

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Request bodies are validated before any processing touches them; the
// schemas encode the minimum the pipeline needs, everything else is
// passed through.

const filterRequestSchema = `{
	"type": "object",
	"required": ["query", "available_filters", "auth_session"],
	"properties": {
		"query": {"type": "string", "minLength": 1},
		"available_filters": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name", "label", "sourceType", "sourceId"],
				"properties": {
					"name": {"type": "string"},
					"label": {"type": "string"},
					"sourceType": {"type": "string"},
					"sourceId": {"type": "string"},
					"joinColumnName": {"type": "string"}
				}
			}
		},
		"auth_session": {"type": "string"},
		"account_summary": {"type": "object"},
		"conversation_id": {"type": "string"}
	}
}`

const selectGroupRequestSchema = `{
	"type": "object",
	"required": ["query", "column_group_name", "available_filters", "auth_session"],
	"properties": {
		"query": {"type": "string", "minLength": 1},
		"column_group_name": {"type": "string", "minLength": 1},
		"available_filters": {"type": "array"},
		"auth_session": {"type": "string"},
		"account_summary": {"type": "object"},
		"conversation_id": {"type": "string"}
	}
}`

var (
	filterRequestLoader      = gojsonschema.NewStringLoader(filterRequestSchema)
	selectGroupRequestLoader = gojsonschema.NewStringLoader(selectGroupRequestSchema)
)

// validateBody checks a raw JSON document against a schema and returns a
// single readable error listing every violation.
func validateBody(schema gojsonschema.JSONLoader, body []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("request is not valid JSON: %v", err)
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return fmt.Errorf("%s", strings.Join(problems, "; "))
}
