// internal/filter/resolver/synonyms.go
package resolver

// synonyms maps a column-group name fragment to the phrases users write
// for it. Checked only after exact and token matching both miss.
var synonyms = map[string][]string{
	"actual":   {"actuals", "actual data"},
	"budget":   {"budgets", "budget data"},
	"forecast": {"forecasts", "forecast data", "projected"},
	"plan":     {"planned", "planning"},
	"prior":    {"previous", "last year"},
	"current":  {"this year", "cy"},
	"py":       {"prior year", "previous year"},
}
