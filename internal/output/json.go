package output

import (
	json "github.com/goccy/go-json"
	"github.com/rgehrsitz/encounters/internal/domain"
)

// JSONFormatter renders the report as indented JSON.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(report *domain.EncounterReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}
