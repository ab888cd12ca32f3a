package output

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rgehrsitz/encounters/internal/domain"
)

// Formatter renders an encounter report.
type Formatter interface {
	Name() string
	Format(report *domain.EncounterReport) ([]byte, error)
}

// FormatterFunc adapts a function to the Formatter interface.
type FormatterFunc struct {
	ID string
	F  func(report *domain.EncounterReport) ([]byte, error)
}

func (f FormatterFunc) Name() string { return f.ID }

func (f FormatterFunc) Format(report *domain.EncounterReport) ([]byte, error) {
	return f.F(report)
}

var formatters = map[string]Formatter{
	"console":      ConsoleFormatter{},
	"console-lite": ConsoleLiteFormatter{},
	"json":         JSONFormatter{},
	"csv":          CSVFormatter{},
}

var aliases = map[string]string{
	"text":    "console",
	"summary": "console-lite",
}

// GetFormatterByName returns the formatter registered under name or an
// alias of it, or nil.
func GetFormatterByName(name string) Formatter {
	if target, ok := aliases[name]; ok {
		name = target
	}
	return formatters[name]
}

// AvailableFormatterNames lists registered formatter names in order.
func AvailableFormatterNames() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AvailableFormatAliases lists accepted alternative format names.
func AvailableFormatAliases() []string {
	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteFormatted renders report and writes it to a timestamped file in
// the working directory, returning the file name.
func WriteFormatted(f Formatter, report *domain.EncounterReport, ext string) (string, error) {
	data, err := f.Format(report)
	if err != nil {
		return "", fmt.Errorf("format %s report: %w", f.Name(), err)
	}
	filename := fmt.Sprintf("encounter_report_%s.%s", time.Now().Format("20060102_150405"), ext)
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return filename, nil
}
