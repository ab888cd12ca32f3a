package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rgehrsitz/encounters/internal/domain"
)

// FormatSweep renders a frequency sweep as console, json or csv.
func FormatSweep(sweep *domain.FrequencySweep, format string) ([]byte, error) {
	if sweep == nil {
		return nil, fmt.Errorf("sweep is nil")
	}
	if target, ok := aliases[format]; ok {
		format = target
	}
	switch format {
	case "console", "console-lite":
		return formatSweepConsole(sweep), nil
	case "json":
		return json.MarshalIndent(sweep, "", "  ")
	case "csv":
		return formatSweepCSV(sweep)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func formatSweepConsole(sweep *domain.FrequencySweep) []byte {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, titleStyle.Render("VISIT FREQUENCY SWEEP"))
	fmt.Fprintln(&buf, strings.Repeat("=", 60))
	fmt.Fprintf(&buf, "%s %s\n", labelStyle.Render("You: "), describePerson(sweep.Input.You))
	fmt.Fprintf(&buf, "%s %s\n", labelStyle.Render("Them:"), describePerson(sweep.Input.Them))
	fmt.Fprintln(&buf)
	fmt.Fprintf(&buf, "%-10s %-10s %-14s %-10s\n", "Per year", "Expected", "Likely range", "Years")
	fmt.Fprintln(&buf, strings.Repeat("-", 48))
	for _, p := range sweep.Points {
		fmt.Fprintf(&buf, "%-10d %-10d %-14s %-10s\n",
			p.VisitsPerYear, p.ExpectedVisits,
			fmt.Sprintf("%d-%d", p.Range.P25, p.Range.P75),
			FormatYears(p.YearsWithBothAlive.Expected))
	}
	return buf.Bytes()
}

func formatSweepCSV(sweep *domain.FrequencySweep) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write([]string{"VisitsPerYear", "ExpectedVisits", "P25", "P50", "P75", "YearsExpected"}); err != nil {
		return nil, err
	}
	for _, p := range sweep.Points {
		row := []string{
			intToString(p.VisitsPerYear),
			intToString(p.ExpectedVisits),
			intToString(p.Range.P25),
			intToString(p.Range.P50),
			intToString(p.Range.P75),
			FormatYears(p.YearsWithBothAlive.Expected),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
