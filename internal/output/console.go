package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/encounters/internal/domain"
)

// CurveStep is the year interval between survival rows in console output.
const CurveStep = 5

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headlineStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boxStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 2)
)

// ConsoleFormatter renders the full report with the survival curve.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(report *domain.EncounterReport) ([]byte, error) {
	if report == nil || report.Result == nil {
		return nil, fmt.Errorf("report has no result")
	}
	var buf bytes.Buffer
	in := report.Input
	res := report.Result

	fmt.Fprintln(&buf, titleStyle.Render("EXPECTED ENCOUNTERS"))
	fmt.Fprintln(&buf, strings.Repeat("=", 60))
	fmt.Fprintf(&buf, "%s %s\n", labelStyle.Render("You: "), describePerson(in.You))
	fmt.Fprintf(&buf, "%s %s\n", labelStyle.Render("Them:"), describePerson(in.Them))
	if in.RelationType != "" {
		fmt.Fprintf(&buf, "%s %s\n", labelStyle.Render("Relation:"), in.RelationType)
	}
	fmt.Fprintf(&buf, "%s %d\n", labelStyle.Render("Visits per year:"), in.VisitsPerYear)
	fmt.Fprintln(&buf)

	headline := fmt.Sprintf("Expected encounters: %d\nLikely range: %d to %d",
		res.ExpectedVisits, res.ExpectedVisitsRange.P25, res.ExpectedVisitsRange.P75)
	fmt.Fprintln(&buf, boxStyle.Render(headlineStyle.Render(headline)))
	fmt.Fprintln(&buf)

	years := res.YearsWithBothAlive
	fmt.Fprintf(&buf, "Years together: %s expected (%d to %d)\n", FormatYears(years.Expected), years.Min, years.Max)
	fmt.Fprintf(&buf, "Time already spent: %s\n", FormatPercent(report.TimeAlreadySpent))
	fmt.Fprintln(&buf)

	writeCurve(&buf, res.YearByYearSurvival)
	writeAssumptions(&buf, res.Assumptions)
	return buf.Bytes(), nil
}

// ConsoleLiteFormatter renders a short plain-text summary.
type ConsoleLiteFormatter struct{}

func (c ConsoleLiteFormatter) Name() string { return "console-lite" }

func (c ConsoleLiteFormatter) Format(report *domain.EncounterReport) ([]byte, error) {
	if report == nil || report.Result == nil {
		return nil, fmt.Errorf("report has no result")
	}
	res := report.Result
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Expected encounters: %d (likely %d to %d)\n",
		res.ExpectedVisits, res.ExpectedVisitsRange.P25, res.ExpectedVisitsRange.P75)
	fmt.Fprintf(&buf, "Years together: %s (%d to %d)\n",
		FormatYears(res.YearsWithBothAlive.Expected), res.YearsWithBothAlive.Min, res.YearsWithBothAlive.Max)
	return buf.Bytes(), nil
}

func describePerson(p domain.PersonInput) string {
	return fmt.Sprintf("%d, %s, %s", p.Age, p.Sex, p.Country)
}

func writeCurve(buf *bytes.Buffer, curve []domain.SurvivalPoint) {
	if len(curve) == 0 {
		return
	}
	fmt.Fprintln(buf, "SURVIVAL OUTLOOK")
	fmt.Fprintf(buf, "%-6s %-10s %-10s %-10s\n", "Year", "You", "Them", "Both")
	fmt.Fprintln(buf, strings.Repeat("-", 40))
	for i, p := range curve {
		if i%CurveStep != 0 && i != len(curve)-1 {
			continue
		}
		fmt.Fprintf(buf, "%-6d %-10s %-10s %-10s\n",
			p.Year, FormatPercent(p.YouAlive), FormatPercent(p.ThemAlive), FormatPercent(p.BothAlive))
	}
	fmt.Fprintln(buf)
}

func writeAssumptions(buf *bytes.Buffer, a domain.Assumptions) {
	fmt.Fprintln(buf, "ASSUMPTIONS")
	fmt.Fprintf(buf, "• Your remaining life expectancy: %s years\n", FormatYears(a.YouLifeExpectancy))
	fmt.Fprintf(buf, "• Their remaining life expectancy: %s years\n", FormatYears(a.ThemLifeExpectancy))
	fmt.Fprintf(buf, "• Data: %s (%d)\n", a.DataSource, a.DataYear)
	if a.Trials > 0 {
		fmt.Fprintf(buf, "• Monte Carlo trials: %d (seed %d)\n", a.Trials, a.Seed)
	}
}
