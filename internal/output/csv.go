package output

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/rgehrsitz/encounters/internal/domain"
)

// CSVFormatter renders a summary row followed by the survival curve.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(report *domain.EncounterReport) ([]byte, error) {
	if report == nil || report.Result == nil {
		return nil, fmt.Errorf("report has no result")
	}
	res := report.Result
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	rows := [][]string{
		{"ExpectedVisits", "P25", "P50", "P75", "YearsExpected", "YearsMin", "YearsMax", "TimeAlreadySpent"},
		{
			intToString(res.ExpectedVisits),
			intToString(res.ExpectedVisitsRange.P25),
			intToString(res.ExpectedVisitsRange.P50),
			intToString(res.ExpectedVisitsRange.P75),
			FormatYears(res.YearsWithBothAlive.Expected),
			intToString(res.YearsWithBothAlive.Min),
			intToString(res.YearsWithBothAlive.Max),
			FormatProbability(report.TimeAlreadySpent),
		},
		{},
		{"Year", "YouAlive", "ThemAlive", "BothAlive"},
	}
	for _, p := range res.YearByYearSurvival {
		rows = append(rows, []string{
			intToString(p.Year),
			FormatProbability(p.YouAlive),
			FormatProbability(p.ThemAlive),
			FormatProbability(p.BothAlive),
		})
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
