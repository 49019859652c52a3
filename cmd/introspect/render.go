package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"introspect/internal/analysis"
)

var titleCaser = cases.Title(language.English)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func marshalResult(result *analysis.Result) ([]byte, error) {
	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return append(encoded, '\n'), nil
}

func renderResult(out io.Writer, result *analysis.Result) {
	summary := result.Summary
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(
		[]string{"Metric", "Value"},
		[][]string{
			{"Mental health score", fmt.Sprintf("%d / 100", summary.MentalHealthScore)},
			{"Risk level", titleCaser.String(summary.RiskLevel)},
			{"Confidence", formatScore(summary.Confidence)},
			{"Video emotion", titleCaser.String(summary.VideoEmotion)},
			{"Audio emotion", titleCaser.String(summary.AudioEmotion)},
			{"Text emotion", titleCaser.String(summary.TextEmotion)},
			{"Depression level", titleCaser.String(summary.DepressionLevel)},
			{"Intervals analyzed", fmt.Sprintf("%d", summary.TotalIntervals)},
			{"Privacy mode", result.PrivacyMode.String()},
		},
		[]columnAlignment{alignLeft, alignRight},
	))

	assessment := result.FinalAssessment
	if len(assessment.KeyIndicators) > 0 {
		fmt.Fprintln(out, "\nKey indicators:")
		for _, indicator := range assessment.KeyIndicators {
			fmt.Fprintf(out, "  - %s\n", indicator)
		}
	}
	if len(assessment.Recommendations) > 0 {
		fmt.Fprintln(out, "\nRecommendations:")
		for _, recommendation := range assessment.Recommendations {
			fmt.Fprintf(out, "  - %s\n", recommendation)
		}
	}
	if assessment.DistributionInsights != "" {
		fmt.Fprintf(out, "\n%s\n", assessment.DistributionInsights)
	}
}

func renderDistribution(out io.Writer, title string, scores map[string]float64) {
	labels := make([]string, 0, len(scores))
	for label := range scores {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	rows := make([][]string, 0, len(labels))
	for _, label := range labels {
		rows = append(rows, []string{titleCaser.String(label), formatScore(scores[label])})
	}
	fmt.Fprintf(out, "%s:\n%s\n", title, renderTable(
		[]string{"Label", "Score"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	))
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
