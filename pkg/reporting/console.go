package reporting

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/dtw-pattern-finder/pkg/config"
)

const dateLayout = "2006-01-02 15:04"

// DefaultConsoleReporter implements console output functionality
type DefaultConsoleReporter struct {
	out io.Writer
}

// NewDefaultConsoleReporter creates a console reporter writing to stdout
func NewDefaultConsoleReporter() *DefaultConsoleReporter {
	return NewConsoleReporter(os.Stdout)
}

// NewConsoleReporter creates a console reporter writing to w
func NewConsoleReporter(w io.Writer) *DefaultConsoleReporter {
	if w == nil {
		w = os.Stdout
	}
	return &DefaultConsoleReporter{out: w}
}

// OutputResults prints the run summary and the ranked matches
func (r *DefaultConsoleReporter) OutputResults(report *Report) {
	res := report.Result
	ref := res.Reference
	best := res.BestFit

	fmt.Fprintln(r.out, "\n"+strings.Repeat("=", 60))
	fmt.Fprintln(r.out, "🔎 DTW PATTERN SEARCH RESULTS")
	fmt.Fprintln(r.out, strings.Repeat("=", 60))

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle(fmt.Sprintf("%s %s", strings.ToUpper(report.Symbol), report.Interval))
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"🆔 Run", res.RunID},
		{"📊 Observations", fmt.Sprintf("%d (%s → %s)", res.Series.Len(),
			res.Series.First().Format(dateLayout), res.Series.Last().Format(dateLayout))},
		{"💲 Price Field", report.PriceField},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"📌 Reference", fmt.Sprintf("%s → %s", ref.StartTime.Format(dateLayout), ref.EndTime.Format(dateLayout))},
		{"📏 Window Length", ref.Len()},
		{"🧮 Method", methodLabel(res)},
		{"🚧 Exclusion", fmt.Sprintf("k=%d, offsets [0, %d] searched, %d excluded",
			res.Config.ExclusionFactor, res.Range.Last, res.Curve.Len()-res.Range.Size())},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"🎯 Best Fit", fmt.Sprintf("%s → %s", best.Start.Format(dateLayout), best.End.Format(dateLayout))},
		{"📍 Offset", best.Offset},
		{"📉 Distance", fmt.Sprintf("%.6f", best.Distance)},
		{"⏱️ Elapsed", res.Elapsed.Round(time.Millisecond).String()},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 18, WidthMax: 18, Align: text.AlignLeft},
		{Number: 2, WidthMin: 30, WidthMax: 60, Align: text.AlignLeft},
	})
	t.Render()

	if len(res.TopMatches) > 1 {
		r.outputMatches(report)
	}
	fmt.Fprintln(r.out)
}

func (r *DefaultConsoleReporter) outputMatches(report *Report) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("TOP MATCHES")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Offset", "Start", "End", "Distance"})

	for _, m := range report.Result.TopMatches {
		t.AppendRow(table.Row{
			m.Rank,
			m.Offset,
			m.Start.Format(dateLayout),
			m.End.Format(dateLayout),
			fmt.Sprintf("%.6f", m.Distance),
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	t.Render()
}

// PrintConfig prints the effective configuration
func (r *DefaultConsoleReporter) PrintConfig(cfg *config.AnalysisConfig) {
	refEnd := cfg.ReferenceEndDate
	if refEnd == "" {
		refEnd = "latest"
	}
	start := cfg.StartDate
	if start == "" {
		start = "full history"
	}
	workers := "auto"
	if cfg.Workers > 0 {
		workers = fmt.Sprint(cfg.Workers)
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("ANALYSIS CONFIGURATION")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"📊 Symbol", cfg.Symbol},
		{"⏰ Interval", cfg.Interval},
		{"🏪 Source", sourceLabel(cfg)},
		{"📅 History From", start},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"📌 Reference End", refEnd},
		{"📏 Window", fmt.Sprintf("%d (%s)", cfg.WindowLength, cfg.WindowMode)},
		{"🚧 Exclusion k", cfg.ExclusionFactor},
		{"🧮 Method", fmt.Sprintf("%s (radius %d)", cfg.Method, cfg.SearchRadius)},
		{"💲 Price Field", cfg.PriceField},
		{"⚙️ Workers", workers},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 18, WidthMax: 18, Align: text.AlignLeft},
		{Number: 2, WidthMin: 25, WidthMax: 60, Align: text.AlignLeft},
	})
	t.Render()
	fmt.Fprintln(r.out)
}

func sourceLabel(cfg *config.AnalysisConfig) string {
	if strings.EqualFold(cfg.Source, "csv") {
		return "csv: " + cfg.DataPath()
	}
	env := "mainnet"
	if cfg.Bybit.Testnet {
		env = "testnet"
	}
	return fmt.Sprintf("bybit %s (%s)", cfg.Category, env)
}
