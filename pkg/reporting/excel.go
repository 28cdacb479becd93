package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the workbook report
const (
	SummarySheet  = "Summary"
	PricesSheet   = "Prices"
	DistanceSheet = "Distance"
	MatchesSheet  = "Matches"
)

// DefaultExcelReporter implements Excel output functionality
type DefaultExcelReporter struct{}

// NewDefaultExcelReporter creates a new Excel reporter
func NewDefaultExcelReporter() *DefaultExcelReporter {
	return &DefaultExcelReporter{}
}

// WriteResultXLSX writes the summary, price and distance sheets with their line charts
func (r *DefaultExcelReporter) WriteResultXLSX(report *Report, path string) error {
	if err := NewDefaultPathManager().EnsureDirectoryExists(path); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	fx := excelize.NewFile()
	defer fx.Close()

	if err := fx.SetSheetName(fx.GetSheetName(0), SummarySheet); err != nil {
		return err
	}
	for _, name := range []string{PricesSheet, DistanceSheet, MatchesSheet} {
		if _, err := fx.NewSheet(name); err != nil {
			return err
		}
	}

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}

	if err := r.writeSummarySheet(fx, report, styles); err != nil {
		return err
	}
	if err := r.writePricesSheet(fx, report, styles); err != nil {
		return err
	}
	if err := r.writeDistanceSheet(fx, report, styles); err != nil {
		return err
	}
	if err := r.writeMatchesSheet(fx, report, styles); err != nil {
		return err
	}

	fx.SetActiveSheet(0)
	return fx.SaveAs(path)
}

func (r *DefaultExcelReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	thin := []excelize.Border{
		{Type: "left", Color: "E0E0E0", Style: 1},
		{Type: "right", Color: "E0E0E0", Style: 1},
		{Type: "bottom", Color: "E0E0E0", Style: 1},
	}
	fill := func(color string) excelize.Fill {
		return excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
	}
	dateFmt := "yyyy-mm-dd hh:mm"
	priceFmt := "#,##0.00######"
	distanceFmt := "0.000000"

	// Header style - Dark slate background with white text
	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: fill("2F4F4F"),
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	if styles.BaseStyle, err = fx.NewStyle(&excelize.Style{Border: thin}); err != nil {
		return styles, err
	}
	if styles.LabelStyle, err = fx.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: thin,
	}); err != nil {
		return styles, err
	}
	if styles.DateStyle, err = fx.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt, Border: thin}); err != nil {
		return styles, err
	}
	if styles.PriceStyle, err = fx.NewStyle(&excelize.Style{CustomNumFmt: &priceFmt, Border: thin}); err != nil {
		return styles, err
	}
	if styles.DistanceStyle, err = fx.NewStyle(&excelize.Style{CustomNumFmt: &distanceFmt, Border: thin}); err != nil {
		return styles, err
	}

	// Reference window rows (light blue)
	if styles.ReferenceStyle, err = fx.NewStyle(&excelize.Style{
		CustomNumFmt: &priceFmt,
		Fill:         fill("E6F3FF"),
		Border:       thin,
	}); err != nil {
		return styles, err
	}
	// Best fit rows (light green)
	if styles.BestFitStyle, err = fx.NewStyle(&excelize.Style{
		CustomNumFmt: &priceFmt,
		Fill:         fill("E6FFE6"),
		Border:       thin,
	}); err != nil {
		return styles, err
	}
	// Excluded offsets (grey text)
	if styles.ExcludedStyle, err = fx.NewStyle(&excelize.Style{
		CustomNumFmt: &distanceFmt,
		Font:         &excelize.Font{Color: "A0A0A0"},
		Border:       thin,
	}); err != nil {
		return styles, err
	}

	return styles, nil
}

func (r *DefaultExcelReporter) writeHeader(fx *excelize.File, sheet string, headers []string, styles ExcelStyles) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := fx.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle); err != nil {
			return err
		}
	}
	return fx.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (r *DefaultExcelReporter) writeSummarySheet(fx *excelize.File, report *Report, styles ExcelStyles) error {
	res := report.Result
	ref := res.Reference
	best := res.BestFit

	fx.SetColWidth(SummarySheet, "A", "A", 24)
	fx.SetColWidth(SummarySheet, "B", "B", 40)

	rows := [][2]interface{}{
		{"Run ID", res.RunID},
		{"Started", res.StartedAt.UTC()},
		{"Symbol", strings.ToUpper(report.Symbol)},
		{"Interval", report.Interval},
		{"Source", report.Source},
		{"Price Field", report.PriceField},
		{"Observations", res.Series.Len()},
		{"First Observation", res.Series.First()},
		{"Last Observation", res.Series.Last()},
		{"Reference Start", ref.StartTime},
		{"Reference End", ref.EndTime},
		{"Window Length", ref.Len()},
		{"Method", methodLabel(res)},
		{"Exclusion Factor", res.Config.ExclusionFactor},
		{"Last Admissible Offset", res.Range.Last},
		{"Best Fit Offset", best.Offset},
		{"Best Fit Start", best.Start},
		{"Best Fit End", best.End},
		{"Best Fit Distance", best.Distance},
		{"Elapsed (ms)", res.Elapsed.Milliseconds()},
	}

	if err := r.writeHeader(fx, SummarySheet, []string{"Metric", "Value"}, styles); err != nil {
		return err
	}
	for i, kv := range rows {
		row := i + 2
		label := fmt.Sprintf("A%d", row)
		value := fmt.Sprintf("B%d", row)
		fx.SetCellValue(SummarySheet, label, kv[0])
		fx.SetCellStyle(SummarySheet, label, label, styles.LabelStyle)
		fx.SetCellValue(SummarySheet, value, kv[1])

		style := styles.BaseStyle
		switch kv[1].(type) {
		case time.Time:
			style = styles.DateStyle
		case float64:
			style = styles.DistanceStyle
		}
		fx.SetCellStyle(SummarySheet, value, value, style)
	}
	return nil
}

// writePricesSheet writes the price curve with the reference and best-fit spans in their own
// columns, blank elsewhere, so the chart draws them as highlighted segments.
func (r *DefaultExcelReporter) writePricesSheet(fx *excelize.File, report *Report, styles ExcelStyles) error {
	const sheet = PricesSheet
	res := report.Result
	ref := res.Reference
	m := ref.Len()
	bestFrom, bestTo := res.BestFit.Offset, res.BestFit.Offset+m-1

	fx.SetColWidth(sheet, "A", "A", 18)
	fx.SetColWidth(sheet, "B", "D", 14)

	if err := r.writeHeader(fx, sheet, []string{"Timestamp", "Price", "Reference", "Best Fit"}, styles); err != nil {
		return err
	}

	n := res.Series.Len()
	for i := 0; i < n; i++ {
		row := i + 2
		p := res.Series.At(i)
		if err := fx.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &[]interface{}{p.Timestamp, p.Value}); err != nil {
			return err
		}
		fx.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), styles.DateStyle)

		priceStyle := styles.PriceStyle
		if i >= ref.StartIndex && i <= ref.EndIndex() {
			cell := fmt.Sprintf("C%d", row)
			fx.SetCellValue(sheet, cell, p.Value)
			fx.SetCellStyle(sheet, cell, cell, styles.ReferenceStyle)
			priceStyle = styles.ReferenceStyle
		}
		if i >= bestFrom && i <= bestTo {
			cell := fmt.Sprintf("D%d", row)
			fx.SetCellValue(sheet, cell, p.Value)
			fx.SetCellStyle(sheet, cell, cell, styles.BestFitStyle)
			priceStyle = styles.BestFitStyle
		}
		fx.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), priceStyle)
	}

	last := n + 1
	categories := fmt.Sprintf("%s!$A$2:$A$%d", sheet, last)
	series := make([]excelize.ChartSeries, 0, 3)
	for _, col := range []string{"B", "C", "D"} {
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!$%s$1", sheet, col),
			Categories: categories,
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", sheet, col, col, last),
			Marker:     excelize.ChartMarker{Symbol: "none"},
		})
	}

	return fx.AddChart(sheet, "F2", &excelize.Chart{
		Type:         excelize.Line,
		Series:       series,
		Title:        []excelize.RichTextRun{{Text: fmt.Sprintf("%s %s price", strings.ToUpper(report.Symbol), report.Interval)}},
		Legend:       excelize.ChartLegend{Position: "bottom"},
		Dimension:    excelize.ChartDimension{Width: 960, Height: 420},
		ShowBlanksAs: "gap",
	})
}

// writeDistanceSheet writes one row per offset. Excluded offsets keep their distance in
// column C but are left blank in column D, which is the series the chart draws as searched.
func (r *DefaultExcelReporter) writeDistanceSheet(fx *excelize.File, report *Report, styles ExcelStyles) error {
	const sheet = DistanceSheet
	res := report.Result

	fx.SetColWidth(sheet, "A", "A", 10)
	fx.SetColWidth(sheet, "B", "B", 18)
	fx.SetColWidth(sheet, "C", "D", 16)
	fx.SetColWidth(sheet, "E", "E", 10)

	if err := r.writeHeader(fx, sheet, []string{"Offset", "Window Start", "Distance", "Searched", "Excluded"}, styles); err != nil {
		return err
	}

	points := res.Curve.Points()
	for i, p := range points {
		row := i + 2
		if err := fx.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &[]interface{}{p.Offset, p.Timestamp, p.Distance}); err != nil {
			return err
		}
		// untouched cells are gaps in the chart, empty strings would plot as zero
		if !p.Excluded {
			fx.SetCellValue(sheet, fmt.Sprintf("D%d", row), p.Distance)
		}
		fx.SetCellValue(sheet, fmt.Sprintf("E%d", row), p.Excluded)
		fx.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), styles.DateStyle)

		style := styles.DistanceStyle
		switch {
		case p.Offset == res.BestFit.Offset:
			style = styles.BestFitStyle
		case p.Excluded:
			style = styles.ExcludedStyle
		}
		fx.SetCellStyle(sheet, fmt.Sprintf("C%d", row), fmt.Sprintf("D%d", row), style)
	}

	last := len(points) + 1
	categories := fmt.Sprintf("%s!$B$2:$B$%d", sheet, last)
	return fx.AddChart(sheet, "G2", &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{
			{
				Name:       fmt.Sprintf("%s!$C$1", sheet),
				Categories: categories,
				Values:     fmt.Sprintf("%s!$C$2:$C$%d", sheet, last),
				Marker:     excelize.ChartMarker{Symbol: "none"},
			},
			{
				Name:       fmt.Sprintf("%s!$D$1", sheet),
				Categories: categories,
				Values:     fmt.Sprintf("%s!$D$2:$D$%d", sheet, last),
				Marker:     excelize.ChartMarker{Symbol: "none"},
			},
		},
		Title:        []excelize.RichTextRun{{Text: "Warp distance by window start"}},
		Legend:       excelize.ChartLegend{Position: "bottom"},
		Dimension:    excelize.ChartDimension{Width: 960, Height: 420},
		ShowBlanksAs: "gap",
	})
}

func (r *DefaultExcelReporter) writeMatchesSheet(fx *excelize.File, report *Report, styles ExcelStyles) error {
	const sheet = MatchesSheet

	fx.SetColWidth(sheet, "A", "B", 8)
	fx.SetColWidth(sheet, "C", "D", 18)
	fx.SetColWidth(sheet, "E", "E", 16)

	if err := r.writeHeader(fx, sheet, []string{"Rank", "Offset", "Start", "End", "Distance"}, styles); err != nil {
		return err
	}

	for i, m := range report.Result.TopMatches {
		row := i + 2
		if err := fx.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &[]interface{}{
			m.Rank, m.Offset, m.Start, m.End, m.Distance,
		}); err != nil {
			return err
		}
		fx.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), styles.BaseStyle)
		fx.SetCellStyle(sheet, fmt.Sprintf("C%d", row), fmt.Sprintf("D%d", row), styles.DateStyle)
		fx.SetCellStyle(sheet, fmt.Sprintf("E%d", row), fmt.Sprintf("E%d", row), styles.DistanceStyle)
	}
	return nil
}

// WriteResultXLSX is a package-level convenience function
func WriteResultXLSX(report *Report, path string) error {
	return NewDefaultExcelReporter().WriteResultXLSX(report, path)
}
