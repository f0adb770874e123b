package outwriter

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/huangsam/gitcensus/schema"
)

const (
	chartWidth  = "1200px"
	chartHeight = "500px"
)

// writeReportHTML renders the chart reports as a single go-echarts page.
func writeReportHTML(bundle schema.ReportBundle, cfg *contract.Config) error {
	path, err := outputPath(cfg, HTMLFile)
	if err != nil {
		return err
	}
	return writeWithFile(path, func(w io.Writer) error {
		return renderReportPage(w, bundle)
	}, "Wrote HTML")
}

func renderReportPage(w io.Writer, bundle schema.ReportBundle) error {
	page := components.NewPage()
	page.PageTitle = "gitcensus"
	page.AddCharts(
		buildStackedBar("Commits by contributor and project group", bundle.DateRange, bundle.Charts[schema.ByUserByProjectReport]),
		buildLineChart("Internal vs external commits", "Commits per interval", bundle.Charts[schema.InternalExternalReport], false),
		buildLineChart("Daily commits by contributor", bundle.DateRange, bundle.Charts[schema.AllCommitsReport], true),
	)
	return page.Render(w)
}

func chartGlobalOptions(title, subtitle string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll", Top: "bottom"}),
	}
}

// buildStackedBar draws one stacked series per contributor over the chart labels.
func buildStackedBar(title, subtitle string, series schema.ChartSeries) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(chartGlobalOptions(title, subtitle)...)
	bar.SetXAxis(series.Labels)

	for _, ds := range series.Datasets {
		data := make([]opts.BarData, len(ds.Data))
		for i, v := range ds.Data {
			data[i] = opts.BarData{Value: v}
		}
		bar.AddSeries(ds.Label, data,
			charts.WithBarChartOpts(opts.BarChart{Stack: ds.Stack}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: ds.BackgroundColor}),
		)
	}
	return bar
}

// buildLineChart draws one line per dataset. With reverse set, labels and values
// are flipped so descending day labels read left to right.
func buildLineChart(title, subtitle string, series schema.ChartSeries, reverse bool) *charts.Line {
	labels := series.Labels
	if reverse {
		labels = reversed(labels)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(chartGlobalOptions(title, subtitle)...)
	line.SetXAxis(labels)

	for _, ds := range series.Datasets {
		values := ds.Data
		if reverse {
			values = reversed(values)
		}
		data := make([]opts.LineData, len(values))
		for i, v := range values {
			data[i] = opts.LineData{Value: v}
		}
		color := ds.BorderColor
		if color == "" {
			color = ds.BackgroundColor
		}
		line.AddSeries(ds.Label, data,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false)}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
		)
	}
	return line
}

// reversed returns a reversed copy of s.
func reversed[T any](s []T) []T {
	out := make([]T, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}
