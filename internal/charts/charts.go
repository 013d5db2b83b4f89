// Package charts renders standings and competition progress as interactive
// HTML charts.
package charts

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title      string   // Chart title
	Subtitle   string   // Chart subtitle
	Width      string   // Chart width (e.g., "900px")
	Height     string   // Chart height (e.g., "500px")
	Theme      string   // Chart theme
	ShowLegend bool     // Show legend
	Colors     []string // Series colors, cycled
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:      "900px",
		Height:     "500px",
		Theme:      "light",
		ShowLegend: true,
		Colors:     []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272", "#FC8452", "#9A60B4", "#EA7CCC"},
	}
}

// DataPoint represents a single data point in a chart.
type DataPoint struct {
	Label string
	Value float64
}

// SeriesData represents a data series for multi-series charts.
type SeriesData struct {
	Name   string
	Points []DataPoint
}

func globalOptions(config ChartConfig) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
	}
}

// StandingsBar renders one bar per pair, in the order given. seriesName
// labels the values, e.g. "Percentage" or "IMPs per board".
func StandingsBar(w io.Writer, data []DataPoint, seriesName string, config ChartConfig) error {
	if len(data) == 0 {
		return fmt.Errorf("no data to chart")
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOptions(config)...)
	if len(config.Colors) > 0 {
		bar.SetGlobalOptions(charts.WithColorsOpts(opts.Colors{config.Colors[0]}))
	}

	xLabels := make([]string, len(data))
	yData := make([]opts.BarData, len(data))
	for i, point := range data {
		xLabels[i] = point.Label
		yData[i] = opts.BarData{Value: point.Value}
	}

	bar.SetXAxis(xLabels).
		AddSeries(seriesName, yData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(true),
			}),
		)

	return renderTo(w, bar)
}

// ProgressLines renders one line per series over the session labels of the
// first series.
func ProgressLines(w io.Writer, series []SeriesData, config ChartConfig) error {
	if len(series) == 0 {
		return fmt.Errorf("no data series provided")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(globalOptions(config)...)

	xLabels := make([]string, len(series[0].Points))
	for i, point := range series[0].Points {
		xLabels[i] = point.Label
	}
	line.SetXAxis(xLabels)

	for i, s := range series {
		yData := make([]opts.LineData, len(s.Points))
		for j, point := range s.Points {
			yData[j] = opts.LineData{Value: point.Value}
		}

		seriesOpts := []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false)}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
		}
		if len(config.Colors) > 0 {
			seriesOpts = append(seriesOpts, charts.WithItemStyleOpts(opts.ItemStyle{
				Color: config.Colors[i%len(config.Colors)],
			}))
		}
		line.AddSeries(s.Name, yData).SetSeriesOptions(seriesOpts...)
	}

	return renderTo(w, line)
}

// CumulativeAverages turns per-session scores into a running average per
// pair. Sessions where a pair did not play repeat the previous average.
func CumulativeAverages(names []string, scores [][]float64, played [][]bool) []SeriesData {
	out := make([]SeriesData, 0, len(names))
	for i, name := range names {
		s := SeriesData{Name: name}
		var sum float64
		count := 0
		for j, v := range scores[i] {
			if j < len(played[i]) && played[i][j] {
				sum += v
				count++
			}
			avg := 0.0
			if count > 0 {
				avg = sum / float64(count)
			}
			s.Points = append(s.Points, DataPoint{Label: "S" + strconv.Itoa(j+1), Value: avg})
		}
		out = append(out, s)
	}
	return out
}

type renderer interface {
	Render(w io.Writer) error
}

func renderTo(w io.Writer, chart renderer) error {
	if err := chart.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// RenderToFile creates outputPath and renders into it with fn.
func RenderToFile(outputPath string, fn func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(f)
}

// OpenInBrowser opens the given file path in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
