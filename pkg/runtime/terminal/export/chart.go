package export

import (
	"fmt"
	"image/color"
	"io"
	"time"

	"github.com/de-tools/price-atlas/pkg/models/domain"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	historyColor  = color.RGBA{R: 0, G: 100, B: 0, A: 255}
	forecastColor = color.RGBA{R: 200, G: 90, B: 0, A: 255}
)

// WriteYearChart renders series as a PNG line chart with a fixed Jan..Dec
// axis. Months without a value are gaps, never zeros.
func WriteYearChart(w io.Writer, series domain.YearSeries) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s %d", series.Key, series.Year)
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Month"
	p.Y.Label.Text = "Average price"
	p.X.Min, p.X.Max = 0.5, 12.5
	p.Add(plotter.NewGrid())

	history, forecast := chartPoints(series)
	if err := addLine(p, "History", history, historyColor); err != nil {
		return err
	}
	if err := addLine(p, "Forecast", forecast, forecastColor); err != nil {
		return err
	}

	labels := make([]string, 12)
	for i := range labels {
		labels[i] = domain.MonthLabel(time.Month(i + 1))
	}
	p.X.Tick.Marker = monthTicks(labels)

	wt, err := p.WriterTo(10*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

func chartPoints(series domain.YearSeries) (history, forecast plotter.XYs) {
	for _, v := range series.Chart() {
		if !v.HasValue() {
			continue
		}
		xy := plotter.XY{X: float64(v.Month), Y: *v.Price}
		if v.IsForecast {
			forecast = append(forecast, xy)
		} else {
			history = append(history, xy)
		}
	}
	return history, forecast
}

// drawable widens a lone point into a flat two-point segment so the line
// renderer has something to draw.
func drawable(points plotter.XYs) plotter.XYs {
	if len(points) != 1 {
		return points
	}
	p := points[0]
	return plotter.XYs{{X: p.X - 0.25, Y: p.Y}, {X: p.X + 0.25, Y: p.Y}}
}

func addLine(p *plot.Plot, name string, points plotter.XYs, c color.Color) error {
	if len(points) == 0 {
		return nil
	}
	line, err := plotter.NewLine(drawable(points))
	if err != nil {
		return fmt.Errorf("build %s line: %w", name, err)
	}
	line.Color = c
	line.Width = vg.Points(2)

	marks, err := plotter.NewScatter(points)
	if err != nil {
		return fmt.Errorf("build %s markers: %w", name, err)
	}
	marks.GlyphStyle.Color = c
	marks.GlyphStyle.Radius = vg.Points(3)
	marks.GlyphStyle.Shape = draw.CircleGlyph{}

	p.Add(line, marks)
	p.Legend.Add(name, line)
	return nil
}

type monthTicks []string

func (m monthTicks) Ticks(_, _ float64) []plot.Tick {
	ticks := make([]plot.Tick, len(m))
	for i, label := range m {
		ticks[i] = plot.Tick{Value: float64(i + 1), Label: label}
	}
	return ticks
}
