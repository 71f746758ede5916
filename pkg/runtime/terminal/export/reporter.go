package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/price-atlas/pkg/models/domain"
	"github.com/de-tools/price-atlas/pkg/models/store"
)

type TableConfig struct {
	NameWidth  int
	ValueWidth int
	DateWidth  int
	NoteWidth  int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:  36,
		ValueWidth: 12,
		DateWidth:  12,
		NoteWidth:  44,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func (c *Reporter) funcs() template.FuncMap {
	return template.FuncMap{
		"formatRow": func(name string, value interface{}, date string, note string) string {
			return fmt.Sprintf("| %-*s | %*v | %-*s | %-*s |",
				c.config.NameWidth, truncate(name, c.config.NameWidth),
				c.config.ValueWidth, value,
				c.config.DateWidth, date,
				c.config.NoteWidth, truncate(note, c.config.NoteWidth))
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.NameWidth+2),
				strings.Repeat("-", c.config.ValueWidth+2),
				strings.Repeat("-", c.config.DateWidth+2),
				strings.Repeat("-", c.config.NoteWidth+2))
		},
		"price": func(p *float64) string {
			if p == nil {
				return "-"
			}
			return fmt.Sprintf("%.2f", *p)
		},
		"date": func(q *domain.PriceQuote) string {
			if q == nil {
				return ""
			}
			return q.Date.Format(domain.DateLayout)
		},
		"amount": func(q *domain.PriceQuote) string {
			if q == nil {
				return "-"
			}
			return fmt.Sprintf("%.2f", q.Price)
		},
		"override": func(q *domain.PriceQuote) string {
			if q != nil && q.Overridden {
				return ", manual"
			}
			return ""
		},
		"source": func(v domain.MonthValue) string {
			if v.IsForecast {
				return "forecast"
			}
			return "history"
		},
	}
}

func (c *Reporter) render(name, tmpl string, data any) error {
	t, err := template.New(name).Funcs(c.funcs()).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, data)
}

const commoditiesTemplate = `
Commodities ({{len .}})

{{separator}}
{{formatRow "Commodity" "Price" "As of" "Category / samples"}}
{{separator}}
{{range .}}{{formatRow .Key.String (amount .Current) (date .Current) (printf "%s, %d samples%s" .Key.Category .Samples (override .Current))}}
{{end}}{{separator}}
`

func (c *Reporter) Commodities(list []domain.CommoditySummary) error {
	return c.render("commodities", commoditiesTemplate, list)
}

const importsTemplate = `
Recent imports ({{len .}})

{{separator}}
{{formatRow "Source / file" "Accepted" "Imported" "Read, dropped, replaced"}}
{{separator}}
{{range .}}{{formatRow (printf "%s %s" .Source .File) .Accepted (.ImportedAt.Format "2006-01-02") (printf "%d read, %d dropped, %d replaced" .Read .Dropped .Replaced)}}
{{end}}{{separator}}
`

func (c *Reporter) Imports(runs []store.ImportRun) error {
	return c.render("imports", importsTemplate, runs)
}

const forecastTemplate = `
Forecast for {{.Key}} on {{.Date.Format "2006-01-02"}}

Predicted price: {{printf "%.2f" .PredictedPrice}}
Confidence: {{.ConfidencePercent}}%
Trend: {{.Trend}}
Seasonal adjustment: {{printf "%+.1f" .SeasonalAdjustmentPercent}}%
Historical samples: {{.HistoricalSampleCount}}
{{range .ExplanationFactors}}
- {{.}}{{end}}
`

func (c *Reporter) Forecast(point domain.ForecastPoint) error {
	return c.render("forecast", forecastTemplate, point)
}

const yearTemplate = `
{{.Series.Key}} monthly averages for {{.Series.Year}}

{{separator}}
{{formatRow "Month" "Price" "" "Source"}}
{{separator}}
{{range .Months}}{{formatRow .Label (price .Price) "" (source .)}}
{{end}}{{separator}}
`

// Year renders the table view: only months that resolved to a value.
func (c *Reporter) Year(series domain.YearSeries) error {
	return c.render("year", yearTemplate, struct {
		Series domain.YearSeries
		Months []domain.MonthValue
	}{Series: series, Months: series.Table()})
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "~"
}
