package output

import (
	"bytes"
	_ "embed"
	"html/template"

	"github.com/rpgo/outlive/internal/calculation"
)

// HTMLFormatter produces a standalone HTML report.
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string { return "html" }

//go:embed templates/report.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"money":      FormatMoney,
	"moneyerr":   FormatEstimate,
	"pct":        FormatPercentage,
	"withdrawal": describeWithdrawal,
	"allocation": calculation.AllocationLabel,
	"factor":     describeFactor,
	"add":        func(i, j int) int { return i + j },
	"share": func(count, total int) float64 {
		if total == 0 {
			return 0
		}
		return float64(count) / float64(total)
	},
	"width": func(count, total int) int {
		if total == 0 {
			return 0
		}
		return 400 * count / total
	},
}).Parse(htmlTemplateSource))

func (h HTMLFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	if report == nil {
		report = &Report{}
	}
	if err := htmlTemplate.Execute(&buf, report); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
