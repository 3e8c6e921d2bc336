package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
)

type TableConfig struct {
	ResourceWidth       int
	IssueWidth          int
	RecommendationWidth int
	SavingsWidth        int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		ResourceWidth:       36,
		IssueWidth:          44,
		RecommendationWidth: 22,
		SavingsWidth:        14,
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

func (r *Reporter) Handle(report *domain.Report) error {
	funcMap := template.FuncMap{
		"formatRow": func(resource, issue, recommendation string, savings interface{}) string {
			return fmt.Sprintf("| %-*s | %-*s | %-*s | %*v |",
				r.config.ResourceWidth, truncate(resource, r.config.ResourceWidth),
				r.config.IssueWidth, truncate(issue, r.config.IssueWidth),
				r.config.RecommendationWidth, recommendation,
				r.config.SavingsWidth, savings)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", r.config.ResourceWidth+2),
				strings.Repeat("-", r.config.IssueWidth+2),
				strings.Repeat("-", r.config.RecommendationWidth+2),
				strings.Repeat("-", r.config.SavingsWidth+2))
		},
		"severity": func(s domain.Severity) string {
			return strings.ToUpper(s.String())
		},
		"usd": func(v float64) string {
			return fmt.Sprintf("$%.2f", v)
		},
	}

	tmpl := `
Zombie Resource Report ({{.GeneratedAt.Format "2006-01-02 15:04"}})

Findings: {{len .Findings}}
Potential Monthly Savings: {{usd .TotalSavings}}
Current Monthly Cost: {{usd .TotalCost}}
{{range $sev, $count := .CountBySeverity}}{{severity $sev}}: {{$count}}  {{end}}

{{separator}}
{{formatRow "Resource" "Issue" "Recommendation" "Savings/mo"}}
{{separator}}
{{range .Findings}}{{formatRow (printf "[%s] %s/%s" (severity .Severity) .Platform .ResourceID) .Issue (printf "%s" .Recommendation) (usd .EstimatedSavings)}}
{{end}}{{separator}}
{{if .Skipped}}
Skipped resources:
{{range .Skipped}}  - {{.ResourceType}}/{{.ResourceID}}: {{.Reason}}
{{end}}{{end}}`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(r.writer, report)
}

// HandleLedger renders an execution run summary.
func (r *Reporter) HandleLedger(ledger *domain.ExecutionLedger) error {
	funcMap := template.FuncMap{
		"usd": func(v float64) string {
			return fmt.Sprintf("$%.2f", v)
		},
	}

	tmpl := `
Remediation Run ({{.Mode}} mode, started {{.StartedAt.Format "2006-01-02 15:04"}})

Realized Monthly Savings: {{usd .RealizedSavings}}
Outstanding Monthly Savings: {{usd .PotentialSavings}}
{{range $state, $count := .CountByState}}{{$state}}: {{$count}}  {{end}}

{{range .Records}}  [{{.State}}] {{.Action.Kind}} {{.Action.ResourceType}}/{{.Action.ResourceID}}{{if .Reason}} ({{.Reason}}){{end}}{{if .Error}} error: {{.Error}}{{end}}{{if .Backup}} backup: {{.Backup.ID}}{{end}}
{{end}}`

	t, err := template.New("ledger").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(r.writer, ledger)
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}
