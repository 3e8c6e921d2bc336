package export

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
)

var markdownTmpl = `# Zombie Resource Report

Generated: {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}

## Summary

| Metric | Value |
|--------|-------|
| Findings | {{len .Findings}} |
| Potential monthly savings | {{usd .TotalSavings}} |
| Current monthly cost | {{usd .TotalCost}} |
{{range $sev, $count := .CountBySeverity}}| {{title $sev}} findings | {{$count}} |
{{end}}
## Findings

| Severity | Resource | Issue | Recommendation | Savings/mo |
|----------|----------|-------|----------------|------------|
{{range .Findings}}| {{title .Severity}} | {{.Platform}}/{{.ResourceID}} | {{.Issue}} | {{.Recommendation}} | {{usd .EstimatedSavings}} |
{{end}}{{if .Skipped}}
## Skipped

| Resource | Reason |
|----------|--------|
{{range .Skipped}}| {{.ResourceType}}/{{.ResourceID}} | {{.Reason}} |
{{end}}{{end}}`

// WriteMarkdown renders the report as a markdown document.
func WriteMarkdown(w io.Writer, report *domain.Report) error {
	funcMap := template.FuncMap{
		"usd": func(v float64) string {
			return fmt.Sprintf("$%.2f", v)
		},
		"title": func(v fmt.Stringer) string {
			s := v.String()
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
	}

	t, err := template.New("markdown").Funcs(funcMap).Parse(markdownTmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(w, report)
}
