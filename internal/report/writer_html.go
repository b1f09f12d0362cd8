package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"ForensicFlow/internal/model"
)

// HTMLWriter renders the assembled report as a single self-contained HTML
// page of tables. Charting belongs to downstream tooling; this page is the
// human-readable companion of report.json.
type HTMLWriter struct {
	OutputDir string
}

// Format names the output form.
func (w *HTMLWriter) Format() string { return "html" }

// Write renders the report to <output>/<stem>_<timestamp>/report.html and
// returns the path.
func (w *HTMLWriter) Write(report *model.Report) (string, error) {
	dir, err := reportDir(w.OutputDir, report)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, "report.html")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := reportTemplate.Execute(f, report); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return path, nil
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"volume":  func(r *model.Report, v float64) string { return r.VolumeUnit.Apply(v) },
	"packets": func(r *model.Report, v float64) string { return r.PacketsUnit.Apply(v) },
	"month":   func(r *model.Report, key string) *model.Summary { return r.Months[key] },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>ForensicFlow Report - {{.File.Name}}</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
table { border-collapse: collapse; margin-bottom: 2em; }
th, td { border: 1px solid #bbb; padding: 4px 10px; text-align: left; }
th { background: #eee; }
.note { color: #a60; font-style: italic; }
</style>
</head>
<body>
<h1>DDoS Forensics Report</h1>

<h2>File</h2>
<table>
<tr><th>Name</th><td>{{.File.Name}}</td></tr>
<tr><th>Size (bytes)</th><td>{{.File.SizeBytes}}</td></tr>
<tr><th>Encoding</th><td>{{.File.Encoding}}</td></tr>
<tr><th>Date format</th><td>{{.File.DateFormat}}</td></tr>
<tr><th>Date range</th><td>{{.Range.Start.Format "2006-01-02"}} to {{.Range.End.Format "2006-01-02"}} ({{.Range.Days}} days)</td></tr>
<tr><th>Generated</th><td>{{.GeneratedAt.Format "2006-01-02 15:04:05"}} UTC</td></tr>
</table>

<h2>Overall Statistics</h2>
{{with .Holistic}}
<table>
<tr><th>Total events</th><td>{{.TotalEvents}}</td></tr>
<tr><th>Unique source IPs</th><td>{{.UniqueSourceIPs}}</td></tr>
<tr><th>Unique destination IPs</th><td>{{.UniqueDestinationIPs}}</td></tr>
<tr><th>Total packets</th><td>{{packets $ .TotalPackets}}</td></tr>
<tr><th>Total volume</th><td>{{volume $ .TotalMbits}}</td></tr>
<tr><th>Max pps</th><td>{{.MaxPPS}}</td></tr>
<tr><th>Max bps</th><td>{{.MaxBPS}}</td></tr>
{{if .LongestAttack}}<tr><th>Longest attack</th><td>{{.LongestAttack.Duration}}</td></tr>{{end}}
</table>

<h3>Attack Types</h3>
<table>
<tr><th>Threat Category</th><th>Attack Name</th><th>Count</th></tr>
{{range .AttackTypeDetails}}<tr><td>{{.Category}}</td><td>{{.Name}}</td><td>{{(index $.Holistic.AttackTypes .Name).Count}}</td></tr>
{{end}}
</table>

<h3>Top Source IPs</h3>
<table>
<tr><th>IP</th><th>Events</th></tr>
{{range .TopSourceIPs}}<tr><td>{{.IP}}</td><td>{{.Count}}</td></tr>
{{end}}
</table>

<h3>Top Destination IPs</h3>
<table>
<tr><th>IP</th><th>Events</th></tr>
{{range .TopDestinationIPs}}<tr><td>{{.IP}}</td><td>{{.Count}}</td></tr>
{{end}}
</table>
{{end}}

<h2>Monthly Trends</h2>
{{if .TrendsAvailable}}
<table>
<tr><th>Month</th><th>Events</th><th>Unique Src IPs</th><th>Unique Dst IPs</th><th>Packets</th><th>Volume</th><th>Max pps</th><th>Max bps</th></tr>
{{range .MonthOrder}}{{with month $ .}}<tr>
<td>{{.Label}}</td><td>{{.TotalEvents}}</td><td>{{.UniqueSourceIPs}}</td><td>{{.UniqueDestinationIPs}}</td>
<td>{{packets $ .TotalPackets}}</td><td>{{volume $ .TotalMbits}}</td><td>{{.MaxPPS}}</td><td>{{.MaxBPS}}</td>
</tr>
{{end}}{{end}}
</table>
{{else}}
<p class="note">{{.TrendNote}}</p>
{{end}}

<h2>Processing</h2>
<table>
<tr><th>Estimated rows</th><td>{{.Processing.EstimatedRows}}</td></tr>
<tr><th>Processed rows</th><td>{{.Processing.ProcessedRows}}</td></tr>
<tr><th>Chunks</th><td>{{.Processing.Chunks}}</td></tr>
<tr><th>Candidate months</th><td>{{.Processing.CandidateMonths}}</td></tr>
<tr><th>Validated months</th><td>{{.Processing.ValidatedMonths}}</td></tr>
{{if .Processing.ExcludedMonths}}<tr><th>Excluded months</th><td>{{range .Processing.ExcludedMonths}}{{.}} {{end}}</td></tr>{{end}}
</table>

</body>
</html>
`))
