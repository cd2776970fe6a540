package report

import (
	"fmt"
	"html/template"
	"io"
	"strings"
)

const htmlTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Load Test Report - {{.Scenario}}</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background: #f5f7fa;
            color: #333;
            padding: 20px;
            line-height: 1.6;
        }
        .container {
            max-width: 1200px;
            margin: 0 auto;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 8px rgba(0, 0, 0, 0.1);
            overflow: hidden;
        }
        .header {
            background: linear-gradient(135deg, #1a936f 0%, #114b5f 100%);
            color: white;
            padding: 40px;
        }
        .header.failed {
            background: linear-gradient(135deg, #d64545 0%, #7a1f1f 100%);
        }
        .header h1 {
            font-size: 2.4em;
            margin-bottom: 12px;
        }
        .header .meta {
            opacity: 0.95;
            font-size: 1.05em;
        }
        .verdict {
            display: inline-block;
            margin-top: 15px;
            padding: 8px 22px;
            border-radius: 20px;
            font-weight: 700;
            letter-spacing: 1px;
            background: rgba(255, 255, 255, 0.18);
        }
        .summary {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(220px, 1fr));
            gap: 20px;
            padding: 35px;
            background: linear-gradient(to bottom, #f8f9fa 0%, #fff 100%);
        }
        .summary-card {
            background: white;
            padding: 24px;
            border-radius: 12px;
            border: 2px solid #e8eaed;
            box-shadow: 0 4px 12px rgba(0, 0, 0, 0.05);
        }
        .summary-card h3 {
            color: #5f6368;
            font-size: 0.85em;
            text-transform: uppercase;
            letter-spacing: 1px;
            margin-bottom: 8px;
        }
        .summary-card .value {
            font-size: 2em;
            font-weight: 700;
            color: #202124;
        }
        .section {
            padding: 30px 35px;
        }
        .section h2 {
            color: #202124;
            margin-bottom: 18px;
            font-size: 1.4em;
        }
        table {
            width: 100%;
            border-collapse: collapse;
        }
        th {
            background: #f1f3f4;
            text-align: left;
            padding: 10px 14px;
            font-size: 0.85em;
            text-transform: uppercase;
            letter-spacing: 0.5px;
            color: #5f6368;
            border-bottom: 2px solid #dadce0;
        }
        td {
            padding: 10px 14px;
            border-bottom: 1px solid #e8eaed;
        }
        tr:hover td {
            background: #f8f9fa;
        }
        .violation-row td {
            background: #fce8e6;
            color: #a50e0e;
        }
        .pattern-badge {
            display: inline-block;
            padding: 2px 10px;
            border-radius: 12px;
            font-size: 0.8em;
            background: #e8f0fe;
            color: #1a73e8;
        }
        .footer {
            background: #114b5f;
            color: white;
            padding: 20px 35px;
            font-size: 0.9em;
        }
    </style>
</head>
<body>
    <div class="container">
        <!-- Header -->
        <div class="header{{if not .Passed}} failed{{end}}">
            <h1>Load Test Report</h1>
            <div class="meta">
                <p><strong>Scenario:</strong> {{.Scenario}} | <strong>Profile:</strong> {{.Profile}} | <strong>Target:</strong> {{.BaseURL}}</p>
                <p><strong>Shape:</strong> {{.ShapeName}} (peak {{.PeakUsers}} users) | <strong>Started:</strong> {{.StartedAt.Format "January 2, 2006 15:04:05 MST"}}</p>
                <p><strong>Run ID:</strong> {{.RunID}}</p>
            </div>
            <div class="verdict">{{if .Passed}}PASSED{{else}}FAILED: {{len .Violations}} violation(s){{end}}</div>
        </div>

        <!-- Summary -->
        <div class="summary">
            <div class="summary-card">
                <h3>Total Requests</h3>
                <div class="value">{{.TotalRequests}}</div>
            </div>
            <div class="summary-card">
                <h3>Failures</h3>
                <div class="value">{{.TotalFailures}}</div>
            </div>
            <div class="summary-card">
                <h3>Error Rate</h3>
                <div class="value">{{printf "%.2f" .ErrorRatePct}}%</div>
            </div>
            <div class="summary-card">
                <h3>Throughput</h3>
                <div class="value">{{printf "%.1f" .TotalRPS}} rps</div>
            </div>
        </div>

        <!-- Violations -->
        {{if .Violations}}
        <div class="section">
            <h2>Threshold Violations</h2>
            <table>
                <thead>
                    <tr>
                        <th>Endpoint</th>
                        <th>Metric</th>
                        <th>Observed</th>
                        <th>Limit</th>
                    </tr>
                </thead>
                <tbody>
                    {{range .Violations}}
                    <tr class="violation-row">
                        <td><strong>{{.Endpoint}}</strong></td>
                        <td>{{.Metric}}</td>
                        <td>{{printf "%.2f" .Observed}}</td>
                        <td>{{printf "%.2f" .Limit}}</td>
                    </tr>
                    {{end}}
                </tbody>
            </table>
        </div>
        {{end}}

        <!-- Endpoint Table -->
        <div class="section">
            <h2>Endpoint Results</h2>
            <table>
                <thead>
                    <tr>
                        <th>Endpoint</th>
                        <th>Requests</th>
                        <th>Failures</th>
                        <th>Avg</th>
                        <th>P50</th>
                        <th>P95</th>
                        <th>P99</th>
                        <th>Max</th>
                        <th>RPS</th>
                        <th>Pattern</th>
                    </tr>
                </thead>
                <tbody>
                    {{range .Endpoints}}
                    <tr>
                        <td><strong>{{.Endpoint}}</strong></td>
                        <td>{{.Requests}}</td>
                        <td>{{.Failures}}</td>
                        <td>{{printf "%.1f" .AvgMs}}ms</td>
                        <td>{{printf "%.1f" .P50Ms}}ms</td>
                        <td>{{printf "%.1f" .P95Ms}}ms</td>
                        <td>{{printf "%.1f" .P99Ms}}ms</td>
                        <td>{{printf "%.1f" .MaxMs}}ms</td>
                        <td>{{printf "%.2f" .RPS}}</td>
                        <td>{{if .Pattern}}<span class="pattern-badge">{{.Pattern}}</span>{{end}}</td>
                    </tr>
                    {{end}}
                </tbody>
            </table>
        </div>

        <!-- Pod usage -->
        {{if .PodSummaries}}
        <div class="section">
            <h2>Pod Usage During Run</h2>
            <table>
                <thead>
                    <tr>
                        <th>Pod</th>
                        <th>Samples</th>
                        <th>CPU Max</th>
                        <th>CPU Avg</th>
                        <th>Memory Max</th>
                        <th>Restarts</th>
                    </tr>
                </thead>
                <tbody>
                    {{range .PodSummaries}}
                    <tr>
                        <td><strong>{{.Pod}}</strong></td>
                        <td>{{.Samples}}</td>
                        <td>{{.MaxCPUMilli}}m</td>
                        <td>{{printf "%.0f" .AvgCPUMilli}}m</td>
                        <td>{{div .MaxMemoryBytes 1048576}}Mi</td>
                        <td>{{.Restarts}}</td>
                    </tr>
                    {{end}}
                </tbody>
            </table>
        </div>
        {{end}}

        <!-- Footer -->
        <div class="footer">
            <p>Generated by <strong>http-load-runner</strong> at {{.GeneratedAt.Format "2006-01-02 15:04:05"}}</p>
        </div>
    </div>
</body>
</html>
`

// GenerateHTML creates an HTML report
func GenerateHTML(report *Report, writer io.Writer) error {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"lower": func(s interface{}) string {
			return strings.ToLower(fmt.Sprintf("%v", s))
		},
		"div": func(a, b int64) int64 { return a / b },
	}).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	if err := tmpl.Execute(writer, report); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return nil
}
