package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/plant-waterer/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"seconds": func(d time.Duration) string {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Plant Waterer</title>
<style>
body { font-family: monospace; max-width: 700px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
.due { color: #b00; font-weight: bold; }
.ok { color: green; }
.error { color: red; font-weight: bold; }
.watering { color: #06c; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Plant Waterer</h1>

<h2>Controller</h2>
<table>
<tr><th>State</th><td class="{{if eq (printf "%s" .State) "ERROR"}}error{{else if eq (printf "%s" .State) "WATERING"}}watering{{else}}ok{{end}}">{{.State}}{{if .ActivePlant}}: {{.ActivePlant}}{{end}}</td></tr>
<tr><th>Plants due</th><td>{{range .Plants}}{{if .NeedsWater}}<span class="due">{{.Name}}</span> {{end}}{{end}}</td></tr>
</table>

<h2>Plants</h2>
<table>
<tr><th>Name</th><th>Pump</th><th>Status</th><th>Last watered</th><th>Duration</th><th>Dry interval</th></tr>
{{range .Plants}}
<tr>
<td>{{.Name}}</td>
<td>{{if .HasPump}}yes{{else}}hand{{end}}</td>
<td class="{{if .NeedsWater}}due{{else}}ok{{end}}">{{if .NeedsWater}}NEEDS WATER{{else}}ok{{end}}</td>
<td>{{.LastWateredAt.UTC.Format "2006-01-02 15:04"}}</td>
<td>{{if .HasPump}}{{seconds .LastWateredDuration}}{{end}}</td>
<td>{{.MaxDryInterval}}</td>
</tr>
{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Completed</th><td>{{.Counts.Completed}}</td></tr>
<tr><th>Stopped early</th><td>{{.Counts.Stopped}}</td></tr>
<tr><th>Hand watered</th><td>{{.Counts.HandWatered}}</td></tr>
<tr><th>Faults</th><td>{{.Counts.Faults}}</td></tr>
<tr><th>Resets</th><td>{{.Counts.Resets}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}} ({{.Config.Broker}})</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Dwell</th><td>{{.Config.DwellMs}}ms</td></tr>
<tr><th>Safety ceiling</th><td>{{.Config.SafetyCeilingMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> · <a href="/metrics">metrics</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Template errors render a partial page; status is best-effort.
	_ = indexTmpl.Execute(w, snap)
}
