package report

// PageTemplate is the HTML template of the dashboard page. The
// "dashboard" block is also rendered alone as the live-update fragment.
const PageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}{{if .Symbol}} · {{.Symbol}}{{end}}</title>
<link rel="stylesheet" href="{{.StaticURL}}/style.css">
</head>
<body>
<main id="app"{{if .LiveURL}} data-live="{{.LiveURL}}"{{end}}>
{{template "dashboard" .}}
</main>
{{if .LiveURL}}<script src="{{.StaticURL}}/app.js" defer></script>{{end}}
</body>
</html>
{{define "dashboard"}}
<h1>{{.Title}}</h1>

<form class="symbol-form" method="get" action="/" data-action="symbol">
  <label for="symbol">{{.SymbolPrompt}}</label>
  <input id="symbol" name="symbol" type="text" value="{{.Symbol}}" autocomplete="off" spellcheck="false">
  <input type="hidden" name="period" value="{{.Period}}">
</form>

{{if not .Empty}}
<section class="company">
  <h2>{{.Company.Header}}</h2>
  {{with .Company.Error}}<div class="banner">{{.}}</div>{{end}}
  <div class="identity">
    {{with .Company.LogoURL}}<img class="logo" src="{{.}}" alt="logo" width="64" height="64">{{end}}
    <h3>{{.Company.Name}}</h3>
  </div>

  <h3>{{.HeaderSummary}}</h3>
  <p class="summary">{{.Company.Summary}}</p>
  {{with .Company.SummaryButton}}
  <form method="post" action="/summary/toggle" data-action="toggle_summary">
    <button type="submit" class="link">{{.}}</button>
  </form>
  {{end}}

  <h3>{{.HeaderMetrics}}</h3>
  <div class="columns">
    {{range .Columns}}<div class="column">{{range .}}<div class="metric">{{.}}</div>{{end}}</div>{{end}}
  </div>

  <h3>{{.HeaderInsights}}</h3>
  {{range .Insights}}
  <div class="metric">{{.Line}}{{with .Caption}}<p class="caption">{{.}}</p>{{end}}</div>
  {{end}}
</section>

<section class="chart">
  <h2>{{.Price.Header}}</h2>
  {{if .Price.Error}}<div class="banner">{{.Price.Error}}</div>{{else}}{{.PriceSVG}}{{end}}
</section>

<section class="chart">
  <h2>{{.Volume.Header}}</h2>
  {{if .Volume.Error}}<div class="banner">{{.Volume.Error}}</div>{{else}}{{.VolumeSVG}}{{end}}
</section>

<section class="chart">
  <h2>{{.MarketCap.Header}}</h2>
  {{if .MarketCap.Error}}<div class="banner">{{.MarketCap.Error}}</div>
  {{else if .MarketCap.Fallback}}<p class="fallback">{{.MarketCap.Fallback}}</p>
  {{else}}{{.MarketCapSVG}}{{end}}
</section>

<section class="chart financials">
  <h2>{{.Financials.Header}}</h2>
  <form class="segmented" method="get" action="/" data-action="period">
    <span class="label">{{.PeriodLabel}}</span>
    <input type="hidden" name="symbol" value="{{.Symbol}}">
    {{range .Periods}}<button type="submit" name="period" value="{{.}}"{{if eq . $.Period}} class="active" aria-pressed="true"{{end}}>{{.}}</button>{{end}}
  </form>
  {{if .Financials.Error}}<div class="banner">{{.Financials.Error}}</div>
  {{else}}{{.RevenueSVG}}{{.NetIncomeSVG}}{{end}}
</section>

{{with .Headlines}}
<section class="headlines">
  <h2>{{.Header}}</h2>
  {{if .Error}}<div class="banner">{{.Error}}</div>
  {{else}}<ul>{{range .Articles}}<li><a href="{{.URL}}" rel="noopener" target="_blank">{{.Title}}</a>{{with .Source}} <span class="muted">{{.}}</span>{{end}}</li>{{else}}<li class="muted">No recent headlines.</li>{{end}}</ul>{{end}}
</section>
{{end}}
{{end}}

<footer class="muted">Rendered {{.RenderedAt.Format "02 Jan 2006 15:04 MST"}}</footer>
{{end}}
`
