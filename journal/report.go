package journal

import (
	"io"
	"text/template"
	"time"

	"github.com/shopspring/decimal"
)

// SessionReport is the end-of-session summary written by the run command.
type SessionReport struct {
	SessionID    string
	Started      time.Time
	Ended        time.Time
	StartBalance decimal.Decimal
	EndBalance   decimal.Decimal
	Stats        Stats
	Trades       []TradeRecord
	Notes        []string
}

// ReturnPct is the change in balance as a percentage of the start balance.
func (r SessionReport) ReturnPct() decimal.Decimal {
	if !r.StartBalance.IsPositive() {
		return decimal.Zero
	}
	return r.EndBalance.Sub(r.StartBalance).Div(r.StartBalance).Mul(decimal.NewFromInt(100))
}

var reportFuncs = template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
	"money":  func(d decimal.Decimal) string { return d.StringFixed(2) },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var reportTmpl = template.Must(template.New("session").Funcs(reportFuncs).Parse(SessionOrgTemplate))

// WriteOrg renders the report as an Org-mode document.
func (r SessionReport) WriteOrg(w io.Writer) error {
	return reportTmpl.Execute(w, r)
}

const SessionOrgTemplate = `* PAPER SESSION: {{if .SessionID}}{{.SessionID}}{{else}}(session-id?){{end}}
:PROPERTIES:
:SESSION_ID:  {{.SessionID}}
:STARTED:     [{{(orTime .Started).Format "2006-01-02 Mon 15:04"}}]
:ENDED:       [{{(orTime .Ended).Format "2006-01-02 Mon 15:04"}}]
:START_BAL:   {{money .StartBalance}}
:END_BAL:     {{money .EndBalance}}
:NET_PL:      {{money .Stats.NetPL}}
:RETURN_PCT:  {{money .ReturnPct}}
:TRADES:      {{.Stats.Trades}}
:WINS:        {{.Stats.Wins}}
:LOSSES:      {{.Stats.Losses}}
:WIN_RATE:    {{printf "%.2f" (mul100 .Stats.WinRate)}}
:PROFIT_FAC:  {{if ne .Stats.ProfitFactor 0.0}}{{printf "%.2f" .Stats.ProfitFactor}}{{else}}(no losses){{end}}
:END:

** Performance Summary
- Net P/L:       *{{money .Stats.NetPL}}*
- Return:        *{{money .ReturnPct}}%*
- Win Rate:      *{{printf "%.2f" (mul100 .Stats.WinRate)}}%*
- Gross Profit:  *{{money .Stats.GrossProfit}}*
- Gross Loss:    *{{money .Stats.GrossLoss}}*

** Trades
| ID | Side | Size | Entry | Exit | P/L |
|----+------+------+-------+------+-----|
{{- range .Trades }}
| {{.TradeID}} | {{.Direction}} | {{money .Size}} | {{money .EntryPrice}} | {{money .ExitPrice}} | {{money .RealizedPL}} |
{{- end }}

{{- if .Notes }}

** Notes
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
