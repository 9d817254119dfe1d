package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"pos-analytics/internal/models"
	"pos-analytics/internal/services"
	"github.com/starfederation/datastar-go/datastar"
)

const maxTableRows = 50

var abcTableTemplate = template.Must(template.New("abcTable").Parse(`
<div id="inventory-content">
<table class="modern-table">
<thead><tr><th>Class</th><th>Product</th><th>Revenue</th><th>Share</th></tr></thead>
<tbody>
{{range $i, $item := .Rows}}{{if lt $i $.MaxRows}}<tr>
<td><span class="class-badge class-{{.Class}}">{{.Class}}</span></td>
<td>{{.Name}}</td>
<td><strong>${{printf "%.2f" .Revenue}}</strong></td>
<td>{{printf "%.1f" .RevenueShare}}%</td>
</tr>{{end}}{{end}}
</tbody>
</table>
</div>`))

type SSEHandlers struct {
	engine *services.Engine
	logger *slog.Logger
}

func NewSSEHandlers(engine *services.Engine, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		engine: engine,
		logger: logger,
	}
}

type abcTableData struct {
	Rows    []models.ABCEntry
	MaxRows int
}

func (h *SSEHandlers) renderABCTable(c models.ABCClassification) (string, error) {
	rows := make([]models.ABCEntry, 0, len(c.A)+len(c.B)+len(c.C))
	rows = append(rows, c.A...)
	rows = append(rows, c.B...)
	rows = append(rows, c.C...)
	if len(rows) > maxTableRows {
		rows = rows[:maxTableRows]
	}

	var buf strings.Builder
	err := abcTableTemplate.Execute(&buf, abcTableData{Rows: rows, MaxRows: maxTableRows})
	return buf.String(), err
}

// HandleDashboard pushes one full dashboard snapshot to the connected client:
// chart data as datastar signals plus a rendered HTML fragment for the ABC
// table.
func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	snapshot, err := h.engine.Dashboard(r.Context(), r.PathValue("company"))
	if err != nil {
		h.logger.Error("dashboard snapshot", "error", err)
		return
	}

	html, err := h.renderABCTable(snapshot.Inventory)
	if err != nil {
		h.logger.Error("render abc table", "error", err)
		return
	}
	sse.PatchElements(html)

	signals, err := json.Marshal(map[string]any{
		"trendData":    snapshot.Trend,
		"forecastData": snapshot.Forecast,
		"segmentData":  snapshot.Segments,
		"profitData":   snapshot.Profit,
		"generatedAt":  snapshot.GeneratedAt,
	})
	if err != nil {
		h.logger.Error("marshal dashboard signals", "error", err)
		return
	}
	sse.PatchSignals(signals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
