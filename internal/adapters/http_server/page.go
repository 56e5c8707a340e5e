package httpserver

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"hotel_value/internal/adapters/export"
	"hotel_value/internal/analytics"
	"hotel_value/internal/domain"
)

//go:embed templates/dashboard.html
var templatesFS embed.FS

var pageTmpl = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"money": func(v any) string { return optional(v, export.Money) },
	"dec": func(v any, decimals int) string {
		return optional(v, func(f float64) string { return export.Decimal(f, decimals) })
	},
	"stars": func(p *int) string {
		if p == nil {
			return "unrated"
		}
		return strconv.Itoa(*p)
	},
	"name": func(h domain.NormalizedHotel) string {
		if h.Name != nil {
			return *h.Name
		}
		return h.ID
	},
	"inc": func(i int) int { return i + 1 },
}).ParseFS(templatesFS, "templates/dashboard.html"))

// optional formats float64 and *float64 values; a nil pointer prints as N/A.
func optional(v any, format func(float64) string) string {
	switch x := v.(type) {
	case float64:
		return format(x)
	case *float64:
		if x == nil {
			return "N/A"
		}
		return format(*x)
	default:
		return "N/A"
	}
}

type pageData struct {
	Run       domain.Run
	Summary   string
	Hotels    []domain.NormalizedHotel
	Dashboard analytics.Dashboard
}

func (h *Handlers) page(w http.ResponseWriter, r *http.Request) {
	n, ok := h.topN(w, r)
	if !ok {
		return
	}
	// one read of the latest run; the dashboard is built from the same hotels
	top, err := h.Q.TopHotels(r.Context(), n)
	if err != nil {
		writeQueryError(w, err)
		return
	}

	data := pageData{
		Run:       top.Run,
		Summary:   export.Summary(len(top.Hotels), top.Run.Eligible, top.Run.Excluded, top.Run.Duplicates),
		Hotels:    top.Hotels,
		Dashboard: analytics.Build(top.Hotels),
	}
	// render into a buffer so a template error still yields a clean 500
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		log.Error().Err(err).Msg("render dashboard failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Error().Err(err).Msg("failed to write dashboard page")
	}
}
