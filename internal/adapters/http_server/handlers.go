package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"hotel_value/internal/app"
	"hotel_value/internal/domain"
)

// MaxTopN bounds the n query parameter.
const MaxTopN = 100

// Queries is the read side the handlers need.
type Queries interface {
	TopHotels(ctx context.Context, n int) (app.TopHotels, error)
	Dashboard(ctx context.Context, n int) (app.DashboardView, error)
}

type Handlers struct {
	Q        Queries
	DefaultN int
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/hotels/top", h.topHotels)
	s.mux.Get("/v1/dashboard", h.dashboard)
	s.mux.Get("/", h.page)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeQueryError maps a query failure to a problem response.
func writeQueryError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "no analysis run has been stored yet")
		return
	}
	log.Error().Err(err).Msg("query failed")
	writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
}

// topN reads ?n=, falling back to the configured default.
func (h *Handlers) topN(w http.ResponseWriter, r *http.Request) (int, bool) {
	n := h.DefaultN
	if n <= 0 || n > MaxTopN {
		n = 10
	}
	if s := r.URL.Query().Get("n"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > MaxTopN {
			writeProblem(w, http.StatusBadRequest, "Invalid n", "n must be an integer between 1 and 100")
			return 0, false
		}
		n = v
	}
	return n, true
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return "", nil, err
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body, nil
}

// writeTagged writes v as JSON with a weak ETag, or 304 when the client already has it.
func writeTagged(w http.ResponseWriter, r *http.Request, v any) {
	etag, body, err := calcETagAndBody(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal response")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func (h *Handlers) topHotels(w http.ResponseWriter, r *http.Request) {
	n, ok := h.topN(w, r)
	if !ok {
		return
	}
	out, err := h.Q.TopHotels(r.Context(), n)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeTagged(w, r, out)
}

func (h *Handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	n, ok := h.topN(w, r)
	if !ok {
		return
	}
	out, err := h.Q.Dashboard(r.Context(), n)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeTagged(w, r, out)
}
