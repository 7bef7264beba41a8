package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"launch-dashboard/internal/charts"
	"launch-dashboard/internal/dashboard"
	"launch-dashboard/internal/launches"
	"launch-dashboard/internal/metrics"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// RegisterRoutes sets up the router with all endpoints.
func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.middleware)

		r.Get("/", s.IndexHandler)
		r.Post("/_dash/update", s.UpdateHandler)

		r.Get("/api/layout", s.LayoutHandler)
		r.Get("/api/sites", s.SitesHandler)
		r.Get("/api/charts/success-pie", s.PieSpecHandler)
		r.Get("/api/charts/payload-scatter", s.ScatterSpecHandler)

		r.Get("/charts/success-pie.{format}", s.PieImageHandler)
		r.Get("/charts/payload-scatter.{format}", s.ScatterImageHandler)
	})

	return r
}

// writeJSON encodes v before writing the status, so an encoding failure
// still yields a 500.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		s.logger.Error("encode json response", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// healthHandler provides health information.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":  "up",
		"records": s.store.Len(),
		"sites":   len(s.store.DistinctSites()),
	}
	if s.db != nil {
		dbHealth := s.db.Health()
		resp["database"] = dbHealth
		if dbHealth["status"] != "up" {
			resp["status"] = "degraded"
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// IndexHandler renders the dashboard page with the default figures.
func (s *Server) IndexHandler(w http.ResponseWriter, r *http.Request) {
	pie, err := s.pieFigure(s.layout.Dropdown.Value)
	if err != nil {
		s.logger.Error("render initial pie chart", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	scatter, err := s.scatterFigure(s.layout.Dropdown.Value, s.defaultRange())
	if err != nil {
		s.logger.Error("render initial scatter chart", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := struct {
		Layout        dashboard.Layout
		PieOutput     string
		ScatterOutput string
		PieSVG        template.HTML
		ScatterSVG    template.HTML
	}{
		Layout:        s.layout,
		PieOutput:     dashboard.PieOutput,
		ScatterOutput: dashboard.ScatterOutput,
		// go-chart output, not user input
		PieSVG:     template.HTML(pie.SVG),
		ScatterSVG: template.HTML(scatter.SVG),
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("execute index template", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

const unknownOutputLabel = "unknown"

type updateRequest struct {
	Output string                 `json:"output"`
	Inputs []dashboard.InputValue `json:"inputs"`
}

type updateResponse struct {
	Output string      `json:"output"`
	Figure interface{} `json:"figure"`
}

// UpdateHandler runs the callback bound to the requested output.
func (s *Server) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Debug("invalid update request", zap.Error(err))
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	figure, err := s.registry.Dispatch(req.Output, req.Inputs)

	// Only registered outputs become label values.
	label := req.Output
	if errors.Is(err, dashboard.ErrUnknownOutput) {
		label = unknownOutputLabel
	}
	metrics.CallbackInvocations.WithLabelValues(label).Inc()
	if err != nil {
		metrics.CallbackErrors.WithLabelValues(label).Inc()
		switch {
		case errors.Is(err, dashboard.ErrUnknownOutput):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, dashboard.ErrMissingInput), errors.Is(err, errBadInput):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			s.logger.Error("callback failed", zap.String("output", req.Output), zap.Error(err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	s.writeJSON(w, http.StatusOK, updateResponse{Output: req.Output, Figure: figure})
}

// LayoutHandler returns the controls and the registered callbacks.
func (s *Server) LayoutHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, struct {
		dashboard.Layout
		Callbacks []dashboard.Binding `json:"callbacks"`
	}{s.layout, s.registry.Outputs()})
}

func (s *Server) SitesHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.DistinctSites())
}

func (s *Server) PieSpecHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, charts.SuccessPie(s.store, siteParam(r)))
}

func (s *Server) ScatterSpecHandler(w http.ResponseWriter, r *http.Request) {
	rng, err := s.rangeParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusOK, charts.PayloadScatter(s.store, siteParam(r), rng, s.boundary))
}

func (s *Server) PieImageHandler(w http.ResponseWriter, r *http.Request) {
	format, err := charts.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	spec := charts.SuccessPie(s.store, siteParam(r))
	var buf bytes.Buffer
	if err := charts.RenderPie(&buf, spec, format); err != nil {
		s.logger.Error("render pie chart", zap.String("site", spec.Site), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.writeImage(w, "success-pie", format, buf.Bytes())
}

func (s *Server) ScatterImageHandler(w http.ResponseWriter, r *http.Request) {
	format, err := charts.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	rng, err := s.rangeParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	spec := charts.PayloadScatter(s.store, siteParam(r), rng, s.boundary)
	var buf bytes.Buffer
	if err := charts.RenderScatter(&buf, spec, format); err != nil {
		s.logger.Error("render scatter chart", zap.String("site", spec.Site), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.writeImage(w, "payload-scatter", format, buf.Bytes())
}

func (s *Server) writeImage(w http.ResponseWriter, name string, format charts.Format, body []byte) {
	metrics.ChartRenders.WithLabelValues(name, string(format)).Inc()
	w.Header().Set("Content-Type", format.ContentType())
	w.Write(body)
}

func siteParam(r *http.Request) string {
	if site := r.URL.Query().Get("site"); site != "" {
		return site
	}
	return launches.AllSites
}

// rangeParams reads low and high, defaulting each to the payload bounds.
func (s *Server) rangeParams(r *http.Request) (charts.PayloadRange, error) {
	rng := s.defaultRange()
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *float64
	}{{"low", &rng.Low}, {"high", &rng.High}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return charts.PayloadRange{}, errors.New("invalid " + p.name + " payload value")
		}
		*p.dst = f
	}
	return rng, nil
}
