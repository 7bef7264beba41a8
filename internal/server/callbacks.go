package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"launch-dashboard/internal/charts"
	"launch-dashboard/internal/dashboard"
	"launch-dashboard/internal/launches"
)

var errBadInput = errors.New("bad input value")

var (
	siteInput   = dashboard.Input{ID: dashboard.SiteDropdownID, Property: dashboard.ValueProperty}
	sliderInput = dashboard.Input{ID: dashboard.PayloadSliderID, Property: dashboard.ValueProperty}
)

// Figure is a callback result: the chart specification plus its SVG.
type Figure struct {
	Spec interface{} `json:"spec"`
	SVG  string      `json:"svg"`
}

func (s *Server) registerCallbacks(host dashboard.Host) error {
	if err := host.Register([]dashboard.Input{siteInput}, dashboard.PieOutput, s.pieCallback); err != nil {
		return err
	}
	return host.Register([]dashboard.Input{siteInput, sliderInput}, dashboard.ScatterOutput, s.scatterCallback)
}

func (s *Server) pieCallback(values []json.RawMessage) (interface{}, error) {
	site, err := decodeSite(values[0])
	if err != nil {
		return nil, err
	}
	return s.pieFigure(site)
}

func (s *Server) scatterCallback(values []json.RawMessage) (interface{}, error) {
	site, err := decodeSite(values[0])
	if err != nil {
		return nil, err
	}
	rng, err := decodeRange(values[1])
	if err != nil {
		return nil, err
	}
	return s.scatterFigure(site, rng)
}

func (s *Server) pieFigure(site string) (Figure, error) {
	spec := charts.SuccessPie(s.store, site)
	var buf bytes.Buffer
	if err := charts.RenderPie(&buf, spec, charts.FormatSVG); err != nil {
		return Figure{}, err
	}
	return Figure{Spec: spec, SVG: buf.String()}, nil
}

func (s *Server) scatterFigure(site string, rng charts.PayloadRange) (Figure, error) {
	spec := charts.PayloadScatter(s.store, site, rng, s.boundary)
	var buf bytes.Buffer
	if err := charts.RenderScatter(&buf, spec, charts.FormatSVG); err != nil {
		return Figure{}, err
	}
	return Figure{Spec: spec, SVG: buf.String()}, nil
}

// defaultRange is the slider's initial position.
func (s *Server) defaultRange() charts.PayloadRange {
	min, max := s.store.PayloadBounds()
	return charts.PayloadRange{Low: min, High: max}
}

// A null or empty site means the dropdown was cleared; treat it as ALL.
func decodeSite(raw json.RawMessage) (string, error) {
	var site *string
	if err := json.Unmarshal(raw, &site); err != nil {
		return "", fmt.Errorf("%w: site: %v", errBadInput, err)
	}
	if site == nil || *site == "" {
		return launches.AllSites, nil
	}
	return *site, nil
}

func decodeRange(raw json.RawMessage) (charts.PayloadRange, error) {
	var pair []float64
	if err := json.Unmarshal(raw, &pair); err != nil {
		return charts.PayloadRange{}, fmt.Errorf("%w: payload range: %v", errBadInput, err)
	}
	if len(pair) != 2 {
		return charts.PayloadRange{}, fmt.Errorf("%w: payload range needs 2 values, got %d", errBadInput, len(pair))
	}
	for _, v := range pair {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return charts.PayloadRange{}, fmt.Errorf("%w: payload range value %v is not finite", errBadInput, v)
		}
	}
	return charts.PayloadRange{Low: pair[0], High: pair[1]}, nil
}
