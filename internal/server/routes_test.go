package server

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"launch-dashboard/internal/charts"
	"launch-dashboard/internal/config"
	"launch-dashboard/internal/launches"
	"launch-dashboard/internal/models"
)

// MockDatabase is a mock implementation of the database.Service interface
type MockDatabase struct {
	mock.Mock
}

func (m *MockDatabase) Health() map[string]string {
	args := m.Called()
	return args.Get(0).(map[string]string)
}

func (m *MockDatabase) Close() error {
	return nil
}

func (m *MockDatabase) Migrate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDatabase) GetAllLaunchRecords() ([]models.LaunchRecord, error) {
	args := m.Called()
	return args.Get(0).([]models.LaunchRecord), args.Error(1)
}

func (m *MockDatabase) InsertLaunchRecords(records []models.LaunchRecord) error {
	args := m.Called(records)
	return args.Error(0)
}

var testRecords = []models.LaunchRecord{
	{FlightNumber: 1, LaunchSite: "A", Class: 1, PayloadMassKg: 3000, BoosterVersionCategory: "v1.1"},
	{FlightNumber: 2, LaunchSite: "A", Class: 0, PayloadMassKg: 7000, BoosterVersionCategory: "FT"},
	{FlightNumber: 3, LaunchSite: "B", Class: 1, PayloadMassKg: 5000, BoosterVersionCategory: "FT"},
}

func testConfig() config.Config {
	return config.Config{
		Port:            8050,
		Title:           "Test Dashboard",
		DataSource:      config.SourceCSV,
		PayloadBoundary: "open",
		RateLimitRPS:    1000,
		RateLimitBurst:  1000,
	}
}

func newTestServer(t *testing.T, cfg config.Config) *Server {
	t.Helper()
	rs, err := launches.New(testRecords)
	require.NoError(t, err)
	s, err := newServer(cfg, rs, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	return s
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func flightNumbers(points []charts.Point) []int {
	out := make([]int, 0, len(points))
	for _, p := range points {
		out = append(out, p.FlightNumber)
	}
	return out
}

func TestNewServer_InvalidBoundary(t *testing.T) {
	rs, err := launches.New(testRecords)
	require.NoError(t, err)

	cfg := testConfig()
	cfg.PayloadBoundary = "half"
	_, err = NewServer(cfg, rs, nil, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "PAYLOAD_BOUNDARY")
}

func TestWriteJSON_EncodeError(t *testing.T) {
	s := newTestServer(t, testConfig())
	core, logs := observer.New(zap.ErrorLevel)
	s.logger = zap.New(core)

	rr := httptest.NewRecorder()
	s.writeJSON(rr, http.StatusOK, map[string]float64{"payload": math.Inf(1)})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotEqual(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, 1, logs.FilterMessage("encode json response").Len())
}

func TestHealthHandler(t *testing.T) {
	s := newTestServer(t, testConfig())

	rr := do(t, s.RegisterRoutes(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "up", body["status"])
	assert.Equal(t, 3.0, body["records"])
	assert.Equal(t, 2.0, body["sites"])
	assert.NotContains(t, body, "database")
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	s := newTestServer(t, testConfig())
	db := new(MockDatabase)
	db.On("Health").Return(map[string]string{"status": "down", "error": "db down"})
	s.db = db

	rr := httptest.NewRecorder()
	http.HandlerFunc(s.healthHandler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	db.AssertExpectations(t)
}

func TestIndexHandler(t *testing.T) {
	s := newTestServer(t, testConfig())

	rr := do(t, s.RegisterRoutes(), http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))

	page := rr.Body.String()
	assert.Contains(t, page, "<h1>Test Dashboard</h1>")
	assert.Contains(t, page, `<option value="ALL" selected>All Sites</option>`)
	assert.Contains(t, page, `<option value="B">B</option>`)
	assert.Contains(t, page, `id="success-pie-chart"`)
	assert.Contains(t, page, `id="success-payload-scatter-chart"`)
	assert.Contains(t, page, "<svg")
	assert.Contains(t, page, `id="payload-high" min="3000" max="7000" step="500" value="7000"`)
}

func TestIndexHandler_SliderHandlesDoNotCross(t *testing.T) {
	s := newTestServer(t, testConfig())

	rr := do(t, s.RegisterRoutes(), http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rr.Code)

	// Each handle is stopped at the other and its input moved back, so the
	// inputs never drive the opposite end of the range.
	page := rr.Body.String()
	assert.Contains(t, page, "end === 0 && v > range[1]")
	assert.Contains(t, page, "end === 1 && v < range[0]")
	assert.Contains(t, page, "input.value = v;")
	assert.NotContains(t, page, "range.reverse()")
}

func TestIndexHandler_SliderHandleReachesMax(t *testing.T) {
	rs, err := launches.New([]models.LaunchRecord{
		{FlightNumber: 1, LaunchSite: "A", Class: 1, PayloadMassKg: 0},
		{FlightNumber: 2, LaunchSite: "A", Class: 1, PayloadMassKg: 9600},
	})
	require.NoError(t, err)
	s, err := newServer(testConfig(), rs, nil, zaptest.NewLogger(t))
	require.NoError(t, err)

	rr := do(t, s.RegisterRoutes(), http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rr.Code)
	// 9600 is not a step from 0; the handle goes to 10000 and the page
	// clamps the selection back to 9600.
	assert.Contains(t, rr.Body.String(), `id="payload-high" min="0" max="10000" step="500" value="9600"`)
}

func TestUpdateHandler_Pie(t *testing.T) {
	s := newTestServer(t, testConfig())

	body := `{"output":"success-pie-chart.figure","inputs":[{"id":"site-dropdown","property":"value","value":"A"}]}`
	rr := do(t, s.RegisterRoutes(), http.MethodPost, "/_dash/update", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Output string `json:"output"`
		Figure struct {
			Spec charts.PieSpec `json:"spec"`
			SVG  string         `json:"svg"`
		} `json:"figure"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "success-pie-chart.figure", resp.Output)
	assert.Equal(t, "Total Success Launches for Site A", resp.Figure.Spec.Title)
	assert.Equal(t, []charts.Slice{{Label: "Failure", Value: 1}, {Label: "Success", Value: 1}}, resp.Figure.Spec.Slices)
	assert.Contains(t, resp.Figure.SVG, "<svg")
}

func TestUpdateHandler_Scatter(t *testing.T) {
	s := newTestServer(t, testConfig())

	body := `{"output":"success-payload-scatter-chart.figure","inputs":[
		{"id":"payload-slider","property":"value","value":[4000,10000]},
		{"id":"site-dropdown","property":"value","value":"ALL"}]}`
	rr := do(t, s.RegisterRoutes(), http.MethodPost, "/_dash/update", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Figure struct {
			Spec charts.ScatterSpec `json:"spec"`
		} `json:"figure"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []int{2, 3}, flightNumbers(resp.Figure.Spec.Points))
	assert.Equal(t, "Correlation between Payload and Success for ALL Sites", resp.Figure.Spec.Title)
}

func TestUpdateHandler_Errors(t *testing.T) {
	s := newTestServer(t, testConfig())
	h := s.RegisterRoutes()

	cases := []struct {
		name string
		body string
		code int
	}{
		{"malformed json", `{"output":`, http.StatusBadRequest},
		{"unknown output", `{"output":"nope.figure","inputs":[]}`, http.StatusNotFound},
		{"missing input", `{"output":"success-payload-scatter-chart.figure","inputs":[{"id":"site-dropdown","property":"value","value":"ALL"}]}`, http.StatusBadRequest},
		{"bad site type", `{"output":"success-pie-chart.figure","inputs":[{"id":"site-dropdown","property":"value","value":42}]}`, http.StatusBadRequest},
		{"bad range", `{"output":"success-payload-scatter-chart.figure","inputs":[{"id":"site-dropdown","property":"value","value":"ALL"},{"id":"payload-slider","property":"value","value":[1]}]}`, http.StatusBadRequest},
		{"range overflow", `{"output":"success-payload-scatter-chart.figure","inputs":[{"id":"site-dropdown","property":"value","value":"ALL"},{"id":"payload-slider","property":"value","value":[0,1e400]}]}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/_dash/update", tc.body)
			assert.Equal(t, tc.code, rr.Code)
		})
	}
}

func TestUpdateHandler_NullSiteMeansAll(t *testing.T) {
	s := newTestServer(t, testConfig())

	body := `{"output":"success-pie-chart.figure","inputs":[{"id":"site-dropdown","property":"value","value":null}]}`
	rr := do(t, s.RegisterRoutes(), http.MethodPost, "/_dash/update", body)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Total Success Launches by Site")
}

func TestLayoutHandler(t *testing.T) {
	s := newTestServer(t, testConfig())

	rr := do(t, s.RegisterRoutes(), http.MethodGet, "/api/layout", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Title  string `json:"title"`
		Slider struct {
			Min  float64 `json:"min"`
			Max  float64 `json:"max"`
			Step float64 `json:"step"`
		} `json:"slider"`
		Callbacks []struct {
			Output string `json:"output"`
		} `json:"callbacks"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Test Dashboard", body.Title)
	assert.Equal(t, 3000.0, body.Slider.Min)
	assert.Equal(t, 7000.0, body.Slider.Max)
	assert.Equal(t, 500.0, body.Slider.Step)
	require.Len(t, body.Callbacks, 2)
	assert.Equal(t, "success-payload-scatter-chart.figure", body.Callbacks[0].Output)
	assert.Equal(t, "success-pie-chart.figure", body.Callbacks[1].Output)
}

func TestSitesHandler(t *testing.T) {
	s := newTestServer(t, testConfig())

	rr := do(t, s.RegisterRoutes(), http.MethodGet, "/api/sites", "")
	assert.JSONEq(t, `["A","B"]`, rr.Body.String())
}

func TestPieSpecHandler(t *testing.T) {
	s := newTestServer(t, testConfig())

	rr := do(t, s.RegisterRoutes(), http.MethodGet, "/api/charts/success-pie", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var spec charts.PieSpec
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &spec))
	assert.Equal(t, "ALL", spec.Site)
	assert.Equal(t, []charts.Slice{{Label: "A", Value: 1}, {Label: "B", Value: 1}}, spec.Slices)
}

func TestScatterSpecHandler_DefaultRangeUsesBoundary(t *testing.T) {
	open := newTestServer(t, testConfig())

	closedCfg := testConfig()
	closedCfg.PayloadBoundary = "closed"
	closed := newTestServer(t, closedCfg)

	var spec charts.ScatterSpec

	rr := do(t, open.RegisterRoutes(), http.MethodGet, "/api/charts/payload-scatter", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &spec))
	assert.Equal(t, charts.PayloadRange{Low: 3000, High: 7000}, spec.Range)
	assert.Equal(t, []int{3}, flightNumbers(spec.Points))

	rr = do(t, closed.RegisterRoutes(), http.MethodGet, "/api/charts/payload-scatter", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &spec))
	assert.Equal(t, []int{1, 2, 3}, flightNumbers(spec.Points))
}

func TestScatterSpecHandler_Params(t *testing.T) {
	s := newTestServer(t, testConfig())
	h := s.RegisterRoutes()

	rr := do(t, h, http.MethodGet, "/api/charts/payload-scatter?site=A&low=0&high=10000", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var spec charts.ScatterSpec
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &spec))
	assert.Equal(t, []int{1, 2}, flightNumbers(spec.Points))

	for _, q := range []string{"low=heavy", "low=NaN", "high=Inf", "high=-Inf", "low=1e400"} {
		rr = do(t, h, http.MethodGet, "/api/charts/payload-scatter?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, q)
		assert.NotContains(t, rr.Header().Get("Content-Type"), "application/json", q)
	}
}

func TestDecodeRange_RejectsNonFinite(t *testing.T) {
	_, err := decodeRange(json.RawMessage(`[0, 1e400]`))
	assert.ErrorIs(t, err, errBadInput)

	rng, err := decodeRange(json.RawMessage(`[-1e308, 1e308]`))
	require.NoError(t, err)
	assert.Equal(t, charts.PayloadRange{Low: -1e308, High: 1e308}, rng)
}

func TestImageHandlers(t *testing.T) {
	s := newTestServer(t, testConfig())
	h := s.RegisterRoutes()

	rr := do(t, h, http.MethodGet, "/charts/success-pie.svg?site=B", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/svg+xml", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "<svg")

	rr = do(t, h, http.MethodGet, "/charts/payload-scatter.png?low=0&high=10000", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("\x89PNG")))

	rr = do(t, h, http.MethodGet, "/charts/success-pie.gif", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodGet, "/charts/payload-scatter.svg?high=x", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodGet, "/charts/payload-scatter.svg?low=NaN", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodGet, "/charts/payload-scatter.svg?high=Inf", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodGet, "/charts/payload-scatter.svg?low=-1e308&high=1e308", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "<svg")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, testConfig())
	h := s.RegisterRoutes()

	do(t, h, http.MethodPost, "/_dash/update", `{"output":"success-pie-chart.figure","inputs":[{"id":"site-dropdown","property":"value","value":"ALL"}]}`)

	rr := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "launch_dashboard_records_loaded 3")
	assert.Contains(t, rr.Body.String(), `launch_dashboard_callback_invocations_total{output="success-pie-chart.figure"}`)
}

func TestMetricsEndpoint_UnknownOutputsShareLabel(t *testing.T) {
	s := newTestServer(t, testConfig())
	h := s.RegisterRoutes()

	for _, out := range []string{"junk-1.figure", "junk-2.figure", "junk-3.figure"} {
		rr := do(t, h, http.MethodPost, "/_dash/update", `{"output":"`+out+`","inputs":[]}`)
		require.Equal(t, http.StatusNotFound, rr.Code)
	}

	rr := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.NotContains(t, body, "junk-")
	assert.Contains(t, body, `launch_dashboard_callback_invocations_total{output="unknown"}`)
	assert.Contains(t, body, `launch_dashboard_callback_errors_total{output="unknown"}`)
}
