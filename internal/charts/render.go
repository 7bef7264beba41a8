package charts

import (
	"fmt"
	"io"
	"math"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format selects the output encoding of a rendered chart.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat maps a file extension to a Format.
func ParseFormat(ext string) (Format, error) {
	switch Format(ext) {
	case FormatSVG, FormatPNG:
		return Format(ext), nil
	}
	return "", fmt.Errorf("unsupported chart format %q", ext)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

func (f Format) provider() chart.RendererProvider {
	if f == FormatPNG {
		return chart.PNG
	}
	return chart.SVG
}

const (
	pieSize       = 512
	scatterWidth  = 960
	scatterHeight = 480
)

var palette = []drawing.Color{
	drawing.ColorFromHex("4F46E5"),
	drawing.ColorFromHex("10B981"),
	drawing.ColorFromHex("F59E0B"),
	drawing.ColorFromHex("EF4444"),
	drawing.ColorFromHex("8B5CF6"),
	drawing.ColorFromHex("06B6D4"),
	drawing.ColorFromHex("EC4899"),
	drawing.ColorFromHex("84CC16"),
}

var noDataColor = drawing.ColorFromHex("D1D5DB")

func paletteColor(i int) drawing.Color {
	return palette[i%len(palette)]
}

// RenderPie draws spec. Zero valued slices are skipped and an empty
// distribution is drawn as a single "No data" slice.
func RenderPie(w io.Writer, spec PieSpec, f Format) error {
	values := make([]chart.Value, 0, len(spec.Slices))
	for i, s := range spec.Slices {
		if s.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%s)", s.Label, strconv.FormatFloat(s.Value, 'f', -1, 64)),
			Value: s.Value,
			Style: chart.Style{FillColor: paletteColor(i), StrokeColor: drawing.ColorWhite},
		})
	}
	if len(values) == 0 {
		values = append(values, chart.Value{
			Label: "No data",
			Value: 1,
			Style: chart.Style{FillColor: noDataColor},
		})
	}

	pie := chart.PieChart{
		Title:  spec.Title,
		Width:  pieSize,
		Height: pieSize,
		Values: values,
	}
	if err := pie.Render(f.provider(), w); err != nil {
		return fmt.Errorf("render pie chart: %w", err)
	}
	return nil
}

// RenderScatter draws spec with one dot series per booster category. The
// axes are pinned to the requested payload range.
func RenderScatter(w io.Writer, spec ScatterSpec, f Format) error {
	low, high := scatterAxis(spec)

	series := make([]chart.Series, 0, len(spec.Series)+1)
	for i, s := range spec.Series {
		xs := make([]float64, len(s.Points))
		ys := make([]float64, len(s.Points))
		for j, p := range s.Points {
			xs[j] = p.PayloadMassKg
			ys[j] = float64(p.Class)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    5,
				DotColor:    paletteColor(i),
			},
		})
	}
	// go-chart needs one visible series; an empty plot gets a transparent one.
	empty := len(series) == 0
	if empty {
		series = append(series, chart.ContinuousSeries{
			XValues: []float64{low, high},
			YValues: []float64{0, 1},
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				StrokeColor: drawing.ColorTransparent,
				DotWidth:    chart.Disabled,
				DotColor:    drawing.ColorTransparent,
			},
		})
	}

	ch := chart.Chart{
		Title:  spec.Title,
		Width:  scatterWidth,
		Height: scatterHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Name:  "Payload Mass (kg)",
			Range: &chart.ContinuousRange{Min: low, Max: high},
		},
		YAxis: chart.YAxis{
			Name:  "class",
			Range: &chart.ContinuousRange{Min: -0.25, Max: 1.25},
			Ticks: []chart.Tick{
				{Value: 0, Label: "0"},
				{Value: 1, Label: "1"},
			},
		},
		Series: series,
	}
	if !empty {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}

	if err := ch.Render(f.provider(), w); err != nil {
		return fmt.Errorf("render scatter chart: %w", err)
	}
	return nil
}

// scatterAxis returns the x axis window: the requested range, or the extent
// of the plotted points when the range has no finite, non-zero width.
func scatterAxis(spec ScatterSpec) (low, high float64) {
	if low, high, ok := drawable(spec.Range.Low, spec.Range.High); ok {
		return low, high
	}
	if len(spec.Points) > 0 {
		low, high = spec.Points[0].PayloadMassKg, spec.Points[0].PayloadMassKg
		for _, p := range spec.Points[1:] {
			low = math.Min(low, p.PayloadMassKg)
			high = math.Max(high, p.PayloadMassKg)
		}
		if low, high, ok := drawable(low, high); ok {
			return low, high
		}
	}
	return 0, 1
}

func drawable(low, high float64) (float64, float64, bool) {
	if high <= low {
		high = low + 1
	}
	span := high - low
	return low, high, span > 0 && !math.IsInf(span, 0)
}
