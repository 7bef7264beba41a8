package dashboard

import (
	"math"
	"strconv"

	"launch-dashboard/internal/launches"
)

// Control and graph ids shared by the page and the callbacks.
const (
	SiteDropdownID  = "site-dropdown"
	PayloadSliderID = "payload-slider"
	PieGraphID      = "success-pie-chart"
	ScatterGraphID  = "success-payload-scatter-chart"
	ValueProperty   = "value"
	FigureProperty  = "figure"
	DefaultTitle    = "SpaceX Launch Records Dashboard"
	SliderStep      = 500

	sliderMarkSpacing = 1000
)

// Output ids in id.property form.
const (
	PieOutput     = PieGraphID + "." + FigureProperty
	ScatterOutput = ScatterGraphID + "." + FigureProperty
)

type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Dropdown struct {
	ID          string   `json:"id"`
	Options     []Option `json:"options"`
	Value       string   `json:"value"`
	Placeholder string   `json:"placeholder"`
}

type Mark struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// RangeSlider spans [Min, Max]. HandleMax is Max rounded up to the next step
// from Min, so a stepped handle can reach the maximum; selections past Max
// are clamped to it.
type RangeSlider struct {
	ID        string     `json:"id"`
	Min       float64    `json:"min"`
	Max       float64    `json:"max"`
	HandleMax float64    `json:"handle_max"`
	Step      float64    `json:"step"`
	Marks     []Mark     `json:"marks"`
	Value     [2]float64 `json:"value"`
}

// Layout is the static description of the page controls.
type Layout struct {
	Title    string      `json:"title"`
	Dropdown Dropdown    `json:"dropdown"`
	Slider   RangeSlider `json:"slider"`
	Graphs   []string    `json:"graphs"`
}

// NewLayout derives the controls from the data set: one dropdown option per
// site after "All Sites", and a slider spanning the payload bounds.
func NewLayout(title string, rs *launches.RecordSet) Layout {
	if title == "" {
		title = DefaultTitle
	}

	sites := rs.DistinctSites()
	options := make([]Option, 0, len(sites)+1)
	options = append(options, Option{Label: "All Sites", Value: launches.AllSites})
	for _, s := range sites {
		options = append(options, Option{Label: s, Value: s})
	}

	min, max := rs.PayloadBounds()
	return Layout{
		Title: title,
		Dropdown: Dropdown{
			ID:          SiteDropdownID,
			Options:     options,
			Value:       launches.AllSites,
			Placeholder: "Select a Launch Site here",
		},
		Slider: RangeSlider{
			ID:        PayloadSliderID,
			Min:       min,
			Max:       max,
			HandleMax: min + math.Ceil((max-min)/SliderStep)*SliderStep,
			Step:      SliderStep,
			Marks:     sliderMarks(min, max),
			Value:     [2]float64{min, max},
		},
		Graphs: []string{PieGraphID, ScatterGraphID},
	}
}

func sliderMarks(min, max float64) []Mark {
	var marks []Mark
	for v := math.Ceil(min/sliderMarkSpacing) * sliderMarkSpacing; v <= max; v += sliderMarkSpacing {
		marks = append(marks, Mark{Value: v, Label: strconv.FormatFloat(v, 'f', -1, 64)})
	}
	return marks
}
