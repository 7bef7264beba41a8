package charts

import (
	"launch-dashboard/internal/launches"
	"launch-dashboard/internal/models"
)

const (
	pieTitleAll      = "Total Success Launches by Site"
	pieTitleSite     = "Total Success Launches for Site "
	scatterTitleAll  = "Correlation between Payload and Success for ALL Sites"
	scatterTitleSite = "Correlation between Payload and Success at Site "
)

// SuccessPie computes the outcome share chart for site. For ALL it yields
// the success count of every site; for a single site it yields the failure
// and success counts, omitting a class with no launches. An unknown site
// yields no slices.
func SuccessPie(rs *launches.RecordSet, site string) PieSpec {
	if site == launches.AllSites {
		successes := make(map[string]float64)
		rs.Each(func(r models.LaunchRecord) {
			if r.Succeeded() {
				successes[r.LaunchSite]++
			}
		})

		sites := rs.DistinctSites()
		slices := make([]Slice, 0, len(sites))
		for _, s := range sites {
			slices = append(slices, Slice{Label: s, Value: successes[s]})
		}
		return PieSpec{Title: pieTitleAll, Site: site, Slices: slices}
	}

	var counts [2]float64
	rs.Each(func(r models.LaunchRecord) {
		if r.LaunchSite == site {
			counts[r.Class]++
		}
	})

	slices := make([]Slice, 0, 2)
	for class, label := range []string{LabelFailure, LabelSuccess} {
		if counts[class] > 0 {
			slices = append(slices, Slice{Label: label, Value: counts[class]})
		}
	}
	return PieSpec{Title: pieTitleSite + site, Site: site, Slices: slices}
}

// PayloadScatter selects the launches whose payload lies inside rng, limited
// to site unless site is ALL.
func PayloadScatter(rs *launches.RecordSet, site string, rng PayloadRange, b Boundary) ScatterSpec {
	if b == "" {
		b = BoundaryOpen
	}
	spec := ScatterSpec{
		Title:    scatterTitleAll,
		Site:     site,
		Range:    rng,
		Boundary: b,
		Points:   []Point{},
		Series:   []Series{},
	}
	if site != launches.AllSites {
		spec.Title = scatterTitleSite + site
	}

	seriesIdx := make(map[string]int)
	rs.Each(func(r models.LaunchRecord) {
		if site != launches.AllSites && r.LaunchSite != site {
			return
		}
		if !rng.Contains(r.PayloadMassKg, b) {
			return
		}

		p := Point{
			FlightNumber:    r.FlightNumber,
			PayloadMassKg:   r.PayloadMassKg,
			Class:           r.Class,
			BoosterCategory: r.BoosterVersionCategory,
		}
		spec.Points = append(spec.Points, p)

		i, ok := seriesIdx[p.BoosterCategory]
		if !ok {
			i = len(spec.Series)
			seriesIdx[p.BoosterCategory] = i
			spec.Series = append(spec.Series, Series{Name: p.BoosterCategory})
		}
		spec.Series[i].Points = append(spec.Series[i].Points, p)
	})

	return spec
}
