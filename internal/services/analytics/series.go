package analytics

import (
	"sort"

	"MarketBoard/internal/domain/models"
)

// Series is one instrument's label-aligned value array. A nil entry means
// the instrument has no record under that label; chart consumers skip the
// point and span the gap.
type Series struct {
	Symbol string     `json:"symbol"`
	Values []*float64 `json:"values"`
}

// AlignedSeries is the union of display-time labels across a set of
// instruments plus one aligned series per instrument. Every series has
// exactly len(Labels) entries.
type AlignedSeries struct {
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
}

// AlignSeries builds label-aligned series for a metric across instruments.
// Labels are the sorted union of display-time labels (the label format is
// chronological-compatible, so lexicographic ascending is time ascending).
// When an instrument carries duplicate labels the last value wins. Empty
// input yields empty output.
func AlignSeries(instruments []models.Instrument, metric models.Metric) AlignedSeries {
	seen := make(map[string]struct{})
	var labels []string
	for _, m := range instruments {
		for _, rec := range m.History {
			if _, ok := seen[rec.MarketTime]; !ok {
				seen[rec.MarketTime] = struct{}{}
				labels = append(labels, rec.MarketTime)
			}
		}
	}
	sort.Strings(labels)

	series := make([]Series, 0, len(instruments))
	for _, m := range instruments {
		byLabel := make(map[string]float64, len(m.History))
		for _, rec := range m.History {
			byLabel[rec.MarketTime] = metric.Value(rec)
		}
		values := make([]*float64, len(labels))
		for i, label := range labels {
			if v, ok := byLabel[label]; ok {
				v := v
				values[i] = &v
			}
		}
		series = append(series, Series{Symbol: m.Symbol, Values: values})
	}

	return AlignedSeries{Labels: labels, Series: series}
}
