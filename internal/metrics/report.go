package metrics

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/ochtii/wannfahrma-v1/internal/static/catalog"
)

// DefaultTopN is the ranking size when none is configured
const DefaultTopN = 5

// StationRank is one entry of the busiest-stations ranking
type StationRank struct {
	StationID          string
	Name               string
	BoardingPointCount int
}

// Report summarizes an exported catalog
type Report struct {
	StationCount         int
	BoardingPointCount   int
	MeanBoardingPoints   float64
	StdDevBoardingPoints float64
	LineCount            int
	LinesByMode          map[catalog.Mode]int
	TopStations          []StationRank
}

// Summarize computes the report. It only reads its inputs; the slices are
// never reordered or modified.
func Summarize(stations []catalog.Station, lines []catalog.Line, topN int) Report {
	if topN < 0 {
		topN = 0
	}

	var acc WelfordState
	total := 0
	for _, st := range stations {
		total += st.BoardingPointCount
		acc.Update(float64(st.BoardingPointCount))
	}

	byMode := make(map[catalog.Mode]int, len(catalog.Modes))
	for _, mode := range catalog.Modes {
		byMode[mode] = 0
	}
	for _, l := range lines {
		byMode[l.Mode]++
	}

	return Report{
		StationCount:         len(stations),
		BoardingPointCount:   total,
		MeanBoardingPoints:   acc.GetMean(),
		StdDevBoardingPoints: acc.GetStdDev(),
		LineCount:            len(lines),
		LinesByMode:          byMode,
		TopStations:          rankStations(stations, topN),
	}
}

// rankStations orders a copy by boarding point count descending, then name,
// then station id, and keeps the first n.
func rankStations(stations []catalog.Station, n int) []StationRank {
	ranked := make([]StationRank, 0, len(stations))
	for _, st := range stations {
		ranked = append(ranked, StationRank{
			StationID:          st.StationID,
			Name:               st.Name,
			BoardingPointCount: st.BoardingPointCount,
		})
	}

	slices.SortFunc(ranked, func(a, b StationRank) int {
		if a.BoardingPointCount != b.BoardingPointCount {
			return b.BoardingPointCount - a.BoardingPointCount
		}
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.StationID, b.StationID)
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Fields renders the report as structured log fields
func (r Report) Fields() []zap.Field {
	fields := []zap.Field{
		zap.Int("stations", r.StationCount),
		zap.Int("boarding_points", r.BoardingPointCount),
		zap.Float64("mean_boarding_points", r.MeanBoardingPoints),
		zap.Float64("stddev_boarding_points", r.StdDevBoardingPoints),
		zap.Int("lines", r.LineCount),
	}
	for _, mode := range catalog.Modes {
		fields = append(fields, zap.Int("lines_"+string(mode), r.LinesByMode[mode]))
	}
	return fields
}

// WriteText writes a human-readable summary
func (r Report) WriteText(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Stations:                 %d\n", r.StationCount)
	fmt.Fprintf(&b, "Boarding points:          %d\n", r.BoardingPointCount)
	fmt.Fprintf(&b, "Boarding points/station:  %.2f (stddev %.2f)\n", r.MeanBoardingPoints, r.StdDevBoardingPoints)
	fmt.Fprintf(&b, "Lines:                    %d\n", r.LineCount)
	for _, mode := range catalog.Modes {
		fmt.Fprintf(&b, "  %-6s %d\n", mode, r.LinesByMode[mode])
	}

	if len(r.TopStations) > 0 {
		fmt.Fprintf(&b, "Top %d stations by boarding points:\n", len(r.TopStations))
		for i, st := range r.TopStations {
			fmt.Fprintf(&b, "  %d. %s (%s): %d\n", i+1, st.Name, st.StationID, st.BoardingPointCount)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
