package catalog

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ochtii/wannfahrma-v1/internal/static/ogd"
)

// integralDecimal matches ids that went through a float column, e.g. "4123.0"
var integralDecimal = regexp.MustCompile(`^(-?\d+)\.0+$`)

// stationGroup accumulates one station while scanning the joined rows
type stationGroup struct {
	station Station
	seen    map[string]bool
}

// AggregateStations left-joins stations to boarding points on the station key,
// attaches at most one platform label per boarding point and returns one
// Station per distinct key, sorted by name.
//
// Tie-breaks: the first station row of a key provides name, municipality and
// coordinates; the first platform row of a boarding point provides its label;
// the first station to claim a boarding point id owns it.
func AggregateStations(stations, boardingPoints, platforms *ogd.Table, log *zap.Logger) ([]Station, error) {
	platformLabels := buildPlatformIndex(platforms)

	groups := make(map[string]*stationGroup)
	var order []string
	nullKeys := 0

	for i := range stations.Rows {
		raw, ok := stations.Get(i, ogd.ColStationKey)
		if !ok {
			nullKeys++
			continue
		}
		key, err := canonicalStationKey(raw)
		if err != nil {
			return nil, &KeyFormatError{Relation: stations.Name, Line: stations.Line(i), Column: ogd.ColStationKey, Value: raw}
		}
		if _, exists := groups[key]; exists {
			continue
		}
		groups[key] = &stationGroup{
			station: newStation(key, stations, i),
			seen:    make(map[string]bool),
		}
		order = append(order, key)
	}

	owner := make(map[string]string)
	orphans, conflicts, duplicates := 0, 0, 0

	for i := range boardingPoints.Rows {
		raw, ok := boardingPoints.Get(i, ogd.ColStationKey)
		if !ok {
			continue
		}
		key, err := canonicalStationKey(raw)
		if err != nil {
			return nil, &KeyFormatError{Relation: boardingPoints.Name, Line: boardingPoints.Line(i), Column: ogd.ColStationKey, Value: raw}
		}
		id, ok := boardingPoints.Get(i, ogd.ColBoardingPointID)
		if !ok {
			continue
		}
		id = normalizeID(id)

		g, ok := groups[key]
		if !ok {
			orphans++
			continue
		}
		if prev, claimed := owner[id]; claimed && prev != key {
			conflicts++
			continue
		}
		if g.seen[id] {
			duplicates++
			continue
		}
		owner[id] = key
		g.seen[id] = true
		g.station.BoardingPointIDs = append(g.station.BoardingPointIDs, id)
		if label, ok := platformLabels[id]; ok {
			g.station.Platforms = append(g.station.Platforms, Platform{BoardingPointID: id, Label: label})
		}
	}

	result := make([]Station, 0, len(order))
	for _, key := range order {
		st := groups[key].station
		st.BoardingPointCount = len(st.BoardingPointIDs)
		result = append(result, st)
	}

	// Stable: equal names keep the order in which the stations were first seen
	slices.SortStableFunc(result, func(a, b Station) int {
		return strings.Compare(a.Name, b.Name)
	})

	if nullKeys > 0 {
		log.Warn("station rows without key dropped", zap.Int("rows", nullKeys))
	}
	if orphans > 0 {
		log.Debug("boarding points referencing unknown stations", zap.Int("rows", orphans))
	}
	if conflicts > 0 || duplicates > 0 {
		log.Warn("boarding points skipped",
			zap.Int("claimed_by_other_station", conflicts),
			zap.Int("duplicates", duplicates),
		)
	}
	log.Info("stations aggregated", zap.Int("stations", len(result)), zap.Int("boarding_points", len(owner)))

	return result, nil
}

func newStation(key string, t *ogd.Table, i int) Station {
	name, _ := t.Get(i, ogd.ColStationName)
	municipality, _ := t.Get(i, ogd.ColMunicipality)
	if c, ok := canonicalNumber(municipality); ok {
		municipality = c
	}
	return Station{
		StationID:        key,
		Name:             name,
		Municipality:     Municipality(municipality),
		Longitude:        parseCoordinate(t.Get(i, ogd.ColLongitude)),
		Latitude:         parseCoordinate(t.Get(i, ogd.ColLatitude)),
		BoardingPointIDs: []string{},
		Platforms:        []Platform{},
	}
}

// buildPlatformIndex maps boarding point id to the first platform label seen
func buildPlatformIndex(platforms *ogd.Table) map[string]string {
	labels := make(map[string]string)
	for i := range platforms.Rows {
		id, ok := platforms.Get(i, ogd.ColBoardingPointID)
		if !ok {
			continue
		}
		label, ok := platforms.Get(i, ogd.ColPlatformLabel)
		if !ok {
			continue
		}
		id = normalizeID(id)
		if _, exists := labels[id]; !exists {
			labels[id] = label
		}
	}
	return labels
}

// canonicalStationKey converts a station key cell to decimal integer text.
// "60200001" and "60200001.0" both yield "60200001"; anything that is not a
// whole number is rejected.
func canonicalStationKey(s string) (string, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) >= 1<<53 {
		return "", strconv.ErrSyntax
	}
	return strconv.FormatInt(int64(f), 10), nil
}

// normalizeID strips an all-zero fractional part from an identifier and
// leaves any other text untouched.
func normalizeID(s string) string {
	if m := integralDecimal.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

func parseCoordinate(s string, ok bool) *float64 {
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
