package catalog

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Mode is the presentation transit mode of a line
type Mode string

const (
	ModeMetro Mode = "metro"
	ModeTram  Mode = "tram"
	ModeBus   Mode = "bus"
)

// Modes lists every mode in display order
var Modes = []Mode{ModeMetro, ModeTram, ModeBus}

// Platform is the platform label attached to one boarding point
type Platform struct {
	BoardingPointID string `json:"boarding_point_id"`
	Label           string `json:"platform_label"`
}

// Station is one logical station with all of its boarding points.
// BoardingPointCount always equals len(BoardingPointIDs).
type Station struct {
	StationID          string       `json:"station_id"`
	Name               string       `json:"name"`
	Municipality       Municipality `json:"municipality"`
	Longitude          *float64     `json:"longitude,omitempty"`
	Latitude           *float64     `json:"latitude,omitempty"`
	BoardingPointIDs   []string     `json:"boarding_point_ids"`
	Platforms          []Platform   `json:"platforms"`
	BoardingPointCount int          `json:"boarding_point_count"`
}

// Line is a transit line ready for display
type Line struct {
	LineID   string `json:"line_id"`
	Label    string `json:"label"`
	Mode     Mode   `json:"mode"`
	Color    string `json:"color"`
	Realtime bool   `json:"realtime"`
}

// Catalog is the combined document consumed by the client application
type Catalog struct {
	Stations    []Station `json:"stations"`
	Lines       []Line    `json:"lines"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Municipality keeps the source cell as text. Numeric codes are emitted as
// JSON numbers, names as JSON strings, and a missing value as null.
type Municipality string

// MarshalJSON implements json.Marshaler
func (m Municipality) MarshalJSON() ([]byte, error) {
	s := string(m)
	if s == "" {
		return []byte("null"), nil
	}
	if c, ok := canonicalNumber(s); ok && c == s {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

// UnmarshalJSON implements json.Unmarshaler
func (m *Municipality) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*m = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = Municipality(s)
	default:
		*m = Municipality(data)
	}
	return nil
}

// canonicalNumber returns the canonical decimal text of a numeric cell:
// integers without leading zeros, other finite values in shortest form.
func canonicalNumber(s string) (string, bool) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(i, 10), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10), true
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}
