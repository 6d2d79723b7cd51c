package ogd

import "strings"

// Source file names as published in the Wiener Linien open data portal
const (
	StationsFile       = "wienerlinien-ogd-haltestellen.csv"
	BoardingPointsFile = "wienerlinien-ogd-haltepunkte.csv"
	PlatformsFile      = "wienerlinien-ogd-steige.csv"
	LinesFile          = "wienerlinien-ogd-linien.csv"
)

// Column names read by the catalog steps
const (
	ColStationKey      = "DIVA"
	ColStationName     = "PlatformText"
	ColMunicipality    = "Municipality"
	ColLongitude       = "Longitude"
	ColLatitude        = "Latitude"
	ColBoardingPointID = "StopID"
	ColPlatformLabel   = "Platform"
	ColLineID          = "LineID"
	ColLineLabel       = "LineText"
	ColTransportMode   = "MeansOfTransport"
	ColRealtime        = "Realtime"
)

// requiredColumns lists the columns each file must carry for the joins to be safe
var requiredColumns = map[string][]string{
	StationsFile:       {ColStationKey, ColStationName, ColMunicipality, ColLongitude, ColLatitude},
	BoardingPointsFile: {ColStationKey, ColBoardingPointID},
	PlatformsFile:      {ColBoardingPointID, ColPlatformLabel},
	LinesFile:          {ColLineID, ColLineLabel, ColTransportMode, ColRealtime},
}

// Dataset holds the four loaded relations
type Dataset struct {
	Stations       *Table
	BoardingPoints *Table
	Platforms      *Table
	Lines          *Table
}

// Table is one delimited file held in memory with every source column kept
type Table struct {
	Name   string
	Header []string
	Rows   [][]string

	lines []int
	index map[string]int
}

// NewTable builds a table from a header and rows. Used by the parser and by tests.
func NewTable(name string, header []string, rows [][]string) *Table {
	t := &Table{Name: name, Header: header, Rows: rows, index: makeIndex(header)}
	t.lines = make([]int, len(rows))
	for i := range rows {
		t.lines[i] = i + 2
	}
	return t
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether the header carries the named column
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Get returns the trimmed cell of row i in the named column.
// ok is false when the column is absent or the cell is empty (null).
func (t *Table) Get(i int, column string) (value string, ok bool) {
	c, found := t.index[column]
	if !found || i < 0 || i >= len(t.Rows) || c >= len(t.Rows[i]) {
		return "", false
	}
	value = strings.TrimSpace(t.Rows[i][c])
	return value, value != ""
}

// Line returns the 1-based source line of row i, for error messages
func (t *Table) Line(i int) int {
	if i < 0 || i >= len(t.lines) {
		return 0
	}
	return t.lines[i]
}

func makeIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	return idx
}
