package ogd_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ochtii/wannfahrma-v1/internal/static/ogd"
)

const (
	stationsCSV = "\ufeffDIVA;PlatformText;Municipality;MunicipalityID;Longitude;Latitude\n" +
		"60200001;Karlsplatz;Wien;90001;16.37;48.20\n" +
		"60200002;Südtiroler Platz;Wien;90001;;\n"
	boardingPointsCSV = "StopID;DIVA;StopText\n4123;60200001;Karlsplatz\n4124;60200001;Karlsplatz\n"
	platformsCSV      = "StopID;LineID;Platform\n4123;101;U1\n"
	linesCSV          = "LineID;LineText;SortingHelp;Realtime;MeansOfTransport\n101;U1;1;;ptMetro\n"
)

func writeSources(t *testing.T, overrides map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		ogd.StationsFile:       stationsCSV,
		ogd.BoardingPointsFile: boardingPointsCSV,
		ogd.PlatformsFile:      platformsCSV,
		ogd.LinesFile:          linesCSV,
	}
	for name, body := range overrides {
		files[name] = body
	}
	for name, body := range files {
		if body == "" {
			continue
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
	}
	return dir
}

func TestLoad_AllFiles(t *testing.T) {
	dir := writeSources(t, nil)

	ds, err := ogd.Load(dir, zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, 2, ds.Stations.Len())
	assert.Equal(t, 2, ds.BoardingPoints.Len())
	assert.Equal(t, 1, ds.Platforms.Len())
	assert.Equal(t, 1, ds.Lines.Len())

	// Every source column is kept, including the ones no step reads.
	assert.True(t, ds.Stations.HasColumn("MunicipalityID"))
	assert.True(t, ds.Lines.HasColumn("SortingHelp"))

	// The BOM does not leak into the first header name.
	v, ok := ds.Stations.Get(0, ogd.ColStationKey)
	assert.True(t, ok)
	assert.Equal(t, "60200001", v)

	name, _ := ds.Stations.Get(1, ogd.ColStationName)
	assert.Equal(t, "Südtiroler Platz", name)

	_, ok = ds.Stations.Get(1, ogd.ColLongitude)
	assert.False(t, ok, "empty cell is null")
	assert.Equal(t, 3, ds.Stations.Line(1))
}

func TestLoad_MissingFile(t *testing.T) {
	dir := writeSources(t, map[string]string{ogd.PlatformsFile: ""})

	ds, err := ogd.Load(dir, zap.NewNop())

	require.Error(t, err)
	assert.Nil(t, ds)
	var loadErr *ogd.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ogd.PlatformsFile, loadErr.File)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_MalformedFieldCount(t *testing.T) {
	dir := writeSources(t, map[string]string{
		ogd.BoardingPointsFile: "StopID;DIVA;StopText\n4123;60200001\n",
	})

	_, err := ogd.Load(dir, zap.NewNop())

	var loadErr *ogd.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ogd.BoardingPointsFile, loadErr.File)
	assert.ErrorContains(t, err, "wrong number of fields")
}

func TestLoad_InvalidUTF8(t *testing.T) {
	dir := writeSources(t, map[string]string{
		ogd.LinesFile: "LineID;LineText;Realtime;MeansOfTransport\n101;U\xff1;1;ptMetro\n",
	})

	_, err := ogd.Load(dir, zap.NewNop())

	var loadErr *ogd.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ogd.LinesFile, loadErr.File)
	assert.ErrorContains(t, err, "invalid UTF-8")
}

func TestLoad_MissingColumn(t *testing.T) {
	dir := writeSources(t, map[string]string{
		ogd.PlatformsFile: "StopID;LineID\n4123;101\n",
	})

	_, err := ogd.Load(dir, zap.NewNop())

	var loadErr *ogd.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ogd.PlatformsFile, loadErr.File)
	assert.ErrorContains(t, err, "Platform")
}

func TestLoad_EmptyFile(t *testing.T) {
	dir := writeSources(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ogd.StationsFile), nil, 0644))

	_, err := ogd.Load(dir, zap.NewNop())

	var loadErr *ogd.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ogd.StationsFile, loadErr.File)
}

func TestTable_Get(t *testing.T) {
	tbl := ogd.NewTable("t.csv", []string{"A", " B "}, [][]string{{" x ", ""}, {"y"}})

	v, ok := tbl.Get(0, "A")
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	_, ok = tbl.Get(0, "B")
	assert.False(t, ok)

	_, ok = tbl.Get(1, "B")
	assert.False(t, ok, "short row")

	_, ok = tbl.Get(0, "C")
	assert.False(t, ok, "unknown column")

	_, ok = tbl.Get(5, "A")
	assert.False(t, ok, "row out of range")
}
