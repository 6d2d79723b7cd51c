package catalog_test

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ochtii/wannfahrma-v1/internal/static/catalog"
)

var fixedTime = time.Date(2026, 3, 1, 4, 30, 0, 0, time.UTC)

func newTestExporter(dir string) *catalog.Exporter {
	e := catalog.NewExporter(dir, zap.NewNop())
	e.Now = func() time.Time { return fixedTime }
	e.NewID = func() uuid.UUID { return uuid.MustParse("6f1c2b44-8f7e-4a57-9d0a-0e1f2a3b4c5d") }
	return e
}

func sampleCatalog() ([]catalog.Station, []catalog.Line) {
	lon, lat := 16.3769, 48.1858
	stations := []catalog.Station{
		{
			StationID:          "60200002",
			Name:               "Südtiroler Platz",
			Municipality:       "Wien",
			Longitude:          &lon,
			Latitude:           &lat,
			BoardingPointIDs:   []string{"4124"},
			Platforms:          []catalog.Platform{{BoardingPointID: "4124", Label: "1"}},
			BoardingPointCount: 1,
		},
		{
			StationID:          "60200003",
			Name:               "Aspern Nord",
			Municipality:       "90001",
			BoardingPointIDs:   []string{},
			Platforms:          []catalog.Platform{},
			BoardingPointCount: 0,
		},
	}
	lines := []catalog.Line{
		{LineID: "101", Label: "U1", Mode: catalog.ModeMetro, Color: "#dc3545"},
	}
	return stations, lines
}

func TestExport_WritesArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	stations, lines := sampleCatalog()

	manifest, err := newTestExporter(dir).Export(stations, lines)

	require.NoError(t, err)
	for _, name := range []string{
		catalog.StationsArtifact,
		catalog.LinesArtifact,
		catalog.CombinedArtifact,
		catalog.ManifestArtifact,
	} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	data, err := os.ReadFile(filepath.Join(dir, catalog.StationsArtifact))
	require.NoError(t, err)

	var decoded []catalog.Station
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, stations, decoded)

	text := string(data)
	assert.Contains(t, text, "Südtiroler Platz", "non-ASCII is written literally")
	assert.True(t, strings.HasPrefix(text, "[\n  {\n    \"station_id\""), "two-space indentation")
	assert.Contains(t, text, `"municipality": 90001`)
	assert.NotContains(t, text[strings.Index(text, "Aspern"):], "longitude", "missing coordinates are omitted")

	assert.Equal(t, 2, manifest.StationCount)
	assert.Equal(t, 1, manifest.LineCount)
}

func TestExport_CombinedDocument(t *testing.T) {
	dir := t.TempDir()
	stations, lines := sampleCatalog()

	_, err := newTestExporter(dir).Export(stations, lines)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, catalog.CombinedArtifact))
	require.NoError(t, err)

	var doc catalog.Catalog
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, stations, doc.Stations)
	assert.Equal(t, lines, doc.Lines)
	assert.True(t, fixedTime.Equal(doc.GeneratedAt))
}

func TestExport_Manifest(t *testing.T) {
	dir := t.TempDir()
	stations, lines := sampleCatalog()

	_, err := newTestExporter(dir).Export(stations, lines)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, catalog.ManifestArtifact))
	require.NoError(t, err)

	var manifest catalog.Manifest
	require.NoError(t, json.Unmarshal(data, &manifest))

	assert.Equal(t, "6f1c2b44-8f7e-4a57-9d0a-0e1f2a3b4c5d", manifest.BuildID)
	assert.Equal(t, catalog.SourceName, manifest.Source)
	assert.True(t, fixedTime.Equal(manifest.GeneratedAt))
	require.Len(t, manifest.Artifacts, 3)

	for _, file := range manifest.Artifacts {
		body, err := os.ReadFile(filepath.Join(dir, file.Path))
		require.NoError(t, err)

		sum := sha256.Sum256(body)
		assert.Equal(t, hex.EncodeToString(sum[:]), file.Checksum, file.Name)
		assert.Equal(t, len(body), file.Bytes, file.Name)
	}
}

func TestExport_EmptyCatalog(t *testing.T) {
	dir := t.TempDir()

	_, err := newTestExporter(dir).Export(nil, nil)
	require.NoError(t, err)

	for _, name := range []string{catalog.StationsArtifact, catalog.LinesArtifact} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, "[]\n", string(data), name)
	}
}

func TestExport_UnwritableDestination(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "out")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0644))

	stations, lines := sampleCatalog()
	manifest, err := newTestExporter(blocker).Export(stations, lines)

	require.Error(t, err)
	assert.Nil(t, manifest)

	var exportErr *catalog.ExportError
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, blocker, exportErr.Path)
}

func TestExport_ArtifactPathIsDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, catalog.LinesArtifact), 0755))

	stations, lines := sampleCatalog()
	_, err := newTestExporter(dir).Export(stations, lines)

	var exportErr *catalog.ExportError
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, catalog.LinesArtifact, exportErr.Artifact)

	// Fail-fast: the artifact before the failure stays, the manifest is never written.
	assert.FileExists(t, filepath.Join(dir, catalog.StationsArtifact))
	assert.NoFileExists(t, filepath.Join(dir, catalog.CombinedArtifact))
	assert.NoFileExists(t, filepath.Join(dir, catalog.ManifestArtifact))
}
