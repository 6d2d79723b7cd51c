package catalog

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Output artifact names
const (
	StationsArtifact = "stations.json"
	LinesArtifact    = "lines.json"
	CombinedArtifact = "wien_opnv_data.json"
	ManifestArtifact = "manifest.json"
)

// SourceName identifies the upstream data set in the manifest
const SourceName = "wienerlinien-ogd"

// Manifest describes one export run. It is written only after all three
// artifacts were written.
type Manifest struct {
	BuildID      string         `json:"build_id"`
	GeneratedAt  time.Time      `json:"generated_at"`
	Source       string         `json:"source"`
	StationCount int            `json:"station_count"`
	LineCount    int            `json:"line_count"`
	Artifacts    []ManifestFile `json:"artifacts"`
}

// ManifestFile represents a written artifact
type ManifestFile struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Bytes    int    `json:"bytes"`
	Checksum string `json:"sha256"`
}

// Exporter writes the catalog artifacts into OutputDir
type Exporter struct {
	OutputDir string

	// Now and NewID are replaceable for tests
	Now   func() time.Time
	NewID func() uuid.UUID

	log *zap.Logger
}

// NewExporter creates an exporter using the wall clock and random build ids
func NewExporter(outputDir string, log *zap.Logger) *Exporter {
	return &Exporter{
		OutputDir: outputDir,
		Now:       time.Now,
		NewID:     uuid.New,
		log:       log,
	}
}

// Export writes stations.json, lines.json and the combined document, then the
// manifest. It stops at the first failed write and returns an *ExportError;
// artifacts already written are left in place.
func (e *Exporter) Export(stations []Station, lines []Line) (*Manifest, error) {
	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return nil, &ExportError{Artifact: "output directory", Path: e.OutputDir, Err: err}
	}

	if stations == nil {
		stations = []Station{}
	}
	if lines == nil {
		lines = []Line{}
	}
	generatedAt := e.Now().UTC()

	artifacts := []struct {
		name string
		doc  interface{}
	}{
		{StationsArtifact, stations},
		{LinesArtifact, lines},
		{CombinedArtifact, Catalog{Stations: stations, Lines: lines, GeneratedAt: generatedAt}},
	}

	manifest := &Manifest{
		BuildID:      e.NewID().String(),
		GeneratedAt:  generatedAt,
		Source:       SourceName,
		StationCount: len(stations),
		LineCount:    len(lines),
	}

	for _, a := range artifacts {
		file, err := e.write(a.name, a.doc)
		if err != nil {
			return nil, err
		}
		manifest.Artifacts = append(manifest.Artifacts, file)
	}

	if _, err := e.write(ManifestArtifact, manifest); err != nil {
		return nil, err
	}

	return manifest, nil
}

func (e *Exporter) write(name string, v interface{}) (ManifestFile, error) {
	path := filepath.Join(e.OutputDir, name)
	data, err := encodeJSON(v)
	if err != nil {
		return ManifestFile{}, &ExportError{Artifact: name, Path: path, Err: err}
	}
	if err := writeFileAtomic(path, data); err != nil {
		return ManifestFile{}, &ExportError{Artifact: name, Path: path, Err: err}
	}

	file := ManifestFile{
		Name:     name,
		Path:     name,
		Bytes:    len(data),
		Checksum: sha256Sum(data),
	}
	e.log.Info("artifact exported",
		zap.String("path", path),
		zap.Int("bytes", file.Bytes),
		zap.String("sha256", file.Checksum),
	)
	return file, nil
}

// encodeJSON renders v with two-space indentation, without HTML escaping so
// non-ASCII and markup characters are written literally.
func encodeJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeFileAtomic writes data to a temp file next to path and renames it
// into place, so readers never observe a half-written artifact.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", filepath.Base(path), err)
	}
	return nil
}

func sha256Sum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
