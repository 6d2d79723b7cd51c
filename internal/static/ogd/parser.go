package ogd

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Separator is the field separator used by all OGD extracts
const Separator = ';'

const utf8BOM = "\ufeff"

// LoadError reports a source file that is missing or cannot be parsed.
// Any LoadError aborts the whole run.
type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load reads the four source files from dir. It fails on the first file
// that cannot be read, so a partial dataset is never returned.
func Load(dir string, log *zap.Logger) (*Dataset, error) {
	ds := &Dataset{}
	targets := []struct {
		file string
		dst  **Table
	}{
		{StationsFile, &ds.Stations},
		{BoardingPointsFile, &ds.BoardingPoints},
		{PlatformsFile, &ds.Platforms},
		{LinesFile, &ds.Lines},
	}

	for _, tgt := range targets {
		t, err := ParseFile(filepath.Join(dir, tgt.file))
		if err != nil {
			return nil, err
		}
		if err := checkColumns(t, requiredColumns[tgt.file]); err != nil {
			return nil, err
		}
		*tgt.dst = t
		log.Info("source table loaded",
			zap.String("file", tgt.file),
			zap.Int("rows", t.Len()),
			zap.Int("columns", len(t.Header)),
		)
	}

	return ds, nil
}

// ParseFile reads one `;`-separated UTF-8 file with a header row
func ParseFile(path string) (*Table, error) {
	name := filepath.Base(path)
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{File: name, Err: err}
	}
	defer f.Close()

	t, err := parse(name, f)
	if err != nil {
		return nil, &LoadError{File: name, Err: err}
	}
	return t, nil
}

func parse(name string, r io.Reader) (*Table, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.Comma = Separator

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("file is empty, header row missing")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if err := checkUTF8(header, 1); err != nil {
		return nil, err
	}

	var rows [][]string
	var lines []int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Field count mismatches surface here as *csv.ParseError
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		if err := checkUTF8(record, line); err != nil {
			return nil, err
		}
		rows = append(rows, record)
		lines = append(lines, line)
	}

	t := NewTable(name, header, rows)
	t.lines = lines
	return t, nil
}

func checkUTF8(fields []string, line int) error {
	for i, f := range fields {
		if !utf8.ValidString(f) {
			return fmt.Errorf("line %d, field %d: invalid UTF-8", line, i+1)
		}
	}
	return nil
}

func checkColumns(t *Table, required []string) error {
	var missing []string
	for _, col := range required {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &LoadError{
			File: t.Name,
			Err:  fmt.Errorf("missing columns: %s", strings.Join(missing, ", ")),
		}
	}
	return nil
}
