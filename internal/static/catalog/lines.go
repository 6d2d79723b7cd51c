package catalog

import (
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/ochtii/wannfahrma-v1/internal/static/ogd"
)

// Transport mode codes used in the source lines table
const (
	TransportMetro = "ptMetro"
	TransportTram  = "ptTram"
	TransportBus   = "ptBus"
)

// Display colors. Metro and tram share one color on purpose; only buses differ.
const (
	ColorBus      = "#007bff"
	ColorRailLike = "#dc3545"
)

// ModeByTransport maps source transport codes to modes. Matching is case-sensitive.
var ModeByTransport = map[string]Mode{
	TransportMetro: ModeMetro,
	TransportTram:  ModeTram,
	TransportBus:   ModeBus,
}

// ColorByMode maps each mode to its display color
var ColorByMode = map[Mode]string{
	ModeMetro: ColorRailLike,
	ModeTram:  ColorRailLike,
	ModeBus:   ColorBus,
}

// NormalizeLines maps every line row to a Line in source order.
// Duplicate line ids pass through unchanged.
func NormalizeLines(lines *ogd.Table, log *zap.Logger) []Line {
	result := make([]Line, 0, lines.Len())
	unmapped := 0

	for i := range lines.Rows {
		id, _ := lines.Get(i, ogd.ColLineID)
		label, _ := lines.Get(i, ogd.ColLineLabel)
		code, _ := lines.Get(i, ogd.ColTransportMode)

		mode, known := ModeByTransport[code]
		if !known {
			mode = ModeBus
			unmapped++
		}

		result = append(result, Line{
			LineID:   normalizeID(id),
			Label:    label,
			Mode:     mode,
			Color:    ColorByMode[mode],
			Realtime: resolveRealtime(parseOptionalBool(lines.Get(i, ogd.ColRealtime))),
		})
	}

	if unmapped > 0 {
		log.Debug("lines with unmapped transport mode defaulted to bus", zap.Int("lines", unmapped))
	}
	log.Info("lines normalized", zap.Int("lines", len(result)))

	return result
}

// parseOptionalBool reads a nullable boolean cell. It accepts the
// strconv.ParseBool vocabulary and numbers (non-zero is true). Empty or
// unreadable cells are nil.
func parseOptionalBool(s string, ok bool) *bool {
	if !ok {
		return nil
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return &b
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) {
		b := f != 0
		return &b
	}
	return nil
}

// resolveRealtime applies the default for a missing realtime flag
func resolveRealtime(v *bool) bool {
	if v == nil {
		return false
	}
	return *v
}
