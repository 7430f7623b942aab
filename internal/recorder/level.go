package recorder

import "encoding/binary"

// Level returns the peak amplitude of a 16-bit little-endian PCM frame,
// normalized to 0..1. Odd trailing bytes are ignored.
func Level(frame []byte) float64 {
	var peak int32
	for i := 0; i+1 < len(frame); i += 2 {
		s := int32(int16(binary.LittleEndian.Uint16(frame[i:])))
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return float64(peak) / 32768.0
}

// LevelRenderer consumes amplitude samples for the live visualization. The
// rendering path is cosmetic: the widget swallows renderer errors and panics
// so drawing can never stall or fail the capture pipeline.
type LevelRenderer interface {
	RenderLevel(level float64) error
}
