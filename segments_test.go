package shrmem64

import (
	"testing"
)

func TestSegments(t *testing.T) {
	tests := []struct {
		size uint64
		want uint64
	}{
		{0, 0},
		{1, 1},
		{SegmentSize - 1, 1},
		{SegmentSize, 1},
		{SegmentSize + 1, 2},
		{3 * SegmentSize, 3},
		{3*SegmentSize + 4096, 4},
		{1 << 40, 1 << 20},
	}
	for _, tt := range tests {
		if got := Segments(tt.size); got != tt.want {
			t.Errorf("Segments(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestSegmentsRoundsUp(t *testing.T) {
	for _, units := range []uint64{0, 1, 2, 17, 1024} {
		exact := units * SegmentSize
		if got := Segments(exact); got != units {
			t.Errorf("Segments(%d) = %d, want %d", exact, got, units)
		}
		for _, rem := range []uint64{1, 4096, SegmentSize / 2, SegmentSize - 1} {
			size := exact + rem
			if got := Segments(size); got != units+1 {
				t.Errorf("Segments(%d) = %d, want %d", size, got, units+1)
			}
		}
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		key  Key
		want uint8
	}{
		{0x0, 0x00},
		{0x1, 0x10},
		{0x8, 0x80},
		{0xF, 0xF0},
		{0x1F, 0xF0},
		{0xF2, 0x20},
	}
	for _, tt := range tests {
		if got := NormalizeKey(tt.key); got != tt.want {
			t.Errorf("NormalizeKey(0x%X) = 0x%02X, want 0x%02X", tt.key, got, tt.want)
		}
	}
}

func TestPackToken(t *testing.T) {
	tok := PackToken(0x00F8A100, 0x0042)
	if tok != 0x00F8A10000000042 {
		t.Errorf("PackToken = 0x%016X, want 0x00F8A10000000042", uint64(tok))
	}
	ascb, asid := UnpackToken(tok)
	if ascb != 0x00F8A100 || asid != 0x0042 {
		t.Errorf("UnpackToken = (0x%X, 0x%X)", ascb, asid)
	}
}
