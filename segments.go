package shrmem64

const (
	// SegmentSize is the IARV64 allocation unit (1 MiB).
	SegmentSize = 1 << 20
	segmentMask = SegmentSize - 1
)

// Segments converts a byte count into whole IARV64 segments, rounding up.
func Segments(size uint64) uint64 {
	if size&segmentMask == 0 {
		return size >> 20
	}
	return (size >> 20) + 1
}

// Key is a storage protection key. Only the low 4 bits are significant.
type Key uint8

// NormalizeKey moves the low nibble of key into the high nibble, the form
// IARV64 expects for KEY=.
func NormalizeKey(key Key) uint8 {
	return uint8(key&0xF) << 4
}
