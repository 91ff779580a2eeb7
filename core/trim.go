package core

// TrimTable holds the factory gain trim constants read from the
// calibration flash row. Each range carries two buckets: index 0 for
// resolutions up to 15 bits and index 1 above, because the decimator
// uses a different filter topology for the two classes.
type TrimTable struct {
	VrefDiff   [2]int8 // +/- Vref differential and Vssa..2*Vref
	Vref2Diff  [2]int8 // +/- Vref/2
	Vref4Diff  [2]int8 // +/- Vref/4
	Vref16Diff [2]int8 // +/- Vref/16
}

// trimBucket returns 0 for low resolution trims and 1 for high resolution trims.
func trimBucket(resolution uint8) int {
	if resolution > 15 {
		return 1
	}
	return 0
}

// Lookup returns the signed trim for an input range and resolution.
// Ranges without a factory trim return zero.
func (t *TrimTable) Lookup(r InputRange, resolution uint8) int8 {
	b := trimBucket(resolution)
	switch r {
	case RangeDiffVref, RangeVssaTo2Vref:
		return t.VrefDiff[b]
	case RangeDiffVref2:
		return t.Vref2Diff[b]
	case RangeDiffVref4:
		return t.Vref4Diff[b]
	case RangeDiffVref16:
		return t.Vref16Diff[b]
	default:
		return 0
	}
}

// TrimFromRow decodes the eight trim bytes in flash row order:
// VrefDiff lo/hi, Vref2Diff lo/hi, Vref4Diff lo/hi, Vref16Diff lo/hi.
func TrimFromRow(row [8]byte) TrimTable {
	return TrimTable{
		VrefDiff:   [2]int8{int8(row[0]), int8(row[1])},
		Vref2Diff:  [2]int8{int8(row[2]), int8(row[3])},
		Vref4Diff:  [2]int8{int8(row[4]), int8(row[5])},
		Vref16Diff: [2]int8{int8(row[6]), int8(row[7])},
	}
}
