package fetch

// Range is one inclusive byte interval assigned to a single worker.
type Range struct {
	Start int64
	End   int64
}

// Len returns the number of bytes covered by the range.
func (r Range) Len() int64 {
	return r.End - r.Start + 1
}

// BuildRanges partitions [0,total) into at most workers contiguous,
// non-overlapping ranges. Each range is sized by integer-ceiling division
// and the last one absorbs the remainder. A range whose start would land
// at or past total is dropped, so tiny files simply use fewer workers.
func BuildRanges(total int64, workers int) []Range {
	if total <= 0 || workers <= 0 {
		return nil
	}

	size := (total + int64(workers) - 1) / int64(workers)

	ranges := make([]Range, 0, workers)
	for i := 0; i < workers; i++ {
		start := int64(i) * size
		if start >= total {
			continue
		}

		end := start + size - 1
		if end > total-1 {
			end = total - 1
		}

		ranges = append(ranges, Range{Start: start, End: end})
	}

	return ranges
}
