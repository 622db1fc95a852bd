package utils

// -----------------------------------------------------------------------------

// Reference data identifiers shared by the importers and the bar updater.
const (
	ProviderTDA    = "TDA"
	ProviderNASDAQ = "NASDAQ"
	IntervalEOD    = "EOD"
)

// -----------------------------------------------------------------------------

// Progress statuses reported per symbol.
const (
	StatusUpdated = "updated"
	StatusSkipped = "skipped"
	StatusNoData  = "no_data"
	StatusFailed  = "failed"
)

// -----------------------------------------------------------------------------

// Chunk splits items into consecutive slices of at most size elements.
// The chunks share the backing array of items.
func Chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size < 1 {
		return [][]T{items}
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end:end])
	}
	return chunks
}
