package querytool

import (
	"fmt"
	"strings"
)

// keySeparator joins identifiers into a batch key and into the batch
// query parameter value.
const keySeparator = ","

// Chunk partitions values into consecutive sublists of at most size k.
// A non-positive k is treated as 1. Each sublist is a copy.
func Chunk(values []string, k int) [][]string {
	if k <= 0 {
		k = 1
	}

	chunks := make([][]string, 0, (len(values)+k-1)/k)
	for start := 0; start < len(values); start += k {
		end := start + k
		if end > len(values) {
			end = len(values)
		}
		chunk := make([]string, end-start)
		copy(chunk, values[start:end])
		chunks = append(chunks, chunk)
	}
	return chunks
}

// Batch is an immutable ordered run of identifiers sent in one call
type Batch struct {
	ids []string
	key string
}

func newBatch(ids []string) Batch {
	return Batch{ids: ids, key: strings.Join(ids, keySeparator)}
}

// Len returns the number of identifiers
func (b Batch) Len() int {
	return len(b.ids)
}

// Key identifies the batch for attempt bookkeeping
func (b Batch) Key() string {
	return b.key
}

// IDs returns a copy of the identifiers
func (b Batch) IDs() []string {
	out := make([]string, len(b.ids))
	copy(out, b.ids)
	return out
}

// Split bisects the batch at max(1, len/2). Callers only split batches of
// two or more identifiers, so both halves are non-empty.
func (b Batch) Split() (Batch, Batch) {
	mid := len(b.ids) / 2
	if mid < 1 {
		mid = 1
	}
	return newBatch(b.ids[:mid]), newBatch(b.ids[mid:])
}

// describe renders "<path> batch (<param>=<first>...<last>)" for warnings
func (b Batch) describe(path, param string) string {
	if len(b.ids) == 0 {
		return fmt.Sprintf("%s batch (%s=)", path, param)
	}
	return fmt.Sprintf("%s batch (%s=%s...%s)", path, param, b.ids[0], b.ids[len(b.ids)-1])
}
