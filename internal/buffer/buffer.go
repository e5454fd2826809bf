// Package buffer implements a bounded accumulator for protocol lines split across reads.
package buffer

// Buffer collects the pieces of a single line until its terminator arrives. The capacity of
// the underlying memory never exceeds the limit: growth is done manually instead of relying
// on append, which is free to over-allocate. That's what makes line limits hard bounds on
// memory, too.
type Buffer struct {
	memory []byte
	limit  int
}

func New(initialSize, limit int) Buffer {
	return Buffer{
		memory: make([]byte, 0, min(initialSize, limit)),
		limit:  limit,
	}
}

// Append writes data unless the limit would be exceeded. In that case nothing is written and
// false is returned.
func (b *Buffer) Append(data []byte) (ok bool) {
	if len(b.memory)+len(data) > b.limit {
		return false
	}

	if len(b.memory)+len(data) > cap(b.memory) {
		newCap := min(max(cap(b.memory)*2, len(b.memory)+len(data), 16), b.limit)
		memory := make([]byte, len(b.memory), newCap)
		copy(memory, b.memory)
		b.memory = memory
	}

	b.memory = append(b.memory, data...)
	return true
}

// Len returns the number of accumulated bytes.
func (b *Buffer) Len() int {
	return len(b.memory)
}

func (b *Buffer) Cap() int {
	return cap(b.memory)
}

// Preview returns the accumulated bytes. They are valid until the next Clear.
func (b *Buffer) Preview() []byte {
	return b.memory
}

// Clear drops the contents, keeping the memory for the next line.
func (b *Buffer) Clear() {
	b.memory = b.memory[:0]
}
