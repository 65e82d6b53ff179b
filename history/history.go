package history

import "iter"

// Store is the minimal capability a client needs to record exchanges.
type Store interface {
	// Add appends an exchange.
	Add(e Exchange)

	// Len reports the number of recorded exchanges.
	Len() int

	// All yields every exchange with its index, in insertion order.
	All() iter.Seq2[int, Exchange]
}

// History is an append-only, ordered log of exchanges with a restartable
// forward cursor.
type History struct {
	records []Exchange
	pos     int
}

var _ Store = (*History)(nil)

// New creates an empty History.
func New() *History {
	return &History{}
}

// Add appends an exchange to the end of the log.
func (h *History) Add(e Exchange) {
	h.records = append(h.records, e)
}

// Len reports the number of recorded exchanges.
func (h *History) Len() int { return len(h.records) }

// At returns the exchange at index i.
func (h *History) At(i int) (Exchange, bool) {
	if i < 0 || i >= len(h.records) {
		return Exchange{}, false
	}
	return h.records[i], true
}

// Exchanges returns a copy of the log.
func (h *History) Exchanges() []Exchange {
	return append([]Exchange(nil), h.records...)
}

// All yields every exchange with its index, in insertion order. It does not
// move the cursor.
func (h *History) All() iter.Seq2[int, Exchange] {
	return func(yield func(int, Exchange) bool) {
		for i, e := range h.records {
			if !yield(i, e) {
				return
			}
		}
	}
}

// Rewind moves the cursor back to the first exchange.
func (h *History) Rewind() { h.pos = 0 }

// Valid reports whether the cursor points at an exchange.
func (h *History) Valid() bool { return h.pos < len(h.records) }

// Current returns the exchange under the cursor.
func (h *History) Current() (Exchange, bool) {
	return h.At(h.pos)
}

// Key returns the index under the cursor.
func (h *History) Key() int { return h.pos }

// Next advances the cursor. Advancing past the end is a no-op.
func (h *History) Next() {
	if h.pos < len(h.records) {
		h.pos++
	}
}
