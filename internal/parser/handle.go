package parser

import (
	"markup-binder/binding"
	"markup-binder/token"
)

// handle is an open element: the value under construction and the callback
// that hands it to its parent once the end tag is read.
type handle struct {
	parent   *handle
	desc     *binding.Descriptor
	name     string
	value    any
	pos      token.Position
	callback func(any) error

	accs   []*accumulator
	filled map[*binding.ElementAccessor]bool
}

// accumulator buffers the items of one collection field until the owner closes.
type accumulator struct {
	field *binding.ElementAccessor
	items []any
}

func (h *handle) accumulate(field *binding.ElementAccessor, v any) {
	for _, acc := range h.accs {
		if acc.field == field {
			acc.items = append(acc.items, v)
			return
		}
	}

	h.accs = append(h.accs, &accumulator{field: field, items: []any{v}})
}

// flush stores buffered collections in first-use order.
func (h *handle) flush() {
	for _, acc := range h.accs {
		acc.field.SetItems(h.value, acc.items)
	}

	h.accs = nil
}

func (h *handle) isFilled(field *binding.ElementAccessor) bool {
	return h.filled[field]
}

func (h *handle) markFilled(field *binding.ElementAccessor) {
	if h.filled == nil {
		h.filled = make(map[*binding.ElementAccessor]bool)
	}

	h.filled[field] = true
}
